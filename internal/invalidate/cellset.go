package invalidate

import (
	"sort"

	"mapview/pkg/geometry"
)

// CellSet is a set of map cells. The zero value is not usable; use
// NewCellSet or make.
type CellSet map[geometry.PointInt]struct{}

// NewCellSet returns a set holding the given cells.
func NewCellSet(cells ...geometry.PointInt) CellSet {
	s := make(CellSet, len(cells))
	for _, c := range cells {
		s[c] = struct{}{}
	}
	return s
}

// Add inserts c and reports whether it was new.
func (s CellSet) Add(c geometry.PointInt) bool {
	if _, ok := s[c]; ok {
		return false
	}
	s[c] = struct{}{}
	return true
}

// Has reports whether c is in the set.
func (s CellSet) Has(c geometry.PointInt) bool {
	_, ok := s[c]
	return ok
}

// Len returns the number of cells.
func (s CellSet) Len() int { return len(s) }

// Clone returns an independent copy.
func (s CellSet) Clone() CellSet {
	out := make(CellSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Sorted returns the cells ordered by row, then column.
func (s CellSet) Sorted() []geometry.PointInt {
	out := make([]geometry.PointInt, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// Bounds returns the smallest cell rectangle containing every cell.
func (s CellSet) Bounds() geometry.RectInt {
	first := true
	var x0, y0, x1, y1 int
	for c := range s {
		if first {
			x0, y0, x1, y1 = c.X, c.Y, c.X, c.Y
			first = false
			continue
		}
		x0, y0 = min(x0, c.X), min(y0, c.Y)
		x1, y1 = max(x1, c.X), max(y1, c.Y)
	}
	if first {
		return geometry.RectInt{}
	}
	return geometry.RectInt{X: x0, Y: y0, Width: x1 - x0 + 1, Height: y1 - y0 + 1}
}
