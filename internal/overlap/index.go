// Package overlap indexes placed objects by the map cells they cover.
package overlap

import (
	"sort"

	"mapview/internal/invalidate"
	"mapview/pkg/geometry"
)

// Index maps object ids to cell rectangles and keeps a per-cell bucket of
// the objects covering each cell.
//
// An Index is not safe for concurrent use.
type Index struct {
	bounds  map[string]geometry.RectInt
	buckets map[geometry.PointInt]map[string]struct{}
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		bounds:  make(map[string]geometry.RectInt),
		buckets: make(map[geometry.PointInt]map[string]struct{}),
	}
}

// Len returns the number of placed objects.
func (x *Index) Len() int { return len(x.bounds) }

// Place registers or moves an object. It returns the previous bounds, if
// any, so callers can repaint the vacated cells. Empty bounds remove the
// object. The work is proportional to the bounds' area; callers clip them
// to the grid.
func (x *Index) Place(id string, bounds geometry.RectInt) (geometry.RectInt, bool) {
	prev, had := x.Remove(id)
	if bounds.Empty() {
		return prev, had
	}
	x.bounds[id] = bounds
	bounds.Cells(func(c geometry.PointInt) {
		b, ok := x.buckets[c]
		if !ok {
			b = make(map[string]struct{})
			x.buckets[c] = b
		}
		b[id] = struct{}{}
	})
	return prev, had
}

// Remove unregisters an object and returns its last bounds.
func (x *Index) Remove(id string) (geometry.RectInt, bool) {
	bounds, ok := x.bounds[id]
	if !ok {
		return geometry.RectInt{}, false
	}
	delete(x.bounds, id)
	bounds.Cells(func(c geometry.PointInt) {
		b := x.buckets[c]
		delete(b, id)
		if len(b) == 0 {
			delete(x.buckets, c)
		}
	})
	return bounds, true
}

// BoundsOf returns the cell rectangle of a placed object.
func (x *Index) BoundsOf(id string) (geometry.RectInt, bool) {
	b, ok := x.bounds[id]
	return b, ok
}

// ObjectsAt returns the ids of objects covering a cell, sorted.
func (x *Index) ObjectsAt(cell geometry.PointInt) []string {
	b := x.buckets[cell]
	if len(b) == 0 {
		return nil
	}
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// OverlapsForCells returns every cell covered by an object that covers at
// least one of cells. The input is not modified.
func (x *Index) OverlapsForCells(cells invalidate.CellSet) invalidate.CellSet {
	out := make(invalidate.CellSet)
	seen := make(map[string]struct{})
	for c := range cells {
		for id := range x.buckets[c] {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			x.bounds[id].Cells(func(oc geometry.PointInt) {
				out.Add(oc)
			})
		}
	}
	return out
}

// ObjectsIn returns the ids of objects whose bounds intersect r, sorted.
func (x *Index) ObjectsIn(r geometry.RectInt) []string {
	var ids []string
	for id, b := range x.bounds {
		if _, ok := b.Intersect(r); ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
