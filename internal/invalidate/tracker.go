// Package invalidate tracks which map cells need to be repainted between
// render passes.
package invalidate

import (
	"mapview/pkg/geometry"
)

// OverlapIndex answers which placed objects cover a set of cells.
// Implementations must not modify their input.
type OverlapIndex interface {
	// OverlapsForCells returns the union of the bounding cells of every
	// object whose bounds intersect any cell in cells.
	OverlapsForCells(cells CellSet) CellSet
	// BoundsOf returns the bounding cell rectangle of a registered object.
	BoundsOf(id string) (geometry.RectInt, bool)
}

// CellLocator converts between linear cell indices and grid coordinates.
// Both directions report false for cells outside the map, which is the cell
// rectangle returned by Bounds.
type CellLocator interface {
	CellToLocation(index int) (geometry.PointInt, bool)
	LocationToCell(cell geometry.PointInt) (int, bool)
	Bounds() geometry.RectInt
}

// Region is the result of draining the tracker: either the full surface or a
// set of cells. An empty, non-full region means nothing needs repainting.
type Region struct {
	Full  bool
	Cells CellSet
}

// Empty reports whether nothing needs repainting.
func (r Region) Empty() bool {
	return !r.Full && len(r.Cells) == 0
}

// Tracker accumulates dirty cells between render passes.
//
// Every Invalidate method reports whether the pending region grew, so the
// host can decide when to schedule a paint. All of them are no-ops while a
// full invalidation is pending.
//
// A Tracker is not safe for concurrent use.
type Tracker struct {
	locator CellLocator
	index   OverlapIndex

	cells CellSet
	full  bool
}

// NewTracker creates a tracker over the grid described by locator. index may
// be nil when no objects span several cells.
func NewTracker(locator CellLocator, index OverlapIndex) *Tracker {
	return &Tracker{
		locator: locator,
		index:   index,
		cells:   make(CellSet),
	}
}

// SetLocator replaces the grid, e.g. after a different map is loaded. The
// pending region is replaced by a full invalidation.
func (t *Tracker) SetLocator(locator CellLocator) {
	t.locator = locator
	t.cells = make(CellSet)
	t.full = true
}

// Pending reports whether a repaint is queued.
func (t *Tracker) Pending() bool {
	return t.full || len(t.cells) > 0
}

// InvalidateAll queues a repaint of the whole surface.
func (t *Tracker) InvalidateAll() bool {
	if t.full {
		return false
	}
	t.cells = make(CellSet)
	t.full = true
	return true
}

// InvalidatePoint queues a single cell.
func (t *Tracker) InvalidatePoint(cell geometry.PointInt) bool {
	return t.InvalidateCells([]geometry.PointInt{cell})
}

// InvalidateRect queues every cell of a cell rectangle. The rectangle is
// clipped to the map first, so the cost is bounded by the map size.
func (t *Tracker) InvalidateRect(rect geometry.RectInt) bool {
	if t.full || rect.Empty() {
		return false
	}
	if t.locator != nil {
		var ok bool
		if rect, ok = rect.Intersect(t.locator.Bounds()); !ok {
			return false
		}
	}
	var cells []geometry.PointInt
	rect.Cells(func(c geometry.PointInt) {
		cells = append(cells, c)
	})
	return t.InvalidateCells(cells)
}

// InvalidateIndices queues cells given as linear indices. Indices outside
// the map are skipped.
func (t *Tracker) InvalidateIndices(indices []int) bool {
	if t.full || t.locator == nil {
		return false
	}
	cells := make([]geometry.PointInt, 0, len(indices))
	for _, i := range indices {
		if c, ok := t.locator.CellToLocation(i); ok {
			cells = append(cells, c)
		}
	}
	return t.InvalidateCells(cells)
}

// InvalidateObject queues every cell covered by a placed object. An object
// the overlap index does not know is ignored.
func (t *Tracker) InvalidateObject(id string) bool {
	if t.full || t.index == nil {
		return false
	}
	bounds, ok := t.index.BoundsOf(id)
	if !ok {
		return false
	}
	return t.InvalidateRect(bounds)
}

// InvalidateCells queues cells and then every cell of any object overlapping
// the cells that were not already pending. Cells outside the map are
// skipped.
func (t *Tracker) InvalidateCells(cells []geometry.PointInt) bool {
	if t.full {
		return false
	}

	added := make(CellSet)
	for _, c := range cells {
		if !t.inMap(c) || t.cells.Has(c) {
			continue
		}
		added.Add(c)
	}
	if len(added) == 0 {
		return false
	}
	for c := range added {
		t.cells.Add(c)
	}

	if t.index != nil {
		for c := range t.index.OverlapsForCells(added) {
			if t.inMap(c) {
				t.cells.Add(c)
			}
		}
	}
	return true
}

// DrainForRender returns the pending region and resets the tracker. Call it
// once per render pass, at the start of painting; anything invalidated
// afterwards is picked up by the next pass.
func (t *Tracker) DrainForRender() Region {
	r := Region{Full: t.full}
	if !t.full && len(t.cells) > 0 {
		r.Cells = t.cells
	}
	t.cells = make(CellSet)
	t.full = false
	return r
}

func (t *Tracker) inMap(c geometry.PointInt) bool {
	if t.locator == nil {
		return true
	}
	_, ok := t.locator.LocationToCell(c)
	return ok
}
