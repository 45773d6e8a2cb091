package app

import (
	"mapview/internal/invalidate"
	"mapview/internal/mapgrid"
	"mapview/internal/viewport"
	"mapview/pkg/geometry"
)

// Frame is what a paint callback needs: the transform to draw with and the
// region to repaint. It is a snapshot; later session changes do not affect
// it.
type Frame struct {
	Transform viewport.Transform
	Region    invalidate.Region
	Grid      mapgrid.Grid
	Zoom      int
	Objects   []Placed // objects intersecting the camera bounds, by id
}

// Placed is an object id with its cell rectangle.
type Placed struct {
	ID    string
	Cells geometry.RectInt
}

// BeginFrame drains the pending region for one render pass. Call it once at
// the start of painting. ok is false while the view is not drawable; the
// pending region is then kept for the first drawable frame.
func (s *Session) BeginFrame() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.camera.Transform()
	if !ok || !s.hasMap {
		return Frame{}, false
	}
	f := Frame{
		Transform: t,
		Region:    s.tracker.DrainForRender(),
		Grid:      s.grid,
		Zoom:      s.camera.Zoom(),
	}
	if visible, ok := s.grid.CellsCovering(t.Bounds()); ok {
		for _, id := range s.index.ObjectsIn(visible) {
			b, _ := s.index.BoundsOf(id)
			f.Objects = append(f.Objects, Placed{ID: id, Cells: b})
		}
	}
	return f, true
}

// Pending reports whether a repaint is queued.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Pending()
}

// CellRuns groups the dirty cells into horizontal runs, one rectangle per
// run of adjacent cells in a row. A full region yields nil.
func (f Frame) CellRuns() []geometry.RectInt {
	if f.Region.Full || len(f.Region.Cells) == 0 {
		return nil
	}
	var runs []geometry.RectInt
	for _, c := range f.Region.Cells.Sorted() {
		if n := len(runs); n > 0 {
			last := &runs[n-1]
			if last.Y == c.Y && last.X+last.Width == c.X {
				last.Width++
				continue
			}
		}
		runs = append(runs, geometry.RectInt{X: c.X, Y: c.Y, Width: 1, Height: 1})
	}
	return runs
}

// ClientRects returns the dirty runs converted to client space, clipped to
// the client surface. A full region yields the whole surface.
func (f Frame) ClientRects() []geometry.RectInt {
	client := f.Transform.ClientSize()
	surface := geometry.RectInt{Width: int(client.Width + 0.5), Height: int(client.Height + 0.5)}
	if f.Region.Full {
		return []geometry.RectInt{surface}
	}
	var out []geometry.RectInt
	for _, run := range f.CellRuns() {
		r := f.Transform.MapRectToClient(f.Grid.RectToMap(run)).Outer()
		if clipped, ok := r.Intersect(surface); ok {
			out = append(out, clipped)
		}
	}
	return out
}

// VisibleCells returns the cells intersecting the camera bounds.
func (f Frame) VisibleCells() (geometry.RectInt, bool) {
	return f.Grid.CellsCovering(f.Transform.Bounds())
}
