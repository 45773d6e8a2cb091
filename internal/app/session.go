// Package app ties the camera, the invalidation tracker and the object index
// into one viewport session driven by a host's event loop.
package app

import (
	"log"
	"sync"

	"mapview/internal/invalidate"
	"mapview/internal/mapgrid"
	"mapview/internal/overlap"
	"mapview/internal/viewport"
	"mapview/pkg/geometry"
)

// Session is the single owner of the viewport state for one map view. Input
// handlers and the paint callback both go through it.
//
// Every entry point reports whether a repaint is now needed; the same
// information is broadcast as EventRepaintNeeded. Listeners run after the
// session lock is released and may call back into the session.
type Session struct {
	mu sync.Mutex

	camera  *viewport.Camera
	grid    mapgrid.Grid
	hasMap  bool
	index   *overlap.Index
	tracker *invalidate.Tracker

	batchDepth int
	batchDirty bool

	lmu       sync.RWMutex
	listeners map[EventType][]EventListener
}

// NewSession creates a session with the given zoom policy and no map.
func NewSession(policy viewport.ZoomPolicy) *Session {
	index := overlap.NewIndex()
	return &Session{
		camera:    viewport.NewCamera(policy),
		index:     index,
		tracker:   invalidate.NewTracker(mapgrid.Grid{}, index),
		listeners: make(map[EventType][]EventListener),
	}
}

// LoadMap installs a new map: its pixel extent and cell grid. Placed objects
// are dropped and the whole surface is invalidated.
func (s *Session) LoadMap(extent geometry.Size, grid mapgrid.Grid) bool {
	s.mu.Lock()
	s.grid = grid
	s.hasMap = true
	s.index = overlap.NewIndex()
	s.tracker = invalidate.NewTracker(grid, s.index)
	s.tracker.InvalidateAll()
	s.camera.SetMapExtent(extent)
	es := []emission{{EventMapLoaded, extent}}
	es = append(es, s.repaintLocked()...)
	s.mu.Unlock()

	log.Printf("Map loaded: %.0fx%.0f px, %dx%d cells", extent.Width, extent.Height, grid.Cols, grid.Rows)
	s.emitAll(es)
	return true
}

// Grid returns the cell grid of the loaded map.
func (s *Session) Grid() (mapgrid.Grid, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid, s.hasMap
}

// OnResize updates the client size.
func (s *Session) OnResize(size geometry.Size) bool {
	return s.cameraOp(EventCameraMoved, func(c *viewport.Camera) bool {
		return c.SetClientSize(size)
	})
}

// RequestZoom changes the zoom by steps zoom steps, anchored at the pointer.
func (s *Session) RequestZoom(steps int) bool {
	return s.cameraOp(EventZoomChanged, func(c *viewport.Camera) bool {
		return c.ZoomBy(steps)
	})
}

// RequestZoomLevel sets an absolute zoom level, anchored at the pointer.
func (s *Session) RequestZoomLevel(level int) bool {
	return s.cameraOp(EventZoomChanged, func(c *viewport.Camera) bool {
		return c.SetZoom(level)
	})
}

// RequestZoomAt sets an absolute zoom level anchored at a client point.
func (s *Session) RequestZoomAt(level int, pointer geometry.Point2D) bool {
	return s.cameraOp(EventZoomChanged, func(c *viewport.Camera) bool {
		return c.ZoomAt(level, pointer)
	})
}

// SetZoomPolicy replaces zoom bounds and step, re-clamping the zoom level.
func (s *Session) SetZoomPolicy(p viewport.ZoomPolicy) bool {
	return s.cameraOp(EventZoomChanged, func(c *viewport.Camera) bool {
		stepChanged := c.SetZoomStep(p.Step)
		boundsChanged := c.SetZoomBounds(p.Min, p.Max)
		return stepChanged || boundsChanged
	})
}

// RequestPan scrolls by a client-space delta.
func (s *Session) RequestPan(clientDelta geometry.Point2D) bool {
	return s.cameraOp(EventCameraMoved, func(c *viewport.Camera) bool {
		return c.PanBy(clientDelta)
	})
}

// CenterOn scrolls a map point to the client centre, as far as the map
// edges allow.
func (s *Session) CenterOn(p geometry.Point2D) bool {
	return s.cameraOp(EventCameraMoved, func(c *viewport.Camera) bool {
		return c.CenterOn(p)
	})
}

// PointerMoved records the pointer position used to anchor zoom changes.
func (s *Session) PointerMoved(p geometry.Point2D) {
	s.mu.Lock()
	s.camera.SetPointer(p)
	s.mu.Unlock()
}

// PointerLeft forgets the pointer; zoom then anchors on the client centre.
func (s *Session) PointerLeft() {
	s.mu.Lock()
	s.camera.ClearPointer()
	s.mu.Unlock()
}

// cameraOp runs a camera mutation. Any change moves every visible pixel, so
// it invalidates the whole surface.
func (s *Session) cameraOp(kind EventType, op func(*viewport.Camera) bool) bool {
	s.mu.Lock()
	changed := op(s.camera)
	var es []emission
	if changed {
		s.tracker.InvalidateAll()
		if kind == EventZoomChanged {
			es = append(es, emission{EventZoomChanged, s.camera.Zoom()})
		}
		es = append(es, emission{EventCameraMoved, s.camera.Bounds()})
		es = append(es, s.repaintLocked()...)
	}
	s.mu.Unlock()

	s.emitAll(es)
	return changed
}

// NotifyChangedCells marks map cells as changed.
func (s *Session) NotifyChangedCells(cells []geometry.PointInt) bool {
	return s.trackerOp(func(t *invalidate.Tracker) bool { return t.InvalidateCells(cells) })
}

// NotifyChangedRect marks a cell rectangle as changed.
func (s *Session) NotifyChangedRect(rect geometry.RectInt) bool {
	return s.trackerOp(func(t *invalidate.Tracker) bool { return t.InvalidateRect(rect) })
}

// NotifyChangedPoint marks one cell as changed.
func (s *Session) NotifyChangedPoint(cell geometry.PointInt) bool {
	return s.trackerOp(func(t *invalidate.Tracker) bool { return t.InvalidatePoint(cell) })
}

// NotifyChangedIndices marks cells given by linear index as changed.
func (s *Session) NotifyChangedIndices(indices []int) bool {
	return s.trackerOp(func(t *invalidate.Tracker) bool { return t.InvalidateIndices(indices) })
}

// NotifyChangedObject marks every cell of a placed object as changed.
func (s *Session) NotifyChangedObject(id string) bool {
	return s.trackerOp(func(t *invalidate.Tracker) bool { return t.InvalidateObject(id) })
}

// InvalidateAll forces a full repaint.
func (s *Session) InvalidateAll() bool {
	return s.trackerOp(func(t *invalidate.Tracker) bool { return t.InvalidateAll() })
}

func (s *Session) trackerOp(op func(*invalidate.Tracker) bool) bool {
	s.mu.Lock()
	changed := op(s.tracker)
	var es []emission
	if changed {
		es = s.repaintLocked()
	}
	s.mu.Unlock()

	s.emitAll(es)
	return changed
}

// PlaceObject registers or moves an object and invalidates both the cells
// it left and the cells it now covers. Bounds are clipped to the grid; an
// object placed entirely off the map, or before a map is loaded, is removed.
func (s *Session) PlaceObject(id string, bounds geometry.RectInt) bool {
	s.mu.Lock()
	bounds, _ = bounds.Intersect(s.grid.Bounds())
	prev, had := s.index.Place(id, bounds)
	changed := false
	if had {
		changed = s.tracker.InvalidateRect(prev)
	}
	if s.tracker.InvalidateObject(id) {
		changed = true
	}
	es := []emission{{EventObjectsChanged, id}}
	if changed {
		es = append(es, s.repaintLocked()...)
	}
	s.mu.Unlock()

	s.emitAll(es)
	return changed
}

// RemoveObject unregisters an object and invalidates the cells it covered.
func (s *Session) RemoveObject(id string) bool {
	s.mu.Lock()
	prev, had := s.index.Remove(id)
	if !had {
		s.mu.Unlock()
		return false
	}
	changed := s.tracker.InvalidateRect(prev)
	es := []emission{{EventObjectsChanged, id}}
	if changed {
		es = append(es, s.repaintLocked()...)
	}
	s.mu.Unlock()

	s.emitAll(es)
	return changed
}

// ObjectBounds returns the cell rectangle of a placed object.
func (s *Session) ObjectBounds(id string) (geometry.RectInt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.BoundsOf(id)
}

// HitTest returns the ids of objects under a client-space point.
func (s *Session) HitTest(client geometry.Point2D) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.camera.Transform()
	if !ok || !s.hasMap {
		return nil
	}
	cell, ok := s.grid.CellAt(t.ClientToMap(client))
	if !ok {
		return nil
	}
	return s.index.ObjectsAt(cell)
}

// Batch runs fn with repaint notifications held back. A single
// EventRepaintNeeded is emitted when the outermost batch returns, on every
// exit path including a panic in fn.
func (s *Session) Batch(fn func()) {
	s.mu.Lock()
	s.batchDepth++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.batchDepth--
		fire := s.batchDepth == 0 && s.batchDirty
		if fire {
			s.batchDirty = false
		}
		s.mu.Unlock()
		if fire {
			s.Emit(EventRepaintNeeded, nil)
		}
	}()
	fn()
}

func (s *Session) repaintLocked() []emission {
	if s.batchDepth > 0 {
		s.batchDirty = true
		return nil
	}
	return []emission{{EventRepaintNeeded, nil}}
}

// Zoom returns the current zoom level.
func (s *Session) Zoom() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera.Zoom()
}

// ZoomPolicy returns the active zoom bounds and step.
func (s *Session) ZoomPolicy() viewport.ZoomPolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera.ZoomPolicy()
}

// Bounds returns the visible map rectangle.
func (s *Session) Bounds() geometry.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera.Bounds()
}

// ScrollExtent returns the pannable range per axis.
func (s *Session) ScrollExtent() geometry.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera.ScrollExtent()
}

// ScrollPosition returns the camera origin.
func (s *Session) ScrollPosition() geometry.Point2D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera.ScrollPosition()
}

// ClientToMap converts a client point to map space, if the view is drawable.
func (s *Session) ClientToMap(p geometry.Point2D) (geometry.Point2D, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.camera.Transform()
	if !ok {
		return geometry.Point2D{}, false
	}
	return t.ClientToMap(p), true
}

// MapToClient converts a map point to client space, if the view is drawable.
func (s *Session) MapToClient(p geometry.Point2D) (geometry.Point2D, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.camera.Transform()
	if !ok {
		return geometry.Point2D{}, false
	}
	return t.MapToClient(p), true
}
