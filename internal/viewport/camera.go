package viewport

import (
	"log/slog"
	"math"

	"mapview/pkg/geometry"
)

// ZoomPolicy bounds and quantizes the zoom level. Zoom 1 shows the whole
// map along its constraining axis; zoom n shows 1/n of it.
type ZoomPolicy struct {
	Min  int `json:"min" toml:"min"`
	Max  int `json:"max" toml:"max"`
	Step int `json:"step" toml:"step"`
}

// DefaultZoomPolicy is used when a camera is created with a zero policy.
var DefaultZoomPolicy = ZoomPolicy{Min: 1, Max: 16, Step: 1}

// normalized raises Min and Step to 1 and Max to Min.
func (p ZoomPolicy) normalized() ZoomPolicy {
	if p.Min < 1 {
		p.Min = 1
	}
	if p.Max < p.Min {
		p.Max = p.Min
	}
	if p.Step < 1 {
		p.Step = 1
	}
	return p
}

// Snap clamps level to [Min, Max] and rounds it to the nearest multiple of
// Step, ties rounding up. A snapped value that falls outside the range is
// moved one step back inside; if the range holds no multiple of Step the
// clamped level is returned unchanged.
func (p ZoomPolicy) Snap(level int) int {
	p = p.normalized()
	v := clampInt(level, p.Min, p.Max)
	if p.Step == 1 {
		return v
	}
	s := floorDiv(v+p.Step/2, p.Step) * p.Step
	if s < p.Min {
		s += p.Step
	}
	if s > p.Max {
		s -= p.Step
	}
	if s < p.Min || s > p.Max {
		return v
	}
	return s
}

// anchor keeps a map point under the same normalized client position
// across a zoom change.
type anchor struct {
	mapPoint geometry.Point2D
	fraction geometry.Point2D
}

// Camera owns the zoom level and the visible map rectangle (the camera
// bounds), and rebuilds the composite transform whenever either the bounds
// or the client size change.
//
// A Camera is not safe for concurrent use; hosts drive it from their event
// loop.
type Camera struct {
	policy ZoomPolicy
	zoom   int

	extent geometry.Size
	client geometry.Size
	bounds geometry.Rect

	pointer    geometry.Point2D
	hasPointer bool

	pending *anchor

	transform    Transform
	hasTransform bool
}

// NewCamera creates a camera with the given zoom policy at its minimum zoom.
// The camera is not drawable until both SetMapExtent and SetClientSize have
// been given non-empty sizes.
func NewCamera(policy ZoomPolicy) *Camera {
	if policy == (ZoomPolicy{}) {
		policy = DefaultZoomPolicy
	}
	policy = policy.normalized()
	return &Camera{
		policy: policy,
		zoom:   policy.Snap(policy.Min),
	}
}

// Zoom returns the current zoom level.
func (c *Camera) Zoom() int { return c.zoom }

// ZoomPolicy returns the active zoom bounds and step.
func (c *Camera) ZoomPolicy() ZoomPolicy { return c.policy }

// Bounds returns the visible map-space rectangle.
func (c *Camera) Bounds() geometry.Rect { return c.bounds }

// ClientSize returns the size of the drawing surface.
func (c *Camera) ClientSize() geometry.Size { return c.client }

// MapExtent returns the size of the full map.
func (c *Camera) MapExtent() geometry.Size { return c.extent }

// Drawable reports whether a transform exists, i.e. coordinate conversions
// are defined.
func (c *Camera) Drawable() bool { return c.hasTransform }

// Transform returns the current composite transform, if any.
func (c *Camera) Transform() (Transform, bool) {
	return c.transform, c.hasTransform
}

// ScrollExtent returns how far the camera origin can move on each axis.
// An axis whose visible size covers the whole map reports 0.
func (c *Camera) ScrollExtent() geometry.Size {
	return geometry.Size{
		Width:  math.Max(0, c.extent.Width-c.bounds.Width),
		Height: math.Max(0, c.extent.Height-c.bounds.Height),
	}
}

// ScrollPosition returns the camera origin, which lies within
// [0, ScrollExtent] on each axis.
func (c *Camera) ScrollPosition() geometry.Point2D {
	return c.bounds.TopLeft()
}

// SetPointer records the pointer position in client coordinates. The next
// zoom change keeps the map point under it fixed.
func (c *Camera) SetPointer(p geometry.Point2D) {
	c.pointer = p
	c.hasPointer = true
}

// ClearPointer forgets the pointer; zoom changes then anchor on the client
// centre.
func (c *Camera) ClearPointer() {
	c.hasPointer = false
}

// Pointer returns the last recorded pointer position.
func (c *Camera) Pointer() (geometry.Point2D, bool) {
	return c.pointer, c.hasPointer
}

// SetZoom clamps and snaps level and, if the result differs from the
// current zoom, recomputes the camera bounds around the pointer. It reports
// whether the zoom changed.
func (c *Camera) SetZoom(level int) bool {
	z := c.policy.Snap(level)
	if z == c.zoom {
		return false
	}
	c.captureAnchor()
	c.zoom = z
	c.recompute()
	return true
}

// ZoomBy changes the zoom by steps multiples of the zoom step.
func (c *Camera) ZoomBy(steps int) bool {
	return c.SetZoom(c.zoom + steps*c.policy.Step)
}

// ZoomAt records pointer and then applies SetZoom(level).
func (c *Camera) ZoomAt(level int, pointer geometry.Point2D) bool {
	c.SetPointer(pointer)
	return c.SetZoom(level)
}

// SetZoomBounds replaces the zoom range. A current zoom outside the new
// range is re-clamped through SetZoom.
func (c *Camera) SetZoomBounds(minZoom, maxZoom int) bool {
	c.policy = ZoomPolicy{Min: minZoom, Max: maxZoom, Step: c.policy.Step}.normalized()
	return c.reclamp()
}

// SetZoomStep replaces the zoom step. A current zoom off the new grid is
// re-snapped through SetZoom.
func (c *Camera) SetZoomStep(step int) bool {
	c.policy = ZoomPolicy{Min: c.policy.Min, Max: c.policy.Max, Step: step}.normalized()
	return c.reclamp()
}

func (c *Camera) reclamp() bool {
	if c.policy.Snap(c.zoom) == c.zoom {
		return false
	}
	return c.SetZoom(c.zoom)
}

// SetClientSize updates the drawing surface size and recomputes the camera
// bounds. No anchor is applied: the origin is kept and re-clamped.
func (c *Camera) SetClientSize(size geometry.Size) bool {
	if size == c.client {
		return false
	}
	c.client = size
	c.recompute()
	return true
}

// SetMapExtent updates the full map size, e.g. after a map is loaded.
func (c *Camera) SetMapExtent(size geometry.Size) bool {
	if size == c.extent {
		return false
	}
	c.extent = size
	c.recompute()
	return true
}

// PanBy scrolls the camera by a client-space delta. The delta is converted
// through the inverse linear transform and the origin is clamped per axis.
func (c *Camera) PanBy(clientDelta geometry.Point2D) bool {
	if !c.hasTransform {
		return false
	}
	d := c.transform.ClientVectorToMap(clientDelta)
	return c.moveTo(c.bounds.TopLeft().Add(d))
}

// CenterOn scrolls so that p (map space) is as close to the client centre as
// the map edges allow.
func (c *Camera) CenterOn(p geometry.Point2D) bool {
	if !c.hasTransform {
		return false
	}
	return c.moveTo(geometry.Point2D{
		X: p.X - c.bounds.Width/2,
		Y: p.Y - c.bounds.Height/2,
	})
}

func (c *Camera) moveTo(origin geometry.Point2D) bool {
	origin = c.clampOrigin(origin, c.bounds.Size())
	if origin == c.bounds.TopLeft() {
		return false
	}
	c.bounds.X, c.bounds.Y = origin.X, origin.Y
	c.rebuild()
	return true
}

// captureAnchor records the map point under the pointer (or the client
// centre) and its normalized client position.
func (c *Camera) captureAnchor() {
	if !c.hasTransform {
		return
	}
	q := c.pointer
	clientRect := geometry.NewRect(0, 0, c.client.Width, c.client.Height)
	if !c.hasPointer || !clientRect.Contains(q) {
		q = clientRect.Center()
	}
	c.pending = &anchor{
		mapPoint: c.transform.ClientToMap(q),
		fraction: geometry.Point2D{X: q.X / c.client.Width, Y: q.Y / c.client.Height},
	}
}

// consumeAnchor returns the pending anchor and clears it.
func (c *Camera) consumeAnchor() (anchor, bool) {
	a := c.pending
	c.pending = nil
	if a == nil {
		return anchor{}, false
	}
	return *a, true
}

// recompute derives the camera bounds from zoom, map extent and client size,
// applies a pending anchor and rebuilds the transform.
func (c *Camera) recompute() {
	a, anchored := c.consumeAnchor()
	if c.extent.Empty() || c.client.Empty() {
		Logger().Debug("viewport: skipping bounds recompute",
			slog.Any("extent", c.extent), slog.Any("client", c.client))
		return
	}

	size := c.visibleSize()
	origin := c.bounds.TopLeft()
	if anchored {
		origin = geometry.Point2D{
			X: a.mapPoint.X - a.fraction.X*size.Width,
			Y: a.mapPoint.Y - a.fraction.Y*size.Height,
		}
	}
	origin = c.clampOrigin(origin, size)

	c.bounds = geometry.Rect{X: origin.X, Y: origin.Y, Width: size.Width, Height: size.Height}
	c.rebuild()
}

// visibleSize fits the client's aspect ratio into MapExtent/zoom along the
// constraining axis: a client wider than the map is limited by the map width,
// otherwise by the map height. The derived axis then never exceeds the map.
func (c *Camera) visibleSize() geometry.Size {
	z := float64(c.zoom)
	clientAspect := c.client.Aspect()
	var w, h float64
	if clientAspect > c.extent.Aspect() {
		w = c.extent.Width / z
		h = w / clientAspect
	} else {
		h = c.extent.Height / z
		w = h * clientAspect
	}
	return geometry.Size{
		Width:  math.Min(w, c.extent.Width),
		Height: math.Min(h, c.extent.Height),
	}
}

// clampOrigin keeps a rectangle of the given size inside the map. An axis
// that is not pannable is centred.
func (c *Camera) clampOrigin(origin geometry.Point2D, size geometry.Size) geometry.Point2D {
	return geometry.Point2D{
		X: clampAxis(origin.X, size.Width, c.extent.Width),
		Y: clampAxis(origin.Y, size.Height, c.extent.Height),
	}
}

func clampAxis(origin, size, extent float64) float64 {
	if size >= extent {
		return (extent - size) / 2
	}
	return math.Max(0, math.Min(origin, extent-size))
}

func (c *Camera) rebuild() {
	t, err := NewTransform(c.bounds, c.client)
	if err != nil {
		Logger().Debug("viewport: transform not rebuilt", slog.String("err", err.Error()))
		c.hasTransform = false
		return
	}
	c.transform = t
	c.hasTransform = true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
