// Package canvas provides a map canvas with pointer-anchored zoom, drag to
// pan and partial repaint of changed cells.
package canvas

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"mapview/internal/app"
	"mapview/pkg/colorutil"
	"mapview/pkg/geometry"
)

// MapCanvas displays the session's map. All view state lives in the
// session; the canvas forwards input to it and repaints what it reports
// dirty.
type MapCanvas struct {
	widget.BaseWidget

	session *app.Session
	raster  *fynecanvas.Raster

	mu       sync.Mutex
	painter  Painter
	output   *image.RGBA // persistent frame buffer, partially repainted
	pixScale float32     // raster pixels per fyne unit

	// Callbacks
	onTap   func(ids []string, mapPos geometry.Point2D) // Left click
	onFrame func(touched []image.Rectangle)             // After each paint
}

var (
	_ fyne.Draggable      = (*MapCanvas)(nil)
	_ fyne.Scrollable     = (*MapCanvas)(nil)
	_ fyne.Tappable       = (*MapCanvas)(nil)
	_ fyne.DoubleTappable = (*MapCanvas)(nil)
	_ desktop.Hoverable   = (*MapCanvas)(nil)
)

// NewMapCanvas creates a canvas bound to session.
func NewMapCanvas(session *app.Session) *MapCanvas {
	mc := &MapCanvas{
		session:  session,
		pixScale: 1,
		painter:  Painter{Overlay: NewOverlay()},
	}
	mc.raster = fynecanvas.NewRaster(mc.draw)
	mc.raster.ScaleMode = fynecanvas.ImageScalePixels
	mc.raster.SetMinSize(fyne.NewSize(100, 100))

	session.On(app.EventRepaintNeeded, func(interface{}) {
		mc.raster.Refresh()
	})

	mc.ExtendBaseWidget(mc)
	return mc
}

// SetPainter replaces the map image, overlay and render options and
// repaints everything.
func (mc *MapCanvas) SetPainter(p Painter) {
	mc.mu.Lock()
	if p.Overlay == nil {
		p.Overlay = NewOverlay()
	}
	mc.painter = p
	mc.mu.Unlock()
	mc.session.InvalidateAll()
}

// SetPixelArt switches between nearest-neighbour and bilinear sampling.
func (mc *MapCanvas) SetPixelArt(on bool) {
	mc.mu.Lock()
	mc.painter.PixelArt = on
	mc.mu.Unlock()
	mc.session.InvalidateAll()
}

// SetShowDirty toggles outlining of repainted rectangles.
func (mc *MapCanvas) SetShowDirty(on bool) {
	mc.mu.Lock()
	mc.painter.ShowDirty = on
	mc.mu.Unlock()
	mc.session.InvalidateAll()
}

// OnTap sets the callback for left clicks. ids are the objects under the
// pointer.
func (mc *MapCanvas) OnTap(callback func(ids []string, mapPos geometry.Point2D)) {
	mc.onTap = callback
}

// OnFrame sets a callback invoked after each paint with the rectangles that
// were repainted.
func (mc *MapCanvas) OnFrame(callback func(touched []image.Rectangle)) {
	mc.onFrame = callback
}

// Scrolled zooms one step in or out, anchored at the pointer.
func (mc *MapCanvas) Scrolled(ev *fyne.ScrollEvent) {
	mc.session.PointerMoved(mc.toClient(ev.Position))
	switch {
	case ev.Scrolled.DY > 0:
		mc.session.RequestZoom(1)
	case ev.Scrolled.DY < 0:
		mc.session.RequestZoom(-1)
	}
}

// Dragged pans so the map follows the pointer.
func (mc *MapCanvas) Dragged(ev *fyne.DragEvent) {
	mc.session.PointerMoved(mc.toClient(ev.Position))
	d := mc.toClient(fyne.NewPos(ev.Dragged.DX, ev.Dragged.DY))
	mc.session.RequestPan(geometry.Point2D{X: -d.X, Y: -d.Y})
}

// DragEnd implements fyne.Draggable.
func (mc *MapCanvas) DragEnd() {}

// Tapped reports the objects under a left click.
func (mc *MapCanvas) Tapped(ev *fyne.PointEvent) {
	if mc.onTap == nil {
		return
	}
	p := mc.toClient(ev.Position)
	mapPos, ok := mc.session.ClientToMap(p)
	if !ok {
		return
	}
	mc.onTap(mc.session.HitTest(p), mapPos)
}

// DoubleTapped centres the view on the point under the pointer.
func (mc *MapCanvas) DoubleTapped(ev *fyne.PointEvent) {
	mapPos, ok := mc.session.ClientToMap(mc.toClient(ev.Position))
	if !ok {
		return
	}
	mc.session.CenterOn(mapPos)
}

// MouseIn implements desktop.Hoverable.
func (mc *MapCanvas) MouseIn(ev *desktop.MouseEvent) {
	mc.session.PointerMoved(mc.toClient(ev.Position))
}

// MouseMoved tracks the pointer for zoom anchoring.
func (mc *MapCanvas) MouseMoved(ev *desktop.MouseEvent) {
	mc.session.PointerMoved(mc.toClient(ev.Position))
}

// MouseOut forgets the pointer; zoom then anchors on the centre.
func (mc *MapCanvas) MouseOut() {
	mc.session.PointerLeft()
}

// RenderedOutput returns the frame buffer of the last paint.
func (mc *MapCanvas) RenderedOutput() *image.RGBA {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.output
}

// toClient converts a widget position (fyne units) to raster pixels.
func (mc *MapCanvas) toClient(pos fyne.Position) geometry.Point2D {
	mc.mu.Lock()
	s := mc.pixScale
	mc.mu.Unlock()
	return geometry.Point2D{X: float64(pos.X * s), Y: float64(pos.Y * s)}
}

// draw is the raster callback. It keeps the session's client size in step
// with the raster, drains the pending region and repaints it.
func (mc *MapCanvas) draw(w, h int) image.Image {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if size := mc.Size(); size.Width > 0 {
		mc.pixScale = float32(w) / size.Width
	}
	resized := mc.output == nil || mc.output.Bounds().Dx() != w || mc.output.Bounds().Dy() != h
	if resized {
		mc.output = image.NewRGBA(image.Rect(0, 0, w, h))
		fillBackdrop(mc.output)
	}
	if !mc.session.OnResize(geometry.NewSize(float64(w), float64(h))) && resized {
		mc.session.InvalidateAll()
	}

	frame, ok := mc.session.BeginFrame()
	if !ok {
		return mc.output
	}
	touched := mc.painter.Paint(mc.output, frame)
	if mc.onFrame != nil && len(touched) > 0 {
		mc.onFrame(touched)
	}
	return mc.output
}

func fillBackdrop(output *image.RGBA) {
	for i := 0; i < len(output.Pix); i += 4 {
		output.Pix[i] = colorutil.Backdrop.R
		output.Pix[i+1] = colorutil.Backdrop.G
		output.Pix[i+2] = colorutil.Backdrop.B
		output.Pix[i+3] = 255
	}
}

// CreateRenderer implements fyne.Widget.
func (mc *MapCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(mc.raster)
}
