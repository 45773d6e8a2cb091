// Package termview draws a map session in a terminal. Each terminal cell
// shows two vertically stacked client pixels with an upper half block, so
// the client surface is width x 2*(height-1) pixels; the last row is a
// status line.
package termview

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"

	"mapview/internal/app"
	mapimage "mapview/internal/image"
	"mapview/pkg/colorutil"
	"mapview/pkg/geometry"
)

const (
	halfBlock = '▀'
	panStep   = 8 // client pixels per arrow key press
)

// View binds a session to a tcell screen.
type View struct {
	screen  tcell.Screen
	session *app.Session
	layer   *mapimage.Layer
	colors  map[string]color.RGBA

	dragFrom *geometry.Point2D
	status   string
}

// New creates a view. colors maps object ids to their tint; objects without
// one use the shared palette.
func New(screen tcell.Screen, session *app.Session, layer *mapimage.Layer, colors map[string]color.RGBA) *View {
	v := &View{
		screen:  screen,
		session: session,
		layer:   layer,
		colors:  colors,
	}
	v.Resize()
	return v
}

// Resize pushes the current screen size to the session.
func (v *View) Resize() {
	w, h := v.screen.Size()
	v.session.OnResize(clientSize(w, h))
}

func clientSize(w, h int) geometry.Size {
	rows := h - 1
	if rows < 0 {
		rows = 0
	}
	return geometry.NewSize(float64(w), float64(2*rows))
}

// Draw repaints the pending region and the status line. It reports whether
// any map cell was repainted.
func (v *View) Draw() bool {
	frame, ok := v.session.BeginFrame()
	painted := false
	if ok {
		for _, r := range frame.ClientRects() {
			v.paintRect(frame, r)
			painted = true
		}
	}
	v.drawStatus()
	v.screen.Show()
	return painted
}

// paintRect repaints the terminal cells covering client rectangle r.
func (v *View) paintRect(f app.Frame, r geometry.RectInt) {
	w, h := v.screen.Size()
	row0 := r.Y / 2
	row1 := (r.Y + r.Height + 1) / 2
	for row := max(row0, 0); row < min(row1, h-1); row++ {
		for x := max(r.X, 0); x < min(r.X+r.Width, w); x++ {
			top := v.sample(f, x, 2*row)
			bottom := v.sample(f, x, 2*row+1)
			style := tcell.StyleDefault.Foreground(rgb(top)).Background(rgb(bottom))
			v.screen.SetContent(x, row, halfBlock, nil, style)
		}
	}
}

// sample returns the color of client pixel (x, y): the average of the map
// pixels it covers, tinted by any object on its cell.
func (v *View) sample(f app.Frame, x, y int) color.RGBA {
	m := f.Transform.ClientRectToMap(geometry.NewRect(float64(x), float64(y), 1, 1))
	area := image.Rect(
		int(math.Floor(m.X)), int(math.Floor(m.Y)),
		int(math.Ceil(m.X+m.Width)), int(math.Ceil(m.Y+m.Height)),
	)
	c := colorutil.Backdrop
	if v.layer != nil {
		c = v.layer.Average(area)
	}

	cell, ok := f.Grid.CellAt(m.Center())
	if !ok {
		return c
	}
	for i, o := range f.Objects {
		if o.Cells.Contains(cell) {
			tint, ok := v.colors[o.ID]
			if !ok {
				tint = colorutil.Palette(i)
			}
			c = colorutil.Blend(c, tint, 0.5)
		}
	}
	return c
}

func (v *View) drawStatus() {
	w, h := v.screen.Size()
	if h < 1 {
		return
	}
	b := v.session.Bounds()
	text := fmt.Sprintf(" %dx (%.0f,%.0f) %.0fx%.0f  +/- zoom, arrows pan, q quit  %s",
		v.session.Zoom(), b.X, b.Y, b.Width, b.Height, v.status)
	style := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, r := range text {
		if x >= w {
			break
		}
		v.screen.SetContent(x, h-1, r, nil, style)
		x++
	}
	for ; x < w; x++ {
		v.screen.SetContent(x, h-1, ' ', nil, style)
	}
}

// HandleEvent applies one terminal event to the session. It returns false
// when the view should close.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ev)
	case *tcell.EventMouse:
		v.handleMouse(ev)
	case *tcell.EventResize:
		v.screen.Sync()
		v.Resize()
	case *tcell.EventInterrupt:
		return false
	}
	return true
}

func (v *View) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		v.session.RequestPan(geometry.Point2D{Y: -panStep})
	case tcell.KeyDown:
		v.session.RequestPan(geometry.Point2D{Y: panStep})
	case tcell.KeyLeft:
		v.session.RequestPan(geometry.Point2D{X: -panStep})
	case tcell.KeyRight:
		v.session.RequestPan(geometry.Point2D{X: panStep})
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case '+', '=':
			v.session.RequestZoom(1)
		case '-':
			v.session.RequestZoom(-1)
		case 'r':
			v.session.InvalidateAll()
		}
	}
	return true
}

func (v *View) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	p := geometry.Point2D{X: float64(x) + 0.5, Y: float64(2*y) + 1}
	v.session.PointerMoved(p)

	buttons := ev.Buttons()
	switch {
	case buttons&tcell.WheelUp != 0:
		v.session.RequestZoom(1)
	case buttons&tcell.WheelDown != 0:
		v.session.RequestZoom(-1)
	case buttons&tcell.Button1 != 0:
		if v.dragFrom != nil {
			v.session.RequestPan(v.dragFrom.Sub(p))
		}
		v.dragFrom = &p
	default:
		v.dragFrom = nil
		if ids := v.session.HitTest(p); len(ids) > 0 {
			v.status = fmt.Sprint(ids)
		} else {
			v.status = ""
		}
	}
}

// Run polls events until ctx is done or the user quits. The screen must
// already be initialised.
func (v *View) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	defer close(quit)
	go v.screen.ChannelEvents(events, quit)

	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !v.HandleEvent(ev) {
				return nil
			}
			v.Draw()
		}
	}
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
