package termview

import (
	"context"
	"image/color"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapview/internal/app"
	mapimage "mapview/internal/image"
	"mapview/internal/mapgrid"
	"mapview/internal/viewport"
	"mapview/pkg/geometry"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.RGBA{A: 255}
)

// newTestView shows a 100x100 checkerboard of 50px squares on a 20x11
// screen, which gives a 20x20 client surface.
func newTestView(t *testing.T) (*View, *app.Session, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(20, 11)

	sess := app.NewSession(viewport.ZoomPolicy{Min: 1, Max: 4, Step: 1})
	grid, err := mapgrid.New(2, 2, 50, 50)
	require.NoError(t, err)
	sess.LoadMap(geometry.NewSize(100, 100), grid)

	layer := mapimage.Checkerboard(100, 100, 50, white, black)
	return New(screen, sess, layer, nil), sess, screen
}

func cellColors(t *testing.T, s tcell.Screen, x, y int) (fg, bg tcell.Color) {
	t.Helper()
	r, _, style, _ := s.GetContent(x, y)
	require.Equal(t, halfBlock, r, "cell %d,%d", x, y)
	fg, bg, _ = style.Decompose()
	return fg, bg
}

func TestClientSize(t *testing.T) {
	assert.Equal(t, geometry.NewSize(80, 46), clientSize(80, 24))
	assert.Equal(t, geometry.NewSize(10, 0), clientSize(10, 0))
}

func TestDrawPaintsHalfBlocks(t *testing.T) {
	v, sess, screen := newTestView(t)
	assert.Equal(t, geometry.NewRect(0, 0, 100, 100), sess.Bounds())

	require.True(t, v.Draw())
	fg, bg := cellColors(t, screen, 0, 0)
	assert.Equal(t, rgb(white), fg)
	assert.Equal(t, rgb(white), bg)

	fg, bg = cellColors(t, screen, 15, 0)
	assert.Equal(t, rgb(black), fg)
	assert.Equal(t, rgb(black), bg)

	fg, _ = cellColors(t, screen, 15, 9)
	assert.Equal(t, rgb(white), fg)

	r, _, _, _ := screen.GetContent(0, 10)
	assert.Equal(t, ' ', r, "status line")

	assert.False(t, v.Draw(), "nothing pending")
}

func TestDrawBlendsObjects(t *testing.T) {
	v, sess, screen := newTestView(t)
	v.colors = map[string]color.RGBA{"lake": {B: 255, A: 255}}
	sess.PlaceObject("lake", geometry.RectInt{X: 1, Y: 0, Width: 1, Height: 1})
	require.True(t, v.Draw())

	fg, _ := cellColors(t, screen, 15, 0)
	assert.Equal(t, tcell.NewRGBColor(0, 0, 128), fg)
	fg, _ = cellColors(t, screen, 0, 0)
	assert.Equal(t, rgb(white), fg)
}

func TestKeysZoomAndPan(t *testing.T) {
	v, sess, _ := newTestView(t)
	v.Draw()

	assert.True(t, v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, '+', tcell.ModNone)))
	assert.Equal(t, 2, sess.Zoom())
	assert.Equal(t, geometry.NewRect(25, 25, 50, 50), sess.Bounds())
	assert.True(t, v.Draw())

	v.HandleEvent(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	assert.Equal(t, geometry.NewPoint2D(5, 25), sess.ScrollPosition())

	v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, '-', tcell.ModNone))
	assert.Equal(t, 1, sess.Zoom())
}

func TestQuitKeys(t *testing.T) {
	v, _, _ := newTestView(t)
	assert.False(t, v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.False(t, v.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.True(t, v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))
}

func TestWheelZooms(t *testing.T) {
	v, sess, _ := newTestView(t)
	v.HandleEvent(tcell.NewEventMouse(0, 0, tcell.WheelUp, tcell.ModNone))
	assert.Equal(t, 2, sess.Zoom())
	assert.Equal(t, 50.0, sess.Bounds().Width)

	v.HandleEvent(tcell.NewEventMouse(0, 0, tcell.WheelDown, tcell.ModNone))
	assert.Equal(t, 1, sess.Zoom())
}

func TestDragPans(t *testing.T) {
	v, sess, _ := newTestView(t)
	require.True(t, sess.RequestZoom(1))
	require.Equal(t, geometry.NewPoint2D(25, 25), sess.ScrollPosition())

	v.HandleEvent(tcell.NewEventMouse(10, 5, tcell.Button1, tcell.ModNone))
	v.HandleEvent(tcell.NewEventMouse(12, 5, tcell.Button1, tcell.ModNone))
	assert.Equal(t, geometry.NewPoint2D(20, 25), sess.ScrollPosition())

	v.HandleEvent(tcell.NewEventMouse(12, 5, tcell.ButtonNone, tcell.ModNone))
	assert.Nil(t, v.dragFrom)
}

func TestHoverReportsObjects(t *testing.T) {
	v, sess, _ := newTestView(t)
	sess.PlaceObject("keep", geometry.RectInt{Width: 1, Height: 1})

	v.HandleEvent(tcell.NewEventMouse(2, 2, tcell.ButtonNone, tcell.ModNone))
	assert.Equal(t, "[keep]", v.status)

	v.HandleEvent(tcell.NewEventMouse(15, 2, tcell.ButtonNone, tcell.ModNone))
	assert.Empty(t, v.status)
}

func TestResizeEvent(t *testing.T) {
	v, sess, screen := newTestView(t)
	screen.SetSize(40, 11)
	v.HandleEvent(tcell.NewEventResize(40, 11))

	// A surface wider than the map is limited by the map width.
	assert.Equal(t, geometry.NewRect(0, 0, 100, 50), sess.Bounds())
}

func TestRunStopsOnQuit(t *testing.T) {
	v, _, screen := newTestView(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- v.Run(ctx) }()
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("Run did not return")
	}
}
