package canvas

import (
	"image"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapview/internal/app"
	mapimage "mapview/internal/image"
	"mapview/internal/mapgrid"
	"mapview/internal/viewport"
	"mapview/pkg/geometry"
)

// newTestCanvas shows a 100x80 map of 10px cells on a 200x160 raster.
func newTestCanvas(t *testing.T) (*MapCanvas, *app.Session) {
	t.Helper()
	test.NewApp()

	sess := app.NewSession(viewport.ZoomPolicy{Min: 1, Max: 8, Step: 1})
	grid, err := mapgrid.New(10, 8, 10, 10)
	require.NoError(t, err)
	sess.LoadMap(geometry.NewSize(100, 80), grid)

	mc := NewMapCanvas(sess)
	mc.SetPainter(Painter{Map: mapimage.Checkerboard(100, 80, 10, red, blue), PixelArt: true})
	mc.draw(200, 160)
	return mc, sess
}

func TestCanvasFirstDrawSizesSession(t *testing.T) {
	mc, sess := newTestCanvas(t)

	assert.Equal(t, geometry.NewRect(0, 0, 100, 80), sess.Bounds())
	assert.False(t, sess.Pending())
	out := mc.RenderedOutput()
	require.NotNil(t, out)
	assert.Equal(t, red, out.RGBAAt(5, 5))
	assert.Equal(t, blue, out.RGBAAt(25, 5))
}

func TestCanvasRepaintsChangedCellOnly(t *testing.T) {
	mc, sess := newTestCanvas(t)
	var touched []image.Rectangle
	mc.OnFrame(func(r []image.Rectangle) { touched = r })

	sess.NotifyChangedPoint(geometry.PointInt{X: 1, Y: 1})
	mc.draw(200, 160)

	assert.Equal(t, []image.Rectangle{image.Rect(20, 20, 40, 40)}, touched)
}

func TestCanvasWheelZoomsAtPointer(t *testing.T) {
	mc, sess := newTestCanvas(t)

	mc.Scrolled(&fyne.ScrollEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(0, 0)},
		Scrolled:   fyne.NewDelta(0, 1),
	})
	assert.Equal(t, 2, sess.Zoom())
	assert.Equal(t, geometry.NewRect(0, 0, 50, 40), sess.Bounds())

	mc.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, -1)})
	assert.Equal(t, 1, sess.Zoom())
}

func TestCanvasDragPans(t *testing.T) {
	mc, sess := newTestCanvas(t)
	mc.MouseIn(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(100, 80)}})
	require.True(t, sess.RequestZoom(1))
	require.Equal(t, geometry.NewPoint2D(25, 20), sess.ScrollPosition())

	// Dragging the map right moves the camera left.
	mc.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(120, 80)},
		Dragged:    fyne.NewDelta(20, 0),
	})
	assert.Equal(t, geometry.NewPoint2D(20, 20), sess.ScrollPosition())
	mc.DragEnd()
}

func TestCanvasMouseOutAnchorsOnCentre(t *testing.T) {
	mc, sess := newTestCanvas(t)
	mc.MouseMoved(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(0, 0)}})
	mc.MouseOut()

	require.True(t, sess.RequestZoom(1))
	assert.Equal(t, geometry.NewPoint2D(25, 20), sess.ScrollPosition())
}

func TestCanvasTapHitTests(t *testing.T) {
	mc, sess := newTestCanvas(t)
	sess.PlaceObject("tower", geometry.RectInt{X: 2, Y: 1, Width: 1, Height: 1})

	var gotIDs []string
	var gotPos geometry.Point2D
	mc.OnTap(func(ids []string, p geometry.Point2D) {
		gotIDs, gotPos = ids, p
	})
	mc.Tapped(&fyne.PointEvent{Position: fyne.NewPos(50, 30)})

	assert.Equal(t, []string{"tower"}, gotIDs)
	assert.Equal(t, geometry.NewPoint2D(25, 15), gotPos)
}

func TestCanvasDoubleTapCentres(t *testing.T) {
	mc, sess := newTestCanvas(t)
	require.True(t, sess.RequestZoom(1))
	require.Equal(t, geometry.NewPoint2D(25, 20), sess.ScrollPosition())

	// Raster (20, 20) is map (30, 25) at 4 pixels per map pixel.
	mc.DoubleTapped(&fyne.PointEvent{Position: fyne.NewPos(20, 20)})
	assert.Equal(t, geometry.NewPoint2D(5, 5), sess.ScrollPosition())

	// Near a corner the camera stops at the map edge.
	mc.DoubleTapped(&fyne.PointEvent{Position: fyne.NewPos(0, 0)})
	assert.Equal(t, geometry.NewPoint2D(0, 0), sess.ScrollPosition())
}
