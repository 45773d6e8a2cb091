package canvas

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapview/internal/app"
	mapimage "mapview/internal/image"
	"mapview/internal/invalidate"
	"mapview/internal/mapgrid"
	"mapview/internal/viewport"
	"mapview/pkg/colorutil"
	"mapview/pkg/geometry"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
)

// testFrame shows a 4x4 map of 2x2-pixel cells on an 8x8 client.
func testFrame(t *testing.T, region invalidate.Region) app.Frame {
	t.Helper()
	tr, err := viewport.NewTransform(geometry.NewRect(0, 0, 4, 4), geometry.NewSize(8, 8))
	require.NoError(t, err)
	grid, err := mapgrid.New(2, 2, 2, 2)
	require.NoError(t, err)
	return app.Frame{Transform: tr, Region: region, Grid: grid, Zoom: 1}
}

func filled(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func redPainter() *Painter {
	return &Painter{Map: mapimage.Checkerboard(4, 4, 4, red, red), PixelArt: true}
}

func TestPaintFull(t *testing.T) {
	out := filled(blue)
	touched := redPainter().Paint(out, testFrame(t, invalidate.Region{Full: true}))

	assert.Equal(t, []image.Rectangle{image.Rect(0, 0, 8, 8)}, touched)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			require.Equal(t, red, out.RGBAAt(x, y), "pixel %d,%d", x, y)
		}
	}
}

func TestPaintOnlyDirtyCells(t *testing.T) {
	out := filled(blue)
	region := invalidate.Region{Cells: invalidate.NewCellSet(geometry.PointInt{X: 1, Y: 1})}
	touched := redPainter().Paint(out, testFrame(t, region))

	assert.Equal(t, []image.Rectangle{image.Rect(4, 4, 8, 8)}, touched)
	assert.Equal(t, red, out.RGBAAt(5, 5))
	assert.Equal(t, blue, out.RGBAAt(1, 1))
	assert.Equal(t, blue, out.RGBAAt(5, 1))
}

func TestPaintEmptyRegionTouchesNothing(t *testing.T) {
	out := filled(blue)
	touched := redPainter().Paint(out, testFrame(t, invalidate.Region{}))

	assert.Empty(t, touched)
	assert.Equal(t, blue, out.RGBAAt(4, 4))
}

func TestPaintObjects(t *testing.T) {
	p := redPainter()
	p.Overlay = NewOverlay()
	p.Overlay.Styles["a"] = ObjectStyle{Fill: green}

	f := testFrame(t, invalidate.Region{Full: true})
	f.Objects = []app.Placed{{ID: "a", Cells: geometry.RectInt{Width: 1, Height: 1}}}
	out := filled(blue)
	p.Paint(out, f)

	assert.Equal(t, green, out.RGBAAt(0, 0), "outline")
	assert.Equal(t, colorutil.Blend(red, green, 0.35), out.RGBAAt(1, 1), "fill")
	assert.Equal(t, red, out.RGBAAt(6, 6))
}

func TestPaintShowDirty(t *testing.T) {
	p := redPainter()
	p.ShowDirty = true
	out := filled(blue)
	region := invalidate.Region{Cells: invalidate.NewCellSet(geometry.PointInt{X: 1, Y: 1})}
	p.Paint(out, testFrame(t, region))

	assert.Equal(t, colorutil.DirtyTint, out.RGBAAt(4, 4))
	assert.Equal(t, red, out.RGBAAt(5, 5))
}

func TestLabelScale(t *testing.T) {
	assert.Equal(t, 0, labelScale(4))
	assert.Equal(t, 1, labelScale(7))
	assert.Equal(t, 2, labelScale(12))
	assert.Equal(t, 6, labelScale(500))
}

func TestDrawLabel(t *testing.T) {
	out := image.NewRGBA(image.Rect(0, 0, 20, 12))
	drawLabel(out, "17", out.Bounds(), colorutil.White)

	lit := 0
	for i := 0; i < len(out.Pix); i += 4 {
		if out.Pix[i] == 255 {
			lit++
		}
	}
	assert.Positive(t, lit)
	assert.Equal(t, colorutil.Black, labelColor(colorutil.White))
	assert.Equal(t, colorutil.White, labelColor(colorutil.Black))
}
