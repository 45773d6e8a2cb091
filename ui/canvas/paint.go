package canvas

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"mapview/internal/app"
	mapimage "mapview/internal/image"
	"mapview/pkg/colorutil"
	"mapview/pkg/geometry"
)

// Painter renders frames of a map into a persistent RGBA buffer. Only the
// frame's dirty client rectangles are touched; the rest of the buffer keeps
// what the previous frames left there.
type Painter struct {
	Map       *mapimage.Layer
	Overlay   *Overlay
	PixelArt  bool // nearest-neighbour sampling instead of bilinear
	ShowDirty bool // outline every repainted rectangle
}

// Paint repaints the dirty part of f into output and returns the client
// rectangles it touched.
func (p *Painter) Paint(output *image.RGBA, f app.Frame) []image.Rectangle {
	var scaler draw.Transformer = draw.ApproxBiLinear
	if p.PixelArt {
		scaler = draw.NearestNeighbor
	}
	s2d := f64.Aff3(f.Transform.Matrix().Aff3())

	var touched []image.Rectangle
	for _, cr := range f.ClientRects() {
		r := toImageRect(cr).Intersect(output.Bounds())
		if r.Empty() {
			continue
		}
		dst := output.SubImage(r).(*image.RGBA)
		draw.Draw(dst, r, image.NewUniform(colorutil.Backdrop), image.Point{}, draw.Src)
		if p.Map != nil && p.Map.Image != nil {
			scaler.Transform(dst, s2d, p.Map.Image, p.Map.Image.Bounds(), draw.Over, nil)
		}
		p.paintObjects(dst, f)
		if p.ShowDirty {
			strokeRect(dst, r, colorutil.DirtyTint, 1)
		}
		touched = append(touched, r)
	}
	return touched
}

// paintObjects draws the frame's objects, clipped to dst.
func (p *Painter) paintObjects(dst *image.RGBA, f app.Frame) {
	thickness := 1
	if f.Zoom > 2 {
		thickness = 2
	}
	for i, o := range f.Objects {
		r := toImageRect(f.Transform.MapRectToClient(f.Grid.RectToMap(o.Cells)).Outer())
		if !r.Overlaps(dst.Bounds()) {
			continue
		}
		style := p.Overlay.Style(o.ID, i)
		alpha := 0.35
		if p.Overlay != nil {
			alpha = p.Overlay.FillAlpha
		}
		blendRect(dst, r, style.Fill, alpha)
		strokeRect(dst, r, style.Fill, thickness)
		drawLabel(dst, style.Label, r, labelColor(style.Fill))
	}
}

func toImageRect(r geometry.RectInt) image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}
