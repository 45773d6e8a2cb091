// Package canvas provides overlay types for the map canvas.
package canvas

import (
	"image/color"

	"mapview/pkg/colorutil"
)

// ObjectStyle describes how a placed object is drawn over the map.
type ObjectStyle struct {
	Fill  color.RGBA
	Label string // Optional label drawn centered in the object
}

// Overlay maps object ids to their styles. Objects without a style are
// drawn with a palette color and no label.
type Overlay struct {
	Styles    map[string]ObjectStyle
	FillAlpha float64 // Opacity of the object fill (0.0 - 1.0)
}

// NewOverlay creates an overlay with the default fill opacity.
func NewOverlay() *Overlay {
	return &Overlay{
		Styles:    make(map[string]ObjectStyle),
		FillAlpha: 0.35,
	}
}

// Style returns the style for id. Unstyled objects are colored by their
// position in the draw order.
func (o *Overlay) Style(id string, order int) ObjectStyle {
	if o != nil {
		if s, ok := o.Styles[id]; ok {
			return s
		}
	}
	return ObjectStyle{Fill: colorutil.Palette(order)}
}
