// Package viewport converts between map space and client space and owns
// the camera that decides which part of the map is visible.
package viewport

import (
	"errors"
	"fmt"

	"mapview/pkg/geometry"
)

// ErrDegenerate is returned when a transform is requested for a zero-area
// camera rectangle or client surface.
var ErrDegenerate = errors.New("viewport: degenerate bounds or client size")

// Transform is the composite map→client transform for one camera state,
// together with its inverse. Both are built at once and never updated
// separately.
type Transform struct {
	bounds  geometry.Rect
	client  geometry.Size
	forward geometry.AffineTransform
	inverse geometry.AffineTransform
}

// NewTransform builds the composite transform that maps bounds (map space)
// onto a client surface of the given size:
//
//	client = Scale(client) * Scale(1/bounds.size) * Translate(-bounds.origin) * map
//
// The first two factors are the map→normalized-view step, the last one the
// normalized-view→client step.
func NewTransform(bounds geometry.Rect, client geometry.Size) (Transform, error) {
	if bounds.Empty() || client.Empty() {
		return Transform{}, fmt.Errorf("%w: bounds=%+v client=%+v", ErrDegenerate, bounds, client)
	}

	toView := geometry.Scale(1/bounds.Width, 1/bounds.Height).
		Compose(geometry.Translation(-bounds.X, -bounds.Y))
	toClient := geometry.Scale(client.Width, client.Height)
	forward := toClient.Compose(toView)

	inverse, err := forward.Invert()
	if err != nil {
		return Transform{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	return Transform{
		bounds:  bounds,
		client:  client,
		forward: forward,
		inverse: inverse,
	}, nil
}

// Bounds returns the camera rectangle the transform was built from.
func (t Transform) Bounds() geometry.Rect { return t.bounds }

// ClientSize returns the client size the transform was built for.
func (t Transform) ClientSize() geometry.Size { return t.client }

// Matrix returns the forward (map→client) matrix.
func (t Transform) Matrix() geometry.AffineTransform { return t.forward }

// InverseMatrix returns the inverse (client→map) matrix.
func (t Transform) InverseMatrix() geometry.AffineTransform { return t.inverse }

// MapToClient converts a map-space point to client space.
func (t Transform) MapToClient(p geometry.Point2D) geometry.Point2D {
	return t.forward.Apply(p)
}

// MapVectorToClient converts a map-space delta to client space.
func (t Transform) MapVectorToClient(v geometry.Point2D) geometry.Point2D {
	return t.forward.ApplyVector(v)
}

// MapSizeToClient converts a map-space extent to client space.
func (t Transform) MapSizeToClient(s geometry.Size) geometry.Size {
	return t.forward.ApplySize(s)
}

// MapRectToClient converts a map-space rectangle to client space.
func (t Transform) MapRectToClient(r geometry.Rect) geometry.Rect {
	return t.forward.ApplyRect(r)
}

// ClientToMap converts a client-space point to map space.
func (t Transform) ClientToMap(p geometry.Point2D) geometry.Point2D {
	return t.inverse.Apply(p)
}

// ClientVectorToMap converts a client-space delta (scroll, drag) to map space.
func (t Transform) ClientVectorToMap(v geometry.Point2D) geometry.Point2D {
	return t.inverse.ApplyVector(v)
}

// ClientSizeToMap converts a client-space extent to map space.
func (t Transform) ClientSizeToMap(s geometry.Size) geometry.Size {
	return t.inverse.ApplySize(s)
}

// ClientRectToMap converts a client-space rectangle to map space.
func (t Transform) ClientRectToMap(r geometry.Rect) geometry.Rect {
	return t.inverse.ApplyRect(r)
}
