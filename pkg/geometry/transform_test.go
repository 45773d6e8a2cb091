package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInverse(t *testing.T) {
	tests := []struct {
		name string
		t    AffineTransform
	}{
		{"identity", Identity()},
		{"translation", Translation(10, -20)},
		{"scale", Scale(2, 0.5)},
		{"scale then translate", Scale(3, 3).Compose(Translation(-100, -40))},
		{"shear", AffineTransform{A: 1, B: 0.5, C: 0.25, D: 1, TX: 3, TY: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.t.Inverse()
			require.True(t, ok)
			p := NewPoint2D(12.5, -7)
			back := inv.Apply(tt.t.Apply(p))
			assert.InDelta(t, p.X, back.X, 1e-9)
			assert.InDelta(t, p.Y, back.Y, 1e-9)
		})
	}
}

func TestInverseSingular(t *testing.T) {
	_, ok := Scale(0, 1).Inverse()
	assert.False(t, ok)
	_, err := AffineTransform{}.Invert()
	assert.Error(t, err)
}

func TestComposeAppliesRightFirst(t *testing.T) {
	m := Scale(2, 2).Compose(Translation(1, 1))
	assert.Equal(t, NewPoint2D(4, 6), m.Apply(NewPoint2D(1, 2)))
}

func TestApplyVectorAndRect(t *testing.T) {
	m := Translation(100, 100).Compose(Scale(-2, 3))
	assert.Equal(t, NewPoint2D(-2, 3), m.ApplyVector(NewPoint2D(1, 1)))
	assert.Equal(t, NewSize(2, 3), m.ApplySize(NewSize(1, 1)))

	r := m.ApplyRect(NewRect(0, 0, 10, 10))
	assert.Equal(t, NewRect(80, 100, 20, 30), r)
}

func TestRectIntIntersect(t *testing.T) {
	a := RectInt{X: 0, Y: 0, Width: 4, Height: 4}
	got, ok := a.Intersect(RectInt{X: 2, Y: 3, Width: 10, Height: 10})
	require.True(t, ok)
	assert.Equal(t, RectInt{X: 2, Y: 3, Width: 2, Height: 1}, got)

	_, ok = a.Intersect(RectInt{X: 4, Y: 0, Width: 1, Height: 1})
	assert.False(t, ok)
}

func TestRectOuter(t *testing.T) {
	assert.Equal(t, RectInt{X: -1, Y: 2, Width: 4, Height: 2}, NewRect(-0.5, 2, 3, 1.5).Outer())
}
