package mapgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapview/pkg/geometry"
)

func TestNewRejectsBadDimensions(t *testing.T) {
	tests := []struct {
		name       string
		cols, rows int
		cw, ch     float64
	}{
		{"zero cols", 0, 4, 8, 8},
		{"negative rows", 3, -1, 8, 8},
		{"zero cell width", 3, 3, 0, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cols, tt.rows, tt.cw, tt.ch)
			assert.Error(t, err)
		})
	}
}

func TestCellIndexRoundTrip(t *testing.T) {
	g, err := New(7, 5, 10, 10)
	require.NoError(t, err)

	for i := 0; i < g.Len(); i++ {
		c, ok := g.CellToLocation(i)
		require.True(t, ok)
		back, ok := g.LocationToCell(c)
		require.True(t, ok)
		assert.Equal(t, i, back)
	}

	_, ok := g.CellToLocation(-1)
	assert.False(t, ok)
	_, ok = g.CellToLocation(35)
	assert.False(t, ok)
	_, ok = g.LocationToCell(geometry.PointInt{X: 7, Y: 0})
	assert.False(t, ok)
}

func TestCoveringRoundsUp(t *testing.T) {
	g, err := Covering(geometry.NewSize(1000, 801), 32)
	require.NoError(t, err)
	assert.Equal(t, 32, g.Cols)
	assert.Equal(t, 26, g.Rows)
	assert.Equal(t, geometry.NewSize(1024, 832), g.Extent())
}

func TestCellsCovering(t *testing.T) {
	g, err := New(10, 10, 16, 16)
	require.NoError(t, err)

	r, ok := g.CellsCovering(geometry.NewRect(20, 0, 20, 16))
	require.True(t, ok)
	assert.Equal(t, geometry.RectInt{X: 1, Y: 0, Width: 2, Height: 1}, r)

	r, ok = g.CellsCovering(geometry.NewRect(-50, 150, 100, 100))
	require.True(t, ok)
	assert.Equal(t, geometry.RectInt{X: 0, Y: 9, Width: 4, Height: 1}, r)

	_, ok = g.CellsCovering(geometry.NewRect(500, 500, 10, 10))
	assert.False(t, ok)
}

func TestCellAtAndCellRect(t *testing.T) {
	g, err := New(4, 4, 8, 4)
	require.NoError(t, err)

	c, ok := g.CellAt(geometry.NewPoint2D(17, 5))
	require.True(t, ok)
	assert.Equal(t, geometry.PointInt{X: 2, Y: 1}, c)
	assert.Equal(t, geometry.NewRect(16, 4, 8, 4), g.CellRect(c))

	_, ok = g.CellAt(geometry.NewPoint2D(-0.5, 0))
	assert.False(t, ok)
}
