package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#ff8000", color.RGBA{R: 255, G: 128, B: 0, A: 255}, true},
		{"00ff0080", color.RGBA{R: 0, G: 255, B: 0, A: 128}, true},
		{" #102030 ", color.RGBA{R: 16, G: 32, B: 48, A: 255}, true},
		{"#fff", color.RGBA{}, false},
		{"#gg0000", color.RGBA{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHSVToRGBPrimaries(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 255, A: 255}, HSVToRGB(0, 1, 1))
	assert.Equal(t, color.RGBA{G: 255, A: 255}, HSVToRGB(120, 1, 1))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, HSVToRGB(-120, 1, 1))
	assert.Equal(t, color.RGBA{R: 128, G: 128, B: 128, A: 255}, HSVToRGB(42, 0, 0.5))
}

func TestPaletteNeighboursDiffer(t *testing.T) {
	for i := 0; i < 8; i++ {
		assert.NotEqual(t, Palette(i), Palette(i+1))
	}
}

func TestBlend(t *testing.T) {
	assert.Equal(t, Black, Blend(Black, White, 0))
	assert.Equal(t, White, Blend(Black, White, 1))
	assert.Equal(t, color.RGBA{R: 128, G: 128, B: 128, A: 255}, Blend(Black, White, 0.5))
}
