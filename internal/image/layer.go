// Package image loads and generates the raster images maps are drawn from.
package image

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"mapview/pkg/geometry"

	_ "golang.org/x/image/tiff"
)

// Layer is a map image. Its pixel grid is map space.
type Layer struct {
	Path  string      // Source file, empty for generated maps
	Image image.Image // Decoded pixels
}

// Load decodes the image at path. PNG, JPEG and TIFF are supported.
func Load(path string) (*Layer, error) {
	if !IsSupportedFormat(path) {
		return nil, fmt.Errorf("unsupported map image format: %s", filepath.Ext(path))
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open map image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode map image %s: %w", path, err)
	}
	return &Layer{Path: path, Image: img}, nil
}

// Checkerboard generates a width x height map of alternating cell-sized
// squares, used when a scene names no image.
func Checkerboard(width, height, cell int, light, dark color.Color) *Layer {
	if cell < 1 {
		cell = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(dark), image.Point{}, draw.Src)
	lightSrc := image.NewUniform(light)
	for y := 0; y < height; y += cell {
		for x := 0; x < width; x += cell {
			if (x/cell+y/cell)%2 == 0 {
				r := image.Rect(x, y, x+cell, y+cell).Intersect(img.Bounds())
				draw.Draw(img, r, lightSrc, image.Point{}, draw.Src)
			}
		}
	}
	return &Layer{Image: img}
}

// Width returns the image width in pixels.
func (l *Layer) Width() int {
	if l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (l *Layer) Height() int {
	if l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dy()
}

// Size returns the image dimensions, i.e. the map extent.
func (l *Layer) Size() geometry.Size {
	return geometry.Size{
		Width:  float64(l.Width()),
		Height: float64(l.Height()),
	}
}

// PixelAt returns the color at map pixel (x, y), or black outside the map.
func (l *Layer) PixelAt(x, y int) color.Color {
	if l.Image == nil {
		return color.Black
	}
	b := l.Image.Bounds()
	p := image.Pt(b.Min.X+x, b.Min.Y+y)
	if !p.In(b) {
		return color.Black
	}
	return l.Image.At(p.X, p.Y)
}

// Average returns the mean color of the map pixels inside r, clipped to the
// map. An empty intersection yields black.
func (l *Layer) Average(r image.Rectangle) color.RGBA {
	if l.Image == nil {
		return color.RGBA{A: 255}
	}
	b := l.Image.Bounds()
	r = r.Add(b.Min).Intersect(b)
	if r.Empty() {
		return color.RGBA{A: 255}
	}
	var sr, sg, sb, n uint64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := color.RGBAModel.Convert(l.Image.At(x, y)).(color.RGBA)
			sr += uint64(c.R)
			sg += uint64(c.G)
			sb += uint64(c.B)
			n++
		}
	}
	return color.RGBA{R: uint8(sr / n), G: uint8(sg / n), B: uint8(sb / n), A: 255}
}

// SupportedFormats returns the list of supported image extensions.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
