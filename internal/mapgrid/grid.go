// Package mapgrid describes the cell grid laid over a map image and converts
// between cells, linear cell indices and map pixels.
package mapgrid

import (
	"fmt"
	"math"

	"mapview/pkg/geometry"
)

// Grid is a row-major grid of equally sized cells starting at the map
// origin.
type Grid struct {
	Cols     int
	Rows     int
	CellSize geometry.Size
}

// New validates and returns a grid.
func New(cols, rows int, cellWidth, cellHeight float64) (Grid, error) {
	if cols <= 0 || rows <= 0 {
		return Grid{}, fmt.Errorf("grid needs positive dimensions, got %dx%d", cols, rows)
	}
	if cellWidth <= 0 || cellHeight <= 0 {
		return Grid{}, fmt.Errorf("grid needs a positive cell size, got %gx%g", cellWidth, cellHeight)
	}
	return Grid{Cols: cols, Rows: rows, CellSize: geometry.NewSize(cellWidth, cellHeight)}, nil
}

// Covering returns the smallest grid of square cells that covers a map of
// the given pixel size.
func Covering(extent geometry.Size, cell float64) (Grid, error) {
	if cell <= 0 {
		return Grid{}, fmt.Errorf("grid needs a positive cell size, got %g", cell)
	}
	cols := int(math.Ceil(extent.Width / cell))
	rows := int(math.Ceil(extent.Height / cell))
	return New(cols, rows, cell, cell)
}

// Len returns the number of cells.
func (g Grid) Len() int { return g.Cols * g.Rows }

// Bounds returns the grid as a cell rectangle.
func (g Grid) Bounds() geometry.RectInt {
	return geometry.RectInt{Width: g.Cols, Height: g.Rows}
}

// Extent returns the map-space size covered by the grid.
func (g Grid) Extent() geometry.Size {
	return geometry.NewSize(float64(g.Cols)*g.CellSize.Width, float64(g.Rows)*g.CellSize.Height)
}

// Contains reports whether cell lies on the grid.
func (g Grid) Contains(cell geometry.PointInt) bool {
	return g.Bounds().Contains(cell)
}

// CellToLocation converts a linear index to grid coordinates.
func (g Grid) CellToLocation(index int) (geometry.PointInt, bool) {
	if index < 0 || index >= g.Len() {
		return geometry.PointInt{}, false
	}
	return geometry.PointInt{X: index % g.Cols, Y: index / g.Cols}, true
}

// LocationToCell converts grid coordinates to a linear index.
func (g Grid) LocationToCell(cell geometry.PointInt) (int, bool) {
	if !g.Contains(cell) {
		return 0, false
	}
	return cell.Y*g.Cols + cell.X, true
}

// CellAt returns the cell containing a map-space point.
func (g Grid) CellAt(p geometry.Point2D) (geometry.PointInt, bool) {
	c := geometry.PointInt{
		X: int(math.Floor(p.X / g.CellSize.Width)),
		Y: int(math.Floor(p.Y / g.CellSize.Height)),
	}
	return c, g.Contains(c)
}

// CellRect returns the map-space rectangle of one cell.
func (g Grid) CellRect(cell geometry.PointInt) geometry.Rect {
	return g.RectToMap(geometry.RectInt{X: cell.X, Y: cell.Y, Width: 1, Height: 1})
}

// RectToMap returns the map-space rectangle of a cell rectangle.
func (g Grid) RectToMap(r geometry.RectInt) geometry.Rect {
	return geometry.NewRect(
		float64(r.X)*g.CellSize.Width,
		float64(r.Y)*g.CellSize.Height,
		float64(r.Width)*g.CellSize.Width,
		float64(r.Height)*g.CellSize.Height,
	)
}

// CellsCovering returns the cells whose area intersects a map-space
// rectangle, clipped to the grid.
func (g Grid) CellsCovering(r geometry.Rect) (geometry.RectInt, bool) {
	x0 := int(math.Floor(r.X / g.CellSize.Width))
	y0 := int(math.Floor(r.Y / g.CellSize.Height))
	x1 := int(math.Ceil((r.X + r.Width) / g.CellSize.Width))
	y1 := int(math.Ceil((r.Y + r.Height) / g.CellSize.Height))
	return geometry.RectInt{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}.Intersect(g.Bounds())
}
