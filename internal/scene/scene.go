// Package scene reads the TOML files that describe a map: which image to
// show, the cell grid laid over it, the zoom policy and the objects placed
// on it.
//
// A minimal scene:
//
//	title = "Harbour"
//	image = "harbour.png"   # relative to the scene file
//	cell_size = 32
//
//	[zoom]
//	min = 1
//	max = 8
//	step = 1
//
//	[[objects]]
//	id = "lighthouse"
//	cells = { x = 4, y = 3, width = 1, height = 2 }
//	color = "#ffcc00"
package scene

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"mapview/internal/app"
	mapimage "mapview/internal/image"
	"mapview/internal/mapgrid"
	"mapview/internal/viewport"
	"mapview/pkg/colorutil"
	"mapview/pkg/geometry"
)

// DefaultCellSize is used when a scene does not set cell_size.
const DefaultCellSize = 32

// Scene is a decoded scene file.
type Scene struct {
	Title    string              `toml:"title"`
	Image    string              `toml:"image,omitempty"`
	Width    int                 `toml:"width,omitempty"`  // generated map, when no image
	Height   int                 `toml:"height,omitempty"` // generated map, when no image
	CellSize float64             `toml:"cell_size"`
	Zoom     viewport.ZoomPolicy `toml:"zoom"`
	Objects  []Object            `toml:"objects"`

	// Path is the file the scene was loaded from; relative image paths
	// resolve against its directory.
	Path string `toml:"-"`
}

// Object is a placed map object occupying a rectangle of cells.
type Object struct {
	ID    string           `toml:"id"`
	Label string           `toml:"label,omitempty"`
	Cells geometry.RectInt `toml:"cells"`
	Color string           `toml:"color,omitempty"`
}

// Load reads and validates a scene file.
func Load(path string) (*Scene, error) {
	var s Scene
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("scene %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	s.Path = path
	if s.CellSize == 0 {
		s.CellSize = DefaultCellSize
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks the scene for values the viewer cannot use.
func (s *Scene) Validate() error {
	var errs []error
	if s.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("cell_size must be positive, got %g", s.CellSize))
	}
	if s.Image == "" && (s.Width <= 0 || s.Height <= 0) {
		errs = append(errs, errors.New("either image or a positive width and height is required"))
	}
	seen := make(map[string]bool, len(s.Objects))
	for i, o := range s.Objects {
		switch {
		case o.ID == "":
			errs = append(errs, fmt.Errorf("objects[%d]: missing id", i))
		case seen[o.ID]:
			errs = append(errs, fmt.Errorf("objects[%d]: duplicate id %q", i, o.ID))
		}
		seen[o.ID] = true
		if o.Cells.Empty() {
			errs = append(errs, fmt.Errorf("object %q: cells must have a positive size", o.ID))
		}
		if o.Color != "" {
			if _, err := colorutil.ParseHex(o.Color); err != nil {
				errs = append(errs, fmt.Errorf("object %q: %w", o.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}

// ImagePath resolves the image path against the scene file's directory.
func (s *Scene) ImagePath() string {
	if s.Image == "" || filepath.IsAbs(s.Image) || s.Path == "" {
		return s.Image
	}
	return filepath.Join(filepath.Dir(s.Path), s.Image)
}

// LoadImage decodes the scene's map image, or generates a checkerboard of
// the scene's width and height when it names none.
func (s *Scene) LoadImage() (*mapimage.Layer, error) {
	if s.Image == "" {
		light := color.RGBA{R: 0x6b, G: 0x8e, B: 0x4e, A: 0xff}
		dark := color.RGBA{R: 0x4f, G: 0x6d, B: 0x3a, A: 0xff}
		return mapimage.Checkerboard(s.Width, s.Height, int(s.CellSize), light, dark), nil
	}
	return mapimage.Load(s.ImagePath())
}

// Grid returns the cell grid covering a map of the given extent.
func (s *Scene) Grid(extent geometry.Size) (mapgrid.Grid, error) {
	return mapgrid.Covering(extent, s.CellSize)
}

// Colors returns the fill color of every object, keyed by id. Objects
// without a color get one from the shared palette.
func (s *Scene) Colors() map[string]color.RGBA {
	out := make(map[string]color.RGBA, len(s.Objects))
	for i, o := range s.Objects {
		c, err := colorutil.ParseHex(o.Color)
		if err != nil {
			c = colorutil.Palette(i)
		}
		out[o.ID] = c
	}
	return out
}

// Apply loads the scene into a session: zoom policy, map extent and grid,
// then every object in a single batch.
func (s *Scene) Apply(sess *app.Session, extent geometry.Size) error {
	grid, err := s.Grid(extent)
	if err != nil {
		return err
	}
	if err := s.checkObjects(grid); err != nil {
		return err
	}
	if s.Zoom != (viewport.ZoomPolicy{}) {
		sess.SetZoomPolicy(s.Zoom)
	}
	sess.LoadMap(extent, grid)
	sess.Batch(func() {
		for _, o := range s.Objects {
			sess.PlaceObject(o.ID, o.Cells)
		}
	})
	return nil
}

// checkObjects rejects objects that do not lie entirely on the grid.
func (s *Scene) checkObjects(grid mapgrid.Grid) error {
	gb := grid.Bounds()
	var errs []error
	for _, o := range s.Objects {
		if in, ok := o.Cells.Intersect(gb); !ok || in != o.Cells {
			errs = append(errs, fmt.Errorf("object %q: cells %+v outside the %dx%d grid",
				o.ID, o.Cells, grid.Cols, grid.Rows))
		}
	}
	return errors.Join(errs...)
}

// Save writes the scene as TOML.
func (s *Scene) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(s); err != nil {
		f.Close()
		return fmt.Errorf("encode scene %s: %w", path, err)
	}
	return f.Close()
}

// Object returns the object with the given id.
func (s *Scene) Object(id string) (Object, bool) {
	for _, o := range s.Objects {
		if o.ID == id {
			return o, true
		}
	}
	return Object{}, false
}
