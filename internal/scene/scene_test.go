package scene

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapview/internal/app"
	"mapview/internal/viewport"
	"mapview/pkg/colorutil"
	"mapview/pkg/geometry"
)

const sampleScene = `
title = "Meadow"
width = 640
height = 480
cell_size = 32

[zoom]
min = 1
max = 8
step = 1

[[objects]]
id = "barn"
label = "Barn"
cells = { x = 4, y = 4, width = 3, height = 2 }
color = "#aa3322"

[[objects]]
id = "well"
cells = { x = 10, y = 2, width = 1, height = 1 }
`

func writeScene(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScene(t *testing.T) {
	s, err := Load(writeScene(t, sampleScene))
	require.NoError(t, err)

	assert.Equal(t, "Meadow", s.Title)
	assert.Equal(t, viewport.ZoomPolicy{Min: 1, Max: 8, Step: 1}, s.Zoom)
	require.Len(t, s.Objects, 2)
	assert.Equal(t, geometry.RectInt{X: 4, Y: 4, Width: 3, Height: 2}, s.Objects[0].Cells)

	colors := s.Colors()
	assert.Equal(t, color.RGBA{R: 0xaa, G: 0x33, B: 0x22, A: 0xff}, colors["barn"])
	assert.Equal(t, colorutil.Palette(1), colors["well"])
}

func TestLoadSceneRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "width = 10\nheight = 10\nzoomz = 3\n", "unknown keys zoomz"},
		{"no map", "cell_size = 8\n", "either image"},
		{"bad cell size", "width = 10\nheight = 10\ncell_size = -1\n", "cell_size"},
		{"duplicate id", "width = 10\nheight = 10\n[[objects]]\nid = \"a\"\ncells = {width = 1, height = 1}\n[[objects]]\nid = \"a\"\ncells = {width = 1, height = 1}\n", "duplicate id"},
		{"empty object", "width = 10\nheight = 10\n[[objects]]\nid = \"a\"\n", "positive size"},
		{"bad color", "width = 10\nheight = 10\n[[objects]]\nid = \"a\"\ncolor = \"red\"\ncells = {width = 1, height = 1}\n", "color"},
		{"syntax", "width = = 3\n", "read scene"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeScene(t, tt.body))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestImagePathResolvesAgainstScene(t *testing.T) {
	s := &Scene{Image: "maps/a.png", Path: "/data/scenes/x.toml"}
	assert.Equal(t, filepath.Join("/data/scenes", "maps/a.png"), s.ImagePath())

	s.Image = "/abs/b.png"
	assert.Equal(t, "/abs/b.png", s.ImagePath())
}

func TestApplyLoadsMapAndObjects(t *testing.T) {
	s, err := Load(writeScene(t, sampleScene))
	require.NoError(t, err)
	layer, err := s.LoadImage()
	require.NoError(t, err)
	assert.Equal(t, geometry.NewSize(640, 480), layer.Size())

	sess := app.NewSession(viewport.ZoomPolicy{})
	var repaints int
	sess.On(app.EventRepaintNeeded, func(interface{}) { repaints++ })
	require.NoError(t, s.Apply(sess, layer.Size()))

	grid, ok := sess.Grid()
	require.True(t, ok)
	assert.Equal(t, 20, grid.Cols)
	assert.Equal(t, 15, grid.Rows)
	assert.Equal(t, 8, sess.ZoomPolicy().Max)

	b, ok := sess.ObjectBounds("barn")
	require.True(t, ok)
	assert.Equal(t, s.Objects[0].Cells, b)
	assert.Equal(t, 1, repaints, "objects are placed while the full repaint is pending")
}

func TestApplyRejectsObjectsOffTheGrid(t *testing.T) {
	s, err := Load(writeScene(t, sampleScene+`
[[objects]]
id = "sprawl"
cells = { x = 0, y = 0, width = 100000, height = 100000 }
`))
	require.NoError(t, err)
	layer, err := s.LoadImage()
	require.NoError(t, err)

	sess := app.NewSession(viewport.ZoomPolicy{})
	err = s.Apply(sess, layer.Size())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `object "sprawl"`)

	_, loaded := sess.Grid()
	assert.False(t, loaded, "session is left untouched")
}

func TestSaveRoundTrip(t *testing.T) {
	s, err := Load(writeScene(t, sampleScene))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "copy.toml")
	require.NoError(t, s.Save(out))
	again, err := Load(out)
	require.NoError(t, err)

	assert.Equal(t, s.Objects, again.Objects)
	assert.Equal(t, s.Zoom, again.Zoom)
}

func TestWatcherReportsModifiedFile(t *testing.T) {
	path := writeScene(t, sampleScene)
	w := NewWatcher(time.Hour, path)
	var seen []string
	w.OnChange(func(p string) { seen = append(seen, p) })

	assert.Empty(t, w.Poll())

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	assert.Equal(t, []string{path}, w.Poll())
	assert.Equal(t, []string{path}, seen)
	assert.Empty(t, w.Poll(), "reported once")
}

func TestWatcherMissingFileAppears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "later.toml")
	w := NewWatcher(time.Hour, path)
	assert.Empty(t, w.Poll())

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	assert.Equal(t, []string{path}, w.Poll())
}
