// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"image"
	"log"
	"path/filepath"
	"time"

	"mapview/internal/app"
	"mapview/internal/scene"
	"mapview/internal/version"
	"mapview/pkg/geometry"
	"mapview/ui/canvas"
	"mapview/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const (
	appTitle = "Map View"
	panStep  = 48 // pixels per arrow key press
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	session   *app.Session
	prefs     *prefs.Prefs
	canvas    *canvas.MapCanvas
	statusBar *widget.Label
	zoomLabel *widget.Label

	scene   *scene.Scene
	watcher *scene.Watcher
}

// New creates a new main window.
func New(fyneApp fyne.App, session *app.Session, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window:  win,
		app:     fyneApp,
		session: session,
		prefs:   p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupKeys()

	win.SetOnClosed(func() {
		mw.stopWatching()
		mw.prefs.SetZoomPolicy(mw.session.ZoomPolicy())
		if err := mw.prefs.Save(); err != nil {
			log.Printf("Failed to save preferences: %v", err)
		}
	})
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewMapCanvas(mw.session)
	mw.canvas.OnTap(mw.onMapTapped)
	mw.canvas.OnFrame(func(touched []image.Rectangle) {
		if mw.prefs.Bool(prefs.KeyShowDirty, false) {
			mw.updateStatus(fmt.Sprintf("Repainted %d rect(s)", len(touched)))
		}
	})

	mw.statusBar = widget.NewLabel("Ready")
	mw.zoomLabel = widget.NewLabel("")
	mw.updateZoomLabel()

	statusArea := container.NewBorder(nil, nil, nil, mw.zoomLabel, mw.statusBar)
	content := container.NewBorder(
		mw.createToolbar(),              // top
		container.NewPadded(statusArea), // bottom
		nil,                             // left
		nil,                             // right
		mw.canvas,                       // center
	)
	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1024, 768))
}

// createToolbar creates the toolbar with zoom and render controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	zoomOutBtn := widget.NewButton("-", func() {
		mw.session.RequestZoom(-1)
	})
	zoomInBtn := widget.NewButton("+", func() {
		mw.session.RequestZoom(1)
	})
	fitBtn := widget.NewButton("Fit", func() {
		mw.session.RequestZoomLevel(mw.session.ZoomPolicy().Min)
	})

	pixelCheck := widget.NewCheck("Pixel art", func(checked bool) {
		quality := prefs.QualitySmooth
		if checked {
			quality = prefs.QualityPixelArt
		}
		mw.prefs.SetString(prefs.KeyQuality, quality)
		mw.canvas.SetPixelArt(checked)
	})
	pixelCheck.SetChecked(mw.prefs.PixelArt())

	dirtyCheck := widget.NewCheck("Show repaints", func(checked bool) {
		mw.prefs.SetBool(prefs.KeyShowDirty, checked)
		mw.canvas.SetShowDirty(checked)
	})
	dirtyCheck.SetChecked(mw.prefs.Bool(prefs.KeyShowDirty, false))

	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		fitBtn,
		widget.NewSeparator(),
		pixelCheck,
		dirtyCheck,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Scene...", mw.onOpenScene),
		fyne.NewMenuItem("Reload Scene", mw.onReloadScene),
		fyne.NewMenuItem("Save Scene As...", mw.onSaveSceneAs),
	)
	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { mw.session.RequestZoom(1) }),
		fyne.NewMenuItem("Zoom Out", func() { mw.session.RequestZoom(-1) }),
		fyne.NewMenuItem("Fit", func() { mw.session.RequestZoomLevel(mw.session.ZoomPolicy().Min) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Redraw", func() { mw.session.InvalidateAll() }),
	)
	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)
	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers subscribes to session events.
func (mw *MainWindow) setupEventHandlers() {
	mw.session.On(app.EventZoomChanged, func(interface{}) {
		mw.updateZoomLabel()
	})
	mw.session.On(app.EventCameraMoved, func(interface{}) {
		mw.updateZoomLabel()
	})
	mw.session.On(app.EventMapLoaded, func(interface{}) {
		mw.updateZoomLabel()
	})
}

// setupKeys binds arrow keys to panning and +/- to zoom.
func (mw *MainWindow) setupKeys() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyUp:
			mw.session.RequestPan(panDelta(0, -1))
		case fyne.KeyDown:
			mw.session.RequestPan(panDelta(0, 1))
		case fyne.KeyLeft:
			mw.session.RequestPan(panDelta(-1, 0))
		case fyne.KeyRight:
			mw.session.RequestPan(panDelta(1, 0))
		}
	})
	mw.Canvas().SetOnTypedRune(func(r rune) {
		switch r {
		case '+', '=':
			mw.session.RequestZoom(1)
		case '-':
			mw.session.RequestZoom(-1)
		}
	})
}

// LoadScene loads a scene file into the session and canvas and starts
// watching it for edits.
func (mw *MainWindow) LoadScene(path string) error {
	sc, err := scene.Load(path)
	if err != nil {
		return err
	}
	layer, err := sc.LoadImage()
	if err != nil {
		return err
	}

	overlay := canvas.NewOverlay()
	for id, c := range sc.Colors() {
		o, _ := sc.Object(id)
		overlay.Styles[id] = canvas.ObjectStyle{Fill: c, Label: o.Label}
	}
	mw.canvas.SetPainter(canvas.Painter{
		Map:       layer,
		Overlay:   overlay,
		PixelArt:  mw.prefs.PixelArt(),
		ShowDirty: mw.prefs.Bool(prefs.KeyShowDirty, false),
	})
	if err := sc.Apply(mw.session, layer.Size()); err != nil {
		return err
	}
	if z := mw.prefs.Int(prefs.KeyZoomDefault, 0); z > 0 {
		mw.session.RequestZoomLevel(z)
	}

	mw.scene = sc
	mw.prefs.SetString(prefs.KeyLastScene, path)
	title := sc.Title
	if title == "" {
		title = filepath.Base(path)
	}
	mw.SetTitle(appTitle + " - " + title)
	mw.updateStatus(fmt.Sprintf("Loaded %s: %d object(s)", filepath.Base(path), len(sc.Objects)))
	mw.watch(sc)
	return nil
}

// watch restarts the file watcher on the scene and its image.
func (mw *MainWindow) watch(sc *scene.Scene) {
	mw.stopWatching()
	paths := []string{sc.Path}
	if img := sc.ImagePath(); img != "" {
		paths = append(paths, img)
	}
	mw.watcher = scene.NewWatcher(time.Second, paths...)
	mw.watcher.OnChange(func(changed string) {
		log.Printf("Scene watch: %s changed, reloading", changed)
		if err := mw.LoadScene(sc.Path); err != nil {
			log.Printf("Scene watch: reload failed: %v", err)
			mw.updateStatus("Reload failed: " + err.Error())
		}
	})
	mw.watcher.Start()
}

func (mw *MainWindow) stopWatching() {
	if mw.watcher != nil {
		mw.watcher.Stop()
		mw.watcher = nil
	}
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) updateZoomLabel() {
	b := mw.session.Bounds()
	mw.zoomLabel.SetText(fmt.Sprintf("%dx  (%.0f, %.0f) %.0fx%.0f",
		mw.session.Zoom(), b.X, b.Y, b.Width, b.Height))
}

// getLastDir returns the directory of the last scene as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastScene, "")
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(filepath.Dir(path)))
	if err != nil {
		return nil
	}
	return listable
}

func (mw *MainWindow) onOpenScene() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		if err := mw.LoadScene(reader.URI().Path()); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".toml"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onReloadScene() {
	if mw.scene == nil {
		mw.updateStatus("No scene loaded")
		return
	}
	if err := mw.LoadScene(mw.scene.Path); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

// onSaveSceneAs writes the loaded scene, with the current zoom limits, to a
// new file and switches to it.
func (mw *MainWindow) onSaveSceneAs() {
	if mw.scene == nil {
		mw.updateStatus("No scene loaded")
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()

		sc := *mw.scene
		sc.Zoom = mw.session.ZoomPolicy()
		if sc.Image != "" {
			if abs, err := filepath.Abs(sc.ImagePath()); err == nil {
				sc.Image = abs
			}
		}
		if err := sc.Save(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		log.Printf("Saved scene to %s", path)
		if err := mw.LoadScene(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".toml"}))
	fd.SetFileName(filepath.Base(mw.scene.Path))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onMapTapped(ids []string, mapPos geometry.Point2D) {
	cell := "-"
	if g, ok := mw.session.Grid(); ok {
		if c, ok := g.CellAt(mapPos); ok {
			cell = fmt.Sprintf("%d,%d", c.X, c.Y)
		}
	}
	text := fmt.Sprintf("Map (%.0f, %.0f) cell %s", mapPos.X, mapPos.Y, cell)
	if len(ids) > 0 {
		text += fmt.Sprintf(": %v", ids)
	}
	mw.updateStatus(text)
}

func panDelta(dx, dy float64) geometry.Point2D {
	return geometry.Point2D{X: dx * panStep, Y: dy * panStep}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"Tile map viewer with cell-level partial repaint.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
