// Package main provides the entry point for the Map View application.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"mapview/internal/app"
	"mapview/internal/version"
	"mapview/internal/viewport"
	"mapview/ui/mainwindow"
	"mapview/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

const appID = "io.github.mapview"

func main() {
	debug := flag.Bool("debug", false, "Log viewport diagnostics")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting Map View %s", version.String())

	if *debug {
		viewport.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	appPrefs := prefs.Load()
	session := app.NewSession(appPrefs.ZoomPolicy(viewport.DefaultZoomPolicy))

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&mainwindow.MapViewTheme{})

	win := mainwindow.New(fyneApp, session, appPrefs)

	// Scene from the command line, else the last one opened
	scenePath := flag.Arg(0)
	if scenePath == "" {
		scenePath = appPrefs.String(prefs.KeyLastScene, "")
	}
	if scenePath != "" {
		if err := win.LoadScene(scenePath); err != nil {
			log.Printf("Failed to load scene %s: %v", scenePath, err)
		}
	}

	win.ShowAndRun()
}
