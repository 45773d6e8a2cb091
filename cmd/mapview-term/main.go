// Command mapview-term shows a scene in the terminal using half-block cells.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"mapview/internal/app"
	"mapview/internal/scene"
	"mapview/internal/termview"
	"mapview/internal/version"
	"mapview/internal/viewport"
)

func main() {
	scenePath := flag.String("scene", "", "Path to scene file (TOML)")
	logPath := flag.String("log", "", "Write logs to this file instead of discarding them")
	debug := flag.Bool("debug", false, "Log viewport diagnostics")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *scenePath == "" {
		*scenePath = flag.Arg(0)
	}
	if *scenePath == "" {
		fmt.Println("Usage: mapview-term [-log file] [-debug] -scene <scene.toml>")
		os.Exit(1)
	}

	// The terminal belongs to tcell; logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	log.SetOutput(logOut)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if *debug {
		viewport.SetLogger(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	sc, err := scene.Load(*scenePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load scene: %v\n", err)
		os.Exit(1)
	}
	layer, err := sc.LoadImage()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load map image: %v\n", err)
		os.Exit(1)
	}

	session := app.NewSession(viewport.DefaultZoomPolicy)
	if err := sc.Apply(session, layer.Size()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to apply scene: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init screen: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse(tcell.MouseButtonEvents | tcell.MouseMotionEvents)
	screen.Clear()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	view := termview.New(screen, session, layer, sc.Colors())
	runErr := view.Run(ctx)
	stop()
	screen.Fini()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
	log.Printf("Exited %s", *scenePath)
}
