// Package main is the entry point for roguetiles.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/samdwyer/roguetiles/internal/game"
	"github.com/samdwyer/roguetiles/internal/savegame"
	"github.com/samdwyer/roguetiles/internal/telemetry"
	"github.com/samdwyer/roguetiles/internal/ui"
)

func main() {
	// Loads .env for local development, which may carry the Honeycomb key.
	cfg, err := game.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	setupOTelEnv()

	ctx := context.Background()

	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		log.Printf("Warning: telemetry setup failed: %v", err)
		log.Printf("Game will run without observability")
		telemetry.Disable()
	} else {
		defer func() {
			if err := shutdown(ctx); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	logger, closeLog, err := newLogger(cfg.LogPath)
	if err != nil {
		log.Fatalf("Failed to open log: %v", err)
	}
	defer closeLog()

	store, err := savegame.Open(cfg.SaveApp, logger)
	if err != nil {
		// Not fatal - the game runs without saves
		log.Printf("Warning: save storage unavailable: %v", err)
		store = savegame.NewStore(nil, logger)
	}

	screen, err := ui.NewScreen()
	if err != nil {
		log.Fatalf("Failed to initialize screen: %v", err)
	}

	g, err := game.New(screen, cfg, store, logger)
	if err != nil {
		screen.Close()
		log.Fatalf("Failed to initialize game: %v", err)
	}

	if err := g.Run(ctx); err != nil {
		log.Fatalf("Game error: %v", err)
	}
}

// newLogger returns a text logger writing to path, or a discarding logger
// when path is empty.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}

// setupOTelEnv configures OTEL environment variables from our custom env vars.
func setupOTelEnv() {
	os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://api.honeycomb.io")

	// The .env file may carry an unexpanded header reference, so the header
	// is always built here.
	apiKey := os.Getenv("HONEYCOMB_ROGUETILES_API_KEY")
	dataset := os.Getenv("HONEYCOMB_ROGUETILES_DATASET")
	if dataset == "" {
		dataset = "roguetiles"
	}
	if apiKey != "" {
		os.Setenv("OTEL_EXPORTER_OTLP_HEADERS",
			fmt.Sprintf("x-honeycomb-team=%s,x-honeycomb-dataset=%s", apiKey, dataset))
	}
}
