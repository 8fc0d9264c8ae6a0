package game

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/samdwyer/roguetiles/internal/world"
)

// Environment variables read by LoadConfig.
const (
	EnvSeed    = "ROGUETILES_SEED"
	EnvWidth   = "ROGUETILES_WIDTH"
	EnvHeight  = "ROGUETILES_HEIGHT"
	EnvSaveApp = "ROGUETILES_SAVE_APP"
	EnvLogPath = "ROGUETILES_LOG"
)

// Config holds game configuration options.
type Config struct {
	// Seed for random number generation. Used for reproducible dungeon generation.
	// A seed of 0 means a random seed will be generated.
	Seed int64

	// Map dimensions for every level.
	Width, Height int

	// SaveApp is the application name save data is stored under.
	// Empty disables saving.
	SaveApp string

	// LogPath is the file the game logs to. Empty discards logs, since the
	// terminal belongs to the UI.
	LogPath string
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Width:   world.DefaultWidth,
		Height:  world.DefaultHeight,
		SaveApp: "roguetiles",
	}
}

// LoadConfig loads the given .env files (".env" when none are given) into
// the environment, then builds a Config from it. Missing .env files are not
// an error; env vars might be set directly.
func LoadConfig(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env: %w", err)
	}
	return ConfigFromEnv()
}

// ConfigFromEnv builds a Config from environment variables over DefaultConfig.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvSeed, err)
		}
		cfg.Seed = seed
	}
	if err := intFromEnv(EnvWidth, &cfg.Width); err != nil {
		return Config{}, err
	}
	if err := intFromEnv(EnvHeight, &cfg.Height); err != nil {
		return Config{}, err
	}
	if v, ok := os.LookupEnv(EnvSaveApp); ok {
		cfg.SaveApp = v
	}
	cfg.LogPath = os.Getenv(EnvLogPath)

	return cfg, cfg.Validate()
}

// Validate checks that the map is large enough to generate rooms in.
func (c Config) Validate() error {
	if c.Width < 20 || c.Height < 10 {
		return fmt.Errorf("map size %dx%d too small, need at least 20x10", c.Width, c.Height)
	}
	return nil
}

func intFromEnv(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
