// Package savegame persists a game in progress through gdata, encoded as YAML.
package savegame

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/quasilyte/gdata/v2"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"

	"github.com/samdwyer/roguetiles/internal/telemetry"
	"github.com/samdwyer/roguetiles/internal/world"
)

// FormatVersion is bumped whenever Data changes incompatibly.
const FormatVersion = 1

// Storage location inside gdata.
const (
	savesObject = "saves"
	defaultSlot = "slot"
)

var (
	// ErrNoSave is returned by Load when nothing has been saved.
	ErrNoSave = errors.New("no saved game")
	// ErrDisabled is returned when the store has no backing storage.
	ErrDisabled = errors.New("saving disabled")
)

// Data is everything needed to resume a game.
type Data struct {
	Version   int            `yaml:"version"`
	Seed      int64          `yaml:"seed"`
	Level     int            `yaml:"level"`
	Dungeon   world.Snapshot `yaml:"dungeon"`
	Entities  []EntityRecord `yaml:"entities"`
	Player    string         `yaml:"player"`
	Inventory []string       `yaml:"inventory"`
	Messages  []string       `yaml:"messages"`
}

// EntityRecord is one serialised registry entry.
type EntityRecord struct {
	ID       string `yaml:"id"`
	Template string `yaml:"template,omitempty"`
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Glyph    string `yaml:"glyph"`
	Color    string `yaml:"color"`
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	OnMap    bool   `yaml:"onMap"`
}

// Encode serialises save data.
func Encode(d Data) ([]byte, error) {
	d.Version = FormatVersion
	out, err := yaml.Marshal(&d)
	if err != nil {
		return nil, fmt.Errorf("encode save: %w", err)
	}
	return out, nil
}

// Decode parses save data and checks its version.
func Decode(raw []byte) (Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("decode save: %w", err)
	}
	if d.Version != FormatVersion {
		return Data{}, fmt.Errorf("decode save: unsupported version %d", d.Version)
	}
	return d, nil
}

// Store reads and writes one save slot. A Store without a gdata manager
// keeps nothing: Save and Load report ErrDisabled.
type Store struct {
	manager *gdata.Manager
	slot    string
	logger  *slog.Logger
}

// Open creates a store backed by gdata under appName.
func Open(appName string, logger *slog.Logger) (*Store, error) {
	if appName == "" {
		return NewStore(nil, logger), nil
	}
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("open save storage %q: %w", appName, err)
	}
	return NewStore(m, logger), nil
}

// NewStore wraps a gdata manager, which may be nil.
func NewStore(m *gdata.Manager, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{manager: m, slot: defaultSlot, logger: logger}
}

// Enabled reports whether the store has backing storage.
func (s *Store) Enabled() bool {
	return s.manager != nil
}

// Exists reports whether the slot holds a save.
func (s *Store) Exists() bool {
	return s.manager != nil && s.manager.ObjectPropExists(savesObject, s.slot)
}

// Save writes d to the slot, replacing what was there.
func (s *Store) Save(ctx context.Context, d Data) error {
	_, span := telemetry.Tracer("savegame").Start(ctx, "save.write")
	defer span.End()

	if s.manager == nil {
		return ErrDisabled
	}
	raw, err := Encode(d)
	if err != nil {
		return err
	}
	if err := s.manager.SaveObjectProp(savesObject, s.slot, raw); err != nil {
		return fmt.Errorf("write save: %w", err)
	}

	span.SetAttributes(
		attribute.Int("save.bytes", len(raw)),
		attribute.Int("save.entities", len(d.Entities)),
		attribute.Int("save.level", d.Level),
	)
	s.logger.Info("game saved", "bytes", len(raw), "level", d.Level)
	return nil
}

// Load reads the slot.
func (s *Store) Load(ctx context.Context) (Data, error) {
	_, span := telemetry.Tracer("savegame").Start(ctx, "save.read")
	defer span.End()

	if s.manager == nil {
		return Data{}, ErrDisabled
	}
	if !s.manager.ObjectPropExists(savesObject, s.slot) {
		return Data{}, ErrNoSave
	}
	raw, err := s.manager.LoadObjectProp(savesObject, s.slot)
	if err != nil {
		return Data{}, fmt.Errorf("read save: %w", err)
	}
	d, err := Decode(raw)
	if err != nil {
		return Data{}, err
	}

	span.SetAttributes(attribute.Int("save.bytes", len(raw)), attribute.Int("save.level", d.Level))
	s.logger.Info("game loaded", "bytes", len(raw), "level", d.Level)
	return d, nil
}
