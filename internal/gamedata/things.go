package gamedata

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/roguetiles/internal/world"
)

// ThingKind says which tile slot a thing occupies.
type ThingKind string

const (
	ThingItem    ThingKind = "item"
	ThingBlocker ThingKind = "blocker"
)

// ThingDef defines a spawnable item or blocker loaded from YAML.
type ThingDef struct {
	ID          string    `yaml:"id"`          // Unique identifier (e.g., "orc")
	Name        string    `yaml:"name"`        // Display name (e.g., "orc")
	Glyph       string    `yaml:"glyph"`       // Single character for rendering (e.g., "o")
	Color       string    `yaml:"color"`       // Hex color code (e.g., "#D70000")
	Kind        ThingKind `yaml:"kind"`        // item or blocker
	SpawnWeight int       `yaml:"spawnWeight"` // Relative spawn frequency (higher = more common)
	MinLevel    int       `yaml:"minLevel"`    // First dungeon level the thing appears on
}

// GlyphRune returns the glyph as a rune for rendering.
func (t *ThingDef) GlyphRune() rune {
	return glyphRune(t.Glyph)
}

// TCellColor returns the color as a tcell.Color.
func (t *ThingDef) TCellColor() tcell.Color {
	color, err := ParseHexColor(t.Color)
	if err != nil {
		return tcell.ColorWhite
	}
	return color
}

// WorldGlyph returns the glyph drawn for the thing on the map.
func (t *ThingDef) WorldGlyph() world.Glyph {
	return world.Glyph{Rune: t.GlyphRune(), Color: t.TCellColor()}
}

// Transition is one step of a per-level table.
type Transition struct {
	Level int `yaml:"level"`
	Value int `yaml:"value"`
}

// LevelTables holds the per-room caps that grow with depth.
type LevelTables struct {
	MaxBlockersPerRoom []Transition `yaml:"maxBlockersPerRoom"`
	MaxItemsPerRoom    []Transition `yaml:"maxItemsPerRoom"`
}

// FromLevel returns the value of the deepest transition at or above level,
// or 0 when level precedes every transition.
func FromLevel(table []Transition, level int) int {
	value, best := 0, -1
	for _, tr := range table {
		if tr.Level <= level && tr.Level > best {
			value, best = tr.Value, tr.Level
		}
	}
	return value
}

// ThingsFile represents the structure of things.yaml.
type ThingsFile struct {
	Things []ThingDef   `yaml:"things"`
	Levels LevelTables `yaml:"levels"`
}

// LoadThings loads thing definitions and level tables from things.yaml.
func LoadThings() (ThingsFile, error) {
	file, err := Load[ThingsFile]("things.yaml")
	if err != nil {
		return ThingsFile{}, err
	}
	for i := range file.Things {
		def := &file.Things[i]
		if def.Kind != ThingItem && def.Kind != ThingBlocker {
			return ThingsFile{}, fmt.Errorf("thing %q has unknown kind %q", def.ID, def.Kind)
		}
		if _, err := ParseHexColor(def.Color); err != nil {
			return ThingsFile{}, fmt.Errorf("thing %q: %w", def.ID, err)
		}
	}
	return file, nil
}
