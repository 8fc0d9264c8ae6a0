package gamedata

import (
	"fmt"

	"github.com/samdwyer/roguetiles/internal/world"
)

// TileDef defines a terrain kind loaded from YAML.
type TileDef struct {
	Name           string `yaml:"name"`           // Unique kind name (e.g., "floor")
	Glyph          string `yaml:"glyph"`          // Character drawn when the tile is empty
	Color          string `yaml:"color"`          // Hex color code
	Walkable       bool   `yaml:"walkable"`       // Can be walked on
	Transparent    bool   `yaml:"transparent"`    // Can be seen through
	AllowsItems    bool   `yaml:"allowsItems"`    // May hold an item
	AllowsBlockers bool   `yaml:"allowsBlockers"` // May hold a blocker
}

// Kind converts the definition into a world.Kind.
func (d *TileDef) Kind() (*world.Kind, error) {
	color, err := ParseHexColor(d.Color)
	if err != nil {
		return nil, fmt.Errorf("tile %q: %w", d.Name, err)
	}
	return &world.Kind{
		Name:           d.Name,
		Glyph:          world.Glyph{Rune: glyphRune(d.Glyph), Color: color},
		Walkable:       d.Walkable,
		Transparent:    d.Transparent,
		AllowsItems:    d.AllowsItems,
		AllowsBlockers: d.AllowsBlockers,
	}, nil
}

// TilesFile represents the structure of tiles.yaml.
type TilesFile struct {
	Tiles []TileDef `yaml:"tiles"`
}

// LoadKinds loads the terrain kinds from tiles.yaml, indexed by name.
func LoadKinds() (map[string]*world.Kind, error) {
	file, err := Load[TilesFile]("tiles.yaml")
	if err != nil {
		return nil, err
	}

	kinds := make(map[string]*world.Kind, len(file.Tiles))
	for i := range file.Tiles {
		def := &file.Tiles[i]
		if _, dup := kinds[def.Name]; dup {
			return nil, fmt.Errorf("tile %q defined twice", def.Name)
		}
		kind, err := def.Kind()
		if err != nil {
			return nil, err
		}
		kinds[def.Name] = kind
	}

	for _, required := range []string{world.KindNameWall, world.KindNameFloor, world.KindNameStairsDown} {
		if _, ok := kinds[required]; !ok {
			return nil, fmt.Errorf("tiles.yaml is missing the %q kind", required)
		}
	}
	return kinds, nil
}

// LoadPalette loads the kinds and returns them as a generator palette.
func LoadPalette() (world.Palette, error) {
	kinds, err := LoadKinds()
	if err != nil {
		return world.Palette{}, err
	}
	return world.PaletteFrom(kinds), nil
}

// glyphRune returns the first rune of s, or '?' if s is empty.
func glyphRune(s string) rune {
	for _, r := range s {
		return r
	}
	return '?'
}
