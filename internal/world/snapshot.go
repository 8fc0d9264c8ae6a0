package world

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// Snapshot is the serialisable form of a dungeon. Tiles are row-major.
type Snapshot struct {
	Width  int         `yaml:"width"`
	Height int         `yaml:"height"`
	Rooms  []Room      `yaml:"rooms"`
	Tiles  []TileState `yaml:"tiles"`
}

// TileState is one serialised tile. Empty strings mean an empty slot.
type TileState struct {
	Kind    string `yaml:"k"`
	Item    string `yaml:"i,omitempty"`
	Blocker string `yaml:"b,omitempty"`
}

// Snapshot captures the dungeon's terrain and occupancy.
func (d *Dungeon) Snapshot() Snapshot {
	s := Snapshot{
		Width:  d.Width,
		Height: d.Height,
		Rooms:  append([]Room(nil), d.Rooms...),
		Tiles:  make([]TileState, 0, d.Width*d.Height),
	}
	for y := range d.Tiles {
		for x := range d.Tiles[y] {
			t := &d.Tiles[y][x]
			ts := TileState{Kind: t.kind.Name}
			if id, ok := t.Item(); ok {
				ts.Item = id.String()
			}
			if id, ok := t.Blocker(); ok {
				ts.Blocker = id.String()
			}
			s.Tiles = append(s.Tiles, ts)
		}
	}
	return s
}

// Restore rebuilds a dungeon from a snapshot. Kind names are resolved in
// kinds and every occupant is replayed through the occupancy rules, so a
// snapshot that breaks them is rejected with the same errors.
func Restore(s Snapshot, kinds map[string]*Kind, rng *rand.Rand) (*Dungeon, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("restore dungeon: invalid size %dx%d", s.Width, s.Height)
	}
	// Compare by division first so huge dimensions cannot overflow.
	if s.Width > len(s.Tiles)/s.Height || len(s.Tiles) != s.Width*s.Height {
		return nil, fmt.Errorf("restore dungeon: %d tiles for %dx%d map", len(s.Tiles), s.Width, s.Height)
	}

	d := NewDungeon(s.Width, s.Height, PaletteFrom(kinds), rng)
	d.Rooms = append(d.Rooms, s.Rooms...)

	var errs []error
	for i, ts := range s.Tiles {
		x, y := i%s.Width, i/s.Width
		kind, ok := kinds[ts.Kind]
		if !ok {
			errs = append(errs, fmt.Errorf("tile (%d,%d): unknown kind %q", x, y, ts.Kind))
			continue
		}
		d.Tiles[y][x] = NewTile(kind)

		if ts.Item != "" {
			if err := restoreRef(ts.Item, func(id uuid.UUID) error { return d.PlaceItem(x, y, id) }); err != nil {
				errs = append(errs, err)
			}
		}
		if ts.Blocker != "" {
			if err := restoreRef(ts.Blocker, func(id uuid.UUID) error { return d.PlaceBlocker(x, y, id) }); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("restore dungeon: %w", err)
	}
	return d, nil
}

func restoreRef(raw string, place func(uuid.UUID) error) error {
	id, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse reference %q: %w", raw, err)
	}
	return place(id)
}
