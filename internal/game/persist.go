package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"

	"github.com/samdwyer/roguetiles/internal/entity"
	"github.com/samdwyer/roguetiles/internal/gamedata"
	"github.com/samdwyer/roguetiles/internal/savegame"
	"github.com/samdwyer/roguetiles/internal/world"
)

// SaveData captures the session for the save store.
func (s *Session) SaveData() savegame.Data {
	d := savegame.Data{
		Seed:     s.seed,
		Level:    s.Level,
		Dungeon:  s.Dungeon.Snapshot(),
		Player:   s.Player.ID.String(),
		Messages: s.Messages.All(),
	}
	for _, e := range s.Entities.All() {
		d.Entities = append(d.Entities, savegame.EntityRecord{
			ID:       e.ID.String(),
			Template: e.Template,
			Name:     e.Name,
			Kind:     e.Kind.String(),
			Glyph:    string(e.Glyph.Rune),
			Color:    hexColor(e.Glyph),
			X:        e.X,
			Y:        e.Y,
			OnMap:    e.OnMap,
		})
	}
	for _, id := range s.Player.Inventory() {
		d.Inventory = append(d.Inventory, id.String())
	}
	return d
}

// RestoreSession rebuilds a session from save data. The dungeon is replayed
// through the occupancy rules and every tile reference is checked against
// the restored entities, so inconsistent saves are refused.
func RestoreSession(data savegame.Data, cfg Config, things *gamedata.ThingRegistry, palette world.Palette, logger *slog.Logger) (*Session, error) {
	cfg.Seed = data.Seed
	s := newSession(cfg, things, palette, logger)
	// Continue from a stream derived from the seed and depth; the exact
	// generator state at save time is not kept.
	s.rng = rand.New(rand.NewSource(data.Seed + int64(data.Level)))
	s.Level = data.Level

	d, err := world.Restore(data.Dungeon, palette.Kinds(), s.rng)
	if err != nil {
		return nil, err
	}
	s.Dungeon = d

	for _, rec := range data.Entities {
		e, err := s.entityFromRecord(rec)
		if err != nil {
			return nil, err
		}
		if err := s.Entities.Add(e); err != nil {
			return nil, fmt.Errorf("restore: %w", err)
		}
	}

	playerID, err := uuid.Parse(data.Player)
	if err != nil {
		return nil, fmt.Errorf("restore player id: %w", err)
	}
	pe, err := s.Entities.Lookup(playerID)
	if err != nil {
		return nil, fmt.Errorf("restore player: %w", err)
	}
	if pe.Kind != entity.KindBlocker || !pe.OnMap {
		return nil, fmt.Errorf("restore player: %q must be a blocker on the map", pe.Name)
	}
	inventory, err := s.restoreInventory(data.Inventory)
	if err != nil {
		return nil, fmt.Errorf("restore inventory: %w", err)
	}
	if len(inventory) > entity.InventorySize {
		return nil, fmt.Errorf("restore inventory: %d items, at most %d fit", len(inventory), entity.InventorySize)
	}
	s.Player = entity.RestorePlayer(pe, inventory)

	if err := s.checkReferences(); err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	for _, msg := range data.Messages {
		s.Messages.Add(msg)
	}
	return s, nil
}

// restoreInventory parses carried ids. Each must be a registered item that
// is off the map and carried once.
func (s *Session) restoreInventory(raw []string) ([]uuid.UUID, error) {
	inventory := make([]uuid.UUID, 0, len(raw))
	carried := make(map[uuid.UUID]bool, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, err
		}
		e, err := s.Entities.Lookup(id)
		if err != nil {
			return nil, err
		}
		switch {
		case e.Kind != entity.KindItem:
			return nil, fmt.Errorf("%s %q cannot be carried", e.Kind, e.Name)
		case e.OnMap:
			return nil, fmt.Errorf("%q is both carried and on the map", e.Name)
		case carried[id]:
			return nil, fmt.Errorf("%q carried twice", e.Name)
		}
		carried[id] = true
		inventory = append(inventory, id)
	}
	return inventory, nil
}

func (s *Session) entityFromRecord(rec savegame.EntityRecord) (*entity.Entity, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("restore entity %q: %w", rec.Name, err)
	}
	e := &entity.Entity{
		ID:       id,
		Template: rec.Template,
		Name:     rec.Name,
		Kind:     entity.KindItem,
		X:        rec.X,
		Y:        rec.Y,
		OnMap:    rec.OnMap,
	}
	if rec.Kind == entity.KindBlocker.String() {
		e.Kind = entity.KindBlocker
	}

	if def := s.lookupThing(rec.Template); def != nil {
		e.Glyph = def.WorldGlyph()
		return e, nil
	}
	color, err := gamedata.ParseHexColor(rec.Color)
	if err != nil {
		return nil, fmt.Errorf("restore entity %q: %w", rec.Name, err)
	}
	e.Glyph = world.Glyph{Rune: firstRune(rec.Glyph), Color: color}
	return e, nil
}

func (s *Session) lookupThing(id string) *gamedata.ThingDef {
	if s.things == nil || id == "" {
		return nil
	}
	return s.things.GetByID(id)
}

// checkReferences verifies that tiles and registry agree both ways: every
// occupied slot names a registered entity of the matching kind standing
// where the tile is, and every entity on the map is held by the slot for
// its kind at its position.
func (s *Session) checkReferences() error {
	var errs []error
	for y := range s.Dungeon.Tiles {
		for x := range s.Dungeon.Tiles[y] {
			t := &s.Dungeon.Tiles[y][x]
			if id, ok := t.Item(); ok {
				errs = append(errs, s.checkRef(id, entity.KindItem, x, y))
			}
			if id, ok := t.Blocker(); ok {
				errs = append(errs, s.checkRef(id, entity.KindBlocker, x, y))
			}
		}
	}
	for _, e := range s.Entities.OnMap() {
		errs = append(errs, s.checkPlaced(e))
	}
	return errors.Join(errs...)
}

func (s *Session) checkPlaced(e *entity.Entity) error {
	t, ok := s.Dungeon.At(e.X, e.Y)
	if !ok {
		return fmt.Errorf("%q at (%d,%d): %w", e.Name, e.X, e.Y, world.ErrOutOfBounds)
	}
	held, _ := t.Item()
	if e.Kind == entity.KindBlocker {
		held, _ = t.Blocker()
	}
	if held != e.ID {
		return fmt.Errorf("%q: not in the %s slot at (%d,%d)", e.Name, e.Kind, e.X, e.Y)
	}
	return nil
}

func (s *Session) checkRef(id uuid.UUID, kind entity.Kind, x, y int) error {
	e, err := s.Entities.Lookup(id)
	if err != nil {
		return fmt.Errorf("tile (%d,%d): %w", x, y, err)
	}
	if e.Kind != kind {
		return fmt.Errorf("tile (%d,%d): %s %q in the %s slot", x, y, e.Kind, e.Name, kind)
	}
	if !e.OnMap || e.X != x || e.Y != y {
		return fmt.Errorf("tile (%d,%d): %q recorded at (%d,%d)", x, y, e.Name, e.X, e.Y)
	}
	return nil
}

func hexColor(g world.Glyph) string {
	v := g.Color.Hex()
	if v < 0 {
		return "#FFFFFF"
	}
	return fmt.Sprintf("#%06X", v)
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return '?'
}
