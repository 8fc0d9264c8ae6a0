// Package world provides dungeon generation and map management.
package world

import "github.com/google/uuid"

// Tile is a single map cell. Besides its terrain kind it has two
// independent occupancy slots: at most one item and at most one blocker.
// Slots hold ids owned by an entity registry elsewhere; uuid.Nil means empty.
type Tile struct {
	kind    *Kind
	glyph   Glyph
	item    uuid.UUID
	blocker uuid.UUID
}

// NewTile creates an empty tile of the given kind.
func NewTile(kind *Kind) Tile {
	return Tile{kind: kind, glyph: kind.Glyph}
}

// Kind returns the tile's terrain kind.
func (t *Tile) Kind() *Kind {
	return t.kind
}

// DefaultGlyph returns what the tile looks like with both slots empty.
func (t *Tile) DefaultGlyph() Glyph {
	return t.glyph
}

// Walkable reports whether the terrain can be walked on.
func (t *Tile) Walkable() bool {
	return t.kind.Walkable
}

// Transparent reports whether the terrain can be seen through.
func (t *Tile) Transparent() bool {
	return t.kind.Transparent
}

// Item returns the item on the tile, if any.
func (t *Tile) Item() (uuid.UUID, bool) {
	return t.item, t.item != uuid.Nil
}

// Blocker returns the blocking entity on the tile, if any.
func (t *Tile) Blocker() (uuid.UUID, bool) {
	return t.blocker, t.blocker != uuid.Nil
}

// IsEmpty reports whether both slots are empty.
func (t *Tile) IsEmpty() bool {
	return t.item == uuid.Nil && t.blocker == uuid.Nil
}

// CanPlaceItem reports whether PlaceItem(id) would succeed.
func (t *Tile) CanPlaceItem(id uuid.UUID) bool {
	return t.check(SlotItem, id) == nil
}

// PlaceItem puts an item on the tile. It fails with *TileTypeError when the
// kind forbids items, whatever the occupancy, and with *OccupiedError when
// an item is already there.
func (t *Tile) PlaceItem(id uuid.UUID) error {
	if err := t.check(SlotItem, id); err != nil {
		return err
	}
	t.item = id
	return nil
}

// RemoveItem clears the item slot and returns what was there.
func (t *Tile) RemoveItem() (uuid.UUID, bool) {
	id := t.item
	t.item = uuid.Nil
	return id, id != uuid.Nil
}

// CanPlaceBlocker reports whether PlaceBlocker(id) would succeed.
func (t *Tile) CanPlaceBlocker(id uuid.UUID) bool {
	return t.check(SlotBlocker, id) == nil
}

// PlaceBlocker puts a blocking entity on the tile, with the same failure
// rules as PlaceItem.
func (t *Tile) PlaceBlocker(id uuid.UUID) error {
	if err := t.check(SlotBlocker, id); err != nil {
		return err
	}
	t.blocker = id
	return nil
}

// RemoveBlocker clears the blocker slot and returns what was there.
func (t *Tile) RemoveBlocker() (uuid.UUID, bool) {
	id := t.blocker
	t.blocker = uuid.Nil
	return id, id != uuid.Nil
}

// Render returns the glyph to draw: the blocker's, else the item's, else the
// tile's default glyph. An occupant src cannot resolve is skipped.
func (t *Tile) Render(src GlyphSource) Glyph {
	if t.blocker != uuid.Nil && src != nil {
		if g, ok := src.Glyph(t.blocker); ok {
			return g
		}
	}
	if t.item != uuid.Nil && src != nil {
		if g, ok := src.Glyph(t.item); ok {
			return g
		}
	}
	return t.glyph
}

func (t *Tile) check(slot Slot, id uuid.UUID) error {
	if !t.kind.Allows(slot) {
		return &TileTypeError{Slot: slot, Kind: t.kind.Name}
	}
	if id == uuid.Nil {
		return ErrNilRef
	}
	current := t.item
	if slot == SlotBlocker {
		current = t.blocker
	}
	if current != uuid.Nil {
		return &OccupiedError{Slot: slot, Occupant: current}
	}
	return nil
}

// evict clears any slot holding id.
func (t *Tile) evict(id uuid.UUID) bool {
	if id == uuid.Nil {
		return false
	}
	cleared := false
	if t.item == id {
		t.item = uuid.Nil
		cleared = true
	}
	if t.blocker == id {
		t.blocker = uuid.Nil
		cleared = true
	}
	return cleared
}

func (t *Tile) clear() {
	t.item = uuid.Nil
	t.blocker = uuid.Nil
}
