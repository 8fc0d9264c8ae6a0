// Package entity owns the identity of everything that can stand on a tile:
// items, creatures and obstacles. Tiles refer to entities by ID only.
package entity

import (
	"github.com/google/uuid"

	"github.com/samdwyer/roguetiles/internal/gamedata"
	"github.com/samdwyer/roguetiles/internal/world"
)

// Kind says which tile slot an entity occupies.
type Kind uint8

const (
	// KindItem entities can be picked up and share a tile with a blocker.
	KindItem Kind = iota
	// KindBlocker entities are creatures or obstacles, one per tile.
	KindBlocker
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindBlocker:
		return "blocker"
	default:
		return "unknown"
	}
}

// KindOf maps a data-file thing kind to an entity kind.
func KindOf(k gamedata.ThingKind) Kind {
	if k == gamedata.ThingBlocker {
		return KindBlocker
	}
	return KindItem
}

// Entity is a registered item or blocker.
type Entity struct {
	ID       uuid.UUID
	Template string // ThingDef ID it was spawned from, empty for the player
	Name     string
	Kind     Kind
	Glyph    world.Glyph
	X, Y     int
	OnMap    bool // false while carried in an inventory
}

// Position returns the current x, y coordinates.
func (e *Entity) Position() (int, int) {
	return e.X, e.Y
}

// Place records the entity as standing on the map at (x, y).
func (e *Entity) Place(x, y int) {
	e.X, e.Y = x, y
	e.OnMap = true
}
