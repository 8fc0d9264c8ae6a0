package entity

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"github.com/samdwyer/roguetiles/internal/world"
)

// InventorySize is how many items the player can carry (one per letter).
const InventorySize = 26

// ErrInventoryFull is returned when picking up into a full inventory.
var ErrInventoryFull = errors.New("inventory full")

// Player is the player-controlled blocker and the items it carries.
type Player struct {
	*Entity
	inventory []uuid.UUID
}

// NewPlayer registers the player entity at the given position.
func NewPlayer(r *Registry, x, y int) *Player {
	e := &Entity{
		ID:    uuid.New(),
		Name:  "you",
		Kind:  KindBlocker,
		Glyph: world.Glyph{Rune: '@', Color: tcell.ColorYellow},
		X:     x,
		Y:     y,
		OnMap: true,
	}
	r.insert(e)
	return &Player{Entity: e}
}

// RestorePlayer wraps an already registered entity as the player.
func RestorePlayer(e *Entity, inventory []uuid.UUID) *Player {
	return &Player{Entity: e, inventory: append([]uuid.UUID(nil), inventory...)}
}

// Carry adds an item to the inventory.
func (p *Player) Carry(id uuid.UUID) error {
	if len(p.inventory) >= InventorySize {
		return ErrInventoryFull
	}
	p.inventory = append(p.inventory, id)
	return nil
}

// ItemAt returns the inventory entry at index.
func (p *Player) ItemAt(index int) (uuid.UUID, error) {
	if index < 0 || index >= len(p.inventory) {
		return uuid.Nil, fmt.Errorf("no item in inventory slot %d", index)
	}
	return p.inventory[index], nil
}

// Discard removes the inventory entry at index and returns it.
func (p *Player) Discard(index int) (uuid.UUID, error) {
	id, err := p.ItemAt(index)
	if err != nil {
		return uuid.Nil, err
	}
	p.inventory = append(p.inventory[:index], p.inventory[index+1:]...)
	return id, nil
}

// Inventory returns a copy of the carried item IDs in pickup order.
func (p *Player) Inventory() []uuid.UUID {
	return append([]uuid.UUID(nil), p.inventory...)
}
