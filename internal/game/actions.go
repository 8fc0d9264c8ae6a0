package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/samdwyer/roguetiles/internal/entity"
	"github.com/samdwyer/roguetiles/internal/world"
)

// dropRadius is how far Drop looks for a free tile when the player's own
// tile cannot take the item.
const dropRadius = 3

// Move attempts to move the player by the given delta. Walls and other
// blockers stop the move with a message; only unexpected failures are errors.
func (s *Session) Move(dx, dy int) error {
	x, y := s.Player.Position()
	nx, ny := x+dx, y+dy

	if !s.Dungeon.IsWalkable(nx, ny) {
		s.Messages.Add("That way is blocked.")
		return nil
	}

	err := s.Dungeon.MoveBlocker(s.Player.ID, x, y, nx, ny)
	if err != nil {
		var occ *world.OccupiedError
		if errors.As(err, &occ) {
			s.Messages.Add(fmt.Sprintf("The %s is in the way.", s.nameOf(occ.Occupant)))
			return nil
		}
		return fmt.Errorf("move player: %w", err)
	}
	s.Player.Place(nx, ny)

	tile, _ := s.Dungeon.At(nx, ny)
	if id, ok := tile.Item(); ok {
		s.Messages.Add(fmt.Sprintf("You see a %s here.", s.nameOf(id)))
	}
	return nil
}

// Pickup moves the item under the player into the inventory.
func (s *Session) Pickup() error {
	x, y := s.Player.Position()
	tile, ok := s.Dungeon.At(x, y)
	if !ok {
		return fmt.Errorf("pickup: player off the map at (%d,%d)", x, y)
	}
	id, ok := tile.Item()
	if !ok {
		s.Messages.Add("There is nothing here to pick up.")
		return nil
	}

	item, err := s.Entities.Lookup(id)
	if err != nil {
		return fmt.Errorf("pickup: %w", err)
	}
	if err := s.Player.Carry(id); err != nil {
		if errors.Is(err, entity.ErrInventoryFull) {
			s.Messages.Add("Cannot hold that many items.")
			return nil
		}
		return fmt.Errorf("pickup: %w", err)
	}

	tile.RemoveItem()
	item.OnMap = false
	s.Messages.Add(fmt.Sprintf("Picked up %s.", item.Name))
	return nil
}

// Drop puts the inventory item at index on the player's tile. If that tile
// refuses it (already holds an item, or its kind forbids items) the nearest
// tile that accepts it and can be walked to is used instead. With no such
// tile in range the item stays in the inventory.
func (s *Session) Drop(index int) error {
	id, err := s.Player.ItemAt(index)
	if err != nil {
		s.Messages.Add("No item to drop.")
		return nil
	}
	item, err := s.Entities.Lookup(id)
	if err != nil {
		return fmt.Errorf("drop: %w", err)
	}

	x, y := s.Player.Position()
	err = s.Dungeon.PlaceItem(x, y, id)
	switch {
	case err == nil:
		s.Messages.Add(fmt.Sprintf("Dropped %s.", item.Name))
	case errors.Is(err, world.ErrOccupied), errors.Is(err, world.ErrTileType):
		spots := s.Dungeon.Nearby(x, y, dropRadius, func(t *world.Tile) bool {
			return t.CanPlaceItem(id)
		})
		if len(spots) == 0 {
			s.Messages.Add(fmt.Sprintf("There is no room to drop %s.", item.Name))
			return nil
		}
		x, y = spots[0][0], spots[0][1]
		if err := s.Dungeon.PlaceItem(x, y, id); err != nil {
			return fmt.Errorf("drop: %w", err)
		}
		s.Messages.Add(fmt.Sprintf("The %s rolls away.", item.Name))
	default:
		return fmt.Errorf("drop: %w", err)
	}

	if _, err := s.Player.Discard(index); err != nil {
		return fmt.Errorf("drop: %w", err)
	}
	item.Place(x, y)
	return nil
}

// Descend takes the stairs under the player: the next level is generated
// and the current map discarded.
func (s *Session) Descend(ctx context.Context) error {
	x, y := s.Player.Position()
	tile, ok := s.Dungeon.At(x, y)
	if !ok || tile.Kind().Name != world.KindNameStairsDown {
		s.Messages.Add("There are no stairs here.")
		return nil
	}

	if err := s.enterLevel(ctx, s.Level+1); err != nil {
		return fmt.Errorf("descend: %w", err)
	}
	s.Messages.Add(fmt.Sprintf("You descend to level %d.", s.Level))
	return nil
}

// InventoryNames returns the names of carried items in inventory order.
func (s *Session) InventoryNames() []string {
	ids := s.Player.Inventory()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, s.nameOf(id))
	}
	return names
}

func (s *Session) nameOf(id uuid.UUID) string {
	if e, ok := s.Entities.Get(id); ok {
		return e.Name
	}
	return "something"
}
