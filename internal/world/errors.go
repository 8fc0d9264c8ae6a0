package world

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Slot names one of the two occupancy slots of a tile.
type Slot uint8

const (
	// SlotItem holds a single non-blocking item.
	SlotItem Slot = iota
	// SlotBlocker holds a single creature or obstacle.
	SlotBlocker
)

// String returns the slot name.
func (s Slot) String() string {
	switch s {
	case SlotItem:
		return "item"
	case SlotBlocker:
		return "blocker"
	default:
		return "unknown"
	}
}

var (
	// ErrOccupied matches any *OccupiedError.
	ErrOccupied = errors.New("slot occupied")
	// ErrTileType matches any *TileTypeError.
	ErrTileType = errors.New("tile kind forbids occupant")
	// ErrOutOfBounds is returned for coordinates outside the dungeon.
	ErrOutOfBounds = errors.New("position out of bounds")
	// ErrNilRef is returned when placing the nil id.
	ErrNilRef = errors.New("nil entity reference")
)

// OccupiedError reports that the targeted slot already holds an occupant.
type OccupiedError struct {
	Slot     Slot
	Occupant uuid.UUID
}

func (e *OccupiedError) Error() string {
	return fmt.Sprintf("%s slot already holds %s", e.Slot, e.Occupant)
}

// Is makes errors.Is(err, ErrOccupied) hold.
func (e *OccupiedError) Is(target error) bool {
	return target == ErrOccupied
}

// TileTypeError reports that the tile's kind never allows the occupant type.
type TileTypeError struct {
	Slot Slot
	Kind string
}

func (e *TileTypeError) Error() string {
	return fmt.Sprintf("%s tile does not allow %s occupants", e.Kind, e.Slot)
}

// Is makes errors.Is(err, ErrTileType) hold.
func (e *TileTypeError) Is(target error) bool {
	return target == ErrTileType
}
