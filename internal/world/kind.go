package world

import "github.com/gdamore/tcell/v2"

// Kind is a category of terrain. It decides what a tile of that kind can
// hold and how it looks when nothing stands on it.
type Kind struct {
	Name           string
	Glyph          Glyph
	Walkable       bool
	Transparent    bool
	AllowsItems    bool
	AllowsBlockers bool
}

// Allows reports whether the kind accepts an occupant in the given slot.
func (k *Kind) Allows(slot Slot) bool {
	switch slot {
	case SlotItem:
		return k.AllowsItems
	case SlotBlocker:
		return k.AllowsBlockers
	default:
		return false
	}
}

// Built-in kind names. Data files may redefine these but must keep the names.
const (
	KindNameWall       = "wall"
	KindNameFloor      = "floor"
	KindNameStairsDown = "stairs_down"
)

// Palette is the set of kinds the dungeon generator carves with.
type Palette struct {
	Wall       *Kind
	Floor      *Kind
	StairsDown *Kind
}

// DefaultPalette returns the built-in wall, floor and stairs kinds.
func DefaultPalette() Palette {
	return Palette{
		Wall: &Kind{
			Name:  KindNameWall,
			Glyph: Glyph{Rune: '#', Color: tcell.ColorDarkGray},
		},
		Floor: &Kind{
			Name:           KindNameFloor,
			Glyph:          Glyph{Rune: '.', Color: tcell.ColorGray},
			Walkable:       true,
			Transparent:    true,
			AllowsItems:    true,
			AllowsBlockers: true,
		},
		StairsDown: &Kind{
			Name:           KindNameStairsDown,
			Glyph:          Glyph{Rune: '>', Color: tcell.ColorWhite},
			Walkable:       true,
			Transparent:    true,
			AllowsBlockers: true,
		},
	}
}

// PaletteFrom builds a palette out of a name-indexed kind table.
// Missing entries fall back to the built-in kinds.
func PaletteFrom(kinds map[string]*Kind) Palette {
	p := DefaultPalette()
	if k, ok := kinds[KindNameWall]; ok {
		p.Wall = k
	}
	if k, ok := kinds[KindNameFloor]; ok {
		p.Floor = k
	}
	if k, ok := kinds[KindNameStairsDown]; ok {
		p.StairsDown = k
	}
	return p
}

// Kinds returns the palette as a name-indexed table.
func (p Palette) Kinds() map[string]*Kind {
	return map[string]*Kind{
		p.Wall.Name:       p.Wall,
		p.Floor.Name:      p.Floor,
		p.StairsDown.Name: p.StairsDown,
	}
}

func (p Palette) isZero() bool {
	return p.Wall == nil || p.Floor == nil || p.StairsDown == nil
}
