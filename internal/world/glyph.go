package world

import (
	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
)

// Glyph is a single drawable cell: a character and its foreground colour.
type Glyph struct {
	Rune  rune
	Color tcell.Color
}

// Style returns the tcell style used to draw the glyph.
func (g Glyph) Style() tcell.Style {
	return tcell.StyleDefault.Foreground(g.Color)
}

// GlyphSource resolves the glyph of an entity referenced from a tile.
// Tiles only hold ids, so rendering needs a lookup into whatever owns
// the entities.
type GlyphSource interface {
	Glyph(id uuid.UUID) (Glyph, bool)
}
