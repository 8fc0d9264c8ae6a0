package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/samdwyer/roguetiles/internal/world"
)

// Status is the non-map information drawn below and beside the dungeon.
type Status struct {
	Level         int
	Messages      []string
	Inventory     []string
	ShowInventory bool
}

// Renderer handles drawing the game to the screen.
type Renderer struct {
	screen *Screen
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Render draws the dungeon, with occupants resolved through src, and the
// status lines under it.
func (r *Renderer) Render(dungeon *world.Dungeon, src world.GlyphSource, status Status) {
	r.screen.Clear()

	for y := 0; y < dungeon.Height; y++ {
		for x := 0; x < dungeon.Width; x++ {
			g := dungeon.Render(x, y, src)
			r.screen.SetContent(x, y, g.Rune, g.Style())
		}
	}

	line := dungeon.Height
	r.RenderMessage(fmt.Sprintf("Depth %d", status.Level), line, tcell.ColorYellow)
	for i, msg := range status.Messages {
		r.RenderMessage(msg, line+1+i, tcell.ColorWhite)
	}

	if status.ShowInventory {
		r.renderInventory(status.Inventory)
	}

	r.screen.Show()
}

// renderInventory draws the lettered inventory over the right side of the map.
func (r *Renderer) renderInventory(items []string) {
	width, _ := r.screen.Size()
	col := max(0, width-32)
	r.RenderTextAt(col, 0, "Drop which item? (esc to cancel)", tcell.ColorYellow)
	for i, name := range items {
		r.RenderTextAt(col, i+1, fmt.Sprintf("%c) %s", 'a'+i, name), tcell.ColorWhite)
	}
}

// RenderMessage displays a message at the start of row y.
func (r *Renderer) RenderMessage(msg string, y int, color tcell.Color) {
	r.RenderTextAt(0, y, msg, color)
}

// RenderTextAt draws text from column x, truncated to the screen width.
// Wide characters take two columns.
func (r *Renderer) RenderTextAt(x, y int, msg string, color tcell.Color) {
	width, _ := r.screen.Size()
	if x >= width {
		return
	}
	style := tcell.StyleDefault.Foreground(color)
	msg = runewidth.Truncate(msg, width-x, "…")
	for _, ch := range msg {
		r.screen.SetContent(x, y, ch, style)
		x += max(1, runewidth.RuneWidth(ch))
	}
}
