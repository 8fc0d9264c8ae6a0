package game

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/roguetiles/internal/gamedata"
	"github.com/samdwyer/roguetiles/internal/savegame"
	"github.com/samdwyer/roguetiles/internal/telemetry"
	"github.com/samdwyer/roguetiles/internal/ui"
	"github.com/samdwyer/roguetiles/internal/world"
)

// Game holds the entire game state.
type Game struct {
	screen   *ui.Screen
	renderer *ui.Renderer
	session  *Session
	store    *savegame.Store
	cfg      Config
	things   *gamedata.ThingRegistry
	palette  world.Palette
	logger   *slog.Logger
	state    State
	running  bool
}

// New creates a new game instance on the given screen.
func New(screen *ui.Screen, cfg Config, store *savegame.Store, logger *slog.Logger) (*Game, error) {
	things, err := gamedata.LoadThingRegistry()
	if err != nil {
		return nil, err
	}
	palette, err := gamedata.LoadPalette()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if store == nil {
		store = savegame.NewStore(nil, logger)
	}

	return &Game{
		screen:   screen,
		renderer: ui.NewRenderer(screen),
		store:    store,
		cfg:      cfg,
		things:   things,
		palette:  palette,
		logger:   logger,
		state:    StateExplore,
		running:  true,
	}, nil
}

// Run executes the main game loop.
func (g *Game) Run(ctx context.Context) error {
	tracer := telemetry.Tracer("game")
	ctx, initSpan := tracer.Start(ctx, "game.init")
	session, err := NewSession(ctx, g.cfg, g.things, g.palette, g.logger)
	if err != nil {
		initSpan.End()
		return err
	}
	g.session = session
	initSpan.SetAttributes(
		attribute.Int("config.width", g.cfg.Width),
		attribute.Int("config.height", g.cfg.Height),
		attribute.Bool("save.enabled", g.store.Enabled()),
	)
	initSpan.End()

	for g.running {
		g.render()
		if err := g.handleInput(ctx); err != nil {
			g.screen.Close()
			return err
		}
	}

	g.screen.Close()
	return nil
}

// render draws the current session.
func (g *Game) render() {
	s := g.session
	status := ui.Status{
		Level:    s.Level,
		Messages: s.Messages.Last(3),
	}
	if g.state == StateDrop {
		status.Inventory = s.InventoryNames()
		status.ShowInventory = true
	}
	g.renderer.Render(s.Dungeon, s.Entities, status)
}

// handleInput processes a single input event.
func (g *Game) handleInput(ctx context.Context) error {
	switch ev := g.screen.PollEvent().(type) {
	case *tcell.EventKey:
		return g.handleKeyEvent(ctx, ev)
	case *tcell.EventResize:
		g.screen.Sync()
	case nil:
		// Screen finalised underneath us.
		g.running = false
	}
	return nil
}

// handleKeyEvent processes keyboard input for the current state.
func (g *Game) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) error {
	if g.state == StateDrop {
		return g.handleDropKey(ev)
	}

	s := g.session
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		g.running = false
	case tcell.KeyUp:
		return s.Move(0, -1)
	case tcell.KeyDown:
		return s.Move(0, 1)
	case tcell.KeyLeft:
		return s.Move(-1, 0)
	case tcell.KeyRight:
		return s.Move(1, 0)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			g.running = false
		case 'k':
			return s.Move(0, -1)
		case 'j':
			return s.Move(0, 1)
		case 'h':
			return s.Move(-1, 0)
		case 'l':
			return s.Move(1, 0)
		case 'y':
			return s.Move(-1, -1)
		case 'u':
			return s.Move(1, -1)
		case 'b':
			return s.Move(-1, 1)
		case 'n':
			return s.Move(1, 1)
		case 'g', ',':
			return s.Pickup()
		case 'd':
			if len(s.Player.Inventory()) == 0 {
				s.Messages.Add("You are not carrying anything.")
				return nil
			}
			g.state = StateDrop
		case '>':
			return s.Descend(ctx)
		case 'S':
			g.save(ctx)
		case 'L':
			return g.load(ctx)
		}
	}
	return nil
}

// handleDropKey picks the inventory letter to drop, or cancels.
func (g *Game) handleDropKey(ev *tcell.EventKey) error {
	g.state = StateExplore
	if ev.Key() != tcell.KeyRune {
		return nil
	}
	r := ev.Rune()
	if r < 'a' || r > 'z' {
		return nil
	}
	return g.session.Drop(int(r - 'a'))
}

// save writes the session to the store. Failures are reported in the
// message log; the game goes on.
func (g *Game) save(ctx context.Context) {
	err := g.store.Save(ctx, g.session.SaveData())
	switch {
	case err == nil:
		g.session.Messages.Add("Game saved.")
	case errors.Is(err, savegame.ErrDisabled):
		g.session.Messages.Add("Saving is disabled.")
	default:
		g.logger.Error("save failed", "err", err)
		g.session.Messages.Add("Could not save the game.")
	}
}

// load replaces the session with the saved one.
func (g *Game) load(ctx context.Context) error {
	data, err := g.store.Load(ctx)
	switch {
	case errors.Is(err, savegame.ErrNoSave):
		g.session.Messages.Add("There is no saved game.")
		return nil
	case errors.Is(err, savegame.ErrDisabled):
		g.session.Messages.Add("Saving is disabled.")
		return nil
	case err != nil:
		g.logger.Error("load failed", "err", err)
		g.session.Messages.Add("Could not load the game.")
		return nil
	}

	restored, err := RestoreSession(data, g.cfg, g.things, g.palette, g.logger)
	if err != nil {
		g.logger.Error("restore failed", "err", err)
		g.session.Messages.Add("The saved game is damaged.")
		return nil
	}
	g.session = restored
	g.session.Messages.Add("Game loaded.")
	return nil
}

// Close cleans up game resources.
func (g *Game) Close() {
	if g.screen != nil {
		g.screen.Close()
	}
}
