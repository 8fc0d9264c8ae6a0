package game

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/roguetiles/internal/entity"
	"github.com/samdwyer/roguetiles/internal/gamedata"
	"github.com/samdwyer/roguetiles/internal/telemetry"
	"github.com/samdwyer/roguetiles/internal/world"
)

// Session is the turn-sequential game state: one level's dungeon, the
// entities referenced from its tiles and the player. Every mutation goes
// through the game loop one action at a time, so nothing here is locked.
type Session struct {
	Level    int
	Dungeon  *world.Dungeon
	Entities *entity.Registry
	Player   *entity.Player
	Messages MessageLog

	cfg     Config
	seed    int64
	things  *gamedata.ThingRegistry
	palette world.Palette
	rng     *rand.Rand
	logger  *slog.Logger
}

// NewSession creates a session and generates the first level.
func NewSession(ctx context.Context, cfg Config, things *gamedata.ThingRegistry, palette world.Palette, logger *slog.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := newSession(cfg, things, palette, logger)
	if err := s.enterLevel(ctx, 1); err != nil {
		return nil, err
	}
	s.Messages.Add("You descend into the dungeon.")
	return s, nil
}

func newSession(cfg Config, things *gamedata.ThingRegistry, palette world.Palette, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Session{
		Entities: entity.NewRegistry(),
		cfg:      cfg,
		seed:     seed,
		things:   things,
		palette:  palette,
		rng:      rand.New(rand.NewSource(seed)),
		logger:   logger,
	}
}

// enterLevel replaces the current level, if any, with a fresh dungeon for
// level and puts the player in the first room. The new map is generated
// before anything is discarded, so a failure leaves the session as it was.
func (s *Session) enterLevel(ctx context.Context, level int) error {
	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "level.enter")
	defer span.End()

	d, stairs, err := s.buildLevel(ctx, level)
	if err != nil {
		return err
	}
	if s.Dungeon != nil {
		s.discardLevel()
	}

	px, py := d.Rooms[0].Center()
	if s.Player == nil {
		s.Player = entity.NewPlayer(s.Entities, px, py)
	}
	if err := d.PlaceBlocker(px, py, s.Player.ID); err != nil {
		return fmt.Errorf("level %d: place player: %w", level, err)
	}
	s.Player.Place(px, py)

	s.Dungeon = d
	s.Level = level

	stats := s.populate(ctx, stairs)

	span.SetAttributes(
		attribute.Int("level", level),
		attribute.Int("dungeon.rooms", len(d.Rooms)),
		attribute.Int("player.start_x", px),
		attribute.Int("player.start_y", py),
		attribute.Int("populate.blockers", stats.blockers),
		attribute.Int("populate.items", stats.items),
		attribute.Int("populate.rejected", stats.rejected),
	)
	s.logger.Info("entered level",
		"level", level,
		"rooms", len(d.Rooms),
		"blockers", stats.blockers,
		"items", stats.items,
		"rejected", stats.rejected,
	)
	return nil
}

// buildLevel generates the map for level with the stairs down at the
// centre of its last room. It does not touch the session.
func (s *Session) buildLevel(ctx context.Context, level int) (*world.Dungeon, [2]int, error) {
	d := world.NewDungeon(s.cfg.Width, s.cfg.Height, s.palette, s.rng)
	d.Generate(ctx)
	if len(d.Rooms) == 0 {
		return nil, [2]int{}, fmt.Errorf("level %d: generator produced no rooms", level)
	}

	sx, sy := d.Rooms[len(d.Rooms)-1].Center()
	if err := d.SetKind(sx, sy, d.Palette().StairsDown); err != nil {
		return nil, [2]int{}, fmt.Errorf("level %d: place stairs: %w", level, err)
	}
	return d, [2]int{sx, sy}, nil
}

// discardLevel empties the current map and drops every entity standing on
// it from the registry. Carried items and the player survive.
func (s *Session) discardLevel() {
	for _, e := range s.Entities.OnMap() {
		if e.ID == s.Player.ID {
			continue
		}
		s.Entities.Remove(e.ID)
	}
	s.Dungeon.Clear()
	s.Player.OnMap = false
}

// Render returns the glyph to draw at (x, y) on the current level.
func (s *Session) Render(x, y int) world.Glyph {
	return s.Dungeon.Render(x, y, s.Entities)
}
