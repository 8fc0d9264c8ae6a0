package game

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/roguetiles/internal/entity"
	"github.com/samdwyer/roguetiles/internal/gamedata"
	"github.com/samdwyer/roguetiles/internal/telemetry"
	"github.com/samdwyer/roguetiles/internal/world"
)

type populateStats struct {
	blockers int
	items    int
	rejected int
}

// populate scatters blockers and items through every room but the first
// (the player's). Each room gets up to the level's cap of each. A spot that
// the occupancy rules refuse is skipped, not retried, so two things never
// end up on one cell. Blockers never move, so one that would cut the player
// off from the stairs is skipped too.
func (s *Session) populate(ctx context.Context, stairs [2]int) populateStats {
	tracer := telemetry.Tracer("game")
	_, span := tracer.Start(ctx, "level.populate")
	defer span.End()

	var stats populateStats
	if s.things == nil {
		return stats
	}

	maxBlockers := s.things.MaxBlockers(s.Level)
	maxItems := s.things.MaxItems(s.Level)

	for i := 1; i < len(s.Dungeon.Rooms); i++ {
		room := s.Dungeon.Rooms[i]
		for n := s.rng.Intn(maxBlockers + 1); n > 0; n-- {
			s.spawnInRoom(room, gamedata.ThingBlocker, stairs, &stats)
		}
		for n := s.rng.Intn(maxItems + 1); n > 0; n-- {
			s.spawnInRoom(room, gamedata.ThingItem, stairs, &stats)
		}
	}

	span.SetAttributes(
		attribute.Int("populate.blockers", stats.blockers),
		attribute.Int("populate.items", stats.items),
		attribute.Int("populate.rejected", stats.rejected),
	)
	return stats
}

func (s *Session) spawnInRoom(room world.Room, kind gamedata.ThingKind, stairs [2]int, stats *populateStats) {
	def := s.things.SpawnRandom(s.rng, kind, s.Level)
	if def == nil {
		return
	}
	x, y := room.RandomPoint(s.rng)

	e := s.Entities.Spawn(def)
	var err error
	if e.Kind == entity.KindBlocker {
		err = s.Dungeon.PlaceBlocker(x, y, e.ID)
	} else {
		err = s.Dungeon.PlaceItem(x, y, e.ID)
	}
	if err != nil {
		s.Entities.Remove(e.ID)
		stats.rejected++
		if !errors.Is(err, world.ErrOccupied) && !errors.Is(err, world.ErrTileType) {
			s.logger.Warn("unexpected placement failure", "thing", def.ID, "x", x, "y", y, "err", err)
		}
		return
	}

	if e.Kind == entity.KindBlocker && !s.stairsReachable(stairs) {
		s.Dungeon.RemoveBlocker(x, y)
		s.Entities.Remove(e.ID)
		stats.rejected++
		return
	}

	e.Place(x, y)
	if e.Kind == entity.KindBlocker {
		stats.blockers++
	} else {
		stats.items++
	}
}

func (s *Session) stairsReachable(stairs [2]int) bool {
	px, py := s.Player.Position()
	return s.Dungeon.Reachable(s.Player.ID, px, py, stairs[0], stairs[1])
}
