package game

import (
	"context"
	"testing"

	"github.com/samdwyer/roguetiles/internal/entity"
	"github.com/samdwyer/roguetiles/internal/gamedata"
	"github.com/samdwyer/roguetiles/internal/world"
)

// newTestSession builds a session on a hand-made map: floor from (1,1) to
// (8,5), stairs at (8,5), the player at (2,2). Nothing else is placed.
func newTestSession(t *testing.T) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 42
	s := newSession(cfg, gamedata.MustLoadThingRegistry(), world.DefaultPalette(), nil)

	d := world.NewDungeon(20, 10, s.palette, s.rng)
	p := d.Palette()
	for y := 1; y <= 5; y++ {
		for x := 1; x <= 8; x++ {
			if err := d.SetKind(x, y, p.Floor); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := d.SetKind(8, 5, p.StairsDown); err != nil {
		t.Fatal(err)
	}
	s.Dungeon = d
	s.Level = 1

	s.Player = entity.NewPlayer(s.Entities, 2, 2)
	if err := d.PlaceBlocker(2, 2, s.Player.ID); err != nil {
		t.Fatal(err)
	}
	return s
}

// spawnAt registers a thing and places it at (x, y).
func spawnAt(t *testing.T, s *Session, id string, x, y int) *entity.Entity {
	t.Helper()
	def := s.things.GetByID(id)
	if def == nil {
		t.Fatalf("unknown thing %q", id)
	}
	e := s.Entities.Spawn(def)
	var err error
	if e.Kind == entity.KindBlocker {
		err = s.Dungeon.PlaceBlocker(x, y, e.ID)
	} else {
		err = s.Dungeon.PlaceItem(x, y, e.ID)
	}
	if err != nil {
		t.Fatalf("place %s at (%d,%d): %v", id, x, y, err)
	}
	e.Place(x, y)
	return e
}

// teleport moves the player to (x, y) without the move rules.
func teleport(t *testing.T, s *Session, x, y int) {
	t.Helper()
	px, py := s.Player.Position()
	if err := s.Dungeon.MoveBlocker(s.Player.ID, px, py, x, y); err != nil {
		t.Fatal(err)
	}
	s.Player.Place(x, y)
}

// assertConsistent checks that tiles and registry agree: every occupied
// slot resolves to an entity of the matching kind standing there, and every
// on-map entity is referenced by exactly one slot.
func assertConsistent(t *testing.T, s *Session) {
	t.Helper()
	if err := s.checkReferences(); err != nil {
		t.Fatalf("tile references: %v", err)
	}
	slots := 0
	for y := range s.Dungeon.Tiles {
		for x := range s.Dungeon.Tiles[y] {
			tile := &s.Dungeon.Tiles[y][x]
			if _, ok := tile.Item(); ok {
				slots++
			}
			if _, ok := tile.Blocker(); ok {
				slots++
			}
		}
	}
	if onMap := len(s.Entities.OnMap()); onMap != slots {
		t.Errorf("%d entities on the map but %d occupied slots", onMap, slots)
	}
}

func lastMessage(s *Session) string {
	last := s.Messages.Last(1)
	if len(last) == 0 {
		return ""
	}
	return last[0]
}

func newGeneratedSession(t *testing.T, seed int64) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = seed
	s, err := NewSession(context.Background(), cfg, gamedata.MustLoadThingRegistry(), world.DefaultPalette(), nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestNewSessionFirstLevel(t *testing.T) {
	s := newGeneratedSession(t, 12345)

	if s.Level != 1 {
		t.Errorf("Level = %d, want 1", s.Level)
	}
	px, py := s.Player.Position()
	if !s.Player.OnMap {
		t.Fatal("player should be on the map")
	}
	if cx, cy := s.Dungeon.Rooms[0].Center(); px != cx || py != cy {
		t.Errorf("player at (%d,%d), want first room center (%d,%d)", px, py, cx, cy)
	}
	tile, _ := s.Dungeon.At(px, py)
	if id, ok := tile.Blocker(); !ok || id != s.Player.ID {
		t.Errorf("player tile blocker = %v, want the player", id)
	}

	sx, sy := s.Dungeon.Rooms[len(s.Dungeon.Rooms)-1].Center()
	stairs, _ := s.Dungeon.At(sx, sy)
	if stairs.Kind().Name != world.KindNameStairsDown {
		t.Errorf("last room center is %q, want stairs", stairs.Kind().Name)
	}
	if _, ok := stairs.Item(); ok {
		t.Error("stairs should never hold an item")
	}

	assertConsistent(t, s)
}

func TestNewSessionReproducible(t *testing.T) {
	a := newGeneratedSession(t, 777)
	b := newGeneratedSession(t, 777)

	for y := 0; y < a.Dungeon.Height; y++ {
		for x := 0; x < a.Dungeon.Width; x++ {
			ga, gb := a.Render(x, y), b.Render(x, y)
			if ga.Rune != gb.Rune {
				t.Fatalf("same seed rendered %q and %q at (%d,%d)", ga.Rune, gb.Rune, x, y)
			}
		}
	}
}

func TestNewSessionRejectsTinyMap(t *testing.T) {
	cfg := Config{Width: 10, Height: 5}
	if _, err := NewSession(context.Background(), cfg, gamedata.MustLoadThingRegistry(), world.DefaultPalette(), nil); err == nil {
		t.Error("NewSession should refuse a map below the minimum size")
	}
}

func TestPopulateNeverStacks(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		s := newGeneratedSession(t, seed)
		assertConsistent(t, s)

		for _, e := range s.Entities.OnMap() {
			if e.ID == s.Player.ID {
				continue
			}
			if s.Dungeon.RoomIndexAt(e.X, e.Y) == 0 {
				t.Errorf("seed %d: %s spawned in the player's room", seed, e.Name)
			}
		}
	}
}

func TestStairsStayReachable(t *testing.T) {
	for seed := int64(1); seed <= 200; seed++ {
		s := newGeneratedSession(t, seed)
		// Deeper levels carry more blockers per room.
		if seed%4 == 0 {
			if err := s.enterLevel(context.Background(), 6); err != nil {
				t.Fatalf("seed %d: %v", seed, err)
			}
		}

		sx, sy := s.Dungeon.Rooms[len(s.Dungeon.Rooms)-1].Center()
		stairs, _ := s.Dungeon.At(sx, sy)
		if id, ok := stairs.Blocker(); ok && id != s.Player.ID {
			t.Errorf("seed %d: %s sits on the stairs at (%d,%d)", seed, s.nameOf(id), sx, sy)
		}
		px, py := s.Player.Position()
		if !s.Dungeon.Reachable(s.Player.ID, px, py, sx, sy) {
			t.Errorf("seed %d level %d: stairs at (%d,%d) cut off from the player", seed, s.Level, sx, sy)
		}
	}
}

func TestSpawnInRoomRejectsBlockerCuttingOffStairs(t *testing.T) {
	s := newTestSession(t)
	// Seal the floor into two halves joined by the single tile (5,3).
	for y := 1; y <= 5; y++ {
		if y == 3 {
			continue
		}
		if err := s.Dungeon.SetKind(5, y, s.Dungeon.Palette().Wall); err != nil {
			t.Fatal(err)
		}
	}
	gap := world.Room{X: 5, Y: 3, Width: 1, Height: 1}
	before := s.Entities.Count()

	var stats populateStats
	s.spawnInRoom(gap, gamedata.ThingBlocker, [2]int{8, 5}, &stats)

	if stats.rejected != 1 || stats.blockers != 0 {
		t.Errorf("stats = %+v, want the blocker in the gap rejected", stats)
	}
	if _, ok := s.Dungeon.Tiles[3][5].Blocker(); ok {
		t.Error("rejected blocker left on the map")
	}
	if s.Entities.Count() != before {
		t.Errorf("rejected spawn left an entity behind: %d -> %d", before, s.Entities.Count())
	}
	assertConsistent(t, s)
}

func TestPopulateWithoutThings(t *testing.T) {
	s := newTestSession(t)
	s.things = nil
	stats := s.populate(context.Background(), [2]int{8, 5})
	if stats != (populateStats{}) {
		t.Errorf("populate without definitions = %+v, want nothing", stats)
	}
}

func TestSpawnInRoomRejectsOccupiedSpot(t *testing.T) {
	s := newTestSession(t)
	// A one-tile room that the player already stands on.
	room := world.Room{X: 2, Y: 2, Width: 1, Height: 1}
	before := s.Entities.Count()

	var stats populateStats
	s.spawnInRoom(room, gamedata.ThingBlocker, [2]int{8, 5}, &stats)

	if stats.rejected != 1 || stats.blockers != 0 {
		t.Errorf("stats = %+v, want one rejection", stats)
	}
	if s.Entities.Count() != before {
		t.Errorf("rejected spawn left an entity behind: %d -> %d", before, s.Entities.Count())
	}
	assertConsistent(t, s)
}

func TestMessageLog(t *testing.T) {
	var log MessageLog
	if got := log.Last(3); len(got) != 0 {
		t.Errorf("empty log Last = %v", got)
	}
	for i := 0; i < maxMessages+5; i++ {
		log.Add(string(rune('a' + i%26)))
	}
	if n := len(log.All()); n != maxMessages {
		t.Errorf("log kept %d messages, want %d", n, maxMessages)
	}
	last := log.Last(2)
	if len(last) != 2 || last[1] != string(rune('a'+(maxMessages+4)%26)) {
		t.Errorf("Last(2) = %v", last)
	}
}
