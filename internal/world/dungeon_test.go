package world

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/uuid"
)

func newTestDungeon(seed int64) *Dungeon {
	d := NewDungeon(DefaultWidth, DefaultHeight, Palette{}, rand.New(rand.NewSource(seed)))
	d.Generate(context.Background())
	return d
}

// floorAt returns the first floor tile in the first room.
func floorAt(t *testing.T, d *Dungeon) (int, int) {
	t.Helper()
	if len(d.Rooms) == 0 {
		t.Fatal("dungeon generated no rooms")
	}
	return d.Rooms[0].Center()
}

func TestDungeonReproducibility(t *testing.T) {
	d1 := newTestDungeon(12345)
	d2 := newTestDungeon(12345)

	if len(d1.Rooms) != len(d2.Rooms) {
		t.Fatalf("Room count mismatch: %d != %d", len(d1.Rooms), len(d2.Rooms))
	}
	for i := range d1.Rooms {
		if d1.Rooms[i] != d2.Rooms[i] {
			t.Errorf("Room %d mismatch: %+v != %+v", i, d1.Rooms[i], d2.Rooms[i])
		}
	}
	for y := 0; y < d1.Height; y++ {
		for x := 0; x < d1.Width; x++ {
			if d1.Tiles[y][x].Kind().Name != d2.Tiles[y][x].Kind().Name {
				t.Errorf("Tile mismatch at (%d,%d)", x, y)
			}
		}
	}
}

func TestDungeonDifferentSeeds(t *testing.T) {
	d1 := newTestDungeon(12345)
	d2 := newTestDungeon(54321)

	identical := len(d1.Rooms) == len(d2.Rooms)
	for i := 0; identical && i < len(d1.Rooms); i++ {
		if d1.Rooms[i].X != d2.Rooms[i].X || d1.Rooms[i].Y != d2.Rooms[i].Y {
			identical = false
		}
	}
	if identical {
		t.Error("Dungeons with different seeds should not be identical")
	}
}

func TestGeneratedDungeonIsEmptyAndWalled(t *testing.T) {
	d := newTestDungeon(99)

	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			tile, _ := d.At(x, y)
			if !tile.IsEmpty() {
				t.Fatalf("fresh dungeon has an occupant at (%d,%d)", x, y)
			}
			edge := x == 0 || y == 0 || x == d.Width-1 || y == d.Height-1
			if edge && tile.Walkable() {
				t.Fatalf("edge tile (%d,%d) is walkable", x, y)
			}
		}
	}
	for i, room := range d.Rooms {
		cx, cy := room.Center()
		if !d.IsWalkable(cx, cy) {
			t.Errorf("room %d center (%d,%d) is not floor", i, cx, cy)
		}
	}
}

func TestDungeonPlacementOutOfBounds(t *testing.T) {
	d := NewDungeon(5, 5, Palette{}, rand.New(rand.NewSource(1)))
	id := uuid.New()

	if err := d.PlaceItem(-1, 0, id); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("PlaceItem out of bounds = %v, want ErrOutOfBounds", err)
	}
	if err := d.PlaceBlocker(5, 5, id); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("PlaceBlocker out of bounds = %v, want ErrOutOfBounds", err)
	}
	if _, ok := d.RemoveItem(9, 9); ok {
		t.Error("RemoveItem out of bounds should report nothing removed")
	}
	if g := d.Render(-3, 2, nil); g != d.Palette().Wall.Glyph {
		t.Errorf("Render out of bounds = %v, want wall glyph", g)
	}
}

func TestDungeonWrapsOccupancyErrors(t *testing.T) {
	d := newTestDungeon(3)
	x, y := floorAt(t, d)
	first, second := uuid.New(), uuid.New()

	if err := d.PlaceItem(x, y, first); err != nil {
		t.Fatalf("PlaceItem: %v", err)
	}
	err := d.PlaceItem(x, y, second)
	var occ *OccupiedError
	if !errors.As(err, &occ) || occ.Occupant != first {
		t.Fatalf("second PlaceItem = %v, want OccupiedError holding first", err)
	}

	if err := d.PlaceItem(0, 0, second); !errors.Is(err, ErrTileType) {
		t.Errorf("PlaceItem on the wall border = %v, want ErrTileType", err)
	}
}

func TestMoveBlocker(t *testing.T) {
	d := NewDungeon(6, 3, Palette{}, rand.New(rand.NewSource(1)))
	for x := 1; x <= 4; x++ {
		d.carve(x, 1)
	}
	hero, orc := uuid.New(), uuid.New()
	if err := d.PlaceBlocker(1, 1, hero); err != nil {
		t.Fatal(err)
	}
	if err := d.PlaceBlocker(3, 1, orc); err != nil {
		t.Fatal(err)
	}

	if err := d.MoveBlocker(hero, 1, 1, 2, 1); err != nil {
		t.Fatalf("move onto free floor: %v", err)
	}
	if d.IsPassable(2, 1) || !d.IsPassable(1, 1) {
		t.Error("blocker should now be at (2,1) only")
	}

	if err := d.MoveBlocker(hero, 2, 1, 3, 1); !errors.Is(err, ErrOccupied) {
		t.Errorf("move onto orc = %v, want ErrOccupied", err)
	}
	if id, _ := d.Tiles[1][2].Blocker(); id != hero {
		t.Error("failed move must leave the blocker where it was")
	}

	if err := d.MoveBlocker(hero, 2, 1, 2, 0); !errors.Is(err, ErrTileType) {
		t.Errorf("move into wall = %v, want ErrTileType", err)
	}
	if err := d.MoveBlocker(orc, 2, 1, 1, 1); err == nil {
		t.Error("moving a blocker from a tile it is not on should fail")
	}
}

func TestBlockerCanStandOnItem(t *testing.T) {
	d := NewDungeon(4, 3, Palette{}, rand.New(rand.NewSource(1)))
	d.carve(1, 1)
	d.carve(2, 1)
	potion, hero := uuid.New(), uuid.New()
	src := glyphMap{potion: potionGlyph, hero: orcGlyph}

	if err := d.PlaceItem(2, 1, potion); err != nil {
		t.Fatal(err)
	}
	if err := d.PlaceBlocker(1, 1, hero); err != nil {
		t.Fatal(err)
	}
	if err := d.MoveBlocker(hero, 1, 1, 2, 1); err != nil {
		t.Fatalf("blocker should share a tile with an item: %v", err)
	}
	if got := d.Render(2, 1, src); got != orcGlyph {
		t.Errorf("Render = %v, want blocker glyph on top", got)
	}
	d.RemoveBlocker(2, 1)
	if got := d.Render(2, 1, src); got != potionGlyph {
		t.Errorf("Render after blocker leaves = %v, want item glyph", got)
	}
}

func TestEvictAndClear(t *testing.T) {
	d := newTestDungeon(5)
	x, y := floorAt(t, d)
	item, blocker := uuid.New(), uuid.New()
	if err := d.PlaceItem(x, y, item); err != nil {
		t.Fatal(err)
	}
	if err := d.PlaceBlocker(x, y, blocker); err != nil {
		t.Fatal(err)
	}

	if n := d.Evict(item); n != 1 {
		t.Errorf("Evict(item) cleared %d slots, want 1", n)
	}
	if _, ok := d.Tiles[y][x].Item(); ok {
		t.Error("item slot should be empty after Evict")
	}
	if n := d.Evict(uuid.Nil); n != 0 {
		t.Errorf("Evict(Nil) cleared %d slots, want 0", n)
	}

	d.Clear()
	if !d.Tiles[y][x].IsEmpty() {
		t.Error("Clear should empty every slot")
	}
}

func TestSetKind(t *testing.T) {
	d := newTestDungeon(8)
	x, y := floorAt(t, d)
	stairs := d.Palette().StairsDown

	if err := d.PlaceItem(x, y, uuid.New()); err != nil {
		t.Fatal(err)
	}
	if err := d.SetKind(x, y, stairs); !errors.Is(err, ErrOccupied) {
		t.Errorf("SetKind on occupied tile = %v, want ErrOccupied", err)
	}
	d.RemoveItem(x, y)
	if err := d.SetKind(x, y, stairs); err != nil {
		t.Fatalf("SetKind on empty tile: %v", err)
	}
	tile, _ := d.At(x, y)
	if tile.Kind() != stairs || tile.DefaultGlyph() != stairs.Glyph {
		t.Error("tile should take the new kind and its glyph")
	}
}

// openDungeon returns a w x h dungeon that is floor everywhere.
func openDungeon(t *testing.T, w, h int) *Dungeon {
	t.Helper()
	d := NewDungeon(w, h, Palette{}, rand.New(rand.NewSource(1)))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if err := d.SetKind(x, y, d.Palette().Floor); err != nil {
				t.Fatal(err)
			}
		}
	}
	return d
}

func TestNearbyRings(t *testing.T) {
	d := openDungeon(t, 7, 7)
	all := func(*Tile) bool { return true }

	got := d.Nearby(3, 3, 2, all)
	if len(got) != 8+16 {
		t.Fatalf("Nearby radius 2 returned %d positions, want 24", len(got))
	}
	for i, p := range got[:8] {
		if max(abs(p[0]-3), abs(p[1]-3)) != 1 {
			t.Errorf("position %d %v is not in the first ring", i, p)
		}
	}
	if got[0] != [2]int{2, 2} {
		t.Errorf("first position = %v, want the top-left neighbour", got[0])
	}

	corner := d.Nearby(0, 0, 1, all)
	if len(corner) != 3 {
		t.Errorf("Nearby at corner returned %d positions, want 3", len(corner))
	}
}

func TestNearbyDoesNotCrossWalls(t *testing.T) {
	d := openDungeon(t, 9, 3)
	for y := 0; y < 3; y++ {
		if err := d.SetKind(4, y, d.Palette().Wall); err != nil {
			t.Fatal(err)
		}
	}

	for _, p := range d.Nearby(3, 1, 3, func(*Tile) bool { return true }) {
		if p[0] >= 4 {
			t.Errorf("Nearby reached %v on the far side of the wall", p)
		}
	}

	// With a gap in the wall the far side is reachable, one step further out.
	if err := d.SetKind(4, 0, d.Palette().Floor); err != nil {
		t.Fatal(err)
	}
	got := d.Nearby(3, 1, 3, func(t *Tile) bool { return t.Kind().Name == KindNameFloor })
	found := false
	for _, p := range got {
		if p == [2]int{5, 1} {
			found = true
		}
	}
	if !found {
		t.Errorf("Nearby through the gap = %v, want (5,1) included", got)
	}
}

func TestReachable(t *testing.T) {
	d := openDungeon(t, 5, 3)
	mover, other := uuid.New(), uuid.New()
	if err := d.PlaceBlocker(0, 1, mover); err != nil {
		t.Fatal(err)
	}
	if !d.Reachable(mover, 0, 1, 4, 1) {
		t.Fatal("open floor should be reachable")
	}

	// A column of walls with one gap, then a blocker in the gap.
	for _, y := range []int{0, 2} {
		if err := d.SetKind(2, y, d.Palette().Wall); err != nil {
			t.Fatal(err)
		}
	}
	if !d.Reachable(mover, 0, 1, 4, 1) {
		t.Error("the gap should still connect both sides")
	}
	if err := d.PlaceBlocker(2, 1, other); err != nil {
		t.Fatal(err)
	}
	if d.Reachable(mover, 0, 1, 4, 1) {
		t.Error("another blocker in the gap should cut the path")
	}
	if d.Reachable(mover, 0, 1, 2, 1) {
		t.Error("a tile holding another blocker is not reachable")
	}
	if !d.Reachable(mover, 0, 1, 0, 1) {
		t.Error("the start is reachable from itself")
	}
	if d.Reachable(mover, 0, 1, 9, 9) {
		t.Error("out of bounds is never reachable")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	d := newTestDungeon(21)
	x, y := floorAt(t, d)
	item, blocker := uuid.New(), uuid.New()
	if err := d.PlaceItem(x, y, item); err != nil {
		t.Fatal(err)
	}
	if err := d.PlaceBlocker(x, y, blocker); err != nil {
		t.Fatal(err)
	}

	restored, err := Restore(d.Snapshot(), d.Palette().Kinds(), nil)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(restored.Rooms) != len(d.Rooms) {
		t.Errorf("restored %d rooms, want %d", len(restored.Rooms), len(d.Rooms))
	}
	tile, _ := restored.At(x, y)
	if got, _ := tile.Item(); got != item {
		t.Errorf("restored item = %v, want %v", got, item)
	}
	if got, _ := tile.Blocker(); got != blocker {
		t.Errorf("restored blocker = %v, want %v", got, blocker)
	}
}

func TestRestoreRejectsBrokenSnapshots(t *testing.T) {
	kinds := DefaultPalette().Kinds()
	id := uuid.New().String()

	cases := []struct {
		name string
		snap Snapshot
		want error
	}{
		{
			name: "item on wall",
			snap: Snapshot{Width: 1, Height: 1, Tiles: []TileState{{Kind: KindNameWall, Item: id}}},
			want: ErrTileType,
		},
		{
			name: "unknown kind",
			snap: Snapshot{Width: 1, Height: 1, Tiles: []TileState{{Kind: "lava"}}},
		},
		{
			name: "tile count mismatch",
			snap: Snapshot{Width: 2, Height: 2, Tiles: []TileState{{Kind: KindNameFloor}}},
		},
		{
			name: "dimensions overflow the tile count",
			snap: Snapshot{Width: 1 << 62, Height: 4},
		},
		{
			name: "bad reference",
			snap: Snapshot{Width: 1, Height: 1, Tiles: []TileState{{Kind: KindNameFloor, Blocker: "not-a-uuid"}}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Restore(tc.snap, kinds, nil)
			if err == nil {
				t.Fatal("Restore should fail")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("Restore error = %v, want %v", err, tc.want)
			}
		})
	}
}
