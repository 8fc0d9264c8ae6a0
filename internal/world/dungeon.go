package world

import (
	"cmp"
	"context"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/roguetiles/internal/telemetry"
)

const (
	// Default dungeon dimensions. The map plus the four status rows under
	// it fit an 80x24 terminal.
	DefaultWidth  = 80
	DefaultHeight = 20

	// BSP parameters
	minRoomSize = 4  // Minimum room dimension
	maxRoomSize = 12 // Maximum room dimension
	minLeafSize = 7  // Minimum BSP leaf size before stopping split
)

// Dungeon represents the game map. It owns every tile; tiles only hold
// references to entities owned by a registry.
type Dungeon struct {
	Width   int
	Height  int
	Tiles   [][]Tile
	Rooms   []Room
	palette Palette
	rng     *rand.Rand
}

// NewDungeon creates a new dungeon filled with the palette's wall kind.
// A zero palette means DefaultPalette; a nil rng is seeded from the clock.
func NewDungeon(width, height int, palette Palette, rng *rand.Rand) *Dungeon {
	if palette.isZero() {
		palette = DefaultPalette()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	tiles := make([][]Tile, height)
	for y := range tiles {
		tiles[y] = make([]Tile, width)
		for x := range tiles[y] {
			tiles[y][x] = NewTile(palette.Wall)
		}
	}

	return &Dungeon{
		Width:   width,
		Height:  height,
		Tiles:   tiles,
		Rooms:   make([]Room, 0),
		palette: palette,
		rng:     rng,
	}
}

// Palette returns the kinds the dungeon was built with.
func (d *Dungeon) Palette() Palette {
	return d.palette
}

// Generate creates the dungeon layout using BSP algorithm.
func (d *Dungeon) Generate(ctx context.Context) {
	tracer := telemetry.Tracer("world")
	_, span := tracer.Start(ctx, "dungeon.generate")
	defer span.End()

	startTime := time.Now()

	// Start BSP with the entire dungeon as root
	root := &bspNode{
		x:      1,
		y:      1,
		width:  d.Width - 2,
		height: d.Height - 2,
	}

	d.splitNode(root)
	d.createRooms(root)
	d.connectRooms(root)

	span.SetAttributes(
		attribute.Int("dungeon.width", d.Width),
		attribute.Int("dungeon.height", d.Height),
		attribute.Int("dungeon.room_count", len(d.Rooms)),
		attribute.Int64("dungeon.generation_ms", time.Since(startTime).Milliseconds()),
	)
}

// InBounds reports whether (x, y) is inside the map.
func (d *Dungeon) InBounds(x, y int) bool {
	return x >= 0 && x < d.Width && y >= 0 && y < d.Height
}

// At returns the tile at the given position.
func (d *Dungeon) At(x, y int) (*Tile, bool) {
	if !d.InBounds(x, y) {
		return nil, false
	}
	return &d.Tiles[y][x], true
}

// IsWalkable returns true if the terrain at the position can be walked on.
func (d *Dungeon) IsWalkable(x, y int) bool {
	t, ok := d.At(x, y)
	return ok && t.Walkable()
}

// IsPassable returns true if the position is walkable and no blocker stands there.
func (d *Dungeon) IsPassable(x, y int) bool {
	t, ok := d.At(x, y)
	if !ok || !t.Walkable() {
		return false
	}
	_, blocked := t.Blocker()
	return !blocked
}

// PlaceItem puts an item on the tile at (x, y).
func (d *Dungeon) PlaceItem(x, y int, id uuid.UUID) error {
	t, ok := d.At(x, y)
	if !ok {
		return fmt.Errorf("place item at (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	if err := t.PlaceItem(id); err != nil {
		return fmt.Errorf("place item at (%d,%d): %w", x, y, err)
	}
	return nil
}

// RemoveItem clears the item slot at (x, y). Out-of-bounds positions hold nothing.
func (d *Dungeon) RemoveItem(x, y int) (uuid.UUID, bool) {
	t, ok := d.At(x, y)
	if !ok {
		return uuid.Nil, false
	}
	return t.RemoveItem()
}

// PlaceBlocker puts a blocking entity on the tile at (x, y).
func (d *Dungeon) PlaceBlocker(x, y int, id uuid.UUID) error {
	t, ok := d.At(x, y)
	if !ok {
		return fmt.Errorf("place blocker at (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	if err := t.PlaceBlocker(id); err != nil {
		return fmt.Errorf("place blocker at (%d,%d): %w", x, y, err)
	}
	return nil
}

// RemoveBlocker clears the blocker slot at (x, y).
func (d *Dungeon) RemoveBlocker(x, y int) (uuid.UUID, bool) {
	t, ok := d.At(x, y)
	if !ok {
		return uuid.Nil, false
	}
	return t.RemoveBlocker()
}

// MoveBlocker moves a blocker between two tiles. The target is claimed
// before the source is released, so a failed move changes nothing.
func (d *Dungeon) MoveBlocker(id uuid.UUID, fromX, fromY, toX, toY int) error {
	from, ok := d.At(fromX, fromY)
	if !ok {
		return fmt.Errorf("move blocker from (%d,%d): %w", fromX, fromY, ErrOutOfBounds)
	}
	if current, _ := from.Blocker(); current != id {
		return fmt.Errorf("move blocker from (%d,%d): %s is not there", fromX, fromY, id)
	}
	if err := d.PlaceBlocker(toX, toY, id); err != nil {
		return err
	}
	from.RemoveBlocker()
	return nil
}

// Render returns the glyph to draw at (x, y). Outside the map it is the
// wall glyph, matching what the edge of the map looks like.
func (d *Dungeon) Render(x, y int, src GlyphSource) Glyph {
	t, ok := d.At(x, y)
	if !ok {
		return d.palette.Wall.Glyph
	}
	return t.Render(src)
}

// SetKind changes the terrain of an empty tile.
func (d *Dungeon) SetKind(x, y int, kind *Kind) error {
	t, ok := d.At(x, y)
	if !ok {
		return fmt.Errorf("set kind at (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	if id, held := t.Item(); held {
		return fmt.Errorf("set kind at (%d,%d): %w", x, y, &OccupiedError{Slot: SlotItem, Occupant: id})
	}
	if id, held := t.Blocker(); held {
		return fmt.Errorf("set kind at (%d,%d): %w", x, y, &OccupiedError{Slot: SlotBlocker, Occupant: id})
	}
	*t = NewTile(kind)
	return nil
}

// Evict clears every slot that references id, returning how many were cleared.
// Used when an entity leaves the map.
func (d *Dungeon) Evict(id uuid.UUID) int {
	n := 0
	for y := range d.Tiles {
		for x := range d.Tiles[y] {
			if d.Tiles[y][x].evict(id) {
				n++
			}
		}
	}
	return n
}

// Clear empties every slot on the map. Used when the map is discarded.
func (d *Dungeon) Clear() {
	for y := range d.Tiles {
		for x := range d.Tiles[y] {
			d.Tiles[y][x].clear()
		}
	}
}

// Nearby returns the positions that can be walked to from (x, y) in
// 8-way steps over walkable tiles without leaving Chebyshev distance
// radius, keeping only those accepted by keep. Positions are ordered by
// step count, row-major within a step count. Walls are never crossed.
func (d *Dungeon) Nearby(x, y, radius int, keep func(t *Tile) bool) [][2]int {
	type step struct{ x, y, n int }
	seen := map[[2]int]bool{{x, y}: true}
	queue := []step{{x, y, 0}}
	var found []step
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := cur.x+dx, cur.y+dy
				p := [2]int{nx, ny}
				if seen[p] || max(abs(nx-x), abs(ny-y)) > radius || !d.IsWalkable(nx, ny) {
					continue
				}
				seen[p] = true
				next := step{nx, ny, cur.n + 1}
				queue = append(queue, next)
				found = append(found, next)
			}
		}
	}

	slices.SortFunc(found, func(a, b step) int {
		if c := cmp.Compare(a.n, b.n); c != 0 {
			return c
		}
		if c := cmp.Compare(a.y, b.y); c != 0 {
			return c
		}
		return cmp.Compare(a.x, b.x)
	})

	var out [][2]int
	for _, f := range found {
		if keep(&d.Tiles[f.y][f.x]) {
			out = append(out, [2]int{f.x, f.y})
		}
	}
	return out
}

// Reachable reports whether mover can walk from one position to another in
// 8-way steps over walkable tiles. Tiles holding any other blocker are solid.
func (d *Dungeon) Reachable(mover uuid.UUID, fromX, fromY, toX, toY int) bool {
	if !d.InBounds(fromX, fromY) || !d.InBounds(toX, toY) {
		return false
	}
	if fromX == toX && fromY == toY {
		return true
	}
	seen := make([]bool, d.Width*d.Height)
	seen[fromY*d.Width+fromX] = true
	queue := [][2]int{{fromX, fromY}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := p[0]+dx, p[1]+dy
				if !d.InBounds(nx, ny) || seen[ny*d.Width+nx] {
					continue
				}
				seen[ny*d.Width+nx] = true
				t := &d.Tiles[ny][nx]
				if !t.Walkable() {
					continue
				}
				if id, ok := t.Blocker(); ok && id != mover {
					continue
				}
				if nx == toX && ny == toY {
					return true
				}
				queue = append(queue, [2]int{nx, ny})
			}
		}
	}
	return false
}

// RoomIndexAt returns the index of the room containing the position, or -1 if not in a room.
func (d *Dungeon) RoomIndexAt(x, y int) int {
	for i, room := range d.Rooms {
		if room.Contains(x, y) {
			return i
		}
	}
	return -1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// bspNode represents a node in the BSP tree.
type bspNode struct {
	x, y          int
	width, height int
	left, right   *bspNode
	room          *Room
}

// isLeaf returns true if this node has no children.
func (n *bspNode) isLeaf() bool {
	return n.left == nil && n.right == nil
}

// splitNode recursively splits a BSP node.
func (d *Dungeon) splitNode(node *bspNode) {
	if node.width < minLeafSize*2 && node.height < minLeafSize*2 {
		return
	}

	var splitHorizontally bool
	if node.width > node.height && node.width >= minLeafSize*2 {
		splitHorizontally = false
	} else if node.height >= minLeafSize*2 {
		splitHorizontally = true
	} else if node.width >= minLeafSize*2 {
		splitHorizontally = false
	} else {
		return
	}

	size := node.width
	if splitHorizontally {
		size = node.height
	}
	lo, hi := minLeafSize, size-minLeafSize
	if hi <= lo {
		return
	}
	splitPos := lo + d.rng.Intn(hi-lo+1)

	if splitHorizontally {
		node.left = &bspNode{x: node.x, y: node.y, width: node.width, height: splitPos}
		node.right = &bspNode{x: node.x, y: node.y + splitPos, width: node.width, height: node.height - splitPos}
	} else {
		node.left = &bspNode{x: node.x, y: node.y, width: splitPos, height: node.height}
		node.right = &bspNode{x: node.x + splitPos, y: node.y, width: node.width - splitPos, height: node.height}
	}

	d.splitNode(node.left)
	d.splitNode(node.right)
}

// createRooms creates rooms in leaf nodes of the BSP tree.
func (d *Dungeon) createRooms(node *bspNode) {
	if node == nil {
		return
	}
	if !node.isLeaf() {
		d.createRooms(node.left)
		d.createRooms(node.right)
		return
	}

	maxW := min(maxRoomSize, node.width-2)
	maxH := min(maxRoomSize, node.height-2)
	if maxW < minRoomSize || maxH < minRoomSize {
		return
	}
	roomWidth := minRoomSize + d.rng.Intn(maxW-minRoomSize+1)
	roomHeight := minRoomSize + d.rng.Intn(maxH-minRoomSize+1)

	room := Room{
		X:      node.x + 1 + d.rng.Intn(node.width-roomWidth-1),
		Y:      node.y + 1 + d.rng.Intn(node.height-roomHeight-1),
		Width:  roomWidth,
		Height: roomHeight,
	}
	node.room = &room
	d.Rooms = append(d.Rooms, room)
	d.carveRoom(room)
}

// carveRoom sets all tiles within the room to floor.
func (d *Dungeon) carveRoom(room Room) {
	for y := room.Y; y < room.Y+room.Height; y++ {
		for x := room.X; x < room.X+room.Width; x++ {
			d.carve(x, y)
		}
	}
}

// carve turns an interior cell into floor, leaving the outer ring as wall.
func (d *Dungeon) carve(x, y int) {
	if x > 0 && x < d.Width-1 && y > 0 && y < d.Height-1 {
		d.Tiles[y][x] = NewTile(d.palette.Floor)
	}
}

// connectRooms connects rooms with corridors.
func (d *Dungeon) connectRooms(node *bspNode) {
	if node == nil || node.isLeaf() {
		return
	}

	d.connectRooms(node.left)
	d.connectRooms(node.right)

	leftRoom := d.getRoom(node.left)
	rightRoom := d.getRoom(node.right)
	if leftRoom != nil && rightRoom != nil {
		d.carveCorridor(*leftRoom, *rightRoom)
	}
}

// getRoom returns a room from a subtree (any room will do).
func (d *Dungeon) getRoom(node *bspNode) *Room {
	if node == nil {
		return nil
	}
	if node.room != nil {
		return node.room
	}
	if room := d.getRoom(node.left); room != nil {
		return room
	}
	return d.getRoom(node.right)
}

// carveCorridor digs an L-shaped corridor between two room centers.
func (d *Dungeon) carveCorridor(room1, room2 Room) {
	x1, y1 := room1.Center()
	x2, y2 := room2.Center()

	if d.rng.Intn(2) == 0 {
		d.carveHorizontalTunnel(x1, x2, y1)
		d.carveVerticalTunnel(y1, y2, x2)
	} else {
		d.carveVerticalTunnel(y1, y2, x1)
		d.carveHorizontalTunnel(x1, x2, y2)
	}
}

func (d *Dungeon) carveHorizontalTunnel(x1, x2, y int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		d.carve(x, y)
	}
}

func (d *Dungeon) carveVerticalTunnel(y1, y2, x int) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		d.carve(x, y)
	}
}
