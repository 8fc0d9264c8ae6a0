package world

import "math/rand"

// Room represents a rectangular room in the dungeon.
type Room struct {
	X, Y          int // Top-left corner position
	Width, Height int // Dimensions of the room
}

// Center returns the center coordinates of the room.
func (r Room) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Contains returns true if the given point is inside the room.
func (r Room) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// RandomPoint returns a uniformly chosen cell inside the room.
func (r Room) RandomPoint(rng *rand.Rand) (int, int) {
	return r.X + rng.Intn(r.Width), r.Y + rng.Intn(r.Height)
}
