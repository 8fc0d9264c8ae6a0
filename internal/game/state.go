// Package game provides the main game loop and state management.
package game

// State represents the current input mode.
type State int

const (
	// StateExplore is the default mode: movement, pickup, stairs.
	StateExplore State = iota
	// StateDrop shows the inventory and waits for the letter of the item to drop.
	StateDrop
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateExplore:
		return "explore"
	case StateDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// maxMessages bounds the message log.
const maxMessages = 100

// MessageLog keeps the most recent game messages.
type MessageLog struct {
	lines []string
}

// Add appends a message, dropping the oldest past maxMessages.
func (l *MessageLog) Add(msg string) {
	l.lines = append(l.lines, msg)
	if len(l.lines) > maxMessages {
		l.lines = l.lines[len(l.lines)-maxMessages:]
	}
}

// Last returns up to n of the most recent messages, oldest first.
func (l *MessageLog) Last(n int) []string {
	if n > len(l.lines) {
		n = len(l.lines)
	}
	return append([]string(nil), l.lines[len(l.lines)-n:]...)
}

// All returns every retained message.
func (l *MessageLog) All() []string {
	return append([]string(nil), l.lines...)
}
