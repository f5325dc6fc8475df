package core

// Key is one debounced logical keypad event or level.
type Key uint8

const (
	KeyNone Key = iota
	KeySelect
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
)

// Keypad supplies operator input. Poll returns edge events (a key reported
// once per press) for menu navigation; Held returns the current stable level
// for press-and-hold behavior like jogging.
type Keypad interface {
	Poll() Key
	Held() Key
}
