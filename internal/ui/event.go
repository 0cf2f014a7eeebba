package ui

// EventType identifies the type of screen event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
	// EventInterrupt asks the controller to redraw, e.g. after a
	// preference change or a clock tick.
	EventInterrupt
	// EventQuit stops the event loop.
	EventQuit
)

// Event represents a screen event.
type Event struct {
	Type EventType

	// Key event fields
	Key  Key
	Rune rune
	Mod  ModMask

	// Resize event fields
	Width, Height int
}

// Key represents a keyboard key. Only keys the controller binds are
// distinguished; everything else arrives as KeyOther.
type Key int

const (
	KeyNone Key = iota
	KeyRune     // Regular character (use Rune field)
	KeyEnter
	KeyTab
	KeyBacktab
	KeyBackspace
	KeyEscape
	KeyCtrlC
	KeyCtrlL
	KeyCtrlR
	KeyCtrlT
	KeyCtrlU
	KeyCtrlY
	KeyCtrlZ
	KeyOther
)

// ModMask represents modifier key state.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
)

// Has returns true if the mask contains the given modifier.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// KeyEvent is shorthand for a key event without modifiers.
func KeyEvent(k Key) Event {
	return Event{Type: EventKey, Key: k}
}

// RuneEvent is shorthand for typing r.
func RuneEvent(r rune) Event {
	return Event{Type: EventKey, Key: KeyRune, Rune: r}
}
