// Package input translates mouse, wheel, and key events into Item Model
// mutations, scroll math, and the incremental-search mode.
// All handlers run on the UI thread, serialized with rendering.
package input

// Key is a virtual key the pane handles; printable characters arrive as
// KeyChar with the rune set on the event.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeySpace
	KeyEnter
	KeyBackspace
	KeyTab
	KeyEscape
	KeyChar
)

// Modifiers is the chord modifier bitset.
type Modifiers int

const (
	ModShift Modifiers = 1 << iota
	ModControl
)

func (m Modifiers) Shift() bool   { return m&ModShift != 0 }
func (m Modifiers) Control() bool { return m&ModControl != 0 }

// KeyEvent is one translated key press.
type KeyEvent struct {
	Key       Key
	Rune      rune // set for KeyChar
	Modifiers Modifiers
}

// MouseButton identifies which button a mouse event carries.
type MouseButton int

const (
	ButtonLeft MouseButton = iota
	ButtonRight
	ButtonMiddle
)

// MouseEvent is one translated mouse press/move in client DIPs.
type MouseEvent struct {
	X, Y        float64
	Button      MouseButton
	Modifiers   Modifiers
	DoubleClick bool
}

// WheelEvent is one translated wheel notch; Delta is positive toward the
// user (scroll up).
type WheelEvent struct {
	Delta     float64
	Modifiers Modifiers
}
