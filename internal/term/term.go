// Package term abstracts the terminal the engine runs in.
//
// Terminal is the engine's only OS-facing dependency. The VT100
// implementation talks to a real tty; Script is an in-memory
// implementation used by tests to feed keystrokes and capture output.
package term

import "time"

// Color is an ANSI 256-color palette index, or ColorDefault.
type Color int16

// ColorDefault selects the terminal's default foreground/background.
const ColorDefault Color = -1

// Style describes text attributes for subsequent writes.
type Style struct {
	FG   Color
	BG   Color
	Bold bool
}

// DefaultStyle is the terminal's unstyled state.
var DefaultStyle = Style{FG: ColorDefault, BG: ColorDefault}

// CursorShape selects the text cursor's appearance, used to signal
// the active edit mode.
type CursorShape int

const (
	ShapeDefault CursorShape = iota
	ShapeBlock
	ShapeBar
)

// Terminal is the capability the engine requires from its host
// terminal: raw key input, text output, cursor movement, dimensions,
// styling, and an audible cue. Implementations need not be safe for
// concurrent use; the reader goroutine owns Read and the consumer
// goroutine owns everything else.
type Terminal interface {
	// Read fills p with raw input bytes. A negative timeout blocks
	// until input arrives; otherwise Read waits at most timeout and
	// returns (0, nil) if nothing arrived.
	Read(p []byte, timeout time.Duration) (int, error)

	// WriteString emits text at the cursor position.
	// Output may be buffered until Flush.
	WriteString(s string) error

	// Size returns the terminal dimensions in cells.
	Size() (width, height int)

	// CursorUp moves the cursor up n rows.
	CursorUp(n int)

	// CursorDown moves the cursor down n rows.
	CursorDown(n int)

	// CursorColumn moves the cursor to the given zero-based column
	// on the current row.
	CursorColumn(col int)

	// ClearToEnd clears from the cursor to the end of the screen.
	ClearToEnd()

	// SetStyle applies a style to subsequent writes.
	SetStyle(s Style)

	// ResetStyle restores the default style.
	ResetStyle()

	// SetCursorShape changes the cursor's appearance.
	SetCursorShape(shape CursorShape)

	// Beep sounds the terminal bell.
	Beep()

	// Flush writes any buffered output to the terminal.
	Flush() error
}
