package term

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// VT100 is a Terminal backed by a real tty using ANSI escape codes.
type VT100 struct {
	in      *os.File
	out     *bufio.Writer
	restore func() error
}

// NewVT100 creates a terminal over the given input tty and output
// stream. Typical usage is NewVT100(os.Stdin, os.Stdout).
func NewVT100(in, out *os.File) *VT100 {
	return &VT100{
		in:  in,
		out: bufio.NewWriterSize(out, 4096),
	}
}

// MakeRaw puts the input tty into raw mode. The returned state is
// restored by Restore.
func (t *VT100) MakeRaw() error {
	state, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	t.restore = func() error {
		return term.Restore(int(t.in.Fd()), state)
	}
	return nil
}

// Restore returns the tty to its previous mode.
func (t *VT100) Restore() error {
	if t.restore == nil {
		return nil
	}
	err := t.restore()
	t.restore = nil
	return err
}

// Read waits up to timeout for raw input. A negative timeout blocks
// indefinitely. Returns (0, nil) when the timeout elapses.
func (t *VT100) Read(p []byte, timeout time.Duration) (int, error) {
	fd := int(t.in.Fd())

	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}

	for {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("polling terminal: %w", err)
		}
		if n == 0 {
			return 0, nil // timeout
		}
		break
	}

	for {
		n, err := unix.Read(fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("reading terminal: %w", err)
		}
		return n, nil
	}
}

// WriteString emits text at the cursor position.
func (t *VT100) WriteString(s string) error {
	_, err := t.out.WriteString(s)
	return err
}

// Size returns the terminal dimensions, falling back to 80x24 when
// the ioctl fails (e.g. output is not a tty).
func (t *VT100) Size() (int, int) {
	ws, err := unix.IoctlGetWinsize(int(t.in.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		if w, h, terr := term.GetSize(int(t.in.Fd())); terr == nil && w > 0 {
			return w, h
		}
		return 80, 24
	}
	return int(ws.Col), int(ws.Row)
}

// CursorUp moves the cursor up n rows.
func (t *VT100) CursorUp(n int) {
	if n > 0 {
		fmt.Fprintf(t.out, "\x1b[%dA", n)
	}
}

// CursorDown moves the cursor down n rows. Linefeeds rather than CSI
// B: at the bottom of the screen a linefeed scrolls, so the target
// row exists even when it has never been written.
func (t *VT100) CursorDown(n int) {
	for i := 0; i < n; i++ {
		t.out.WriteByte('\n')
	}
}

// CursorColumn moves the cursor to a zero-based column.
func (t *VT100) CursorColumn(col int) {
	fmt.Fprintf(t.out, "\x1b[%dG", col+1)
}

// ClearToEnd clears from the cursor to the end of the screen.
func (t *VT100) ClearToEnd() {
	t.out.WriteString("\x1b[J")
}

// SetStyle applies foreground/background colors and weight.
func (t *VT100) SetStyle(s Style) {
	t.out.WriteString("\x1b[0m")
	if s.Bold {
		t.out.WriteString("\x1b[1m")
	}
	if s.FG != ColorDefault {
		fmt.Fprintf(t.out, "\x1b[38;5;%dm", s.FG)
	}
	if s.BG != ColorDefault {
		fmt.Fprintf(t.out, "\x1b[48;5;%dm", s.BG)
	}
}

// ResetStyle restores the default style.
func (t *VT100) ResetStyle() {
	t.out.WriteString("\x1b[0m")
}

// SetCursorShape emits DECSCUSR. Steady variants; blink is the
// user's terminal preference, not ours to toggle.
func (t *VT100) SetCursorShape(shape CursorShape) {
	switch shape {
	case ShapeBlock:
		t.out.WriteString("\x1b[2 q")
	case ShapeBar:
		t.out.WriteString("\x1b[6 q")
	default:
		t.out.WriteString("\x1b[0 q")
	}
}

// Beep sounds the terminal bell.
func (t *VT100) Beep() {
	t.out.WriteByte(0x07)
	t.out.Flush()
}

// Flush writes buffered output to the terminal.
func (t *VT100) Flush() error {
	return t.out.Flush()
}
