package term

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Script is an in-memory Terminal for tests. Input is supplied with
// FeedInput and consumed by Read with real timeout semantics; all
// output operations are recorded in an op log for assertions.
type Script struct {
	mu     sync.Mutex
	input  []byte
	avail  chan struct{} // signaled when input arrives
	closed bool

	opMu   sync.Mutex
	ops    []string
	writes strings.Builder
	beeps  int

	width  int
	height int
}

// NewScript creates a scripted terminal with the given dimensions.
func NewScript(width, height int) *Script {
	return &Script{
		avail:  make(chan struct{}, 1),
		width:  width,
		height: height,
	}
}

// FeedInput queues raw bytes for Read. Safe to call from any goroutine.
func (s *Script) FeedInput(raw []byte) {
	s.mu.Lock()
	s.input = append(s.input, raw...)
	s.mu.Unlock()

	select {
	case s.avail <- struct{}{}:
	default:
	}
}

// FeedKeys queues a string of keystrokes.
func (s *Script) FeedKeys(keys string) {
	s.FeedInput([]byte(keys))
}

// CloseInput makes subsequent reads fail with io.EOF once the queued
// input drains.
func (s *Script) CloseInput() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	select {
	case s.avail <- struct{}{}:
	default:
	}
}

// Read implements Terminal.
func (s *Script) Read(p []byte, timeout time.Duration) (int, error) {
	deadline := time.Time{}
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		s.mu.Lock()
		if len(s.input) > 0 {
			n := copy(p, s.input)
			s.input = s.input[n:]
			s.mu.Unlock()
			return n, nil
		}
		closed := s.closed
		s.mu.Unlock()

		if closed {
			return 0, io.EOF
		}

		if timeout < 0 {
			<-s.avail
			continue
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, nil
		}

		timer := time.NewTimer(remaining)
		select {
		case <-s.avail:
			timer.Stop()
		case <-timer.C:
			return 0, nil
		}
	}
}

// WriteString implements Terminal.
func (s *Script) WriteString(text string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.ops = append(s.ops, fmt.Sprintf("write(%q)", text))
	s.writes.WriteString(text)
	return nil
}

// Size implements Terminal.
func (s *Script) Size() (int, int) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.width, s.height
}

// Resize changes the reported dimensions.
func (s *Script) Resize(width, height int) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.width = width
	s.height = height
}

// CursorUp implements Terminal.
func (s *Script) CursorUp(n int) {
	s.record(fmt.Sprintf("up(%d)", n))
}

// CursorDown implements Terminal.
func (s *Script) CursorDown(n int) {
	s.record(fmt.Sprintf("down(%d)", n))
}

// CursorColumn implements Terminal.
func (s *Script) CursorColumn(col int) {
	s.record(fmt.Sprintf("col(%d)", col))
}

// ClearToEnd implements Terminal.
func (s *Script) ClearToEnd() {
	s.record("clear")
}

// SetStyle implements Terminal.
func (s *Script) SetStyle(style Style) {
	s.record(fmt.Sprintf("style(%d,%d,%v)", style.FG, style.BG, style.Bold))
}

// ResetStyle implements Terminal.
func (s *Script) ResetStyle() {
	s.record("reset")
}

// SetCursorShape implements Terminal.
func (s *Script) SetCursorShape(shape CursorShape) {
	s.record(fmt.Sprintf("shape(%d)", shape))
}

// Beep implements Terminal.
func (s *Script) Beep() {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.beeps++
	s.ops = append(s.ops, "beep")
}

// Flush implements Terminal.
func (s *Script) Flush() error {
	s.record("flush")
	return nil
}

func (s *Script) record(op string) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.ops = append(s.ops, op)
}

// Ops returns the recorded operations in order.
func (s *Script) Ops() []string {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return append([]string(nil), s.ops...)
}

// ClearOps discards the recorded operations.
func (s *Script) ClearOps() {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.ops = nil
	s.writes.Reset()
}

// Output returns the concatenation of all written text.
func (s *Script) Output() string {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.writes.String()
}

// Beeps returns how many times Beep was called.
func (s *Script) Beeps() int {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.beeps
}
