package term

import (
	"io"
	"testing"
	"time"
)

func TestScriptReadReturnsQueuedInput(t *testing.T) {
	s := NewScript(80, 24)
	s.FeedKeys("abc")

	buf := make([]byte, 16)
	n, err := s.Read(buf, 0)
	if err != nil {
		t.Fatalf("Read error = %v", err)
	}
	if string(buf[:n]) != "abc" {
		t.Errorf("Read = %q, want %q", buf[:n], "abc")
	}
}

func TestScriptReadTimeout(t *testing.T) {
	s := NewScript(80, 24)
	buf := make([]byte, 16)

	start := time.Now()
	n, err := s.Read(buf, 20*time.Millisecond)
	if err != nil || n != 0 {
		t.Fatalf("Read = (%d, %v), want timeout (0, nil)", n, err)
	}
	if time.Since(start) < 15*time.Millisecond {
		t.Error("Read returned before the timeout elapsed")
	}
}

func TestScriptReadWakesOnFeed(t *testing.T) {
	s := NewScript(80, 24)
	go func() {
		time.Sleep(10 * time.Millisecond)
		s.FeedKeys("x")
	}()

	buf := make([]byte, 16)
	n, err := s.Read(buf, time.Second)
	if err != nil || n != 1 || buf[0] != 'x' {
		t.Fatalf("Read = (%d, %v, %q)", n, err, buf[:n])
	}
}

func TestScriptReadEOFAfterClose(t *testing.T) {
	s := NewScript(80, 24)
	s.FeedKeys("a")
	s.CloseInput()

	buf := make([]byte, 16)
	if n, _ := s.Read(buf, 0); n != 1 {
		t.Fatalf("queued input not drained before EOF")
	}
	if _, err := s.Read(buf, 0); err != io.EOF {
		t.Errorf("Read after close error = %v, want io.EOF", err)
	}
}

func TestScriptRecordsOps(t *testing.T) {
	s := NewScript(80, 24)
	s.CursorUp(2)
	s.CursorColumn(0)
	s.WriteString("hi")
	s.ClearToEnd()
	s.Beep()

	want := []string{"up(2)", "col(0)", `write("hi")`, "clear", "beep"}
	ops := s.Ops()
	if len(ops) != len(want) {
		t.Fatalf("ops = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("op %d = %q, want %q", i, ops[i], want[i])
		}
	}
	if s.Output() != "hi" {
		t.Errorf("Output = %q", s.Output())
	}
	if s.Beeps() != 1 {
		t.Errorf("Beeps = %d", s.Beeps())
	}
}
