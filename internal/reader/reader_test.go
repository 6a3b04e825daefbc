package reader

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dshills/keyline/internal/key"
	"github.com/dshills/keyline/internal/term"
)

func newTestReader(t *testing.T) (*Reader, *term.Script) {
	t.Helper()
	script := term.NewScript(80, 24)
	r := New(script, Config{EscapeTimeout: 2 * time.Millisecond})
	t.Cleanup(func() {
		script.CloseInput()
		r.Close()
	})
	return r, script
}

func TestReadKeyReturnsTypedKey(t *testing.T) {
	r, script := newTestReader(t)
	script.FeedKeys("a")

	ev, err := r.ReadKey(context.Background(), nil)
	if err != nil {
		t.Fatalf("ReadKey error = %v", err)
	}
	if ev.Rune != 'a' {
		t.Errorf("ReadKey = %v, want 'a'", ev)
	}
}

func TestReadKeyOneKeyPerCall(t *testing.T) {
	r, script := newTestReader(t)
	script.FeedKeys("xyz")

	for _, want := range "xyz" {
		ev, err := r.ReadKey(context.Background(), nil)
		if err != nil {
			t.Fatalf("ReadKey error = %v", err)
		}
		if ev.Rune != want {
			t.Errorf("ReadKey = %v, want %q", ev, want)
		}
	}
}

func TestReadKeyEscapeSequence(t *testing.T) {
	r, script := newTestReader(t)
	script.FeedKeys("\x1b[A")

	ev, err := r.ReadKey(context.Background(), nil)
	if err != nil {
		t.Fatalf("ReadKey error = %v", err)
	}
	if ev.Key != key.KeyUp {
		t.Errorf("ReadKey = %v, want Up", ev)
	}
}

func TestReadKeyLoneEscapeResolvesByTimeout(t *testing.T) {
	r, script := newTestReader(t)
	script.FeedKeys("\x1b")

	ev, err := r.ReadKey(context.Background(), nil)
	if err != nil {
		t.Fatalf("ReadKey error = %v", err)
	}
	if ev.Key != key.KeyEscape {
		t.Errorf("ReadKey = %v, want Escape", ev)
	}
}

func TestReadKeyCancellation(t *testing.T) {
	r, _ := newTestReader(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := r.ReadKey(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ReadKey error = %v, want context.Canceled", err)
	}
}

func TestReadKeyClosing(t *testing.T) {
	script := term.NewScript(80, 24)
	r := New(script, Config{})

	errCh := make(chan error, 1)
	go func() {
		_, err := r.ReadKey(context.Background(), nil)
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	go script.CloseInput()
	r.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrClosing) {
			t.Errorf("ReadKey error = %v, want ErrClosing", err)
		}
	case <-time.After(time.Second):
		t.Fatal("ReadKey did not unwind on close")
	}
}

func TestReadKeyIdleCallback(t *testing.T) {
	script := term.NewScript(80, 24)
	r := New(script, Config{IdleTimeout: 10 * time.Millisecond})
	defer func() {
		script.CloseInput()
		r.Close()
	}()

	idles := 0
	go func() {
		time.Sleep(50 * time.Millisecond)
		script.FeedKeys("k")
	}()

	ev, err := r.ReadKey(context.Background(), func() { idles++ })
	if err != nil {
		t.Fatalf("ReadKey error = %v", err)
	}
	if ev.Rune != 'k' {
		t.Errorf("ReadKey = %v, want 'k'", ev)
	}
	if idles == 0 {
		t.Error("idle callback never ran")
	}
}

func TestBurstPreservesCountAndOrder(t *testing.T) {
	// A generous escape timeout keeps a slow feeder goroutine from
	// splitting an escape sequence into separate keys.
	script := term.NewScript(80, 24)
	r := New(script, Config{EscapeTimeout: 100 * time.Millisecond})
	defer func() {
		script.CloseInput()
		r.Close()
	}()

	// Feed well beyond one drain pass in many chunks, interleaving
	// escape sequences with plain characters.
	const rounds = 200
	go func() {
		for i := 0; i < rounds; i++ {
			script.FeedKeys(fmt.Sprintf("a%db", i%10))
			script.FeedKeys("\x1b[C")
		}
	}()

	var got []key.Event
	for len(got) < rounds*4 {
		ev, err := r.ReadKey(context.Background(), nil)
		if err != nil {
			t.Fatalf("ReadKey error = %v after %d keys", err, len(got))
		}
		got = append(got, ev)
	}

	for i := 0; i < rounds; i++ {
		batch := got[i*4 : i*4+4]
		if batch[0].Rune != 'a' {
			t.Fatalf("round %d key 0 = %v, want 'a'", i, batch[0])
		}
		if batch[1].Rune != rune('0'+i%10) {
			t.Fatalf("round %d key 1 = %v, want %q", i, batch[1], rune('0'+i%10))
		}
		if batch[2].Rune != 'b' {
			t.Fatalf("round %d key 2 = %v, want 'b'", i, batch[2])
		}
		if batch[3].Key != key.KeyRight {
			t.Fatalf("round %d key 3 = %v, want Right", i, batch[3])
		}
	}
}

func TestQueuedKeysSkipRequestSignal(t *testing.T) {
	r, script := newTestReader(t)
	script.FeedKeys("ab")

	if _, err := r.ReadKey(context.Background(), nil); err != nil {
		t.Fatal(err)
	}

	// Give the reader a moment to finish its drain pass, then the
	// second key must come straight from the queue.
	deadline := time.Now().Add(time.Second)
	for r.Queued() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if r.Queued() == 0 {
		t.Fatal("second key never queued")
	}

	ev, err := r.ReadKey(context.Background(), nil)
	if err != nil {
		t.Fatalf("ReadKey error = %v", err)
	}
	if ev.Rune != 'b' {
		t.Errorf("ReadKey = %v, want 'b'", ev)
	}
}
