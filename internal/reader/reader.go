// Package reader runs the background key-reading goroutine.
//
// A Reader owns the raw input side of the engine: it pulls bytes from
// the terminal on its own goroutine, decodes them into logical key
// events, and hands them to the consuming goroutine through a bounded
// queue. Coordination follows a strict one-outstanding-request
// handoff: the consumer signals read-requested, the reader drains all
// currently available input (within a time budget) and signals
// key-ready, and a separate closing signal unwinds both sides at
// shutdown.
package reader

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dshills/keyline/internal/key"
	"github.com/dshills/keyline/internal/term"
)

// ErrClosing is returned by ReadKey when the reader has been shut
// down. Callers must treat it as "stop entirely".
var ErrClosing = errors.New("key reader closing")

// Default timing parameters.
const (
	// DefaultEscapeTimeout is how long a lone ESC may wait for the
	// rest of an escape sequence before being treated as a literal
	// Escape key.
	DefaultEscapeTimeout = 5 * time.Millisecond

	// DefaultIdleTimeout bounds the consumer's wait so periodic idle
	// work can run between keystrokes.
	DefaultIdleTimeout = 300 * time.Millisecond

	// pollSlice is the reader's blocking-read granularity. The reader
	// re-checks the closing signal between slices.
	pollSlice = 50 * time.Millisecond

	// passBudget bounds one drain pass so a key flood cannot starve
	// the consumer.
	passBudget = 20 * time.Millisecond

	// queueDepth is the key queue capacity. The reader blocks, not
	// drops, if the consumer falls this far behind.
	queueDepth = 1024
)

// Config adjusts Reader timing. Zero values select defaults.
type Config struct {
	EscapeTimeout time.Duration
	IdleTimeout   time.Duration
}

// Reader decodes terminal input on a dedicated goroutine.
type Reader struct {
	terminal term.Terminal
	decoder  *key.Decoder

	keys     chan key.Event
	requests chan struct{}
	closing  chan struct{}
	done     chan struct{}

	closeOnce sync.Once

	escapeTimeout time.Duration
	idleTimeout   time.Duration
}

// New creates a reader and starts its goroutine.
func New(t term.Terminal, cfg Config) *Reader {
	r := &Reader{
		terminal:      t,
		decoder:       key.NewDecoder(),
		keys:          make(chan key.Event, queueDepth),
		requests:      make(chan struct{}, 1),
		closing:       make(chan struct{}),
		done:          make(chan struct{}),
		escapeTimeout: cfg.EscapeTimeout,
		idleTimeout:   cfg.IdleTimeout,
	}
	if r.escapeTimeout <= 0 {
		r.escapeTimeout = DefaultEscapeTimeout
	}
	if r.idleTimeout <= 0 {
		r.idleTimeout = DefaultIdleTimeout
	}

	go r.run()
	return r
}

// ReadKey returns the next key event. It blocks until a key arrives,
// the context is cancelled, or the reader is closed. While waiting it
// invokes onIdle (if non-nil) each time the idle timeout elapses.
//
// Exactly one key is returned per call. If keys are already queued,
// the reader goroutine is not re-signaled.
func (r *Reader) ReadKey(ctx context.Context, onIdle func()) (key.Event, error) {
	for {
		// Queued keys short-circuit the request handshake.
		select {
		case ev := <-r.keys:
			return ev, nil
		default:
		}

		select {
		case <-r.closing:
			return key.Event{}, ErrClosing
		default:
		}

		// Signal read-requested; at most one request is outstanding.
		select {
		case r.requests <- struct{}{}:
		default:
		}

		timer := time.NewTimer(r.idleTimeout)
		select {
		case ev := <-r.keys:
			timer.Stop()
			return ev, nil
		case <-ctx.Done():
			timer.Stop()
			return key.Event{}, ctx.Err()
		case <-r.closing:
			timer.Stop()
			return key.Event{}, ErrClosing
		case <-timer.C:
			if onIdle != nil {
				onIdle()
			}
		}
	}
}

// Queued returns the number of decoded keys waiting to be read.
func (r *Reader) Queued() int {
	return len(r.keys)
}

// Close signals shutdown and waits for the reader goroutine to exit.
// Any blocked ReadKey unwinds with ErrClosing.
func (r *Reader) Close() {
	r.closeOnce.Do(func() {
		close(r.closing)
	})
	<-r.done
}

// run is the reader goroutine: wait for read-requested or closing,
// then drain available input through the decoder into the queue.
func (r *Reader) run() {
	defer close(r.done)

	for {
		select {
		case <-r.requests:
		case <-r.closing:
			return
		}

		if !r.fill() {
			return
		}
	}
}

// fill blocks until at least one event is decoded, then drains any
// burst input within the pass budget. Returns false on shutdown.
func (r *Reader) fill() bool {
	buf := make([]byte, 256)

	for {
		select {
		case <-r.closing:
			return false
		default:
		}

		n, err := r.terminal.Read(buf, pollSlice)
		if err != nil {
			// Terminal gone: treat as hard shutdown.
			r.closeOnce.Do(func() { close(r.closing) })
			return false
		}
		if n == 0 {
			continue
		}

		got := r.enqueue(r.decoder.Feed(buf[:n]))
		got = r.resolvePending(buf) || got
		if !got {
			continue
		}

		// Key-ready. Drain whatever else is immediately available,
		// bounded so a flood cannot starve the consumer.
		deadline := time.Now().Add(passBudget)
		for time.Now().Before(deadline) {
			n, err := r.terminal.Read(buf, 0)
			if err != nil || n == 0 {
				break
			}
			r.enqueue(r.decoder.Feed(buf[:n]))
			r.resolvePending(buf)
		}
		return true
	}
}

// resolvePending settles an ambiguous escape prefix: wait briefly for
// the rest of the sequence, and if nothing arrives reinterpret the
// prefix as a standalone key. Returns true if any event was queued.
func (r *Reader) resolvePending(buf []byte) bool {
	got := false
	for r.decoder.Pending() {
		n, err := r.terminal.Read(buf, r.escapeTimeout)
		if err != nil {
			r.closeOnce.Do(func() { close(r.closing) })
			return got
		}
		if n == 0 {
			if r.decoder.InEscape() {
				got = r.enqueue(r.decoder.FlushEscape()) || got
			}
			// A partial UTF-8 rune just stays pending until the
			// terminal sends the rest.
			break
		}
		got = r.enqueue(r.decoder.Feed(buf[:n])) || got
	}
	return got
}

// enqueue pushes events to the key queue in arrival order.
func (r *Reader) enqueue(events []key.Event) bool {
	for _, ev := range events {
		select {
		case r.keys <- ev:
		case <-r.closing:
			return len(events) > 0
		}
	}
	return len(events) > 0
}
