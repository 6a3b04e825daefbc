package key

import "strings"

// DefaultLogCapacity is the number of recent key events retained for
// diagnostics.
const DefaultLogCapacity = 200

// Log is a bounded rolling log of recent key events. It is used to
// produce a repro transcript when a bound action fails.
// Log is not safe for concurrent use; it is only touched by the
// consumer goroutine.
type Log struct {
	events []Event
	start  int
	count  int
}

// NewLog creates a log retaining at most capacity events.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &Log{
		events: make([]Event, capacity),
	}
}

// Append records an event, evicting the oldest when full.
func (l *Log) Append(e Event) {
	idx := (l.start + l.count) % len(l.events)
	l.events[idx] = e
	if l.count < len(l.events) {
		l.count++
	} else {
		l.start = (l.start + 1) % len(l.events)
	}
}

// Len returns the number of retained events.
func (l *Log) Len() int {
	return l.count
}

// Events returns the retained events, oldest first.
func (l *Log) Events() []Event {
	out := make([]Event, l.count)
	for i := 0; i < l.count; i++ {
		out[i] = l.events[(l.start+i)%len(l.events)]
	}
	return out
}

// Clear discards all retained events.
func (l *Log) Clear() {
	l.start = 0
	l.count = 0
}

// Transcript renders the retained events as a single line, oldest
// first, truncated from the front to at most maxLen characters.
func (l *Log) Transcript(maxLen int) string {
	parts := make([]string, 0, l.count)
	for _, e := range l.Events() {
		s := e.String()
		if len(s) > 1 {
			s = "<" + s + ">"
		}
		parts = append(parts, s)
	}
	out := strings.Join(parts, " ")
	if maxLen > 0 && len(out) > maxLen {
		out = "..." + out[len(out)-maxLen:]
	}
	return out
}
