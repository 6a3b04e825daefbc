package history

import (
	"strings"
	"time"
)

// DefaultCapacity bounds the log when no capacity is configured.
const DefaultCapacity = 1000

// Item is one accepted line with edit metadata. Only the text is
// persisted; duration and timestamp exist for the current session.
type Item struct {
	Text         string
	EditDuration time.Duration
	When         time.Time
}

// SavePolicy controls when the log reaches the durable file.
type SavePolicy int

const (
	// SaveAtExit flushes once, when the log is closed.
	SaveAtExit SavePolicy = iota
	// SaveIncremental appends each accepted line as it arrives.
	SaveIncremental
	// SaveNever keeps the log memory-only.
	SaveNever
)

// Log is the ordered, capacity-bounded history of accepted lines.
// It is owned by the consumer goroutine and does no locking; only the
// file operations synchronize, across processes, via flock.
type Log struct {
	items    []Item
	capacity int
	path     string
	policy   SavePolicy

	// pending holds items accepted this session and not yet written.
	pending []Item

	// Recall session state. cursor == len(items) means the user is on
	// the in-progress line (or its snapshot).
	recalling bool
	cursor    int
	snapshot  string
	dedup     bool
}

// Option configures a Log.
type Option func(*Log)

// WithCapacity bounds the number of retained entries.
func WithCapacity(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// WithFile sets the durable file path and save policy. An empty path
// forces SaveNever.
func WithFile(path string, policy SavePolicy) Option {
	return func(l *Log) {
		l.path = path
		l.policy = policy
	}
}

// WithRecallDedup suppresses duplicate texts while navigating a
// recall session.
func WithRecallDedup(on bool) Option {
	return func(l *Log) {
		l.dedup = on
	}
}

// New creates a Log and, when a file is configured, loads it. A
// missing or malformed file yields an empty log, not an error.
func New(opts ...Option) *Log {
	l := &Log{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(l)
	}
	if l.path == "" {
		l.policy = SaveNever
	}
	// The save policy governs writes only; an existing file is always
	// read so prior sessions stay recallable.
	if l.path != "" {
		if items, err := readFile(l.path); err == nil {
			l.items = items
			l.trim()
		}
	}
	l.cursor = len(l.items)
	return l
}

// Len returns the number of stored entries.
func (l *Log) Len() int {
	return len(l.items)
}

// At returns the item at index i, oldest first.
func (l *Log) At(i int) (Item, bool) {
	if i < 0 || i >= len(l.items) {
		return Item{}, false
	}
	return l.items[i], true
}

// Items returns a copy of all entries, oldest first.
func (l *Log) Items() []Item {
	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// Add appends an accepted line. Empty lines are dropped. At capacity
// the oldest entry is evicted. Under SaveIncremental the line goes to
// the file immediately; write errors are swallowed (the in-memory log
// is already current).
func (l *Log) Add(text string, editDuration time.Duration) {
	if text == "" {
		return
	}
	item := Item{Text: text, EditDuration: editDuration, When: time.Now()}
	l.items = append(l.items, item)
	l.pending = append(l.pending, item)
	l.trim()
	l.cursor = len(l.items)

	if l.policy == SaveIncremental && l.path != "" {
		if err := appendFile(l.path, l.pending); err == nil {
			l.pending = l.pending[:0]
		}
	}
}

func (l *Log) trim() {
	if over := len(l.items) - l.capacity; over > 0 {
		l.items = append(l.items[:0], l.items[over:]...)
	}
}

// StartRecall opens a navigation session, snapshotting the
// in-progress line so Next past the newest entry restores it.
// Starting while a session is open just refreshes the snapshot
// position when the user is still on the in-progress line.
func (l *Log) StartRecall(current string) {
	if l.recalling {
		if l.cursor == len(l.items) {
			l.snapshot = current
		}
		return
	}
	l.recalling = true
	l.snapshot = current
	l.cursor = len(l.items)
}

// Recalling reports whether a navigation session is open.
func (l *Log) Recalling() bool {
	return l.recalling
}

// EndRecall closes the navigation session.
func (l *Log) EndRecall() {
	l.recalling = false
	l.cursor = len(l.items)
	l.snapshot = ""
}

// Prev steps to the next-older entry whose text starts with prefix,
// returning its text. Returns false at the oldest matching entry.
// Requires an open recall session.
func (l *Log) Prev(prefix string) (string, bool) {
	if !l.recalling {
		return "", false
	}
	seen := l.sessionSeen()
	for i := l.cursor - 1; i >= 0; i-- {
		if !strings.HasPrefix(l.items[i].Text, prefix) {
			continue
		}
		if l.dedup && seen[l.items[i].Text] {
			continue
		}
		l.cursor = i
		return l.items[i].Text, true
	}
	return "", false
}

// Next steps to the next-newer entry whose text starts with prefix.
// Stepping past the newest entry returns the in-progress snapshot.
func (l *Log) Next(prefix string) (string, bool) {
	if !l.recalling {
		return "", false
	}
	for i := l.cursor + 1; i < len(l.items); i++ {
		if !strings.HasPrefix(l.items[i].Text, prefix) {
			continue
		}
		if l.dedup && l.dupAhead(i) {
			continue
		}
		l.cursor = i
		return l.items[i].Text, true
	}
	if l.cursor < len(l.items) {
		l.cursor = len(l.items)
		return l.snapshot, true
	}
	return "", false
}

// sessionSeen collects texts between the cursor and the newest entry,
// the ones already offered this session walking backward.
func (l *Log) sessionSeen() map[string]bool {
	if !l.dedup {
		return nil
	}
	seen := make(map[string]bool)
	for i := l.cursor; i < len(l.items); i++ {
		seen[l.items[i].Text] = true
	}
	return seen
}

// dupAhead reports whether a newer entry repeats items[i].Text, in
// which case forward navigation offers only the newest occurrence.
func (l *Log) dupAhead(i int) bool {
	for j := i + 1; j < len(l.items); j++ {
		if l.items[j].Text == l.items[i].Text {
			return true
		}
	}
	return false
}

// SearchBackward finds the newest entry strictly older than before
// whose text contains query, returning its index. Pass len(items) (or
// Len()) to search from the newest. An empty query matches nothing.
func (l *Log) SearchBackward(query string, before int) (int, bool) {
	if query == "" {
		return 0, false
	}
	if before > len(l.items) {
		before = len(l.items)
	}
	for i := before - 1; i >= 0; i-- {
		if strings.Contains(l.items[i].Text, query) {
			return i, true
		}
	}
	return 0, false
}

// SearchForward finds the oldest entry strictly newer than after
// whose text contains query.
func (l *Log) SearchForward(query string, after int) (int, bool) {
	if query == "" {
		return 0, false
	}
	if after < -1 {
		after = -1
	}
	for i := after + 1; i < len(l.items); i++ {
		if strings.Contains(l.items[i].Text, query) {
			return i, true
		}
	}
	return 0, false
}

// Flush writes pending entries to the durable file per the save
// policy. Called on close; best-effort on abnormal shutdown.
func (l *Log) Flush() error {
	if l.policy == SaveNever || l.path == "" || len(l.pending) == 0 {
		return nil
	}
	if err := mergeFile(l.path, l.pending, l.capacity); err != nil {
		return err
	}
	l.pending = l.pending[:0]
	return nil
}

// Close flushes when the policy requires it. Under SaveIncremental
// this retries entries whose per-line append failed.
func (l *Log) Close() error {
	if l.policy == SaveAtExit || l.policy == SaveIncremental {
		return l.Flush()
	}
	return nil
}
