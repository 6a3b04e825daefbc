// Package edit owns the current line's text, cursor, mark, undo log,
// and kill ring.
//
// All mutation funnels through a single splice path that keeps the
// cursor and mark consistent and records inverse operations for undo.
// The package has no locking: only the consumer goroutine touches it.
package edit

// Buffer is the editable current line.
type Buffer struct {
	text     []rune
	cursor   int
	mark     int
	accepted bool
	undo     undoLog
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Text returns the buffer contents.
func (b *Buffer) Text() string {
	return string(b.text)
}

// Runes returns a copy of the buffer contents as runes.
func (b *Buffer) Runes() []rune {
	out := make([]rune, len(b.text))
	copy(out, b.text)
	return out
}

// Len returns the buffer length in runes.
func (b *Buffer) Len() int {
	return len(b.text)
}

// Cursor returns the cursor offset in runes.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// SetCursor moves the cursor, clamping to the valid range.
func (b *Buffer) SetCursor(pos int) {
	b.cursor = b.clamp(pos)
}

// Mark returns the mark offset.
func (b *Buffer) Mark() int {
	return b.mark
}

// SetMark places the mark, clamping to the valid range.
func (b *Buffer) SetMark(pos int) {
	b.mark = b.clamp(pos)
}

// RuneAt returns the rune at pos, or 0 when out of range.
func (b *Buffer) RuneAt(pos int) rune {
	if pos < 0 || pos >= len(b.text) {
		return 0
	}
	return b.text[pos]
}

// Slice returns the text between start and end.
func (b *Buffer) Slice(start, end int) string {
	start, end = b.clamp(start), b.clamp(end)
	if start > end {
		start, end = end, start
	}
	return string(b.text[start:end])
}

// Accept marks the line as accepted.
func (b *Buffer) Accept() {
	b.accepted = true
}

// IsAccepted reports whether the line has been accepted.
func (b *Buffer) IsAccepted() bool {
	return b.accepted
}

// Reset clears the buffer for a new line: text emptied, offsets
// zeroed, undo log discarded, accepted flag cleared.
func (b *Buffer) Reset() {
	b.text = b.text[:0]
	b.cursor = 0
	b.mark = 0
	b.accepted = false
	b.undo.reset()
}

// Restore replaces the whole buffer contents and cursor, discarding
// the undo log: recorded positions would be meaningless against the
// new text. Used for crash recovery and history recall.
func (b *Buffer) Restore(text string, cursor int) {
	b.text = []rune(text)
	b.cursor = b.clamp(cursor)
	b.mark = 0
	b.undo.reset()
}

// Insert inserts text at the cursor and advances it.
func (b *Buffer) Insert(s string) {
	if s == "" {
		return
	}
	r := []rune(s)
	pos := b.cursor
	b.splice(pos, pos, r)
	// adjustOffset leaves offsets at the splice start alone, which is
	// right for the mark but not for the typing position.
	b.cursor = pos + len(r)
}

// InsertAt inserts text at an arbitrary position.
func (b *Buffer) InsertAt(pos int, s string) {
	if s == "" {
		return
	}
	pos = b.clamp(pos)
	b.splice(pos, pos, []rune(s))
}

// Delete removes [start, end) and returns the removed text.
func (b *Buffer) Delete(start, end int) string {
	start, end = b.clamp(start), b.clamp(end)
	if start > end {
		start, end = end, start
	}
	if start == end {
		return ""
	}
	removed := string(b.text[start:end])
	b.splice(start, end, nil)
	return removed
}

// Replace substitutes [start, end) with s.
func (b *Buffer) Replace(start, end int, s string) {
	start, end = b.clamp(start), b.clamp(end)
	if start > end {
		start, end = end, start
	}
	b.splice(start, end, []rune(s))
}

// splice is the single mutation path: apply the change, adjust cursor
// and mark, and record the inverse operations for undo.
func (b *Buffer) splice(start, end int, insert []rune) {
	removed := b.text[start:end]

	// A replace is a delete plus an insert; they must share a group
	// so one undo reverts both.
	b.undo.beginGroup()
	if len(removed) > 0 {
		b.undo.record(editItem{kind: editDelete, pos: start, text: append([]rune(nil), removed...)})
	}
	if len(insert) > 0 {
		b.undo.record(editItem{kind: editInsert, pos: start, text: append([]rune(nil), insert...)})
	}
	b.undo.endGroup()

	b.applySplice(start, end, insert)
}

// applySplice performs the text change and offset adjustment without
// touching the undo log. Undo/redo replay goes through here.
func (b *Buffer) applySplice(start, end int, insert []rune) {
	tail := append([]rune(nil), b.text[end:]...)
	b.text = append(b.text[:start], insert...)
	b.text = append(b.text, tail...)

	b.cursor = adjustOffset(b.cursor, start, end, len(insert))
	b.mark = adjustOffset(b.mark, start, end, len(insert))
}

// adjustOffset maps an offset across a splice of [start, end) with
// inserted length n.
func adjustOffset(off, start, end, n int) int {
	switch {
	case off <= start:
		return off
	case off >= end:
		return off - (end - start) + n
	default:
		return start + n
	}
}

func (b *Buffer) clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(b.text) {
		return len(b.text)
	}
	return pos
}

// BeginUndoGroup opens an undo transaction. Edits until the matching
// EndUndoGroup undo as one unit. Calls nest.
func (b *Buffer) BeginUndoGroup() {
	b.undo.beginGroup()
}

// EndUndoGroup closes the innermost undo transaction.
func (b *Buffer) EndUndoGroup() {
	b.undo.endGroup()
}

// CanUndo reports whether an undo group is available.
func (b *Buffer) CanUndo() bool {
	return b.undo.canUndo()
}

// CanRedo reports whether a redo group is available.
func (b *Buffer) CanRedo() bool {
	return b.undo.canRedo()
}

// Undo reverts the most recent undo group. Returns false when there
// is nothing to undo.
func (b *Buffer) Undo() bool {
	return b.undo.undo(b)
}

// Redo re-applies the most recently undone group. Returns false when
// there is nothing to redo.
func (b *Buffer) Redo() bool {
	return b.undo.redo(b)
}
