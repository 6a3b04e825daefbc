package edit

// editKind identifies an undo log entry.
type editKind int

const (
	editGroupStart editKind = iota
	editInsert
	editDelete
)

// editItem is one recorded mutation, or a group-start marker.
// Insert items undo by deleting [pos, pos+len(text)); delete items
// undo by re-inserting text at pos.
type editItem struct {
	kind editKind
	pos  int
	text []rune
}

// undoLog is a linear undo history: a log of edit items partitioned
// into groups by group-start markers, with an index marking how much
// of the log is currently applied. Undo walks the index back one
// group; redo walks it forward. A new edit while the index is inside
// the log truncates the redo tail.
type undoLog struct {
	items []editItem
	index int // items[:index] are applied
	depth int // open group nesting
}

func (u *undoLog) reset() {
	u.items = u.items[:0]
	u.index = 0
	u.depth = 0
}

func (u *undoLog) beginGroup() {
	u.depth++
	if u.depth == 1 {
		u.truncate()
		u.items = append(u.items, editItem{kind: editGroupStart})
		u.index = len(u.items)
	}
}

func (u *undoLog) endGroup() {
	if u.depth == 0 {
		return
	}
	u.depth--
	if u.depth == 0 && u.index == len(u.items) && u.index > 0 &&
		u.items[u.index-1].kind == editGroupStart {
		// Empty group: drop the marker.
		u.items = u.items[:u.index-1]
		u.index = len(u.items)
	}
}

// record appends a mutation, opening an implicit one-item group when
// no explicit group is active.
func (u *undoLog) record(item editItem) {
	u.truncate()
	if u.depth == 0 {
		u.items = append(u.items, editItem{kind: editGroupStart})
	}
	u.items = append(u.items, item)
	u.index = len(u.items)
}

// truncate discards the redo tail after a fresh edit.
func (u *undoLog) truncate() {
	if u.index < len(u.items) {
		u.items = u.items[:u.index]
	}
}

func (u *undoLog) canUndo() bool {
	return u.index > 0
}

func (u *undoLog) canRedo() bool {
	return u.index < len(u.items)
}

// undo reverts the group preceding the index, replaying inverse
// operations in reverse order.
func (u *undoLog) undo(b *Buffer) bool {
	if u.index == 0 {
		return false
	}

	// Find this group's start marker.
	start := u.index - 1
	for start > 0 && u.items[start].kind != editGroupStart {
		start--
	}

	for i := u.index - 1; i > start; i-- {
		item := u.items[i]
		switch item.kind {
		case editInsert:
			b.applySplice(item.pos, item.pos+len(item.text), nil)
			b.cursor = item.pos
		case editDelete:
			b.applySplice(item.pos, item.pos, item.text)
			b.cursor = item.pos + len(item.text)
		}
	}

	u.index = start
	return true
}

// redo re-applies the group starting at the index.
func (u *undoLog) redo(b *Buffer) bool {
	if u.index >= len(u.items) {
		return false
	}

	// index always sits on a group boundary here.
	i := u.index
	if u.items[i].kind == editGroupStart {
		i++
	}
	for i < len(u.items) && u.items[i].kind != editGroupStart {
		item := u.items[i]
		switch item.kind {
		case editInsert:
			b.applySplice(item.pos, item.pos, item.text)
			b.cursor = item.pos + len(item.text)
		case editDelete:
			b.applySplice(item.pos, item.pos+len(item.text), nil)
			b.cursor = item.pos
		}
		i++
	}

	u.index = i
	return true
}
