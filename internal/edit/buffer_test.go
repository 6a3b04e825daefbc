package edit

import "testing"

func TestInsertAdvancesCursor(t *testing.T) {
	b := NewBuffer()
	b.Insert("hello")
	if b.Text() != "hello" {
		t.Errorf("Text = %q", b.Text())
	}
	if b.Cursor() != 5 {
		t.Errorf("Cursor = %d, want 5", b.Cursor())
	}
}

func TestInsertMidLine(t *testing.T) {
	b := NewBuffer()
	b.Insert("held")
	b.SetCursor(3)
	b.Insert("lo wor")
	if b.Text() != "hello word" {
		t.Errorf("Text = %q", b.Text())
	}
	if b.Cursor() != 9 {
		t.Errorf("Cursor = %d, want 9", b.Cursor())
	}
}

func TestDeleteReturnsRemoved(t *testing.T) {
	b := NewBuffer()
	b.Insert("hello world")
	got := b.Delete(5, 11)
	if got != " world" {
		t.Errorf("Delete = %q", got)
	}
	if b.Text() != "hello" {
		t.Errorf("Text = %q", b.Text())
	}
	if b.Cursor() != 5 {
		t.Errorf("Cursor = %d, want 5", b.Cursor())
	}
}

func TestDeleteReversedRange(t *testing.T) {
	b := NewBuffer()
	b.Insert("abcdef")
	got := b.Delete(4, 2)
	if got != "cd" {
		t.Errorf("Delete = %q, want cd", got)
	}
	if b.Text() != "abef" {
		t.Errorf("Text = %q", b.Text())
	}
}

func TestReplace(t *testing.T) {
	b := NewBuffer()
	b.Insert("hello world")
	b.Replace(0, 5, "goodbye")
	if b.Text() != "goodbye world" {
		t.Errorf("Text = %q", b.Text())
	}
}

func TestMarkFollowsEdits(t *testing.T) {
	b := NewBuffer()
	b.Insert("hello world")
	b.SetMark(6) // before "world"
	b.Delete(0, 6)
	if b.Mark() != 0 {
		t.Errorf("Mark = %d, want 0", b.Mark())
	}

	b.Reset()
	b.Insert("hello")
	b.SetMark(5)
	b.InsertAt(0, "say ")
	if b.Mark() != 9 {
		t.Errorf("Mark = %d, want 9", b.Mark())
	}
}

func TestUnicodeCursorIsRuneBased(t *testing.T) {
	b := NewBuffer()
	b.Insert("héllo")
	if b.Len() != 5 {
		t.Errorf("Len = %d, want 5", b.Len())
	}
	b.SetCursor(2)
	b.Insert("x")
	if b.Text() != "héxllo" {
		t.Errorf("Text = %q", b.Text())
	}
}

func TestResetClearsEverything(t *testing.T) {
	b := NewBuffer()
	b.Insert("something")
	b.SetMark(3)
	b.Accept()
	b.Reset()

	if b.Text() != "" || b.Cursor() != 0 || b.Mark() != 0 || b.IsAccepted() {
		t.Errorf("Reset left state: %q cursor=%d mark=%d accepted=%v",
			b.Text(), b.Cursor(), b.Mark(), b.IsAccepted())
	}
	if b.CanUndo() {
		t.Error("CanUndo after Reset")
	}
}

func TestUndoRoundTrip(t *testing.T) {
	// Undo repeated until exhausted restores the initial empty
	// buffer; redo repeated restores the final state.
	b := NewBuffer()
	b.Insert("hello")
	b.Insert(" world")
	b.Delete(0, 5)
	b.Insert("bye")

	want := b.Text()

	steps := 0
	for b.Undo() {
		steps++
		if steps > 100 {
			t.Fatal("undo did not terminate")
		}
	}
	if b.Text() != "" {
		t.Fatalf("after full undo Text = %q, want empty", b.Text())
	}

	for b.Redo() {
	}
	if b.Text() != want {
		t.Errorf("after full redo Text = %q, want %q", b.Text(), want)
	}
}

func TestUndoGroupRevertsAsUnit(t *testing.T) {
	b := NewBuffer()
	b.Insert("base ")

	b.BeginUndoGroup()
	b.Insert("one ")
	b.Insert("two")
	b.EndUndoGroup()

	if !b.Undo() {
		t.Fatal("Undo failed")
	}
	if b.Text() != "base " {
		t.Errorf("Text = %q, want %q", b.Text(), "base ")
	}

	if !b.Redo() {
		t.Fatal("Redo failed")
	}
	if b.Text() != "base one two" {
		t.Errorf("Text = %q, want %q", b.Text(), "base one two")
	}
}

func TestReplaceUndoesAsOneGroup(t *testing.T) {
	b := NewBuffer()
	b.Insert("hello world")
	b.Replace(0, 5, "goodbye")

	if !b.Undo() {
		t.Fatal("Undo failed")
	}
	if b.Text() != "hello world" {
		t.Errorf("Text = %q, want %q", b.Text(), "hello world")
	}
}

func TestNewEditTruncatesRedoTail(t *testing.T) {
	b := NewBuffer()
	b.Insert("one")
	b.Insert(" two")
	b.Undo()

	b.Insert(" three")
	if b.Redo() {
		t.Error("Redo succeeded after a fresh edit")
	}
	if b.Text() != "one three" {
		t.Errorf("Text = %q, want %q", b.Text(), "one three")
	}
}

func TestUndoRestoresCursor(t *testing.T) {
	b := NewBuffer()
	b.Insert("hello")
	b.SetCursor(0)
	b.Insert("x")
	b.Undo()
	if b.Cursor() != 0 {
		t.Errorf("Cursor = %d, want 0", b.Cursor())
	}
	if b.Text() != "hello" {
		t.Errorf("Text = %q", b.Text())
	}
}

func TestUndoEmptyBuffer(t *testing.T) {
	b := NewBuffer()
	if b.Undo() {
		t.Error("Undo on empty log succeeded")
	}
	if b.Redo() {
		t.Error("Redo on empty log succeeded")
	}
}

func TestRestoreBypassesUndo(t *testing.T) {
	b := NewBuffer()
	b.Restore("recalled line", 8)
	if b.Text() != "recalled line" || b.Cursor() != 8 {
		t.Errorf("Restore = %q cursor=%d", b.Text(), b.Cursor())
	}
	if b.CanUndo() {
		t.Error("Restore recorded an undo entry")
	}
}
