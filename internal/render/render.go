// Package render writes the prompt, buffer, and transient status line
// to the terminal incrementally.
//
// The renderer keeps the rows it last wrote and diffs the desired
// content against them, emitting only the cursor moves and character
// writes needed to reconcile the two. A terminal resize between calls
// invalidates the saved state and forces a full repaint. Rendering
// happens only on the consumer goroutine, never concurrently with raw
// reads.
package render

import (
	"github.com/dshills/keyline/internal/term"
)

const (
	styleText int8 = iota
	stylePrompt
	styleStatus
)

// Renderer reconciles desired line content with what is on screen.
type Renderer struct {
	t term.Terminal

	// Last written content. rows are wrapped terminal rows, curRow is
	// the region row the hardware cursor sits on.
	rows   [][]cell
	curRow int
	cRow   int
	cCol   int
	width  int
	height int

	promptStyle term.Style
	statusStyle term.Style
}

// New creates a renderer for the terminal.
func New(t term.Terminal) *Renderer {
	w, h := t.Size()
	return &Renderer{
		t:           t,
		width:       w,
		height:      h,
		promptStyle: term.Style{FG: term.ColorDefault, BG: term.ColorDefault, Bold: true},
		statusStyle: term.Style{FG: term.ColorDefault, BG: term.ColorDefault},
	}
}

// SetPromptStyle sets the style applied to prompt cells.
func (r *Renderer) SetPromptStyle(s term.Style) {
	r.promptStyle = s
}

// SetStatusStyle sets the style applied to the status line.
func (r *Renderer) SetStatusStyle(s term.Style) {
	r.statusStyle = s
}

// Render brings the screen in line with the given prompt, buffer text,
// cursor (a rune offset into text), and status line. Idempotent: a
// second call with identical arguments writes nothing.
func (r *Renderer) Render(prompt, text string, cursor int, status string) error {
	w, h := r.t.Size()
	repaint := false
	if w != r.width || h != r.height {
		r.width, r.height = w, h
		repaint = true
	}

	rows, cRow, cCol := layout(prompt, text, cursor, status, r.width)

	if repaint {
		if err := r.repaint(rows); err != nil {
			return err
		}
	} else {
		if err := r.reconcile(rows); err != nil {
			return err
		}
	}

	if err := r.moveTo(cRow, cCol); err != nil {
		return err
	}
	r.rows = rows
	r.cRow, r.cCol = cRow, cCol
	return r.t.Flush()
}

// Invalidate discards the saved render state so the next Render
// repaints fully. Used after foreign output lands on the screen.
func (r *Renderer) Invalidate() {
	r.width = -1
}

// Finish moves the cursor past the rendered content, emits a newline,
// and resets state so the next Render starts on a fresh row.
func (r *Renderer) Finish() error {
	last := len(r.rows) - 1
	if last < 0 {
		last = 0
	}
	if err := r.moveTo(last, 0); err != nil {
		return err
	}
	if err := r.t.WriteString("\r\n"); err != nil {
		return err
	}
	r.rows = nil
	r.curRow = 0
	r.cRow, r.cCol = 0, 0
	return r.t.Flush()
}

// Clear erases the rendered region and resets state, leaving the
// cursor at the region origin.
func (r *Renderer) Clear() error {
	for i := len(r.rows) - 1; i >= 0; i-- {
		if err := r.moveTo(i, 0); err != nil {
			return err
		}
		r.t.ClearToEnd()
	}
	if err := r.moveTo(0, 0); err != nil {
		return err
	}
	r.rows = nil
	r.cRow, r.cCol = 0, 0
	return r.t.Flush()
}

// repaint rewrites every row, clearing each to the edge first.
func (r *Renderer) repaint(rows [][]cell) error {
	old := len(r.rows)
	n := len(rows)
	if old > n {
		n = old
	}
	for i := 0; i < n; i++ {
		if err := r.moveTo(i, 0); err != nil {
			return err
		}
		r.t.ClearToEnd()
		if i < len(rows) {
			if err := r.writeCells(rows[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// reconcile diffs desired rows against the previous ones, rewriting
// each changed row from its first differing cell.
func (r *Renderer) reconcile(rows [][]cell) error {
	for i, row := range rows {
		var prev []cell
		if i < len(r.rows) {
			prev = r.rows[i]
		}
		from, col := firstDiff(prev, row)
		if from < 0 {
			continue
		}
		if err := r.moveTo(i, col); err != nil {
			return err
		}
		if err := r.writeCells(row[from:]); err != nil {
			return err
		}
		if rowWidth(prev) > rowWidth(row) {
			r.t.ClearToEnd()
		}
	}
	for i := len(rows); i < len(r.rows); i++ {
		if err := r.moveTo(i, 0); err != nil {
			return err
		}
		r.t.ClearToEnd()
	}
	return nil
}

// firstDiff returns the index of the first cell where the rows differ
// and the display column it starts at, or -1 when equal.
func firstDiff(prev, next []cell) (int, int) {
	col := 0
	for i, c := range next {
		if i >= len(prev) || prev[i] != c {
			return i, col
		}
		col += c.w
	}
	if len(prev) > len(next) {
		return len(next), col
	}
	return -1, 0
}

func rowWidth(row []cell) int {
	w := 0
	for _, c := range row {
		w += c.w
	}
	return w
}

// writeCells emits a run of cells, switching styles at boundaries.
func (r *Renderer) writeCells(cells []cell) error {
	i := 0
	for i < len(cells) {
		style := cells[i].style
		j := i
		var buf []byte
		for j < len(cells) && cells[j].style == style {
			buf = append(buf, cells[j].s...)
			j++
		}
		switch style {
		case stylePrompt:
			r.t.SetStyle(r.promptStyle)
		case styleStatus:
			r.t.SetStyle(r.statusStyle)
		}
		if err := r.t.WriteString(string(buf)); err != nil {
			return err
		}
		if style != styleText {
			r.t.ResetStyle()
		}
		i = j
	}
	return nil
}

// moveTo positions the hardware cursor at a region row and column.
func (r *Renderer) moveTo(row, col int) error {
	switch {
	case row > r.curRow:
		r.t.CursorDown(row - r.curRow)
	case row < r.curRow:
		r.t.CursorUp(r.curRow - row)
	}
	r.curRow = row
	r.t.CursorColumn(col)
	return nil
}
