package render

import (
	"fmt"

	"github.com/rivo/uniseg"
)

// cell is one terminal cell run: a grapheme cluster (or a caret
// expansion of a control rune), its display width, and its style.
type cell struct {
	s     string
	w     int
	runes int // source runes consumed; 0 for prompt and status cells
	style int8
}

// layout wraps prompt + text into terminal rows of the given width,
// appends the status row, and locates the cursor. cursor is a rune
// offset into text.
func layout(prompt, text string, cursor int, status string, width int) ([][]cell, int, int) {
	if width <= 0 {
		width = 80
	}

	cells := cellsOf(prompt, stylePrompt)
	promptCells := len(cells)
	cells = append(cells, cellsOf(text, styleText)...)

	rows := [][]cell{{}}
	row, col := 0, 0
	cRow, cCol := -1, -1
	consumed := 0

	for i, c := range cells {
		if col+c.w > width {
			rows = append(rows, []cell{})
			row++
			col = 0
		}
		// Snap after the wrap so a cursor sitting before a wrapping
		// cell lands with that cell on the new row.
		if i >= promptCells && cRow < 0 && consumed >= cursor {
			cRow, cCol = row, col
		}
		rows[row] = append(rows[row], c)
		col += c.w
		consumed += c.runes
	}
	if cRow < 0 {
		cRow, cCol = row, col
	}
	// A cursor at the right edge sits on the next row.
	if cCol >= width {
		cRow++
		cCol = 0
		if cRow >= len(rows) {
			rows = append(rows, []cell{})
		}
	}

	if status != "" {
		rows = append(rows, statusRow(status, width))
	}
	return rows, cRow, cCol
}

// statusRow renders the transient status line, truncated to fit.
func statusRow(status string, width int) []cell {
	var row []cell
	col := 0
	for _, c := range cellsOf(status, styleStatus) {
		if col+c.w > width {
			break
		}
		row = append(row, c)
		col += c.w
	}
	return row
}

// cellsOf splits a string into display cells. Control runes render in
// caret notation so stray escapes cannot corrupt the screen.
func cellsOf(s string, style int8) []cell {
	var cells []cell
	state := -1
	for len(s) > 0 {
		var cluster string
		var w int
		cluster, s, w, state = uniseg.FirstGraphemeClusterInString(s, state)

		r := []rune(cluster)
		if len(r) == 1 && isControl(r[0]) {
			for _, cc := range caretCells(r[0], style) {
				cells = append(cells, cc)
			}
			continue
		}
		if w < 1 {
			w = 1
		}
		cells = append(cells, cell{s: cluster, w: w, runes: textRunes(style, len(r)), style: style})
	}
	return cells
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

// caretCells expands a control rune to ^X (or an escaped hex form for
// DEL-adjacent oddities), one cell per character.
func caretCells(r rune, style int8) []cell {
	var repr string
	switch {
	case r == 0x7f:
		repr = "^?"
	case r < 0x20:
		repr = "^" + string(rune('@'+r))
	default:
		repr = fmt.Sprintf("\\x%02x", r)
	}
	cells := make([]cell, 0, len(repr))
	for i, ch := range repr {
		n := 0
		if i == 0 {
			// The whole expansion stands for one source rune.
			n = textRunes(style, 1)
		}
		cells = append(cells, cell{s: string(ch), w: 1, runes: n, style: style})
	}
	return cells
}

// textRunes reports source-rune consumption: only buffer text cells
// advance the cursor offset.
func textRunes(style int8, n int) int {
	if style != styleText {
		return 0
	}
	return n
}
