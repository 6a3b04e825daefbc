package engine

import (
	"github.com/dshills/keyline/internal/key"
	"github.com/dshills/keyline/internal/keymap"
)

// Keymap table names.
const (
	tableEmacs     = "emacs"
	tableViInsert  = "vi-insert"
	tableViCommand = "vi-command"
)

func action(name, desc string) keymap.Binding {
	return keymap.Binding{Action: name, Desc: desc, Kind: keymap.KindAction}
}

func digitArg() keymap.Binding {
	return keymap.Binding{Action: actionDigitArgument, Desc: "numeric argument", Kind: keymap.KindDigitArg}
}

// defaultKeymaps builds the emacs and vi tables.
func defaultKeymaps() *keymap.Set {
	return keymap.NewSet(emacsTable(), viInsertTable(), viCommandTable())
}

func emacsTable() *keymap.Table {
	t := keymap.NewTable(tableEmacs)

	bind := func(spec, name, desc string) {
		t.Bind(key.MustParse(spec), action(name, desc))
	}
	chord := func(spec, name, desc string) {
		t.BindChord(key.Chord{
			First:  key.MustParse("C-x"),
			Second: key.MustParse(spec),
		}, action(name, desc))
	}

	bind("Enter", actionAcceptLine, "accept the line")
	bind("C-j", actionAcceptLine, "accept the line")
	bind("C-m", actionAcceptLine, "accept the line")

	bind("C-a", actionBeginningOfLine, "move to start of line")
	bind("Home", actionBeginningOfLine, "move to start of line")
	bind("C-e", actionEndOfLine, "move to end of line")
	bind("End", actionEndOfLine, "move to end of line")
	bind("C-f", actionForwardChar, "move forward a character")
	bind("Right", actionForwardChar, "move forward a character")
	bind("C-b", actionBackwardChar, "move back a character")
	bind("Left", actionBackwardChar, "move back a character")
	bind("A-f", actionForwardWord, "move forward a word")
	bind("C-Right", actionForwardWord, "move forward a word")
	bind("A-b", actionBackwardWord, "move back a word")
	bind("C-Left", actionBackwardWord, "move back a word")

	bind("C-d", actionDeleteChar, "delete forward, or signal end of input when empty")
	bind("Delete", actionDeleteChar, "delete forward")
	bind("Backspace", actionBackwardDeleteChar, "delete backward")
	bind("C-h", actionBackwardDeleteChar, "delete backward")

	bind("C-k", actionKillLine, "kill to end of line")
	bind("C-u", actionBackwardKillLine, "kill to start of line")
	bind("A-d", actionKillWord, "kill the next word")
	bind("A-Backspace", actionBackwardKillWord, "kill the previous word")
	bind("C-w", actionUnixWordRubout, "kill back to whitespace")
	bind("C-y", actionYank, "yank the last kill")
	bind("A-y", actionYankPop, "cycle an earlier kill into place")

	bind("C-Space", actionSetMark, "set the mark at point")
	bind("C-t", actionTransposeChars, "transpose characters")
	bind("A-u", actionUpcaseWord, "uppercase the next word")
	bind("A-l", actionDowncaseWord, "lowercase the next word")
	bind("A-c", actionCapitalizeWord, "capitalize the next word")

	bind("C-_", actionUndo, "undo the last change")
	bind("A-r", actionRevertLine, "undo all changes to the line")

	bind("C-p", actionPreviousHistory, "recall the previous line")
	bind("Up", actionPreviousHistory, "recall the previous line")
	bind("C-n", actionNextHistory, "recall the next line")
	bind("Down", actionNextHistory, "recall the next line")
	bind("C-r", actionReverseSearch, "search history incrementally")

	bind("C-l", actionClearScreen, "clear and redraw")
	bind("C-v", actionQuotedInsert, "insert the next key literally")
	bind("C-g", actionAbort, "abort")
	bind("Escape", actionAbort, "abort")

	chord("u", actionUndo, "undo the last change")
	chord("C-r", actionRedo, "redo the last undo")
	chord("C-x", actionExchangeMark, "swap point and mark")
	chord("C-k", actionKillRegion, "kill between mark and point")

	// M-0..M-9 and M-- start a numeric argument.
	for r := '0'; r <= '9'; r++ {
		t.Bind(key.NewRuneEvent(r, key.ModAlt), digitArg())
	}
	t.Bind(key.NewRuneEvent('-', key.ModAlt), digitArg())

	return t
}

func viInsertTable() *keymap.Table {
	t := keymap.NewTable(tableViInsert)

	bind := func(spec, name, desc string) {
		t.Bind(key.MustParse(spec), action(name, desc))
	}

	bind("Enter", actionAcceptLine, "accept the line")
	bind("Escape", actionViCommandMode, "enter command mode")
	bind("Backspace", actionBackwardDeleteChar, "delete backward")
	bind("C-h", actionBackwardDeleteChar, "delete backward")
	bind("C-d", actionDeleteChar, "delete forward, or signal end of input when empty")
	bind("C-w", actionUnixWordRubout, "kill back to whitespace")
	bind("C-u", actionBackwardKillLine, "kill to start of line")
	bind("C-r", actionReverseSearch, "search history incrementally")
	bind("Up", actionPreviousHistory, "recall the previous line")
	bind("Down", actionNextHistory, "recall the next line")
	bind("Left", actionBackwardChar, "move back a character")
	bind("Right", actionForwardChar, "move forward a character")
	bind("C-v", actionQuotedInsert, "insert the next key literally")

	return t
}

func viCommandTable() *keymap.Table {
	t := keymap.NewTable(tableViCommand)

	bind := func(spec, name, desc string) {
		t.Bind(key.MustParse(spec), action(name, desc))
	}
	motion := func(prefix, spec, name, desc string) {
		t.BindChord(key.Chord{
			First:  key.MustParse(prefix),
			Second: key.MustParse(spec),
		}, action(name, desc))
	}

	bind("Enter", actionAcceptLine, "accept the line")
	bind("i", actionViInsertMode, "insert before the cursor")
	bind("I", actionViInsertBOL, "insert at start of line")
	bind("a", actionViAppend, "append after the cursor")
	bind("A", actionViAppendEOL, "append at end of line")

	bind("h", actionBackwardChar, "move back a character")
	bind("Left", actionBackwardChar, "move back a character")
	bind("l", actionForwardChar, "move forward a character")
	bind("Right", actionForwardChar, "move forward a character")
	bind("Space", actionForwardChar, "move forward a character")
	bind("w", actionViForwardWord, "move to next word start")
	bind("b", actionViBackwardWord, "move to previous word start")
	bind("e", actionViWordEnd, "move to word end")
	bind("0", actionBeginningOfLine, "move to start of line")
	bind("$", actionEndOfLine, "move to end of line")

	bind("x", actionViDeleteChar, "delete the character under the cursor")
	bind("D", actionViDeleteToEnd, "delete to end of line")
	bind("C", actionViChangeToEnd, "change to end of line")
	bind("r", actionViReplaceChar, "replace the character under the cursor")
	bind("p", actionYank, "put the last kill")
	bind("u", actionUndo, "undo the last change")
	bind("C-r", actionRedo, "redo the last undo")
	bind("U", actionRevertLine, "undo all changes to the line")

	bind("k", actionPreviousHistory, "recall the previous line")
	bind("Up", actionPreviousHistory, "recall the previous line")
	bind("j", actionNextHistory, "recall the next line")
	bind("Down", actionNextHistory, "recall the next line")
	bind("/", actionReverseSearch, "search history incrementally")

	bind("C-l", actionClearScreen, "clear and redraw")
	bind("C-g", actionAbort, "abort")

	// Operator chords: d and c with a motion.
	motion("d", "w", actionViDeleteWord, "delete to next word start")
	motion("d", "b", actionViDeleteBackWord, "delete to previous word start")
	motion("d", "$", actionViDeleteToEnd, "delete to end of line")
	motion("d", "0", actionViDeleteToStart, "delete to start of line")
	motion("d", "d", actionViDeleteLine, "delete the whole line")
	motion("c", "w", actionViChangeWord, "change to next word start")
	motion("c", "$", actionViChangeToEnd, "change to end of line")
	motion("c", "c", actionViChangeLine, "change the whole line")

	// 1-9 start a count; 0 alone is a motion.
	for r := '1'; r <= '9'; r++ {
		t.Bind(key.NewRuneEvent(r, key.ModNone), digitArg())
	}

	return t
}
