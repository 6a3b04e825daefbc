package engine

import (
	"github.com/dshills/keyline/internal/edit"
	"github.com/dshills/keyline/internal/key"
)

// Vi action names.
const (
	actionViCommandMode    = "vi-command-mode"
	actionViInsertMode     = "vi-insert-mode"
	actionViInsertBOL      = "vi-insert-bol"
	actionViAppend         = "vi-append"
	actionViAppendEOL      = "vi-append-eol"
	actionViForwardWord    = "vi-forward-word"
	actionViBackwardWord   = "vi-backward-word"
	actionViWordEnd        = "vi-word-end"
	actionViDeleteChar     = "vi-delete-char"
	actionViDeleteToEnd    = "vi-delete-to-end"
	actionViChangeToEnd    = "vi-change-to-end"
	actionViDeleteWord     = "vi-delete-word"
	actionViDeleteBackWord = "vi-delete-back-word"
	actionViDeleteToStart  = "vi-delete-to-start"
	actionViDeleteLine     = "vi-delete-line"
	actionViChangeWord     = "vi-change-word"
	actionViChangeLine     = "vi-change-line"
	actionViReplaceChar    = "vi-replace-char"
)

func registerViActions(m map[string]Handler) {
	m[actionViCommandMode] = doViCommandMode
	m[actionViInsertMode] = doViInsertMode
	m[actionViInsertBOL] = doViInsertBOL
	m[actionViAppend] = doViAppend
	m[actionViAppendEOL] = doViAppendEOL
	m[actionViForwardWord] = doViForwardWord
	m[actionViBackwardWord] = doBackwardWord
	m[actionViWordEnd] = doViWordEnd
	m[actionViDeleteChar] = doViDeleteChar
	m[actionViDeleteToEnd] = doViDeleteToEnd
	m[actionViChangeToEnd] = doViChangeToEnd
	m[actionViDeleteWord] = doViDeleteWord
	m[actionViDeleteBackWord] = doViDeleteBackWord
	m[actionViDeleteToStart] = doViDeleteToStart
	m[actionViDeleteLine] = doViDeleteLine
	m[actionViChangeWord] = doViChangeWord
	m[actionViChangeLine] = doViChangeLine
	m[actionViReplaceChar] = doViReplaceChar
}

// doViCommandMode leaves insert mode. The cursor steps back one
// place, vi's convention when returning to command mode.
func doViCommandMode(e *Engine, _ key.Event, _ int) error {
	if e.buf.Cursor() > 0 {
		e.buf.SetCursor(e.buf.Cursor() - 1)
	}
	return e.activate(tableViCommand)
}

func doViInsertMode(e *Engine, _ key.Event, _ int) error {
	return e.activate(tableViInsert)
}

func doViInsertBOL(e *Engine, _ key.Event, _ int) error {
	e.buf.SetCursor(0)
	return e.activate(tableViInsert)
}

func doViAppend(e *Engine, _ key.Event, _ int) error {
	if e.buf.Cursor() < e.buf.Len() {
		e.buf.SetCursor(e.buf.Cursor() + 1)
	}
	return e.activate(tableViInsert)
}

func doViAppendEOL(e *Engine, _ key.Event, _ int) error {
	e.buf.SetCursor(e.buf.Len())
	return e.activate(tableViInsert)
}

func doViForwardWord(e *Engine, _ key.Event, arg int) error {
	pos := e.buf.Cursor()
	for i := 0; i < repeat(arg); i++ {
		pos = viNextWordStart(e.buf.Runes(), pos)
	}
	e.buf.SetCursor(pos)
	return nil
}

func doViWordEnd(e *Engine, _ key.Event, arg int) error {
	pos := e.buf.Cursor()
	for i := 0; i < repeat(arg); i++ {
		next := nextWordEnd(e.buf.Runes(), pos+1)
		if next > e.buf.Len() {
			next = e.buf.Len()
		}
		pos = next
	}
	if pos > 0 {
		pos--
	}
	e.buf.SetCursor(pos)
	return nil
}

func doViDeleteChar(e *Engine, _ key.Event, arg int) error {
	if e.buf.Cursor() >= e.buf.Len() {
		return errAtLineEnd
	}
	e.buf.Delete(e.buf.Cursor(), e.buf.Cursor()+repeat(arg))
	return nil
}

func doViDeleteToEnd(e *Engine, _ key.Event, _ int) error {
	if e.buf.Cursor() >= e.buf.Len() {
		return errAtLineEnd
	}
	removed := e.buf.Delete(e.buf.Cursor(), e.buf.Len())
	e.ring.Kill(removed, edit.KillForward)
	return nil
}

func doViChangeToEnd(e *Engine, ev key.Event, arg int) error {
	if err := doViDeleteToEnd(e, ev, arg); err != nil && e.buf.Len() > 0 {
		return err
	}
	return e.activate(tableViInsert)
}

func doViDeleteWord(e *Engine, _ key.Event, arg int) error {
	pos := e.buf.Cursor()
	end := pos
	for i := 0; i < repeat(arg); i++ {
		end = viNextWordStart(e.buf.Runes(), end)
	}
	if end == pos {
		return errAtLineEnd
	}
	removed := e.buf.Delete(pos, end)
	e.ring.Kill(removed, edit.KillForward)
	return nil
}

func doViDeleteBackWord(e *Engine, _ key.Event, arg int) error {
	pos := e.buf.Cursor()
	start := pos
	for i := 0; i < repeat(arg); i++ {
		start = prevWordStart(e.buf.Runes(), start)
	}
	if start == pos {
		return errAtLineStart
	}
	removed := e.buf.Delete(start, pos)
	e.ring.Kill(removed, edit.KillBackward)
	return nil
}

func doViDeleteToStart(e *Engine, _ key.Event, _ int) error {
	if e.buf.Cursor() <= 0 {
		return errAtLineStart
	}
	removed := e.buf.Delete(0, e.buf.Cursor())
	e.ring.Kill(removed, edit.KillBackward)
	return nil
}

func doViDeleteLine(e *Engine, _ key.Event, _ int) error {
	if e.buf.Len() == 0 {
		return errAtLineEnd
	}
	removed := e.buf.Delete(0, e.buf.Len())
	e.ring.Kill(removed, edit.KillForward)
	return nil
}

func doViChangeWord(e *Engine, ev key.Event, arg int) error {
	if err := doViDeleteWord(e, ev, arg); err != nil {
		return err
	}
	return e.activate(tableViInsert)
}

func doViChangeLine(e *Engine, ev key.Event, arg int) error {
	if err := doViDeleteLine(e, ev, arg); err != nil {
		return err
	}
	return e.activate(tableViInsert)
}

// doViReplaceChar reads one key and overwrites the rune under the
// cursor with it.
func doViReplaceChar(e *Engine, _ key.Event, _ int) error {
	ev, err := e.rd.ReadKey(e.ctx, e.idle)
	if err != nil {
		return nil
	}
	e.keyLog.Append(ev)
	if !ev.IsPrintable() {
		return errAtLineEnd
	}
	cur := e.buf.Cursor()
	if cur >= e.buf.Len() {
		return errAtLineEnd
	}
	e.buf.Replace(cur, cur+1, string(ev.Rune))
	e.buf.SetCursor(cur)
	return nil
}

// viNextWordStart moves past the current word and any following
// space, landing on the start of the next word.
func viNextWordStart(runes []rune, pos int) int {
	for pos < len(runes) && isWordRune(runes[pos]) {
		pos++
	}
	for pos < len(runes) && !isWordRune(runes[pos]) {
		pos++
	}
	return pos
}
