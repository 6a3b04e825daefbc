package engine

import (
	"errors"
	"strings"
	"unicode"

	"github.com/dshills/keyline/internal/edit"
	"github.com/dshills/keyline/internal/key"
)

// Registered action names. These are the identifiers key bindings and
// the config file refer to.
const (
	actionSelfInsert         = "self-insert"
	actionAcceptLine         = "accept-line"
	actionBeginningOfLine    = "beginning-of-line"
	actionEndOfLine          = "end-of-line"
	actionForwardChar        = "forward-char"
	actionBackwardChar       = "backward-char"
	actionForwardWord        = "forward-word"
	actionBackwardWord       = "backward-word"
	actionDeleteChar         = "delete-char"
	actionBackwardDeleteChar = "backward-delete-char"
	actionKillLine           = "kill-line"
	actionBackwardKillLine   = "backward-kill-line"
	actionKillWord           = "kill-word"
	actionBackwardKillWord   = "backward-kill-word"
	actionUnixWordRubout     = "unix-word-rubout"
	actionKillRegion         = "kill-region"
	actionYank               = "yank"
	actionYankPop            = "yank-pop"
	actionSetMark            = "set-mark"
	actionExchangeMark       = "exchange-point-and-mark"
	actionTransposeChars     = "transpose-chars"
	actionUpcaseWord         = "upcase-word"
	actionDowncaseWord       = "downcase-word"
	actionCapitalizeWord     = "capitalize-word"
	actionUndo               = "undo"
	actionRedo               = "redo"
	actionRevertLine         = "revert-line"
	actionPreviousHistory    = "previous-history"
	actionNextHistory        = "next-history"
	actionReverseSearch      = "reverse-search-history"
	actionClearScreen        = "clear-screen"
	actionQuotedInsert       = "quoted-insert"
	actionAbort              = "abort"
	actionDigitArgument      = "digit-argument"
)

var (
	errAtLineStart   = errors.New("beginning of line")
	errAtLineEnd     = errors.New("end of line")
	errNothingToUndo = errors.New("nothing to undo")
	errNothingToRedo = errors.New("nothing to redo")
	errNoHistory     = errors.New("no further history")
	errRingEmpty     = errors.New("kill ring is empty")
	errNoLastYank    = errors.New("previous command was not a yank")
)

// builtinActions returns the full registry. Vi handlers live in
// vi.go; they share the map.
func builtinActions() map[string]Handler {
	m := map[string]Handler{
		actionSelfInsert:         doSelfInsert,
		actionAcceptLine:         doAcceptLine,
		actionBeginningOfLine:    doBeginningOfLine,
		actionEndOfLine:          doEndOfLine,
		actionForwardChar:        doForwardChar,
		actionBackwardChar:       doBackwardChar,
		actionForwardWord:        doForwardWord,
		actionBackwardWord:       doBackwardWord,
		actionDeleteChar:         doDeleteChar,
		actionBackwardDeleteChar: doBackwardDeleteChar,
		actionKillLine:           doKillLine,
		actionBackwardKillLine:   doBackwardKillLine,
		actionKillWord:           doKillWord,
		actionBackwardKillWord:   doBackwardKillWord,
		actionUnixWordRubout:     doUnixWordRubout,
		actionKillRegion:         doKillRegion,
		actionYank:               doYank,
		actionYankPop:            doYankPop,
		actionSetMark:            doSetMark,
		actionExchangeMark:       doExchangeMark,
		actionTransposeChars:     doTransposeChars,
		actionUpcaseWord:         caseWordAction(strings.ToUpper),
		actionDowncaseWord:       caseWordAction(strings.ToLower),
		actionCapitalizeWord:     caseWordAction(capitalize),
		actionUndo:               doUndo,
		actionRedo:               doRedo,
		actionRevertLine:         doRevertLine,
		actionPreviousHistory:    doPreviousHistory,
		actionNextHistory:        doNextHistory,
		actionReverseSearch:      doReverseSearch,
		actionClearScreen:        doClearScreen,
		actionQuotedInsert:       doQuotedInsert,
		actionAbort:              doAbort,
	}
	registerViActions(m)
	return m
}

func repeat(arg int) int {
	if arg < 0 {
		return 0
	}
	return arg
}

func doSelfInsert(e *Engine, ev key.Event, arg int) error {
	if ev.Rune == 0 {
		return nil
	}
	s := strings.Repeat(string(ev.Rune), repeat(arg))
	e.buf.Insert(s)
	return nil
}

func doAcceptLine(e *Engine, _ key.Event, _ int) error {
	e.buf.Accept()
	return nil
}

func doBeginningOfLine(e *Engine, _ key.Event, _ int) error {
	e.buf.SetCursor(0)
	return nil
}

func doEndOfLine(e *Engine, _ key.Event, _ int) error {
	e.buf.SetCursor(e.buf.Len())
	return nil
}

func doForwardChar(e *Engine, _ key.Event, arg int) error {
	if e.buf.Cursor() >= e.buf.Len() {
		return errAtLineEnd
	}
	e.buf.SetCursor(e.buf.Cursor() + repeat(arg))
	return nil
}

func doBackwardChar(e *Engine, _ key.Event, arg int) error {
	if e.buf.Cursor() <= 0 {
		return errAtLineStart
	}
	e.buf.SetCursor(e.buf.Cursor() - repeat(arg))
	return nil
}

func doForwardWord(e *Engine, _ key.Event, arg int) error {
	pos := e.buf.Cursor()
	for i := 0; i < repeat(arg); i++ {
		pos = nextWordEnd(e.buf.Runes(), pos)
	}
	e.buf.SetCursor(pos)
	return nil
}

func doBackwardWord(e *Engine, _ key.Event, arg int) error {
	pos := e.buf.Cursor()
	for i := 0; i < repeat(arg); i++ {
		pos = prevWordStart(e.buf.Runes(), pos)
	}
	e.buf.SetCursor(pos)
	return nil
}

// doDeleteChar deletes forward. On an empty buffer it signals end of
// input instead, the usual C-d convention.
func doDeleteChar(e *Engine, _ key.Event, arg int) error {
	if e.buf.Len() == 0 {
		e.exiting = true
		return nil
	}
	if e.buf.Cursor() >= e.buf.Len() {
		return errAtLineEnd
	}
	e.buf.Delete(e.buf.Cursor(), e.buf.Cursor()+repeat(arg))
	return nil
}

func doBackwardDeleteChar(e *Engine, _ key.Event, arg int) error {
	if e.buf.Cursor() <= 0 {
		return errAtLineStart
	}
	e.buf.Delete(e.buf.Cursor()-repeat(arg), e.buf.Cursor())
	return nil
}

func doKillLine(e *Engine, _ key.Event, _ int) error {
	if e.buf.Cursor() >= e.buf.Len() {
		return errAtLineEnd
	}
	removed := e.buf.Delete(e.buf.Cursor(), e.buf.Len())
	e.ring.Kill(removed, edit.KillForward)
	return nil
}

func doBackwardKillLine(e *Engine, _ key.Event, _ int) error {
	if e.buf.Cursor() <= 0 {
		return errAtLineStart
	}
	removed := e.buf.Delete(0, e.buf.Cursor())
	e.ring.Kill(removed, edit.KillBackward)
	return nil
}

func doKillWord(e *Engine, _ key.Event, arg int) error {
	pos := e.buf.Cursor()
	end := pos
	for i := 0; i < repeat(arg); i++ {
		end = nextWordEnd(e.buf.Runes(), end)
	}
	if end == pos {
		return errAtLineEnd
	}
	removed := e.buf.Delete(pos, end)
	e.ring.Kill(removed, edit.KillForward)
	return nil
}

func doBackwardKillWord(e *Engine, _ key.Event, arg int) error {
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

// doUnixWordRubout kills back to whitespace, the C-w shell behavior,
// as opposed to backward-kill-word's letter/digit boundaries.
func doUnixWordRubout(e *Engine, _ key.Event, arg int) error {
	pos := e.buf.Cursor()
	start := pos
	runes := e.buf.Runes()
	for i := 0; i < repeat(arg); i++ {
		for start > 0 && unicode.IsSpace(runes[start-1]) {
			start--
		}
		for start > 0 && !unicode.IsSpace(runes[start-1]) {
			start--
		}
	}
	if start == pos {
		return errAtLineStart
	}
	removed := e.buf.Delete(start, pos)
	e.ring.Kill(removed, edit.KillBackward)
	return nil
}

func doKillRegion(e *Engine, _ key.Event, _ int) error {
	start, end := e.buf.Mark(), e.buf.Cursor()
	if start == end {
		return errors.New("mark and point coincide")
	}
	dir := edit.KillForward
	if start > end {
		dir = edit.KillBackward
	}
	removed := e.buf.Delete(start, end)
	e.ring.Kill(removed, dir)
	return nil
}

func doYank(e *Engine, _ key.Event, _ int) error {
	text, ok := e.ring.Yank()
	if !ok {
		return errRingEmpty
	}
	start := e.buf.Cursor()
	e.buf.Insert(text)
	e.yankStart = start
	e.yankEnd = start + len([]rune(text))
	return nil
}

func doYankPop(e *Engine, _ key.Event, _ int) error {
	if e.lastAction != actionYank && e.lastAction != actionYankPop {
		return errNoLastYank
	}
	text, ok := e.ring.YankPop()
	if !ok {
		return errRingEmpty
	}
	e.buf.Replace(e.yankStart, e.yankEnd, text)
	e.yankEnd = e.yankStart + len([]rune(text))
	e.buf.SetCursor(e.yankEnd)
	return nil
}

func doSetMark(e *Engine, _ key.Event, _ int) error {
	e.buf.SetMark(e.buf.Cursor())
	return nil
}

func doExchangeMark(e *Engine, _ key.Event, _ int) error {
	mark := e.buf.Mark()
	e.buf.SetMark(e.buf.Cursor())
	e.buf.SetCursor(mark)
	return nil
}

// doTransposeChars swaps the runes around the cursor and advances, or
// the final two when at end of line.
func doTransposeChars(e *Engine, _ key.Event, _ int) error {
	n := e.buf.Len()
	cur := e.buf.Cursor()
	if n < 2 || cur == 0 {
		return errAtLineStart
	}
	if cur >= n {
		cur = n - 1
	}
	a, b := e.buf.RuneAt(cur-1), e.buf.RuneAt(cur)
	e.buf.Replace(cur-1, cur+1, string(b)+string(a))
	e.buf.SetCursor(cur + 1)
	return nil
}

// caseWordAction builds upcase/downcase/capitalize word handlers:
// transform from the cursor through the end of the word, cursor ends
// after it.
func caseWordAction(transform func(string) string) Handler {
	return func(e *Engine, _ key.Event, arg int) error {
		pos := e.buf.Cursor()
		end := pos
		for i := 0; i < repeat(arg); i++ {
			end = nextWordEnd(e.buf.Runes(), end)
		}
		if end == pos {
			return errAtLineEnd
		}
		e.buf.Replace(pos, end, transform(e.buf.Slice(pos, end)))
		e.buf.SetCursor(end)
		return nil
	}
}

func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	for i, r := range runes {
		if isWordRune(r) {
			runes[i] = unicode.ToUpper(r)
			break
		}
	}
	return string(runes)
}

func doUndo(e *Engine, _ key.Event, arg int) error {
	for i := 0; i < repeat(arg); i++ {
		if !e.buf.Undo() {
			if i == 0 {
				return errNothingToUndo
			}
			break
		}
	}
	return nil
}

func doRedo(e *Engine, _ key.Event, arg int) error {
	for i := 0; i < repeat(arg); i++ {
		if !e.buf.Redo() {
			if i == 0 {
				return errNothingToRedo
			}
			break
		}
	}
	return nil
}

func doRevertLine(e *Engine, _ key.Event, _ int) error {
	for e.buf.Undo() {
	}
	return nil
}

// doPreviousHistory walks backward. Text typed before the recall
// started acts as a prefix filter, so "git <Up>" visits git commands.
func doPreviousHistory(e *Engine, _ key.Event, arg int) error {
	if !e.hist.Recalling() {
		e.recallPrefix = e.buf.Text()
		e.hist.StartRecall(e.buf.Text())
	}
	var text string
	ok := false
	for i := 0; i < repeat(arg); i++ {
		t, stepped := e.hist.Prev(e.recallPrefix)
		if !stepped {
			break
		}
		text, ok = t, true
	}
	if !ok {
		return errNoHistory
	}
	e.buf.Restore(text, len([]rune(text)))
	return nil
}

func doNextHistory(e *Engine, _ key.Event, arg int) error {
	if !e.hist.Recalling() {
		return errNoHistory
	}
	var text string
	ok := false
	for i := 0; i < repeat(arg); i++ {
		t, stepped := e.hist.Next(e.recallPrefix)
		if !stepped {
			break
		}
		text, ok = t, true
	}
	if !ok {
		return errNoHistory
	}
	e.buf.Restore(text, len([]rune(text)))
	return nil
}

func doClearScreen(e *Engine, _ key.Event, _ int) error {
	return e.rend.Clear()
}

// doQuotedInsert reads the next key and inserts its literal rune,
// bypassing all bindings.
func doQuotedInsert(e *Engine, _ key.Event, _ int) error {
	ev, err := e.rd.ReadKey(e.ctx, e.idle)
	if err != nil {
		// The outer loop sees the same condition on its next read.
		return nil
	}
	e.keyLog.Append(ev)
	if ev.Rune != 0 {
		e.buf.Insert(string(ev.Rune))
	}
	return nil
}

func doAbort(e *Engine, _ key.Event, _ int) error {
	e.status = ""
	e.ding()
	return nil
}

// Word boundaries for the emacs word commands: a word is a run of
// letters and digits.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func nextWordEnd(runes []rune, pos int) int {
	for pos < len(runes) && !isWordRune(runes[pos]) {
		pos++
	}
	for pos < len(runes) && isWordRune(runes[pos]) {
		pos++
	}
	return pos
}

func prevWordStart(runes []rune, pos int) int {
	for pos > 0 && !isWordRune(runes[pos-1]) {
		pos--
	}
	for pos > 0 && isWordRune(runes[pos-1]) {
		pos--
	}
	return pos
}
