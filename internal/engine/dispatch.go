package engine

import (
	"context"
	"strconv"
	"strings"

	"github.com/dshills/keyline/internal/key"
	"github.com/dshills/keyline/internal/keymap"
)

// Undo group classes. Consecutive actions of the same class share one
// undo group: a run of typed characters undoes as a word, and a yank
// followed by yank-pops undoes as a unit.
const (
	classNone   = ""
	classInsert = "insert"
	classYank   = "yank"
)

func classOf(action string) string {
	switch action {
	case actionSelfInsert:
		return classInsert
	case actionYank, actionYankPop:
		return classYank
	default:
		return classNone
	}
}

// killActions keep the kill ring unsealed so consecutive kills
// coalesce into one entry.
var killActions = map[string]bool{
	actionKillLine:         true,
	actionBackwardKillLine: true,
	actionKillWord:         true,
	actionBackwardKillWord: true,
	actionUnixWordRubout:   true,
	actionKillRegion:       true,
	actionViDeleteToEnd:    true,
}

// recallActions navigate history without ending the recall session.
var recallActions = map[string]bool{
	actionPreviousHistory: true,
	actionNextHistory:     true,
}

// dispatch resolves one key against the active table and runs what it
// finds. Lookup order: exact match, then a shift-stripped retry for
// control-character literals, then self-insert for printables. A
// non-nil Result unwinds ReadLine (cancellation or shutdown hit
// inside a sub-loop).
func (e *Engine) dispatch(ctx context.Context, ev key.Event, arg int) (Result, error) {
	table := e.maps.Active()

	b, ok := table.Lookup(ev)
	if !ok && ev.Modifiers == key.ModShift && isControlRune(ev.Rune) {
		b, ok = table.Lookup(ev.StripShift())
	}
	if !ok {
		if ev.IsPrintable() {
			e.invoke(actionSelfInsert, ev, arg)
			return nil, nil
		}
		e.ding()
		return nil, nil
	}

	switch b.Kind {
	case keymap.KindChordPrefix:
		return e.chordLoop(ctx, ev, arg)
	case keymap.KindDigitArg:
		return e.digitLoop(ctx, ev)
	default:
		e.invoke(b.Action, ev, arg)
		return nil, nil
	}
}

func isControlRune(r rune) bool {
	return r != 0 && (r < 0x20 || r == 0x7f)
}

func isDigitRune(r rune) bool {
	return r >= '0' && r <= '9'
}

// invoke runs a named action. Handler errors ding and log; they never
// unwind the loop.
func (e *Engine) invoke(name string, ev key.Event, arg int) {
	h, ok := e.actions[name]
	if !ok {
		e.log.Warn("binding names unregistered action %q", name)
		e.ding()
		return
	}
	e.prepare(name)
	err := h(e, ev, arg)
	e.lastAction = name
	if err != nil {
		e.log.Debug("%s: %v", name, err)
		e.ding()
	}
}

// prepare runs the dispatch prologue: close or open the composite
// undo group, seal the kill ring for non-kill actions, and end any
// recall session a non-navigation action interrupts.
func (e *Engine) prepare(name string) {
	class := classOf(name)
	if e.groupClass != classNone && class != e.groupClass {
		e.closeGroup()
	}
	if class != classNone && e.groupClass == classNone {
		e.buf.BeginUndoGroup()
		e.groupClass = class
	}
	if !killActions[name] {
		e.ring.Seal()
	}
	if e.hist != nil && e.hist.Recalling() && !recallActions[name] {
		e.hist.EndRecall()
	}
}

func (e *Engine) closeGroup() {
	if e.groupClass != classNone {
		e.buf.EndUndoGroup()
		e.groupClass = classNone
	}
}

// chordLoop reads exactly one more key and resolves it against the
// prefix's secondary table. An unbound second key is silently
// ignored.
func (e *Engine) chordLoop(ctx context.Context, first key.Event, arg int) (Result, error) {
	e.status = first.String() + "-"
	if err := e.render(); err != nil {
		return nil, err
	}
	second, rerr := e.rd.ReadKey(ctx, e.idle)
	if rerr != nil {
		return e.unwind(ctx, rerr)
	}
	e.keyLog.Append(second)
	e.status = ""

	b, ok := e.maps.Active().LookupChord(first, second)
	if !ok {
		return nil, nil
	}
	e.invoke(b.Action, second, arg)
	return nil, nil
}

// digitLoop accumulates a numeric argument. The seeding event is the
// bound digit-argument key (a digit or the sign toggle); subsequent
// digits extend it, a repeated sign toggles, and the first other key
// is dispatched with the parsed argument. An unparseable accumulation
// dings without dispatching. Abort keys leave without dispatching.
func (e *Engine) digitLoop(ctx context.Context, first key.Event) (Result, error) {
	// The seeding event still carries Alt, so look at the raw rune
	// rather than IsDigit.
	text := ""
	switch {
	case isDigitRune(first.Rune):
		text = string(first.Rune)
	case first.Rune == '-':
		text = "-"
	}

	for {
		e.status = "(arg: " + text + ")"
		if err := e.render(); err != nil {
			return nil, err
		}
		ev, rerr := e.rd.ReadKey(ctx, e.idle)
		if rerr != nil {
			return e.unwind(ctx, rerr)
		}
		e.keyLog.Append(ev)

		switch {
		case isAbortKey(ev):
			e.status = ""
			return nil, nil
		case isDigitRune(ev.Rune) && !ev.Modifiers.HasCtrl():
			text += string(ev.Rune)
		case ev.Rune == '-' && ev.Modifiers.HasAlt():
			if strings.HasPrefix(text, "-") {
				text = text[1:]
			} else {
				text = "-" + text
			}
		default:
			e.status = ""
			n, err := strconv.Atoi(text)
			if err != nil {
				e.ding()
				return nil, nil
			}
			return e.dispatch(ctx, ev, n)
		}
	}
}

func isAbortKey(ev key.Event) bool {
	if ev.Key == key.KeyEscape && ev.Modifiers.IsEmpty() {
		return true
	}
	return ev.Rune == 'g' && ev.Modifiers == key.ModCtrl
}
