package engine

import (
	"strings"

	"github.com/dshills/keyline/internal/key"
)

// doReverseSearch runs the incremental history search sub-loop. Typed
// characters extend the query and jump to the newest matching entry;
// repeated C-r steps to older matches; Backspace retracts; Enter
// keeps the match in the buffer; abort restores the original line.
// Any other key ends the search and dispatches normally.
func doReverseSearch(e *Engine, _ key.Event, _ int) error {
	origText, origCursor := e.buf.Text(), e.buf.Cursor()
	query := ""
	matchIdx := -1
	failing := false

	restore := func() {
		e.buf.Restore(origText, origCursor)
	}
	show := func() {
		if matchIdx >= 0 {
			item, _ := e.hist.At(matchIdx)
			cursor := strings.Index(item.Text, query)
			if cursor < 0 {
				cursor = 0
			}
			e.buf.Restore(item.Text, len([]rune(item.Text[:cursor])))
		}
	}

	for {
		e.status = searchStatus(query, failing)
		if err := e.render(); err != nil {
			return err
		}
		ev, err := e.rd.ReadKey(e.ctx, e.idle)
		if err != nil {
			// The outer loop unwinds on its next read.
			e.status = ""
			return nil
		}
		e.keyLog.Append(ev)

		switch {
		case isAbortKey(ev):
			restore()
			e.status = ""
			e.ding()
			return nil

		case ev.Key == key.KeyEnter && ev.Modifiers.IsEmpty():
			e.status = ""
			return nil

		case ev.Rune == 'r' && ev.Modifiers == key.ModCtrl:
			if query == "" {
				continue
			}
			from := matchIdx
			if from < 0 {
				from = e.hist.Len()
			}
			if i, ok := e.hist.SearchBackward(query, from); ok {
				matchIdx = i
				failing = false
				show()
			} else {
				failing = true
				e.ding()
			}

		case ev.Key == key.KeyBackspace && ev.Modifiers.IsEmpty():
			if query == "" {
				continue
			}
			query = query[:len(query)-1]
			failing = false
			if query == "" {
				matchIdx = -1
				restore()
				continue
			}
			if i, ok := e.hist.SearchBackward(query, e.hist.Len()); ok {
				matchIdx = i
				show()
			} else {
				matchIdx = -1
				failing = true
				restore()
			}

		case ev.IsPrintable():
			next := query + string(ev.Rune)
			// The current match may still satisfy the longer query, so
			// search from just past it.
			from := e.hist.Len()
			if matchIdx >= 0 {
				from = matchIdx + 1
			}
			if i, ok := e.hist.SearchBackward(next, from); ok {
				query = next
				matchIdx = i
				failing = false
				show()
			} else if i, ok := e.hist.SearchBackward(next, e.hist.Len()); ok {
				query = next
				matchIdx = i
				failing = false
				show()
			} else {
				query = next
				failing = true
				e.ding()
			}

		default:
			// End the search and run the key as usual.
			e.status = ""
			if res, derr := e.dispatch(e.ctx, ev, 1); derr != nil {
				return derr
			} else if res != nil {
				return nil
			}
			return nil
		}
	}
}

func searchStatus(query string, failing bool) string {
	if failing {
		return "(failed reverse-i-search)`" + query + "'"
	}
	return "(reverse-i-search)`" + query + "'"
}
