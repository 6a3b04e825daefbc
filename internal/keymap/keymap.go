// Package keymap maps logical keys to named actions.
//
// A Table holds the bindings for one edit mode. Keys map either to a
// plain action, to a digit-argument collector, or to a chord prefix
// that selects a secondary table keyed by the first event. Tables are
// mutable at runtime; rebinding never touches editor state.
//
// Tables resolve keys to action names only. Invocation is the
// dispatch layer's concern, which keeps keymaps serializable and lets
// the same action name be rebound freely.
package keymap

import (
	"sort"

	"github.com/dshills/keyline/internal/key"
)

// Kind describes how the dispatch loop treats a binding.
type Kind int

const (
	// KindAction is a plain invocable binding.
	KindAction Kind = iota

	// KindChordPrefix suspends dispatch and reads exactly one more
	// key, resolved against the chord's secondary table.
	KindChordPrefix

	// KindDigitArg starts the numeric-argument sub-loop.
	KindDigitArg
)

// Binding associates a key with a named action.
type Binding struct {
	// Action is the registered action name, e.g. "kill-line".
	Action string

	// Desc is a short human-readable description.
	Desc string

	// Kind selects plain, chord-prefix, or digit-argument handling.
	Kind Kind
}

// Entry is a bound key with its binding, used for listings.
type Entry struct {
	Keys    string
	Binding Binding
}

// Table holds the bindings for a single edit mode.
type Table struct {
	name     string
	bindings map[key.Event]Binding
	chords   map[key.Event]map[key.Event]Binding
}

// NewTable creates an empty table with the given name.
func NewTable(name string) *Table {
	return &Table{
		name:     name,
		bindings: make(map[key.Event]Binding),
		chords:   make(map[key.Event]map[key.Event]Binding),
	}
}

// Name returns the table's name.
func (t *Table) Name() string {
	return t.name
}

// Bind adds or replaces the binding for a key.
func (t *Table) Bind(ev key.Event, b Binding) {
	t.bindings[ev.Normalize()] = b
}

// BindChord adds or replaces a two-key chord binding. The first key
// is implicitly bound as a chord prefix.
func (t *Table) BindChord(c key.Chord, b Binding) {
	first := c.First.Normalize()
	if existing, ok := t.bindings[first]; !ok || existing.Kind != KindChordPrefix {
		t.bindings[first] = Binding{
			Action: "chord-" + c.First.String(),
			Desc:   "Prefix key " + c.First.String(),
			Kind:   KindChordPrefix,
		}
	}
	sub := t.chords[first]
	if sub == nil {
		sub = make(map[key.Event]Binding)
		t.chords[first] = sub
	}
	sub[c.Second.Normalize()] = b
}

// Unbind removes the binding for a key, including any chord table
// hanging off it.
func (t *Table) Unbind(ev key.Event) {
	norm := ev.Normalize()
	delete(t.bindings, norm)
	delete(t.chords, norm)
}

// Lookup returns the binding for a key.
func (t *Table) Lookup(ev key.Event) (Binding, bool) {
	b, ok := t.bindings[ev.Normalize()]
	return b, ok
}

// LookupChord resolves the second key of a chord whose prefix is
// first. Missing entries return ok=false; chords have no self-insert
// fallback.
func (t *Table) LookupChord(first, second key.Event) (Binding, bool) {
	sub, ok := t.chords[first.Normalize()]
	if !ok {
		return Binding{}, false
	}
	b, ok := sub[second.Normalize()]
	return b, ok
}

// Entries returns all bindings sorted by key notation, chords last.
func (t *Table) Entries() []Entry {
	var entries []Entry
	for ev, b := range t.bindings {
		if b.Kind == KindChordPrefix {
			continue
		}
		entries = append(entries, Entry{Keys: ev.String(), Binding: b})
	}
	for first, sub := range t.chords {
		for second, b := range sub {
			entries = append(entries, Entry{
				Keys:    key.Chord{First: first, Second: second}.String(),
				Binding: b,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Keys < entries[j].Keys
	})
	return entries
}
