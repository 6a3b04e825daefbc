package key

import (
	"strings"
	"time"
	"unicode"
)

// Event represents a single decoded key press.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier

	// Timestamp is when the event was decoded.
	Timestamp time.Time
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{
		Key:       KeyRune,
		Rune:      r,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(key Key, mods Modifier) Event {
	return Event{
		Key:       key,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsPrintable returns true if this is a printable character with no
// Ctrl or Alt modifier. Printable events fall through to self-insert
// when no binding matches.
func (e Event) IsPrintable() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune) &&
		!e.Modifiers.HasCtrl() && !e.Modifiers.HasAlt()
}

// IsDigit returns true if this is an unmodified decimal digit.
func (e Event) IsDigit() bool {
	return e.IsPrintable() && e.Rune >= '0' && e.Rune <= '9'
}

// IsModified returns true if any modifier is pressed.
// For character events, Shift alone is not considered modified
// since Shift changes the character itself.
func (e Event) IsModified() bool {
	if e.IsRune() {
		return e.Modifiers&(ModCtrl|ModAlt) != 0
	}
	return e.Modifiers != ModNone
}

// Equal returns true if two events represent the same key press.
// Timestamps are not compared.
func (e Event) Equal(other Event) bool {
	return e.Key == other.Key &&
		e.Rune == other.Rune &&
		e.Modifiers == other.Modifiers
}

// Normalize returns a canonical form of the event used for table lookup.
// The timestamp is cleared and Ctrl-modified letters are lowercased so
// that C-S and C-s resolve to the same binding.
func (e Event) Normalize() Event {
	n := Event{Key: e.Key, Rune: e.Rune, Modifiers: e.Modifiers}
	if n.Key == KeyRune && n.Modifiers.HasCtrl() {
		n.Rune = unicode.ToLower(n.Rune)
		n.Modifiers = n.Modifiers.Without(ModShift)
	}
	return n
}

// StripShift returns a copy of the event with the Shift modifier removed.
// Used by the dispatch layer for keyboard-layout normalization.
func (e Event) StripShift() Event {
	e.Modifiers = e.Modifiers.Without(ModShift)
	return e
}

// String returns a compact readline-style representation.
// Examples: "a", "C-x", "A-f", "Enter", "C-A-Left".
func (e Event) String() string {
	var parts []string
	if e.Modifiers.HasCtrl() {
		parts = append(parts, "C")
	}
	if e.Modifiers.HasAlt() {
		parts = append(parts, "A")
	}
	if e.Modifiers.HasShift() && !e.IsRune() {
		parts = append(parts, "S")
	}

	var name string
	switch {
	case e.Key == KeyRune && e.Rune == ' ':
		name = "Space"
	case e.Key == KeyRune:
		name = string(e.Rune)
	default:
		name = e.Key.String()
	}
	parts = append(parts, name)
	return strings.Join(parts, "-")
}

// Chord is an ordered pair of events forming a two-key binding,
// such as C-x C-u. The first event selects a secondary dispatch table
// and the second selects the action.
type Chord struct {
	First  Event
	Second Event
}

// String returns the chord in readline notation, e.g. "C-x C-u".
func (c Chord) String() string {
	return c.First.String() + " " + c.Second.String()
}
