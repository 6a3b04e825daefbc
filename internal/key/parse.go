package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse errors.
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification string into an Event.
//
// Supported formats:
//   - Single character: "a", "A", "1", "@"
//   - Special keys: "Enter", "Escape", "Tab", "Backspace", "Space"
//   - Compact: "C-x", "A-f", "C-A-Left"
//   - Verbose: "Ctrl+X", "Alt+F", "Ctrl+Shift+Delete"
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	switch {
	case strings.Contains(spec, "+"):
		return parseParts(strings.Split(spec, "+"), spec)
	case len(spec) > 1 && strings.Contains(spec, "-"):
		return parseParts(strings.Split(spec, "-"), spec)
	default:
		return parseKeyPart(spec, ModNone)
	}
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Event {
	event, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return event
}

// ParseChord parses a two-key chord specification such as "C-x C-u".
func ParseChord(spec string) (Chord, error) {
	fields := strings.Fields(spec)
	if len(fields) != 2 {
		return Chord{}, fmt.Errorf("%w: chord needs exactly two keys: %q", ErrInvalidSpec, spec)
	}
	first, err := Parse(fields[0])
	if err != nil {
		return Chord{}, err
	}
	second, err := Parse(fields[1])
	if err != nil {
		return Chord{}, err
	}
	return Chord{First: first, Second: second}, nil
}

// parseParts parses a split spec where all parts but the last are modifiers.
func parseParts(parts []string, orig string) (Event, error) {
	if len(parts) < 2 {
		return Event{}, fmt.Errorf("%w: %q", ErrInvalidSpec, orig)
	}

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		p = strings.TrimSpace(p)
		mod := ModifierFromName(strings.ToLower(p))
		if mod == ModNone {
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods = mods.With(mod)
	}

	return parseKeyPart(strings.TrimSpace(parts[len(parts)-1]), mods)
}

// parseKeyPart parses the key portion with already-known modifiers.
func parseKeyPart(keyPart string, mods Modifier) (Event, error) {
	if keyPart == "" {
		return Event{}, ErrInvalidSpec
	}

	if keyPart == "Space" || strings.EqualFold(keyPart, "space") {
		return NewRuneEvent(' ', mods), nil
	}

	if k := FromName(keyPart); k != KeyNone {
		return NewSpecialEvent(k, mods), nil
	}

	if utf8.RuneCountInString(keyPart) == 1 {
		r, _ := utf8.DecodeRuneInString(keyPart)
		// Ctrl combinations are stored lowercase; a bare uppercase
		// letter implies Shift.
		if mods.HasCtrl() {
			r = unicode.ToLower(r)
		} else if mods == ModNone && unicode.IsUpper(r) {
			mods = ModShift
		}
		return NewRuneEvent(r, mods), nil
	}

	return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
}
