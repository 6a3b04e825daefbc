package key

import "unicode/utf8"

// decodeState tracks the decoder's position within a raw input sequence.
type decodeState int

const (
	stateGround decodeState = iota
	stateEscape             // seen ESC, next byte decides
	stateCSI                // inside ESC [ ... sequence
	stateSS3                // inside ESC O ... sequence
)

// maxCSILength bounds a CSI sequence. Anything longer is malformed
// input from a terminal we do not understand; it is discarded.
const maxCSILength = 16

// Decoder translates raw terminal bytes into logical key events.
//
// Feed may produce zero events (mid-sequence) or several (burst input).
// A lone ESC cannot be distinguished from the start of an escape
// sequence at the byte level; when Pending reports true the caller
// should wait a few milliseconds for more input and call FlushEscape
// if none arrives.
type Decoder struct {
	state decodeState
	seq   []byte // accumulated CSI/SS3 bytes, without the ESC prefix

	// Partial UTF-8 rune assembly.
	utf8buf []byte
	utf8len int
}

// NewDecoder creates a decoder in the ground state.
func NewDecoder() *Decoder {
	return &Decoder{
		seq: make([]byte, 0, maxCSILength),
	}
}

// Pending returns true if the decoder is holding an unresolved prefix:
// an ESC that may start a sequence, or a partial UTF-8 rune.
func (d *Decoder) Pending() bool {
	return d.state != stateGround || d.utf8len > 0
}

// InEscape returns true if the decoder is inside an escape sequence.
func (d *Decoder) InEscape() bool {
	return d.state != stateGround
}

// Feed decodes raw bytes, returning all completed events in arrival order.
func (d *Decoder) Feed(raw []byte) []Event {
	var events []Event
	for _, b := range raw {
		events = d.feedByte(b, events)
	}
	return events
}

// FlushEscape resolves a pending escape prefix after a read timeout.
// A bare ESC becomes a literal Escape key; bytes accumulated after it
// are re-decoded as ordinary input.
func (d *Decoder) FlushEscape() []Event {
	if d.state == stateGround {
		return nil
	}

	pending := append([]byte(nil), d.seq...)
	d.state = stateGround
	d.seq = d.seq[:0]

	events := []Event{NewSpecialEvent(KeyEscape, ModNone)}
	switch {
	case len(pending) == 0:
		// Bare ESC.
	default:
		// The sequence introducer ('[' or 'O') plus any collected
		// bytes were real keystrokes after a literal Escape.
		for _, b := range pending {
			events = d.feedByte(b, events)
		}
	}
	return events
}

// feedByte advances the state machine by one byte.
func (d *Decoder) feedByte(b byte, events []Event) []Event {
	switch d.state {
	case stateGround:
		return d.groundByte(b, events)
	case stateEscape:
		return d.escapeByte(b, events)
	case stateCSI:
		return d.csiByte(b, events)
	case stateSS3:
		return d.ss3Byte(b, events)
	}
	return events
}

// groundByte decodes a byte outside any escape sequence.
func (d *Decoder) groundByte(b byte, events []Event) []Event {
	// Continue a partial UTF-8 rune.
	if d.utf8len > 0 {
		if b&0xC0 != 0x80 {
			// Broken continuation: drop the partial rune, decode
			// this byte fresh. Malformed input is never fatal.
			d.utf8buf = d.utf8buf[:0]
			d.utf8len = 0
			return d.groundByte(b, events)
		}
		d.utf8buf = append(d.utf8buf, b)
		if len(d.utf8buf) == d.utf8len {
			r, _ := utf8.DecodeRune(d.utf8buf)
			d.utf8buf = d.utf8buf[:0]
			d.utf8len = 0
			if r != utf8.RuneError {
				events = append(events, NewRuneEvent(r, ModNone))
			}
		}
		return events
	}

	switch {
	case b == 0x1b:
		d.state = stateEscape
		return events
	case b >= 0x80:
		n := utf8SequenceLength(b)
		if n < 2 {
			return events // stray continuation byte
		}
		d.utf8buf = append(d.utf8buf[:0], b)
		d.utf8len = n
		return events
	default:
		return append(events, decodeByte(b, ModNone))
	}
}

// escapeByte decodes the byte following an ESC.
func (d *Decoder) escapeByte(b byte, events []Event) []Event {
	switch b {
	case '[':
		d.state = stateCSI
		d.seq = append(d.seq[:0], b)
		return events
	case 'O':
		d.state = stateSS3
		d.seq = append(d.seq[:0], b)
		return events
	case 0x1b:
		// ESC ESC: the first was a literal Escape, stay pending.
		return append(events, NewSpecialEvent(KeyEscape, ModNone))
	default:
		// ESC-prefixed key: Alt modifier.
		d.state = stateGround
		d.seq = d.seq[:0]
		if b >= 0x80 {
			// Meta bit encodings are not produced by modern
			// terminals; treat as a plain Escape then the byte.
			events = append(events, NewSpecialEvent(KeyEscape, ModNone))
			return d.groundByte(b, events)
		}
		return append(events, decodeByte(b, ModAlt))
	}
}

// csiByte accumulates a CSI sequence until its final byte.
func (d *Decoder) csiByte(b byte, events []Event) []Event {
	d.seq = append(d.seq, b)
	if b >= 0x40 && b <= 0x7e {
		ev, ok := decodeCSI(d.seq[1:])
		d.state = stateGround
		d.seq = d.seq[:0]
		if ok {
			events = append(events, ev)
		}
		return events
	}
	if len(d.seq) > maxCSILength {
		// Runaway sequence: discard it entirely.
		d.state = stateGround
		d.seq = d.seq[:0]
	}
	return events
}

// ss3Byte decodes the single byte after ESC O.
func (d *Decoder) ss3Byte(b byte, events []Event) []Event {
	d.state = stateGround
	d.seq = d.seq[:0]
	if ev, ok := decodeSS3(b); ok {
		events = append(events, ev)
	}
	return events
}

// decodeByte decodes a single non-escape ASCII byte.
func decodeByte(b byte, mods Modifier) Event {
	switch {
	case b == 0x00:
		return NewRuneEvent(' ', mods.With(ModCtrl)) // Ctrl-Space
	case b == '\t':
		return NewSpecialEvent(KeyTab, mods)
	case b == '\r':
		return NewSpecialEvent(KeyEnter, mods)
	case b == 0x7f:
		return NewSpecialEvent(KeyBackspace, mods)
	case b < 0x1b:
		// Ctrl+letter. Includes 0x08 (C-h) and 0x0a (C-j), which
		// bindings treat as backspace/accept respectively.
		return NewRuneEvent(rune('a'+b-1), mods.With(ModCtrl))
	case b >= 0x1c && b <= 0x1f:
		// Ctrl+\ Ctrl+] Ctrl+^ Ctrl+_
		return NewRuneEvent(rune(b+0x40), mods.With(ModCtrl))
	default:
		r := rune(b)
		if r >= 'A' && r <= 'Z' {
			mods = mods.With(ModShift)
		}
		return NewRuneEvent(r, mods)
	}
}

// csiKeys maps CSI final letters to keys.
var csiKeys = map[byte]Key{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
	'H': KeyHome,
	'F': KeyEnd,
}

// csiTildeKeys maps CSI numeric codes (ESC [ n ~) to keys.
var csiTildeKeys = map[int]Key{
	1:  KeyHome,
	2:  KeyInsert,
	3:  KeyDelete,
	4:  KeyEnd,
	5:  KeyPageUp,
	6:  KeyPageDown,
	7:  KeyHome,
	8:  KeyEnd,
	11: KeyF1,
	12: KeyF2,
	13: KeyF3,
	14: KeyF4,
	15: KeyF5,
	17: KeyF6,
	18: KeyF7,
	19: KeyF8,
	20: KeyF9,
	21: KeyF10,
	23: KeyF11,
	24: KeyF12,
}

// decodeCSI decodes an accumulated CSI body (without ESC [, with final).
func decodeCSI(body []byte) (Event, bool) {
	if len(body) == 0 {
		return Event{}, false
	}

	final := body[len(body)-1]
	params := parseCSIParams(body[:len(body)-1])

	if final == 'Z' {
		// Backtab.
		return NewSpecialEvent(KeyTab, ModShift), true
	}

	mods := ModNone
	if len(params) >= 2 && params[1] > 1 {
		mods = csiModifiers(params[1])
	}

	if final == '~' {
		if len(params) == 0 {
			return Event{}, false
		}
		k, ok := csiTildeKeys[params[0]]
		if !ok {
			return Event{}, false
		}
		return NewSpecialEvent(k, mods), true
	}

	if k, ok := csiKeys[final]; ok {
		return NewSpecialEvent(k, mods), true
	}

	// Unrecognized sequences decode to nothing rather than garbage.
	return Event{}, false
}

// decodeSS3 decodes the byte following ESC O.
func decodeSS3(b byte) (Event, bool) {
	switch b {
	case 'A':
		return NewSpecialEvent(KeyUp, ModNone), true
	case 'B':
		return NewSpecialEvent(KeyDown, ModNone), true
	case 'C':
		return NewSpecialEvent(KeyRight, ModNone), true
	case 'D':
		return NewSpecialEvent(KeyLeft, ModNone), true
	case 'H':
		return NewSpecialEvent(KeyHome, ModNone), true
	case 'F':
		return NewSpecialEvent(KeyEnd, ModNone), true
	case 'P':
		return NewSpecialEvent(KeyF1, ModNone), true
	case 'Q':
		return NewSpecialEvent(KeyF2, ModNone), true
	case 'R':
		return NewSpecialEvent(KeyF3, ModNone), true
	case 'S':
		return NewSpecialEvent(KeyF4, ModNone), true
	}
	return Event{}, false
}

// parseCSIParams parses semicolon-separated decimal parameters.
func parseCSIParams(b []byte) []int {
	if len(b) == 0 {
		return nil
	}
	var params []int
	cur, has := 0, false
	for _, c := range b {
		switch {
		case c >= '0' && c <= '9':
			cur = cur*10 + int(c-'0')
			has = true
		case c == ';':
			params = append(params, cur)
			cur, has = 0, false
		default:
			// Private-mode or intermediate bytes; ignore.
		}
	}
	if has {
		params = append(params, cur)
	}
	return params
}

// csiModifiers converts an xterm modifier parameter to a Modifier mask.
// The encoding is 1 + bitmap where bit 0 is Shift, 1 is Alt, 2 is Ctrl.
func csiModifiers(p int) Modifier {
	bits := p - 1
	var mods Modifier
	if bits&1 != 0 {
		mods = mods.With(ModShift)
	}
	if bits&2 != 0 {
		mods = mods.With(ModAlt)
	}
	if bits&4 != 0 {
		mods = mods.With(ModCtrl)
	}
	return mods
}

// utf8SequenceLength returns the expected byte length of a UTF-8
// sequence from its first byte, or 0 if invalid.
func utf8SequenceLength(b byte) int {
	switch {
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	}
	return 0
}
