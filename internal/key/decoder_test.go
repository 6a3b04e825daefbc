package key

import "testing"

func TestDecodePrintable(t *testing.T) {
	d := NewDecoder()
	events := d.Feed([]byte("ab1 @"))
	want := []Event{
		NewRuneEvent('a', ModNone),
		NewRuneEvent('b', ModNone),
		NewRuneEvent('1', ModNone),
		NewRuneEvent(' ', ModNone),
		NewRuneEvent('@', ModNone),
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, ev := range events {
		if !ev.Equal(want[i]) {
			t.Errorf("event %d = %v, want %v", i, ev, want[i])
		}
	}
}

func TestDecodeUppercaseImpliesShift(t *testing.T) {
	d := NewDecoder()
	events := d.Feed([]byte("A"))
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Rune != 'A' || !events[0].Modifiers.HasShift() {
		t.Errorf("got %v, want Shift-A", events[0])
	}
}

func TestDecodeControlBytes(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want Event
	}{
		{"ctrl-a", []byte{0x01}, NewRuneEvent('a', ModCtrl)},
		{"ctrl-z", []byte{0x1a}, NewRuneEvent('z', ModCtrl)},
		{"ctrl-underscore", []byte{0x1f}, NewRuneEvent('_', ModCtrl)},
		{"ctrl-space", []byte{0x00}, NewRuneEvent(' ', ModCtrl)},
		{"tab", []byte{0x09}, NewSpecialEvent(KeyTab, ModNone)},
		{"enter", []byte{0x0d}, NewSpecialEvent(KeyEnter, ModNone)},
		{"backspace", []byte{0x7f}, NewSpecialEvent(KeyBackspace, ModNone)},
	}

	for _, tt := range tests {
		d := NewDecoder()
		events := d.Feed(tt.raw)
		if len(events) != 1 {
			t.Errorf("%s: got %d events, want 1", tt.name, len(events))
			continue
		}
		if !events[0].Equal(tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, events[0], tt.want)
		}
	}
}

func TestDecodeEscapeSequences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Event
	}{
		{"up", "\x1b[A", NewSpecialEvent(KeyUp, ModNone)},
		{"down", "\x1b[B", NewSpecialEvent(KeyDown, ModNone)},
		{"right", "\x1b[C", NewSpecialEvent(KeyRight, ModNone)},
		{"left", "\x1b[D", NewSpecialEvent(KeyLeft, ModNone)},
		{"home", "\x1b[H", NewSpecialEvent(KeyHome, ModNone)},
		{"end", "\x1b[F", NewSpecialEvent(KeyEnd, ModNone)},
		{"delete", "\x1b[3~", NewSpecialEvent(KeyDelete, ModNone)},
		{"pageup", "\x1b[5~", NewSpecialEvent(KeyPageUp, ModNone)},
		{"f5", "\x1b[15~", NewSpecialEvent(KeyF5, ModNone)},
		{"f12", "\x1b[24~", NewSpecialEvent(KeyF12, ModNone)},
		{"ss3-up", "\x1bOA", NewSpecialEvent(KeyUp, ModNone)},
		{"ss3-f1", "\x1bOP", NewSpecialEvent(KeyF1, ModNone)},
		{"ss3-end", "\x1bOF", NewSpecialEvent(KeyEnd, ModNone)},
		{"backtab", "\x1b[Z", NewSpecialEvent(KeyTab, ModShift)},
		{"ctrl-right", "\x1b[1;5C", NewSpecialEvent(KeyRight, ModCtrl)},
		{"shift-up", "\x1b[1;2A", NewSpecialEvent(KeyUp, ModShift)},
		{"alt-delete", "\x1b[3;3~", NewSpecialEvent(KeyDelete, ModAlt)},
	}

	for _, tt := range tests {
		d := NewDecoder()
		events := d.Feed([]byte(tt.raw))
		if len(events) != 1 {
			t.Errorf("%s: got %d events, want 1", tt.name, len(events))
			continue
		}
		if !events[0].Equal(tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, events[0], tt.want)
		}
	}
}

func TestDecodeAltPrefix(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Event
	}{
		{"alt-f", "\x1bf", NewRuneEvent('f', ModAlt)},
		{"alt-d", "\x1bd", NewRuneEvent('d', ModAlt)},
		{"alt-digit", "\x1b4", NewRuneEvent('4', ModAlt)},
		{"alt-minus", "\x1b-", NewRuneEvent('-', ModAlt)},
		{"alt-backspace", "\x1b\x7f", NewSpecialEvent(KeyBackspace, ModAlt)},
	}

	for _, tt := range tests {
		d := NewDecoder()
		events := d.Feed([]byte(tt.raw))
		if len(events) != 1 {
			t.Errorf("%s: got %d events, want 1", tt.name, len(events))
			continue
		}
		if !events[0].Equal(tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, events[0], tt.want)
		}
	}
}

func TestDecodeBareEscapeViaFlush(t *testing.T) {
	d := NewDecoder()
	events := d.Feed([]byte{0x1b})
	if len(events) != 0 {
		t.Fatalf("ESC should be pending, got %d events", len(events))
	}
	if !d.Pending() {
		t.Fatal("Pending() = false after lone ESC")
	}

	events = d.FlushEscape()
	if len(events) != 1 || events[0].Key != KeyEscape {
		t.Fatalf("FlushEscape = %v, want [Escape]", events)
	}
	if d.Pending() {
		t.Error("Pending() = true after flush")
	}
}

func TestFlushMidSequenceReplaysBytes(t *testing.T) {
	// A user typing ESC then [ slowly should get both keys.
	d := NewDecoder()
	d.Feed([]byte{0x1b, '['})
	events := d.FlushEscape()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %v", len(events), events)
	}
	if events[0].Key != KeyEscape {
		t.Errorf("first = %v, want Escape", events[0])
	}
	if events[1].Rune != '[' {
		t.Errorf("second = %v, want '['", events[1])
	}
}

func TestDecodeSplitSequence(t *testing.T) {
	// Sequence bytes arriving one at a time resolve once complete.
	d := NewDecoder()
	var events []Event
	for _, b := range []byte("\x1b[1;5D") {
		events = append(events, d.Feed([]byte{b})...)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	want := NewSpecialEvent(KeyLeft, ModCtrl)
	if !events[0].Equal(want) {
		t.Errorf("got %v, want %v", events[0], want)
	}
}

func TestDecodeBurst(t *testing.T) {
	// One raw read holding several complete keys yields all of them
	// in arrival order.
	d := NewDecoder()
	events := d.Feed([]byte("hi\x1b[A\x01x"))
	want := []Event{
		NewRuneEvent('h', ModNone),
		NewRuneEvent('i', ModNone),
		NewSpecialEvent(KeyUp, ModNone),
		NewRuneEvent('a', ModCtrl),
		NewRuneEvent('x', ModNone),
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %v", len(events), len(want), events)
	}
	for i, ev := range events {
		if !ev.Equal(want[i]) {
			t.Errorf("event %d = %v, want %v", i, ev, want[i])
		}
	}
}

func TestDecodeUTF8(t *testing.T) {
	d := NewDecoder()
	events := d.Feed([]byte("é→🙂"))
	want := []rune{'é', '→', '🙂'}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, ev := range events {
		if ev.Rune != want[i] {
			t.Errorf("event %d rune = %q, want %q", i, ev.Rune, want[i])
		}
	}
}

func TestDecodeSplitUTF8(t *testing.T) {
	d := NewDecoder()
	raw := []byte("é")
	events := d.Feed(raw[:1])
	if len(events) != 0 {
		t.Fatalf("partial rune produced %d events", len(events))
	}
	if !d.Pending() {
		t.Error("Pending() = false mid-rune")
	}
	events = d.Feed(raw[1:])
	if len(events) != 1 || events[0].Rune != 'é' {
		t.Fatalf("got %v, want é", events)
	}
}

func TestDecodeMalformedNeverFatal(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"unknown csi", []byte("\x1b[99~")},
		{"unknown ss3", []byte("\x1bOZ")},
		{"stray continuation", []byte{0xBF}},
		{"broken utf8", []byte{0xC3, 'x'}},
		{"runaway csi", []byte("\x1b[0123456789012345678m")},
	}

	for _, tt := range tests {
		d := NewDecoder()
		d.Feed(tt.raw)
		// Decoder must come back to a usable state.
		events := d.Feed([]byte("q"))
		found := false
		for _, ev := range events {
			if ev.Rune == 'q' {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: decoder did not recover, events %v", tt.name, events)
		}
	}
}
