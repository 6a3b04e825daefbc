// Package key defines logical key events and the decoder that produces
// them from raw terminal input.
//
// A key press is represented by Event, which combines a Key identifier,
// an optional literal rune, and a Modifier bitmask. Events are immutable
// values: they are produced by the Decoder, consumed by the dispatch
// layer, and recorded in a bounded Log for crash diagnostics.
//
// The Decoder is a byte-at-a-time state machine. Escape sequences span
// multiple bytes, and a lone ESC byte is indistinguishable from the
// start of a sequence, so the decoder exposes a pending state that the
// caller resolves with a short read timeout (see FlushEscape).
package key
