package edit

// DefaultKillRingCapacity matches the readline default.
const DefaultKillRingCapacity = 10

// KillDirection records which way a kill removed text relative to the
// cursor. Consecutive kills in the same direction coalesce into one
// ring entry: forward kills append, backward kills prepend.
type KillDirection int

const (
	KillForward KillDirection = iota
	KillBackward
)

// KillRing is a fixed-capacity rotating store of killed text spans.
// The most recent kill sits at the head; a yank index cycles through
// older entries for yank-pop.
type KillRing struct {
	entries  []string
	capacity int
	index    int // yank cursor into entries, 0 is most recent
	sealed   bool
}

// NewKillRing creates a ring with the given capacity.
func NewKillRing(capacity int) *KillRing {
	if capacity <= 0 {
		capacity = DefaultKillRingCapacity
	}
	return &KillRing{capacity: capacity, sealed: true}
}

// Len returns the number of stored kills.
func (k *KillRing) Len() int {
	return len(k.entries)
}

// Kill stores killed text. When the previous command was also a kill
// (Seal has not run since), the text coalesces with the head entry:
// appended for forward kills, prepended for backward.
func (k *KillRing) Kill(text string, dir KillDirection) {
	if text == "" {
		return
	}

	if !k.sealed && len(k.entries) > 0 {
		if dir == KillForward {
			k.entries[0] = k.entries[0] + text
		} else {
			k.entries[0] = text + k.entries[0]
		}
	} else {
		k.entries = append([]string{text}, k.entries...)
		if len(k.entries) > k.capacity {
			k.entries = k.entries[:k.capacity]
		}
	}

	k.index = 0
	k.sealed = false
}

// Seal marks the end of a kill run. The next Kill starts a fresh
// entry. Dispatch calls this after every non-kill command.
func (k *KillRing) Seal() {
	k.sealed = true
}

// Yank returns the most recent kill and resets the yank cursor.
func (k *KillRing) Yank() (string, bool) {
	if len(k.entries) == 0 {
		return "", false
	}
	k.index = 0
	return k.entries[0], true
}

// YankPop advances the yank cursor to the next-older entry, wrapping
// past the oldest, and returns it.
func (k *KillRing) YankPop() (string, bool) {
	if len(k.entries) == 0 {
		return "", false
	}
	k.index = (k.index + 1) % len(k.entries)
	return k.entries[k.index], true
}

// Current returns the entry at the yank cursor.
func (k *KillRing) Current() (string, bool) {
	if len(k.entries) == 0 {
		return "", false
	}
	return k.entries[k.index], true
}
