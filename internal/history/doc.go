// Package history keeps the ordered log of accepted lines.
//
// The log is capacity bounded (oldest entries evicted), never stores
// an empty line, and supports non-destructive recall navigation and
// incremental substring search. Before the first navigation away from
// the in-progress line the log snapshots it, so stepping back past
// the newest entry restores what the user was typing.
//
// Persistence is a newline-delimited file, one entry per line with
// tabs and newlines escaped. Access to the file across processes is
// serialized with an exclusive flock scoped to the file; each save is
// a read-merge-write cycle under the lock, so two engines sharing a
// history file interleave rather than clobber each other. A malformed
// file degrades to an empty history instead of an error.
package history
