package history

import (
	"bufio"
	"io"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// maxEntryLen bounds a single persisted entry. Longer lines in the
// file are skipped rather than split.
const maxEntryLen = 1 << 20

var (
	escaper   = strings.NewReplacer("\\", "\\\\", "\n", "\\n", "\t", "\\t")
	unescaper = strings.NewReplacer("\\\\", "\\", "\\n", "\n", "\\t", "\t")
)

// withFileLock opens the history file and runs fn while holding an
// exclusive flock on it. The lock is scoped to the file identity, so
// engines in separate processes sharing a path serialize here.
func withFileLock(path string, fn func(f *os.File) error) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	fd := int(f.Fd())
	for {
		err = unix.Flock(fd, unix.LOCK_EX)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		return err
	}
	defer unix.Flock(fd, unix.LOCK_UN)

	return fn(f)
}

// readFile loads all entries from the history file under the lock.
func readFile(path string) ([]Item, error) {
	var items []Item
	err := withFileLock(path, func(f *os.File) error {
		var err error
		items, err = decodeEntries(f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// appendFile adds entries to the end of the history file.
func appendFile(path string, items []Item) error {
	return withFileLock(path, func(f *os.File) error {
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			return err
		}
		return writeEntries(f, items)
	})
}

// mergeFile performs a read-merge-write cycle: entries already in the
// file (possibly written by another process since we loaded) are kept,
// ours appended after them, and the merged log rewritten trimmed to
// capacity.
func mergeFile(path string, items []Item, capacity int) error {
	return withFileLock(path, func(f *os.File) error {
		existing, err := decodeEntries(f)
		if err != nil {
			return err
		}
		merged := append(existing, items...)
		if over := len(merged) - capacity; over > 0 {
			merged = merged[over:]
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}
		if err := f.Truncate(0); err != nil {
			return err
		}
		if err := writeEntries(f, merged); err != nil {
			return err
		}
		return f.Sync()
	})
}

// decodeEntries parses the newline-delimited format. Unparseable or
// oversized lines are skipped; a truncated final line still yields an
// entry. Decoding never fails on content, only on I/O.
func decodeEntries(r io.Reader) ([]Item, error) {
	var items []Item
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxEntryLen)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		items = append(items, Item{Text: unescaper.Replace(line)})
	}
	if err := sc.Err(); err != nil {
		if err == bufio.ErrTooLong {
			// Give up on the remainder but keep what parsed.
			return items, nil
		}
		return nil, err
	}
	return items, nil
}

// writeEntries emits one escaped line per entry. Only the text is
// persisted, matching pre-existing history files.
func writeEntries(w io.Writer, items []Item) error {
	bw := bufio.NewWriter(w)
	for _, item := range items {
		if item.Text == "" {
			continue
		}
		if _, err := bw.WriteString(escaper.Replace(item.Text)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
