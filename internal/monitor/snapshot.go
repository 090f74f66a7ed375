package monitor

import "sort"

// snapshotCapacity bounds the initial snapshot regardless of input size.
const snapshotCapacity = 250

// Line is one snapshot entry: a chronological sort key and the line text
// without its trailing newline.
type Line struct {
	Key  uint64
	Text string
}

// snapshot is the capacity-bounded merge buffer shared across all targets
// during the initial scan. Entries stay sorted ascending by key; when two
// keys tie, scan order wins (the rotated file is scanned first, so its lines
// sort ahead of same-keyed lines from the current file).
type snapshot struct {
	lines []Line
}

// add merge-inserts a line and reports whether it was retained. Lines older
// than the current minimum are discarded outright: the buffer is already
// full of newer content, so inserting at the front would only be evicted
// again.
func (s *snapshot) add(key uint64, text string) bool {
	entry := Line{Key: key, Text: text}
	switch {
	case len(s.lines) == 0:
		s.lines = append(s.lines, entry)
	case key < s.lines[0].Key:
		return false
	case key >= s.lines[len(s.lines)-1].Key:
		s.lines = append(s.lines, entry)
	default:
		idx := sort.Search(len(s.lines), func(i int) bool { return s.lines[i].Key > key })
		s.lines = append(s.lines, Line{})
		copy(s.lines[idx+1:], s.lines[idx:])
		s.lines[idx] = entry
	}
	if excess := len(s.lines) - snapshotCapacity; excess > 0 {
		kept := len(s.lines) - excess
		copy(s.lines, s.lines[excess:])
		s.lines = s.lines[:kept]
	}
	return true
}
