package profiling

// ActiveEntry is a section that has started but not yet ended.
type ActiveEntry struct {
	ID            string
	StartResource uint64
	// StartHeap is zero when the start call did not request heap tracking.
	StartHeap     uint64
	StartSequence uint64
}

// HeapRequested reports whether the start call asked for heap tracking.
func (e ActiveEntry) HeapRequested() bool {
	return e.StartHeap > 0
}

// ActiveStack holds started sections. Entries with the same ID may coexist and
// are told apart only by their start sequence.
type ActiveStack struct {
	entries []ActiveEntry
}

// Push records a started section on top of the stack.
func (s *ActiveStack) Push(e ActiveEntry) {
	s.entries = append(s.entries, e)
}

// TakeMatching removes and returns the most recently pushed entry with the
// given ID. Entries above and below it keep their relative order, so sections
// that interleave with the match survive untouched.
func (s *ActiveStack) TakeMatching(id string) (ActiveEntry, bool) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].ID != id {
			continue
		}
		e := s.entries[i]
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
		return e, true
	}
	return ActiveEntry{}, false
}

// Len returns the number of active entries.
func (s *ActiveStack) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the active entries, oldest first.
func (s *ActiveStack) Entries() []ActiveEntry {
	out := make([]ActiveEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Reset drops every active entry.
func (s *ActiveStack) Reset() {
	s.entries = nil
}
