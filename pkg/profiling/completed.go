package profiling

// HeapUsage is present on a completed entry only when both its start and end
// calls tracked heap. Net is filled in by ComputeNet.
type HeapUsage struct {
	Start uint64
	End   uint64
	Total uint64
	Net   uint64
}

// Remaining returns the heap value reported by the end call.
func (h *HeapUsage) Remaining() uint64 {
	return h.End
}

// CompletedEntry is a section that has ended. Total is raw consumption; Net is
// computed once all sections of the unit of work have ended.
type CompletedEntry struct {
	ID            string
	StartSequence uint64
	EndSequence   uint64
	StartResource uint64
	EndResource   uint64
	Total         uint64
	Net           uint64
	// Heap is nil when heap tracking is disabled for this section.
	Heap *HeapUsage
}

// HeapEnabled reports whether heap figures exist for this entry.
func (e CompletedEntry) HeapEnabled() bool {
	return e.Heap != nil
}

// CompletedLog is the append-only list of ended sections for one unit of work.
type CompletedLog struct {
	entries []CompletedEntry
}

// Append adds an ended section.
func (l *CompletedLog) Append(e CompletedEntry) {
	l.entries = append(l.entries, e)
}

// Len returns the number of completed entries.
func (l *CompletedLog) Len() int {
	return len(l.entries)
}

// Entries returns a deep copy of the log in append (end) order.
func (l *CompletedLog) Entries() []CompletedEntry {
	return cloneEntries(l.entries)
}

// Reset empties the log.
func (l *CompletedLog) Reset() {
	l.entries = nil
}

func cloneEntries(in []CompletedEntry) []CompletedEntry {
	out := make([]CompletedEntry, len(in))
	for i, e := range in {
		if e.Heap != nil {
			h := *e.Heap
			e.Heap = &h
		}
		out[i] = e
	}
	return out
}
