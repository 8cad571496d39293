package profiling

import (
	"fmt"
	"sort"
)

// HeapRecord holds the heap figures of an output record.
type HeapRecord struct {
	Total     uint64 `json:"total_heap"`
	Net       uint64 `json:"net_heap"`
	Remaining uint64 `json:"remaining_heap"`
}

// Record is the output form of one completed section.
type Record struct {
	ID    string      `json:"id"`
	Total uint64      `json:"total_cu"`
	Net   uint64      `json:"net_cu"`
	Heap  *HeapRecord `json:"heap,omitempty"`
}

// Lines renders the record in the log format consumed by existing tooling.
func (r Record) Lines() []string {
	lines := []string{fmt.Sprintf("%s consumed %d CU (net %d CU)", r.ID, r.Total, r.Net)}
	if r.Heap != nil {
		lines = append(lines, fmt.Sprintf("HEAP : %5d heap (net %5d heap) remaining %5d",
			r.Heap.Total, r.Heap.Net, r.Heap.Remaining))
	}
	return lines
}

// Report is the finalized profile of one unit of work.
type Report struct {
	// Entries are ordered by ascending start sequence and carry net values.
	Entries []CompletedEntry
	// Unterminated lists sections still open at flush. They are never
	// emitted as records.
	Unterminated []ActiveEntry
}

// Records converts the entries to output records, preserving order.
func (r *Report) Records() []Record {
	records := make([]Record, 0, len(r.Entries))
	for _, e := range r.Entries {
		rec := Record{ID: e.ID, Total: e.Total, Net: e.Net}
		if e.Heap != nil {
			rec.Heap = &HeapRecord{
				Total:     e.Heap.Total,
				Net:       e.Heap.Net,
				Remaining: e.Heap.Remaining(),
			}
		}
		records = append(records, rec)
	}
	return records
}

// Lines renders every record in order.
func (r *Report) Lines() []string {
	var lines []string
	for _, rec := range r.Records() {
		lines = append(lines, rec.Lines()...)
	}
	return lines
}

// FlushReport finalizes net values, orders the completed sections by start
// sequence and resets the state for the next unit of work.
func (s *State) FlushReport() *Report {
	entries := s.completed.Entries()
	ComputeNet(entries)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StartSequence < entries[j].StartSequence
	})

	report := &Report{
		Entries:      entries,
		Unterminated: s.active.Entries(),
	}
	s.Reset()
	return report
}

// Flush returns the ordered output records and resets the state.
func (s *State) Flush() []Record {
	return s.FlushReport().Records()
}
