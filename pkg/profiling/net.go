package profiling

// IsChild reports whether other lies strictly inside parent in sequence space.
// A section that starts inside parent but ends after it is an interleaved
// sibling, not a child.
func IsChild(parent, other CompletedEntry) bool {
	return other.StartSequence > parent.StartSequence && other.EndSequence < parent.EndSequence
}

// ComputeNet sets Net (and Heap.Net where heap is tracked) on every entry by
// subtracting the totals of its strictly nested children. It only reads
// totals, so calling it again on the same entries yields the same values.
func ComputeNet(entries []CompletedEntry) {
	for i := range entries {
		var childCU, childHeap uint64
		for j := range entries {
			if i == j || !IsChild(entries[i], entries[j]) {
				continue
			}
			childCU += entries[j].Total
			if entries[j].Heap != nil {
				childHeap += entries[j].Heap.Total
			}
		}

		// Children that interleave among themselves can sum past the parent.
		entries[i].Net = saturatingSub(entries[i].Total, childCU)
		if entries[i].Heap != nil {
			entries[i].Heap.Net = saturatingSub(entries[i].Heap.Total, childHeap)
		}
	}
}
