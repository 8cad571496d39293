package profiling

// State is the profiling state of one unit of work. It is created when the
// unit starts, mutated by Start and End, read once by FlushReport and then
// reset. A State must not be shared between units of work.
type State struct {
	clock     SequenceClock
	active    ActiveStack
	completed CompletedLog
}

// New returns an empty State.
func New() *State {
	return &State{}
}

// Start opens a section. resource is the current remaining value of the
// compute meter; heap is the current heap value, or 0 to disable heap
// tracking for this section.
func (s *State) Start(id string, resource, heap uint64) {
	s.active.Push(ActiveEntry{
		ID:            id,
		StartResource: resource,
		StartHeap:     heap,
		StartSequence: s.clock.Next(),
	})
}

// End closes the most recently started section with the given ID.
//
// It returns an *UnmatchedEndError, leaving all state untouched, if no such
// section is active. If resource is larger than the value seen at start the
// section is recorded with a zero total and a *ResourceIncreaseError is
// returned.
func (s *State) End(id string, resource, heap uint64) error {
	active, ok := s.active.TakeMatching(id)
	if !ok {
		return &UnmatchedEndError{ID: id}
	}

	var err error
	total := active.StartResource - resource
	if resource > active.StartResource {
		total = 0
		err = &ResourceIncreaseError{ID: id, Start: active.StartResource, End: resource}
	}

	var usage *HeapUsage
	if active.HeapRequested() && heap > 0 {
		usage = &HeapUsage{
			Start: active.StartHeap,
			End:   heap,
			Total: saturatingSub(heap, active.StartHeap),
		}
	}

	s.completed.Append(CompletedEntry{
		ID:            active.ID,
		StartSequence: active.StartSequence,
		EndSequence:   s.clock.Next(),
		StartResource: active.StartResource,
		EndResource:   resource,
		Total:         total,
		Heap:          usage,
	})
	return err
}

// HasActive reports whether any section is still open.
func (s *State) HasActive() bool {
	return s.active.Len() > 0
}

// Active returns the open sections, oldest first.
func (s *State) Active() []ActiveEntry {
	return s.active.Entries()
}

// CompletedCount returns the number of ended sections.
func (s *State) CompletedCount() int {
	return s.completed.Len()
}

// Completed returns the ended sections in end order. Net values are not yet
// computed.
func (s *State) Completed() []CompletedEntry {
	return s.completed.Entries()
}

// Reset discards all state, including open sections.
func (s *State) Reset() {
	s.active.Reset()
	s.completed.Reset()
	s.clock.Reset()
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
