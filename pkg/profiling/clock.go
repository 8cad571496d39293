// Package profiling attributes compute and heap consumption to named sections
// within a single unit of work and computes each section's net consumption.
package profiling

// SequenceClock hands out a strictly increasing number for every start and end
// event, giving a total order that does not depend on wall-clock time.
type SequenceClock struct {
	next uint64
}

// Next returns the current sequence number and advances the clock.
func (c *SequenceClock) Next() uint64 {
	n := c.next
	c.next++
	return n
}

// Peek returns the number the next call to Next will hand out.
func (c *SequenceClock) Peek() uint64 {
	return c.next
}

// Reset rewinds the clock to zero.
func (c *SequenceClock) Reset() {
	c.next = 0
}
