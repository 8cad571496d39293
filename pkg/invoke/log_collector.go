package invoke

// DefaultLogLimit is the byte limit of a LogCollector built with a zero limit.
const DefaultLogLimit = 10_000

const truncatedMessage = "Log truncated"

// LogCollector gathers the log lines of one instruction up to a byte limit.
// A message that would exceed the limit is dropped and the first drop records
// a single truncation marker. Shorter messages that still fit are accepted
// afterwards, so the profile records written at completion usually survive a
// noisy program.
type LogCollector struct {
	messages     []string
	bytesWritten int
	limit        int
	truncated    bool
}

// NewLogCollector returns a collector bounded to limit bytes.
func NewLogCollector(limit int) *LogCollector {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	return &LogCollector{limit: limit}
}

// Log records a message if it fits in the remaining budget.
func (c *LogCollector) Log(msg string) {
	if c.bytesWritten+len(msg) > c.limit {
		if !c.truncated {
			c.truncated = true
			c.messages = append(c.messages, truncatedMessage)
		}
		return
	}
	c.bytesWritten += len(msg)
	c.messages = append(c.messages, msg)
}

// Messages returns a copy of the recorded messages.
func (c *LogCollector) Messages() []string {
	out := make([]string, len(c.messages))
	copy(out, c.messages)
	return out
}

// BytesWritten returns the bytes accepted so far.
func (c *LogCollector) BytesWritten() int {
	return c.bytesWritten
}

// Truncated reports whether messages have been dropped.
func (c *LogCollector) Truncated() bool {
	return c.truncated
}
