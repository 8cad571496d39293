package debug

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// TraceLogger writes one line per profiling syscall, numbered per instruction
// and indented by the number of sections open at that point. An
// "unmatched-end" step leaves the depth alone. It satisfies invoke.Tracer.
type TraceLogger struct {
	mu       sync.Mutex
	writer   io.Writer
	disabled bool
	now      func() time.Time
	calls    map[string]int
	depth    map[string]int
}

// NewTraceLogger creates a trace logger writing to w (stderr if nil).
func NewTraceLogger(w io.Writer) *TraceLogger {
	if w == nil {
		w = os.Stderr
	}
	return &TraceLogger{
		writer: w,
		now:    time.Now,
		calls:  make(map[string]int),
		depth:  make(map[string]int),
	}
}

// SetEnabled toggles tracing. Depth is still tracked while disabled so the
// indentation stays right when tracing resumes.
func (t *TraceLogger) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disabled = !enabled
}

// Log records a profiling syscall of an instruction.
func (t *TraceLogger) Log(instruction, step, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.calls[instruction]++
	depth := t.depth[instruction]
	switch step {
	case "start":
		t.depth[instruction]++
	case "end":
		depth = max(depth-1, 0)
		t.depth[instruction] = depth
	}

	if t.disabled {
		return
	}
	fmt.Fprintf(t.writer, "[TRACE %s] %s #%d %s%s %s\n",
		t.now().Format("15:04:05.000"), instruction, t.calls[instruction],
		strings.Repeat("  ", depth), step, detail)
}

// Calls reports how many syscalls were traced for an instruction.
func (t *TraceLogger) Calls(instruction string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[instruction]
}
