package debug

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/danpilch/cuprof/pkg/profiling"
	"github.com/danpilch/cuprof/pkg/trace"
)

func TestTraceLogger(t *testing.T) {
	var buf bytes.Buffer
	tl := NewTraceLogger(&buf)
	tl.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC) }

	tl.Log("ix", "start", "id=a")
	tl.Log("ix", "start", "id=b")
	tl.Log("ix", "end", "id=b")
	tl.SetEnabled(false)
	tl.Log("ix", "end", "id=a")
	tl.SetEnabled(true)
	tl.Log("ix", "start", "id=c")

	want := "[TRACE 03:04:05.006] ix #1 start id=a\n" +
		"[TRACE 03:04:05.006] ix #2   start id=b\n" +
		"[TRACE 03:04:05.006] ix #3   end id=b\n" +
		"[TRACE 03:04:05.006] ix #5 start id=c\n"
	if buf.String() != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, buf.String())
	}
	if n := tl.Calls("ix"); n != 5 {
		t.Errorf("Expected 5 traced calls, got %d", n)
	}
}

func TestTraceLogger_UnmatchedEndKeepsDepth(t *testing.T) {
	var buf bytes.Buffer
	tl := NewTraceLogger(&buf)
	tl.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	tl.Log("ix", "start", "id=a")
	tl.Log("ix", "unmatched-end", "id=ghost")
	tl.Log("ix", "start", "id=b")

	want := "[TRACE 03:04:05.000] ix #1 start id=a\n" +
		"[TRACE 03:04:05.000] ix #2   unmatched-end id=ghost\n" +
		"[TRACE 03:04:05.000] ix #3   start id=b\n"
	if buf.String() != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, buf.String())
	}
}

func TestDumpRawEntries(t *testing.T) {
	s := profiling.New()
	s.Start("done", 1000, 5)
	s.End("done", 900, 9)
	s.Start("open", 900, 0)

	var buf bytes.Buffer
	DumpRawEntries(&buf, "ix", s.FlushReport())
	out := buf.String()
	for _, want := range []string{"done", "0..1", "1000..900", "100/100", "5..9 net 4", "open", "unterminated"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected dump to contain %q:\n%s", want, out)
		}
	}

	buf.Reset()
	DumpRawEntries(&buf, "ix", nil)
	if !strings.Contains(buf.String(), "aborted") {
		t.Error("Expected aborted notice for nil report")
	}
}

func TestTimingReport(t *testing.T) {
	timings := Timings([]trace.Result{
		{Name: "a", Duration: time.Millisecond, Consumed: 500},
		{Name: "b", Duration: 2 * time.Millisecond, Consumed: 100, Err: errors.New("budget")},
	})
	if !timings[1].Aborted {
		t.Error("Expected b to be marked aborted")
	}
	if got := timings[0].UnitsPerMillisecond(); got != 500 {
		t.Errorf("Expected 500 CU/ms, got %v", got)
	}

	var buf bytes.Buffer
	TimingReport(&buf, timings)
	out := buf.String()
	for _, want := range []string{"3ms", "600", "b (aborted)"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected report to contain %q:\n%s", want, out)
		}
	}
}

func TestPprofServer(t *testing.T) {
	srv, err := StartPprofServer("127.0.0.1:0", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Stop()

	resp, err := http.Get("http://" + srv.Addr() + "/debug/pprof/cmdline")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}
