package benchmark

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/danpilch/cuprof/pkg/trace"
)

func TestRun(t *testing.T) {
	instrs := []trace.Instruction{{
		Name:   "ix",
		Budget: 1000,
		Events: []trace.Event{
			{Op: trace.OpStart, ID: "a"},
			{Op: trace.OpConsume, Units: 10},
			{Op: trace.OpEnd, ID: "a"},
		},
	}}

	results, err := Run(context.Background(), instrs, Options{Iterations: 5, Warmup: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	r := results[0]
	if !r.Deterministic() || r.MaxCU != 10 {
		t.Errorf("Expected deterministic 10 CU, got %d..%d", r.MinCU, r.MaxCU)
	}
	if r.Sections != 1 {
		t.Errorf("Expected 1 section, got %d", r.Sections)
	}
	if r.Aborted {
		t.Error("Expected no abort")
	}
	if r.Profiled.P50 > r.Profiled.P99 {
		t.Errorf("P50 %v above P99 %v", r.Profiled.P50, r.Profiled.P99)
	}

	var buf bytes.Buffer
	RenderResults(&buf, results, MeasureOverhead())
	for _, want := range []string{"ix", "PROFILING", "allocs/op"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Run(ctx, []trace.Instruction{{Name: "ix"}}, DefaultOptions())
	if err == nil || len(results) != 0 {
		t.Errorf("Expected cancellation before any instruction, got %d results, %v", len(results), err)
	}
}

func TestRun_Aborted(t *testing.T) {
	instrs := []trace.Instruction{{
		Name:   "broke",
		Budget: 5,
		Events: []trace.Event{{Op: trace.OpConsume, Units: 10}},
	}}
	results, err := Run(context.Background(), instrs, Options{Iterations: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !results[0].Aborted || results[0].Sections != 0 {
		t.Errorf("Expected aborted result without sections, got %+v", results[0])
	}
}

func TestResult_OverheadPct(t *testing.T) {
	r := Result{
		Profiled:   Latency{P50: 150 * time.Microsecond},
		Unprofiled: Latency{P50: 100 * time.Microsecond},
	}
	if got := r.OverheadPct(); got != 50 {
		t.Errorf("Expected 50%%, got %v", got)
	}
	if (Result{}).OverheadPct() != 0 {
		t.Error("Expected 0 without an unprofiled baseline")
	}
}

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tests := []struct {
		p    int
		want time.Duration
	}{
		{50, 5},
		{95, 10},
		{0, 1},
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.p); got != tt.want {
			t.Errorf("percentile(%d) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if percentile(nil, 50) != 0 {
		t.Error("Expected 0 for empty input")
	}
}
