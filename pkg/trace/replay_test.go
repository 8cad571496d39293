package trace

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/danpilch/cuprof/pkg/invoke"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestRun(t *testing.T) {
	instrs, err := Parse(strings.NewReader(sampleScript))
	if err != nil {
		t.Fatal(err)
	}

	results, err := Run(context.Background(), instrs, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	res := results[0]
	if res.Err != nil {
		t.Fatalf("unexpected instruction error: %v", res.Err)
	}
	// 150 + 300 + 20 + log(100) + units(100)
	if res.Consumed != 670 {
		t.Errorf("Expected 670 consumed, got %d", res.Consumed)
	}

	want := []string{
		"Program log: hello world",
		"Program consumption: 9330 units remaining",
		"validate consumed 300 CU (net 300 CU)",
		"alloc consumed 20 CU (net 20 CU)",
		"HEAP :   400 heap (net   400 heap) remaining  1400",
	}
	if len(res.Logs) != len(want) {
		t.Fatalf("Expected logs %q, got %q", want, res.Logs)
	}
	for i := range want {
		if res.Logs[i] != want[i] {
			t.Errorf("log %d: expected %q, got %q", i, want[i], res.Logs[i])
		}
	}

	if results[1].Budget != DefaultBudget {
		t.Errorf("Expected default budget, got %d", results[1].Budget)
	}
}

func TestRun_BudgetExceededDiscardsProfile(t *testing.T) {
	script := `
instruction greedy budget=100
start s
consume 500
end s
instruction after budget=100
start t
consume 10
end t
`
	instrs, err := Parse(strings.NewReader(script))
	if err != nil {
		t.Fatal(err)
	}
	logger, hook := test.NewNullLogger()

	results, err := Run(context.Background(), instrs, Options{Logger: logger})
	if err != nil {
		t.Fatal(err)
	}

	if !errors.Is(results[0].Err, invoke.ErrBudgetExceeded) {
		t.Errorf("Expected budget error, got %v", results[0].Err)
	}
	if results[0].Report != nil {
		t.Error("Expected aborted instruction to have no report")
	}
	if results[0].Consumed != 100 {
		t.Errorf("Expected whole budget consumed, got %d", results[0].Consumed)
	}
	if len(hook.Entries) != 1 {
		t.Errorf("Expected one warning, got %d", len(hook.Entries))
	}

	if results[1].Err != nil || len(results[1].Report.Entries) != 1 {
		t.Errorf("Expected next instruction to replay normally, got %+v", results[1])
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Run(ctx, []Instruction{{Name: "a"}}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestRunInstruction_InterleavedAndUnmatched(t *testing.T) {
	instr := Instruction{
		Name:   "mixed",
		Budget: 1000,
		Events: []Event{
			{Op: OpStart, ID: "A"},
			{Op: OpConsume, Units: 100},
			{Op: OpStart, ID: "B"},
			{Op: OpConsume, Units: 100},
			{Op: OpEnd, ID: "A"},
			{Op: OpConsume, Units: 100},
			{Op: OpEnd, ID: "B"},
			{Op: OpEnd, ID: "C"},
		},
	}
	res := RunInstruction(instr, Options{})
	if res.Err != nil {
		t.Fatal(res.Err)
	}

	want := []string{
		"Profiling error: No active profiling section found for ID: C",
		"A consumed 200 CU (net 200 CU)",
		"B consumed 200 CU (net 200 CU)",
	}
	if len(res.Logs) != len(want) {
		t.Fatalf("Expected %q, got %q", want, res.Logs)
	}
	for i := range want {
		if res.Logs[i] != want[i] {
			t.Errorf("log %d: expected %q, got %q", i, want[i], res.Logs[i])
		}
	}
}
