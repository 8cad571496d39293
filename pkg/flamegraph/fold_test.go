package flamegraph

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/danpilch/cuprof/pkg/profiling"
)

func TestFold(t *testing.T) {
	s := profiling.New()
	s.Start("outer", 1000, 0)
	s.Start("inner", 900, 0)
	s.Start("A", 850, 0)
	s.Start("B", 800, 0)
	s.End("A", 750, 0)
	s.End("B", 700, 0)
	s.End("inner", 600, 0)
	s.End("outer", 300, 0)

	stacks := Fold("ix", s.FlushReport().Entries)
	want := map[string]uint64{
		"ix;outer":         200, // 700 - 300 - 100 - 100
		"ix;outer;inner":   100, // 300 - 100 - 100
		"ix;outer;inner;A": 100,
		"ix;outer;inner;B": 100,
	}
	if len(stacks) != len(want) {
		t.Fatalf("Expected %v, got %v", want, stacks)
	}
	for k, v := range want {
		if stacks[k] != v {
			t.Errorf("%s: expected %d, got %d", k, v, stacks[k])
		}
	}
}

func TestFold_DuplicateIDsMerge(t *testing.T) {
	s := profiling.New()
	s.Start("loop body", 1000, 0)
	s.End("loop body", 900, 0)
	s.Start("loop body", 900, 0)
	s.End("loop body", 850, 0)

	stacks := Fold("", s.FlushReport().Entries)
	if len(stacks) != 1 || stacks["loop_body"] != 150 {
		t.Errorf("Expected loop_body=150, got %v", stacks)
	}
}

func TestWriteReadFolded(t *testing.T) {
	stacks := map[string]uint64{"a;b": 3, "a": 7}
	var buf bytes.Buffer
	if err := WriteFolded(&buf, stacks); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "a 7\na;b 3\n" {
		t.Errorf("unexpected folded output %q", buf.String())
	}

	parsed, err := ReadFolded(strings.NewReader(buf.String() + "garbage\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed) != 2 || parsed["a;b"] != 3 || parsed["a"] != 7 {
		t.Errorf("unexpected parsed stacks %v", parsed)
	}
}

func TestFold_InterleavedContainers(t *testing.T) {
	entries := []profiling.CompletedEntry{
		{ID: "A", StartSequence: 0, EndSequence: 4, Net: 10},
		{ID: "B", StartSequence: 1, EndSequence: 5, Net: 20},
		{ID: "C", StartSequence: 2, EndSequence: 3, Net: 5},
	}
	stacks := Fold("ix", entries)
	want := map[string]uint64{"ix;A": 10, "ix;B": 20, "ix;B;C": 5}
	if len(stacks) != len(want) {
		t.Fatalf("Expected %v, got %v", want, stacks)
	}
	for k, v := range want {
		if stacks[k] != v {
			t.Errorf("stack %q: expected %d, got %d", k, v, stacks[k])
		}
	}
}

func TestGenerateSVG(t *testing.T) {
	var buf bytes.Buffer
	err := GenerateSVG(map[string]uint64{"ix;outer": 200, "ix;outer;inner": 100}, &buf, DefaultSVGOptions())
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"<svg", "(300 CU)", "outer", "</svg>"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected SVG to contain %q", want)
		}
	}

	if !strings.Contains(out, "outer: 300 CU total, 200 CU net") {
		t.Errorf("Expected outer tooltip with inclusive and net CU, got:\n%s", out)
	}

	if err := GenerateSVG(map[string]uint64{}, &buf, SVGOptions{}); !errors.Is(err, ErrNoUnits) {
		t.Errorf("Expected ErrNoUnits for empty stacks, got %v", err)
	}
}
