package baseline

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danpilch/cuprof/pkg/profiling"
	"github.com/danpilch/cuprof/pkg/trace"
)

func reportOf(f func(s *profiling.State)) *profiling.Report {
	s := profiling.New()
	f(s)
	return s.FlushReport()
}

func TestAggregate(t *testing.T) {
	results := []trace.Result{
		{Name: "a", Report: reportOf(func(s *profiling.State) {
			s.Start("hash", 1000, 10)
			s.End("hash", 900, 30)
			s.Start("hash", 900, 0)
			s.End("hash", 850, 0)
		})},
		{Name: "b", Report: reportOf(func(s *profiling.State) {
			s.Start("sig", 500, 0)
			s.Start("hash", 450, 0)
			s.End("hash", 400, 0)
			s.End("sig", 100, 0)
		})},
		{Name: "aborted"},
	}

	stats := Aggregate(results)
	if len(stats) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(stats))
	}

	hash, sig := stats[0], stats[1]
	if hash.ID != "hash" || hash.Calls != 3 || hash.TotalCU != 200 || hash.NetCU != 200 || hash.NetHeap != 20 {
		t.Errorf("unexpected hash stat: %+v", hash)
	}
	if sig.ID != "sig" || sig.TotalCU != 400 || sig.NetCU != 350 {
		t.Errorf("unexpected sig stat: %+v", sig)
	}
}

func TestStore(t *testing.T) {
	store := NewStore(t.TempDir())
	b := &Baseline{Version: FormatVersion, Name: "main", Sections: []SectionStat{{ID: "x", Calls: 1, NetCU: 42}}}
	if err := store.Save(b); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(&Baseline{Name: "feature"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load("main")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Sections) != 1 || loaded.Sections[0].NetCU != 42 {
		t.Errorf("unexpected loaded baseline: %+v", loaded)
	}

	names, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "feature" || names[1] != "main" {
		t.Errorf("Expected [feature main], got %v", names)
	}

	if err := store.Delete("feature"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load("feature"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete("feature"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestStore_RejectsBadNames(t *testing.T) {
	store := NewStore(t.TempDir())
	for _, name := range []string{"", "..", "a/b", `a\b`} {
		if err := store.Save(&Baseline{Name: name}); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Save(%q): expected ErrInvalidName, got %v", name, err)
		}
	}
}

func TestStore_MissingDirIsEmpty(t *testing.T) {
	names, err := NewStore(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil || names != nil {
		t.Errorf("Expected empty list for missing dir, got %v, %v", names, err)
	}
}

func TestStore_RejectsNewerVersion(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`{"version": 99, "name": "future"}`)
	if err := os.WriteFile(filepath.Join(dir, "future.json"), data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(dir).Load("future"); err == nil {
		t.Error("Expected error loading a newer baseline version")
	}
}

func TestNewBaseline_Metadata(t *testing.T) {
	b := NewBaseline("ci", "ix.trace", []trace.Result{{Name: "a"}, {Name: "b", Err: errors.New("budget")}})
	if b.Version != FormatVersion || b.Metadata["instructions"] != "2" || b.Metadata["aborted"] != "1" {
		t.Errorf("unexpected baseline header: %+v", b)
	}
}

func TestCompare(t *testing.T) {
	base := &Baseline{Name: "b", Sections: []SectionStat{
		{ID: "steady", NetCU: 1000},
		{ID: "slower", NetCU: 1000},
		{ID: "faster", NetCU: 1000},
		{ID: "nudged", NetCU: 1000},
		{ID: "removed", NetCU: 10},
	}}
	current := []SectionStat{
		{ID: "steady", NetCU: 1010},
		{ID: "slower", NetCU: 1500},
		{ID: "faster", NetCU: 500},
		{ID: "nudged", NetCU: 1100},
		{ID: "added", NetCU: 5},
	}

	got := map[string]Severity{}
	for _, c := range Compare(base, current, DefaultThresholds()) {
		got[c.ID] = c.Severity
	}
	want := map[string]Severity{
		"steady":  SeverityNone,
		"slower":  SeverityRegress,
		"faster":  SeverityMajor,
		"nudged":  SeverityMinor,
		"added":   SeverityNew,
		"removed": SeverityGone,
	}
	for id, sev := range want {
		if got[id] != sev {
			t.Errorf("%s: expected %s, got %s", id, sev, got[id])
		}
	}
}

func TestRenderComparison(t *testing.T) {
	base := &Baseline{Name: "b", Sections: []SectionStat{{ID: "x", NetCU: 100}}}
	comps := Compare(base, []SectionStat{{ID: "x", NetCU: 200}}, DefaultThresholds())

	var buf bytes.Buffer
	RenderComparison(&buf, base, comps)
	if !strings.Contains(buf.String(), "1 sections regressed.") {
		t.Errorf("Expected regression summary, got:\n%s", buf.String())
	}
}
