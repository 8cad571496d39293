package output

import (
	"strings"
	"sync"

	"github.com/danpilch/cuprof/pkg/trace"
)

// SeriesKey identifies a section within an instruction across watch
// iterations.
type SeriesKey struct {
	Instruction string
	Section     string
}

// SparklineTracker keeps a rolling window of net CU per section across watch
// iterations.
type SparklineTracker struct {
	mu     sync.Mutex
	series map[SeriesKey][]uint64
	keys   []SeriesKey
	window int
}

// NewSparklineTracker creates a tracker keeping the last window points per
// section.
func NewSparklineTracker(window int) *SparklineTracker {
	if window < 1 {
		window = 20
	}
	return &SparklineTracker{
		series: make(map[SeriesKey][]uint64),
		window: window,
	}
}

// Observe adds one point per section for a replay iteration. A section id
// that completes several times in one instruction contributes its summed net
// CU as a single point. A section seen in an earlier iteration but absent from
// a completed instruction gets a 0 point, keeping series aligned. Aborted
// instructions add nothing.
func (s *SparklineTracker) Observe(results []trace.Result) {
	points := make(map[SeriesKey]uint64)
	var order []SeriesKey
	completed := make(map[string]bool)
	for _, res := range results {
		if res.Report == nil {
			continue
		}
		completed[res.Name] = true
		for _, e := range res.Report.Entries {
			key := SeriesKey{Instruction: res.Name, Section: e.ID}
			if _, seen := points[key]; !seen {
				order = append(order, key)
			}
			points[key] += e.Net
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range s.keys {
		if _, ok := points[key]; !ok && completed[key.Instruction] {
			s.add(key, 0)
		}
	}
	for _, key := range order {
		if _, known := s.series[key]; !known {
			s.keys = append(s.keys, key)
		}
		s.add(key, points[key])
	}
}

func (s *SparklineTracker) add(key SeriesKey, v uint64) {
	vals := append(s.series[key], v)
	if len(vals) > s.window {
		vals = vals[len(vals)-s.window:]
	}
	s.series[key] = vals
}

// Sparkline renders the window for key, oldest point first.
func (s *SparklineTracker) Sparkline(key SeriesKey) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return renderSparkline(s.series[key])
}

// Delta is the change in net CU between the last two iterations.
func (s *SparklineTracker) Delta(key SeriesKey) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	vals := s.series[key]
	if len(vals) < 2 {
		return 0
	}
	return int64(vals[len(vals)-1]) - int64(vals[len(vals)-2])
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

func renderSparkline(vals []uint64) string {
	if len(vals) == 0 {
		return ""
	}

	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	top := uint64(len(sparkBlocks) - 1)
	var b strings.Builder
	for _, v := range vals {
		var idx uint64
		if hi > lo {
			idx = (v - lo) * top / (hi - lo)
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}
