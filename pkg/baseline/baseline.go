// Package baseline provides profile baseline save/load and drift detection.
package baseline

import (
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/danpilch/cuprof/pkg/trace"
)

// SectionStat aggregates every occurrence of one section id across a replay.
type SectionStat struct {
	ID      string `json:"id"`
	Calls   int    `json:"calls"`
	TotalCU uint64 `json:"total_cu"`
	NetCU   uint64 `json:"net_cu"`
	NetHeap uint64 `json:"net_heap,omitempty"`
}

// FormatVersion is written into every saved baseline; files with a newer
// version are rejected on load.
const FormatVersion = 1

// Baseline is a snapshot of per-section consumption for one script.
type Baseline struct {
	Version   int               `json:"version"`
	Name      string            `json:"name"`
	Timestamp time.Time         `json:"timestamp"`
	Hostname  string            `json:"hostname"`
	Script    string            `json:"script,omitempty"`
	Sections  []SectionStat     `json:"sections"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Aggregate sums the flushed sections of every completed instruction by id.
// Aborted instructions contribute nothing.
func Aggregate(results []trace.Result) []SectionStat {
	byID := make(map[string]*SectionStat)
	for _, res := range results {
		if res.Report == nil {
			continue
		}
		for _, rec := range res.Report.Records() {
			st, ok := byID[rec.ID]
			if !ok {
				st = &SectionStat{ID: rec.ID}
				byID[rec.ID] = st
			}
			st.Calls++
			st.TotalCU += rec.Total
			st.NetCU += rec.Net
			if rec.Heap != nil {
				st.NetHeap += rec.Heap.Net
			}
		}
	}

	stats := make([]SectionStat, 0, len(byID))
	for _, st := range byID {
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].ID < stats[j].ID
	})
	return stats
}

// NewBaseline creates a new baseline from replay results.
func NewBaseline(name, script string, results []trace.Result) *Baseline {
	hostname, _ := os.Hostname()
	aborted := 0
	for _, r := range results {
		if r.Err != nil {
			aborted++
		}
	}
	return &Baseline{
		Version:   FormatVersion,
		Name:      name,
		Timestamp: time.Now(),
		Hostname:  hostname,
		Script:    script,
		Sections:  Aggregate(results),
		Metadata: map[string]string{
			"instructions": strconv.Itoa(len(results)),
			"aborted":      strconv.Itoa(aborted),
		},
	}
}
