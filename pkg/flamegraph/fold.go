// Package flamegraph renders profiled sections as folded stacks and SVG flame
// graphs.
package flamegraph

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/danpilch/cuprof/pkg/profiling"
)

// Fold converts the finalized entries of one instruction into folded stacks
// ("root;outer;inner value"), valued by net CU. Each entry's parent is the
// innermost entry that strictly contains it, so interleaved sections end up
// as siblings. Frame names have ';' and spaces replaced to keep the format
// parseable.
//
// The stacks are a lossy view when containers interleave: with A 0..4,
// B 1..5 and C 2..3, C folds under B only, although the net calculation
// subtracts C from both A and B.
func Fold(root string, entries []profiling.CompletedEntry) map[string]uint64 {
	stacks := make(map[string]uint64)
	for i := range entries {
		path := []string{frameName(entries[i].ID)}
		for cur := i; ; {
			parent := innermostParent(entries, cur)
			if parent < 0 {
				break
			}
			path = append(path, frameName(entries[parent].ID))
			cur = parent
		}
		if root != "" {
			path = append(path, frameName(root))
		}

		// Collected leaf first.
		for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
			path[l], path[r] = path[r], path[l]
		}
		stacks[strings.Join(path, ";")] += entries[i].Net
	}
	return stacks
}

// innermostParent returns the index of the containing entry with the latest
// start sequence, or -1.
func innermostParent(entries []profiling.CompletedEntry, child int) int {
	best := -1
	for j := range entries {
		if j == child || !profiling.IsChild(entries[j], entries[child]) {
			continue
		}
		if best < 0 || entries[j].StartSequence > entries[best].StartSequence {
			best = j
		}
	}
	return best
}

func frameName(id string) string {
	return strings.NewReplacer(";", "_", " ", "_").Replace(id)
}

// WriteFolded writes stacks in folded format, sorted for deterministic output.
func WriteFolded(w io.Writer, stacks map[string]uint64) error {
	keys := make([]string, 0, len(stacks))
	for k := range stacks {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s %d\n", k, stacks[k]); err != nil {
			return err
		}
	}
	return nil
}

// ReadFolded parses folded stacks written by WriteFolded. Malformed lines are
// skipped.
func ReadFolded(r io.Reader) (map[string]uint64, error) {
	stacks := make(map[string]uint64)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		idx := strings.LastIndexByte(line, ' ')
		if idx <= 0 {
			continue
		}
		v, err := strconv.ParseUint(line[idx+1:], 10, 64)
		if err != nil {
			continue
		}
		stacks[line[:idx]] += v
	}
	return stacks, scanner.Err()
}
