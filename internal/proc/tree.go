package proc

import (
	"sort"
	"strings"
)

// TreeRow is one line of the flattened process tree.
type TreeRow struct {
	Entry Entry
	Depth int
}

// Tree arranges entries as a parent/child forest and flattens it
// depth-first. A process whose parent is not in the table is a root;
// that covers init, kernel threads, and orphans whose parent exited
// between refreshes. Siblings are ordered by CPU descending with a pid
// tiebreak. When a filter query is given, only matching rows are
// emitted but the walk still descends through non-matching parents so
// their matching children stay visible.
func Tree(entries []Entry, query string) []TreeRow {
	needle := strings.ToLower(strings.TrimSpace(query))

	present := make(map[int32]bool, len(entries))
	for _, e := range entries {
		present[e.PID] = true
	}

	children := make(map[int32][]Entry, len(entries))
	var roots []Entry
	for _, e := range entries {
		if e.PPID != e.PID && present[e.PPID] {
			children[e.PPID] = append(children[e.PPID], e)
		} else {
			roots = append(roots, e)
		}
	}

	orderSiblings(roots)
	for ppid := range children {
		orderSiblings(children[ppid])
	}

	rows := make([]TreeRow, 0, len(entries))
	visited := make(map[int32]bool, len(entries))

	var walk func(e Entry, depth int)
	walk = func(e Entry, depth int) {
		if visited[e.PID] {
			return
		}
		visited[e.PID] = true

		if Matches(e, needle) {
			rows = append(rows, TreeRow{Entry: e, Depth: depth})
		}
		for _, child := range children[e.PID] {
			walk(child, depth+1)
		}
	}

	for _, root := range roots {
		walk(root, 0)
	}
	return rows
}

func orderSiblings(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.CPUPercent != b.CPUPercent {
			return a.CPUPercent > b.CPUPercent
		}
		return a.PID < b.PID
	})
}
