package proc

import (
	"sort"
	"strings"
)

// SortMode selects the process table ordering.
type SortMode int

const (
	SortCPU SortMode = iota
	SortMemory
	SortPID
	SortName
)

// Next cycles to the following sort mode.
func (m SortMode) Next() SortMode {
	switch m {
	case SortCPU:
		return SortMemory
	case SortMemory:
		return SortPID
	case SortPID:
		return SortName
	default:
		return SortCPU
	}
}

func (m SortMode) String() string {
	switch m {
	case SortCPU:
		return "cpu"
	case SortMemory:
		return "mem"
	case SortPID:
		return "pid"
	case SortName:
		return "name"
	default:
		return "cpu"
	}
}

// ParseSortMode reads a sort mode name, defaulting to cpu.
func ParseSortMode(s string) SortMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mem", "memory":
		return SortMemory
	case "pid":
		return SortPID
	case "name":
		return SortName
	default:
		return SortCPU
	}
}

// Sort orders entries in place. Every mode ends with a pid tiebreak so
// equal rows keep a stable order across refreshes instead of shuffling
// under the cursor.
func Sort(entries []Entry, mode SortMode) {
	var less func(a, b Entry) bool

	switch mode {
	case SortMemory:
		less = func(a, b Entry) bool {
			if a.MemRSS != b.MemRSS {
				return a.MemRSS > b.MemRSS
			}
			return a.PID < b.PID
		}
	case SortPID:
		less = func(a, b Entry) bool {
			return a.PID < b.PID
		}
	case SortName:
		less = func(a, b Entry) bool {
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if an != bn {
				return an < bn
			}
			return a.PID < b.PID
		}
	default: // SortCPU
		less = func(a, b Entry) bool {
			if a.CPUPercent != b.CPUPercent {
				return a.CPUPercent > b.CPUPercent
			}
			if a.MemRSS != b.MemRSS {
				return a.MemRSS > b.MemRSS
			}
			return a.PID < b.PID
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return less(entries[i], entries[j])
	})
}

// Filter returns the entries whose name contains the query,
// case-insensitively. An empty query matches everything.
func Filter(entries []Entry, query string) []Entry {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return entries
	}

	matched := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if Matches(e, needle) {
			matched = append(matched, e)
		}
	}
	return matched
}

// Matches reports whether the entry's name contains an
// already-lowercased needle.
func Matches(e Entry, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Name), needle)
}
