package proc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func treeEntries() []Entry {
	return []Entry{
		{PID: 1, PPID: 0, Name: "systemd", CPUPercent: 0.1},
		{PID: 100, PPID: 1, Name: "sshd", CPUPercent: 0.5},
		{PID: 200, PPID: 100, Name: "bash", CPUPercent: 0.2},
		{PID: 300, PPID: 200, Name: "vim", CPUPercent: 1.5},
		{PID: 400, PPID: 1, Name: "nginx", CPUPercent: 4.0},
		{PID: 401, PPID: 400, Name: "nginx", CPUPercent: 2.0},
		{PID: 402, PPID: 400, Name: "nginx", CPUPercent: 2.0},
	}
}

func treePIDs(rows []TreeRow) []int32 {
	if len(rows) == 0 {
		return nil
	}
	out := make([]int32, len(rows))
	for i, r := range rows {
		out[i] = r.Entry.PID
	}
	return out
}

func TestTreeShape(t *testing.T) {
	rows := Tree(treeEntries(), "")
	require.Len(t, rows, 7)

	// systemd's parent (pid 0) is not listed, so it roots the forest.
	// Children order by CPU descending: nginx master before sshd.
	assert.Equal(t, []int32{1, 400, 401, 402, 100, 200, 300}, treePIDs(rows))

	depths := map[int32]int{}
	for _, r := range rows {
		depths[r.Entry.PID] = r.Depth
	}
	assert.Equal(t, 0, depths[1])
	assert.Equal(t, 1, depths[400])
	assert.Equal(t, 2, depths[401])
	assert.Equal(t, 3, depths[300])
}

func TestTreeOrphanBecomesRoot(t *testing.T) {
	entries := []Entry{
		{PID: 1, PPID: 0, Name: "systemd", CPUPercent: 0.1},
		{PID: 512, PPID: 99, Name: "orphan", CPUPercent: 9.0},
	}

	rows := Tree(entries, "")
	require.Len(t, rows, 2)

	// The orphan's parent exited between refreshes; it is promoted to
	// a root rather than dropped, ordered among roots by CPU.
	assert.Equal(t, []int32{512, 1}, treePIDs(rows))
	assert.Equal(t, 0, rows[0].Depth)
}

func TestTreeSelfParent(t *testing.T) {
	entries := []Entry{
		{PID: 2, PPID: 2, Name: "kthreadd"},
	}

	rows := Tree(entries, "")
	require.Len(t, rows, 1)
	assert.Equal(t, int32(2), rows[0].Entry.PID)
	assert.Equal(t, 0, rows[0].Depth)
}

func TestTreeSiblingOrder(t *testing.T) {
	entries := []Entry{
		{PID: 1, PPID: 0, Name: "init"},
		{PID: 30, PPID: 1, Name: "idle", CPUPercent: 0.0},
		{PID: 20, PPID: 1, Name: "busy", CPUPercent: 8.0},
		{PID: 10, PPID: 1, Name: "idle2", CPUPercent: 0.0},
	}

	rows := Tree(entries, "")
	// CPU descending, then pid ascending between the two idle siblings
	assert.Equal(t, []int32{1, 20, 10, 30}, treePIDs(rows))
}

func TestTreeFilterKeepsMatchingDescendants(t *testing.T) {
	rows := Tree(treeEntries(), "vim")
	require.Len(t, rows, 1)

	// vim's ancestors do not match, but the walk still reaches it, and
	// it keeps its real depth in the hierarchy.
	assert.Equal(t, int32(300), rows[0].Entry.PID)
	assert.Equal(t, 3, rows[0].Depth)
}

func TestTreeFilterMatchesSubtreeMembers(t *testing.T) {
	rows := Tree(treeEntries(), "nginx")
	assert.Equal(t, []int32{400, 401, 402}, treePIDs(rows))
}

func TestTreeFilterNoMatches(t *testing.T) {
	rows := Tree(treeEntries(), "postgres")
	assert.Empty(t, rows)
}

func TestTreeEmpty(t *testing.T) {
	assert.Empty(t, Tree(nil, ""))
}
