package proc

import (
	"context"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawCPUPercent(t *testing.T) {
	tests := []struct {
		name     string
		prevTime float64
		curTime  float64
		elapsed  float64
		cores    int
		expected float64
	}{
		{"one core of eight", 10, 11, 1.0, 8, 12.5},
		{"machine saturated", 0, 8, 1.0, 8, 100},
		{"idle", 5, 5, 1.0, 8, 0},
		{"counter reset reports zero", 100, 2, 1.0, 8, 0},
		{"zero elapsed", 1, 2, 0, 8, 0},
		{"clamped at 100", 0, 1000, 1.0, 8, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rawCPUPercent(tt.prevTime, tt.curTime, tt.elapsed, tt.cores)
			assert.InDelta(t, tt.expected, got, 0.01)
		})
	}
}

func TestRefresh(t *testing.T) {
	table := NewTable(nil)

	entries, err := table.Refresh(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	self := findPID(entries, int32(os.Getpid()))
	require.NotNil(t, self, "the test process itself must be listed")
	assert.NotEmpty(t, self.Name)
	assert.NotZero(t, self.StartTime)

	// First refresh has no deltas to work with
	for _, e := range entries {
		assert.Zero(t, e.CPUPercent)
	}

	// Second refresh produces real percentages
	time.Sleep(50 * time.Millisecond)
	entries, err = table.Refresh(context.Background())
	require.NoError(t, err)
	self = findPID(entries, int32(os.Getpid()))
	require.NotNil(t, self)
	assert.GreaterOrEqual(t, self.CPUPercent, 0.0)
	assert.LessOrEqual(t, self.CPUPercent, 100.0)
}

func TestRefreshDropsVanishedProcess(t *testing.T) {
	cmd := exec.Command("sleep", "60")
	require.NoError(t, cmd.Start())
	pid := int32(cmd.Process.Pid)

	table := NewTable(nil)
	entries, err := table.Refresh(context.Background())
	require.NoError(t, err)
	require.NotNil(t, findPID(entries, pid), "child should be listed while alive")

	require.NoError(t, cmd.Process.Kill())
	_ = cmd.Wait()

	// One refresh later the entry and its delta state are both gone
	entries, err = table.Refresh(context.Background())
	require.NoError(t, err)
	assert.Nil(t, findPID(entries, pid))

	table.mu.Lock()
	_, tracked := table.prev[pid]
	table.mu.Unlock()
	assert.False(t, tracked, "state for a vanished pid must not linger")
}

func TestRefreshPIDReuse(t *testing.T) {
	table := NewTable(nil)
	_, err := table.Refresh(context.Background())
	require.NoError(t, err)

	self := int32(os.Getpid())

	// Rewrite the tracked identity so the next refresh sees the same
	// pid with a different start time and name, as after pid reuse.
	table.mu.Lock()
	table.prev[self] = procState{
		cpuTime:    99999,
		ema:        95,
		createTime: 1,
		name:       "stale-process",
	}
	table.mu.Unlock()

	time.Sleep(20 * time.Millisecond)
	entries, err := table.Refresh(context.Background())
	require.NoError(t, err)

	entry := findPID(entries, self)
	require.NotNil(t, entry)
	assert.Zero(t, entry.CPUPercent,
		"a recycled pid must not inherit the previous owner's figures")
}

func TestRefreshKeepsIdentityAcrossRefreshes(t *testing.T) {
	self, err := process.NewProcess(int32(os.Getpid()))
	require.NoError(t, err)
	created, err := self.CreateTime()
	require.NoError(t, err)

	table := NewTable(nil)
	_, err = table.Refresh(context.Background())
	require.NoError(t, err)

	table.mu.Lock()
	st, ok := table.prev[int32(os.Getpid())]
	table.mu.Unlock()
	require.True(t, ok)
	assert.Equal(t, created, st.createTime)
}

func findPID(entries []Entry, pid int32) *Entry {
	for i := range entries {
		if entries[i].PID == pid {
			return &entries[i]
		}
	}
	return nil
}
