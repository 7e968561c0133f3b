// Package proc maintains the live process table: refreshing entries
// from the kernel, sorting and filtering them, arranging them as a
// tree, and terminating processes on request.
package proc

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/util"
)

// Entry is one process as of the latest refresh.
type Entry struct {
	PID        int32
	PPID       int32
	Name       string
	Cmdline    string
	User       string
	State      string
	CPUPercent float64
	MemPercent float64
	MemRSS     uint64
	StartTime  int64 // milliseconds since epoch
}

// procState is the per-pid delta state carried between refreshes.
type procState struct {
	cpuTime    float64 // cumulative cpu seconds
	ema        float64
	createTime int64
	name       string
}

// Table refreshes the process list and derives per-process CPU share
// from cpu-time deltas between refreshes. CPU percent is normalized to
// the whole machine (0-100 across all cores) and smoothed with an EMA
// whose weight adapts to the refresh interval, so slow refreshes track
// reality and fast ones do not flicker.
type Table struct {
	mu     sync.Mutex
	cores  int
	prev   map[int32]procState
	prevAt time.Time
	primed bool
	log    logger.Logger
}

// NewTable creates a process table.
func NewTable(log logger.Logger) *Table {
	if log == nil {
		log = logger.Noop()
	}
	return &Table{
		cores: runtime.NumCPU(),
		prev:  make(map[int32]procState),
		log:   log,
	}
}

// Refresh walks the current process list and returns fresh entries.
// Processes that exit between listing and reading are skipped silently;
// that churn is normal. State for pids that vanished is dropped here,
// and a recycled pid (same number, different start time or name) is
// treated as a brand-new process so it cannot inherit the dead one's
// CPU figures.
func (t *Table) Refresh(ctx context.Context) ([]Entry, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "cannot list processes")
	}

	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := now.Sub(t.prevAt).Seconds()
	alpha := util.Clamp(elapsed/1.5, 0.35, 1.0)

	entries := make([]Entry, 0, len(procs))
	next := make(map[int32]procState, len(procs))

	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		times, err := p.TimesWithContext(ctx)
		if err != nil {
			continue
		}
		createTime, err := p.CreateTimeWithContext(ctx)
		if err != nil {
			continue
		}

		entry := Entry{
			PID:       p.Pid,
			Name:      name,
			StartTime: createTime,
		}
		if ppid, err := p.PpidWithContext(ctx); err == nil {
			entry.PPID = ppid
		}
		if cmdline, err := p.CmdlineWithContext(ctx); err == nil {
			entry.Cmdline = cmdline
		}
		entry.User = t.username(ctx, p)
		if status, err := p.StatusWithContext(ctx); err == nil && len(status) > 0 {
			entry.State = status[0]
		}
		if mem, err := p.MemoryInfoWithContext(ctx); err == nil && mem != nil {
			entry.MemRSS = mem.RSS
		}
		if memPct, err := p.MemoryPercentWithContext(ctx); err == nil {
			entry.MemPercent = float64(memPct)
		}

		cpuTime := times.User + times.System

		st, known := t.prev[p.Pid]
		if known && (st.createTime != createTime || st.name != name) {
			// The pid was recycled since the last refresh.
			known = false
		}

		var smoothed float64
		if known && t.primed && elapsed > 0 {
			raw := rawCPUPercent(st.cpuTime, cpuTime, elapsed, t.cores)
			smoothed = util.EMA(st.ema, raw, alpha)
		}
		entry.CPUPercent = smoothed

		next[p.Pid] = procState{
			cpuTime:    cpuTime,
			ema:        smoothed,
			createTime: createTime,
			name:       name,
		}
		entries = append(entries, entry)
	}

	t.prev = next
	t.prevAt = now
	t.primed = true

	return entries, nil
}

// rawCPUPercent converts a cpu-time delta into a machine-wide
// percentage, where 100 means every core saturated. A process pinning
// one of eight cores reads as 12.5, matching the scale of the CPU
// panel. A cpu-time counter that moved backwards reads as 0.
func rawCPUPercent(prevTime, curTime, elapsed float64, cores int) float64 {
	if curTime < prevTime || elapsed <= 0 || cores <= 0 {
		return 0
	}
	pct := (curTime - prevTime) / elapsed * 100 / float64(cores)
	return util.Clamp(pct, 0, 100)
}

// username resolves the owner, falling back to the numeric uid when the
// passwd lookup fails (common in containers).
func (t *Table) username(ctx context.Context, p *process.Process) string {
	if user, err := p.UsernameWithContext(ctx); err == nil && user != "" {
		return user
	}
	if uids, err := p.UidsWithContext(ctx); err == nil && len(uids) > 0 {
		return fmt.Sprintf("%d", uids[0])
	}
	return "?"
}
