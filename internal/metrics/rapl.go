package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RAPL energy counters accumulate microjoules; power is the counter
// delta over the sample window. Sanity caps catch garbage produced by
// some firmware after suspend.
const (
	maxCPUWatts = 500
	maxGPUWatts = 150

	// raplMaxWindow discards deltas across a gap too long to represent
	// a live sample pair, such as a laptop resuming from sleep.
	raplMaxWindow = 10 * time.Second
)

// cpuRaplPaths are package energy counters across common powercap
// layouts, including dual-socket and subzone variants.
var cpuRaplPaths = []string{
	"/sys/class/powercap/intel-rapl/intel-rapl:0/energy_uj",
	"/sys/class/powercap/intel-rapl:0/energy_uj",
	"/sys/class/powercap/intel-rapl/intel-rapl:0/core:0/energy_uj",
	"/sys/class/powercap/intel-rapl/intel-rapl:1/energy_uj",
	"/sys/class/powercap/intel-rapl:1/energy_uj",
	"/sys/class/powercap/intel-rapl/intel-rapl:0/subzone0/energy_uj",
	"/sys/class/powercap/intel-rapl/intel-rapl:0/subzone1/energy_uj",
}

// raplCounter turns one energy_uj counter into a watts reading between
// consecutive samples.
type raplCounter struct {
	path     string
	maxWatts float64

	prev   uint64
	prevAt time.Time
	primed bool
}

// sample reads the counter and converts the delta since the previous
// call into watts. The counter wraps periodically, so a decrease drops
// the window with a Reset note instead of producing a negative rate.
func (r *raplCounter) sample(now time.Time) Reading {
	if r.path == "" {
		return Absent("No RAPL")
	}

	cur, err := readSysUint(r.path)
	if err != nil {
		if os.IsPermission(err) {
			return Absent("No perm")
		}
		return Absent("Unreadable")
	}

	prev, prevAt, primed := r.prev, r.prevAt, r.primed
	r.prev = cur
	r.prevAt = now
	r.primed = true

	if !primed {
		return Absent("Warmup")
	}
	elapsed := now.Sub(prevAt).Seconds()
	if elapsed <= 0 || elapsed > raplMaxWindow.Seconds() {
		return Absent("Warmup")
	}
	if cur < prev {
		return Absent("Reset")
	}

	watts := float64(cur-prev) / elapsed / 1e6
	if watts > r.maxWatts {
		return Absent("Outlier")
	}
	return Present(watts)
}

// detectGPURaplPath finds the energy counter of the iGPU powercap
// domain. Newer parts often name it "uncore" or "psys" instead of
// "gfx", so the scan matches on the domain name file.
func detectGPURaplPath(powercapDir string) string {
	candidate := func(dir string) string {
		name, err := readSysString(filepath.Join(dir, "name"))
		if err != nil {
			return ""
		}
		lower := strings.ToLower(name)
		if !strings.Contains(lower, "gpu") && !strings.Contains(lower, "gfx") &&
			!strings.Contains(lower, "uncore") && !strings.Contains(lower, "psys") {
			return ""
		}
		return firstExisting(filepath.Join(dir, "energy_uj"))
	}

	// Entries under /sys/class are symlinks into /sys/devices, so the
	// walk follows names rather than DirEntry types.
	entries, err := os.ReadDir(powercapDir)
	if err == nil {
		for _, entry := range entries {
			dir := filepath.Join(powercapDir, entry.Name())
			if p := candidate(dir); p != "" {
				return p
			}
			subs, err := os.ReadDir(dir)
			if err != nil {
				continue
			}
			for _, sub := range subs {
				if p := candidate(filepath.Join(dir, sub.Name())); p != "" {
					return p
				}
			}
		}
	}

	return firstExisting(
		"/sys/class/powercap/intel-rapl/intel-rapl:0/gfx/energy_uj",
		"/sys/class/powercap/intel-rapl/intel-rapl:0:0/energy_uj",
		"/sys/class/powercap/intel-rapl/intel-rapl:1/gfx/energy_uj",
		"/sys/class/powercap/intel-rapl/intel-rapl:1:0/energy_uj",
	)
}
