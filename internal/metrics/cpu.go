package metrics

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/util"
)

// cpuThermalZones are thermal zone types that track the CPU package,
// in preference order.
var cpuThermalZones = []string{"x86_pkg_temp", "tcpu", "acpitz", "cpu"}

// CPUSampler reads aggregate and per-core usage from kernel time
// counters, plus frequency, temperature and package power where the
// hardware exposes them. Usage is a delta between consecutive samples,
// so the first sample reports 0.
type CPUSampler struct {
	freqPath    string
	cpuinfoPath string
	tempPath    string
	thermalDir  string

	mu      sync.Mutex
	prev    map[string]cpu.TimesStat
	prevAgg cpu.TimesStat
	primed  bool
	rapl    raplCounter
}

// NewCPUSampler creates a CPU sampler, discovering the sysfs sensor
// paths once up front.
func NewCPUSampler() *CPUSampler {
	return &CPUSampler{
		freqPath:    firstExisting("/sys/devices/system/cpu/cpu0/cpufreq/scaling_cur_freq"),
		cpuinfoPath: "/proc/cpuinfo",
		tempPath:    detectCPUTempPath("/sys/class/hwmon"),
		thermalDir:  "/sys/class/thermal",
		prev:        make(map[string]cpu.TimesStat),
		rapl: raplCounter{
			path:     firstExisting(cpuRaplPaths...),
			maxWatts: maxCPUWatts,
		},
	}
}

func (s *CPUSampler) Name() string { return "cpu" }

// Sample reads the current CPU state into snap.
func (s *CPUSampler) Sample(ctx context.Context, snap *SystemSnapshot) error {
	perCore, err := cpu.TimesWithContext(ctx, true)
	if err != nil {
		return errors.Wrap(err, "cannot read per-core cpu times")
	}
	agg, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return errors.Wrap(err, "cannot read cpu times")
	}
	if len(agg) == 0 {
		return errors.New(errors.ErrProvider, "no cpu times reported", "")
	}

	cores := len(perCore)
	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		cores = n
	}

	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	status := &CPUStatus{
		Cores:   cores,
		PerCore: make([]float64, len(perCore)),
	}

	if s.primed {
		status.Usage = busyPercent(s.prevAgg, agg[0])
		for i, cur := range perCore {
			if prev, ok := s.prev[cur.CPU]; ok {
				status.PerCore[i] = busyPercent(prev, cur)
			}
		}
	}

	s.prevAgg = agg[0]
	for _, cur := range perCore {
		s.prev[cur.CPU] = cur
	}
	s.primed = true

	status.FreqMHz = s.sampleFreq()
	status.Temp = s.sampleTemp()
	status.Power = s.rapl.sample(now)

	snap.CPU = status
	return nil
}

// busyPercent computes busy time between two samples as a percentage.
// Iowait counts as idle. A counter reset yields 0, never a negative.
func busyPercent(prev, cur cpu.TimesStat) float64 {
	dTotal := timesTotal(cur) - timesTotal(prev)
	dIdle := (cur.Idle + cur.Iowait) - (prev.Idle + prev.Iowait)
	if dTotal <= 0 {
		return 0
	}
	return util.Clamp((1-dIdle/dTotal)*100, 0, 100)
}

// timesTotal sums all accounted time. Guest time is excluded because the
// kernel already folds it into user and nice.
func timesTotal(t cpu.TimesStat) float64 {
	return t.User + t.System + t.Nice + t.Iowait + t.Irq + t.Softirq + t.Steal + t.Idle
}

// sampleFreq reads the current core frequency in MHz. cpufreq reports
// kHz; the cpuinfo fallback covers kernels without cpufreq.
func (s *CPUSampler) sampleFreq() Reading {
	if s.freqPath != "" {
		if khz, err := readSysFloat(s.freqPath); err == nil && khz > 0 {
			return Present(khz / 1000)
		}
	}
	if mhz, ok := cpuinfoMHz(s.cpuinfoPath); ok {
		return PresentVia(mhz, "cpuinfo")
	}
	return Absent("N/A")
}

// sampleTemp reads the package temperature from the CPU hwmon sensor,
// falling back to a matching thermal zone.
func (s *CPUSampler) sampleTemp() Reading {
	if s.tempPath != "" {
		v, err := readTempFile(s.tempPath)
		if err == nil {
			return Present(v)
		}
		if os.IsPermission(err) {
			return Absent("No perm")
		}
	}
	if v, ok := thermalZoneTemp(s.thermalDir, cpuThermalZones); ok {
		return PresentVia(v, "Thermal")
	}
	return Absent("No sensor")
}

// detectCPUTempPath finds the package temperature attribute of the
// common CPU hwmon drivers.
func detectCPUTempPath(hwmonDir string) string {
	entries, err := os.ReadDir(hwmonDir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		dir := filepath.Join(hwmonDir, entry.Name())
		name, err := readSysString(filepath.Join(dir, "name"))
		if err != nil {
			continue
		}
		switch name {
		case "coretemp", "k10temp", "zenpower", "cpu_thermal":
			if p := firstExisting(filepath.Join(dir, "temp1_input")); p != "" {
				return p
			}
		}
	}
	return ""
}

// cpuinfoMHz returns the fastest "cpu MHz" line from /proc/cpuinfo.
func cpuinfoMHz(path string) (float64, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	return parseCPUInfoMHz(string(raw))
}

func parseCPUInfoMHz(content string) (float64, bool) {
	var best float64
	found := false

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "cpu MHz") {
			continue
		}
		_, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		mhz, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || mhz <= 0 {
			continue
		}
		if !found || mhz > best {
			best = mhz
			found = true
		}
	}
	return best, found
}
