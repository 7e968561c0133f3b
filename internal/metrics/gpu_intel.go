package metrics

import (
	"bufio"
	"context"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/vitals/internal/util"
)

const (
	drmClassDir  = "/sys/class/drm"
	debugfsDRI   = "/sys/kernel/debug/dri"
	intelVendor  = "0x8086"
	intelSmooth  = 0.6
	powercapBase = "/sys/class/powercap"
)

// gpuThermalZones are thermal zone types usable as an iGPU temperature
// proxy; an integrated GPU shares the package with the CPU.
var gpuThermalZones = []string{"x86_pkg_temp", "tcpu", "acpitz", "cpu"}

// IntelGPU samples an integrated Intel card through layered sysfs
// sources. i915 exposes different attributes per generation and kernel,
// so every field walks its own fallback chain and tags the reading with
// the source that produced it. The chains never log per tick; failures
// simply fall through to the next tier.
type IntelGPU struct {
	cardPath       string
	busyPath       string
	rc6Paths       []string
	curFreqPaths   []string
	maxFreqPaths   []string
	minFreqPaths   []string
	tempPath       string
	debugfsMemPath string
	hwmonDir       string
	thermalDir     string
	meminfoPath    string
	debugfsBase    string

	mu        sync.Mutex
	prevRC6   map[string]rc6Sample
	prevUsage float64
	hasUsage  bool
	rapl      raplCounter
}

type rc6Sample struct {
	ms uint64
	at time.Time
}

// detectIntelGPU scans drmDir for the first Intel render card and wires
// up whichever attribute paths this kernel exposes. Returns nil when no
// Intel card exists.
func detectIntelGPU(drmDir string) *IntelGPU {
	card := detectIntelCardPath(drmDir)
	if card == "" {
		return nil
	}

	g := &IntelGPU{
		cardPath:    card,
		hwmonDir:    "/sys/class/hwmon",
		thermalDir:  "/sys/class/thermal",
		meminfoPath: "/proc/meminfo",
		debugfsBase: debugfsDRI,
		prevRC6:     make(map[string]rc6Sample),
		rapl: raplCounter{
			path:     detectGPURaplPath(powercapBase),
			maxWatts: maxGPUWatts,
		},
	}

	g.busyPath = firstExisting(
		filepath.Join(card, "device/gpu_busy_percent"),
		filepath.Join(card, "gpu_busy_percent"),
		filepath.Join(card, "gt/gt0/busy_percent"),
	)

	g.rc6Paths = collectGTPaths(card, "power/rc6_residency_ms", "rc6_residency_ms")
	// Multi-GT parts duplicate the legacy power/ counter as gt0; keep
	// only per-GT counters when they exist to avoid double-weighting.
	if anyContains(g.rc6Paths, "/gt/") {
		g.rc6Paths = keepContaining(g.rc6Paths, "/gt/")
	}

	g.curFreqPaths = collectGTPaths(card, "gt_cur_freq_mhz", "rps_cur_freq_mhz")
	g.maxFreqPaths = collectGTPaths(card, "gt_max_freq_mhz", "rps_max_freq_mhz")
	g.minFreqPaths = collectGTPaths(card, "gt_min_freq_mhz", "rps_min_freq_mhz")

	g.tempPath = detectDRMHwmonTemp(card)
	g.debugfsMemPath = detectI915DebugfsMem(g.debugfsBase, card)

	return g
}

func (g *IntelGPU) Name() string   { return "gpu" }
func (g *IntelGPU) Vendor() string { return "Intel" }

func (g *IntelGPU) Sample(ctx context.Context, snap *SystemSnapshot) error {
	now := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	status := &GPUStatus{
		Vendor: "Intel",
		Name:   "Intel GPU",
	}

	status.Usage = g.sampleUsage(now)
	status.Temp = g.sampleTemp()
	status.MemUsed = g.sampleMemoryUsed()
	status.MemTotal = g.sharedMemoryTotal(status.MemUsed)
	status.Power = g.rapl.sample(now)

	snap.GPU = status
	return nil
}

// sampleUsage resolves GPU busy percent through four tiers:
//
//  1. gpu_busy_percent, the direct counter on kernels that have it
//  2. RC6 residency deltas, inverted (time not in RC6 is busy time)
//  3. frequency position between the min and max GT clocks
//  4. absent, with the reason
//
// RC6 on multi-GT parts needs cross-checking: one GT can report
// near-constant high busy while another idles, so contradictory GTs are
// filtered against the frequency estimate and divergent medians are
// blended toward frequency.
func (g *IntelGPU) sampleUsage(now time.Time) Reading {
	if g.busyPath != "" {
		if v, err := readSysFloat(g.busyPath); err == nil && isFinite(v) {
			return PresentVia(g.smooth(util.Clamp(v, 0, 100)), "Busy")
		}
	}

	freqByGT := g.freqUsageByGT()
	freqEstimate, haveFreq := median(mapValues(freqByGT))

	rc6ByGT, rc6Ready := g.rc6BusyByGT(now)
	if len(rc6ByGT) > 0 {
		filteredAny := false
		samples := make([]float64, 0, len(rc6ByGT))
		for gt, busy := range rc6ByGT {
			if !isFinite(busy) {
				continue
			}
			if freq, ok := freqByGT[gt]; ok && busy > 80 && freq < 60 {
				filteredAny = true
				continue
			}
			samples = append(samples, busy)
		}
		if len(samples) == 0 {
			samples = mapValues(rc6ByGT)
		}

		if usage, ok := median(samples); ok {
			source := "RC6"
			if filteredAny {
				source = "RC6f"
			}

			if len(samples) >= 2 {
				sorted := append([]float64(nil), samples...)
				sort.Float64s(sorted)
				if sorted[len(sorted)-1]-sorted[0] > 60 {
					usage = sorted[0]
					source = "RC6d"
				}
			}

			if haveFreq && !filteredAny && math.Abs(usage-freqEstimate) > 45 {
				usage = util.Clamp(usage*0.4+freqEstimate*0.6, 0, 100)
				source = "Hybrid"
			}

			return PresentVia(g.smooth(usage), source)
		}
	}

	if !rc6Ready && len(g.rc6Paths) > 0 {
		g.hasUsage = false
		return Absent("Warmup")
	}

	if haveFreq {
		return PresentVia(g.smooth(util.Clamp(freqEstimate, 0, 100)), "Freq")
	}

	g.hasUsage = false
	return Absent("No data")
}

// rc6BusyByGT converts RC6 residency deltas into average busy percent
// per GT. The second return reports whether any path had a usable
// previous sample; counters need one tick to prime.
func (g *IntelGPU) rc6BusyByGT(now time.Time) (map[string]float64, bool) {
	type acc struct {
		sum   float64
		count int
	}
	sums := make(map[string]acc)
	ready := false

	for _, path := range g.rc6Paths {
		ms, err := readSysUint(path)
		if err != nil {
			continue
		}

		if prev, ok := g.prevRC6[path]; ok {
			elapsedMS := now.Sub(prev.at).Milliseconds()
			if elapsedMS > 0 {
				var delta uint64
				if ms > prev.ms {
					delta = ms - prev.ms
				}
				idleRatio := util.Clamp(float64(delta)/float64(elapsedMS), 0, 1)
				busy := util.Clamp((1-idleRatio)*100, 0, 100)
				ready = true

				key := gtKey(path)
				a := sums[key]
				a.sum += busy
				a.count++
				sums[key] = a
			}
		}

		g.prevRC6[path] = rc6Sample{ms: ms, at: now}
	}

	byGT := make(map[string]float64, len(sums))
	for gt, a := range sums {
		if a.count > 0 {
			byGT[gt] = a.sum / float64(a.count)
		}
	}
	return byGT, ready
}

// freqUsageByGT estimates usage per GT from the current clock's position
// between the minimum and maximum clocks.
func (g *IntelGPU) freqUsageByGT() map[string]float64 {
	cur := numericByGT(g.curFreqPaths, true)
	hi := numericByGT(g.maxFreqPaths, true)
	lo := numericByGT(g.minFreqPaths, false)

	// Legacy card-level and per-GT files can both exist; the card file
	// mirrors gt0, so prefer the per-GT set.
	hasGT := false
	for key := range cur {
		if strings.HasPrefix(key, "gt") {
			hasGT = true
			break
		}
	}
	if hasGT {
		delete(cur, "card")
		delete(hi, "card")
		delete(lo, "card")
	}

	usage := make(map[string]float64, len(cur))
	for gt, c := range cur {
		top, ok := hi[gt]
		if !ok {
			continue
		}
		floor := lo[gt]

		var u float64
		switch {
		case top > floor:
			u = (c - floor) / (top - floor) * 100
		case top > 0:
			u = c / top * 100
		default:
			continue
		}
		if isFinite(u) {
			usage[gt] = util.Clamp(u, 0, 100)
		}
	}
	return usage
}

// sampleTemp resolves the card temperature: the card's own hwmon sensor,
// then the CPU package sensor as a proxy, then a matching thermal zone.
func (g *IntelGPU) sampleTemp() Reading {
	permDenied := false
	if g.tempPath != "" {
		v, err := readTempFile(g.tempPath)
		if err == nil {
			return Present(v)
		}
		if os.IsPermission(err) {
			permDenied = true
		}
	}

	if v, ok := packageSensorTemp(g.hwmonDir); ok {
		return PresentVia(v, "Pkg proxy")
	}

	if v, ok := thermalZoneTemp(g.thermalDir, gpuThermalZones); ok {
		return PresentVia(v, "Thermal")
	}

	if permDenied {
		return Absent("No perm")
	}
	return Absent("N/A")
}

// sampleMemoryUsed resolves iGPU memory: exact GEM object totals from
// debugfs when readable, otherwise Shmem as a coarse proxy for shared
// allocations.
func (g *IntelGPU) sampleMemoryUsed() Reading {
	noPermission := false
	if g.debugfsMemPath != "" {
		raw, err := os.ReadFile(g.debugfsMemPath)
		if err == nil {
			if bytes, ok := parseGemObjectsBytes(string(raw)); ok {
				return Present(float64(bytes))
			}
			return Absent("No data")
		}
		if os.IsPermission(err) {
			noPermission = true
		}
	}

	if shmem, ok := meminfoBytes(g.meminfoPath, "Shmem"); ok {
		return PresentVia(float64(shmem), "Shared")
	}

	if _, err := os.ReadDir(g.debugfsBase); err != nil {
		return Absent("dbgfs off")
	}
	if noPermission {
		return Absent("No perm")
	}
	return Absent("N/A")
}

// sharedMemoryTotal computes the memory budget for a card that borrows
// system RAM: what is currently available plus what the card already
// holds, capped to physical RAM.
func (g *IntelGPU) sharedMemoryTotal(used Reading) Reading {
	avail, haveAvail := meminfoBytes(g.meminfoPath, "MemAvailable")
	total, haveTotal := meminfoBytes(g.meminfoPath, "MemTotal")

	switch {
	case haveAvail && haveTotal && used.Ok():
		budget := avail + uint64(used.Value)
		if budget > total {
			budget = total
		}
		if budget < uint64(used.Value) {
			budget = uint64(used.Value)
		}
		return Present(float64(budget))
	case haveAvail && haveTotal:
		if avail < total {
			return Present(float64(avail))
		}
		return Present(float64(total))
	case haveAvail && used.Ok():
		return Present(float64(avail + uint64(used.Value)))
	case haveAvail:
		return Present(float64(avail))
	case haveTotal:
		return Present(float64(total))
	}
	return Absent("N/A")
}

// smooth applies exponential smoothing across samples. sysfs counters
// read at UI tick rate are jumpy enough to make the gauge unreadable.
func (g *IntelGPU) smooth(usage float64) float64 {
	if !g.hasUsage {
		g.prevUsage = usage
		g.hasUsage = true
		return usage
	}
	g.prevUsage += (usage - g.prevUsage) * intelSmooth
	return g.prevUsage
}

// detectIntelCardPath returns the first /sys/class/drm card directory
// with an Intel vendor id. Connector entries (card0-eDP-1) are skipped.
func detectIntelCardPath(drmDir string) string {
	entries, err := os.ReadDir(drmDir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "card") || strings.Contains(name, "-") {
			continue
		}
		card := filepath.Join(drmDir, name)
		vendor, err := readSysString(filepath.Join(card, "device/vendor"))
		if err != nil {
			continue
		}
		if strings.EqualFold(vendor, intelVendor) {
			return card
		}
	}
	return ""
}

// collectGTPaths gathers every location an attribute can live: the card
// directory itself (or its power/ subdirectory) on older kernels, and
// per-GT directories on multi-GT parts.
func collectGTPaths(cardPath, cardFile, gtFile string) []string {
	var paths []string

	if p := firstExisting(filepath.Join(cardPath, cardFile)); p != "" {
		paths = append(paths, p)
	}

	gtDir := filepath.Join(cardPath, "gt")
	if entries, err := os.ReadDir(gtDir); err == nil {
		for _, entry := range entries {
			if !strings.HasPrefix(entry.Name(), "gt") {
				continue
			}
			if p := firstExisting(filepath.Join(gtDir, entry.Name(), gtFile)); p != "" {
				paths = append(paths, p)
			}
		}
	}

	sort.Strings(paths)
	return paths
}

// detectDRMHwmonTemp finds the card's own hwmon temperature attribute.
func detectDRMHwmonTemp(cardPath string) string {
	entries, err := os.ReadDir(filepath.Join(cardPath, "device/hwmon"))
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		p := filepath.Join(cardPath, "device/hwmon", entry.Name(), "temp1_input")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// detectI915DebugfsMem maps a drm card to its debugfs GEM object file.
func detectI915DebugfsMem(debugfsBase, cardPath string) string {
	name := filepath.Base(cardPath)
	if !strings.HasPrefix(name, "card") {
		return ""
	}
	idx := strings.TrimPrefix(name, "card")
	return firstExisting(filepath.Join(debugfsBase, idx, "i915_gem_objects"))
}

// packageSensorTemp finds a hwmon sensor labeled as the CPU package.
func packageSensorTemp(hwmonDir string) (float64, bool) {
	labels, err := filepath.Glob(filepath.Join(hwmonDir, "hwmon*", "temp*_label"))
	if err != nil {
		return 0, false
	}
	for _, labelPath := range labels {
		label, err := readSysString(labelPath)
		if err != nil {
			continue
		}
		lower := strings.ToLower(label)
		if !strings.Contains(lower, "package id") && !strings.Contains(lower, "x86_pkg_temp") {
			continue
		}
		inputPath := strings.TrimSuffix(labelPath, "_label") + "_input"
		if v, err := readTempFile(inputPath); err == nil {
			return v, true
		}
	}
	return 0, false
}

// parseGemObjectsBytes extracts the largest byte count from an
// i915_gem_objects dump. Lines look like "912 objects, 1605255168 bytes".
func parseGemObjectsBytes(content string) (uint64, bool) {
	var best uint64
	found := false

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(strings.ToLower(line), "bytes") {
			continue
		}
		tokens := strings.Fields(line)
		for i := 1; i < len(tokens); i++ {
			if !strings.Contains(strings.ToLower(tokens[i]), "bytes") {
				continue
			}
			n := strings.ReplaceAll(tokens[i-1], ",", "")
			value, err := strconv.ParseUint(n, 10, 64)
			if err != nil {
				continue
			}
			if !found || value > best {
				best = value
				found = true
			}
		}
	}
	return best, found
}

// numericByGT reads a set of attribute paths and keeps one value per GT,
// taking the max (or min) when a GT exposes several.
func numericByGT(paths []string, pickMax bool) map[string]float64 {
	values := make(map[string]float64)
	for _, path := range paths {
		v, err := readSysFloat(path)
		if err != nil || !isFinite(v) {
			continue
		}
		key := gtKey(path)
		cur, ok := values[key]
		if !ok {
			values[key] = v
			continue
		}
		if (pickMax && v > cur) || (!pickMax && v < cur) {
			values[key] = v
		}
	}
	return values
}

// gtKey extracts the GT name from an attribute path, "card" for
// card-level attributes.
func gtKey(path string) string {
	if idx := strings.Index(path, "/gt/"); idx >= 0 {
		rest := path[idx+len("/gt/"):]
		key, _, _ := strings.Cut(rest, "/")
		if strings.HasPrefix(key, "gt") {
			return key
		}
	}
	return "card"
}

func median(values []float64) (float64, bool) {
	finite := values[:0:0]
	for _, v := range values {
		if isFinite(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0, false
	}
	sort.Float64s(finite)
	mid := len(finite) / 2
	if len(finite)%2 == 0 {
		return (finite[mid-1] + finite[mid]) / 2, true
	}
	return finite[mid], true
}

func mapValues(m map[string]float64) []float64 {
	out := make([]float64, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func anyContains(paths []string, sub string) bool {
	for _, p := range paths {
		if strings.Contains(p, sub) {
			return true
		}
	}
	return false
}

func keepContaining(paths []string, sub string) []string {
	kept := paths[:0:0]
	for _, p := range paths {
		if strings.Contains(p, sub) {
			kept = append(kept, p)
		}
	}
	return kept
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
