package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NewSensorChecks returns the temperature and power source checks.
func NewSensorChecks() []Check {
	return []Check{
		&HwmonTempCheck{HwmonDir: "/sys/class/hwmon", ThermalDir: "/sys/class/thermal"},
		&RAPLCheck{PowercapDir: "/sys/class/powercap"},
	}
}

// HwmonTempCheck looks for a CPU package temperature sensor the same way
// the sampler does: a coretemp or k10temp hwmon chip first, then any
// thermal zone.
type HwmonTempCheck struct {
	HwmonDir   string
	ThermalDir string
}

func (c *HwmonTempCheck) Name() string     { return "cpu_temp" }
func (c *HwmonTempCheck) Category() string { return "SENSORS" }

func (c *HwmonTempCheck) Run() CheckResult {
	if chip := findTempChip(c.HwmonDir); chip != "" {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: fmt.Sprintf("CPU temperature via hwmon (%s)", chip),
		}
	}

	zones, _ := filepath.Glob(filepath.Join(c.ThermalDir, "thermal_zone*", "temp"))
	if len(zones) > 0 {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "CPU temperature via thermal zone",
		}
	}

	return CheckResult{
		Name:       c.Name(),
		Status:     StatusWarn,
		Message:    "No temperature sensor found",
		Suggestion: "The CPU card shows temperature as n/a",
	}
}

func findTempChip(hwmonDir string) string {
	entries, err := os.ReadDir(hwmonDir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		dir := filepath.Join(hwmonDir, entry.Name())
		data, err := os.ReadFile(filepath.Join(dir, "name"))
		if err != nil {
			continue
		}
		name := strings.TrimSpace(string(data))
		if name != "coretemp" && name != "k10temp" {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, "temp1_input")); err == nil {
			return name
		}
	}
	return ""
}

// RAPLCheck probes the powercap energy counter used for package power.
type RAPLCheck struct {
	PowercapDir string
}

func (c *RAPLCheck) Name() string     { return "rapl" }
func (c *RAPLCheck) Category() string { return "SENSORS" }

func (c *RAPLCheck) Run() CheckResult {
	candidates := []string{
		filepath.Join(c.PowercapDir, "intel-rapl", "intel-rapl:0", "energy_uj"),
		filepath.Join(c.PowercapDir, "intel-rapl:0", "energy_uj"),
	}

	var found string
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			found = p
			break
		}
	}
	if found == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No RAPL powercap domain",
			Suggestion: "CPU power shows n/a without one",
		}
	}

	if _, err := os.ReadFile(found); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "RAPL present but not readable",
			Suggestion: "energy_uj is often root-only; run as root for power readings",
		}
	}

	domain := filepath.Base(filepath.Dir(found))
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Package power via RAPL (%s)", domain),
	}
}
