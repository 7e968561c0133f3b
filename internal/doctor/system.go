package doctor

import (
	"fmt"
	"os"
	"strings"
)

// NewSystemChecks returns the procfs checks. These are the only required
// sources: without them the dashboard has nothing to draw.
func NewSystemChecks() []Check {
	return []Check{
		&ProcfsCheck{ProcRoot: "/proc"},
		&CPUStatCheck{Path: "/proc/stat"},
		&MeminfoCheck{Path: "/proc/meminfo"},
	}
}

// ProcfsCheck verifies that procfs is mounted and readable.
type ProcfsCheck struct {
	ProcRoot string
}

func (c *ProcfsCheck) Name() string     { return "procfs" }
func (c *ProcfsCheck) Category() string { return "SYSTEM" }

func (c *ProcfsCheck) Run() CheckResult {
	info, err := os.Stat(c.ProcRoot)
	if err != nil || !info.IsDir() {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot read %s", c.ProcRoot),
			Suggestion: "vitals needs a mounted Linux procfs; only Linux is supported",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("procfs mounted at %s", c.ProcRoot),
	}
}

// CPUStatCheck verifies the aggregate cpu line in /proc/stat parses.
type CPUStatCheck struct {
	Path string
}

func (c *CPUStatCheck) Name() string     { return "cpu_stat" }
func (c *CPUStatCheck) Category() string { return "SYSTEM" }

func (c *CPUStatCheck) Run() CheckResult {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot read %s", c.Path),
			Suggestion: "CPU usage cannot be sampled without it",
		}
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) == 0 {
		return c.layoutFail()
	}
	fields := strings.Fields(lines[0])
	if len(fields) < 8 || fields[0] != "cpu" {
		return c.layoutFail()
	}

	cores := 0
	for _, line := range lines[1:] {
		if strings.HasPrefix(line, "cpu") {
			cores++
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("CPU counters parse (%d core%s)", cores, pluralize(cores)),
	}
}

func (c *CPUStatCheck) layoutFail() CheckResult {
	return CheckResult{
		Name:       c.Name(),
		Status:     StatusFail,
		Message:    fmt.Sprintf("Unexpected layout in %s", c.Path),
		Suggestion: "Expected an aggregate cpu line with jiffy counters",
	}
}

// MeminfoCheck verifies /proc/meminfo carries the fields the memory card
// needs. MemTotal is required; a missing MemAvailable only degrades the
// used calculation.
type MeminfoCheck struct {
	Path string
}

func (c *MeminfoCheck) Name() string     { return "meminfo" }
func (c *MeminfoCheck) Category() string { return "SYSTEM" }

func (c *MeminfoCheck) Run() CheckResult {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot read %s", c.Path),
			Suggestion: "Memory usage cannot be sampled without it",
		}
	}

	var total string
	hasAvailable := false
	for _, line := range strings.Split(string(data), "\n") {
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			total = strings.TrimSpace(strings.TrimPrefix(line, "MemTotal:"))
		case strings.HasPrefix(line, "MemAvailable:"):
			hasAvailable = true
		}
	}

	if total == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("MemTotal missing from %s", c.Path),
			Suggestion: "Memory usage cannot be sampled without it",
		}
	}
	if !hasAvailable {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "MemAvailable missing; used memory is estimated",
			Suggestion: "Kernels since 3.14 expose MemAvailable",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Memory counters parse (MemTotal %s)", total),
	}
}
