package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const nvidiaSmiTimeout = 5 * time.Second

var vendorNames = map[string]string{
	"0x8086": "Intel",
	"0x10de": "NVIDIA",
	"0x1002": "AMD",
}

// NewGPUChecks returns the GPU source checks. Every one of these warns
// rather than fails: a machine without a GPU still monitors fine, the
// card just reads n/a.
func NewGPUChecks() []Check {
	return []Check{
		&DRMCheck{DRMDir: "/sys/class/drm"},
		&GPUUsageCheck{DRMDir: "/sys/class/drm"},
		&DebugfsCheck{DebugDir: "/sys/kernel/debug/dri", euid: os.Geteuid},
		&NvidiaSmiCheck{lookPath: exec.LookPath, run: runNvidiaSmi},
	}
}

// listCards returns drm card directories (card0, card1), skipping
// connector entries like card0-eDP-1.
func listCards(drmDir string) []string {
	matches, err := filepath.Glob(filepath.Join(drmDir, "card*"))
	if err != nil {
		return nil
	}
	var cards []string
	for _, m := range matches {
		if !strings.Contains(filepath.Base(m), "-") {
			cards = append(cards, m)
		}
	}
	return cards
}

func cardVendor(card string) string {
	data, err := os.ReadFile(filepath.Join(card, "device/vendor"))
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(string(data)))
}

// DRMCheck discovers GPU cards under /sys/class/drm and names their vendor.
type DRMCheck struct {
	DRMDir string
}

func (c *DRMCheck) Name() string     { return "drm_cards" }
func (c *DRMCheck) Category() string { return "GPU" }

func (c *DRMCheck) Run() CheckResult {
	cards := listCards(c.DRMDir)
	if len(cards) == 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("No DRM GPU device under %s", c.DRMDir),
			Suggestion: "The GPU card shows n/a without one",
		}
	}

	var names []string
	for _, card := range cards {
		vendor := cardVendor(card)
		name, ok := vendorNames[vendor]
		if !ok {
			if vendor == "" {
				vendor = "unknown vendor"
			}
			name = vendor
		}
		names = append(names, fmt.Sprintf("%s (%s)", filepath.Base(card), name))
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "DRM cards: " + strings.Join(names, ", "),
	}
}

// GPUUsageCheck reports which usage tier an Intel card will use:
// gpu_busy_percent when the driver exposes it, RC6 residency estimation
// otherwise.
type GPUUsageCheck struct {
	DRMDir string
}

func (c *GPUUsageCheck) Name() string     { return "gpu_usage" }
func (c *GPUUsageCheck) Category() string { return "GPU" }

func (c *GPUUsageCheck) Run() CheckResult {
	var intelCard string
	for _, card := range listCards(c.DRMDir) {
		if cardVendor(card) == "0x8086" {
			intelCard = card
			break
		}
	}
	if intelCard == "" {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "Not needed (no Intel GPU)",
		}
	}

	busy := filepath.Join(intelCard, "device/gpu_busy_percent")
	if _, err := os.ReadFile(busy); err != nil {
		if os.IsNotExist(err) {
			return CheckResult{
				Name:       c.Name(),
				Status:     StatusWarn,
				Message:    fmt.Sprintf("%s does not expose gpu_busy_percent", filepath.Base(intelCard)),
				Suggestion: "GPU usage falls back to RC6 residency estimation",
			}
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "gpu_busy_percent is not readable",
			Suggestion: "GPU usage falls back to RC6 residency estimation",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("GPU usage via gpu_busy_percent (%s)", filepath.Base(intelCard)),
	}
}

// DebugfsCheck probes the debugfs i915 tree used for exact VRAM numbers.
// Unreadable without root is the normal case, not a problem.
type DebugfsCheck struct {
	DebugDir string
	euid     func() int
}

func (c *DebugfsCheck) Name() string     { return "debugfs" }
func (c *DebugfsCheck) Category() string { return "GPU" }

func (c *DebugfsCheck) Run() CheckResult {
	if _, err := os.ReadDir(c.DebugDir); err != nil {
		if os.IsNotExist(err) {
			return CheckResult{
				Name:       c.Name(),
				Status:     StatusWarn,
				Message:    fmt.Sprintf("debugfs not mounted at %s", c.DebugDir),
				Suggestion: "GPU memory falls back to the shmem proxy",
			}
		}
		if c.euid() != 0 {
			return CheckResult{
				Name:       c.Name(),
				Status:     StatusWarn,
				Message:    "debugfs needs root (expected)",
				Suggestion: "GPU memory falls back to the shmem proxy; run as root for exact numbers",
			}
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Cannot read %s as root", c.DebugDir),
			Suggestion: "GPU memory falls back to the shmem proxy",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "debugfs readable (GPU memory via i915_gem_objects)",
	}
}

// NvidiaSmiCheck verifies nvidia-smi is installed and answering. Absence
// is normal on machines without an NVIDIA card.
type NvidiaSmiCheck struct {
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func (c *NvidiaSmiCheck) Name() string     { return "nvidia_smi" }
func (c *NvidiaSmiCheck) Category() string { return "GPU" }

func (c *NvidiaSmiCheck) Run() CheckResult {
	if _, err := c.lookPath("nvidia-smi"); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "nvidia-smi not found",
			Suggestion: "Only needed for NVIDIA GPUs",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), nvidiaSmiTimeout)
	defer cancel()

	out, err := c.run(ctx, "nvidia-smi", "--query-gpu=name", "--format=csv,noheader")
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("nvidia-smi present but not responding: %v", err),
			Suggestion: "Check the NVIDIA driver: nvidia-smi",
		}
	}

	name := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	if name == "" {
		name = "no GPU reported"
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("nvidia-smi responds (%s)", name),
	}
}

func runNvidiaSmi(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
