package metrics

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"

	"github.com/rileyhilliard/vitals/internal/errors"
)

// HostSampler reads machine identity, uptime, load averages and battery
// state.
type HostSampler struct {
	powerSupplyDir string
}

func NewHostSampler() *HostSampler {
	return &HostSampler{powerSupplyDir: "/sys/class/power_supply"}
}

func (s *HostSampler) Name() string { return "host" }

func (s *HostSampler) Sample(ctx context.Context, snap *SystemSnapshot) error {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot read host info")
	}

	status := &HostStatus{
		Hostname: info.Hostname,
		Uptime:   time.Duration(info.Uptime) * time.Second,
	}

	// Load averages and battery are best-effort extras on top of the
	// host identity.
	if avg, err := load.AvgWithContext(ctx); err == nil {
		status.Load1 = avg.Load1
		status.Load5 = avg.Load5
		status.Load15 = avg.Load15
	}

	status.Battery, status.Charging = s.sampleBattery()

	snap.Host = status
	return nil
}

// sampleBattery reads the first battery under power_supply. Desktops
// have none, which is an expected absence rather than a failure.
func (s *HostSampler) sampleBattery() (Reading, bool) {
	entries, err := filepath.Glob(filepath.Join(s.powerSupplyDir, "BAT*"))
	if err != nil || len(entries) == 0 {
		return Absent("No battery"), false
	}

	for _, dir := range entries {
		capacity, err := readSysFloat(filepath.Join(dir, "capacity"))
		if err != nil {
			continue
		}
		charging := false
		if st, err := readSysString(filepath.Join(dir, "status")); err == nil {
			charging = strings.EqualFold(st, "Charging")
		}
		return Present(capacity), charging
	}
	return Absent("No battery"), false
}
