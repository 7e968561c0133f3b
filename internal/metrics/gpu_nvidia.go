package metrics

import (
	"bufio"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rileyhilliard/vitals/internal/errors"
)

const nvidiaQuery = "name,utilization.gpu,memory.used,memory.total,temperature.gpu,power.draw"

// NvidiaGPU samples GPU telemetry through nvidia-smi. The tool is the
// stable interface NVIDIA supports; sysfs exposes almost nothing for
// their cards.
type NvidiaGPU struct {
	run func(ctx context.Context) (string, error)
}

// detectNvidiaGPU returns a sampler when nvidia-smi is installed.
func detectNvidiaGPU() *NvidiaGPU {
	if _, err := exec.LookPath("nvidia-smi"); err != nil {
		return nil
	}
	return &NvidiaGPU{run: runNvidiaSMI}
}

func runNvidiaSMI(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu="+nvidiaQuery,
		"--format=csv,noheader,nounits")
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (g *NvidiaGPU) Name() string   { return "gpu" }
func (g *NvidiaGPU) Vendor() string { return "NVIDIA" }

func (g *NvidiaGPU) Sample(ctx context.Context, snap *SystemSnapshot) error {
	out, err := g.run(ctx)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrProvider,
			"nvidia-smi failed",
			"Run 'nvidia-smi' directly to check the driver")
	}

	status, err := parseNvidiaCSV(out)
	if err != nil {
		return err
	}
	snap.GPU = status
	return nil
}

// parseNvidiaCSV parses nvidia-smi CSV output with noheader,nounits.
// Multi-GPU machines report one line per card; the first card wins.
// Individual fields may read "[N/A]" or "[Not Supported]" depending on
// the card, which makes that field absent without dropping the rest.
func parseNvidiaCSV(content string) (*GPUStatus, error) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.Contains(line, "NVIDIA-SMI has failed") {
			return nil, errors.New(errors.ErrProvider,
				"nvidia-smi cannot talk to the driver",
				"Run 'nvidia-smi' directly to check the driver")
		}

		fields := strings.Split(line, ",")
		if len(fields) != 6 {
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		const mib = 1024 * 1024
		return &GPUStatus{
			Vendor:   "NVIDIA",
			Name:     fields[0],
			Usage:    nvidiaField(fields[1], 1),
			MemUsed:  nvidiaField(fields[2], mib),
			MemTotal: nvidiaField(fields[3], mib),
			Temp:     nvidiaField(fields[4], 1),
			Power:    nvidiaField(fields[5], 1),
		}, nil
	}

	return nil, errors.New(errors.ErrProvider, "nvidia-smi returned no GPU lines", "")
}

// nvidiaField parses one CSV value, scaling it by unit (memory comes
// back in MiB).
func nvidiaField(s string, unit float64) Reading {
	if strings.HasPrefix(s, "[") {
		// "[N/A]" or "[Not Supported]"
		return Absent("N/A")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Absent("N/A")
	}
	return Present(v * unit)
}
