package metrics

import (
	"context"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/rileyhilliard/vitals/internal/errors"
)

// MemorySampler reads physical memory and swap usage.
type MemorySampler struct{}

func NewMemorySampler() *MemorySampler { return &MemorySampler{} }

func (s *MemorySampler) Name() string { return "memory" }

// Sample reads current memory state into snap. Used excludes buffers and
// page cache; Cached combines both so reclaimable memory is visible.
func (s *MemorySampler) Sample(ctx context.Context, snap *SystemSnapshot) error {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot read memory info")
	}

	status := &MemoryStatus{
		Used:      vm.Used,
		Cached:    vm.Cached + vm.Buffers,
		Available: vm.Available,
		Total:     vm.Total,
	}

	// Swap is optional; a host without swap is not a failed sample.
	if swap, err := mem.SwapMemoryWithContext(ctx); err == nil {
		status.SwapUsed = swap.Used
		status.SwapTotal = swap.Total
	}

	snap.Memory = status
	return nil
}
