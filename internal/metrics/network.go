package metrics

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/net"

	"github.com/rileyhilliard/vitals/internal/errors"
)

// NetworkSampler converts per-interface traffic counters into byte
// rates between consecutive samples. The first sample reports 0 rates,
// and a counter that moved backwards (interface reset, counter wrap)
// reports 0 for that tick rather than a huge spike.
type NetworkSampler struct {
	mu     sync.Mutex
	prev   map[string]net.IOCountersStat
	prevAt time.Time
	primed bool
}

func NewNetworkSampler() *NetworkSampler {
	return &NetworkSampler{prev: make(map[string]net.IOCountersStat)}
}

func (s *NetworkSampler) Name() string { return "network" }

// Sample reads interface counters into snap, sorted by interface name.
func (s *NetworkSampler) Sample(ctx context.Context, snap *SystemSnapshot) error {
	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return errors.Wrap(err, "cannot read network counters")
	}

	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := now.Sub(s.prevAt).Seconds()
	status := &NetworkStatus{Interfaces: make([]InterfaceStats, 0, len(counters))}

	// Rebuilt every tick so interfaces that disappeared drop their
	// stale counters.
	next := make(map[string]net.IOCountersStat, len(counters))

	for _, cur := range counters {
		iface := InterfaceStats{
			Name:    cur.Name,
			RxTotal: cur.BytesRecv,
			TxTotal: cur.BytesSent,
		}
		if s.primed && elapsed > 0 {
			if prev, ok := s.prev[cur.Name]; ok {
				iface.RxRate = counterRate(prev.BytesRecv, cur.BytesRecv, elapsed)
				iface.TxRate = counterRate(prev.BytesSent, cur.BytesSent, elapsed)
			}
		}
		next[cur.Name] = cur
		status.Interfaces = append(status.Interfaces, iface)
	}

	sort.Slice(status.Interfaces, func(i, j int) bool {
		return status.Interfaces[i].Name < status.Interfaces[j].Name
	})

	s.prev = next
	s.prevAt = now
	s.primed = true

	snap.Network = status
	return nil
}

// counterRate returns the per-second rate between two cumulative counter
// readings, or 0 when the counter went backwards.
func counterRate(prev, cur uint64, elapsed float64) float64 {
	if cur < prev || elapsed <= 0 {
		return 0
	}
	return float64(cur-prev) / elapsed
}
