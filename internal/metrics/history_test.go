package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotAt(t time.Time, cpuPct float64) *SystemSnapshot {
	return &SystemSnapshot{
		Taken:  t,
		CPU:    &CPUStatus{Usage: cpuPct},
		Memory: &MemoryStatus{Used: 4_000_000_000, Total: 8_000_000_000},
	}
}

func TestNewHistory(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		expected int
	}{
		{"default size", 0, DefaultHistorySize},
		{"negative size", -1, DefaultHistorySize},
		{"custom size", 100, 100},
		{"small size", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory(tt.size)
			assert.NotNil(t, h)
			assert.Equal(t, tt.expected, h.Size())
		})
	}
}

func TestHistoryPush(t *testing.T) {
	h := NewHistory(10)
	now := time.Now()

	h.Push(snapshotAt(now, 50))
	assert.Equal(t, 1, h.Len(SeriesCPU))
	assert.Equal(t, 1, h.Len(SeriesMemory))

	// Nil snapshots are ignored
	h.Push(nil)
	assert.Equal(t, 1, h.Len(SeriesCPU))
}

func TestHistoryPushMultiple(t *testing.T) {
	h := NewHistory(10)
	now := time.Now()

	for i := 0; i < 5; i++ {
		h.Push(snapshotAt(now.Add(time.Duration(i)*time.Second), float64(i*10)))
	}

	assert.Equal(t, 5, h.Len(SeriesCPU))

	cpu := h.Get(SeriesCPU, 5)
	require.Len(t, cpu, 5)
	assert.Equal(t, []float64{0, 10, 20, 30, 40}, cpu)
}

func TestHistoryRingBufferOverflow(t *testing.T) {
	h := NewHistory(5)
	now := time.Now()

	// Push more values than the buffer holds
	for i := 0; i < 8; i++ {
		h.Push(snapshotAt(now.Add(time.Duration(i)*time.Second), float64(i)))
	}

	assert.Equal(t, 5, h.Len(SeriesCPU))

	cpu := h.Get(SeriesCPU, 10) // request more than available
	require.Len(t, cpu, 5)
	assert.Equal(t, []float64{3, 4, 5, 6, 7}, cpu)
}

func TestHistoryGet(t *testing.T) {
	h := NewHistory(10)
	now := time.Now()

	// Empty history
	assert.Nil(t, h.Get("nonexistent", 5))

	for i := 0; i < 7; i++ {
		h.Push(snapshotAt(now.Add(time.Duration(i)*time.Second), float64(i*10)))
	}

	cpu := h.Get(SeriesCPU, 10)
	assert.Equal(t, []float64{0, 10, 20, 30, 40, 50, 60}, cpu)

	// Partial request returns the most recent values
	cpu = h.Get(SeriesCPU, 3)
	assert.Equal(t, []float64{40, 50, 60}, cpu)

	assert.Nil(t, h.Get(SeriesCPU, 0))
}

func TestHistoryMemoryPercent(t *testing.T) {
	h := NewHistory(10)
	now := time.Now()

	for i := 1; i <= 5; i++ {
		h.Push(&SystemSnapshot{
			Taken: now.Add(time.Duration(i) * time.Second),
			Memory: &MemoryStatus{
				Used:  uint64(i) * 1_000_000_000,
				Total: 10_000_000_000,
			},
		})
	}

	mem := h.Get(SeriesMemory, 5)
	require.Len(t, mem, 5)
	for i, want := range []float64{10, 20, 30, 40, 50} {
		assert.InDelta(t, want, mem[i], 0.1)
	}
}

func TestHistorySkipsAbsentFields(t *testing.T) {
	h := NewHistory(10)
	now := time.Now()

	// No GPU in the snapshot: no gpu series
	h.Push(snapshotAt(now, 50))
	assert.Nil(t, h.Get(SeriesGPU, 5))

	// GPU present but usage unreadable: still no gpu point, because a
	// gap must never read as zero
	h.Push(&SystemSnapshot{
		Taken: now.Add(time.Second),
		GPU:   &GPUStatus{Vendor: "Intel", Usage: Absent("Warmup")},
	})
	assert.Nil(t, h.Get(SeriesGPU, 5))

	for i := 0; i < 3; i++ {
		h.Push(&SystemSnapshot{
			Taken: now.Add(time.Duration(2+i) * time.Second),
			GPU:   &GPUStatus{Vendor: "Intel", Usage: Present(float64(i * 25))},
		})
	}

	gpu := h.Get(SeriesGPU, 5)
	require.Len(t, gpu, 3)
	assert.Equal(t, []float64{0, 25, 50}, gpu)
}

func TestHistoryNetworkSeries(t *testing.T) {
	h := NewHistory(10)
	now := time.Now()

	for i := 1; i <= 4; i++ {
		h.Push(&SystemSnapshot{
			Taken: now.Add(time.Duration(i) * time.Second),
			Network: &NetworkStatus{
				Interfaces: []InterfaceStats{
					{Name: "eth0", RxRate: float64(i * 1000), TxRate: float64(i * 500)},
					{Name: "lo", RxRate: 99999, TxRate: 99999},
				},
			},
		})
	}

	rx := h.Get(RxSeries("eth0"), 4)
	require.Len(t, rx, 4)
	assert.Equal(t, []float64{1000, 2000, 3000, 4000}, rx)

	tx := h.Get(TxSeries("eth0"), 4)
	assert.Equal(t, []float64{500, 1000, 1500, 2000}, tx)

	// Aggregate series excludes loopback
	agg := h.Get(SeriesNetRx, 4)
	require.Len(t, agg, 4)
	assert.Equal(t, []float64{1000, 2000, 3000, 4000}, agg)
}

func TestHistoryTimestampsMonotonic(t *testing.T) {
	h := NewHistory(10)
	base := time.Now()

	h.PushValue(SeriesCPU, base, 1)
	h.PushValue(SeriesCPU, base.Add(2*time.Second), 2)
	// A sample dated before the newest entry is clamped, not reordered
	h.PushValue(SeriesCPU, base.Add(time.Second), 3)

	points := h.Points(SeriesCPU, 10)
	require.Len(t, points, 3)
	for i := 1; i < len(points); i++ {
		assert.False(t, points[i].Time.Before(points[i-1].Time),
			"timestamps must be non-decreasing")
	}
	assert.Equal(t, []float64{1, 2, 3}, h.Get(SeriesCPU, 10))
}

func TestHistoryLatest(t *testing.T) {
	h := NewHistory(10)
	now := time.Now()

	_, ok := h.Latest(SeriesCPU)
	assert.False(t, ok)

	h.Push(snapshotAt(now, 42))
	v, ok := h.Latest(SeriesCPU)
	require.True(t, ok)
	assert.Equal(t, 42.0, v)
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(10)
	now := time.Now()

	h.Push(snapshotAt(now, 10))
	h.Clear(SeriesCPU)
	assert.Equal(t, 0, h.Len(SeriesCPU))
	assert.Equal(t, 1, h.Len(SeriesMemory))

	h.ClearAll()
	assert.Equal(t, 0, h.Len(SeriesMemory))
}

func TestHistoryConcurrentAccess(t *testing.T) {
	h := NewHistory(100)
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.Push(snapshotAt(now.Add(time.Duration(j)*time.Millisecond), float64(n)))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.Get(SeriesCPU, 10)
				h.Len(SeriesCPU)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, h.Len(SeriesCPU))
}
