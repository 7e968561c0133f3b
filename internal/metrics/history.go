package metrics

import (
	"sync"
	"time"
)

// DefaultHistorySize is the default number of data points to retain per series.
const DefaultHistorySize = 120

// Well-known series names.
const (
	SeriesCPU    = "cpu"
	SeriesMemory = "mem"
	SeriesGPU    = "gpu"
	SeriesNetRx  = "net.rx"
	SeriesNetTx  = "net.tx"
)

// RxSeries returns the per-interface receive-rate series name.
func RxSeries(iface string) string { return SeriesNetRx + ":" + iface }

// TxSeries returns the per-interface transmit-rate series name.
func TxSeries(iface string) string { return SeriesNetTx + ":" + iface }

// History manages named metric series backed by fixed-size ring buffers.
// It provides thread-safe access: samples are pushed from the sampling
// command goroutine while the view reads for sparkline rendering.
type History struct {
	mu     sync.RWMutex
	size   int
	series map[string]*ringBuffer
}

// point is one entry in a series.
type point struct {
	t time.Time
	v float64
}

// ringBuffer is a fixed-size circular buffer of timestamped values.
type ringBuffer struct {
	data  []point
	head  int
	count int
	size  int
}

// NewHistory creates a history tracker with the specified capacity per series.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:   size,
		series: make(map[string]*ringBuffer),
	}
}

// Size returns the per-series capacity.
func (h *History) Size() int {
	return h.size
}

// Push appends the snapshot's scalar metrics to their series.
// Absent fields are skipped entirely so a gap never reads as a zero.
func (h *History) Push(snap *SystemSnapshot) {
	if snap == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	t := snap.Taken

	if snap.CPU != nil {
		h.push(SeriesCPU, t, snap.CPU.Usage)
	}

	if snap.Memory != nil && snap.Memory.Total > 0 {
		used := float64(snap.Memory.Used) / float64(snap.Memory.Total) * 100
		h.push(SeriesMemory, t, used)
	}

	if snap.GPU != nil && snap.GPU.Usage.Ok() {
		h.push(SeriesGPU, t, snap.GPU.Usage.Value)
	}

	if snap.Network != nil {
		rx, tx := snap.Network.Aggregate()
		h.push(SeriesNetRx, t, rx)
		h.push(SeriesNetTx, t, tx)
		for _, iface := range snap.Network.Interfaces {
			h.push(RxSeries(iface.Name), t, iface.RxRate)
			h.push(TxSeries(iface.Name), t, iface.TxRate)
		}
	}
}

// PushValue appends a single value to the named series at the given time.
func (h *History) PushValue(name string, t time.Time, v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.push(name, t, v)
}

// push must be called with h.mu held.
func (h *History) push(name string, t time.Time, v float64) {
	buf, ok := h.series[name]
	if !ok {
		buf = newRingBuffer(h.size)
		h.series[name] = buf
	}
	buf.push(t, v)
}

// Get returns the last count values of the named series in chronological
// order (oldest first). Returns fewer values if not enough history exists.
func (h *History) Get(name string, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf, ok := h.series[name]
	if !ok {
		return nil
	}
	return buf.getLast(count)
}

// Points returns the last count timestamped points of the named series in
// chronological order.
func (h *History) Points(name string, count int) []Point {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf, ok := h.series[name]
	if !ok {
		return nil
	}
	return buf.getPoints(count)
}

// Len returns the number of stored points in the named series.
func (h *History) Len(name string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf, ok := h.series[name]
	if !ok {
		return 0
	}
	return buf.count
}

// Latest returns the most recent value of the named series.
func (h *History) Latest(name string) (float64, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf, ok := h.series[name]
	if !ok || buf.count == 0 {
		return 0, false
	}
	last := buf.getLast(1)
	return last[0], true
}

// Clear removes the named series.
func (h *History) Clear(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.series, name)
}

// ClearAll removes all series.
func (h *History) ClearAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.series = make(map[string]*ringBuffer)
}

// Point is a timestamped sample exposed for consumers that need the time
// axis, such as tests asserting ordering.
type Point struct {
	Time  time.Time
	Value float64
}

// newRingBuffer creates a new ring buffer with the specified capacity.
func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]point, size),
		size: size,
	}
}

// push adds a value to the ring buffer. Timestamps are kept monotonic:
// a sample dated before the newest entry is clamped to that entry's time.
func (r *ringBuffer) push(t time.Time, v float64) {
	if r.count > 0 {
		newest := r.data[(r.head-1+r.size)%r.size]
		if t.Before(newest.t) {
			t = newest.t
		}
	}
	r.data[r.head] = point{t: t, v: v}
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}

	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)

	// head points to the next write position, so the most recent value is
	// at head-1. We want count values ending there.
	start := (r.head - count + r.size) % r.size

	for i := 0; i < count; i++ {
		idx := (start + i) % r.size
		result[i] = r.data[idx].v
	}

	return result
}

// getPoints returns the last count points in chronological order.
func (r *ringBuffer) getPoints(count int) []Point {
	if count <= 0 || r.count == 0 {
		return nil
	}

	if count > r.count {
		count = r.count
	}

	result := make([]Point, count)
	start := (r.head - count + r.size) % r.size

	for i := 0; i < count; i++ {
		idx := (start + i) % r.size
		result[i] = Point{Time: r.data[idx].t, Value: r.data[idx].v}
	}

	return result
}
