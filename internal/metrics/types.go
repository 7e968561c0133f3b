package metrics

import "time"

// Reading is an optional telemetry value. Hardware sensors routinely
// disappear, need privileges, or take a sample or two to warm up, so a
// missing value must stay distinguishable from a true zero. Note carries
// a short operator-facing tag: the failure reason when absent, or the
// data source when a fallback tier supplied the value.
type Reading struct {
	Value   float64
	Present bool
	Note    string
}

// Present wraps a measured value.
func Present(v float64) Reading {
	return Reading{Value: v, Present: true}
}

// PresentVia wraps a measured value and records which source produced it.
func PresentVia(v float64, source string) Reading {
	return Reading{Value: v, Present: true, Note: source}
}

// Absent marks a value that could not be read, with the reason.
func Absent(reason string) Reading {
	return Reading{Note: reason}
}

// Ok reports whether the reading holds a real value.
func (r Reading) Ok() bool {
	return r.Present
}

// CPUStatus contains CPU usage information.
// Usage and PerCore are computed from jiffies deltas between samples and
// are 0 on the first sample (they read correctly from the second sample on).
type CPUStatus struct {
	Usage   float64
	PerCore []float64
	Cores   int
	FreqMHz Reading
	Temp    Reading
	Power   Reading
}

// MemoryStatus contains physical memory and swap usage in bytes.
type MemoryStatus struct {
	Used      uint64
	Cached    uint64
	Available uint64
	Total     uint64
	SwapUsed  uint64
	SwapTotal uint64
}

// InterfaceStats contains traffic counters for a single network interface.
// Rates are bytes per second since the previous sample; totals are the
// kernel's cumulative counters.
type InterfaceStats struct {
	Name    string
	RxRate  float64
	TxRate  float64
	RxTotal uint64
	TxTotal uint64
}

// NetworkStatus contains per-interface traffic, sorted by interface name.
type NetworkStatus struct {
	Interfaces []InterfaceStats
}

// IsLoopback reports whether the interface is the loopback device.
func (i InterfaceStats) IsLoopback() bool {
	return i.Name == "lo" || i.Name == "lo0"
}

// Aggregate sums rx/tx rates across all non-loopback interfaces.
func (n *NetworkStatus) Aggregate() (rx, tx float64) {
	for _, iface := range n.Interfaces {
		if iface.IsLoopback() {
			continue
		}
		rx += iface.RxRate
		tx += iface.TxRate
	}
	return rx, tx
}

// DiskStats contains usage for one mounted filesystem.
type DiskStats struct {
	Mount  string
	Device string
	Fstype string
	Used   uint64
	Total  uint64
}

// DiskStatus contains mounted filesystems, deduplicated by backing device
// and sorted by mount point.
type DiskStatus struct {
	Disks []DiskStats
}

// GPUStatus contains GPU telemetry. Every field is optional: each one is
// resolved independently, so a privileged tier failing for memory never
// blanks usage or temperature.
type GPUStatus struct {
	Vendor   string
	Name     string
	Usage    Reading
	Temp     Reading
	Power    Reading
	MemUsed  Reading
	MemTotal Reading
}

// HostStatus contains general machine information.
type HostStatus struct {
	Hostname string
	Uptime   time.Duration
	Load1    float64
	Load5    float64
	Load15   float64
	Battery  Reading
	Charging bool
}

// SystemSnapshot is the merged telemetry for one sample. Domain pointers
// are nil when that provider failed for the tick; Problems records the
// reason keyed by provider name. A snapshot is never mutated after
// assembly, so the render layer may hold it without locking.
type SystemSnapshot struct {
	Taken    time.Time
	CPU      *CPUStatus
	Memory   *MemoryStatus
	Network  *NetworkStatus
	Disk     *DiskStatus
	GPU      *GPUStatus
	Host     *HostStatus
	Problems map[string]string
}
