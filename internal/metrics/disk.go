package metrics

import (
	"context"
	"sort"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/rileyhilliard/vitals/internal/errors"
)

// DiskSampler reads usage for mounted physical filesystems. Bind mounts
// and btrfs subvolumes expose one device under several mount points;
// those are deduplicated by backing device, keeping the mount closest
// to the filesystem root.
type DiskSampler struct{}

func NewDiskSampler() *DiskSampler { return &DiskSampler{} }

func (s *DiskSampler) Name() string { return "disk" }

func (s *DiskSampler) Sample(ctx context.Context, snap *SystemSnapshot) error {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return errors.Wrap(err, "cannot list mounted filesystems")
	}

	status := &DiskStatus{}
	for _, part := range dedupeByDevice(parts) {
		// A mount we cannot stat (stale NFS, restricted mount) is
		// skipped without failing the whole sample.
		usage, err := disk.UsageWithContext(ctx, part.Mountpoint)
		if err != nil || usage.Total == 0 {
			continue
		}
		status.Disks = append(status.Disks, DiskStats{
			Mount:  part.Mountpoint,
			Device: part.Device,
			Fstype: part.Fstype,
			Used:   usage.Used,
			Total:  usage.Total,
		})
	}

	sort.Slice(status.Disks, func(i, j int) bool {
		return status.Disks[i].Mount < status.Disks[j].Mount
	})

	snap.Disk = status
	return nil
}

// dedupeByDevice keeps one mount per backing device, preferring the
// shortest mount path so "/" wins over a subvolume or bind mount of the
// same device.
func dedupeByDevice(parts []disk.PartitionStat) []disk.PartitionStat {
	sorted := append([]disk.PartitionStat(nil), parts...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i].Mountpoint, sorted[j].Mountpoint
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})

	seen := make(map[string]bool, len(sorted))
	kept := sorted[:0]
	for _, part := range sorted {
		if seen[part.Device] {
			continue
		}
		seen[part.Device] = true
		kept = append(kept, part)
	}
	return kept
}
