// Package drives enumerates candidate destination roots for the "list"
// CLI verb. It generalizes original_source/disk_utils.py's
// get_available_drives beyond Windows drive letters by reporting every
// mounted partition, cross-platform, via gopsutil.
package drives

import (
	"fmt"
	"sort"

	"github.com/shirou/gopsutil/v4/disk"
)

// Drive describes one mounted partition usable as a sync destination.
type Drive struct {
	MountPoint string
	Device     string
	FSType     string
	TotalBytes uint64
	FreeBytes  uint64
}

// List returns every mounted partition, sorted by mount point, except the
// one mounted at "/" and any other mount of that same device. No other
// system drive is recognized (a Windows system drive such as "C:" is
// listed). Partitions whose usage cannot be read are skipped rather than
// failing the whole call.
func List() ([]Drive, error) {
	parts, err := disk.Partitions(false)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate partitions: %w", err)
	}

	rootDevice := deviceOf(parts, "/")

	out := make([]Drive, 0, len(parts))

	for _, p := range parts {
		if p.Device == rootDevice || p.Mountpoint == "/" {
			continue
		}

		usage, err := disk.Usage(p.Mountpoint)
		if err != nil {
			continue
		}

		out = append(out, Drive{
			MountPoint: p.Mountpoint,
			Device:     p.Device,
			FSType:     p.Fstype,
			TotalBytes: usage.Total,
			FreeBytes:  usage.Free,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].MountPoint < out[j].MountPoint })

	return out, nil
}

func deviceOf(parts []disk.PartitionStat, mountPoint string) string {
	for _, p := range parts {
		if p.Mountpoint == mountPoint {
			return p.Device
		}
	}

	return ""
}
