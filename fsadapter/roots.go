package fsadapter

import (
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
)

// Root describes one storage root a pane can navigate to directly (a
// drive, mount point, or volume), backing the pane's "This PC" root
// view.
type Root struct {
	Path        string
	Label       string
	FileSystem  string
	TotalBytes  uint64
	FreeBytes   uint64
	IsRemovable bool
}

// EnumerateRoots lists the storage roots visible on this host, skipping
// pseudo filesystems (cdfs and friends).
func EnumerateRoots() ([]Root, error) {
	partitions, err := disk.Partitions(false)
	if err != nil {
		return nil, err
	}

	roots := make([]Root, 0, len(partitions))
	for _, p := range partitions {
		if p.Fstype == "" || p.Fstype == "cdfs" {
			continue
		}
		usage, err := disk.Usage(p.Mountpoint)
		if err != nil {
			continue
		}
		roots = append(roots, Root{
			Path:       p.Mountpoint,
			Label:      p.Mountpoint,
			FileSystem: p.Fstype,
			TotalBytes: usage.Total,
			FreeBytes:  usage.Free,
		})
	}
	return roots, nil
}

// HostDisplayName returns a short "Computer" label for the root view's
// heading, using the host's reported name.
func HostDisplayName() string {
	info, err := host.Info()
	if err != nil || info.Hostname == "" {
		return "This PC"
	}
	return info.Hostname
}
