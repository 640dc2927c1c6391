//go:build windows

package fsadapter

import (
	"strings"

	"github.com/yusufpapurcu/wmi"
)

// win32LogicalDisk mirrors the WMI class fields EnrichRootsWithVolumeInfo
// needs: label, free space, and drive type.
type win32LogicalDisk struct {
	DeviceID    string
	VolumeName  string
	FreeSpace   uint64
	DriveType   uint32
	Size        uint64
	Description string
}

const driveTypeRemovable = 2

// EnrichRootsWithVolumeInfo fills in the volume label and removable flag
// for each root from Win32_LogicalDisk, overriding the generic mountpoint
// label EnumerateRoots falls back to.
func EnrichRootsWithVolumeInfo(roots []Root) error {
	var disks []win32LogicalDisk
	if err := wmi.Query("SELECT DeviceID, VolumeName, FreeSpace, DriveType, Size, Description FROM Win32_LogicalDisk", &disks); err != nil {
		return err
	}

	byDrive := make(map[string]win32LogicalDisk, len(disks))
	for _, d := range disks {
		byDrive[strings.ToUpper(d.DeviceID)] = d
	}

	for i := range roots {
		drive := strings.ToUpper(strings.TrimSuffix(roots[i].Path, `\`))
		d, ok := byDrive[drive]
		if !ok {
			continue
		}
		label := d.VolumeName
		if label == "" {
			label = d.Description
		}
		if label == "" {
			label = "Local Disk (" + drive + ")"
		} else {
			label = label + " (" + drive + ")"
		}
		roots[i].Label = label
		roots[i].FreeBytes = d.FreeSpace
		if d.Size > 0 {
			roots[i].TotalBytes = d.Size
		}
		roots[i].IsRemovable = d.DriveType == driveTypeRemovable
	}
	return nil
}
