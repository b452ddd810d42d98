// Package drives lists mounted volumes for the sidebar.
package drives

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// GB is one gibibyte.
const GB = 1024 * 1024 * 1024

// Drive is one mounted volume.
type Drive struct {
	Mountpoint  string
	Device      string
	Fstype      string
	TotalGB     float64
	FreeGB      float64
	UsedPercent float64
}

// Label is the sidebar text for d.
func (d Drive) Label() string {
	if d.TotalGB == 0 {
		return d.Mountpoint
	}
	return fmt.Sprintf("%s  %.1f/%.1f GB free", d.Mountpoint, d.FreeGB, d.TotalGB)
}

// Hooks over gopsutil, replaced in tests.
var (
	partitions = disk.Partitions
	usage      = disk.Usage
)

// Pseudo and system mount trees that are never useful to browse.
var skipPrefixes = []string{"/proc", "/sys", "/dev", "/run", "/snap", "/var/lib/docker", "/System/Volumes"}

var skipFstypes = map[string]bool{
	"proc": true, "sysfs": true, "devtmpfs": true, "devpts": true, "tmpfs": true,
	"cgroup": true, "cgroup2": true, "overlay": true, "squashfs": true, "autofs": true,
	"mqueue": true, "debugfs": true, "tracefs": true, "securityfs": true, "pstore": true,
	"bpf": true, "fusectl": true, "configfs": true, "hugetlbfs": true, "nsfs": true,
}

// List returns browsable mounted volumes sorted by mountpoint. Volumes whose
// usage cannot be read are still listed, without sizes.
func List(logger *slog.Logger) ([]Drive, error) {
	parts, err := partitions(false)
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}

	seen := make(map[string]bool)
	var out []Drive
	for _, p := range parts {
		if seen[p.Mountpoint] || skip(p) {
			continue
		}
		seen[p.Mountpoint] = true

		d := Drive{Mountpoint: p.Mountpoint, Device: p.Device, Fstype: p.Fstype}
		u, err := usage(p.Mountpoint)
		if err != nil {
			if logger != nil {
				logger.Debug("disk usage unavailable", "mountpoint", p.Mountpoint, "error", err)
			}
		} else {
			d.TotalGB = float64(u.Total) / GB
			d.FreeGB = float64(u.Free) / GB
			d.UsedPercent = u.UsedPercent
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mountpoint < out[j].Mountpoint })
	return out, nil
}

func skip(p disk.PartitionStat) bool {
	if skipFstypes[p.Fstype] {
		return true
	}
	for _, prefix := range skipPrefixes {
		if p.Mountpoint == prefix || strings.HasPrefix(p.Mountpoint, prefix+"/") {
			return true
		}
	}
	return false
}
