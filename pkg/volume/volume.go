// Package volume enumerates the storage roots a scan may inspect.
package volume

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fulmenhq/gamescout/pkg/logger"
	"github.com/shirou/gopsutil/v4/disk"
)

// Volume is one storage root. Capacity and type are advisory.
type Volume struct {
	Root       string `json:"root" yaml:"root"`
	Device     string `json:"device,omitempty" yaml:"device,omitempty"`
	FSType     string `json:"fsType,omitempty" yaml:"fsType,omitempty"`
	Free       uint64 `json:"free" yaml:"free"`
	Total      uint64 `json:"total" yaml:"total"`
	Accessible bool   `json:"accessible" yaml:"accessible"`
}

// Enumerator lists the volumes available to a scan.
type Enumerator interface {
	ListAccessibleVolumes(ctx context.Context) ([]Volume, error)
}

// pseudo filesystems that never hold installed games
var skippedFSTypes = map[string]bool{
	"proc": true, "sysfs": true, "devtmpfs": true, "devpts": true, "tmpfs": true,
	"cgroup": true, "cgroup2": true, "overlay": true, "squashfs": true,
	"securityfs": true, "debugfs": true, "tracefs": true, "mqueue": true,
	"autofs": true, "fusectl": true, "configfs": true, "pstore": true, "bpf": true,
	"nsfs": true, "binfmt_misc": true, "hugetlbfs": true, "efivarfs": true,
}

// System enumerates the host's mounted partitions.
type System struct {
	// Priority roots are placed first by Order, e.g. the system drive.
	Priority []string
}

// NewSystem returns an enumerator over the host partitions.
func NewSystem(priority ...string) *System {
	return &System{Priority: priority}
}

// ListAccessibleVolumes implements Enumerator.
func (s *System) ListAccessibleVolumes(ctx context.Context) ([]Volume, error) {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}

	seen := make(map[string]bool, len(partitions))
	volumes := make([]Volume, 0, len(partitions))
	for _, p := range partitions {
		if skippedFSTypes[strings.ToLower(p.Fstype)] {
			continue
		}
		root := CanonicalRoot(p.Mountpoint)
		if root == "" || seen[root] {
			continue
		}
		seen[root] = true

		v := Volume{Root: root, Device: p.Device, FSType: p.Fstype}
		usage, err := disk.UsageWithContext(ctx, root)
		if err != nil {
			logger.Debug("Volume not accessible", logger.String("root", root), logger.Err(err))
		} else {
			v.Free = usage.Free
			v.Total = usage.Total
			v.Accessible = true
		}
		volumes = append(volumes, v)
	}

	return Order(Accessible(volumes), s.Priority), nil
}

// Static enumerates a fixed list of roots, e.g. from --volume flags.
type Static struct {
	Roots    []string
	Priority []string
}

// ListAccessibleVolumes implements Enumerator. Roots that cannot be queried
// for usage are still returned as accessible; the adapters probe them anyway.
func (s Static) ListAccessibleVolumes(ctx context.Context) ([]Volume, error) {
	volumes := make([]Volume, 0, len(s.Roots))
	seen := make(map[string]bool, len(s.Roots))
	for _, r := range s.Roots {
		root := CanonicalRoot(r)
		if root == "" || seen[root] {
			continue
		}
		seen[root] = true
		v := Volume{Root: root, Accessible: true}
		if usage, err := disk.UsageWithContext(ctx, root); err == nil {
			v.Free = usage.Free
			v.Total = usage.Total
			v.FSType = usage.Fstype
		}
		volumes = append(volumes, v)
	}
	return Order(volumes, s.Priority), nil
}

// Fixed is an Enumerator returning a prepared list unchanged.
type Fixed []Volume

// ListAccessibleVolumes implements Enumerator.
func (f Fixed) ListAccessibleVolumes(context.Context) ([]Volume, error) {
	out := make([]Volume, len(f))
	copy(out, f)
	return Accessible(out), nil
}

// CanonicalRoot turns a mount point into a root path; bare drive letters
// such as "D:" become "D:\".
func CanonicalRoot(mount string) string {
	m := strings.TrimSpace(mount)
	if m == "" {
		return ""
	}
	if len(m) == 2 && m[1] == ':' {
		return strings.ToUpper(m) + `\`
	}
	if len(m) == 3 && m[1] == ':' && (m[2] == '\\' || m[2] == '/') {
		return strings.ToUpper(m[:2]) + `\`
	}
	return filepath.Clean(m)
}

// Accessible drops volumes flagged inaccessible.
func Accessible(volumes []Volume) []Volume {
	out := volumes[:0:0]
	for _, v := range volumes {
		if v.Accessible {
			out = append(out, v)
		}
	}
	return out
}

// Order returns volumes with the priority roots first (in the given order),
// followed by the rest sorted by descending free space. The order only
// affects iteration, never which games are found.
func Order(volumes []Volume, priority []string) []Volume {
	rank := make(map[string]int, len(priority))
	for i, p := range priority {
		root := CanonicalRoot(p)
		if _, dup := rank[root]; !dup {
			rank[root] = i
		}
	}

	out := make([]Volume, len(volumes))
	copy(out, volumes)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iPriority := rank[out[i].Root]
		rj, jPriority := rank[out[j].Root]
		switch {
		case iPriority && jPriority:
			return ri < rj
		case iPriority != jPriority:
			return iPriority
		default:
			return out[i].Free > out[j].Free
		}
	})
	return out
}

// Roots extracts the root paths.
func Roots(volumes []Volume) []string {
	out := make([]string, len(volumes))
	for i, v := range volumes {
		out[i] = v.Root
	}
	return out
}
