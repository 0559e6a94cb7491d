//go:build windows

package osreg

import (
	"context"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// System reads the live Windows registry.
type System struct{}

// NewSystem returns the host registry reader.
func NewSystem() Reader { return System{} }

func rootKey(h Hive) (registry.Key, error) {
	switch h {
	case LocalMachine:
		return registry.LOCAL_MACHINE, nil
	case CurrentUser:
		return registry.CURRENT_USER, nil
	default:
		return 0, fmt.Errorf("unknown hive %q", h)
	}
}

// UninstallEntries implements Reader.
func (System) UninstallEntries(ctx context.Context, branch Key) ([]UninstallEntry, error) {
	root, err := rootKey(branch.Hive)
	if err != nil {
		return nil, err
	}
	base, err := registry.OpenKey(root, branch.Path, registry.ENUMERATE_SUB_KEYS|registry.QUERY_VALUE)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", branch, err)
	}
	defer func() { _ = base.Close() }()

	names, err := base.ReadSubKeyNames(-1)
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", branch, err)
	}

	entries := make([]UninstallEntry, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return entries, err
		}
		sub, err := registry.OpenKey(base, name, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		entries = append(entries, UninstallEntry{
			SubKey:          name,
			DisplayName:     stringValue(sub, "DisplayName"),
			Publisher:       stringValue(sub, "Publisher"),
			InstallLocation: stringValue(sub, "InstallLocation"),
		})
		_ = sub.Close()
	}
	return entries, nil
}

// KeyExists implements Reader.
func (System) KeyExists(_ context.Context, key Key) bool {
	root, err := rootKey(key.Hive)
	if err != nil {
		return false
	}
	k, err := registry.OpenKey(root, key.Path, registry.READ)
	if err != nil {
		return false
	}
	_ = k.Close()
	return true
}

func stringValue(k registry.Key, name string) string {
	v, _, err := k.GetStringValue(name)
	if err != nil {
		return ""
	}
	return v
}
