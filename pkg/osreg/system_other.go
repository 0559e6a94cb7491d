//go:build !windows

package osreg

import "context"

// System is the registry reader for hosts without a software registry.
type System struct{}

// NewSystem returns the host registry reader.
func NewSystem() Reader { return System{} }

// UninstallEntries implements Reader.
func (System) UninstallEntries(context.Context, Key) ([]UninstallEntry, error) {
	return nil, ErrUnsupported
}

// KeyExists implements Reader.
func (System) KeyExists(context.Context, Key) bool { return false }
