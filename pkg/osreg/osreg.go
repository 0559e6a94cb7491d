// Package osreg reads the operating system software registry. Only Windows
// has one; elsewhere the system reader reports ErrUnsupported and adapters
// treat that as an empty branch.
package osreg

import (
	"context"
	"errors"
	"strings"
)

// ErrUnsupported is returned when the host has no software registry.
var ErrUnsupported = errors.New("software registry not supported on this platform")

// Hive names a registry root.
type Hive string

const (
	LocalMachine Hive = "HKLM"
	CurrentUser  Hive = "HKCU"
)

// Key addresses a registry key under a hive.
type Key struct {
	Hive Hive
	Path string
}

func (k Key) String() string {
	return string(k.Hive) + `\` + k.Path
}

// UninstallBranches are the branches listing installed software.
var UninstallBranches = []Key{
	{Hive: LocalMachine, Path: `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`},
	{Hive: LocalMachine, Path: `SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`},
	{Hive: CurrentUser, Path: `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`},
}

// UninstallEntry is the value triple read from one subkey of an uninstall branch.
type UninstallEntry struct {
	SubKey          string
	DisplayName     string
	Publisher       string
	InstallLocation string
}

// MatchesVendor reports whether the publisher or display name contains any
// of the vendor terms, case-insensitively.
func (e UninstallEntry) MatchesVendor(terms []string) bool {
	name := strings.ToLower(e.DisplayName)
	publisher := strings.ToLower(e.Publisher)
	for _, t := range terms {
		t = strings.ToLower(t)
		if t == "" {
			continue
		}
		if strings.Contains(publisher, t) || strings.Contains(name, t) {
			return true
		}
	}
	return false
}

// Reader reads software registry branches.
type Reader interface {
	// UninstallEntries lists the subkeys of branch. Subkeys missing any of
	// the three values are still returned with the values they have.
	UninstallEntries(ctx context.Context, branch Key) ([]UninstallEntry, error)
	// KeyExists reports whether key can be opened for reading.
	KeyExists(ctx context.Context, key Key) bool
}

// Static is an in-memory Reader, used for tests and hosts without a registry.
type Static struct {
	Branches map[Key][]UninstallEntry
	Keys     map[Key]bool
}

// UninstallEntries implements Reader.
func (s Static) UninstallEntries(ctx context.Context, branch Key) ([]UninstallEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, ok := s.Branches[branch]
	if !ok {
		return nil, nil
	}
	out := make([]UninstallEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// KeyExists implements Reader.
func (s Static) KeyExists(_ context.Context, key Key) bool {
	return s.Keys[key]
}
