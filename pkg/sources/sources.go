// Package sources implements the ten platform discovery sources. Each source
// is a Scanner composed of one or more Adapters that probe vendor manifests,
// install directory conventions or the software registry.
package sources

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/gamescout/pkg/heuristics"
	"github.com/fulmenhq/gamescout/pkg/inventory"
	"github.com/fulmenhq/gamescout/pkg/logger"
	"github.com/fulmenhq/gamescout/pkg/osreg"
	"github.com/fulmenhq/gamescout/pkg/volume"
	"github.com/spf13/afero"
)

// Env is everything a probe may read. It is shared read-only by all scanners
// of a scan.
type Env struct {
	FS       afero.Fs
	Volumes  []volume.Volume
	Registry osreg.Reader
	Filter   *heuristics.Filter
}

// SystemEnv returns an Env over the host filesystem and registry.
func SystemEnv(volumes []volume.Volume) Env {
	return Env{
		FS:       afero.NewReadOnlyFs(afero.NewOsFs()),
		Volumes:  volumes,
		Registry: osreg.NewSystem(),
		Filter:   DefaultFilter,
	}
}

func (e Env) fs() afero.Fs {
	if e.FS == nil {
		return afero.NewReadOnlyFs(afero.NewOsFs())
	}
	return e.FS
}

func (e Env) filter() *heuristics.Filter {
	if e.Filter == nil {
		return DefaultFilter
	}
	return e.Filter
}

// roots returns the accessible volume roots in scan order.
func (e Env) roots() []string {
	return volume.Roots(volume.Accessible(e.Volumes))
}

// Adapter probes one kind of metadata for a platform. Probe never fails: I/O
// problems are logged and yield no candidates from the affected location.
type Adapter interface {
	Name() string
	Probe(ctx context.Context, env Env) []inventory.Candidate
}

// listDirs returns the immediate subdirectories of dir, sorted by name.
func listDirs(fsys afero.Fs, dir string) []string {
	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		logMissing(dir, err)
		return nil
	}
	var out []string
	for _, info := range infos {
		if info.IsDir() {
			out = append(out, filepath.Join(dir, info.Name()))
		}
	}
	return out
}

func isDir(fsys afero.Fs, path string) bool {
	ok, err := afero.DirExists(fsys, path)
	return err == nil && ok
}

func isFile(fsys afero.Fs, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && !info.IsDir()
}

// logMissing logs lookups of absent paths at trace and anything else at debug.
func logMissing(path string, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		logger.Trace("Path not present", logger.String("path", path))
		return
	}
	logger.Debug("Path not readable", logger.String("path", path), logger.Err(err))
}

// uniquePaths drops repeated paths, keeping the first occurrence. Windows
// paths compare case-insensitively.
func uniquePaths(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0:0]
	for _, p := range paths {
		key := strings.ToLower(filepath.Clean(p))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// FindExecutable returns the shallowest accepted file below dir, searching at
// most depth levels of subdirectories. Within one level, names are visited in
// lexical order. It returns "" when nothing is accepted or ctx is done.
func FindExecutable(ctx context.Context, fsys afero.Fs, dir string, depth int, accept func(path string) bool) string {
	level := []string{dir}
	for d := 0; d <= depth && len(level) > 0; d++ {
		var next []string
		for _, current := range level {
			if ctx.Err() != nil {
				return ""
			}
			infos, err := afero.ReadDir(fsys, current)
			if err != nil {
				logMissing(current, err)
				continue
			}
			for _, info := range infos {
				path := filepath.Join(current, info.Name())
				if info.IsDir() {
					next = append(next, path)
					continue
				}
				if accept(path) {
					return path
				}
			}
		}
		level = next
	}
	return ""
}
