package sources

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/gamescout/pkg/inventory"
)

// directoryAdapter treats every immediate subdirectory of an install root as
// one title, named after the directory. Directories without an accepted
// executable are dropped.
type directoryAdapter struct {
	desc Descriptor
	// roots overrides the install root templates, e.g. Steam libraries.
	roots func(Env) []string
	// rename maps the directory name to a title.
	rename func(string) string
	// appID derives the app id from the title; nil keeps the directory name.
	appID func(name string) string
	// requireExe is an extra executable predicate on top of the filter.
	requireExe func(path string) bool
}

func (a directoryAdapter) Name() string { return "directory" }

func (a directoryAdapter) installRoots(env Env) []string {
	if a.roots != nil {
		return uniquePaths(a.roots(env))
	}
	var roots []string
	for _, root := range env.roots() {
		roots = append(roots, a.desc.InstallRoots(root)...)
	}
	return uniquePaths(roots)
}

func (a directoryAdapter) Probe(ctx context.Context, env Env) []inventory.Candidate {
	fsys := env.fs()
	filter := env.filter()
	accept := func(path string) bool {
		if !filter.AcceptExecutable(a.desc.platform, path) {
			return false
		}
		return a.requireExe == nil || a.requireExe(path)
	}

	var out []inventory.Candidate
	for _, root := range a.installRoots(env) {
		for _, dir := range listDirs(fsys, root) {
			if ctx.Err() != nil {
				return out
			}
			folder := filepath.Base(dir)
			name := folder
			if a.rename != nil {
				name = a.rename(folder)
			}
			// skip the walk for names the filter rejects anyway
			if !filter.Accept(a.desc.platform, name, "") {
				continue
			}
			exe := FindExecutable(ctx, fsys, dir, a.desc.exeDepth, accept)
			if exe == "" {
				continue
			}
			appID := folder
			if a.appID != nil {
				appID = a.appID(name)
			}
			out = append(out, inventory.Candidate{AppID: appID, Name: name, ExecutablePath: exe, InstallDir: dir})
		}
	}
	return out
}

func underscoresToSpaces(s string) string { return strings.ReplaceAll(s, "_", " ") }

func withoutSpaces(s string) string { return strings.ReplaceAll(s, " ", "") }

func containsFold(fragment string) func(string) bool {
	fragment = strings.ToLower(fragment)
	return func(path string) bool {
		return strings.Contains(strings.ToLower(filepath.Base(path)), fragment)
	}
}
