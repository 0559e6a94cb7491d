package sources

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/gamescout/pkg/inventory"
)

// knownTitleAdapter looks for a fixed launcher file and emits a fixed title.
type knownTitleAdapter struct {
	desc  Descriptor
	file  string
	appID string
	title string
}

func (a knownTitleAdapter) Name() string { return "known-title" }

func (a knownTitleAdapter) Probe(ctx context.Context, env Env) []inventory.Candidate {
	fsys := env.fs()
	match := func(path string) bool { return strings.EqualFold(filepath.Base(path), a.file) }

	var roots []string
	for _, root := range env.roots() {
		roots = append(roots, a.desc.InstallRoots(root)...)
	}
	for _, root := range uniquePaths(roots) {
		if ctx.Err() != nil {
			return nil
		}
		if !isDir(fsys, root) {
			continue
		}
		if exe := FindExecutable(ctx, fsys, root, a.desc.exeDepth, match); exe != "" {
			return []inventory.Candidate{{AppID: a.appID, Name: a.title, ExecutablePath: exe}}
		}
	}
	return nil
}
