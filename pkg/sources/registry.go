package sources

import (
	"context"
	"errors"
	"strings"

	"github.com/fulmenhq/gamescout/pkg/inventory"
	"github.com/fulmenhq/gamescout/pkg/logger"
	"github.com/fulmenhq/gamescout/pkg/osreg"
)

// registryAdapter reads the uninstall branches of the software registry and
// keeps entries whose publisher or name carries one of the vendor terms.
type registryAdapter struct {
	desc Descriptor
	// appID derives the app id from the entry; nil uses the subkey name.
	appID func(osreg.UninstallEntry) string
}

func (a registryAdapter) Name() string { return "registry" }

func (a registryAdapter) Probe(ctx context.Context, env Env) []inventory.Candidate {
	if env.Registry == nil {
		return nil
	}
	fsys := env.fs()
	accept := func(path string) bool { return env.filter().AcceptExecutable(a.desc.platform, path) }

	var out []inventory.Candidate
	for _, branch := range osreg.UninstallBranches {
		entries, err := env.Registry.UninstallEntries(ctx, branch)
		if errors.Is(err, osreg.ErrUnsupported) {
			return nil
		}
		if err != nil {
			logger.Debug("Registry branch not readable", logger.String("branch", branch.String()), logger.Err(err))
			continue
		}
		for _, e := range entries {
			if ctx.Err() != nil {
				return out
			}
			name := strings.TrimSpace(e.DisplayName)
			location := strings.TrimSpace(e.InstallLocation)
			if name == "" || location == "" || !e.MatchesVendor(a.desc.vendorTerms) {
				continue
			}
			if !isDir(fsys, location) {
				logger.Debug("Registry install location missing", logger.String("name", name), logger.String("path", location))
				continue
			}
			exe := FindExecutable(ctx, fsys, location, a.desc.exeDepth, accept)
			if exe == "" {
				continue
			}
			appID := e.SubKey
			if a.appID != nil {
				appID = a.appID(e)
			}
			out = append(out, inventory.Candidate{AppID: appID, Name: name, ExecutablePath: exe, InstallDir: location})
		}
	}
	return out
}
