package sources

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/fulmenhq/gamescout/pkg/inventory"
	"github.com/fulmenhq/gamescout/pkg/logger"
	"github.com/spf13/afero"
)

// epicManifestAdapter reads the launcher's *.item JSON manifests.
type epicManifestAdapter struct {
	desc Descriptor
}

func (a epicManifestAdapter) Name() string { return "epic-manifest" }

func (a epicManifestAdapter) Probe(ctx context.Context, env Env) []inventory.Candidate {
	fsys := env.fs()

	var dirs []string
	for _, root := range env.roots() {
		dirs = append(dirs, a.desc.ManifestDirs(root)...)
	}

	var out []inventory.Candidate
	for _, dir := range uniquePaths(dirs) {
		infos, err := afero.ReadDir(fsys, dir)
		if err != nil {
			logMissing(dir, err)
			continue
		}
		for _, info := range infos {
			if ctx.Err() != nil {
				return out
			}
			if info.IsDir() || !strings.EqualFold(filepath.Ext(info.Name()), ".item") {
				continue
			}
			path := filepath.Join(dir, info.Name())
			data, err := afero.ReadFile(fsys, path)
			if err != nil {
				logger.Debug("Skipping unreadable Epic manifest", logger.String("path", path), logger.Err(err))
				continue
			}
			if c, ok := parseEpicManifest(fsys, data); ok {
				out = append(out, c)
			} else {
				logger.Debug("Skipping incomplete Epic manifest", logger.String("path", path))
			}
		}
	}
	return out
}

// parseEpicManifest requires AppName, DisplayName and an existing
// InstallLocation.
func parseEpicManifest(fsys afero.Fs, data []byte) (inventory.Candidate, bool) {
	field := func(key string) string {
		v, err := jsonparser.GetString(data, key)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(v)
	}

	appName := field("AppName")
	displayName := field("DisplayName")
	location := field("InstallLocation")
	if appName == "" || displayName == "" || location == "" || !isDir(fsys, location) {
		return inventory.Candidate{}, false
	}

	c := inventory.Candidate{AppID: appName, Name: displayName, InstallDir: location}
	if exe := field("LaunchExecutable"); exe != "" {
		c.ExecutablePath = filepath.Join(location, filepath.FromSlash(exe))
	}
	namespace, item := field("CatalogNamespace"), field("CatalogItemId")
	if namespace != "" && item != "" {
		c.LaunchID = namespace + ":" + item + ":" + appName
	}
	return c, true
}
