package sources

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/fulmenhq/gamescout/pkg/inventory"
	"github.com/fulmenhq/gamescout/pkg/logger"
)

const eaInstallerData = "__Installer/installerdata.xml"

// eaManifestAdapter reads __Installer/installerdata.xml from every install
// directory below the EA roots.
type eaManifestAdapter struct {
	desc Descriptor
}

func (a eaManifestAdapter) Name() string { return "ea-manifest" }

func (a eaManifestAdapter) Probe(ctx context.Context, env Env) []inventory.Candidate {
	fsys := env.fs()
	accept := func(path string) bool { return env.filter().AcceptExecutable(a.desc.platform, path) }

	var roots []string
	for _, root := range env.roots() {
		roots = append(roots, a.desc.InstallRoots(root)...)
	}

	var out []inventory.Candidate
	for _, root := range uniquePaths(roots) {
		for _, dir := range listDirs(fsys, root) {
			if ctx.Err() != nil {
				return out
			}
			path := filepath.Join(dir, filepath.FromSlash(eaInstallerData))
			f, err := fsys.Open(path)
			if err != nil {
				logMissing(path, err)
				continue
			}
			doc := etree.NewDocument()
			_, err = doc.ReadFrom(f)
			_ = f.Close()
			if err != nil {
				logger.Debug("Skipping malformed EA manifest", logger.String("path", path), logger.Err(err))
				continue
			}

			name, appID := parseEAManifest(doc)
			if name == "" {
				continue
			}
			out = append(out, inventory.Candidate{
				AppID:          appID,
				Name:           name,
				ExecutablePath: FindExecutable(ctx, fsys, dir, a.desc.exeDepth, accept),
				InstallDir:     dir,
			})
		}
	}
	return out
}

// parseEAManifest returns the en_US title (or the first title) and the first
// content id.
func parseEAManifest(doc *etree.Document) (name, appID string) {
	for _, title := range doc.FindElements("//gameTitles/gameTitle") {
		text := strings.TrimSpace(title.Text())
		if text == "" {
			continue
		}
		if strings.EqualFold(title.SelectAttrValue("locale", ""), "en_US") {
			name = text
			break
		}
		if name == "" {
			name = text
		}
	}
	if id := doc.FindElement("//contentIDs/contentID"); id != nil {
		appID = strings.TrimSpace(id.Text())
	}
	return name, appID
}
