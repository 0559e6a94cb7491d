package sources

import (
	"context"

	"github.com/fulmenhq/gamescout/pkg/inventory"
)

// Presence describes the evidence that a platform is installed.
type Presence struct {
	Platform  inventory.Platform `json:"platform" yaml:"platform"`
	Installed bool               `json:"installed" yaml:"installed"`
	Roots     []string           `json:"roots,omitempty" yaml:"roots,omitempty"`
	Markers   []string           `json:"markers,omitempty" yaml:"markers,omitempty"`
}

// Detect reports, per platform in canonical order, which install roots and
// manifest directories exist and which registry marker keys are present. It
// does not enumerate titles.
func Detect(ctx context.Context, env Env) ([]Presence, error) {
	fsys := env.fs()
	out := make([]Presence, 0, len(descriptors))

	for _, d := range Descriptors() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := Presence{Platform: d.platform}

		var candidates []string
		for _, root := range env.roots() {
			candidates = append(candidates, d.InstallRoots(root)...)
			candidates = append(candidates, d.ManifestDirs(root)...)
		}
		for _, dir := range uniquePaths(candidates) {
			if isDir(fsys, dir) {
				p.Roots = append(p.Roots, dir)
			}
		}

		if env.Registry != nil {
			for _, key := range d.markerKeys {
				if env.Registry.KeyExists(ctx, key) {
					p.Markers = append(p.Markers, key.String())
				}
			}
		}

		p.Installed = len(p.Roots) > 0 || len(p.Markers) > 0
		out = append(out, p)
	}
	return out, nil
}

// InstalledPlatforms filters a detection result down to the present platforms.
func InstalledPlatforms(presence []Presence) []inventory.Platform {
	var out []inventory.Platform
	for _, p := range presence {
		if p.Installed {
			out = append(out, p.Platform)
		}
	}
	return out
}
