package sources

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fulmenhq/gamescout/pkg/inventory"
	"github.com/fulmenhq/gamescout/pkg/logger"
	"github.com/fulmenhq/gamescout/pkg/osreg"
)

// Scanner discovers the candidates of one platform.
type Scanner interface {
	Platform() inventory.Platform
	Tier() Tier
	Scan(ctx context.Context, env Env) ([]inventory.Candidate, error)
}

// Options tunes scanner construction.
type Options struct {
	// AdapterTimeout bounds each adapter probe; zero means unbounded.
	AdapterTimeout time.Duration
}

// sourceScanner runs its adapters in order, filters every raw candidate and
// suppresses duplicates within the platform. The first record of a title
// wins; later duplicates only fill its empty optional fields.
type sourceScanner struct {
	desc     Descriptor
	adapters []Adapter
	timeout  time.Duration
}

// NewScanner composes the scanner of one platform.
func NewScanner(p inventory.Platform, opts Options) (Scanner, error) {
	desc, ok := Lookup(p)
	if !ok {
		return nil, fmt.Errorf("%w: %q", inventory.ErrUnknownPlatform, p)
	}
	return &sourceScanner{desc: desc, adapters: compose(desc), timeout: opts.AdapterTimeout}, nil
}

// NewScanners composes all ten scanners in canonical order.
func NewScanners(opts Options) []Scanner {
	out := make([]Scanner, 0, len(descriptors))
	for _, d := range Descriptors() {
		out = append(out, &sourceScanner{desc: d, adapters: compose(d), timeout: opts.AdapterTimeout})
	}
	return out
}

func compose(d Descriptor) []Adapter {
	switch d.platform {
	case inventory.Steam:
		return []Adapter{
			steamManifestAdapter{desc: d},
			directoryAdapter{desc: d, roots: steamCommonRoots(d)},
		}
	case inventory.Epic:
		return []Adapter{epicManifestAdapter{desc: d}, directoryAdapter{desc: d}}
	case inventory.Riot:
		return []Adapter{directoryAdapter{desc: d}}
	case inventory.StarCitizen:
		return []Adapter{knownTitleAdapter{desc: d, file: "StarCitizen_Launcher.exe", appID: "StarCitizen", title: "Star Citizen"}}
	case inventory.EA:
		return []Adapter{eaManifestAdapter{desc: d}, directoryAdapter{desc: d}}
	case inventory.Ubisoft:
		return []Adapter{directoryAdapter{desc: d, rename: underscoresToSpaces}}
	case inventory.BattleNet:
		return []Adapter{registryAdapter{desc: d}, directoryAdapter{desc: d}}
	case inventory.Rockstar:
		return []Adapter{registryAdapter{desc: d}, directoryAdapter{desc: d}}
	case inventory.GOG:
		return []Adapter{
			registryAdapter{desc: d, appID: func(e osreg.UninstallEntry) string { return withoutSpaces(strings.TrimSpace(e.DisplayName)) }},
			directoryAdapter{desc: d, appID: withoutSpaces},
		}
	case inventory.MicrosoftStore:
		return []Adapter{directoryAdapter{desc: d, requireExe: containsFold("gamelaunchhelper")}}
	default:
		return nil
	}
}

func (s *sourceScanner) Platform() inventory.Platform { return s.desc.platform }

func (s *sourceScanner) Tier() Tier { return s.desc.tier }

func (s *sourceScanner) Scan(ctx context.Context, env Env) ([]inventory.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	platform := s.desc.platform
	filter := env.filter()
	merged := newMergeSet()

	for _, adapter := range s.adapters {
		raw := s.probe(ctx, env, adapter)
		kept := 0
		for _, c := range raw {
			c.Platform = platform
			c.Name = strings.TrimSpace(c.Name)
			c.AppID = strings.TrimSpace(c.AppID)
			if c.Validate() != nil {
				continue
			}
			if !filter.Accept(platform, c.Name, c.ExecutablePath) {
				logger.Trace("Candidate filtered", logger.Platform(platform), logger.String("name", c.Name))
				continue
			}
			if merged.add(c) {
				kept++
			}
		}
		logger.Debug("Adapter probed",
			logger.Platform(platform),
			logger.String("adapter", adapter.Name()),
			logger.Int("raw", len(raw)),
			logger.Int("kept", kept))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return merged.items, nil
}

func (s *sourceScanner) probe(ctx context.Context, env Env, a Adapter) []inventory.Candidate {
	if s.timeout <= 0 {
		return a.Probe(ctx, env)
	}
	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	out := a.Probe(probeCtx, env)
	if probeCtx.Err() != nil && ctx.Err() == nil {
		logger.Warn("Adapter timed out, keeping partial results",
			logger.Platform(s.desc.platform),
			logger.String("adapter", a.Name()),
			logger.Duration("timeout", s.timeout))
	}
	return out
}

// mergeSet suppresses duplicates within one scan of one platform, keyed on
// the normalized name, the raw app id and the install directory.
type mergeSet struct {
	items []inventory.Candidate
	index map[string]int
}

func newMergeSet() *mergeSet {
	return &mergeSet{index: make(map[string]int)}
}

func mergeKeys(c inventory.Candidate) []string {
	keys := []string{"name:" + inventory.NormalizeName(c.Name)}
	if c.AppID != "" {
		keys = append(keys, "id:"+c.AppID)
	}
	if c.InstallDir != "" {
		keys = append(keys, dirKey(c.InstallDir))
	}
	return keys
}

func dirKey(dir string) string {
	return "dir:" + strings.ToLower(filepath.Clean(dir))
}

// add stores c, or fills the gaps of the record it duplicates. It reports
// whether c became a new record.
func (m *mergeSet) add(c inventory.Candidate) bool {
	keys := mergeKeys(c)
	for _, k := range keys {
		i, ok := m.index[k]
		if !ok {
			continue
		}
		existing := &m.items[i]
		if existing.ExecutablePath == "" {
			existing.ExecutablePath = c.ExecutablePath
		}
		if existing.LaunchID == "" {
			existing.LaunchID = c.LaunchID
		}
		if existing.AppID == "" && c.AppID != "" {
			existing.AppID = c.AppID
			m.index["id:"+c.AppID] = i
		}
		if existing.InstallDir == "" && c.InstallDir != "" {
			existing.InstallDir = c.InstallDir
			m.index[dirKey(c.InstallDir)] = i
		}
		return false
	}

	m.items = append(m.items, c)
	for _, k := range keys {
		m.index[k] = len(m.items) - 1
	}
	return true
}
