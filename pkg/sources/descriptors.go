package sources

import (
	"path/filepath"

	"github.com/fulmenhq/gamescout/pkg/heuristics"
	"github.com/fulmenhq/gamescout/pkg/inventory"
	"github.com/fulmenhq/gamescout/pkg/osreg"
)

// Tier is the scheduling priority of a source. Lower tiers run first.
type Tier int

const (
	TierFast   Tier = 1
	TierMedium Tier = 2
	TierSlow   Tier = 3
)

// Tiers returns the tiers in execution order.
func Tiers() []Tier { return []Tier{TierFast, TierMedium, TierSlow} }

func (t Tier) String() string {
	switch t {
	case TierFast:
		return "fast"
	case TierMedium:
		return "medium"
	case TierSlow:
		return "slow"
	default:
		return "unknown"
	}
}

// Descriptor is the static description of one discovery source. Values are
// built once at package init and never mutated; accessors return copies.
type Descriptor struct {
	platform     inventory.Platform
	tier         Tier
	installRoots [][]string
	manifestDirs [][]string
	noise        heuristics.NoiseSet
	vendorTerms  []string
	markerKeys   []osreg.Key
	exeDepth     int
}

// Platform returns the source platform.
func (d Descriptor) Platform() inventory.Platform { return d.platform }

// DisplayName returns the vendor name shown to users.
func (d Descriptor) DisplayName() string { return d.platform.DisplayName() }

// Tier returns the scheduling tier.
func (d Descriptor) Tier() Tier { return d.tier }

// Noise returns the frozen noise set of the source.
func (d Descriptor) Noise() heuristics.NoiseSet { return d.noise }

// ExecutableDepth is how many directory levels below an install directory
// are searched for its executable.
func (d Descriptor) ExecutableDepth() int { return d.exeDepth }

// VendorTerms returns the registry publisher/name terms of the source.
func (d Descriptor) VendorTerms() []string { return append([]string(nil), d.vendorTerms...) }

// MarkerKeys returns registry keys whose presence indicates the launcher is installed.
func (d Descriptor) MarkerKeys() []osreg.Key { return append([]osreg.Key(nil), d.markerKeys...) }

// InstallRoots expands the install root templates against a volume root.
func (d Descriptor) InstallRoots(root string) []string { return expand(root, d.installRoots) }

// ManifestDirs expands the manifest directory templates against a volume root.
func (d Descriptor) ManifestDirs(root string) []string { return expand(root, d.manifestDirs) }

func expand(root string, templates [][]string) []string {
	out := make([]string, 0, len(templates))
	for _, segments := range templates {
		parts := append([]string{root}, segments...)
		out = append(out, filepath.Join(parts...))
	}
	return out
}

const (
	programFiles    = "Program Files"
	programFilesX86 = "Program Files (x86)"
)

var descriptors = []Descriptor{
	{
		platform: inventory.Steam,
		tier:     TierFast,
		installRoots: [][]string{
			{programFilesX86, "Steam"},
			{programFiles, "Steam"},
			{"Steam"},
			{"SteamLibrary"},
			{"Games", "Steam"},
		},
		noise: heuristics.NewNoiseSet(
			"redistributable", "steamworks", "vr", "runtime", "proton", "shader",
			"soundtrack", "server", "tools", "workshop", "editor", "benchmark",
		),
		exeDepth: 3,
	},
	{
		platform: inventory.Epic,
		tier:     TierFast,
		installRoots: [][]string{
			{programFiles, "Epic Games"},
			{"Epic Games"},
			{"Games", "Epic Games"},
		},
		manifestDirs: [][]string{
			{"ProgramData", "Epic", "EpicGamesLauncher", "Data", "Manifests"},
		},
		noise: heuristics.NewNoiseSet(
			"plugin", "unreal", "engine", "riderlink", "sample", "datasmith", "mod",
			"tool", "bridge", "launcher", "editor", "project", "template", "asset",
			"assets", "content", "example", "directxredist", "directx", "ue_",
			"epic online services", "services",
		),
		exeDepth: 4,
	},
	{
		platform: inventory.Riot,
		tier:     TierFast,
		installRoots: [][]string{
			{"Riot Games"},
			{programFiles, "Riot Games"},
			{"Games", "Riot Games"},
		},
		noise:    heuristics.NewNoiseSet("riot client", "riotclient", "uninstall", "service", "tools"),
		exeDepth: 2,
	},
	{
		platform: inventory.StarCitizen,
		tier:     TierFast,
		installRoots: [][]string{
			{"Roberts Space Industries", "StarCitizen"},
			{programFiles, "Roberts Space Industries", "StarCitizen"},
			{"Cloud Imperium Games", "StarCitizen"},
			{"Games", "StarCitizen"},
		},
		noise:    heuristics.NewNoiseSet(),
		exeDepth: 3,
	},
	{
		platform: inventory.EA,
		tier:     TierMedium,
		installRoots: [][]string{
			{programFiles, "EA Games"},
			{programFilesX86, "Origin Games"},
			{programFiles, "Origin Games"},
			{"Origin Games"},
			{"EA Games"},
			{"Games", "Origin"},
			{"Games", "EA"},
		},
		noise: heuristics.NewNoiseSet(
			"plugin", "unreal", "engine", "riderlink", "sample", "datasmith", "mod",
			"tool", "setup", "uninstall",
		),
		exeDepth: 3,
	},
	{
		platform: inventory.Ubisoft,
		tier:     TierMedium,
		installRoots: [][]string{
			{programFilesX86, "Ubisoft", "Ubisoft Game Launcher", "games"},
			{programFiles, "Ubisoft", "Ubisoft Game Launcher", "games"},
			{"Games", "Ubisoft"},
			{"Games", "Ubisoft Games"},
			{"Ubisoft Games"},
		},
		noise: heuristics.NewNoiseSet("uplay", "launcher", "integration", "setup", "uninstall"),
		markerKeys: []osreg.Key{
			{Hive: osreg.LocalMachine, Path: `SOFTWARE\WOW6432Node\Ubisoft\Launcher`},
		},
		exeDepth: 3,
	},
	{
		platform: inventory.BattleNet,
		tier:     TierMedium,
		installRoots: [][]string{
			{programFilesX86, "Battle.net"},
			{programFiles, "Battle.net"},
			{"Battle.net"},
			{"Games", "Battle.net"},
			{"Games", "Blizzard"},
			{"Blizzard Games"},
		},
		noise:       heuristics.NewNoiseSet("battle.net", "launcher", "agent", "update", "tool"),
		vendorTerms: []string{"blizzard entertainment"},
		markerKeys: []osreg.Key{
			{Hive: osreg.LocalMachine, Path: `SOFTWARE\WOW6432Node\Blizzard Entertainment\Battle.net\Capabilities`},
		},
		exeDepth: 3,
	},
	{
		platform: inventory.Rockstar,
		tier:     TierMedium,
		installRoots: [][]string{
			{programFiles, "Rockstar Games"},
			{"Rockstar Games"},
			{"Games", "Rockstar Games"},
		},
		noise:       heuristics.NewNoiseSet("launcher", "social club", "socialclub", "updater", "installer"),
		vendorTerms: []string{"rockstar"},
		markerKeys: []osreg.Key{
			{Hive: osreg.LocalMachine, Path: `SOFTWARE\WOW6432Node\Rockstar Games\Launcher`},
		},
		exeDepth: 3,
	},
	{
		platform: inventory.GOG,
		tier:     TierSlow,
		installRoots: [][]string{
			{programFilesX86, "GOG Galaxy", "Games"},
			{"GOG Galaxy", "Games"},
			{"GOG Games"},
			{"Games", "GOG"},
		},
		noise: heuristics.NewNoiseSet(
			"setup", "install", "installer", "uninstall", "uninstaller", "redist",
			"redistributable", "commonredist", "common_redist", "directx", "dxredist",
			"dxsetup", "vcredist", "vc_redist", "runtime", "mono", "framework",
			"launcher", "galaxyclient", "galaxy", "tools", "tool",
		),
		vendorTerms: []string{"gog"},
		exeDepth:    3,
	},
	{
		platform:     inventory.MicrosoftStore,
		tier:         TierSlow,
		installRoots: [][]string{{"XboxGames"}},
		noise:        heuristics.NewNoiseSet(),
		exeDepth:     2,
	},
}

var (
	byPlatform   = indexDescriptors()
	defaultNoise = noiseTable()
	// DefaultFilter is the heuristic filter built from the descriptor table.
	DefaultFilter = heuristics.NewFilter(defaultNoise)
)

func indexDescriptors() map[inventory.Platform]Descriptor {
	m := make(map[inventory.Platform]Descriptor, len(descriptors))
	for _, d := range descriptors {
		m[d.platform] = d
	}
	return m
}

func noiseTable() map[inventory.Platform]heuristics.NoiseSet {
	m := make(map[inventory.Platform]heuristics.NoiseSet, len(descriptors))
	for _, d := range descriptors {
		m[d.platform] = d.noise
	}
	return m
}

// Descriptors returns the descriptor table in canonical platform order.
func Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(descriptors))
	for _, p := range inventory.Platforms() {
		out = append(out, byPlatform[p])
	}
	return out
}

// Lookup returns the descriptor of a platform.
func Lookup(p inventory.Platform) (Descriptor, bool) {
	d, ok := byPlatform[p]
	return d, ok
}

// ByTier returns the descriptors of one tier in canonical order.
func ByTier(t Tier) []Descriptor {
	var out []Descriptor
	for _, d := range Descriptors() {
		if d.tier == t {
			out = append(out, d)
		}
	}
	return out
}

// NoiseTable returns a copy of the per-platform noise sets.
func NoiseTable() map[inventory.Platform]heuristics.NoiseSet {
	out := make(map[inventory.Platform]heuristics.NoiseSet, len(defaultNoise))
	for p, n := range defaultNoise {
		out[p] = n
	}
	return out
}
