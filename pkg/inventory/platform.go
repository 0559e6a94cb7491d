// Package inventory holds the game inventory data model and the cross-source
// deduplication that turns scanner candidates into inventory entries.
package inventory

// Platform identifies one of the ten discovery sources.
type Platform string

const (
	Steam          Platform = "steam"
	Epic           Platform = "epic"
	EA             Platform = "ea"
	Ubisoft        Platform = "ubi"
	BattleNet      Platform = "bnet"
	GOG            Platform = "gog"
	MicrosoftStore Platform = "mstore"
	Riot           Platform = "riot"
	StarCitizen    Platform = "starcitizen"
	Rockstar       Platform = "rockstar"
)

// canonical order used for deterministic merges and summaries
var platforms = []Platform{
	Steam, Epic, Riot, StarCitizen,
	EA, Ubisoft, BattleNet, Rockstar,
	GOG, MicrosoftStore,
}

var displayNames = map[Platform]string{
	Steam:          "Steam",
	Epic:           "Epic Games Store",
	EA:             "Electronic Arts",
	Ubisoft:        "Ubisoft Connect",
	BattleNet:      "Battle.net",
	GOG:            "GOG Galaxy",
	MicrosoftStore: "Microsoft Store",
	Riot:           "Riot Games",
	StarCitizen:    "Cloud Imperium Games",
	Rockstar:       "Rockstar Games",
}

// Platforms returns all known platforms in canonical order.
func Platforms() []Platform {
	out := make([]Platform, len(platforms))
	copy(out, platforms)
	return out
}

// Valid reports whether p is one of the ten known platforms.
func (p Platform) Valid() bool {
	_, ok := displayNames[p]
	return ok
}

// DisplayName returns the human readable vendor name.
func (p Platform) DisplayName() string {
	if name, ok := displayNames[p]; ok {
		return name
	}
	return string(p)
}

// Index returns the canonical position of p, or -1 for unknown platforms.
func (p Platform) Index() int {
	for i, known := range platforms {
		if known == p {
			return i
		}
	}
	return -1
}

// ParsePlatform resolves a platform identifier.
func ParsePlatform(s string) (Platform, bool) {
	p := Platform(s)
	return p, p.Valid()
}
