package inventory

import (
	"strings"

	"github.com/fulmenhq/gamescout/pkg/logger"
	"golang.org/x/text/cases"
)

// nameStripper removes separators and trademark signs that vary between
// sources describing the same title.
var nameStripper = strings.NewReplacer(
	" ", "",
	"-", "",
	"_", "",
	"™", "",
	"®", "",
	"©", "",
)

// NormalizeName folds case and strips spaces, hyphens, underscores and
// trademark signs, so "Portal 2", "portal-2" and "PORTAL_2" compare equal.
func NormalizeName(name string) string {
	// cases.Caser is stateful; one per call keeps this safe across scanners.
	folded := cases.Fold().String(strings.TrimSpace(name))
	return nameStripper.Replace(folded)
}

// IdentityKeys returns the non-empty identity keys of a record. Keys share one
// namespace per platform, so an app id that equals another record's
// normalized name is also treated as the same title.
func IdentityKeys(platform Platform, appID, name string) []string {
	prefix := string(platform) + "\x00"
	keys := make([]string, 0, 3)
	if n := NormalizeName(name); n != "" {
		keys = append(keys, prefix+n)
	}
	if id := strings.TrimSpace(appID); id != "" {
		keys = append(keys, prefix+id)
	}
	if lower := strings.ToLower(strings.TrimSpace(name)); lower != "" {
		keys = append(keys, prefix+lower)
	}
	return keys
}

// Deduplicate reconciles the concatenated candidate stream into inventory
// entries. A candidate is dropped when any of its identity keys was already
// registered by an earlier candidate; survivors keep first-seen order.
// Candidates that fail validation are dropped as well.
func Deduplicate(candidates []Candidate) []Entry {
	seen := make(map[string]struct{}, len(candidates)*3)
	out := make([]Entry, 0, len(candidates))

	for _, c := range candidates {
		if c.Validate() != nil {
			continue
		}
		c.Name = strings.TrimSpace(c.Name)
		keys := IdentityKeys(c.Platform, c.AppID, c.Name)

		duplicate := false
		for _, k := range keys {
			if _, ok := seen[k]; ok {
				duplicate = true
				break
			}
		}
		if duplicate {
			logger.Debug("Duplicate dropped", logger.String("name", c.Name), logger.Platform(c.Platform))
			continue
		}
		for _, k := range keys {
			seen[k] = struct{}{}
		}
		out = append(out, Entry(c))
	}
	return out
}
