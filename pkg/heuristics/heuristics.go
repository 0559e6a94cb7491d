// Package heuristics separates genuine games from installers, runtimes and
// tooling that vendors ship alongside them.
//
// Two gates are applied and both must pass: the per-source noise list of the
// candidate's platform, and a source-independent validity check on the name
// and, when known, the executable file name.
package heuristics

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// NoiseSet is a frozen list of lower-cased noise terms.
type NoiseSet struct {
	terms []string
}

// NewNoiseSet lower-cases and copies terms; blanks are ignored.
func NewNoiseSet(terms ...string) NoiseSet {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return NoiseSet{terms: out}
}

// Matches reports whether s contains any term, case-insensitively.
func (n NoiseSet) Matches(s string) bool {
	lower := strings.ToLower(s)
	for _, t := range n.terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// Terms returns a copy of the terms.
func (n NoiseSet) Terms() []string {
	out := make([]string, len(n.terms))
	copy(out, n.terms)
	return out
}

// Len returns the number of terms.
func (n NoiseSet) Len() int { return len(n.terms) }

// globalVocabulary lists name fragments that never denote a game.
var globalVocabulary = []string{
	"directx", "redist", "redistributable", "vcredist", "vc_redist",
	"launcher", "updater", "installer", "uninstall", "setup",
	"service", "agent", "helper", "browser", "client",
	"engine", "editor", "tool", "plugin", "mod",
	"runtime", "framework", "sdk", "api",
	"crash", "reporter", "analytics", "telemetry",
	"social club", "epic online services",
}

// globalAffixes are matched as plain substrings, including the underscore.
var globalAffixes = []string{"ue_", "_redist", "_runtime", "_launcher"}

// executablePatterns are matched against the lower-cased executable base name.
var executablePatterns = []string{
	"setup.exe",
	"*uninstall*",
	"launcher.exe",
	"updater.exe",
	"service.exe",
}

// ValidApplication applies the source-independent gate. Every vocabulary
// term is a plain substring match, so "mod" also rejects "Modern Warfare".
// exe may be empty.
func ValidApplication(name, exe string) bool {
	lower := strings.ToLower(name)

	for _, term := range globalVocabulary {
		if strings.Contains(lower, term) {
			return false
		}
	}
	for _, affix := range globalAffixes {
		if strings.Contains(lower, affix) {
			return false
		}
	}
	if exe != "" && IsExcludedExecutable(exe) {
		return false
	}
	return true
}

// IsExcludedExecutable reports whether the executable file name matches one
// of the installer, uninstaller, launcher, updater or service patterns.
func IsExcludedExecutable(exe string) bool {
	base := strings.ToLower(baseName(exe))
	for _, pattern := range executablePatterns {
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// IsUninstallerOrSetup reports whether a file name is an uninstaller or setup
// program. These are excluded from every executable search.
func IsUninstallerOrSetup(file string) bool {
	base := strings.ToLower(baseName(file))
	return strings.Contains(base, "uninstall") || strings.Contains(base, "unins0") || base == "setup.exe"
}

// baseName handles both separators so Windows paths scanned from other hosts
// (and test fixtures) resolve to the file name.
func baseName(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return filepath.Base(filepath.FromSlash(p))
}
