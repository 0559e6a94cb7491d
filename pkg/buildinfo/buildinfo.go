package buildinfo

import "runtime/debug"

// Set at build time via -ldflags.
var (
	BinaryVersion = "dev"
	Commit        = ""
	BuildDate     = ""
)

// ModuleVersion returns the module version embedded by the Go toolchain (when available).
func ModuleVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return ""
}

// Version returns the ldflags version, falling back to the module version.
func Version() string {
	if BinaryVersion != "" && BinaryVersion != "dev" {
		return BinaryVersion
	}
	if v := ModuleVersion(); v != "" {
		return v
	}
	return "dev"
}
