// SPDX-License-Identifier: MIT
// Package build manages build metadata (name, timestamp, commit, version)
// embedded into the binary at compile time via -ldflags. Development
// builds without ldflags fall back to "dev" values.
package build

type ldFlags struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// Populated by -ldflags during compilation.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:    "aura",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "dev",
	}
)

// Initialize copies build information from the ldflags variables into the
// buildFlags struct. Must be called early in program startup; missing
// flags keep their development defaults.
func Initialize() error {
	if buildName != "" {
		buildFlags.Name = buildName
	}
	if buildTime != "" {
		buildFlags.Time = buildTime
	}
	if buildCommit != "" {
		buildFlags.Commit = buildCommit
	}
	if buildVersion != "" {
		buildFlags.Version = buildVersion
	}
	return nil
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
