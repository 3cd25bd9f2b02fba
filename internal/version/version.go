// SPDX-License-Identifier:Apache-2.0

package version

import "fmt"

var (
	version   = ""   // Filled out during release cutting
	gitCommit string // Provided by ldflags during build
	gitBranch string // Provided by ldflags during build
)

// Info is the build information of this binary.
type Info struct {
	Version string `yaml:"version,omitempty"`
	Commit  string `yaml:"commit,omitempty"`
	Branch  string `yaml:"branch,omitempty"`
}

// Get returns the build information linked into the binary.
func Get() Info {
	return Info{Version: version, Commit: gitCommit, Branch: gitBranch}
}

// String returns a human-readable version string.
func (i Info) String() string {
	hasVersion := i.Version != ""
	hasBuildInfo := i.Commit != ""

	switch {
	case hasVersion && hasBuildInfo:
		return fmt.Sprintf("version %s (commit %s, branch %s)", i.Version, i.Commit, i.Branch)
	case !hasVersion && hasBuildInfo:
		return fmt.Sprintf("(commit %s, branch %s)", i.Commit, i.Branch)
	case hasVersion && !hasBuildInfo:
		return fmt.Sprintf("version %s (no build information)", i.Version)
	default:
		return "(no version or build info)"
	}
}

// String describes the running binary's build.
func String() string {
	return Get().String()
}
