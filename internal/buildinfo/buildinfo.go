// Package buildinfo holds build-time variables injected via ldflags:
//
//	go build -ldflags "-X github.com/go-ports/contextmenu/internal/buildinfo.Version=v1.2.0"
package buildinfo

import "fmt"

var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

// Summary formats the variables for `contextmenu version`.
func Summary() string {
	return fmt.Sprintf("contextmenu %s (commit %s, branch %s, built %s)", Version, GitCommit, GitBranch, BuildDate)
}
