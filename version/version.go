// Package version holds build information injected at link time.
package version

import "runtime"

// Set via -ldflags at build time:
//
//	-X github.com/jackzampolin/folio/version.GitRelease=v0.1.0
var (
	GitRelease    = "dev"
	GitCommit     = "unknown"
	GitCommitDate = "unknown"
	GoInfo        = runtime.Version()
)
