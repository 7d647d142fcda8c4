// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/heynickashwin-oss/viashift/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/heynickashwin-oss/viashift/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/heynickashwin-oss/viashift/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

var (
	// Version is the semantic version (e.g., "v1.2.3").
	// Set via ldflags: -X github.com/heynickashwin-oss/viashift/pkg/buildinfo.Version=...
	Version = "dev"

	// Commit is the git commit SHA.
	// Set via ldflags: -X github.com/heynickashwin-oss/viashift/pkg/buildinfo.Commit=...
	Commit = "none"

	// Date is the build timestamp.
	// Set via ldflags: -X github.com/heynickashwin-oss/viashift/pkg/buildinfo.Date=...
	Date = "unknown"
)
