// Package buildinfo holds version information stamped in at link time:
//
//	go build -ldflags "-X github.com/jeffijoe/typesync/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/jeffijoe/typesync/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/jeffijoe/typesync/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/typesync
package buildinfo

import "fmt"

var (
	Version = "dev"     // release tag, e.g. "v1.2.3"
	Commit  = "none"    // git commit SHA
	Date    = "unknown" // build timestamp
)

// Template returns a cobra version template.
func Template() string {
	return "{{.Name}} version {{.Version}}\n" + fmt.Sprintf("commit: %s\nbuilt: %s\n", Commit, Date)
}
