// Package buildinfo exposes linker-injected build metadata.
//
// Values are set at build time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/devsync/internal/buildinfo.Version=v1.0.0 \
//	  -X github.com/dmitrijs2005/devsync/internal/buildinfo.Date=$(date -u +%F) \
//	  -X github.com/dmitrijs2005/devsync/internal/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

import (
	"fmt"
	"io"
)

const notAvailable = "N/A"

var (
	Version = notAvailable
	Date    = notAvailable
	Commit  = notAvailable
)

func valueOrNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// PrintBuildData writes the build version, date and commit to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", valueOrNA(Version))
	fmt.Fprintf(w, "Build date: %s\n", valueOrNA(Date))
	fmt.Fprintf(w, "Build commit: %s\n", valueOrNA(Commit))
}
