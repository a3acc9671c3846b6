// Package buildtime carries the version stamped at build.
//
// VERSION and revision are overwritten by the release build.
package buildtime

import (
	_ "embed"
	"fmt"
	"runtime"
	"strings"
)

//go:embed VERSION
var version string

//go:embed revision
var revision string

// Info describes this build of dapi.
type Info struct {
	Version  string `json:"version"`
	Revision string `json:"revision"`
	Go       string `json:"go"`
	Platform string `json:"platform"`
}

func Get() Info {
	return Info{
		Version:  strings.TrimSpace(version),
		Revision: strings.TrimSpace(revision),
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (i Info) String() string {
	return fmt.Sprintf("%s (commit: %s, %s, %s)", i.Version, i.Revision, i.Go, i.Platform)
}

// UserAgent identifies dapi in requests to TAPIS.
func UserAgent() string {
	i := Get()
	return "dapi-go/" + i.Version + " (" + i.Platform + ")"
}
