package buildtime_test

import (
	"runtime"
	"strings"
	"testing"

	"github.com/designsafe-ci/dapi/pkg/buildtime"
)

func TestGet(t *testing.T) {
	info := buildtime.Get()
	if info.Version == "" || strings.ContainsAny(info.Version, " \n") {
		t.Errorf("version should be trimmed and not empty: %q", info.Version)
	}
	if info.Go != runtime.Version() {
		t.Errorf("unexpected go version: %s", info.Go)
	}
	if !strings.HasPrefix(buildtime.UserAgent(), "dapi-go/"+info.Version+" ") {
		t.Errorf("unexpected user agent: %s", buildtime.UserAgent())
	}
	if !strings.Contains(info.String(), "commit: "+info.Revision) {
		t.Errorf("unexpected string: %s", info)
	}
}
