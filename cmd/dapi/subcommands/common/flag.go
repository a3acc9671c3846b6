package common

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/designsafe-ci/dapi/pkg/config/dapienv"
	"github.com/designsafe-ci/dapi/pkg/config/profiles"
)

// ProfilePointer is a file naming the profile used in its directory and below.
//
// `dapi init` writes it.
const ProfilePointer = ".dapiprofile"

type CommonFlags struct {
	Profile      string `flag:"profile" help:"dapi profile name to use"`
	ProfileStore string `flag:"profile-store" help:"path to dapi profile store file"`
	Env          string `flag:"env" help:"path to dapienv file"`
	Verbose      bool   `flag:"verbose" help:"show debug logs, and causes of errors"`
}

type commonFlagDetection struct {
	home string
}

type CommonFlagDetectionOption func(*commonFlagDetection) *commonFlagDetection

func WithHome(home string) CommonFlagDetectionOption {
	return func(opt *commonFlagDetection) *commonFlagDetection {
		opt.home = home
		return opt
	}
}

// Flags detects default values of CommonFlags for the directory from.
//
// The profile is named by the nearest ProfilePointer in from or its ancestors,
// and the dapienv file is the nearest one likewise.
func Flags(from string, opt ...CommonFlagDetectionOption) (CommonFlags, error) {
	detparam := &commonFlagDetection{}
	for _, o := range opt {
		detparam = o(detparam)
	}

	home := detparam.home
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}

	if abs, err := filepath.Abs(from); err == nil {
		from = abs
	}

	profile := profiles.DefaultProfileName
	for searchpath := from; ; {
		candidate := filepath.Join(searchpath, ProfilePointer)
		if s, err := os.Stat(candidate); err == nil && s.Mode().IsRegular() {
			content, err := os.ReadFile(candidate)
			if err != nil {
				return CommonFlags{}, err
			}
			if line, _, _ := strings.Cut(string(content), "\n"); strings.TrimSpace(line) != "" {
				profile = strings.TrimSpace(line)
			}
			break
		}

		next := filepath.Dir(searchpath)
		if next == searchpath {
			break
		}
		searchpath = next
	}

	env := dapienv.Find(from)
	if env == "" {
		env = filepath.Join(from, dapienv.FileName)
	}

	return CommonFlags{
		Profile:      profile,
		ProfileStore: filepath.Join(home, ".dapi", "profile"),
		Env:          env,
	}, nil
}
