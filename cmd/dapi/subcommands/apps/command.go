package apps

import (
	apps_find "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/apps/find"
	apps_show "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/apps/show"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	find, err := apps_find.New()
	if err != nil {
		return nil, err
	}
	show, err := apps_show.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Discover TAPIS applications.",
		struct{}{},
		flarc.WithSubcommand("find", find),
		flarc.WithSubcommand("show", show),
	)
}
