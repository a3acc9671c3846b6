package version

import (
	"context"
	"fmt"

	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/common"
	"github.com/designsafe-ci/dapi/pkg/buildtime"
	"github.com/youta-t/flarc"
)

type Flags struct {
	JSON bool `flag:"json" help:"print build information as JSON"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Show version of this command.",
		Flags{},
		flarc.Args{},
		func(ctx context.Context, c flarc.Commandline[Flags], a []any) error {
			info := buildtime.Get()
			if c.Flags().JSON {
				return common.PrintJSON(c.Stdout(), info)
			}
			fmt.Fprintln(c.Stdout(), info)
			return nil
		},
	)
}
