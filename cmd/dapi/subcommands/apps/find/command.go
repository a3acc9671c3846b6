package find

import (
	"context"
	"log"

	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/common"
	"github.com/designsafe-ci/dapi/pkg/apps"
	"github.com/designsafe-ci/dapi/pkg/config/dapienv"
	"github.com/designsafe-ci/dapi/pkg/dapi"
	"github.com/youta-t/flarc"
)

type Flags struct {
	ListType string `flag:"list-type" metavar:"ALL|OWNED|SHARED_PUBLIC|..." help:"which apps are searched"`
}

const ARG_TERM = "TERM"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Find apps whose id contains the term.",
		Flags{ListType: apps.ListAll},
		flarc.Args{
			{
				Name: ARG_TERM, Required: false,
				Help: "part of app ids. If omitted, all apps are listed.",
			},
		},
		common.NewTask[Flags](Task),
	)
}

func Task(
	ctx context.Context,
	logger *log.Logger,
	_ dapienv.DapiEnv,
	client *dapi.Client,
	cl flarc.Commandline[Flags],
	_ []any,
) error {
	term := ""
	if t := cl.Args()[ARG_TERM]; 0 < len(t) {
		term = t[0]
	}

	found, err := client.Apps.Find(ctx, term, cl.Flags().ListType)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		logger.Printf("no apps found matching '%s'", term)
	}
	return common.PrintJSON(cl.Stdout(), found)
}
