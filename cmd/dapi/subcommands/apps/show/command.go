package show

import (
	"context"
	"log"

	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/common"
	"github.com/designsafe-ci/dapi/pkg/config/dapienv"
	"github.com/designsafe-ci/dapi/pkg/dapi"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Version string `flag:"version" alias:"v" help:"app version. Default: the latest"`
}

const ARG_APP_ID = "APP_ID"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Show the descriptor of an app.",
		Flags{},
		flarc.Args{
			{Name: ARG_APP_ID, Required: true, Help: "id of the app, like opensees-express"},
		},
		common.NewTask[Flags](Task),
	)
}

func Task(
	ctx context.Context,
	_ *log.Logger,
	_ dapienv.DapiEnv,
	client *dapi.Client,
	cl flarc.Commandline[Flags],
	_ []any,
) error {
	app, err := client.Apps.Details(ctx, cl.Args()[ARG_APP_ID][0], cl.Flags().Version)
	if err != nil {
		return err
	}
	return common.PrintJSON(cl.Stdout(), app)
}
