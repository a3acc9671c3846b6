package history

import (
	"context"
	"log"

	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/common"
	"github.com/designsafe-ci/dapi/pkg/config/dapienv"
	"github.com/designsafe-ci/dapi/pkg/dapi"
	"github.com/youta-t/flarc"
)

const ARG_UUID = "JOB_UUID"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Show history events of the job.",
		struct{}{},
		flarc.Args{
			{Name: ARG_UUID, Required: true, Help: "uuid of the job"},
		},
		common.NewTask[struct{}](Task),
	)
}

func Task(
	ctx context.Context,
	_ *log.Logger,
	_ dapienv.DapiEnv,
	client *dapi.Client,
	cl flarc.Commandline[struct{}],
	_ []any,
) error {
	history, err := client.Jobs.Get(cl.Args()[ARG_UUID][0]).History(ctx)
	if err != nil {
		return err
	}
	return common.PrintJSON(cl.Stdout(), history)
}
