package summary

import (
	"context"
	"log"

	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/common"
	"github.com/designsafe-ci/dapi/pkg/config/dapienv"
	"github.com/designsafe-ci/dapi/pkg/dapi"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Detail bool `flag:"detail" alias:"d" help:"also show each history event"`
}

const ARG_UUID = "JOB_UUID"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Show how long the job spent in each status.",
		Flags{},
		flarc.Args{
			{Name: ARG_UUID, Required: true, Help: "uuid of the job"},
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
	summary, err := client.Jobs.RuntimeSummary(ctx, cl.Args()[ARG_UUID][0])
	if err != nil {
		return err
	}
	return summary.Render(cl.Stdout(), cl.Flags().Detail)
}
