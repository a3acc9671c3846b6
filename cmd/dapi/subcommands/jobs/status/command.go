package status

import (
	"context"
	"fmt"
	"log"

	"github.com/designsafe-ci/dapi/cmd/dapi/style"
	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/common"
	"github.com/designsafe-ci/dapi/pkg/config/dapienv"
	"github.com/designsafe-ci/dapi/pkg/dapi"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Interpret bool `flag:"interpret" alias:"i" help:"explain the status in a sentence"`
	DRMAA2    bool `flag:"drmaa2" help:"also show the status as a DRMAA2 job state"`
}

const ARG_UUID = "JOB_UUID"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Show the current status of the job.",
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
	uuid := cl.Args()[ARG_UUID][0]
	status, err := client.Jobs.Status(ctx, uuid)
	if err != nil {
		return err
	}
	if cl.Flags().Interpret {
		fmt.Fprintln(cl.Stdout(), style.Status(status, uuid))
	} else {
		fmt.Fprintln(cl.Stdout(), status)
	}
	if cl.Flags().DRMAA2 {
		fmt.Fprintf(cl.Stdout(), "DRMAA2 state: %s\n", status.DRMAA2State())
	}
	return nil
}
