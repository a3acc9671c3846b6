package cancel

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

const ARG_UUID = "JOB_UUID"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Request TAPIS to cancel the job.",
		struct{}{},
		flarc.Args{
			{Name: ARG_UUID, Required: true, Help: "uuid of the job"},
		},
		common.NewTask[struct{}](Task),
		flarc.WithDescription(`
Request TAPIS to cancel the job.

The job may stay in progress for a while after the request.
When the job has already ended, its final status is shown instead.
`),
	)
}

func Task(
	ctx context.Context,
	logger *log.Logger,
	_ dapienv.DapiEnv,
	client *dapi.Client,
	cl flarc.Commandline[struct{}],
	_ []any,
) error {
	uuid := cl.Args()[ARG_UUID][0]
	job := client.Jobs.Get(uuid)
	if err := job.Cancel(ctx); err != nil {
		return err
	}
	logger.Printf("job %s is %s", uuid, job.LastStatus())
	fmt.Fprintln(cl.Stdout(), style.Status(job.LastStatus(), uuid))
	return nil
}
