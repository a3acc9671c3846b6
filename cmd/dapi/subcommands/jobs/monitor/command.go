package monitor

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/designsafe-ci/dapi/cmd/dapi/style"
	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/common"
	"github.com/designsafe-ci/dapi/pkg/config/dapienv"
	"github.com/designsafe-ci/dapi/pkg/dapi"
	"github.com/designsafe-ci/dapi/pkg/jobs"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Interval time.Duration `flag:"interval" help:"polling interval. Default: monitor.interval in dapienv, or 15s"`
	Timeout  time.Duration `flag:"timeout" help:"how long to wait. Default: monitor.timeout in dapienv, or max minutes of the job"`
	Progress bool          `flag:"progress" help:"show elapsed time as a progress bar"`
}

const ARG_UUID = "JOB_UUID"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Wait until the job ends, reporting its status changes.",
		Flags{},
		flarc.Args{
			{Name: ARG_UUID, Required: true, Help: "uuid of the job"},
		},
		common.NewTask[Flags](Task),
		flarc.WithDescription(`
Poll the status of the job until it reaches a terminal status
(FINISHED, FAILED, CANCELLED, STOPPED or ARCHIVING_FAILED),
and interpret the outcome.

Giving up by timeout or interruption (Ctrl+C) does not cancel the job.
`),
	)
}

func Task(
	ctx context.Context,
	_ *log.Logger,
	e dapienv.DapiEnv,
	client *dapi.Client,
	cl flarc.Commandline[Flags],
	_ []any,
) error {
	flags := cl.Flags()
	job := client.Jobs.Get(cl.Args()[ARG_UUID][0])
	_, err := Watch(ctx, job, e, flags.Interval, flags.Timeout, flags.Progress, cl.Stdout())
	return err
}

// Watch monitors the job and prints the interpretation of its last status.
//
// Zero interval or timeout falls back to dapienv.
func Watch(
	ctx context.Context,
	job *jobs.SubmittedJob,
	e dapienv.DapiEnv,
	interval time.Duration,
	timeout time.Duration,
	progress bool,
	out io.Writer,
) (jobs.Status, error) {
	if interval == 0 {
		interval = e.Monitor.Interval.Duration()
	}
	if timeout == 0 {
		timeout = e.Monitor.Timeout.Duration()
	}

	options := []jobs.MonitorOption{
		jobs.WithInterval(interval),
		jobs.WithOutput(out),
		jobs.WithProgress(progress),
	}
	if timeout != 0 {
		options = append(options, jobs.WithTimeout(timeout))
	}

	status, err := job.Monitor(ctx, options...)
	if err != nil {
		return status, err
	}
	fmt.Fprintln(out, style.Status(status, job.Uuid))
	return status, nil
}
