package queues

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/designsafe-ci/dapi/cmd/dapi/style"
	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/common"
	"github.com/designsafe-ci/dapi/pkg/config/dapienv"
	"github.com/designsafe-ci/dapi/pkg/dapi"
	"github.com/youta-t/flarc"
)

type Flags struct {
	JSON bool `flag:"json" help:"print queues as JSON"`
}

const ARG_SYSTEM_ID = "SYSTEM_ID"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"List batch queues of an execution system.",
		Flags{},
		flarc.Args{
			{Name: ARG_SYSTEM_ID, Required: true, Help: "id of the system, like stampede3 or frontera"},
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
	queues, err := client.Systems.Queues(ctx, cl.Args()[ARG_SYSTEM_ID][0])
	if err != nil {
		return err
	}
	if cl.Flags().JSON {
		return common.PrintJSON(cl.Stdout(), queues)
	}

	rows := make([][]string, 0, len(queues))
	for _, q := range queues {
		rows = append(rows, []string{
			q.Name,
			q.HpcQueueName,
			span(q.MinNodeCount, q.MaxNodeCount),
			span(q.MinCoresPerNode, q.MaxCoresPerNode),
			span(q.MinMinutes, q.MaxMinutes),
		})
	}
	fmt.Fprintln(cl.Stdout(), style.Table(
		[]string{"NAME", "HPC QUEUE", "NODES", "CORES/NODE", "MINUTES"}, rows,
	))
	return nil
}

// span formats a range. Non-positive upper means unbounded.
func span(lo, hi int) string {
	if hi <= 0 {
		return strconv.Itoa(lo) + "-"
	}
	return strconv.Itoa(lo) + "-" + strconv.Itoa(hi)
}
