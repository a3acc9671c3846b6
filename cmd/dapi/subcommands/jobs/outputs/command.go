package outputs

import (
	"context"
	"fmt"
	"log"

	"github.com/designsafe-ci/dapi/cmd/dapi/style"
	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/common"
	"github.com/designsafe-ci/dapi/pkg/config/dapienv"
	"github.com/designsafe-ci/dapi/pkg/dapi"
	"github.com/designsafe-ci/dapi/pkg/files"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Download string `flag:"download" alias:"o" metavar:"path/to/local/file" help:"download the output at PATH to here, instead of listing"`
	Limit    int    `flag:"limit" help:"max number of entries listed"`
	Offset   int    `flag:"offset" help:"number of entries skipped"`
}

const (
	ARG_UUID = "JOB_UUID"
	ARG_PATH = "PATH"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"List or download outputs in the archive of the job.",
		Flags{Limit: files.DefaultListLimit},
		flarc.Args{
			{Name: ARG_UUID, Required: true, Help: "uuid of the job"},
			{Name: ARG_PATH, Required: false, Help: "path in the archive directory. Default: the archive directory itself"},
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
	flags := cl.Flags()
	job := client.Jobs.Get(cl.Args()[ARG_UUID][0])
	p := ""
	if a := cl.Args()[ARG_PATH]; 0 < len(a) {
		p = a[0]
	}

	if flags.Download != "" {
		if p == "" {
			return fmt.Errorf("%w: PATH is required with --download", flarc.ErrUsage)
		}
		if err := job.DownloadOutput(ctx, p, flags.Download); err != nil {
			return err
		}
		logger.Printf("%s is downloaded to %s", p, flags.Download)
		return nil
	}

	found, err := job.ListOutputs(ctx, p, flags.Limit, flags.Offset)
	if err != nil {
		return err
	}
	fmt.Fprintln(cl.Stdout(), style.Listing(found))
	return nil
}
