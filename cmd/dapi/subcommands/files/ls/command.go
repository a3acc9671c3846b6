package ls

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
	Limit  int  `flag:"limit" alias:"l" help:"max number of entries"`
	Offset int  `flag:"offset" help:"number of entries to skip"`
	JSON   bool `flag:"json" help:"print entries as JSON"`
}

const ARG_TARGET = "PATH_OR_URI"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"List files in DesignSafe storage.",
		Flags{Limit: files.DefaultListLimit},
		flarc.Args{
			{Name: ARG_TARGET, Required: true, Help: "DesignSafe path or tapis URI"},
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
	uri, err := client.Files.TranslatePathToURI(ctx, cl.Args()[ARG_TARGET][0], false)
	if err != nil {
		return err
	}
	found, err := client.Files.List(ctx, uri, flags.Limit, flags.Offset)
	if err != nil {
		return err
	}
	if flags.JSON {
		return common.PrintJSON(cl.Stdout(), found)
	}
	if len(found) == 0 {
		logger.Printf("nothing in %s", uri)
	}
	fmt.Fprintln(cl.Stdout(), style.Listing(found))
	return nil
}
