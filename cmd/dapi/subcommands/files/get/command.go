package get

import (
	"context"
	"log"

	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/common"
	"github.com/designsafe-ci/dapi/pkg/config/dapienv"
	"github.com/designsafe-ci/dapi/pkg/dapi"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Dir bool `flag:"dir" alias:"r" help:"SOURCE is a directory. DEST is the directory to extract it into"`
}

const (
	ARG_SOURCE = "SOURCE"
	ARG_DEST   = "DEST"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Download a file or directory from DesignSafe storage.",
		Flags{},
		flarc.Args{
			{Name: ARG_SOURCE, Required: true, Help: "DesignSafe path or tapis URI"},
			{Name: ARG_DEST, Required: true, Help: "local file path (or directory, with --dir)"},
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
	args := cl.Args()
	uri, err := client.Files.TranslatePathToURI(ctx, args[ARG_SOURCE][0], false)
	if err != nil {
		return err
	}
	dest := args[ARG_DEST][0]

	if cl.Flags().Dir {
		err = client.Files.DownloadDir(ctx, uri, dest)
	} else {
		err = client.Files.Download(ctx, uri, dest)
	}
	if err != nil {
		return err
	}
	logger.Printf("%s is downloaded to %s", uri, dest)
	return nil
}
