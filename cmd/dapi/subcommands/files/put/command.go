package put

import (
	"context"
	"log"

	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/common"
	"github.com/designsafe-ci/dapi/pkg/config/dapienv"
	"github.com/designsafe-ci/dapi/pkg/dapi"
	"github.com/youta-t/flarc"
)

const (
	ARG_SOURCE = "SOURCE"
	ARG_DEST   = "DEST"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Upload a local file to DesignSafe storage.",
		struct{}{},
		flarc.Args{
			{Name: ARG_SOURCE, Required: true, Help: "local file path"},
			{Name: ARG_DEST, Required: true, Help: "DesignSafe path or tapis URI of the uploaded file"},
		},
		common.NewTask[struct{}](Task),
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
	args := cl.Args()
	uri, err := client.Files.TranslatePathToURI(ctx, args[ARG_DEST][0], false)
	if err != nil {
		return err
	}
	if err := client.Files.Upload(ctx, args[ARG_SOURCE][0], uri); err != nil {
		return err
	}
	logger.Printf("%s is uploaded to %s", args[ARG_SOURCE][0], uri)
	return nil
}
