package uri

import (
	"context"
	"fmt"
	"log"

	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/common"
	"github.com/designsafe-ci/dapi/pkg/config/dapienv"
	"github.com/designsafe-ci/dapi/pkg/dapi"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Verify bool `flag:"verify" help:"check that the location exists"`
}

const ARG_PATH = "PATH"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Translate a DesignSafe path to a tapis URI.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_PATH, Required: true,
				Help: "/MyData/..., /MyProjects/PRJ-1234/..., /CommunityData/... or its JupyterHub form",
			},
		},
		common.NewTask[Flags](Task),
		flarc.WithDescription(`
Translate a DesignSafe path to a tapis URI, and print it.

Paths under "/home/jupyter" (as seen in JupyterHub) are also accepted.
tapis URIs are printed as they are.
`),
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
	uri, err := client.Files.TranslatePathToURI(ctx, cl.Args()[ARG_PATH][0], cl.Flags().Verify)
	if err != nil {
		return err
	}
	fmt.Fprintln(cl.Stdout(), uri)
	return nil
}
