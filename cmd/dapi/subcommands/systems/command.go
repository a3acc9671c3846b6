package systems

import (
	systems_queues "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/systems/queues"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	queues, err := systems_queues.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Inspect TAPIS systems.",
		struct{}{},
		flarc.WithSubcommand("queues", queues),
	)
}
