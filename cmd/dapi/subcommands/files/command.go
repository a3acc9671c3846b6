package files

import (
	files_get "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/files/get"
	files_ls "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/files/ls"
	files_put "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/files/put"
	files_uri "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/files/uri"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	uri, err := files_uri.New()
	if err != nil {
		return nil, err
	}
	ls, err := files_ls.New()
	if err != nil {
		return nil, err
	}
	get, err := files_get.New()
	if err != nil {
		return nil, err
	}
	put, err := files_put.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Handle files in DesignSafe storage.",
		struct{}{},
		flarc.WithSubcommand("uri", uri),
		flarc.WithSubcommand("ls", ls),
		flarc.WithSubcommand("get", get),
		flarc.WithSubcommand("put", put),
	)
}
