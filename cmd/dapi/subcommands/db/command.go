package db

import (
	db_query "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/db/query"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	query, err := db_query.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Query DesignSafe research databases.",
		struct{}{},
		flarc.WithSubcommand("query", query),
	)
}
