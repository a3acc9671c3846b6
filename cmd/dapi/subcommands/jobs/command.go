package jobs

import (
	jobs_cancel "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/jobs/cancel"
	jobs_history "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/jobs/history"
	jobs_monitor "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/jobs/monitor"
	jobs_outputs "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/jobs/outputs"
	jobs_show "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/jobs/show"
	jobs_status "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/jobs/status"
	jobs_submit "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/jobs/submit"
	jobs_summary "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/jobs/summary"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	submit, err := jobs_submit.New()
	if err != nil {
		return nil, err
	}
	show, err := jobs_show.New()
	if err != nil {
		return nil, err
	}
	status, err := jobs_status.New()
	if err != nil {
		return nil, err
	}
	monitor, err := jobs_monitor.New()
	if err != nil {
		return nil, err
	}
	history, err := jobs_history.New()
	if err != nil {
		return nil, err
	}
	summary, err := jobs_summary.New()
	if err != nil {
		return nil, err
	}
	cancel, err := jobs_cancel.New()
	if err != nil {
		return nil, err
	}
	outputs, err := jobs_outputs.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Submit and track TAPIS jobs.",
		struct{}{},
		flarc.WithSubcommand("submit", submit),
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("status", status),
		flarc.WithSubcommand("monitor", monitor),
		flarc.WithSubcommand("history", history),
		flarc.WithSubcommand("summary", summary),
		flarc.WithSubcommand("cancel", cancel),
		flarc.WithSubcommand("outputs", outputs),
	)
}
