package submit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/common"
	jobs_monitor "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/jobs/monitor"
	"github.com/designsafe-ci/dapi/pkg/config/dapienv"
	"github.com/designsafe-ci/dapi/pkg/dapi"
	"github.com/designsafe-ci/dapi/pkg/jobs"
	"github.com/designsafe-ci/dapi/pkg/utils"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Version       string        `flag:"version" alias:"v" help:"app version. Default: the latest"`
	Name          string        `flag:"name" alias:"n" help:"job name. Default: <app id>-<timestamp>"`
	Description   string        `flag:"description" help:"job description"`
	Allocation    string        `flag:"allocation" alias:"a" help:"TACC allocation to charge. Default: allocation in dapienv"`
	Queue         string        `flag:"queue" alias:"q" help:"batch queue. Default: queue in dapienv, or the app's"`
	MaxMinutes    int           `flag:"max-minutes" help:"wall time limit. Default: the app's"`
	Nodes         int           `flag:"nodes" help:"node count. Default: the app's"`
	CoresPerNode  int           `flag:"cores-per-node" help:"cores per node. Default: the app's"`
	MemoryMB      int           `flag:"memory-mb" help:"memory per node in MB. Default: the app's"`
	ArchiveSystem string        `flag:"archive-system" metavar:"designsafe|SYSTEM_ID" help:"where outputs are archived. Default: archive.system in dapienv, or the app's"`
	ArchivePath   string        `flag:"archive-path" help:"archive directory. Default: archive.path in dapienv"`
	Tag           []string      `flag:"tag" alias:"t" help:"tag put on the job. Repeatable."`
	DryRun        bool          `flag:"dry-run" help:"print the job request, without submitting"`
	Monitor       bool          `flag:"monitor" alias:"m" help:"wait until the job ends"`
	Interval      time.Duration `flag:"interval" help:"polling interval with --monitor. Default: monitor.interval in dapienv, or 15s"`
	Timeout       time.Duration `flag:"timeout" help:"how long to wait with --monitor. Default: monitor.timeout in dapienv, or max minutes of the job"`
}

const (
	ARG_APP_ID = "APP_ID"
	ARG_INPUT  = "INPUT"
	ARG_SCRIPT = "SCRIPT"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Submit a job of the app.",
		Flags{},
		flarc.Args{
			{Name: ARG_APP_ID, Required: true, Help: "id of the app, like opensees-express"},
			{
				Name: ARG_INPUT, Required: true,
				Help: `input directory. DesignSafe path (/MyData/..., /MyProjects/PRJ-1234/..., /CommunityData/...) or tapis URI.`,
			},
			{Name: ARG_SCRIPT, Required: false, Help: "file name of the main script in INPUT"},
		},
		common.NewTask[Flags](Task),
		flarc.WithDescription(`
Submit a job of the app, reading the input directory INPUT and running SCRIPT.

Resources and archive default to the app's, unless given by flags or dapienv.

The uuid of the submitted job is printed.
`),
	)
}

func Task(
	ctx context.Context,
	logger *log.Logger,
	e dapienv.DapiEnv,
	client *dapi.Client,
	cl flarc.Commandline[Flags],
	_ []any,
) error {
	flags := cl.Flags()
	args := cl.Args()

	input, err := client.Files.TranslatePathToURI(ctx, args[ARG_INPUT][0], false)
	if err != nil {
		return err
	}
	script := ""
	if s := args[ARG_SCRIPT]; 0 < len(s) {
		script = s[0]
	}

	params := jobs.RequestParams{
		AppId:          args[ARG_APP_ID][0],
		AppVersion:     flags.Version,
		InputDirURI:    input,
		ScriptFilename: script,
		JobName:        flags.Name,
		Description:    flags.Description,
		Tags:           utils.Concat(e.Tags, flags.Tag),
		MaxMinutes:     flags.MaxMinutes,
		NodeCount:      flags.Nodes,
		CoresPerNode:   flags.CoresPerNode,
		MemoryMB:       flags.MemoryMB,
		Queue:          utils.Default(flags.Queue, e.Queue),
		Allocation:     utils.Default(flags.Allocation, e.Allocation),
		ArchiveSystem:  utils.Default(flags.ArchiveSystem, e.Archive.System),
		ArchivePath:    utils.Default(flags.ArchivePath, e.Archive.Path),
	}
	req, err := client.Jobs.GenerateRequest(ctx, params)
	if err != nil {
		return err
	}
	if flags.DryRun {
		return common.PrintJSON(cl.Stdout(), req)
	}

	job, err := client.Jobs.Submit(ctx, req)
	if err != nil {
		return err
	}
	logger.Printf("job %s is submitted (status: %s)", job.Uuid, job.LastStatus())
	fmt.Fprintln(cl.Stdout(), job.Uuid)

	if !flags.Monitor {
		return nil
	}
	_, err = jobs_monitor.Watch(ctx, job, e, flags.Interval, flags.Timeout, false, cl.Stdout())
	return err
}
