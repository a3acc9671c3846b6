package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path"

	subapps "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/apps"
	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/common"
	subdb "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/db"
	subfiles "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/files"
	subinit "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/init"
	subjobs "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/jobs"
	subsystems "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/systems"
	subver "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/version"
	"github.com/designsafe-ci/dapi/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func main() {
	name := path.Base(os.Args[0])
	logger := log.Default()
	logger.SetPrefix(fmt.Sprintf("[%s] ", name))

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	cf := try.To(common.Flags(".")).OrFatal(logger)
	init := try.To(subinit.New()).OrFatal(logger)
	apps := try.To(subapps.New()).OrFatal(logger)
	jobs := try.To(subjobs.New()).OrFatal(logger)
	files := try.To(subfiles.New()).OrFatal(logger)
	systems := try.To(subsystems.New()).OrFatal(logger)
	db := try.To(subdb.New()).OrFatal(logger)
	version := try.To(subver.New()).OrFatal(logger)

	dapi := try.To(
		flarc.NewCommandGroup(
			"DesignSafe commandline interface",
			cf,
			flarc.WithSubcommand("init", init),
			flarc.WithSubcommand("apps", apps),
			flarc.WithSubcommand("jobs", jobs),
			flarc.WithSubcommand("files", files),
			flarc.WithSubcommand("systems", systems),
			flarc.WithSubcommand("db", db),
			flarc.WithSubcommand("version", version),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, dapi, flarc.WithHelp(true)))
}
