// Package testenv connects CLI tasks under test to a fake TAPIS.
package testenv

import (
	"context"
	"log"
	"strings"
	"testing"

	apiapps "github.com/designsafe-ci/dapi/api-types/apps"
	"github.com/designsafe-ci/dapi/internal/testutils/tapisfake"
	"github.com/designsafe-ci/dapi/pkg/dapi"
	"github.com/designsafe-ci/dapi/pkg/files"
	"github.com/designsafe-ci/dapi/pkg/jobs"
	"github.com/designsafe-ci/dapi/pkg/tapis"
	"github.com/designsafe-ci/dapi/pkg/utils/try"
)

// Logger writes into the test log.
func Logger(t *testing.T) *log.Logger {
	return log.New(testWriter{t: t}, "", 0)
}

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// Client is a dapi.Client logged in to fake.
func Client(t *testing.T, fake *tapisfake.Server, options ...dapi.Option) *dapi.Client {
	t.Helper()
	client := try.To(dapi.FromToken(
		fake.URL, fake.AccessToken,
		append([]dapi.Option{
			dapi.WithMetrics(nil),
			dapi.WithTapisOptions(tapis.WithRetry(0, 0)),
		}, options...)...,
	)).OrFatal(t)
	t.Cleanup(func() { client.Close() })
	return client
}

// OpenSeesApp is an app with an input directory and a script argument.
func OpenSeesApp() apiapps.App {
	return apiapps.App{
		Id:      "opensees-express",
		Version: "3.7.0",
		Enabled: true,
		JobAttributes: apiapps.JobAttributes{
			ExecSystemId:           "stampede3",
			ExecSystemLogicalQueue: "skx-dev",
			ArchiveSystemId:        "stampede3",
			MaxMinutes:             60,
			FileInputs: []apiapps.FileInput{
				{Name: "Input Directory", TargetPath: "inputDirectory"},
			},
			ParameterSet: apiapps.ParameterSet{
				AppArgs: []apiapps.Arg{
					{Name: "Main Script", InputMode: apiapps.InputModeRequired},
				},
			},
		},
	}
}

// InputDir is where PrepareInput places the input.
const InputDir = "testuser/opensees"

// PrepareInput registers OpenSeesApp and its input directory to fake.
func PrepareInput(fake *tapisfake.Server) {
	fake.PutApp(OpenSeesApp())
	fake.PutFile(files.SystemMyData, InputDir+"/model.tcl", []byte("model basic -ndm 2"))
}

// SubmitJob submits a job of OpenSeesApp archived at "stampede3/<archivePath>".
func SubmitJob(t *testing.T, fake *tapisfake.Server, client *dapi.Client, archivePath string) *jobs.SubmittedJob {
	t.Helper()
	PrepareInput(fake)
	ctx := context.Background()
	req := try.To(client.Jobs.GenerateRequest(ctx, jobs.RequestParams{
		AppId:          "opensees-express",
		InputDirURI:    files.URI(files.SystemMyData, InputDir),
		ScriptFilename: "model.tcl",
		ArchiveSystem:  "stampede3",
		ArchivePath:    archivePath,
	})).OrFatal(t)
	return try.To(client.Jobs.Submit(ctx, req)).OrFatal(t)
}
