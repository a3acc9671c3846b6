package dapi_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apiapps "github.com/designsafe-ci/dapi/api-types/apps"
	"github.com/designsafe-ci/dapi/internal/testutils/tapisfake"
	"github.com/designsafe-ci/dapi/pkg/auth"
	"github.com/designsafe-ci/dapi/pkg/dapi"
	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/designsafe-ci/dapi/pkg/files"
	"github.com/designsafe-ci/dapi/pkg/jobs"
	"github.com/designsafe-ci/dapi/pkg/tapis"
	"github.com/designsafe-ci/dapi/pkg/utils/pointer"
	"github.com/designsafe-ci/dapi/pkg/utils/try"
)

func noEnv(string) (string, bool) { return "", false }

func openseesApp() apiapps.App {
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
				{Name: "Input Directory", TargetPath: "inputDirectory", AutoMountLocal: pointer.Ref(true)},
			},
			ParameterSet: apiapps.ParameterSet{
				AppArgs: []apiapps.Arg{
					{Name: "Main Script", InputMode: apiapps.InputModeRequired},
				},
			},
		},
	}
}

func login(t *testing.T, fake *tapisfake.Server, password string, options ...dapi.Option) (*dapi.Client, error) {
	t.Helper()
	return dapi.New(
		context.Background(),
		append([]dapi.Option{
			dapi.WithBaseURL(fake.URL),
			dapi.WithAuth(
				auth.WithUsername(fake.Username),
				auth.WithPassword(password),
				auth.WithLookupEnv(noEnv),
				auth.WithPrompter(nil),
			),
			dapi.WithTapisOptions(tapis.WithRetry(0, 0)),
			dapi.WithMetrics(nil),
		}, options...)...,
	)
}

func TestNew(t *testing.T) {
	t.Run("it logs in with credentials", func(t *testing.T) {
		fake := tapisfake.New(t)
		client := try.To(login(t, fake, fake.Password)).OrFatal(t)
		defer client.Close()

		if u := client.Tapis().Username(); u != fake.Username {
			t.Errorf("unexpected username: %s", u)
		}
		if b := client.Tapis().BaseURL(); b != fake.URL {
			t.Errorf("unexpected base url: %s", b)
		}
	})

	t.Run("rejected credentials are ErrAuthentication", func(t *testing.T) {
		fake := tapisfake.New(t)
		_, err := login(t, fake, "wrong")
		if !errors.Is(err, derr.ErrAuthentication) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing credentials are ErrAuthentication, without requests", func(t *testing.T) {
		_, err := dapi.New(
			context.Background(),
			dapi.WithBaseURL("http://127.0.0.1:1"),
			dapi.WithAuth(auth.WithLookupEnv(noEnv), auth.WithPrompter(nil), auth.WithEnvFile(filepath.Join(t.TempDir(), "missing.env"))),
		)
		if !errors.Is(err, derr.ErrAuthentication) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("FromToken reads username from the token", func(t *testing.T) {
		fake := tapisfake.New(t)
		client := try.To(dapi.FromToken(fake.URL, fake.AccessToken, dapi.WithMetrics(nil))).OrFatal(t)
		if u := client.Tapis().Username(); u != "testuser" {
			t.Errorf("unexpected username: %s", u)
		}
		if _, err := dapi.FromToken(fake.URL, "not a jwt"); !errors.Is(err, derr.ErrAuthentication) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestClient_JobLifecycle(t *testing.T) {
	ctx := context.Background()
	fake := tapisfake.New(t)
	fake.PutApp(openseesApp())
	fake.PutFile(files.SystemMyData, "testuser/opensees/model.tcl", []byte("model basic -ndm 2"))

	client := try.To(login(t, fake, fake.Password)).OrFatal(t)
	defer client.Close()

	inputURI := try.To(client.Files.TranslatePathToURI(ctx, "/MyData/opensees", true)).OrFatal(t)
	if inputURI != "tapis://designsafe.storage.default/testuser/opensees" {
		t.Fatalf("unexpected uri: %s", inputURI)
	}

	req := try.To(client.Jobs.GenerateRequest(ctx, jobs.RequestParams{
		AppId:          "opensees-express",
		InputDirURI:    inputURI,
		ScriptFilename: "model.tcl",
		Allocation:     "BCS20003",
		ArchiveSystem:  jobs.ArchiveDesignSafe,
	})).OrFatal(t)

	job := try.To(client.Jobs.Submit(ctx, req)).OrFatal(t)
	if job.Uuid == "" {
		t.Fatal("submitted job has no uuid")
	}
	if submitted := fake.Submitted(); len(submitted) != 1 || submitted[0].AppId != "opensees-express" {
		t.Errorf("unexpected submissions: %+v", submitted)
	}

	out := new(strings.Builder)
	status := try.To(job.Monitor(ctx, jobs.WithInterval(5*time.Millisecond), jobs.WithOutput(out))).OrFatal(t)
	if status != jobs.StatusFinished {
		t.Errorf("unexpected status: %s\n%s", status, out)
	}
	if !strings.Contains(out.String(), "Status: RUNNING") {
		t.Errorf("status changes are not reported:\n%s", out)
	}

	summary := try.To(client.Jobs.RuntimeSummary(ctx, job.Uuid)).OrFatal(t)
	if _, ok := summary.Stage("QUEUED"); !ok {
		t.Errorf("QUEUED stage is missing: %v", summary.Stages.Keys())
	}

	archive := try.To(job.ArchiveURI(ctx)).OrFatal(t)
	if !strings.HasPrefix(archive, "tapis://designsafe.storage.default/testuser/tapis-jobs-archive/") {
		t.Errorf("unexpected archive: %s", archive)
	}

	if err := job.Cancel(ctx); err != nil {
		t.Errorf("cancelling finished job should not fail: %v", err)
	}
	if s := job.LastStatus(); s != jobs.StatusFinished {
		t.Errorf("status should be refreshed: %s", s)
	}
}

func TestClient_Files(t *testing.T) {
	ctx := context.Background()
	fake := tapisfake.New(t)
	client := try.To(login(t, fake, fake.Password)).OrFatal(t)

	dir := t.TempDir()
	local := filepath.Join(dir, "model.tcl")
	if err := os.WriteFile(local, []byte("wipe"), os.FileMode(0600)); err != nil {
		t.Fatal(err)
	}

	uri := files.URI(files.SystemMyData, "testuser/uploaded/model.tcl")
	try.To(0, client.Files.Upload(ctx, local, uri)).OrFatal(t)
	if content, ok := fake.File(files.SystemMyData, "testuser/uploaded/model.tcl"); !ok || string(content) != "wipe" {
		t.Errorf("unexpected upload: %q (found: %v)", content, ok)
	}

	listed := try.To(client.Files.List(ctx, files.URI(files.SystemMyData, "testuser/uploaded"), files.DefaultListLimit, 0)).OrFatal(t)
	if len(listed) != 1 || listed[0].Name != "model.tcl" {
		t.Errorf("unexpected listing: %+v", listed)
	}

	dest := filepath.Join(dir, "downloaded", "model.tcl")
	try.To(0, client.Files.Download(ctx, uri, dest)).OrFatal(t)
	if content := try.To(os.ReadFile(dest)).OrFatal(t); string(content) != "wipe" {
		t.Errorf("unexpected download: %q", content)
	}

	err := client.Files.Download(ctx, files.URI(files.SystemMyData, "testuser/nothing"), filepath.Join(dir, "nothing"))
	if !errors.Is(err, derr.ErrFileOperation) {
		t.Errorf("unexpected error: %v", err)
	}
}
