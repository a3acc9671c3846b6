package submit_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	apijobs "github.com/designsafe-ci/dapi/api-types/jobs"
	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/internal/commandline"
	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/internal/testenv"
	jobs_submit "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/jobs/submit"
	"github.com/designsafe-ci/dapi/internal/testutils/tapisfake"
	"github.com/designsafe-ci/dapi/pkg/config/dapienv"
	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/designsafe-ci/dapi/pkg/utils/try"
	"github.com/google/go-cmp/cmp"
)

func TestSubmitCommand(t *testing.T) {
	type When struct {
		flags jobs_submit.Flags
		env   dapienv.DapiEnv
		args  map[string][]string
	}
	type Then struct {
		err      error
		check    func(t *testing.T, stdout string, submitted []apijobs.Request)
		contains []string
	}

	args := map[string][]string{
		jobs_submit.ARG_APP_ID: {"opensees-express"},
		jobs_submit.ARG_INPUT:  {"/MyData/opensees"},
		jobs_submit.ARG_SCRIPT: {"model.tcl"},
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			fake := tapisfake.New(t)
			testenv.PrepareInput(fake)
			client := testenv.Client(t, fake)

			stdout := new(strings.Builder)
			err := jobs_submit.Task(
				context.Background(),
				testenv.Logger(t),
				when.env,
				client,
				commandline.MockCommandline[jobs_submit.Flags]{
					Fullname_: "dapi jobs submit",
					Stdout_:   stdout,
					Flags_:    when.flags,
					Args_:     when.args,
				},
				[]any{},
			)
			if then.err != nil {
				if !errors.Is(err, then.err) {
					t.Errorf("unexpected error: %v", err)
				}
				if s := fake.Submitted(); len(s) != 0 {
					t.Errorf("nothing should be submitted: %+v", s)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			for _, c := range then.contains {
				if !strings.Contains(stdout.String(), c) {
					t.Errorf("%q is missing in output:\n%s", c, stdout)
				}
			}
			if then.check != nil {
				then.check(t, stdout.String(), fake.Submitted())
			}
		}
	}

	t.Run("it submits a job and prints its uuid", theory(
		When{
			args:  args,
			flags: jobs_submit.Flags{Name: "my-run", Allocation: "BCS20003", Tag: []string{"flag"}},
			env:   dapienv.DapiEnv{Allocation: "FROM_ENV", Queue: "skx", Tags: []string{"env"}},
		},
		Then{check: func(t *testing.T, stdout string, submitted []apijobs.Request) {
			if len(submitted) != 1 {
				t.Fatalf("unexpected submissions: %+v", submitted)
			}
			req := submitted[0]
			if req.Name != "my-run" || req.ExecSystemLogicalQueue != "skx" {
				t.Errorf("unexpected request: %+v", req)
			}
			if !cmp.Equal(req.Tags, []string{"env", "flag"}) {
				t.Errorf("unexpected tags: %v", req.Tags)
			}
			if !cmp.Equal(req.ParameterSet.SchedulerOptions, []apijobs.Arg{{Name: "TACC Allocation", Arg: "-A BCS20003"}}) {
				t.Errorf("allocation flag should win: %+v", req.ParameterSet.SchedulerOptions)
			}
			if !strings.HasSuffix(strings.TrimSpace(stdout), "-007") {
				t.Errorf("uuid is not printed: %s", stdout)
			}
		}},
	))
	t.Run("dry run prints the request without submitting", theory(
		When{args: args, flags: jobs_submit.Flags{DryRun: true}},
		Then{check: func(t *testing.T, stdout string, submitted []apijobs.Request) {
			if len(submitted) != 0 {
				t.Errorf("nothing should be submitted: %+v", submitted)
			}
			req := apijobs.Request{}
			try.To(0, json.Unmarshal([]byte(stdout), &req)).OrFatal(t)
			if req.AppId != "opensees-express" || len(req.FileInputs) != 1 {
				t.Errorf("unexpected request: %+v", req)
			}
			if req.FileInputs[0].SourceUrl != "tapis://designsafe.storage.default/testuser/opensees" {
				t.Errorf("input should be translated: %s", req.FileInputs[0].SourceUrl)
			}
		}},
	))
	t.Run("with --monitor, it waits for the end", theory(
		When{args: args, flags: jobs_submit.Flags{Monitor: true, Interval: 5 * time.Millisecond}},
		Then{contains: []string{"Status: RUNNING", "completed successfully"}},
	))
	t.Run("unknown app", theory(
		When{args: map[string][]string{
			jobs_submit.ARG_APP_ID: {"nope"},
			jobs_submit.ARG_INPUT:  {"/MyData/opensees"},
		}},
		Then{err: derr.ErrAppNotFound},
	))
	t.Run("missing input", theory(
		When{args: map[string][]string{
			jobs_submit.ARG_APP_ID: {"opensees-express"},
			jobs_submit.ARG_INPUT:  {"/MyData/nowhere"},
		}},
		Then{err: derr.ErrFileOperation},
	))
	t.Run("unrecognized input path", theory(
		When{args: map[string][]string{
			jobs_submit.ARG_APP_ID: {"opensees-express"},
			jobs_submit.ARG_INPUT:  {"/tmp/somewhere"},
		}},
		Then{err: derr.ErrFileOperation},
	))
}
