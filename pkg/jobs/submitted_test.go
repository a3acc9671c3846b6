package jobs_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apifiles "github.com/designsafe-ci/dapi/api-types/files"
	apijobs "github.com/designsafe-ci/dapi/api-types/jobs"
	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/designsafe-ci/dapi/pkg/jobs"
	"github.com/designsafe-ci/dapi/pkg/metrics"
	"github.com/designsafe-ci/dapi/pkg/tapis"
	"github.com/designsafe-ci/dapi/pkg/tapis/mock"
	"github.com/designsafe-ci/dapi/pkg/utils/try"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// statuses returns GetJobStatus returning each of seq in order, then the last one forever.
func statuses(seq ...string) func(context.Context, string) (string, error) {
	i := 0
	return func(context.Context, string) (string, error) {
		s := seq[i]
		if i+1 < len(seq) {
			i += 1
		}
		return s, nil
	}
}

func TestSubmit(t *testing.T) {
	t.Run("accepted request gives a handle", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := try.To(metrics.New(reg)).OrFatal(t)

		client := mock.New(t)
		client.Impl.SubmitJob = func(ctx context.Context, request apijobs.Request) (apijobs.Job, error) {
			return apijobs.Job{Uuid: "job-1", Status: "PENDING"}, nil
		}

		req := apijobs.Request{Name: "job", AppId: "opensees-express", AppVersion: "3.7.0"}
		sj := try.To(jobs.New(client, jobs.WithMetrics(m)).Submit(context.Background(), req)).OrFatal(t)
		if sj.Uuid != "job-1" || sj.LastStatus() != jobs.StatusPending {
			t.Errorf("unexpected handle: uuid=%s, status=%s", sj.Uuid, sj.LastStatus())
		}
		if !cmp.Equal(client.Calls.SubmitJob, []apijobs.Request{req}) {
			t.Errorf("unexpected request: %+v", client.Calls.SubmitJob)
		}
		if v := testutil.ToFloat64(m.Submissions().WithLabelValues(metrics.ResultAccepted)); v != 1 {
			t.Errorf("unexpected accepted count: %v", v)
		}
	})

	t.Run("rejected request is ErrJobSubmission", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := try.To(metrics.New(reg)).OrFatal(t)

		client := mock.New(t)
		client.Impl.SubmitJob = func(ctx context.Context, request apijobs.Request) (apijobs.Job, error) {
			return apijobs.Job{}, &tapis.APIError{StatusCode: http.StatusBadRequest, Message: "invalid allocation"}
		}

		_, err := jobs.New(client, jobs.WithMetrics(m)).Submit(
			context.Background(), apijobs.Request{Name: "job", AppId: "opensees-express"},
		)
		if !errors.Is(err, derr.ErrJobSubmission) {
			t.Errorf("unexpected error: %v", err)
		}
		if v := testutil.ToFloat64(m.Submissions().WithLabelValues(metrics.ResultRejected)); v != 1 {
			t.Errorf("unexpected rejected count: %v", v)
		}
	})

	t.Run("request without name is not sent", func(t *testing.T) {
		client := mock.New(t)
		_, err := jobs.New(client, jobs.WithMetrics(nil)).Submit(
			context.Background(), apijobs.Request{AppId: "opensees-express"},
		)
		if !errors.Is(err, derr.ErrInvalidOverride) {
			t.Errorf("unexpected error: %v", err)
		}
		if errors.Is(err, derr.ErrJobSubmission) {
			t.Errorf("unsent request should not be ErrJobSubmission: %v", err)
		}
	})
}

func TestSubmittedJob_Status(t *testing.T) {
	t.Run("terminal status is cached", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.GetJobStatus = statuses("RUNNING", "FINISHED")
		sj := jobs.New(client, jobs.WithMetrics(nil)).Get("job-1")

		for _, want := range []jobs.Status{jobs.StatusRunning, jobs.StatusFinished, jobs.StatusFinished} {
			got := try.To(sj.Status(context.Background())).OrFatal(t)
			if got != want {
				t.Errorf("got %s, want %s", got, want)
			}
		}
		if len(client.Calls.GetJobStatus) != 2 {
			t.Errorf("terminal status should not be fetched again: %v", client.Calls.GetJobStatus)
		}
	})

	t.Run("status change drops cached details", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.GetJob = func(ctx context.Context, jobUuid string) (apijobs.Job, error) {
			return apijobs.Job{Uuid: jobUuid, Status: "QUEUED", LastMessage: "queued"}, nil
		}
		client.Impl.GetJobStatus = statuses("RUNNING")
		sj := jobs.New(client, jobs.WithMetrics(nil)).Get("job-1")

		try.To(sj.Details(context.Background(), false)).OrFatal(t)
		if sj.LastMessage() != "queued" {
			t.Errorf("unexpected last message: %s", sj.LastMessage())
		}
		try.To(sj.RefreshStatus(context.Background())).OrFatal(t)
		if sj.LastMessage() != "" {
			t.Errorf("details should be dropped: %s", sj.LastMessage())
		}
		try.To(sj.Details(context.Background(), false)).OrFatal(t)
		if len(client.Calls.GetJob) != 2 {
			t.Errorf("details should be fetched again: %v", client.Calls.GetJob)
		}
	})

	t.Run("unrecognized status is StatusUnknown", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.GetJobStatus = statuses("WARPING")
		got := try.To(jobs.New(client, jobs.WithMetrics(nil)).Status(context.Background(), "job-1")).OrFatal(t)
		if got != jobs.StatusUnknown {
			t.Errorf("unexpected status: %s", got)
		}
	})

	t.Run("failure is ErrJobMonitor", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.GetJobStatus = func(ctx context.Context, jobUuid string) (string, error) {
			return "", &tapis.APIError{StatusCode: http.StatusInternalServerError}
		}
		_, err := jobs.New(client, jobs.WithMetrics(nil)).Get("job-1").RefreshStatus(context.Background())
		if !errors.Is(err, derr.ErrJobMonitor) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestSubmittedJob_Monitor(t *testing.T) {
	t.Run("it returns the terminal status and reports changes", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := try.To(metrics.New(reg)).OrFatal(t)

		client := mock.New(t)
		client.Impl.GetJobStatus = statuses("PENDING", "QUEUED", "QUEUED", "RUNNING", "FINISHED")
		sj := jobs.New(client, jobs.WithMetrics(m)).Get("job-1")

		out := new(strings.Builder)
		got := try.To(sj.Monitor(
			context.Background(),
			jobs.WithInterval(time.Millisecond), jobs.WithTimeout(time.Minute), jobs.WithOutput(out),
		)).OrFatal(t)
		if got != jobs.StatusFinished {
			t.Errorf("unexpected status: %s", got)
		}
		if len(client.Calls.GetJobStatus) != 5 {
			t.Errorf("unexpected polls: %d", len(client.Calls.GetJobStatus))
		}
		if n := strings.Count(out.String(), "Status: QUEUED"); n != 1 {
			t.Errorf("change should be reported once, but %d times:\n%s", n, out)
		}
		if !strings.Contains(out.String(), "Monitoring job job-1") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if v := testutil.ToFloat64(m.Polls().WithLabelValues(metrics.ResultOk)); v != 5 {
			t.Errorf("unexpected poll count: %v", v)
		}
	})

	t.Run("failed polls are tolerated", func(t *testing.T) {
		client := mock.New(t)
		n := 0
		client.Impl.GetJobStatus = func(ctx context.Context, jobUuid string) (string, error) {
			n += 1
			if n < 3 {
				return "", &tapis.APIError{StatusCode: http.StatusBadGateway}
			}
			return "FAILED", nil
		}
		sj := jobs.New(client, jobs.WithMetrics(nil)).Get("job-1")
		got := try.To(sj.Monitor(
			context.Background(), jobs.WithInterval(time.Millisecond), jobs.WithTimeout(time.Minute),
		)).OrFatal(t)
		if got != jobs.StatusFailed {
			t.Errorf("unexpected status: %s", got)
		}
	})

	t.Run("it gives up with StatusTimeout", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.GetJobStatus = statuses("RUNNING")
		sj := jobs.New(client, jobs.WithMetrics(nil)).Get("job-1")

		got := try.To(sj.Monitor(
			context.Background(),
			jobs.WithInterval(5*time.Millisecond), jobs.WithTimeout(30*time.Millisecond),
		)).OrFatal(t)
		if got != jobs.StatusTimeout {
			t.Errorf("unexpected status: %s", got)
		}
	})

	t.Run("job finishing after the deadline is StatusTimeout", func(t *testing.T) {
		client := mock.New(t)
		started := time.Now()
		client.Impl.GetJobStatus = func(ctx context.Context, jobUuid string) (string, error) {
			if time.Since(started) < 250*time.Millisecond {
				return "RUNNING", nil
			}
			return "FINISHED", nil
		}
		sj := jobs.New(client, jobs.WithMetrics(nil)).Get("job-1")

		got := try.To(sj.Monitor(
			context.Background(),
			jobs.WithInterval(150*time.Millisecond), jobs.WithTimeout(200*time.Millisecond),
			jobs.WithOutput(io.Discard),
		)).OrFatal(t)
		if got != jobs.StatusTimeout {
			t.Errorf("unexpected status: %s", got)
		}
		if elapsed := time.Since(started); 250*time.Millisecond <= elapsed {
			t.Errorf("it should not sleep past the deadline: %s", elapsed)
		}
		if n := len(client.Calls.GetJobStatus); n != 3 {
			t.Errorf("the last poll should be on the deadline: %d polls", n)
		}
	})

	t.Run("status changes go to stdout by default", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.GetJobStatus = statuses("RUNNING", "FINISHED")
		sj := jobs.New(client, jobs.WithMetrics(nil)).Get("job-1")

		r, w, err := os.Pipe()
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		stdout := os.Stdout
		os.Stdout = w
		_, err = sj.Monitor(context.Background(), jobs.WithInterval(time.Millisecond), jobs.WithTimeout(time.Minute))
		os.Stdout = stdout
		w.Close()
		if err != nil {
			t.Fatal(err)
		}

		out := string(try.To(io.ReadAll(r)).OrFatal(t))
		for _, want := range []string{"Monitoring job job-1", "Status: RUNNING", "reached a terminal status: FINISHED"} {
			if !strings.Contains(out, want) {
				t.Errorf("%q is not in stdout:\n%s", want, out)
			}
		}
	})

	t.Run("timeout defaults to maxMinutes of the job", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.GetJob = func(ctx context.Context, jobUuid string) (apijobs.Job, error) {
			return apijobs.Job{Uuid: jobUuid, Status: "RUNNING", MaxMinutes: 10}, nil
		}
		client.Impl.GetJobStatus = statuses("RUNNING", "FINISHED")
		sj := jobs.New(client, jobs.WithMetrics(nil)).Get("job-1")

		out := new(strings.Builder)
		got := try.To(sj.Monitor(context.Background(), jobs.WithInterval(time.Millisecond), jobs.WithOutput(out))).OrFatal(t)
		if got != jobs.StatusFinished {
			t.Errorf("unexpected status: %s", got)
		}
		if !strings.Contains(out.String(), "timeout: 10m0s") {
			t.Errorf("timeout should come from maxMinutes:\n%s", out)
		}
	})

	t.Run("context cancellation gives StatusInterrupted", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.GetJobStatus = statuses("RUNNING")
		sj := jobs.New(client, jobs.WithMetrics(nil)).Get("job-1")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		got := try.To(sj.Monitor(ctx, jobs.WithInterval(5*time.Millisecond), jobs.WithTimeout(0))).OrFatal(t)
		if got != jobs.StatusInterrupted {
			t.Errorf("unexpected status: %s", got)
		}
	})

	t.Run("handle without uuid is an error", func(t *testing.T) {
		client := mock.New(t)
		_, err := jobs.New(client, jobs.WithMetrics(nil)).Get("").Monitor(context.Background())
		if !errors.Is(err, derr.ErrJobMonitor) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestSubmittedJob_Cancel(t *testing.T) {
	t.Run("cancelled job is CANCELLED", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.CancelJob = func(ctx context.Context, jobUuid string) error { return nil }
		sj := jobs.New(client, jobs.WithMetrics(nil)).Get("job-1")

		try.To(0, sj.Cancel(context.Background())).OrFatal(t)
		if got := try.To(sj.Status(context.Background())).OrFatal(t); got != jobs.StatusCancelled {
			t.Errorf("unexpected status: %s", got)
		}
	})

	t.Run("400 refreshes status", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.CancelJob = func(ctx context.Context, jobUuid string) error {
			return &tapis.APIError{StatusCode: http.StatusBadRequest}
		}
		client.Impl.GetJobStatus = statuses("FINISHED")
		sj := jobs.New(client, jobs.WithMetrics(nil)).Get("job-1")

		try.To(0, sj.Cancel(context.Background())).OrFatal(t)
		if sj.LastStatus() != jobs.StatusFinished {
			t.Errorf("unexpected status: %s", sj.LastStatus())
		}
	})

	t.Run("other failures are ErrJobMonitor", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.CancelJob = func(ctx context.Context, jobUuid string) error {
			return &tapis.APIError{StatusCode: http.StatusInternalServerError}
		}
		err := jobs.New(client, jobs.WithMetrics(nil)).Get("job-1").Cancel(context.Background())
		if !errors.Is(err, derr.ErrJobMonitor) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestSubmittedJob_Outputs(t *testing.T) {
	archived := func(ctx context.Context, jobUuid string) (apijobs.Job, error) {
		return apijobs.Job{
			Uuid:             jobUuid,
			Status:           "FINISHED",
			ArchiveSystemId:  "designsafe.storage.default",
			ArchiveSystemDir: "/testuser/tapis-jobs-archive/2024-09-30Z/job-1",
		}, nil
	}

	t.Run("archive URI", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.GetJob = archived
		uri := try.To(jobs.New(client, jobs.WithMetrics(nil)).Get("job-1").ArchiveURI(context.Background())).OrFatal(t)
		want := "tapis://designsafe.storage.default/testuser/tapis-jobs-archive/2024-09-30Z/job-1"
		if uri != want {
			t.Errorf("got %s, want %s", uri, want)
		}
	})

	t.Run("outputs are listed relative to the archive", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.GetJob = archived
		client.Impl.ListFiles = func(ctx context.Context, systemId string, path string, limit int, offset int) ([]apifiles.FileInfo, error) {
			return []apifiles.FileInfo{{Name: "out.txt"}}, nil
		}
		sj := jobs.New(client, jobs.WithMetrics(nil)).Get("job-1")

		try.To(sj.ListOutputs(context.Background(), "/results/../model", 0, 0)).OrFatal(t)
		want := []mock.ListFilesArgs{{
			SystemId: "designsafe.storage.default",
			Path:     "testuser/tapis-jobs-archive/2024-09-30Z/job-1/model",
			Limit:    100,
		}}
		if !cmp.Equal(client.Calls.ListFiles, want) {
			t.Errorf("unexpected listing:\n%s", cmp.Diff(want, client.Calls.ListFiles))
		}
	})

	t.Run("output is downloaded", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.GetJob = archived
		client.Impl.GetFileContents = func(ctx context.Context, systemId string, path string, zip bool, handler func(r io.Reader) error) error {
			return handler(strings.NewReader("done"))
		}
		dest := filepath.Join(t.TempDir(), "out", "tapisjob.out")

		try.To(0, jobs.New(client, jobs.WithMetrics(nil)).Get("job-1").DownloadOutput(context.Background(), "tapisjob.out", dest)).OrFatal(t)
		content := try.To(os.ReadFile(dest)).OrFatal(t)
		if string(content) != "done" {
			t.Errorf("unexpected content: %s", content)
		}
		want := []mock.GetFileContentsArgs{{
			SystemId: "designsafe.storage.default",
			Path:     "testuser/tapis-jobs-archive/2024-09-30Z/job-1/tapisjob.out",
		}}
		if !cmp.Equal(client.Calls.GetFileContents, want) {
			t.Errorf("unexpected download:\n%s", cmp.Diff(want, client.Calls.GetFileContents))
		}
	})

	t.Run("job without archive", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.GetJob = func(ctx context.Context, jobUuid string) (apijobs.Job, error) {
			return apijobs.Job{Uuid: jobUuid, Status: "RUNNING"}, nil
		}
		sj := jobs.New(client, jobs.WithMetrics(nil)).Get("job-1")

		if uri := try.To(sj.ArchiveURI(context.Background())).OrFatal(t); uri != "" {
			t.Errorf("unexpected uri: %s", uri)
		}
		if _, err := sj.ListOutputs(context.Background(), "", 0, 0); !errors.Is(err, derr.ErrFileOperation) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestInterpretStatus(t *testing.T) {
	for status, want := range map[jobs.Status]string{
		jobs.StatusFinished:    "Job job-1 completed successfully.",
		jobs.StatusCancelled:   "Job job-1 was cancelled.",
		jobs.StatusTimeout:     "Monitoring of job job-1 timed out",
		jobs.StatusInterrupted: "Monitoring of job job-1 was interrupted.",
		jobs.StatusRunning:     "Job job-1 is still in progress (RUNNING).",
	} {
		if got := jobs.InterpretStatus(status, "job-1"); !strings.HasPrefix(got, want) {
			t.Errorf("InterpretStatus(%s) = %q, want prefix %q", status, got, want)
		}
	}
}
