package jobs

import (
	"context"
	"fmt"
	"path"
	"strings"

	apifiles "github.com/designsafe-ci/dapi/api-types/files"
	apijobs "github.com/designsafe-ci/dapi/api-types/jobs"
	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/designsafe-ci/dapi/pkg/files"
	"github.com/designsafe-ci/dapi/pkg/log"
	"github.com/designsafe-ci/dapi/pkg/tapis"
	"go.uber.org/zap"
)

// SubmittedJob is a handle of a job in TAPIS.
//
// It caches details and the last status. It is not safe for concurrent use.
type SubmittedJob struct {
	Uuid string

	jobs    *Jobs
	status  Status
	details *apijobs.Job
}

// Details returns details of the job.
//
// Cached details are returned unless refresh is true.
func (sj *SubmittedJob) Details(ctx context.Context, refresh bool) (apijobs.Job, error) {
	if sj.details != nil && !refresh {
		return *sj.details, nil
	}
	job, err := sj.jobs.client.GetJob(ctx, sj.Uuid)
	if err != nil {
		return apijobs.Job{}, derr.Wrap(derr.ErrJobMonitor, err, "failed to get details of job %s", sj.Uuid)
	}
	sj.details = &job
	if st, ok := ParseStatus(job.Status); ok {
		sj.status = st
	}
	return job, nil
}

// Status returns the status of the job.
//
// Terminal status is cached. Otherwise, it fetches the current one.
func (sj *SubmittedJob) Status(ctx context.Context) (Status, error) {
	if sj.status.IsTerminal() {
		return sj.status, nil
	}
	return sj.RefreshStatus(ctx)
}

// RefreshStatus fetches the current status of the job.
//
// Unrecognized status from TAPIS is reported as StatusUnknown.
func (sj *SubmittedJob) RefreshStatus(ctx context.Context) (Status, error) {
	raw, err := sj.jobs.client.GetJobStatus(ctx, sj.Uuid)
	if err != nil {
		return sj.status, derr.Wrap(derr.ErrJobMonitor, err, "failed to get status of job %s", sj.Uuid)
	}
	st, ok := ParseStatus(raw)
	if !ok {
		log.Named(log.Jobs).Warn("unrecognized job status", zap.String("uuid", sj.Uuid), zap.String("status", raw))
	}
	if st != sj.status {
		// details, like lastMessage, follow status.
		sj.details = nil
	}
	sj.status = st
	return st, nil
}

// LastStatus is the status observed at last, without accessing TAPIS.
func (sj *SubmittedJob) LastStatus() Status {
	return sj.status
}

// LastMessage is the latest message of the job in cached details.
//
// It is empty before Details is called.
func (sj *SubmittedJob) LastMessage() string {
	if sj.details == nil {
		return ""
	}
	return sj.details.LastMessage
}

func (sj *SubmittedJob) History(ctx context.Context) ([]apijobs.HistoryEvent, error) {
	h, err := sj.jobs.client.GetJobHistory(ctx, sj.Uuid)
	if err != nil {
		return nil, derr.Wrap(derr.ErrJobMonitor, err, "failed to get history of job %s", sj.Uuid)
	}
	return h, nil
}

func (sj *SubmittedJob) RuntimeSummary(ctx context.Context) (*Summary, error) {
	h, err := sj.History(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(h), nil
}

// ArchiveURI returns tapis:// URI of the archive directory.
//
// It is empty when the job has no archive system or directory.
func (sj *SubmittedJob) ArchiveURI(ctx context.Context) (string, error) {
	job, err := sj.Details(ctx, false)
	if err != nil {
		return "", err
	}
	if job.ArchiveSystemId == "" || job.ArchiveSystemDir == "" {
		return "", nil
	}
	return files.URI(job.ArchiveSystemId, job.ArchiveSystemDir), nil
}

func (sj *SubmittedJob) outputURI(ctx context.Context, p string) (string, error) {
	job, err := sj.Details(ctx, false)
	if err != nil {
		return "", err
	}
	if job.ArchiveSystemId == "" || job.ArchiveSystemDir == "" {
		return "", fmt.Errorf("%w: job %s has no archive location", derr.ErrFileOperation, sj.Uuid)
	}
	rel := strings.TrimPrefix(path.Clean("/"+p), "/")
	return files.URI(job.ArchiveSystemId, path.Join(job.ArchiveSystemDir, rel)), nil
}

// ListOutputs lists files under path of the archive directory.
//
// Non-positive limit means files.DefaultListLimit.
func (sj *SubmittedJob) ListOutputs(ctx context.Context, p string, limit int, offset int) ([]apifiles.FileInfo, error) {
	uri, err := sj.outputURI(ctx, p)
	if err != nil {
		return nil, err
	}
	return sj.jobs.files.List(ctx, uri, limit, offset)
}

// DownloadOutput downloads a file in the archive directory to localTarget.
func (sj *SubmittedJob) DownloadOutput(ctx context.Context, remotePath string, localTarget string) error {
	uri, err := sj.outputURI(ctx, remotePath)
	if err != nil {
		return err
	}
	return sj.jobs.files.Download(ctx, uri, localTarget)
}

// Cancel requests TAPIS to cancel the job.
//
// The job may remain in progress for a while after that.
// When TAPIS refuses with 400 (i.e. the job has already ended), it refreshes the status instead.
func (sj *SubmittedJob) Cancel(ctx context.Context) error {
	logger := log.Named(log.Jobs)
	err := sj.jobs.client.CancelJob(ctx, sj.Uuid)
	if err == nil {
		sj.status = StatusCancelled
		sj.details = nil
		logger.Info("cancel requested", zap.String("uuid", sj.Uuid))
		return nil
	}
	if !tapis.IsBadRequest(err) {
		return derr.Wrap(derr.ErrJobMonitor, err, "failed to cancel job %s", sj.Uuid)
	}

	logger.Info("job cannot be cancelled, may have ended already", zap.String("uuid", sj.Uuid), zap.Error(err))
	if _, err := sj.RefreshStatus(ctx); err != nil {
		return err
	}
	return nil
}
