// Package jobs generates, submits and monitors TAPIS jobs.
package jobs

import (
	"context"
	"fmt"
	"time"

	apijobs "github.com/designsafe-ci/dapi/api-types/jobs"
	"github.com/designsafe-ci/dapi/pkg/apps"
	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/designsafe-ci/dapi/pkg/files"
	"github.com/designsafe-ci/dapi/pkg/log"
	"github.com/designsafe-ci/dapi/pkg/metrics"
	"github.com/designsafe-ci/dapi/pkg/tapis"
	"go.uber.org/zap"
)

type Jobs struct {
	client  tapis.Client
	apps    *apps.Apps
	files   *files.Files
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Jobs) *Jobs

// WithClock replaces the clock used for default job names and monitoring.
func WithClock(now func() time.Time) Option {
	return func(j *Jobs) *Jobs {
		j.now = now
		return j
	}
}

// WithMetrics records submissions and polls in m. nil disables it.
func WithMetrics(m *metrics.Metrics) Option {
	return func(j *Jobs) *Jobs {
		j.metrics = m
		return j
	}
}

// WithFiles sets Files used to browse job outputs.
func WithFiles(f *files.Files) Option {
	return func(j *Jobs) *Jobs {
		j.files = f
		return j
	}
}

func New(client tapis.Client, options ...Option) *Jobs {
	j := &Jobs{
		client:  client,
		apps:    apps.New(client),
		metrics: metrics.Default(),
		now:     time.Now,
	}
	for _, opt := range options {
		j = opt(j)
	}
	if j.files == nil {
		j.files = files.New(client)
	}
	return j
}

// Submit sends req to TAPIS.
//
// It returns derr.ErrJobSubmission when TAPIS rejects the request,
// and derr.ErrInvalidOverride without calling TAPIS when req lacks app id or name.
func (j *Jobs) Submit(ctx context.Context, req apijobs.Request) (*SubmittedJob, error) {
	if req.AppId == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: request should have app id and name", derr.ErrInvalidOverride)
	}

	job, err := j.client.SubmitJob(ctx, req)
	if err != nil {
		j.metrics.IncSubmission(metrics.ResultRejected)
		return nil, derr.Wrap(derr.ErrJobSubmission, err, "job '%s' (app: %s) is rejected", req.Name, req.AppId)
	}
	j.metrics.IncSubmission(metrics.ResultAccepted)
	log.Named(log.Jobs).Info(
		"job submitted",
		zap.String("uuid", job.Uuid), zap.String("name", req.Name), zap.String("app", req.AppId),
	)

	sj := j.Get(job.Uuid)
	if st, ok := ParseStatus(job.Status); ok {
		sj.status = st
	}
	return sj, nil
}

// Get returns a handle of the job. It does not access TAPIS.
func (j *Jobs) Get(uuid string) *SubmittedJob {
	return &SubmittedJob{
		Uuid:   uuid,
		jobs:   j,
		status: StatusUnknown,
	}
}

// Status fetches the current status of the job.
func (j *Jobs) Status(ctx context.Context, uuid string) (Status, error) {
	return j.Get(uuid).RefreshStatus(ctx)
}

// RuntimeSummary summarizes the history of the job.
func (j *Jobs) RuntimeSummary(ctx context.Context, uuid string) (*Summary, error) {
	return j.Get(uuid).RuntimeSummary(ctx)
}
