package jobs

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/designsafe-ci/dapi/pkg/log"
	"github.com/designsafe-ci/dapi/pkg/loop"
	"github.com/designsafe-ci/dapi/pkg/metrics"
	"go.uber.org/zap"
)

// DefaultMonitorInterval is the polling interval of Monitor.
const DefaultMonitorInterval = 15 * time.Second

// pollTimeout bounds each status request of Monitor. A poll over it counts as a failed poll.
const pollTimeout = time.Minute

type monitorConfig struct {
	interval time.Duration
	timeout  *time.Duration
	output   io.Writer
	progress bool
}

type MonitorOption func(*monitorConfig) *monitorConfig

// WithInterval sets the polling interval. Non-positive d means DefaultMonitorInterval.
func WithInterval(d time.Duration) MonitorOption {
	return func(mc *monitorConfig) *monitorConfig {
		mc.interval = d
		return mc
	}
}

// WithTimeout sets how long Monitor waits for a terminal status.
// Non-positive d means no timeout.
//
// By default, it is maxMinutes of the job.
func WithTimeout(d time.Duration) MonitorOption {
	return func(mc *monitorConfig) *monitorConfig {
		mc.timeout = &d
		return mc
	}
}

// WithOutput sets where to write status changes. By default, it is os.Stdout.
//
// Pass io.Discard to monitor quietly.
func WithOutput(w io.Writer) MonitorOption {
	return func(mc *monitorConfig) *monitorConfig {
		mc.output = w
		return mc
	}
}

// WithProgress shows a progress bar of elapsed time on the output.
func WithProgress(enabled bool) MonitorOption {
	return func(mc *monitorConfig) *monitorConfig {
		mc.progress = enabled
		return mc
	}
}

const (
	timeoutBar   pb.ProgressBarTemplate = `{{with string . "prefix"}}{{.}} {{end}}{{bar . }} {{etime . }}`
	unboundedBar pb.ProgressBarTemplate = `{{with string . "prefix"}}{{.}} {{end}}{{cycle . "." ".." "..." }} {{etime . }}`
)

// Monitor polls the status of the job until it reaches a terminal status.
//
// It returns the terminal status, StatusTimeout when the timeout elapsed first,
// or StatusInterrupted when ctx is done. These are not errors.
// A status observed at or after the deadline is StatusTimeout, even if it is terminal.
// Failed polls are logged, and polling goes on.
//
// Monitor does not cancel the job even if it gives up.
func (sj *SubmittedJob) Monitor(ctx context.Context, options ...MonitorOption) (Status, error) {
	if sj.Uuid == "" {
		return StatusUnknown, fmt.Errorf("%w: job uuid is empty", derr.ErrJobMonitor)
	}
	logger := log.Named(log.Jobs).With(zap.String("uuid", sj.Uuid))

	mc := &monitorConfig{interval: DefaultMonitorInterval, output: os.Stdout}
	for _, opt := range options {
		mc = opt(mc)
	}
	if mc.interval <= 0 {
		mc.interval = DefaultMonitorInterval
	}

	var timeout time.Duration
	if mc.timeout != nil {
		timeout = *mc.timeout
	} else if job, err := sj.Details(ctx, false); err != nil {
		logger.Warn("maxMinutes is unknown, monitoring without timeout", zap.Error(err))
	} else {
		timeout = time.Duration(job.MaxMinutes) * time.Minute
	}

	out := mc.output
	if timeout > 0 {
		fmt.Fprintf(out, "Monitoring job %s (interval: %s, timeout: %s)\n", sj.Uuid, mc.interval, timeout)
	} else {
		fmt.Fprintf(out, "Monitoring job %s (interval: %s)\n", sj.Uuid, mc.interval)
	}

	var bar *pb.ProgressBar
	if mc.progress {
		if timeout > 0 {
			bar = timeoutBar.New(int(timeout / time.Second))
		} else {
			bar = unboundedBar.New(-1)
		}
		bar.SetWriter(out)
		bar.Start()
		defer bar.Finish()
	}

	now := sj.jobs.now
	started := now()
	final, err := loop.Start(
		ctx, StatusUnknown,
		func(ctx context.Context, last Status) (Status, loop.Next) {
			st, err := sj.RefreshStatus(ctx)
			elapsed := now().Sub(started)
			if bar != nil {
				bar.SetCurrent(int64(elapsed / time.Second))
			}

			if err != nil {
				sj.jobs.metrics.IncPoll(metrics.ResultError)
				logger.Warn("failed to poll job status", zap.Error(err))
			} else {
				sj.jobs.metrics.IncPoll(metrics.ResultOk)
				if st != last {
					if bar != nil {
						bar.Set("prefix", st.String())
					} else {
						fmt.Fprintf(out, "\tStatus: %s (elapsed: %s)\n", st, FormatDuration(elapsed))
					}
					logger.Debug("status changed", zap.Stringer("from", last), zap.Stringer("to", st))
				}
				last = st
			}

			if 0 < timeout && timeout <= elapsed {
				return StatusTimeout, loop.Break(nil)
			}
			if err == nil && st.IsTerminal() {
				return st, loop.Break(nil)
			}

			next := mc.interval
			if rest := timeout - elapsed; 0 < timeout && rest < next {
				next = rest
			}
			return last, loop.Continue(next)
		},
		loop.WithTimeout(pollTimeout),
	)
	if err != nil {
		fmt.Fprintf(out, "Monitoring of job %s is interrupted\n", sj.Uuid)
		return StatusInterrupted, nil
	}

	switch final {
	case StatusTimeout:
		fmt.Fprintf(out, "Monitoring of job %s timed out after %s\n", sj.Uuid, timeout)
	default:
		fmt.Fprintf(out, "Job %s reached a terminal status: %s\n", sj.Uuid, final)
	}
	return final, nil
}
