package jobs_test

import (
	"testing"

	"github.com/designsafe-ci/dapi/pkg/jobs"
	"github.com/dgruber/drmaa2interface"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{
		"PENDING", "PROCESSING_INPUTS", "STAGING_INPUTS", "STAGING_JOB", "SUBMITTING_JOB",
		"QUEUED", "RUNNING", "ARCHIVING", "BLOCKED", "PAUSED",
		"FINISHED", "FAILED", "CANCELLED", "STOPPED", "ARCHIVING_FAILED",
	} {
		st, ok := jobs.ParseStatus(s)
		if !ok || st.String() != s {
			t.Errorf("%s: unexpected: (%s, %v)", s, st, ok)
		}
	}

	for _, s := range []string{"", "running", "TIMEOUT", "WHATEVER"} {
		st, ok := jobs.ParseStatus(s)
		if ok || st != jobs.StatusUnknown {
			t.Errorf("%q: should not be recognized: (%s, %v)", s, st, ok)
		}
	}
}

func TestStatusClasses(t *testing.T) {
	type Then struct {
		terminal bool
		sentinel bool
		drmaa2   drmaa2interface.JobState
	}
	theory := func(s jobs.Status, then Then) func(*testing.T) {
		return func(t *testing.T) {
			if s.IsTerminal() != then.terminal {
				t.Errorf("IsTerminal: expected %v", then.terminal)
			}
			if s.IsSentinel() != then.sentinel {
				t.Errorf("IsSentinel: expected %v", then.sentinel)
			}
			if s.DRMAA2State() != then.drmaa2 {
				t.Errorf("DRMAA2State: expected %v, but %v", then.drmaa2, s.DRMAA2State())
			}
		}
	}

	t.Run("PENDING", theory(jobs.StatusPending, Then{drmaa2: drmaa2interface.Queued}))
	t.Run("STAGING_JOB", theory(jobs.StatusStagingJob, Then{drmaa2: drmaa2interface.Queued}))
	t.Run("BLOCKED", theory(jobs.StatusBlocked, Then{drmaa2: drmaa2interface.QueuedHeld}))
	t.Run("PAUSED", theory(jobs.StatusPaused, Then{drmaa2: drmaa2interface.Suspended}))
	t.Run("RUNNING", theory(jobs.StatusRunning, Then{drmaa2: drmaa2interface.Running}))
	t.Run("ARCHIVING", theory(jobs.StatusArchiving, Then{drmaa2: drmaa2interface.Running}))
	t.Run("FINISHED", theory(jobs.StatusFinished, Then{terminal: true, drmaa2: drmaa2interface.Done}))
	t.Run("FAILED", theory(jobs.StatusFailed, Then{terminal: true, drmaa2: drmaa2interface.Failed}))
	t.Run("CANCELLED", theory(jobs.StatusCancelled, Then{terminal: true, drmaa2: drmaa2interface.Failed}))
	t.Run("STOPPED", theory(jobs.StatusStopped, Then{terminal: true, drmaa2: drmaa2interface.Failed}))
	t.Run("ARCHIVING_FAILED", theory(jobs.StatusArchivingFailed, Then{terminal: true, drmaa2: drmaa2interface.Failed}))
	t.Run("TIMEOUT", theory(jobs.StatusTimeout, Then{sentinel: true, drmaa2: drmaa2interface.Undetermined}))
	t.Run("INTERRUPTED", theory(jobs.StatusInterrupted, Then{sentinel: true, drmaa2: drmaa2interface.Undetermined}))
	t.Run("UNKNOWN", theory(jobs.StatusUnknown, Then{sentinel: true, drmaa2: drmaa2interface.Undetermined}))
}
