package jobs

import (
	"github.com/dgruber/drmaa2interface"
)

// Status is a state of TAPIS jobs, or a sentinel reported by Monitor.
type Status string

// states of TAPIS jobs.
const (
	StatusPending          Status = "PENDING"
	StatusProcessingInputs Status = "PROCESSING_INPUTS"
	StatusStagingInputs    Status = "STAGING_INPUTS"
	StatusStagingJob       Status = "STAGING_JOB"
	StatusSubmittingJob    Status = "SUBMITTING_JOB"
	StatusQueued           Status = "QUEUED"
	StatusRunning          Status = "RUNNING"
	StatusArchiving        Status = "ARCHIVING"
	StatusBlocked          Status = "BLOCKED"
	StatusPaused           Status = "PAUSED"

	StatusFinished        Status = "FINISHED"
	StatusFailed          Status = "FAILED"
	StatusCancelled       Status = "CANCELLED"
	StatusStopped         Status = "STOPPED"
	StatusArchivingFailed Status = "ARCHIVING_FAILED"
)

// sentinels. TAPIS never reports them.
const (
	// Monitor gave up waiting.
	StatusTimeout Status = "TIMEOUT"

	// Monitor was cancelled by its context.
	StatusInterrupted Status = "INTERRUPTED"

	// the status is not known yet, or TAPIS reported an unrecognized one.
	StatusUnknown Status = "UNKNOWN"
)

var known = map[Status]struct{}{
	StatusPending: {}, StatusProcessingInputs: {}, StatusStagingInputs: {},
	StatusStagingJob: {}, StatusSubmittingJob: {}, StatusQueued: {},
	StatusRunning: {}, StatusArchiving: {}, StatusBlocked: {}, StatusPaused: {},
	StatusFinished: {}, StatusFailed: {}, StatusCancelled: {}, StatusStopped: {},
	StatusArchivingFailed: {},
}

// ParseStatus maps a status string from TAPIS.
//
// For unrecognized strings, it returns StatusUnknown and false.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	if _, ok := known[st]; ok {
		return st, true
	}
	return StatusUnknown, false
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the job never changes its status any more.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusFinished, StatusFailed, StatusCancelled, StatusStopped, StatusArchivingFailed:
		return true
	default:
		return false
	}
}

// IsSentinel reports whether s is made by dapi, not TAPIS.
func (s Status) IsSentinel() bool {
	switch s {
	case StatusTimeout, StatusInterrupted, StatusUnknown:
		return true
	default:
		return false
	}
}

// DRMAA2State maps s onto the job states of DRMAA2.
func (s Status) DRMAA2State() drmaa2interface.JobState {
	switch s {
	case StatusPending, StatusProcessingInputs, StatusStagingInputs,
		StatusStagingJob, StatusSubmittingJob, StatusQueued:
		return drmaa2interface.Queued
	case StatusBlocked:
		return drmaa2interface.QueuedHeld
	case StatusPaused:
		return drmaa2interface.Suspended
	case StatusRunning, StatusArchiving:
		return drmaa2interface.Running
	case StatusFinished:
		return drmaa2interface.Done
	case StatusFailed, StatusCancelled, StatusStopped, StatusArchivingFailed:
		return drmaa2interface.Failed
	default:
		return drmaa2interface.Undetermined
	}
}
