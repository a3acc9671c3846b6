package jobs

import "fmt"

// InterpretStatus explains the status returned by Monitor in a sentence.
func InterpretStatus(status Status, uuid string) string {
	job := "Job"
	if uuid != "" {
		job = "Job " + uuid
	}

	switch status {
	case StatusFinished:
		return job + " completed successfully."
	case StatusFailed:
		return job + " failed. Check the job's history and output logs for details."
	case StatusCancelled:
		return job + " was cancelled."
	case StatusStopped:
		return job + " was stopped."
	case StatusArchivingFailed:
		return job + " ran, but archiving its outputs failed."
	case StatusTimeout:
		return "Monitoring of " + lower(job) + " timed out before it reached a terminal state. The job may still be running."
	case StatusInterrupted:
		return "Monitoring of " + lower(job) + " was interrupted. The job may still be running."
	case StatusUnknown:
		return job + " is in an unknown state."
	}
	if status.IsTerminal() {
		return fmt.Sprintf("%s ended with status %s.", job, status)
	}
	return fmt.Sprintf("%s is still in progress (%s).", job, status)
}

func lower(job string) string {
	return "j" + job[1:]
}
