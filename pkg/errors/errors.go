// Package errors declares the error categories of dapi.
//
// Every failure returned by dapi wraps one of the sentinels below,
// so callers can branch with errors.Is instead of matching messages.
package errors

import (
	"errors"
	"fmt"
)

var (
	// credentials are missing or rejected by TAPIS.
	ErrAuthentication = errors.New("authentication error")

	// path translation, upload, download or listing failed.
	ErrFileOperation = errors.New("file operation error")

	// an application could not be looked up.
	ErrAppDiscovery = errors.New("app discovery error")

	// system or queue information could not be obtained.
	ErrSystemInfo = errors.New("system info error")

	// a job request is malformed, or cannot be built from the app. TAPIS is not asked.
	ErrJobRequest = errors.New("job request error")

	// TAPIS rejected a job request.
	ErrJobSubmission = errors.New("job submission error")

	// status, history or cancellation of a submitted job failed.
	ErrJobMonitor = errors.New("job monitor error")

	// a research database could not be opened or queried.
	ErrDatabase = errors.New("database error")
)

var (
	// ErrAppNotFound is also an ErrAppDiscovery.
	ErrAppNotFound = fmt.Errorf("%w: app not found", ErrAppDiscovery)

	// ErrNoScriptSlot is returned when an app declares no argument
	// or environment variable to receive the script filename.
	//
	// It is also an ErrJobRequest.
	ErrNoScriptSlot = fmt.Errorf("%w: no input slot for script", ErrJobRequest)

	// ErrInvalidOverride is returned for malformed job request parameters.
	//
	// It is also an ErrJobRequest.
	ErrInvalidOverride = fmt.Errorf("%w: invalid override", ErrJobRequest)
)

// Wrap returns an error which is both of category and cause.
//
// When cause is nil, it returns nil.
func Wrap(category error, cause error, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return &categorized{category: category, cause: cause, message: message}
}

type categorized struct {
	category error
	cause    error
	message  string
}

func (c *categorized) Error() string {
	if c.message == "" {
		return fmt.Sprintf("%s: %s", c.category, c.cause)
	}
	return fmt.Sprintf("%s: %s: %s", c.category, c.message, c.cause)
}

func (c *categorized) Unwrap() []error {
	return []error{c.category, c.cause}
}

// Verbose returns the detailed message of the cause, if it has one.
func (c *categorized) Verbose() string {
	if v, ok := c.cause.(Verbose); ok {
		return c.Error() + "\n" + v.Verbose()
	}
	return c.Error()
}
