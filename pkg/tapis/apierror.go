package tapis

import (
	"errors"
	"fmt"
	"net/http"

	derr "github.com/designsafe-ci/dapi/pkg/errors"
)

// APIError is a non-2xx response from TAPIS.
type APIError struct {
	StatusCode int

	// "error", in most cases.
	Status string

	// message from TAPIS. It can be empty when the response has no envelope.
	Message string

	Version string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tapis responds %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("tapis responds %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// Is reports 401 and 403 as ErrAuthentication.
func (e *APIError) Is(target error) bool {
	if target == derr.ErrAuthentication {
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// StatusCodeOf returns the status code of the APIError in err's chain.
//
// If there are no APIError, it returns 0.
func StatusCodeOf(err error) int {
	apierr := new(APIError)
	if errors.As(err, &apierr) {
		return apierr.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusCodeOf(err) == http.StatusNotFound
}

func IsBadRequest(err error) bool {
	return StatusCodeOf(err) == http.StatusBadRequest
}
