package tapis

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/designsafe-ci/dapi/api-types/envelope"
	derr "github.com/designsafe-ci/dapi/pkg/errors"
)

// MessageFor gives the title of an error message for each status code range.
type MessageFor map[StatusCodeRange]string

// unmarshalResult reads the envelope in resp, and returns its result.
//
// args:
//   - resp: http response to be processed. Its body is closed.
//   - messageFor: title of error message for HTTP status code range.
//
// return:
//
//	error if...
//	- can not read response body
//	- response body is not an envelope of T
//	- status code is in 4xx or 5xx. The error has *APIError as its cause.
func unmarshalResult[T any](resp *http.Response, messageFor MessageFor) (T, error) {
	defer resp.Body.Close()

	if StatusCodeRangeOf(resp) <= Status2xx {
		env := new(envelope.Envelope[T])
		if err := json.NewDecoder(resp.Body).Decode(env); err != nil {
			message := fmt.Sprintf("unexpected response: %s (status code = %d)", err.Error(), resp.StatusCode)
			return *new(T), derr.NewCuiError(message, derr.WithCause(err))
		}
		return env.Result, nil
	}

	return *new(T), errorOf(resp, messageFor)
}

// expectSuccess discards the body of resp, and returns error if it is not 2xx.
func expectSuccess(resp *http.Response, messageFor MessageFor) error {
	defer resp.Body.Close()
	if StatusCodeRangeOf(resp) <= Status2xx {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return errorOf(resp, messageFor)
}

// errorOf builds the error for an unsuccessful response.
func errorOf(resp *http.Response, messageFor MessageFor) error {
	scr := StatusCodeRangeOf(resp)
	message, ok := messageFor[scr]
	if !ok {
		message = scr.String()
	}

	apierr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return derr.NewCuiError(
			fmt.Sprintf("%s\ncannot read server message: %s", message, err.Error()),
			derr.WithCause(apierr),
		)
	}

	em := new(envelope.ErrorMessage)
	if err := json.Unmarshal(body, em); err != nil {
		if len(body) == 0 {
			return derr.NewCuiError(message, derr.WithCause(apierr))
		}
		return derr.NewCuiError(message, derr.WithCause(apierr), derr.WithAppendix(string(body)))
	}

	apierr.Status = em.Status
	apierr.Message = em.Message
	apierr.Version = em.Version
	return derr.NewCuiError(message, derr.WithCause(apierr), derr.WithAppendix(em.String()))
}
