// Package envelope is the common shape of TAPIS v3 responses.
package envelope

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope wraps every TAPIS response body.
//
//	{"status": "success", "message": "...", "result": ..., "version": "..."}
type Envelope[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  T      `json:"result"`
	Version string `json:"version,omitempty"`
}

// ErrorMessage is the envelope of failed TAPIS responses.
type ErrorMessage struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version,omitempty"`
}

// UnmarshalJSON requires "message".
func (em *ErrorMessage) UnmarshalJSON(b []byte) error {
	f := new(struct {
		Status  *string `json:"status"`
		Message *string `json:"message"`
		Version *string `json:"version"`
	})
	if err := json.Unmarshal(b, f); err != nil {
		return err
	}
	if f.Message == nil {
		return fmt.Errorf(`required field missing: "message"`)
	}
	em.Message = *f.Message
	if f.Status != nil {
		em.Status = *f.Status
	}
	if f.Version != nil {
		em.Version = *f.Version
	}
	return nil
}

func (em ErrorMessage) String() string {
	lines := []string{em.Message}
	if em.Status != "" {
		lines = append(lines, "status: "+em.Status)
	}
	if em.Version != "" {
		lines = append(lines, "tapis version: "+em.Version)
	}
	return strings.Join(lines, "\n")
}
