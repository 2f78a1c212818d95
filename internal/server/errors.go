// Package server provides the HTTP REST API for the recruitment pipeline.
package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// ErrRunNotFound indicates the run does not exist
type ErrRunNotFound struct {
	RunID uuid.UUID
}

func (e *ErrRunNotFound) Error() string {
	return fmt.Sprintf("run not found: %s", e.RunID)
}

// ErrPostingNotFound indicates the posting does not exist
type ErrPostingNotFound struct {
	PostingID uuid.UUID
}

func (e *ErrPostingNotFound) Error() string {
	return fmt.Sprintf("posting not found: %s", e.PostingID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrRunNotFound, *ErrPostingNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
