package projects

import (
	"errors"
	"net/http"
)

// Domain errors for project workflow operations.
var (
	ErrNotFound     = errors.New("project not found")
	ErrValidation   = errors.New("validation failed")
	ErrPrecondition = errors.New("precondition failed")
	ErrAdapter      = errors.New("external adapter failed")
	ErrBusy         = errors.New("project has an operation in progress")
	ErrDuplicate    = errors.New("project already exists")
)

// MapHTTPStatus maps project domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrPrecondition):
		return http.StatusPreconditionFailed
	case errors.Is(err, ErrBusy), errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrAdapter):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
