package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrMissingFields    = errors.New("{title, assignTo, priority, deadline, description} are required fields")
	ErrUnauthorized     = errors.New("authentication required")
	ErrDuplicateRequest = errors.New("duplicate request")
)
