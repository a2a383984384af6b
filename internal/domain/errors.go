package domain

import "errors"

// Sentinel errors shared across services and repositories. Controllers map
// these to HTTP status codes; everything else is wrapped and treated as an
// internal error.
var (
	// ErrNotFound is returned when an entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller is not allowed to perform a
	// host-only or owner-only operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned when the request is structurally valid but
	// semantically wrong (e.g. inviting the host to their own event).
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when an operation cannot proceed because of the
	// current state (e.g. accepting an invitation to a full event).
	ErrConflict = errors.New("conflict")
)
