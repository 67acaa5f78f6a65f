package model

import "errors"

// Sentinel errors shared by the stores, services and handlers.  Stores
// wrap driver errors with these so handlers can choose a status code
// without knowing which backend is configured.
var (
	// ErrNotFound is returned when a lookup matches nothing.  404.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks a request that failed input checks.  400.
	ErrValidation = errors.New("validation error")
	// ErrInvalidID is returned when an identifier cannot be parsed by
	// the configured store.  400.
	ErrInvalidID = errors.New("invalid id")
	// ErrForbidden is returned when the caller acts on a resource owned
	// by another user.  403.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict signals a unique-key violation.  409.
	ErrConflict = errors.New("conflict")
	// ErrUpstream wraps failures of third-party providers such as the
	// payment gateway.  502.
	ErrUpstream = errors.New("upstream dependency failed")
)
