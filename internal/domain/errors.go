package domain

import "errors"

// Sentinel errors shared across modules. Repositories translate driver
// errors (sql.ErrNoRows, constraint violations) into these so handlers can
// map them to HTTP status codes without knowing about database/sql.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a request carried a malformed or
	// out-of-range value.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates a write collided with an existing row,
	// e.g. a concurrent sandbox portfolio creation.
	ErrConflict = errors.New("conflict")
)
