// Package sentinel declares the error values shared between storage drivers,
// services and handlers. Callers match them with errors.Is; wrapping with
// fmt.Errorf("...: %w", err) keeps the match intact.
package sentinel

import "errors"

var (
	// ErrNotFound reports that a person (or other record) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmployeeID reports a registration with an employee id
	// that is already taken.
	ErrDuplicateEmployeeID = errors.New("employee id already exists")

	// ErrAlreadyMarked reports a second attendance mark for the same
	// person on the same calendar day.
	ErrAlreadyMarked = errors.New("attendance already marked for today")

	// ErrInvalidInput reports a missing or malformed required field.
	ErrInvalidInput = errors.New("invalid input")
)
