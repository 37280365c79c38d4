// Package storage declares the persistence boundary for persons and
// attendance records. Drivers must enforce the uniqueness rules themselves
// (unique employee_id, unique person+date pair) and translate their
// constraint violations to the sentinel errors, because concurrent callers
// can both pass a service-level pre-check; the constraint is the final
// authority.
package storage

import (
	"context"

	"faceattend/internal/model"
)

// Store is implemented by the Postgres and SQLite drivers.
type Store interface {
	// CreatePerson persists p. Returns sentinel.ErrDuplicateEmployeeID
	// when the employee id is taken.
	CreatePerson(ctx context.Context, p *model.Person) error

	// GetPerson returns the person or sentinel.ErrNotFound.
	GetPerson(ctx context.Context, id string) (*model.Person, error)

	// ListPersons returns up to limit persons in unspecified order.
	ListPersons(ctx context.Context, limit int) ([]model.Person, error)

	// DeletePerson removes the person and, through the schema's cascade,
	// every attendance record referencing it. Returns sentinel.ErrNotFound
	// when no such person exists.
	DeletePerson(ctx context.Context, id string) error

	// CountPersons returns the number of registered persons.
	CountPersons(ctx context.Context) (int, error)

	// CreateAttendance persists rec. Returns sentinel.ErrAlreadyMarked for
	// a duplicate (person_id, date) pair and sentinel.ErrNotFound when the
	// referenced person no longer exists.
	CreateAttendance(ctx context.Context, rec *model.AttendanceRecord) error

	// ListAttendanceByDate returns up to limit records for the day key.
	ListAttendanceByDate(ctx context.Context, date string, limit int) ([]model.AttendanceRecord, error)

	// ListAttendanceByPerson returns up to limit records for the person,
	// most recent timestamp first.
	ListAttendanceByPerson(ctx context.Context, personID string, limit int) ([]model.AttendanceRecord, error)

	// CountAttendanceByDate returns the number of records for the day key.
	CountAttendanceByDate(ctx context.Context, date string) (int, error)

	// Close releases the underlying connections.
	Close() error
}
