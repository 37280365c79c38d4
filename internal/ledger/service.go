// Package ledger owns attendance records: at most one presence fact per
// person per calendar day.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"faceattend/internal/clock"
	"faceattend/internal/metrics"
	"faceattend/internal/model"
	"faceattend/internal/sentinel"
	"faceattend/internal/storage"
)

const (
	// DayListLimit caps the per-day list queries.
	DayListLimit = 1000
	// HistoryLimit caps per-person history to the most recent records.
	HistoryLimit = 100
)

// PersonResolver confirms a person exists before marking. Satisfied by
// *registry.Service.
type PersonResolver interface {
	Get(ctx context.Context, id string) (*model.Person, error)
}

// Service coordinates attendance marking and the day-scoped reads.
type Service struct {
	store   storage.Store
	persons PersonResolver
	clk     clock.Clock
	log     *slog.Logger
	mtx     *metrics.Metrics
}

// NewService creates a ledger over store, resolving persons through the
// given resolver and deriving every day key from clk.
func NewService(store storage.Store, persons PersonResolver, clk clock.Clock, log *slog.Logger, mtx *metrics.Metrics) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, persons: persons, clk: clk, log: log, mtx: mtx}
}

// MarkInput carries a mark request. PersonName and EmployeeID are the
// caller's snapshot of the person at recognition time; the ledger stores
// them as given and does not reconcile them with the person record.
type MarkInput struct {
	PersonID   string
	PersonName string
	EmployeeID string
	Confidence float64
	Photo      []byte
}

// Mark records presence for the person on the current day. The timestamp
// and the day key come from one clock reading, so the record never
// straddles a day boundary. The composite unique index on
// (person_id, date) is the authority for duplicates; the foreign key
// resolves a mark racing a delete to ErrNotFound instead of an orphan.
func (s *Service) Mark(ctx context.Context, in MarkInput) (*model.AttendanceRecord, error) {
	if in.PersonID == "" || in.PersonName == "" || in.EmployeeID == "" {
		return nil, fmt.Errorf("%w: person_id, person_name and employee_id required", sentinel.ErrInvalidInput)
	}

	if _, err := s.persons.Get(ctx, in.PersonID); err != nil {
		return nil, err
	}

	now := s.clk.Now()
	rec := &model.AttendanceRecord{
		ID:         uuid.NewString(),
		PersonID:   in.PersonID,
		PersonName: in.PersonName,
		EmployeeID: in.EmployeeID,
		Timestamp:  now,
		Date:       clock.DayKey(now),
		Confidence: in.Confidence,
		Photo:      in.Photo,
	}
	if err := s.store.CreateAttendance(ctx, rec); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyMarked) && s.mtx != nil {
			s.mtx.AttendanceDuplicateMarks.Inc()
		}
		return nil, err
	}
	if s.mtx != nil {
		s.mtx.AttendanceMarked.Inc()
	}
	s.log.Info("attendance marked",
		"person_id", rec.PersonID, "date", rec.Date, "confidence", rec.Confidence)
	return rec, nil
}

// ListForDay returns the records for the given YYYY-MM-DD key, up to
// DayListLimit, in unspecified order.
func (s *Service) ListForDay(ctx context.Context, date string) ([]model.AttendanceRecord, error) {
	if _, err := clock.ParseDayKey(date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", sentinel.ErrInvalidInput)
	}
	return s.store.ListAttendanceByDate(ctx, date, DayListLimit)
}

// ListToday returns the records for the clock's current day.
func (s *Service) ListToday(ctx context.Context) ([]model.AttendanceRecord, error) {
	return s.store.ListAttendanceByDate(ctx, clock.DayKey(s.clk.Now()), DayListLimit)
}

// History returns the person's records, most recent first, up to
// HistoryLimit. An unknown person yields an empty history, not an error.
func (s *Service) History(ctx context.Context, personID string) ([]model.AttendanceRecord, error) {
	if personID == "" {
		return nil, fmt.Errorf("%w: person id required", sentinel.ErrInvalidInput)
	}
	return s.store.ListAttendanceByPerson(ctx, personID, HistoryLimit)
}
