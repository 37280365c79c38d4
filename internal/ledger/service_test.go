package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"faceattend/internal/clock"
	"faceattend/internal/metrics"
	"faceattend/internal/model"
	"faceattend/internal/registry"
	"faceattend/internal/sentinel"
	"faceattend/internal/storage/sqlite"
)

type LedgerSuite struct {
	suite.Suite
	svc      *Service
	registry *registry.Service
	clk      *clock.Fixed
	ctx      context.Context
}

func (s *LedgerSuite) SetupTest() {
	store, err := sqlite.New(filepath.Join(s.T().TempDir(), "test.db"))
	s.Require().NoError(err)
	s.T().Cleanup(func() { store.Close() })

	mtx := metrics.New(prometheus.NewRegistry())
	s.registry = registry.NewService(store, nil, mtx)
	s.clk = &clock.Fixed{T: time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC)}
	s.svc = NewService(store, s.registry, s.clk, nil, mtx)
	s.ctx = context.Background()
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) registerPerson(employeeID string) *model.Person {
	p, err := s.registry.Register(s.ctx, registry.RegisterInput{
		Name:           "Alice",
		EmployeeID:     employeeID,
		FaceDescriptor: []byte("descriptor"),
		Photo:          []byte("photo"),
	})
	s.Require().NoError(err)
	return p
}

func (s *LedgerSuite) mark(p *model.Person) (*model.AttendanceRecord, error) {
	return s.svc.Mark(s.ctx, MarkInput{
		PersonID:   p.ID,
		PersonName: p.Name,
		EmployeeID: p.EmployeeID,
		Confidence: 0.95,
	})
}

func (s *LedgerSuite) TestMarkStampsClockAndDayKey() {
	p := s.registerPerson("EMP001")

	rec, err := s.mark(p)
	s.Require().NoError(err)
	s.NotEmpty(rec.ID)
	s.Equal("2026-08-29", rec.Date)
	s.True(rec.Timestamp.Equal(s.clk.T), "timestamp and day key come from one clock reading")
	s.Equal(0.95, rec.Confidence)
}

func (s *LedgerSuite) TestMarkTwiceSameDay() {
	p := s.registerPerson("EMP001")

	_, err := s.mark(p)
	s.Require().NoError(err)

	_, err = s.mark(p)
	s.Require().ErrorIs(err, sentinel.ErrAlreadyMarked)

	records, err := s.svc.ListToday(s.ctx)
	s.Require().NoError(err)
	s.Len(records, 1, "rejected mark must not create a record")
}

func (s *LedgerSuite) TestMarkNextDayResetsPartition() {
	p := s.registerPerson("EMP001")

	_, err := s.mark(p)
	s.Require().NoError(err)

	s.clk.T = s.clk.T.AddDate(0, 0, 1)
	rec, err := s.mark(p)
	s.Require().NoError(err)
	s.Equal("2026-08-30", rec.Date)
}

func (s *LedgerSuite) TestMarkUnknownPerson() {
	_, err := s.svc.Mark(s.ctx, MarkInput{
		PersonID:   "never-registered",
		PersonName: "Ghost",
		EmployeeID: "EMP999",
		Confidence: 0.5,
	})
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *LedgerSuite) TestMarkDeletedPerson() {
	p := s.registerPerson("EMP001")
	s.Require().NoError(s.registry.Delete(s.ctx, p.ID))

	_, err := s.mark(p)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *LedgerSuite) TestSnapshotFieldsComeFromCaller() {
	p := s.registerPerson("EMP001")

	// The caller's view wins even when it disagrees with the registry.
	rec, err := s.svc.Mark(s.ctx, MarkInput{
		PersonID:   p.ID,
		PersonName: "A. Smith",
		EmployeeID: "BADGE-7",
		Confidence: 0.8,
	})
	s.Require().NoError(err)
	s.Equal("A. Smith", rec.PersonName)
	s.Equal("BADGE-7", rec.EmployeeID)
}

func (s *LedgerSuite) TestMarkValidation() {
	_, err := s.svc.Mark(s.ctx, MarkInput{PersonName: "Alice", EmployeeID: "EMP001"})
	s.Require().ErrorIs(err, sentinel.ErrInvalidInput)
}

func (s *LedgerSuite) TestListForDayValidatesKey() {
	_, err := s.svc.ListForDay(s.ctx, "29-08-2026")
	s.Require().ErrorIs(err, sentinel.ErrInvalidInput)

	_, err = s.svc.ListForDay(s.ctx, "not-a-date")
	s.Require().ErrorIs(err, sentinel.ErrInvalidInput)
}

func (s *LedgerSuite) TestListForDay() {
	p1 := s.registerPerson("EMP001")
	p2 := s.registerPerson("EMP002")

	_, err := s.mark(p1)
	s.Require().NoError(err)

	s.clk.T = s.clk.T.AddDate(0, 0, 1)
	_, err = s.mark(p2)
	s.Require().NoError(err)

	records, err := s.svc.ListForDay(s.ctx, "2026-08-29")
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(p1.ID, records[0].PersonID)

	records, err = s.svc.ListForDay(s.ctx, "2026-08-30")
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(p2.ID, records[0].PersonID)

	empty, err := s.svc.ListForDay(s.ctx, "2026-01-01")
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *LedgerSuite) TestHistoryDescendingAcrossDays() {
	p := s.registerPerson("EMP001")

	for i := 0; i < 3; i++ {
		_, err := s.mark(p)
		s.Require().NoError(err)
		s.clk.T = s.clk.T.AddDate(0, 0, 1)
	}

	records, err := s.svc.History(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	for i := 1; i < len(records); i++ {
		s.True(records[i-1].Timestamp.After(records[i].Timestamp))
	}
}

func (s *LedgerSuite) TestHistoryAfterDelete() {
	p := s.registerPerson("EMP001")
	_, err := s.mark(p)
	s.Require().NoError(err)

	s.Require().NoError(s.registry.Delete(s.ctx, p.ID))

	records, err := s.svc.History(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Empty(records)

	today, err := s.svc.ListToday(s.ctx)
	s.Require().NoError(err)
	s.Empty(today)
}
