// Package stats derives presence statistics from the registry and ledger
// counts. It holds no state and caches nothing; every call reflects the
// latest committed storage state.
package stats

import (
	"context"
	"math"

	"faceattend/internal/clock"
	"faceattend/internal/model"
	"faceattend/internal/storage"
)

// Service computes the daily attendance summary.
type Service struct {
	store storage.Store
	clk   clock.Clock
}

// NewService creates an aggregator over store using clk for "today".
func NewService(store storage.Store, clk clock.Clock) *Service {
	return &Service{store: store, clk: clk}
}

// Compute returns the current day's summary. The rate is
// present/total*100 rounded to two decimals, and 0 when nobody is
// registered.
func (s *Service) Compute(ctx context.Context) (*model.AttendanceStats, error) {
	total, err := s.store.CountPersons(ctx)
	if err != nil {
		return nil, err
	}
	present, err := s.store.CountAttendanceByDate(ctx, clock.DayKey(s.clk.Now()))
	if err != nil {
		return nil, err
	}

	absent := total - present
	if absent < 0 {
		absent = 0
	}
	var rate float64
	if total > 0 {
		rate = math.Round(float64(present)/float64(total)*100*100) / 100
	}
	return &model.AttendanceStats{
		TotalRegistered: total,
		PresentToday:    present,
		AbsentToday:     absent,
		AttendanceRate:  rate,
	}, nil
}
