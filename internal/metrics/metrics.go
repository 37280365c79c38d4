// Package metrics holds the prometheus instruments for the attendance core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the business events the core produces.
type Metrics struct {
	PersonsRegistered        prometheus.Counter
	PersonsDeleted           prometheus.Counter
	AttendanceMarked         prometheus.Counter
	AttendanceDuplicateMarks prometheus.Counter
}

// New registers the instruments with reg. Pass prometheus.DefaultRegisterer
// in main and a private registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		PersonsRegistered: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "faceattend_persons_registered_total",
			Help: "Total persons registered",
		}),
		PersonsDeleted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "faceattend_persons_deleted_total",
			Help: "Total persons deleted (cascading their attendance)",
		}),
		AttendanceMarked: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "faceattend_attendance_marked_total",
			Help: "Total attendance records created",
		}),
		AttendanceDuplicateMarks: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "faceattend_attendance_duplicate_marks_total",
			Help: "Total marks rejected because the person was already marked that day",
		}),
	}
}
