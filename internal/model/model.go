package model

import "time"

// Person is a registered identity eligible for attendance marking.
// FaceDescriptor and Photo are opaque blobs: the server stores and returns
// them verbatim and never interprets them. encoding/json renders []byte as
// base64, which matches the wire format the recognition client sends.
type Person struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	EmployeeID     string    `json:"employee_id"`
	FaceDescriptor []byte    `json:"face_descriptor"`
	Photo          []byte    `json:"photo"`
	Role           string    `json:"role"` // employee, student
	CreatedAt      time.Time `json:"created_at"`
}

// AttendanceRecord is one presence fact for one person on one calendar day.
// PersonName and EmployeeID are snapshots taken at marking time and are
// never re-synced with the person record.
type AttendanceRecord struct {
	ID         string    `json:"id"`
	PersonID   string    `json:"person_id"`
	PersonName string    `json:"person_name"`
	EmployeeID string    `json:"employee_id"`
	Timestamp  time.Time `json:"timestamp"`
	Date       string    `json:"date"` // YYYY-MM-DD, the uniqueness partition
	Confidence float64   `json:"confidence"`
	Photo      []byte    `json:"photo,omitempty"`
}

// AttendanceStats is the derived presence summary for the current day.
type AttendanceStats struct {
	TotalRegistered int     `json:"total_registered"`
	PresentToday    int     `json:"present_today"`
	AbsentToday     int     `json:"absent_today"`
	AttendanceRate  float64 `json:"attendance_rate"`
}
