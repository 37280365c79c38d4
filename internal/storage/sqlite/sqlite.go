// Package sqlite is the pure-Go SQLite driver for storage.Store, used for
// local development and tests. It needs no cgo and no server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"faceattend/internal/model"
	"faceattend/internal/sentinel"
	"faceattend/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store persists persons and attendance in a SQLite file.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath and runs the schema.
// Foreign keys are switched on per connection via the DSN so the attendance
// cascade holds on every pooled connection.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS persons (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		employee_id     TEXT NOT NULL UNIQUE,
		face_descriptor BLOB NOT NULL,
		photo           BLOB NOT NULL,
		role            TEXT NOT NULL DEFAULT 'employee',
		created_at      DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id          TEXT PRIMARY KEY,
		person_id   TEXT NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
		person_name TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		timestamp   DATETIME NOT NULL,
		date        TEXT NOT NULL,
		confidence  REAL NOT NULL,
		photo       BLOB,
		UNIQUE (person_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_date   ON attendance(date);
	CREATE INDEX IF NOT EXISTS idx_attendance_person ON attendance(person_id);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// translate maps SQLite constraint failures to sentinel errors. modernc
// reports them as textual "constraint failed" errors naming the table and
// column, which is enough to tell the two uniqueness rules apart.
func translate(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "persons.employee_id"):
		return sentinel.ErrDuplicateEmployeeID
	case strings.Contains(msg, "attendance.person_id"):
		return sentinel.ErrAlreadyMarked
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return sentinel.ErrNotFound
	}
	return err
}

// -------- Persons --------

func (s *Store) CreatePerson(ctx context.Context, p *model.Person) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO persons (id, name, employee_id, face_descriptor, photo, role, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.EmployeeID, p.FaceDescriptor, p.Photo, p.Role, p.CreatedAt,
	)
	return translate(err)
}

func (s *Store) GetPerson(ctx context.Context, id string) (*model.Person, error) {
	var p model.Person
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, employee_id, face_descriptor, photo, role, created_at
		 FROM persons WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.EmployeeID, &p.FaceDescriptor, &p.Photo, &p.Role, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPersons(ctx context.Context, limit int) ([]model.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, employee_id, face_descriptor, photo, role, created_at
		 FROM persons LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var persons []model.Person
	for rows.Next() {
		var p model.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.EmployeeID, &p.FaceDescriptor, &p.Photo, &p.Role, &p.CreatedAt); err != nil {
			return nil, err
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

func (s *Store) DeletePerson(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM persons WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) CountPersons(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM persons`).Scan(&n)
	return n, err
}

// -------- Attendance --------

func (s *Store) CreateAttendance(ctx context.Context, rec *model.AttendanceRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance (id, person_id, person_name, employee_id, timestamp, date, confidence, photo)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.PersonID, rec.PersonName, rec.EmployeeID, rec.Timestamp, rec.Date, rec.Confidence, rec.Photo,
	)
	return translate(err)
}

func (s *Store) ListAttendanceByDate(ctx context.Context, date string, limit int) ([]model.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, person_id, person_name, employee_id, timestamp, date, confidence, photo
		 FROM attendance WHERE date = ? LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) ListAttendanceByPerson(ctx context.Context, personID string, limit int) ([]model.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, person_id, person_name, employee_id, timestamp, date, confidence, photo
		 FROM attendance WHERE person_id = ?
		 ORDER BY timestamp DESC LIMIT ?`, personID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) CountAttendanceByDate(ctx context.Context, date string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance WHERE date = ?`, date).Scan(&n)
	return n, err
}

func scanRecords(rows *sql.Rows) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	for rows.Next() {
		var r model.AttendanceRecord
		if err := rows.Scan(&r.ID, &r.PersonID, &r.PersonName, &r.EmployeeID, &r.Timestamp, &r.Date, &r.Confidence, &r.Photo); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
