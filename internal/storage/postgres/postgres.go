// Package postgres is the production driver for storage.Store, backed by
// pgx through database/sql.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"faceattend/internal/model"
	"faceattend/internal/sentinel"
	"faceattend/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store persists persons and attendance in Postgres.
type Store struct {
	db *sql.DB
}

// New connects with sane pool defaults and runs the schema.
func New(connString string) (*Store, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(context.Background()); err != nil {
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
		employee_id     TEXT NOT NULL,
		face_descriptor BYTEA NOT NULL,
		photo           BYTEA NOT NULL,
		role            TEXT NOT NULL DEFAULT 'employee',
		created_at      TIMESTAMPTZ NOT NULL,
		CONSTRAINT persons_employee_id_key UNIQUE (employee_id)
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id          TEXT PRIMARY KEY,
		person_id   TEXT NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
		person_name TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		timestamp   TIMESTAMPTZ NOT NULL,
		date        TEXT NOT NULL,
		confidence  DOUBLE PRECISION NOT NULL,
		photo       BYTEA,
		CONSTRAINT attendance_person_date_key UNIQUE (person_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance(date);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Postgres error codes for unique and foreign key violations.
const (
	pgUniqueViolation = "23505"
	pgFKViolation     = "23503"
)

// translate maps constraint violations to sentinel errors, keyed off the
// constraint name the schema declares.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		if strings.Contains(pgErr.ConstraintName, "employee_id") {
			return sentinel.ErrDuplicateEmployeeID
		}
		return sentinel.ErrAlreadyMarked
	case pgFKViolation:
		return sentinel.ErrNotFound
	}
	return err
}

// -------- Persons --------

func (s *Store) CreatePerson(ctx context.Context, p *model.Person) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO persons (id, name, employee_id, face_descriptor, photo, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Name, p.EmployeeID, p.FaceDescriptor, p.Photo, p.Role, p.CreatedAt,
	)
	return translate(err)
}

func (s *Store) GetPerson(ctx context.Context, id string) (*model.Person, error) {
	var p model.Person
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, employee_id, face_descriptor, photo, role, created_at
		 FROM persons WHERE id = $1`, id,
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
		 FROM persons LIMIT $1`, limit,
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
	res, err := s.db.ExecContext(ctx, `DELETE FROM persons WHERE id = $1`, id)
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
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.PersonID, rec.PersonName, rec.EmployeeID, rec.Timestamp, rec.Date, rec.Confidence, rec.Photo,
	)
	return translate(err)
}

func (s *Store) ListAttendanceByDate(ctx context.Context, date string, limit int) ([]model.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, person_id, person_name, employee_id, timestamp, date, confidence, photo
		 FROM attendance WHERE date = $1 LIMIT $2`, date, limit,
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
		 FROM attendance WHERE person_id = $1
		 ORDER BY timestamp DESC LIMIT $2`, personID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) CountAttendanceByDate(ctx context.Context, date string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance WHERE date = $1`, date).Scan(&n)
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
