// Package registry owns person records: registration, lookup and the
// cascading delete of a person's attendance history.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"faceattend/internal/metrics"
	"faceattend/internal/model"
	"faceattend/internal/sentinel"
	"faceattend/internal/storage"
)

// ListLimit caps List results. The registry does not paginate; callers that
// outgrow this need a paging API, not a bigger cap.
const ListLimit = 1000

// DefaultRole is assumed when a registration omits the role label.
const DefaultRole = "employee"

// Service coordinates person registration and deletion.
type Service struct {
	store storage.Store
	log   *slog.Logger
	mtx   *metrics.Metrics
}

// NewService creates a registry over store.
func NewService(store storage.Store, log *slog.Logger, mtx *metrics.Metrics) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, log: log, mtx: mtx}
}

// RegisterInput carries the fields of a registration request. The two blobs
// are stored verbatim; the registry never interprets them.
type RegisterInput struct {
	Name           string
	EmployeeID     string
	FaceDescriptor []byte
	Photo          []byte
	Role           string
}

// Register persists a new person. The storage layer's unique index on
// employee_id is the authority for duplicates; two concurrent registrations
// with the same employee id resolve to exactly one success.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.Person, error) {
	if in.Name == "" || in.EmployeeID == "" {
		return nil, fmt.Errorf("%w: name and employee_id required", sentinel.ErrInvalidInput)
	}
	if len(in.FaceDescriptor) == 0 || len(in.Photo) == 0 {
		return nil, fmt.Errorf("%w: face_descriptor and photo required", sentinel.ErrInvalidInput)
	}
	role := in.Role
	if role == "" {
		role = DefaultRole
	}

	p := &model.Person{
		ID:             uuid.NewString(),
		Name:           in.Name,
		EmployeeID:     in.EmployeeID,
		FaceDescriptor: in.FaceDescriptor,
		Photo:          in.Photo,
		Role:           role,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.CreatePerson(ctx, p); err != nil {
		return nil, err
	}
	if s.mtx != nil {
		s.mtx.PersonsRegistered.Inc()
	}
	s.log.Info("person registered", "person_id", p.ID, "employee_id", p.EmployeeID)
	return p, nil
}

// Get returns the person with the given id.
func (s *Service) Get(ctx context.Context, id string) (*model.Person, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: person id required", sentinel.ErrInvalidInput)
	}
	return s.store.GetPerson(ctx, id)
}

// List returns all registered persons, up to ListLimit, in unspecified
// order.
func (s *Service) List(ctx context.Context) ([]model.Person, error) {
	return s.store.ListPersons(ctx, ListLimit)
}

// Delete removes the person and, through the storage cascade, every
// attendance record referencing them. The two removals are one logical
// operation; readers never observe a half-deleted state.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: person id required", sentinel.ErrInvalidInput)
	}
	if err := s.store.DeletePerson(ctx, id); err != nil {
		return err
	}
	if s.mtx != nil {
		s.mtx.PersonsDeleted.Inc()
	}
	s.log.Info("person deleted", "person_id", id)
	return nil
}
