// Package store defines the record-store contract the services consume.
// All four tables live in the external managed database; this package owns
// nothing but the typed access surface and its error taxonomy. Two backends
// implement it: a direct pgx connection (postgres) and the hosted REST query
// API (postgrest).
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/model"
)

// ErrNotFound is returned when a requested record does not exist, or
// disappeared between the caller's read and this call.
var ErrNotFound = errors.New("not found")

// ErrCapacityExceeded is returned by backends that re-validate capacity at
// commit time when the write would push reserved seats past the workshop's
// capacity.
var ErrCapacityExceeded = errors.New("workshop capacity exceeded")

// StoreError wraps a remote-store failure. The triggering write was not
// applied locally and is safe to retry: every write is either an idempotent
// upsert or guarded by the composite unique constraint.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// WrapErr wraps err in a StoreError unless it is already a domain sentinel.
func WrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCapacityExceeded) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// WorkshopPatch is a partial update of a workshop row. Nil fields are not
// written.
type WorkshopPatch struct {
	Name        *string
	Date        *model.Date
	Places      *int
	Timeslot    *model.Timeslot
	Description *string
}

// ParticipantPatch is a partial update of a participant row.
type ParticipantPatch struct {
	Name  *string
	Email *string
	Phone *string
}

// EnrollmentPatch is a partial update of an enrollment row. Seats is the
// absolute new count, already validated by the caller; backends that support
// it re-validate against capacity at commit time.
type EnrollmentPatch struct {
	Seats *int
	Paid  *bool
	Notes *string
}

// Store is the typed CRUD surface over the remote tables. Rows crossing this
// boundary are always decoded into model types; no untyped maps escape a
// backend.
type Store interface {
	// Workshops.
	CreateWorkshop(ctx context.Context, w *model.Workshop) error
	ListWorkshops(ctx context.Context, shopID string) ([]model.Workshop, error)
	GetWorkshop(ctx context.Context, id string) (*model.Workshop, error)
	UpdateWorkshop(ctx context.Context, id string, patch WorkshopPatch) error

	// Participants.
	CreateParticipant(ctx context.Context, p *model.Participant) error
	ListParticipants(ctx context.Context) ([]model.Participant, error)
	GetParticipant(ctx context.Context, id string) (*model.Participant, error)
	UpdateParticipant(ctx context.Context, id string, patch ParticipantPatch) error

	// Enrollments. UpsertEnrollment replaces the row for the composite key
	// (workshop, participant) if one exists; it never duplicates the pair.
	ListEnrollments(ctx context.Context, workshopID string) ([]model.EnrollmentWithParticipant, error)
	ListParticipantEnrollments(ctx context.Context, participantID string) ([]model.EnrollmentWithWorkshop, error)
	GetEnrollment(ctx context.Context, workshopID, participantID string) (*model.Enrollment, error)
	UpsertEnrollment(ctx context.Context, e model.Enrollment) error
	UpdateEnrollment(ctx context.Context, workshopID, participantID string, patch EnrollmentPatch) error
	DeleteEnrollment(ctx context.Context, workshopID, participantID string) error

	// Shops.
	ListShops(ctx context.Context) ([]model.Shop, error)
}
