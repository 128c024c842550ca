// Package service implements the business rules between the HTTP handlers
// and the record store: capacity enforcement, participant deduplication, and
// input validation. State held by callers is a cache of the remote store;
// services only report success after the store confirms a write.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/model"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/store"
	"go.uber.org/zap"
)

// maxNoteLength caps free-text notes on an enrollment.
const maxNoteLength = 4000

// EnrollmentService manages workshop enrollments while keeping the seat sum
// of every workshop within its capacity.
type EnrollmentService struct {
	store store.Store
	log   *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(st store.Store, log *zap.Logger) *EnrollmentService {
	return &EnrollmentService{store: st, log: log}
}

// List returns a workshop's enrollments with participant snapshots, in the
// store's insertion order.
func (s *EnrollmentService) List(ctx context.Context, workshopID string) ([]model.EnrollmentWithParticipant, error) {
	if _, err := s.store.GetWorkshop(ctx, workshopID); err != nil {
		return nil, err
	}
	return s.store.ListEnrollments(ctx, workshopID)
}

// Get returns the enrollment for a (workshop, participant) pair.
func (s *EnrollmentService) Get(ctx context.Context, workshopID, participantID string) (*model.Enrollment, error) {
	return s.store.GetEnrollment(ctx, workshopID, participantID)
}

// Enroll adds a participant to a workshop with the given seat count
// (defaulting to one). Re-enrolling an already-enrolled participant replaces
// the seat count instead of duplicating the pair; paid status and notes are
// carried over. The enrollment is rejected when the resulting seat total
// would exceed the workshop's capacity.
func (s *EnrollmentService) Enroll(ctx context.Context, workshopID, participantID string, seats int) (*model.Enrollment, error) {
	if participantID == "" {
		return nil, invalidf("participant_id is required")
	}
	if seats == 0 {
		seats = 1
	}
	if seats < 1 {
		return nil, invalidf("seats must be at least 1")
	}

	workshop, err := s.store.GetWorkshop(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetParticipant(ctx, participantID); err != nil {
		return nil, err
	}

	enrollments, err := s.store.ListEnrollments(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	enrollment := model.Enrollment{
		WorkshopID:    workshopID,
		ParticipantID: participantID,
		Seats:         seats,
	}
	otherSeats := 0
	for _, existing := range enrollments {
		if existing.ParticipantID == participantID {
			enrollment.Paid = existing.Paid
			enrollment.Notes = existing.Notes
			continue
		}
		otherSeats += existing.Seats
	}
	if otherSeats+seats > workshop.Places {
		return nil, fmt.Errorf("%w: %d seats requested, %d of %d already reserved",
			store.ErrCapacityExceeded, seats, otherSeats, workshop.Places)
	}

	if err := s.store.UpsertEnrollment(ctx, enrollment); err != nil {
		return nil, err
	}
	s.log.Info("participant enrolled",
		zap.String("workshop_id", workshopID),
		zap.String("participant_id", participantID),
		zap.Int("seats", seats))
	return &enrollment, nil
}

// Unenroll removes the enrollment unconditionally. This is destructive and
// not undoable; the HTTP contract requires the caller to confirm with the
// user before invoking it.
func (s *EnrollmentService) Unenroll(ctx context.Context, workshopID, participantID string) error {
	if err := s.store.DeleteEnrollment(ctx, workshopID, participantID); err != nil {
		return err
	}
	s.log.Info("participant unenrolled",
		zap.String("workshop_id", workshopID),
		zap.String("participant_id", participantID))
	return nil
}

// SetSeats applies a delta to a participant's seat count and returns the new
// count. The count never drops below one (removal goes through Unenroll) and
// never pushes the workshop's seat total past its capacity; a rejected
// change leaves stored state untouched.
func (s *EnrollmentService) SetSeats(ctx context.Context, workshopID, participantID string, delta int) (int, error) {
	current, err := s.store.GetEnrollment(ctx, workshopID, participantID)
	if err != nil {
		return 0, err
	}
	newSeats := current.Seats + delta
	if newSeats < 1 {
		newSeats = 1
	}
	if newSeats == current.Seats {
		return current.Seats, nil
	}

	workshop, err := s.store.GetWorkshop(ctx, workshopID)
	if err != nil {
		return 0, err
	}
	enrollments, err := s.store.ListEnrollments(ctx, workshopID)
	if err != nil {
		return 0, err
	}
	otherSeats := 0
	for _, existing := range enrollments {
		if existing.ParticipantID != participantID {
			otherSeats += existing.Seats
		}
	}
	if otherSeats+newSeats > workshop.Places {
		return 0, fmt.Errorf("%w: %d seats requested, %d of %d already reserved",
			store.ErrCapacityExceeded, newSeats, otherSeats, workshop.Places)
	}

	patch := store.EnrollmentPatch{Seats: &newSeats}
	if err := s.store.UpdateEnrollment(ctx, workshopID, participantID, patch); err != nil {
		return 0, err
	}
	return newSeats, nil
}

// SetPaid updates the payment flag, independent of capacity.
func (s *EnrollmentService) SetPaid(ctx context.Context, workshopID, participantID string, paid bool) error {
	patch := store.EnrollmentPatch{Paid: &paid}
	return s.store.UpdateEnrollment(ctx, workshopID, participantID, patch)
}

// SetNotes replaces the free-text note on an enrollment.
func (s *EnrollmentService) SetNotes(ctx context.Context, workshopID, participantID, notes string) error {
	if len(notes) > maxNoteLength {
		return invalidf("notes cannot exceed %d characters", maxNoteLength)
	}
	patch := store.EnrollmentPatch{Notes: &notes}
	return s.store.UpdateEnrollment(ctx, workshopID, participantID, patch)
}

// IsCapacityError reports whether err is a capacity rejection.
func IsCapacityError(err error) bool {
	return errors.Is(err, store.ErrCapacityExceeded)
}
