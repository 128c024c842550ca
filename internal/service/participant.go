package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/model"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParticipantService is the participant directory: create-or-reuse by name,
// inline field edits, and name search.
type ParticipantService struct {
	store store.Store
	log   *zap.Logger
}

// NewParticipantService constructs a ParticipantService.
func NewParticipantService(st store.Store, log *zap.Logger) *ParticipantService {
	return &ParticipantService{store: st, log: log}
}

// FindOrCreate returns the existing participant whose name matches
// case-insensitively, or creates a new one. Creating requires at least one
// of email or phone so the directory never collects unreachable duplicates;
// the returned bool reports whether a record was created.
func (s *ParticipantService) FindOrCreate(ctx context.Context, req model.CreateParticipantRequest) (*model.Participant, bool, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, false, invalidf("name is required")
	}

	participants, err := s.store.ListParticipants(ctx)
	if err != nil {
		return nil, false, err
	}
	for i := range participants {
		if strings.EqualFold(participants[i].Name, name) {
			return &participants[i], false, nil
		}
	}

	email := strings.TrimSpace(req.Email)
	phone := strings.TrimSpace(req.Phone)
	if email == "" && phone == "" {
		return nil, false, invalidf("no participant named %q exists; provide an email or phone to create one, or pick the existing entry", name)
	}

	participant := &model.Participant{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateParticipant(ctx, participant); err != nil {
		return nil, false, err
	}
	s.log.Info("participant created",
		zap.String("participant_id", participant.ID),
		zap.String("name", participant.Name))
	return participant, true, nil
}

// Update applies a partial edit of name/email/phone and returns the updated
// record. A renamed participant is not re-checked against existing names;
// duplicates introduced that way are left for staff to resolve.
func (s *ParticipantService) Update(ctx context.Context, id string, req model.UpdateParticipantRequest) (*model.Participant, error) {
	if req.Name == nil && req.Email == nil && req.Phone == nil {
		return nil, invalidf("no fields to update")
	}
	patch := store.ParticipantPatch{Email: req.Email, Phone: req.Phone}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalidf("name cannot be empty")
		}
		patch.Name = &name
	}

	if err := s.store.UpdateParticipant(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.store.GetParticipant(ctx, id)
}

// Enrollments returns every workshop the participant is enrolled in, with
// the workshop snapshot, soonest first.
func (s *ParticipantService) Enrollments(ctx context.Context, id string) ([]model.EnrollmentWithWorkshop, error) {
	if _, err := s.store.GetParticipant(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListParticipantEnrollments(ctx, id)
}

// Search returns participants whose name contains the query,
// case-insensitively, sorted by name. An empty query returns the full
// directory.
func (s *ParticipantService) Search(ctx context.Context, query string) ([]model.Participant, error) {
	participants, err := s.store.ListParticipants(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	matched := participants[:0:0]
	for _, p := range participants {
		if query == "" || strings.Contains(strings.ToLower(p.Name), query) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return strings.ToLower(matched[i].Name) < strings.ToLower(matched[j].Name)
	})
	return matched, nil
}
