package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/model"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkshopService manages workshops and derives their remaining seats.
type WorkshopService struct {
	store store.Store
	log   *zap.Logger
}

// NewWorkshopService constructs a WorkshopService.
func NewWorkshopService(st store.Store, log *zap.Logger) *WorkshopService {
	return &WorkshopService{store: st, log: log}
}

func parseTimeslot(raw string) (model.Timeslot, error) {
	if raw == "" {
		return model.TimeslotMorning, nil
	}
	timeslot := model.Timeslot(raw)
	if !timeslot.Valid() {
		return "", invalidf("unknown timeslot %q", raw)
	}
	return timeslot, nil
}

// Create validates the request and inserts a new workshop.
func (s *WorkshopService) Create(ctx context.Context, req model.CreateWorkshopRequest) (*model.Workshop, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalidf("workshop name is required")
	}
	if req.Date.IsZero() {
		return nil, invalidf("date is required")
	}
	if req.Places < 0 {
		return nil, invalidf("places cannot be negative")
	}
	timeslot, err := parseTimeslot(req.Timeslot)
	if err != nil {
		return nil, err
	}

	workshop := &model.Workshop{
		ID:          uuid.New().String(),
		Name:        name,
		Date:        req.Date,
		Places:      req.Places,
		Timeslot:    timeslot,
		Description: strings.TrimSpace(req.Description),
		ShopID:      req.ShopID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateWorkshop(ctx, workshop); err != nil {
		return nil, err
	}
	s.log.Info("workshop created",
		zap.String("workshop_id", workshop.ID),
		zap.String("name", workshop.Name),
		zap.Int("places", workshop.Places))
	return workshop, nil
}

func (s *WorkshopService) seatCounts(ctx context.Context, w model.Workshop) (reserved, remaining int, err error) {
	withParticipants, err := s.store.ListEnrollments(ctx, w.ID)
	if err != nil {
		return 0, 0, err
	}
	enrollments := make([]model.Enrollment, 0, len(withParticipants))
	for _, e := range withParticipants {
		enrollments = append(enrollments, e.Enrollment)
	}
	reserved = model.ReservedSeats(enrollments)
	remaining = model.RemainingSeats(w, enrollments)
	if remaining < 0 {
		// Inconsistent external data; surfaced to the caller as oversold.
		s.log.Warn("workshop oversold",
			zap.String("workshop_id", w.ID),
			zap.Int("places", w.Places),
			zap.Int("reserved", reserved))
	}
	return reserved, remaining, nil
}

// List returns workshops enriched with reserved/remaining seat counts,
// optionally filtered by shop.
func (s *WorkshopService) List(ctx context.Context, shopID string) ([]model.WorkshopSummary, error) {
	workshops, err := s.store.ListWorkshops(ctx, shopID)
	if err != nil {
		return nil, err
	}
	summaries := make([]model.WorkshopSummary, 0, len(workshops))
	for _, w := range workshops {
		reserved, remaining, err := s.seatCounts(ctx, w)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, model.WorkshopSummary{
			Workshop:  w,
			Reserved:  reserved,
			Remaining: remaining,
			Oversold:  remaining < 0,
		})
	}
	return summaries, nil
}

// Get returns a single workshop with its enrollments and seat counts.
func (s *WorkshopService) Get(ctx context.Context, id string) (*model.WorkshopDetail, error) {
	workshop, err := s.store.GetWorkshop(ctx, id)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.store.ListEnrollments(ctx, id)
	if err != nil {
		return nil, err
	}
	reserved, remaining, err := s.seatCounts(ctx, *workshop)
	if err != nil {
		return nil, err
	}
	return &model.WorkshopDetail{
		Workshop:    *workshop,
		Enrollments: enrollments,
		Reserved:    reserved,
		Remaining:   remaining,
		Oversold:    remaining < 0,
	}, nil
}

// Update applies a partial edit. A capacity change is rejected when the new
// capacity would drop below the seats already reserved; nothing is written
// in that case.
func (s *WorkshopService) Update(ctx context.Context, id string, req model.UpdateWorkshopRequest) (*model.Workshop, error) {
	patch := store.WorkshopPatch{Date: req.Date}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalidf("workshop name cannot be empty")
		}
		patch.Name = &name
	}
	if req.Timeslot != nil {
		timeslot, err := parseTimeslot(*req.Timeslot)
		if err != nil {
			return nil, err
		}
		patch.Timeslot = &timeslot
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		patch.Description = &description
	}
	if req.Places != nil {
		if *req.Places < 0 {
			return nil, invalidf("places cannot be negative")
		}
		workshop, err := s.store.GetWorkshop(ctx, id)
		if err != nil {
			return nil, err
		}
		reserved, _, err := s.seatCounts(ctx, *workshop)
		if err != nil {
			return nil, err
		}
		if *req.Places < reserved {
			return nil, fmt.Errorf("%w: cannot reduce places to %d, %d seats already reserved",
				store.ErrCapacityExceeded, *req.Places, reserved)
		}
		patch.Places = req.Places
	}

	if err := s.store.UpdateWorkshop(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.store.GetWorkshop(ctx, id)
}

// Shops returns the shop directory used to partition workshops.
func (s *WorkshopService) Shops(ctx context.Context) ([]model.Shop, error) {
	return s.store.ListShops(ctx)
}
