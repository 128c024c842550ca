// Package storetest provides an in-memory Store implementation for tests.
// It mirrors the real backends' semantics: not-found sentinels, upsert
// replacement on the composite key, and commit-time capacity checks.
package storetest

import (
	"context"
	"sort"
	"sync"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/model"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/store"
)

// Fake is an in-memory record store, safe for concurrent use.
type Fake struct {
	mu sync.Mutex

	workshops    map[string]model.Workshop
	participants map[string]model.Participant
	// enrollments keyed by workshop ID, then participant ID.
	enrollments map[string]map[string]model.Enrollment
	shops       []model.Shop

	// ForcedErr, when set, is returned by every call. Tests use it to
	// exercise remote-failure paths.
	ForcedErr error
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		workshops:    make(map[string]model.Workshop),
		participants: make(map[string]model.Participant),
		enrollments:  make(map[string]map[string]model.Enrollment),
	}
}

var _ store.Store = (*Fake)(nil)

// ─── Seeding helpers ──────────────────────────────────────────────────────────

// SeedWorkshop inserts a workshop without validation.
func (f *Fake) SeedWorkshop(w model.Workshop) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.workshops[w.ID] = w
}

// SeedParticipant inserts a participant without validation.
func (f *Fake) SeedParticipant(p model.Participant) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.participants[p.ID] = p
}

// SeedEnrollment inserts an enrollment without capacity checks, so tests can
// construct oversold states.
func (f *Fake) SeedEnrollment(e model.Enrollment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putEnrollment(e)
}

// SeedShop appends a shop.
func (f *Fake) SeedShop(s model.Shop) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shops = append(f.shops, s)
}

func (f *Fake) putEnrollment(e model.Enrollment) {
	byParticipant, ok := f.enrollments[e.WorkshopID]
	if !ok {
		byParticipant = make(map[string]model.Enrollment)
		f.enrollments[e.WorkshopID] = byParticipant
	}
	byParticipant[e.ParticipantID] = e
}

// reservedSeats sums seats in workshopID, optionally excluding one participant.
func (f *Fake) reservedSeats(workshopID, excludeParticipant string) int {
	total := 0
	for pid, e := range f.enrollments[workshopID] {
		if pid == excludeParticipant {
			continue
		}
		total += e.Seats
	}
	return total
}

// ─── Workshops ────────────────────────────────────────────────────────────────

func (f *Fake) CreateWorkshop(ctx context.Context, w *model.Workshop) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return f.ForcedErr
	}
	f.workshops[w.ID] = *w
	return nil
}

func (f *Fake) ListWorkshops(ctx context.Context, shopID string) ([]model.Workshop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return nil, f.ForcedErr
	}
	var out []model.Workshop
	for _, w := range f.workshops {
		if shopID != "" && w.ShopID != shopID {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *Fake) GetWorkshop(ctx context.Context, id string) (*model.Workshop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return nil, f.ForcedErr
	}
	w, ok := f.workshops[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &w, nil
}

func (f *Fake) UpdateWorkshop(ctx context.Context, id string, patch store.WorkshopPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return f.ForcedErr
	}
	w, ok := f.workshops[id]
	if !ok {
		return store.ErrNotFound
	}
	if patch.Places != nil && *patch.Places < f.reservedSeats(id, "") {
		return store.ErrCapacityExceeded
	}
	if patch.Name != nil {
		w.Name = *patch.Name
	}
	if patch.Date != nil {
		w.Date = *patch.Date
	}
	if patch.Places != nil {
		w.Places = *patch.Places
	}
	if patch.Timeslot != nil {
		w.Timeslot = *patch.Timeslot
	}
	if patch.Description != nil {
		w.Description = *patch.Description
	}
	f.workshops[id] = w
	return nil
}

// ─── Participants ─────────────────────────────────────────────────────────────

func (f *Fake) CreateParticipant(ctx context.Context, p *model.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return f.ForcedErr
	}
	f.participants[p.ID] = *p
	return nil
}

func (f *Fake) ListParticipants(ctx context.Context) ([]model.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return nil, f.ForcedErr
	}
	var out []model.Participant
	for _, p := range f.participants {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *Fake) GetParticipant(ctx context.Context, id string) (*model.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return nil, f.ForcedErr
	}
	p, ok := f.participants[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (f *Fake) UpdateParticipant(ctx context.Context, id string, patch store.ParticipantPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return f.ForcedErr
	}
	p, ok := f.participants[id]
	if !ok {
		return store.ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	f.participants[id] = p
	return nil
}

// ─── Enrollments ──────────────────────────────────────────────────────────────

func (f *Fake) ListEnrollments(ctx context.Context, workshopID string) ([]model.EnrollmentWithParticipant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return nil, f.ForcedErr
	}
	var out []model.EnrollmentWithParticipant
	for pid, e := range f.enrollments[workshopID] {
		out = append(out, model.EnrollmentWithParticipant{
			Enrollment:  e,
			Participant: f.participants[pid],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Participant.Name < out[j].Participant.Name })
	return out, nil
}

func (f *Fake) ListParticipantEnrollments(ctx context.Context, participantID string) ([]model.EnrollmentWithWorkshop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return nil, f.ForcedErr
	}
	var out []model.EnrollmentWithWorkshop
	for wid, byParticipant := range f.enrollments {
		if e, ok := byParticipant[participantID]; ok {
			out = append(out, model.EnrollmentWithWorkshop{
				Enrollment: e,
				Workshop:   f.workshops[wid],
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Workshop.Date.Before(out[j].Workshop.Date.Time) })
	return out, nil
}

func (f *Fake) GetEnrollment(ctx context.Context, workshopID, participantID string) (*model.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return nil, f.ForcedErr
	}
	e, ok := f.enrollments[workshopID][participantID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &e, nil
}

func (f *Fake) UpsertEnrollment(ctx context.Context, e model.Enrollment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return f.ForcedErr
	}
	w, ok := f.workshops[e.WorkshopID]
	if !ok {
		return store.ErrNotFound
	}
	if f.reservedSeats(e.WorkshopID, e.ParticipantID)+e.Seats > w.Places {
		return store.ErrCapacityExceeded
	}
	f.putEnrollment(e)
	return nil
}

func (f *Fake) UpdateEnrollment(ctx context.Context, workshopID, participantID string, patch store.EnrollmentPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return f.ForcedErr
	}
	e, ok := f.enrollments[workshopID][participantID]
	if !ok {
		return store.ErrNotFound
	}
	if patch.Seats != nil {
		w, ok := f.workshops[workshopID]
		if !ok {
			return store.ErrNotFound
		}
		if f.reservedSeats(workshopID, participantID)+*patch.Seats > w.Places {
			return store.ErrCapacityExceeded
		}
		e.Seats = *patch.Seats
	}
	if patch.Paid != nil {
		e.Paid = *patch.Paid
	}
	if patch.Notes != nil {
		e.Notes = *patch.Notes
	}
	f.putEnrollment(e)
	return nil
}

func (f *Fake) DeleteEnrollment(ctx context.Context, workshopID, participantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return f.ForcedErr
	}
	if _, ok := f.enrollments[workshopID][participantID]; !ok {
		return store.ErrNotFound
	}
	delete(f.enrollments[workshopID], participantID)
	return nil
}

// ─── Shops ────────────────────────────────────────────────────────────────────

func (f *Fake) ListShops(ctx context.Context) ([]model.Shop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return nil, f.ForcedErr
	}
	out := make([]model.Shop, len(f.shops))
	copy(out, f.shops)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
