package postgrest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/model"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/store"
)

// Store adapts the generic Client to the typed store contract.
//
// The query API offers no transactions, so capacity-sensitive writes
// re-check the seat total immediately before committing and rely on the
// composite unique constraint as the backstop. Two writers racing through
// the window between re-check and write can still oversell by one
// enrollment; that is an accepted limitation of this backend, corrected the
// next time capacity is edited.
type Store struct {
	c *Client
}

var _ store.Store = (*Store)(nil)

// NewStore wraps a Client.
func NewStore(c *Client) *Store {
	return &Store{c: c}
}

func decodeRows[T any](data []byte, op string) ([]T, error) {
	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, store.WrapErr(op, fmt.Errorf("decode rows: %w", err))
	}
	return rows, nil
}

// ─── Workshops ────────────────────────────────────────────────────────────────

// CreateWorkshop inserts a new workshop row.
func (s *Store) CreateWorkshop(ctx context.Context, w *model.Workshop) error {
	payload := []map[string]any{{
		"id":          w.ID,
		"name":        w.Name,
		"date":        w.Date.String(),
		"places":      w.Places,
		"timeslot":    string(w.Timeslot),
		"description": nullable(w.Description),
		"shop_id":     nullable(w.ShopID),
		"created_at":  w.CreatedAt.Format(time.RFC3339),
	}}
	if _, err := s.c.Insert(ctx, "workshops", payload); err != nil {
		return store.WrapErr("insert workshop", err)
	}
	return nil
}

// ListWorkshops returns workshops ordered by date, optionally filtered by
// shop.
func (s *Store) ListWorkshops(ctx context.Context, shopID string) ([]model.Workshop, error) {
	filters := Filters{}
	if shopID != "" {
		filters["shop_id"] = shopID
	}
	data, err := s.c.Select(ctx, "workshops", "*", filters, "date.asc")
	if err != nil {
		return nil, store.WrapErr("list workshops", err)
	}
	rows, err := decodeRows[workshopRow](data, "list workshops")
	if err != nil {
		return nil, err
	}
	workshops := make([]model.Workshop, 0, len(rows))
	for _, r := range rows {
		workshops = append(workshops, r.toModel())
	}
	return workshops, nil
}

// GetWorkshop returns a single workshop or store.ErrNotFound.
func (s *Store) GetWorkshop(ctx context.Context, id string) (*model.Workshop, error) {
	data, err := s.c.Select(ctx, "workshops", "*", Filters{"id": id}, "")
	if err != nil {
		return nil, store.WrapErr("get workshop", err)
	}
	rows, err := decodeRows[workshopRow](data, "get workshop")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	w := rows[0].toModel()
	return &w, nil
}

// UpdateWorkshop applies a partial update. A capacity change re-checks the
// reserved seat total first and refuses to drop below it.
func (s *Store) UpdateWorkshop(ctx context.Context, id string, patch store.WorkshopPatch) error {
	body := map[string]any{}
	if patch.Name != nil {
		body["name"] = *patch.Name
	}
	if patch.Date != nil {
		body["date"] = patch.Date.String()
	}
	if patch.Places != nil {
		body["places"] = *patch.Places
	}
	if patch.Timeslot != nil {
		body["timeslot"] = string(*patch.Timeslot)
	}
	if patch.Description != nil {
		body["description"] = nullable(*patch.Description)
	}
	if len(body) == 0 {
		return nil
	}

	if patch.Places != nil {
		reserved, err := s.reservedSeats(ctx, id, "")
		if err != nil {
			return err
		}
		if *patch.Places < reserved {
			return fmt.Errorf("%w: %d places requested, %d reserved",
				store.ErrCapacityExceeded, *patch.Places, reserved)
		}
	}

	data, err := s.c.Update(ctx, "workshops", Filters{"id": id}, body)
	if err != nil {
		return store.WrapErr("update workshop", err)
	}
	rows, err := decodeRows[workshopRow](data, "update workshop")
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ─── Participants ─────────────────────────────────────────────────────────────

// CreateParticipant inserts a new participant row.
func (s *Store) CreateParticipant(ctx context.Context, p *model.Participant) error {
	payload := []map[string]any{{
		"id":         p.ID,
		"name":       p.Name,
		"email":      nullable(p.Email),
		"phone":      nullable(p.Phone),
		"created_at": p.CreatedAt.Format(time.RFC3339),
	}}
	if _, err := s.c.Insert(ctx, "participants", payload); err != nil {
		return store.WrapErr("insert participant", err)
	}
	return nil
}

// ListParticipants returns the full directory ordered by name.
func (s *Store) ListParticipants(ctx context.Context) ([]model.Participant, error) {
	data, err := s.c.Select(ctx, "participants", "*", nil, "name.asc")
	if err != nil {
		return nil, store.WrapErr("list participants", err)
	}
	rows, err := decodeRows[participantRow](data, "list participants")
	if err != nil {
		return nil, err
	}
	participants := make([]model.Participant, 0, len(rows))
	for _, r := range rows {
		participants = append(participants, r.toModel())
	}
	return participants, nil
}

// GetParticipant returns a single participant or store.ErrNotFound.
func (s *Store) GetParticipant(ctx context.Context, id string) (*model.Participant, error) {
	data, err := s.c.Select(ctx, "participants", "*", Filters{"id": id}, "")
	if err != nil {
		return nil, store.WrapErr("get participant", err)
	}
	rows, err := decodeRows[participantRow](data, "get participant")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	p := rows[0].toModel()
	return &p, nil
}

// UpdateParticipant applies a partial update of name/email/phone.
func (s *Store) UpdateParticipant(ctx context.Context, id string, patch store.ParticipantPatch) error {
	body := map[string]any{}
	if patch.Name != nil {
		body["name"] = *patch.Name
	}
	if patch.Email != nil {
		body["email"] = nullable(*patch.Email)
	}
	if patch.Phone != nil {
		body["phone"] = nullable(*patch.Phone)
	}
	if len(body) == 0 {
		return nil
	}

	data, err := s.c.Update(ctx, "participants", Filters{"id": id}, body)
	if err != nil {
		return store.WrapErr("update participant", err)
	}
	rows, err := decodeRows[participantRow](data, "update participant")
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ─── Enrollments ──────────────────────────────────────────────────────────────

const enrollmentColumns = "workshop_id,participant_id,places,paid,notes"

// ListEnrollments returns a workshop's enrollments with participant
// snapshots embedded by the query API.
func (s *Store) ListEnrollments(ctx context.Context, workshopID string) ([]model.EnrollmentWithParticipant, error) {
	columns := enrollmentColumns + ",participants(id,name,email,phone,created_at)"
	data, err := s.c.Select(ctx, "workshops_participants", columns,
		Filters{"workshop_id": workshopID}, "")
	if err != nil {
		return nil, store.WrapErr("list enrollments", err)
	}
	rows, err := decodeRows[enrollmentRow](data, "list enrollments")
	if err != nil {
		return nil, err
	}
	enrollments := make([]model.EnrollmentWithParticipant, 0, len(rows))
	for _, r := range rows {
		e := model.EnrollmentWithParticipant{Enrollment: r.toModel()}
		if r.Participant != nil {
			e.Participant = r.Participant.toModel()
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, nil
}

// ListParticipantEnrollments returns every enrollment a participant holds,
// with the workshop snapshot embedded by the query API.
func (s *Store) ListParticipantEnrollments(ctx context.Context, participantID string) ([]model.EnrollmentWithWorkshop, error) {
	columns := enrollmentColumns + ",workshops(id,name,date,places,timeslot,description,shop_id,created_at)"
	data, err := s.c.Select(ctx, "workshops_participants", columns,
		Filters{"participant_id": participantID}, "")
	if err != nil {
		return nil, store.WrapErr("list participant enrollments", err)
	}
	rows, err := decodeRows[enrollmentRow](data, "list participant enrollments")
	if err != nil {
		return nil, err
	}
	enrollments := make([]model.EnrollmentWithWorkshop, 0, len(rows))
	for _, r := range rows {
		e := model.EnrollmentWithWorkshop{Enrollment: r.toModel()}
		if r.Workshop != nil {
			e.Workshop = r.Workshop.toModel()
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, nil
}

// GetEnrollment returns the enrollment for a (workshop, participant) pair or
// store.ErrNotFound.
func (s *Store) GetEnrollment(ctx context.Context, workshopID, participantID string) (*model.Enrollment, error) {
	data, err := s.c.Select(ctx, "workshops_participants", enrollmentColumns,
		Filters{"workshop_id": workshopID, "participant_id": participantID}, "")
	if err != nil {
		return nil, store.WrapErr("get enrollment", err)
	}
	rows, err := decodeRows[enrollmentRow](data, "get enrollment")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	e := rows[0].toModel()
	return &e, nil
}

// reservedSeats sums the seats held on a workshop, excluding
// excludeParticipant when set.
func (s *Store) reservedSeats(ctx context.Context, workshopID, excludeParticipant string) (int, error) {
	data, err := s.c.Select(ctx, "workshops_participants", enrollmentColumns,
		Filters{"workshop_id": workshopID}, "")
	if err != nil {
		return 0, store.WrapErr("sum reserved seats", err)
	}
	rows, err := decodeRows[enrollmentRow](data, "sum reserved seats")
	if err != nil {
		return 0, err
	}
	reserved := 0
	for _, r := range rows {
		if excludeParticipant != "" && r.ParticipantID == excludeParticipant {
			continue
		}
		reserved += r.toModel().Seats
	}
	return reserved, nil
}

// UpsertEnrollment creates or replaces the enrollment for its composite key,
// re-checking capacity immediately before the write.
func (s *Store) UpsertEnrollment(ctx context.Context, e model.Enrollment) error {
	w, err := s.GetWorkshop(ctx, e.WorkshopID)
	if err != nil {
		return err
	}
	reserved, err := s.reservedSeats(ctx, e.WorkshopID, e.ParticipantID)
	if err != nil {
		return err
	}
	if reserved+e.Seats > w.Places {
		return fmt.Errorf("%w: %d seats requested, %d of %d reserved",
			store.ErrCapacityExceeded, e.Seats, reserved, w.Places)
	}

	payload := []map[string]any{{
		"workshop_id":    e.WorkshopID,
		"participant_id": e.ParticipantID,
		"places":         e.Seats,
		"paid":           e.Paid,
		"notes":          nullable(e.Notes),
	}}
	if _, err := s.c.Upsert(ctx, "workshops_participants", payload,
		"workshop_id", "participant_id"); err != nil {
		return store.WrapErr("upsert enrollment", err)
	}
	return nil
}

// UpdateEnrollment applies a partial update; a seat-count change re-checks
// capacity first.
func (s *Store) UpdateEnrollment(ctx context.Context, workshopID, participantID string, patch store.EnrollmentPatch) error {
	body := map[string]any{}
	if patch.Seats != nil {
		body["places"] = *patch.Seats
	}
	if patch.Paid != nil {
		body["paid"] = *patch.Paid
	}
	if patch.Notes != nil {
		body["notes"] = nullable(*patch.Notes)
	}
	if len(body) == 0 {
		return nil
	}

	if patch.Seats != nil {
		w, err := s.GetWorkshop(ctx, workshopID)
		if err != nil {
			return err
		}
		reserved, err := s.reservedSeats(ctx, workshopID, participantID)
		if err != nil {
			return err
		}
		if reserved+*patch.Seats > w.Places {
			return fmt.Errorf("%w: %d seats requested, %d of %d reserved",
				store.ErrCapacityExceeded, *patch.Seats, reserved, w.Places)
		}
	}

	data, err := s.c.Update(ctx, "workshops_participants",
		Filters{"workshop_id": workshopID, "participant_id": participantID}, body)
	if err != nil {
		return store.WrapErr("update enrollment", err)
	}
	rows, err := decodeRows[enrollmentRow](data, "update enrollment")
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteEnrollment removes the enrollment row; deleting an absent pair
// returns store.ErrNotFound so stale views learn they need a refresh.
func (s *Store) DeleteEnrollment(ctx context.Context, workshopID, participantID string) error {
	if _, err := s.GetEnrollment(ctx, workshopID, participantID); err != nil {
		return err
	}
	err := s.c.Delete(ctx, "workshops_participants",
		Filters{"workshop_id": workshopID, "participant_id": participantID})
	if err != nil {
		return store.WrapErr("delete enrollment", err)
	}
	return nil
}

// ─── Shops ────────────────────────────────────────────────────────────────────

// ListShops returns all shops ordered by name.
func (s *Store) ListShops(ctx context.Context) ([]model.Shop, error) {
	data, err := s.c.Select(ctx, "shops", "*", nil, "name.asc")
	if err != nil {
		return nil, store.WrapErr("list shops", err)
	}
	rows, err := decodeRows[shopRow](data, "list shops")
	if err != nil {
		return nil, err
	}
	shops := make([]model.Shop, 0, len(rows))
	for _, r := range rows {
		shops = append(shops, model.Shop(r))
	}
	return shops, nil
}
