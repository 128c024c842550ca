package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/model"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/store"
	"github.com/jackc/pgx/v5"
)

// ListEnrollments returns a workshop's enrollments with participant
// snapshots, in insertion order.
func (s *Store) ListEnrollments(ctx context.Context, workshopID string) ([]model.EnrollmentWithParticipant, error) {
	rows, err := s.db.Query(ctx,
		`SELECT wp.workshop_id, wp.participant_id, COALESCE(wp.places, 1), wp.paid,
		        COALESCE(wp.notes, ''),
		        p.id, p.name, COALESCE(p.email, ''), COALESCE(p.phone, ''), p.created_at
		 FROM workshops_participants wp
		 JOIN participants p ON p.id = wp.participant_id
		 WHERE wp.workshop_id = $1`,
		workshopID,
	)
	if err != nil {
		return nil, store.WrapErr("list enrollments", err)
	}
	defer rows.Close()

	var enrollments []model.EnrollmentWithParticipant
	for rows.Next() {
		var e model.EnrollmentWithParticipant
		err := rows.Scan(&e.WorkshopID, &e.ParticipantID, &e.Seats, &e.Paid, &e.Notes,
			&e.Participant.ID, &e.Participant.Name, &e.Participant.Email,
			&e.Participant.Phone, &e.Participant.CreatedAt)
		if err != nil {
			return nil, store.WrapErr("scan enrollment", err)
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, store.WrapErr("list enrollments", rows.Err())
}

// ListParticipantEnrollments returns every enrollment a participant holds,
// with the workshop snapshot, soonest workshop first.
func (s *Store) ListParticipantEnrollments(ctx context.Context, participantID string) ([]model.EnrollmentWithWorkshop, error) {
	rows, err := s.db.Query(ctx,
		`SELECT wp.workshop_id, wp.participant_id, COALESCE(wp.places, 1), wp.paid,
		        COALESCE(wp.notes, ''),
		        w.id, w.name, w.date, w.places, COALESCE(w.timeslot, 'matin'),
		        COALESCE(w.description, ''), COALESCE(w.shop_id::text, ''), w.created_at
		 FROM workshops_participants wp
		 JOIN workshops w ON w.id = wp.workshop_id
		 WHERE wp.participant_id = $1
		 ORDER BY w.date ASC`,
		participantID,
	)
	if err != nil {
		return nil, store.WrapErr("list participant enrollments", err)
	}
	defer rows.Close()

	var enrollments []model.EnrollmentWithWorkshop
	for rows.Next() {
		var e model.EnrollmentWithWorkshop
		err := rows.Scan(&e.WorkshopID, &e.ParticipantID, &e.Seats, &e.Paid, &e.Notes,
			&e.Workshop.ID, &e.Workshop.Name, &e.Workshop.Date.Time, &e.Workshop.Places,
			&e.Workshop.Timeslot, &e.Workshop.Description, &e.Workshop.ShopID,
			&e.Workshop.CreatedAt)
		if err != nil {
			return nil, store.WrapErr("scan participant enrollment", err)
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, store.WrapErr("list participant enrollments", rows.Err())
}

// GetEnrollment returns the enrollment for a (workshop, participant) pair or
// store.ErrNotFound.
func (s *Store) GetEnrollment(ctx context.Context, workshopID, participantID string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := s.db.QueryRow(ctx,
		`SELECT workshop_id, participant_id, COALESCE(places, 1), paid, COALESCE(notes, '')
		 FROM workshops_participants
		 WHERE workshop_id = $1 AND participant_id = $2`,
		workshopID, participantID,
	).Scan(&e.WorkshopID, &e.ParticipantID, &e.Seats, &e.Paid, &e.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.WrapErr("get enrollment", err)
	}
	return &e, nil
}

// UpsertEnrollment creates or replaces the enrollment for its composite key.
//
// The workshop row is locked with SELECT ... FOR UPDATE and the seat total
// re-validated before the write, serialising concurrent enrollments that
// both believe seats remain. The unique constraint on
// (workshop_id, participant_id) keeps the upsert from ever duplicating the
// pair.
func (s *Store) UpsertEnrollment(ctx context.Context, e model.Enrollment) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return store.WrapErr("begin enrollment", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var places int
	err = tx.QueryRow(ctx,
		`SELECT places FROM workshops WHERE id = $1 FOR UPDATE`, e.WorkshopID,
	).Scan(&places)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = store.ErrNotFound
		}
		return store.WrapErr("lock workshop row", err)
	}

	// Seats held by everyone else; the upsert replaces this participant's
	// own reservation rather than adding to it.
	var reserved int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(COALESCE(places, 1)), 0)
		 FROM workshops_participants
		 WHERE workshop_id = $1 AND participant_id <> $2`,
		e.WorkshopID, e.ParticipantID,
	).Scan(&reserved)
	if err != nil {
		return store.WrapErr("sum reserved seats", err)
	}
	if reserved+e.Seats > places {
		err = fmt.Errorf("%w: %d seats requested, %d of %d reserved",
			store.ErrCapacityExceeded, e.Seats, reserved, places)
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO workshops_participants (workshop_id, participant_id, places, paid, notes)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		 ON CONFLICT (workshop_id, participant_id)
		 DO UPDATE SET places = EXCLUDED.places, paid = EXCLUDED.paid, notes = EXCLUDED.notes`,
		e.WorkshopID, e.ParticipantID, e.Seats, e.Paid, e.Notes,
	)
	if err != nil {
		return store.WrapErr("upsert enrollment", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return store.WrapErr("commit enrollment", err)
	}
	return nil
}

// UpdateEnrollment applies a partial update. A seat-count change re-validates
// capacity under the workshop row lock; paid/notes changes write directly.
func (s *Store) UpdateEnrollment(ctx context.Context, workshopID, participantID string, patch store.EnrollmentPatch) error {
	var b patchBuilder
	if patch.Seats != nil {
		b.add("places", *patch.Seats)
	}
	if patch.Paid != nil {
		b.add("paid", *patch.Paid)
	}
	if patch.Notes != nil {
		b.add("notes", *patch.Notes)
	}
	if b.empty() {
		return nil
	}
	query := `UPDATE workshops_participants SET ` + b.setClause() +
		` WHERE workshop_id = ` + b.arg(workshopID) +
		` AND participant_id = ` + b.arg(participantID)

	if patch.Seats == nil {
		tag, err := s.db.Exec(ctx, query, b.args...)
		if err != nil {
			return store.WrapErr("update enrollment", err)
		}
		if tag.RowsAffected() == 0 {
			return store.ErrNotFound
		}
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return store.WrapErr("begin update enrollment", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var places int
	err = tx.QueryRow(ctx,
		`SELECT places FROM workshops WHERE id = $1 FOR UPDATE`, workshopID,
	).Scan(&places)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = store.ErrNotFound
		}
		return store.WrapErr("lock workshop row", err)
	}

	var reserved int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(COALESCE(places, 1)), 0)
		 FROM workshops_participants
		 WHERE workshop_id = $1 AND participant_id <> $2`,
		workshopID, participantID,
	).Scan(&reserved)
	if err != nil {
		return store.WrapErr("sum reserved seats", err)
	}
	if reserved+*patch.Seats > places {
		err = fmt.Errorf("%w: %d seats requested, %d of %d reserved",
			store.ErrCapacityExceeded, *patch.Seats, reserved, places)
		return err
	}

	tag, err := tx.Exec(ctx, query, b.args...)
	if err != nil {
		return store.WrapErr("update enrollment", err)
	}
	if tag.RowsAffected() == 0 {
		err = store.ErrNotFound
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return store.WrapErr("commit update enrollment", err)
	}
	return nil
}

// DeleteEnrollment removes the enrollment row. Deleting an absent pair
// returns store.ErrNotFound so stale views learn they need a refresh.
func (s *Store) DeleteEnrollment(ctx context.Context, workshopID, participantID string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM workshops_participants
		 WHERE workshop_id = $1 AND participant_id = $2`,
		workshopID, participantID,
	)
	if err != nil {
		return store.WrapErr("delete enrollment", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
