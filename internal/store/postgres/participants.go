package postgres

import (
	"context"
	"errors"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/model"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/store"
	"github.com/jackc/pgx/v5"
)

const participantColumns = `id, name, COALESCE(email, ''), COALESCE(phone, ''), created_at`

// CreateParticipant inserts a new participant row.
func (s *Store) CreateParticipant(ctx context.Context, p *model.Participant) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO participants (id, name, email, phone, created_at)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)`,
		p.ID, p.Name, p.Email, p.Phone, p.CreatedAt,
	)
	if err != nil {
		return store.WrapErr("insert participant", err)
	}
	return nil
}

// ListParticipants returns the full directory ordered by name.
func (s *Store) ListParticipants(ctx context.Context) ([]model.Participant, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+participantColumns+` FROM participants ORDER BY name ASC`)
	if err != nil {
		return nil, store.WrapErr("list participants", err)
	}
	defer rows.Close()

	var participants []model.Participant
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.CreatedAt); err != nil {
			return nil, store.WrapErr("scan participant", err)
		}
		participants = append(participants, p)
	}
	return participants, store.WrapErr("list participants", rows.Err())
}

// GetParticipant returns a single participant or store.ErrNotFound.
func (s *Store) GetParticipant(ctx context.Context, id string) (*model.Participant, error) {
	var p model.Participant
	err := s.db.QueryRow(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.WrapErr("get participant", err)
	}
	return &p, nil
}

// UpdateParticipant applies a partial update of name/email/phone.
func (s *Store) UpdateParticipant(ctx context.Context, id string, patch store.ParticipantPatch) error {
	var b patchBuilder
	if patch.Name != nil {
		b.add("name", *patch.Name)
	}
	if patch.Email != nil {
		b.add("email", *patch.Email)
	}
	if patch.Phone != nil {
		b.add("phone", *patch.Phone)
	}
	if b.empty() {
		return nil
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE participants SET `+b.setClause()+` WHERE id = `+b.arg(id), b.args...)
	if err != nil {
		return store.WrapErr("update participant", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
