package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/model"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/store"
	"github.com/jackc/pgx/v5"
)

const workshopColumns = `id, name, date, places,
	COALESCE(timeslot, 'matin'), COALESCE(description, ''),
	COALESCE(shop_id::text, ''), created_at`

func scanWorkshop(row pgx.Row) (*model.Workshop, error) {
	var w model.Workshop
	err := row.Scan(&w.ID, &w.Name, &w.Date.Time, &w.Places,
		&w.Timeslot, &w.Description, &w.ShopID, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWorkshop inserts a new workshop row.
func (s *Store) CreateWorkshop(ctx context.Context, w *model.Workshop) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO workshops (id, name, date, places, timeslot, description, shop_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, '')::uuid, $8)`,
		w.ID, w.Name, w.Date.Time, w.Places, w.Timeslot, w.Description, w.ShopID, w.CreatedAt,
	)
	if err != nil {
		return store.WrapErr("insert workshop", err)
	}
	return nil
}

// ListWorkshops returns workshops ordered by date, optionally filtered by
// shop.
func (s *Store) ListWorkshops(ctx context.Context, shopID string) ([]model.Workshop, error) {
	query := `SELECT ` + workshopColumns + ` FROM workshops`
	args := []any{}
	if shopID != "" {
		query += ` WHERE shop_id = $1`
		args = append(args, shopID)
	}
	query += ` ORDER BY date ASC, created_at ASC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, store.WrapErr("list workshops", err)
	}
	defer rows.Close()

	var workshops []model.Workshop
	for rows.Next() {
		w, err := scanWorkshop(rows)
		if err != nil {
			return nil, store.WrapErr("scan workshop", err)
		}
		workshops = append(workshops, *w)
	}
	return workshops, store.WrapErr("list workshops", rows.Err())
}

// GetWorkshop returns a single workshop or store.ErrNotFound.
func (s *Store) GetWorkshop(ctx context.Context, id string) (*model.Workshop, error) {
	w, err := scanWorkshop(s.db.QueryRow(ctx,
		`SELECT `+workshopColumns+` FROM workshops WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.WrapErr("get workshop", err)
	}
	return w, nil
}

// UpdateWorkshop applies a partial update. When the patch shrinks capacity
// the reserved seat total is re-read under a row lock, so a concurrent
// enrollment cannot slip past the check.
func (s *Store) UpdateWorkshop(ctx context.Context, id string, patch store.WorkshopPatch) error {
	var b patchBuilder
	if patch.Name != nil {
		b.add("name", *patch.Name)
	}
	if patch.Date != nil {
		b.add("date", patch.Date.Time)
	}
	if patch.Places != nil {
		b.add("places", *patch.Places)
	}
	if patch.Timeslot != nil {
		b.add("timeslot", *patch.Timeslot)
	}
	if patch.Description != nil {
		b.add("description", *patch.Description)
	}
	if b.empty() {
		return nil
	}
	query := `UPDATE workshops SET ` + b.setClause() + ` WHERE id = ` + b.arg(id)

	if patch.Places == nil {
		tag, err := s.db.Exec(ctx, query, b.args...)
		if err != nil {
			return store.WrapErr("update workshop", err)
		}
		if tag.RowsAffected() == 0 {
			return store.ErrNotFound
		}
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return store.WrapErr("begin update workshop", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	err = tx.QueryRow(ctx, `SELECT 1 FROM workshops WHERE id = $1 FOR UPDATE`, id).Scan(new(int))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = store.ErrNotFound
		}
		return store.WrapErr("lock workshop row", err)
	}

	var reserved int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(COALESCE(places, 1)), 0)
		 FROM workshops_participants WHERE workshop_id = $1`,
		id,
	).Scan(&reserved)
	if err != nil {
		return store.WrapErr("sum reserved seats", err)
	}
	if *patch.Places < reserved {
		err = fmt.Errorf("%w: %d places requested, %d reserved",
			store.ErrCapacityExceeded, *patch.Places, reserved)
		return err
	}

	if _, err = tx.Exec(ctx, query, b.args...); err != nil {
		return store.WrapErr("update workshop", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return store.WrapErr("commit update workshop", err)
	}
	return nil
}
