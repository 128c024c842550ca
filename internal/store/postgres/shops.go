package postgres

import (
	"context"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/model"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/store"
)

// ListShops returns all shops ordered by name.
func (s *Store) ListShops(ctx context.Context) ([]model.Shop, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name FROM shops ORDER BY name ASC`)
	if err != nil {
		return nil, store.WrapErr("list shops", err)
	}
	defer rows.Close()

	var shops []model.Shop
	for rows.Next() {
		var shop model.Shop
		if err := rows.Scan(&shop.ID, &shop.Name); err != nil {
			return nil, store.WrapErr("scan shop", err)
		}
		shops = append(shops, shop)
	}
	return shops, store.WrapErr("list shops", rows.Err())
}
