package postgres

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bookstore-inventory/internal/domain"
	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
	"github.com/jhoicas/bookstore-inventory/internal/domain/repository"
)

var _ repository.PriceHistoryRepository = (*PriceHistoryRepo)(nil)

// PriceHistoryRepo historial de precios (price_history), solo INSERT y SELECT.
type PriceHistoryRepo struct {
	q Querier
}

// NewPriceHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPriceHistoryRepository(q Querier) *PriceHistoryRepo {
	return &PriceHistoryRepo{q: q}
}

// Append inserta el cambio de precio; los precios llegan ya normalizados a 2 decimales.
func (r *PriceHistoryRepo) Append(ctx context.Context, e *entity.PriceHistoryEntry) error {
	oldPrice, err := decimal.NewFromString(e.OldPrice)
	if err != nil {
		return domain.ErrInvalidInput
	}
	newPrice, err := decimal.NewFromString(e.NewPrice)
	if err != nil {
		return domain.ErrInvalidInput
	}
	query := `
		INSERT INTO price_history (item_id, old_price, new_price, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err = r.q.QueryRow(ctx, query, e.ItemID, oldPrice, newPrice, e.ActorID, e.CreatedAt).Scan(&e.ID)
	return storageErr("append price history", err)
}

// ListByItem cambios de precio del ítem, más recientes primero.
func (r *PriceHistoryRepo) ListByItem(ctx context.Context, itemID int64, limit int) ([]entity.PriceHistoryEntry, error) {
	query := `
		SELECT id, item_id, old_price::text AS old_price, new_price::text AS new_price, actor_id, created_at
		FROM price_history
		WHERE item_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`
	var out []entity.PriceHistoryEntry
	if err := pgxscan.Select(ctx, r.q, &out, query, itemID, limit); err != nil {
		return nil, storageErr("list price history", err)
	}
	return out, nil
}
