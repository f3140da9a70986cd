package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
	"github.com/jhoicas/bookstore-inventory/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo bitácora de auditoría (audit_entries), solo INSERT y SELECT.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Append inserta la entrada y asigna su id.
func (r *AuditRepo) Append(ctx context.Context, e *entity.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (item_id, actor_id, action, old_value, new_value, quantity_delta, reason, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		e.ItemID, e.ActorID, string(e.Action), e.OldValue, e.NewValue,
		e.QuantityDelta, e.Reason, e.Notes, e.CreatedAt,
	).Scan(&e.ID)
	return storageErr("append audit entry", err)
}

// ListByItem entradas del ítem, más recientes primero, sin las acciones de exclude.
func (r *AuditRepo) ListByItem(ctx context.Context, itemID int64, limit int, exclude ...entity.AuditAction) ([]entity.AuditEntry, error) {
	b := psql.Select("id", "item_id", "actor_id", "action", "old_value", "new_value", "quantity_delta", "reason", "notes", "created_at").
		From("audit_entries").
		Where(sq.Eq{"item_id": itemID}).
		OrderBy("created_at DESC", "id DESC")
	if len(exclude) > 0 {
		actions := make([]string, 0, len(exclude))
		for _, a := range exclude {
			actions = append(actions, string(a))
		}
		b = b.Where(sq.NotEq{"action": actions})
	}
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, storageErr("build list audit entries", err)
	}
	var out []entity.AuditEntry
	if err := pgxscan.Select(ctx, r.q, &out, query, args...); err != nil {
		return nil, storageErr("list audit entries", err)
	}
	return out, nil
}
