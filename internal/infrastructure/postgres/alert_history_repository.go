package postgres

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
	"github.com/jhoicas/bookstore-inventory/internal/domain/repository"
)

var _ repository.AlertHistoryRepository = (*AlertHistoryRepo)(nil)

// AlertHistoryRepo transiciones de alertas (alert_history), solo INSERT y SELECT.
type AlertHistoryRepo struct {
	q Querier
}

func NewAlertHistoryRepository(q Querier) *AlertHistoryRepo {
	return &AlertHistoryRepo{q: q}
}

func (r *AlertHistoryRepo) Append(ctx context.Context, e *entity.AlertHistoryEntry) error {
	query := `
		INSERT INTO alert_history (alert_id, status, note, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, e.AlertID, string(e.Status), e.Note, e.ActorID, e.CreatedAt).Scan(&e.ID)
	return storageErr("append alert history", err)
}

// ListByAlert transiciones en orden cronológico.
func (r *AlertHistoryRepo) ListByAlert(ctx context.Context, alertID int64) ([]entity.AlertHistoryEntry, error) {
	query := `
		SELECT id, alert_id, status, note, actor_id, created_at
		FROM alert_history
		WHERE alert_id = $1
		ORDER BY created_at, id`
	var out []entity.AlertHistoryEntry
	if err := pgxscan.Select(ctx, r.q, &out, query, alertID); err != nil {
		return nil, storageErr("list alert history", err)
	}
	return out, nil
}
