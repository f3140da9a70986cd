package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/bookstore-inventory/internal/domain"
	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
	"github.com/jhoicas/bookstore-inventory/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

var alertColumns = []string{
	"id", "item_id", "status", "is_critical", "threshold", "quantity_snapshot",
	"created_by", "acknowledged_by", "created_at", "updated_at",
}

const alertSelect = `SELECT id, item_id, status, is_critical, threshold, quantity_snapshot,
	created_by, acknowledged_by, created_at, updated_at FROM low_stock_alerts`

// AlertRepo alertas de stock bajo (low_stock_alerts). El índice único parcial
// low_stock_alerts_one_open_idx garantiza a lo sumo una alerta no resuelta por ítem.
type AlertRepo struct {
	q Querier
}

// NewAlertRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAlertRepository(q Querier) *AlertRepo {
	return &AlertRepo{q: q}
}

// Create inserta la alerta. Si otra transacción ya abrió una para el ítem, la violación del
// índice parcial se reporta como fallo de almacenamiento reintentable.
func (r *AlertRepo) Create(ctx context.Context, a *entity.LowStockAlert) error {
	query := `
		INSERT INTO low_stock_alerts (item_id, status, is_critical, threshold, quantity_snapshot, created_by, acknowledged_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		a.ItemID, string(a.Status), a.IsCritical, a.Threshold, a.QuantitySnapshot,
		a.CreatedBy, a.AcknowledgedBy, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return storageErr("create alert: alerta abierta concurrente", err)
		}
		return storageErr("create alert", err)
	}
	return nil
}

func (r *AlertRepo) GetByID(ctx context.Context, id int64) (*entity.LowStockAlert, error) {
	return r.getOne(ctx, "get alert", alertSelect+` WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene la alerta y bloquea su fila.
func (r *AlertRepo) GetByIDForUpdate(ctx context.Context, id int64) (*entity.LowStockAlert, error) {
	return r.getOne(ctx, "get alert for update", alertSelect+` WHERE id = $1 FOR UPDATE`, id)
}

// GetOpenByItemForUpdate alerta no resuelta del ítem, bloqueada; (nil, nil) si no hay.
func (r *AlertRepo) GetOpenByItemForUpdate(ctx context.Context, itemID int64) (*entity.LowStockAlert, error) {
	query := alertSelect + ` WHERE item_id = $1 AND status <> 'resolved' FOR UPDATE`
	return r.getOne(ctx, "get open alert", query, itemID)
}

func (r *AlertRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.LowStockAlert, error) {
	var a entity.LowStockAlert
	if err := pgxscan.Get(ctx, r.q, &a, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, storageErr(op, err)
	}
	return &a, nil
}

// Touch solo actualiza updated_at (refresco del barrido).
func (r *AlertRepo) Touch(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx, "touch alert", `UPDATE low_stock_alerts SET updated_at = $1 WHERE id = $2`, at, id)
}

func (r *AlertRepo) SetCritical(ctx context.Context, id int64, critical bool, at time.Time) error {
	return r.exec(ctx, "set alert critical",
		`UPDATE low_stock_alerts SET is_critical = $1, updated_at = $2 WHERE id = $3`, critical, at, id)
}

func (r *AlertRepo) UpdateStatus(ctx context.Context, id int64, status entity.AlertStatus, acknowledgedBy *string, at time.Time) error {
	return r.exec(ctx, "update alert status",
		`UPDATE low_stock_alerts SET status = $1, acknowledged_by = $2, updated_at = $3 WHERE id = $4`,
		string(status), acknowledgedBy, at, id)
}

func (r *AlertRepo) exec(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return storageErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List filtra por estado e ítem; sin estado devuelve las no resueltas. Críticas primero.
func (r *AlertRepo) List(ctx context.Context, f repository.AlertFilter) ([]entity.LowStockAlert, error) {
	b := psql.Select(alertColumns...).From("low_stock_alerts").OrderBy("is_critical DESC", "id DESC")
	if f.Status != "" {
		b = b.Where(sq.Eq{"status": string(f.Status)})
	} else {
		b = b.Where(sq.NotEq{"status": string(entity.AlertResolved)})
	}
	if f.ItemID != 0 {
		b = b.Where(sq.Eq{"item_id": f.ItemID})
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		b = b.Offset(uint64(f.Offset))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, storageErr("build list alerts", err)
	}
	out := []entity.LowStockAlert{}
	if err := pgxscan.Select(ctx, r.q, &out, query, args...); err != nil {
		return nil, storageErr("list alerts", err)
	}
	return out, nil
}

// ListOpenRecovered alertas no resueltas cuyo ítem ya está en o sobre su umbral.
func (r *AlertRepo) ListOpenRecovered(ctx context.Context) ([]entity.LowStockAlert, error) {
	query := `
		SELECT a.id, a.item_id, a.status, a.is_critical, a.threshold, a.quantity_snapshot,
		       a.created_by, a.acknowledged_by, a.created_at, a.updated_at
		FROM low_stock_alerts a
		JOIN items i ON i.id = a.item_id
		WHERE a.status <> 'resolved'
		  AND NOT (i.reorder_level > 0 AND i.quantity < i.reorder_level)
		ORDER BY a.id`
	var out []entity.LowStockAlert
	if err := pgxscan.Select(ctx, r.q, &out, query); err != nil {
		return nil, storageErr("list recovered alerts", err)
	}
	return out, nil
}
