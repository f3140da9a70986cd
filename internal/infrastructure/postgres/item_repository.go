package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bookstore-inventory/internal/domain"
	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
	"github.com/jhoicas/bookstore-inventory/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, item_code, external_id, name, price, quantity, reorder_level, grade, category, created_at, updated_at`

// itemRow fila de items; exactamente uno de item_code / external_id viene lleno.
type itemRow struct {
	ID           int64           `db:"id"`
	ItemCode     *string         `db:"item_code"`
	ExternalID   *string         `db:"external_id"`
	Name         string          `db:"name"`
	Price        decimal.Decimal `db:"price"`
	Quantity     int             `db:"quantity"`
	ReorderLevel int             `db:"reorder_level"`
	Grade        string          `db:"grade"`
	Category     string          `db:"category"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func (r itemRow) toEntity() *entity.Item {
	ref := entity.ItemRef{}
	switch {
	case r.ItemCode != nil:
		ref = entity.Generated(*r.ItemCode)
	case r.ExternalID != nil:
		ref = entity.External(*r.ExternalID)
	}
	return &entity.Item{
		ID:           r.ID,
		Ref:          ref,
		Name:         r.Name,
		Price:        r.Price,
		Quantity:     r.Quantity,
		ReorderLevel: r.ReorderLevel,
		Grade:        r.Grade,
		Category:     r.Category,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// refColumn columna que resuelve la referencia según su origen.
func refColumn(ref entity.ItemRef) (string, error) {
	switch ref.Source {
	case entity.RefGenerated:
		return "item_code", nil
	case entity.RefExternal:
		return "external_id", nil
	}
	return "", domain.ErrInvalidInput
}

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador del catálogo. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create inserta el ítem y asigna item.ID. Un identificador repetido es ErrDuplicateIdentifier.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	col, err := refColumn(item.Ref)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO items (` + col + `, name, price, quantity, reorder_level, grade, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err = r.q.QueryRow(ctx, query,
		item.Ref.Code, item.Name, item.Price, item.Quantity, item.ReorderLevel,
		item.Grade, item.Category, item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateIdentifier
		}
		return storageErr("create item", err)
	}
	return nil
}

// GetByRef obtiene un ítem por referencia; (nil, nil) si no existe.
func (r *ItemRepo) GetByRef(ctx context.Context, ref entity.ItemRef) (*entity.Item, error) {
	return r.getByRef(ctx, ref, "")
}

// GetByRefForUpdate obtiene el ítem y bloquea la fila (SELECT FOR UPDATE).
func (r *ItemRepo) GetByRefForUpdate(ctx context.Context, ref entity.ItemRef) (*entity.Item, error) {
	return r.getByRef(ctx, ref, " FOR UPDATE")
}

func (r *ItemRepo) getByRef(ctx context.Context, ref entity.ItemRef, lock string) (*entity.Item, error) {
	col, err := refColumn(ref)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + itemColumns + ` FROM items WHERE ` + col + ` = $1` + lock
	return r.getOne(ctx, "get item", query, ref.Code)
}

// GetByIDForUpdate obtiene el ítem por id y bloquea la fila.
func (r *ItemRepo) GetByIDForUpdate(ctx context.Context, id int64) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, "get item for update", query, id)
}

func (r *ItemRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Item, error) {
	var row itemRow
	if err := pgxscan.Get(ctx, r.q, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, storageErr(op, err)
	}
	return row.toEntity(), nil
}

// UpdateQuantity fija la cantidad en mano. El CHECK quantity >= 0 es el respaldo en la base.
func (r *ItemRepo) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	query := `UPDATE items SET quantity = $1, updated_at = now() WHERE id = $2`
	tag, err := r.q.Exec(ctx, query, quantity, id)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %w", domain.ErrNegativeStockRejected, err)
		}
		return storageErr("update quantity", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateFields actualiza solo las columnas presentes en changes.
func (r *ItemRepo) UpdateFields(ctx context.Context, id int64, changes repository.ItemFieldChanges) error {
	if changes.Empty() {
		return nil
	}
	b := psql.Update("items").Set("updated_at", sq.Expr("now()")).Where(sq.Eq{"id": id})
	if changes.Name != nil {
		b = b.Set("name", *changes.Name)
	}
	if changes.Category != nil {
		b = b.Set("category", *changes.Category)
	}
	if changes.ReorderLevel != nil {
		b = b.Set("reorder_level", *changes.ReorderLevel)
	}
	if changes.Price != nil {
		price, err := decimal.NewFromString(*changes.Price)
		if err != nil {
			return domain.ErrInvalidInput
		}
		b = b.Set("price", price)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return storageErr("build update item", err)
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return storageErr("update item", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListBelowThreshold ítems con reorder_level > 0 y cantidad por debajo, ordenados por id.
func (r *ItemRepo) ListBelowThreshold(ctx context.Context) ([]entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
		WHERE reorder_level > 0 AND quantity < reorder_level
		ORDER BY id`
	var rows []itemRow
	if err := pgxscan.Select(ctx, r.q, &rows, query); err != nil {
		return nil, storageErr("list items below threshold", err)
	}
	out := make([]entity.Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.toEntity())
	}
	return out, nil
}
