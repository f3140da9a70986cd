package repository

import (
	"context"

	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia del catálogo (DIP).
// Los métodos de lectura devuelven (nil, nil) si el ítem no existe.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByRef(ctx context.Context, ref entity.ItemRef) (*entity.Item, error)
	// GetByRefForUpdate bloquea la fila del ítem hasta el fin de la transacción (SELECT FOR UPDATE).
	GetByRefForUpdate(ctx context.Context, ref entity.ItemRef) (*entity.Item, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*entity.Item, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) error
	// UpdateFields persiste solo las columnas indicadas en changes.
	UpdateFields(ctx context.Context, id int64, changes ItemFieldChanges) error
	// ListBelowThreshold candidatos del barrido: reorder_level > 0 AND quantity < reorder_level.
	ListBelowThreshold(ctx context.Context) ([]entity.Item, error)
}

// ItemFieldChanges columnas editables de un ítem; nil = sin cambio.
type ItemFieldChanges struct {
	Name         *string
	Category     *string
	ReorderLevel *int
	Price        *string // decimal ya normalizado (FormatPrice)
}

// Empty indica que no hay columnas para actualizar.
func (c ItemFieldChanges) Empty() bool {
	return c.Name == nil && c.Category == nil && c.ReorderLevel == nil && c.Price == nil
}
