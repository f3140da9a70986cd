package repository

import (
	"context"

	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
)

// AuditRepository bitácora de auditoría, solo inserción.
type AuditRepository interface {
	Append(ctx context.Context, entry *entity.AuditEntry) error
	// ListByItem más recientes primero (created_at DESC, id DESC), omitiendo las acciones exclude.
	ListByItem(ctx context.Context, itemID int64, limit int, exclude ...entity.AuditAction) ([]entity.AuditEntry, error)
}

// PriceHistoryRepository historial de precios, solo inserción.
type PriceHistoryRepository interface {
	Append(ctx context.Context, entry *entity.PriceHistoryEntry) error
	ListByItem(ctx context.Context, itemID int64, limit int) ([]entity.PriceHistoryEntry, error)
}
