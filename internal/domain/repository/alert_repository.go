package repository

import (
	"context"
	"time"

	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
)

// AlertFilter filtros del listado de alertas; Status vacío = todas las abiertas.
type AlertFilter struct {
	Status entity.AlertStatus
	ItemID int64
	Limit  int
	Offset int
}

// AlertRepository define el puerto para las alertas de stock bajo.
// Las lecturas "ForUpdate" deben ejecutarse dentro de una transacción.
type AlertRepository interface {
	Create(ctx context.Context, alert *entity.LowStockAlert) error
	GetByID(ctx context.Context, id int64) (*entity.LowStockAlert, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*entity.LowStockAlert, error)
	// GetOpenByItemForUpdate alerta no resuelta del ítem (a lo sumo una), bloqueada.
	GetOpenByItemForUpdate(ctx context.Context, itemID int64) (*entity.LowStockAlert, error)
	Touch(ctx context.Context, id int64, at time.Time) error
	SetCritical(ctx context.Context, id int64, critical bool, at time.Time) error
	UpdateStatus(ctx context.Context, id int64, status entity.AlertStatus, acknowledgedBy *string, at time.Time) error
	List(ctx context.Context, filter AlertFilter) ([]entity.LowStockAlert, error)
	// ListOpenRecovered alertas abiertas cuyo ítem ya no está bajo el umbral.
	ListOpenRecovered(ctx context.Context) ([]entity.LowStockAlert, error)
}

// AlertHistoryRepository transiciones de estado, solo inserción.
type AlertHistoryRepository interface {
	Append(ctx context.Context, entry *entity.AlertHistoryEntry) error
	ListByAlert(ctx context.Context, alertID int64) ([]entity.AlertHistoryEntry, error)
}
