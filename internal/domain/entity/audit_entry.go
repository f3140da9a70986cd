package entity

import "time"

// AuditAction tipo de mutación registrada en la bitácora de auditoría.
type AuditAction string

const (
	AuditCreate      AuditAction = "CREATE"
	AuditUpdate      AuditAction = "UPDATE"
	AuditAdjustStock AuditAction = "ADJUST_STOCK"
	AuditPriceUpdate AuditAction = "PRICE_UPDATE"
)

// AuditEntry registro inmutable de una mutación sobre un ítem.
// QuantityDelta solo se llena en ADJUST_STOCK.
type AuditEntry struct {
	ID            int64
	ItemID        int64
	ActorID       string
	Action        AuditAction
	OldValue      string
	NewValue      string
	QuantityDelta *int
	Reason        string
	Notes         string
	CreatedAt     time.Time
}

// PriceHistoryEntry registro inmutable de un cambio de precio.
// Es la fuente autoritativa para la línea de tiempo de precios; se escribe además de la auditoría.
type PriceHistoryEntry struct {
	ID        int64
	ItemID    int64
	OldPrice  string
	NewPrice  string
	ActorID   string
	CreatedAt time.Time
}
