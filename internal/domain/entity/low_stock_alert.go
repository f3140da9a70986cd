package entity

import "time"

// AlertStatus estados del ciclo de vida de una alerta de stock bajo.
type AlertStatus string

const (
	AlertPending          AlertStatus = "pending"
	AlertAcknowledged     AlertStatus = "acknowledged"
	AlertReorderInitiated AlertStatus = "reorder_initiated"
	AlertResolved         AlertStatus = "resolved"
)

// AlertStatuses lista ordenada de estados válidos.
var AlertStatuses = []AlertStatus{AlertPending, AlertAcknowledged, AlertReorderInitiated, AlertResolved}

// ParseAlertStatus valida un estado recibido desde fuera del dominio.
func ParseAlertStatus(s string) (AlertStatus, bool) {
	for _, st := range AlertStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Open indica si el estado cuenta para la regla "a lo sumo una alerta abierta por ítem".
func (s AlertStatus) Open() bool {
	return s == AlertPending || s == AlertAcknowledged || s == AlertReorderInitiated
}

// LowStockAlert alerta por cantidad bajo el umbral de reorden de un ítem.
// Threshold y QuantitySnapshot son los valores al momento de crearla.
type LowStockAlert struct {
	ID               int64
	ItemID           int64
	Status           AlertStatus
	IsCritical       bool
	Threshold        int
	QuantitySnapshot int
	CreatedBy        string
	AcknowledgedBy   *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AlertHistoryEntry registro inmutable de una transición de estado.
type AlertHistoryEntry struct {
	ID        int64
	AlertID   int64
	Status    AlertStatus
	Note      string
	ActorID   string
	CreatedAt time.Time
}
