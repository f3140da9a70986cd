package dto

import "time"

// ConfigureThresholdRequest body para PUT /api/items/:source/:code/threshold.
type ConfigureThresholdRequest struct {
	ReorderLevel int  `json:"reorder_level" validate:"min=0"`
	IsCritical   bool `json:"is_critical"`
}

// TransitionRequest body para POST /api/alerts/:id/transition.
type TransitionRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

// AlertNoteRequest body opcional para acknowledge / reorder.
type AlertNoteRequest struct {
	Notes string `json:"notes"`
}

// AlertResponse salida de una alerta de stock bajo.
type AlertResponse struct {
	ID               int64     `json:"id"`
	ItemID           int64     `json:"item_id"`
	Status           string    `json:"status"`
	IsCritical       bool      `json:"is_critical"`
	Threshold        int       `json:"threshold"`
	QuantitySnapshot int       `json:"quantity_snapshot"`
	CreatedBy        string    `json:"created_by"`
	AcknowledgedBy   *string   `json:"acknowledged_by,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AlertListResponse lista paginada de alertas.
type AlertListResponse struct {
	Items []AlertResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// AlertEvaluationResponse resultado de configurar el umbral de un ítem.
type AlertEvaluationResponse struct {
	Breached  bool           `json:"breached"`
	Created   bool           `json:"created"`
	Refreshed bool           `json:"refreshed"`
	Alert     *AlertResponse `json:"alert,omitempty"`
}

// SweepResponse conteos de un barrido de umbrales.
type SweepResponse struct {
	RunID     string `json:"run_id"`
	Scanned   int    `json:"scanned"`
	Created   int    `json:"created"`
	Refreshed int    `json:"refreshed"`
	Resolved  int    `json:"resolved"`
}

// AlertHistoryEntryDTO fila del historial de transiciones.
type AlertHistoryEntryDTO struct {
	ID        int64     `json:"id"`
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	ActorID   string    `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}
