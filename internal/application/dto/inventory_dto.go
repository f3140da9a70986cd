package dto

import "time"

// AdjustStockRequest body para POST /api/items/:source/:code/adjustments.
// Mode: add | remove | set. En set, Amount es la cantidad objetivo.
type AdjustStockRequest struct {
	Mode   string `json:"mode" validate:"required,oneof=add remove set"`
	Amount int    `json:"amount" validate:"min=0"`
	Reason string `json:"reason" validate:"required"`
	Notes  string `json:"notes"`
}

// AdjustStockResponse cantidades antes y después del ajuste.
type AdjustStockResponse struct {
	OldQuantity int `json:"old_quantity"`
	NewQuantity int `json:"new_quantity"`
}

// HistoryRecordDTO registro del historial unificado de un ítem.
type HistoryRecordDTO struct {
	Source        string    `json:"source"` // audit | price_history
	ID            int64     `json:"id"`
	Action        string    `json:"action"`
	OldValue      string    `json:"old_value,omitempty"`
	NewValue      string    `json:"new_value,omitempty"`
	QuantityDelta *int      `json:"quantity_delta,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	ActorID       string    `json:"actor_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// HistoryResponse historial de un ítem, más reciente primero (máximo 100).
type HistoryResponse struct {
	Items []HistoryRecordDTO `json:"items"`
}

// AdjustmentReasonsResponse vocabulario de motivos de ajuste.
type AdjustmentReasonsResponse struct {
	Reasons     []string `json:"reasons"`
	OtherPrefix string   `json:"other_prefix"`
}
