package dto

import "github.com/shopspring/decimal"

// ReplenishmentSuggestionDTO un ítem bajo su umbral con la cantidad sugerida de pedido.
type ReplenishmentSuggestionDTO struct {
	Priority       int             `json:"priority"`
	Source         string          `json:"source"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Quantity       int             `json:"quantity"`
	ReorderLevel   int             `json:"reorder_level"`
	IdealStock     int             `json:"ideal_stock"`
	SuggestedQty   int             `json:"suggested_order_qty"`
	Price          decimal.Decimal `json:"price"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	Critical       bool            `json:"is_critical"`
	AlertID        *int64          `json:"alert_id,omitempty"`
	AlertStatus    string          `json:"alert_status,omitempty"`
}

// ReplenishmentListResponse lista de reposición con totales.
type ReplenishmentListResponse struct {
	Items          []ReplenishmentSuggestionDTO `json:"items"`
	TotalUnits     int                          `json:"total_units"`
	EstimatedValue decimal.Decimal              `json:"estimated_value"`
}
