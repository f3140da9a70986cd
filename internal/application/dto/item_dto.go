package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest body para POST /api/items. Price admite formato de moneda ("$12.50").
type CreateItemRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=300"`
	Price        string `json:"price" validate:"required"`
	Category     string `json:"category"`
	Grade        string `json:"grade"`
	ReorderLevel *int   `json:"reorder_level" validate:"omitempty,min=0"`
	ExternalID   string `json:"external_id"`
}

// UpdateItemRequest body para PATCH /api/items/:source/:code; campos ausentes no se tocan.
type UpdateItemRequest struct {
	Name         *string `json:"name"`
	Category     *string `json:"category"`
	ReorderLevel *int    `json:"reorder_level" validate:"omitempty,min=0"`
	Price        *string `json:"price"`
}

// ItemRefResponse referencia de un ítem recién creado.
type ItemRefResponse struct {
	Source string `json:"source"`
	Code   string `json:"code"`
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	Source       string          `json:"source"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	ReorderLevel int             `json:"reorder_level"`
	Grade        string          `json:"grade,omitempty"`
	Category     string          `json:"category"`
	LowStock     bool            `json:"low_stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// UpdateItemResponse resultado de una edición parcial.
type UpdateItemResponse struct {
	Changed      bool `json:"changed"`
	PriceChanged bool `json:"price_changed"`
}
