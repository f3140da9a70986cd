package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bookstore-inventory/internal/application/dto"
	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
)

// ToItemResponse convierte la entidad a su salida HTTP.
func ToItemResponse(i *entity.Item) *dto.ItemResponse {
	if i == nil {
		return nil
	}
	return &dto.ItemResponse{
		Source:       string(i.Ref.Source),
		Code:         i.Ref.Code,
		Name:         i.Name,
		Price:        i.Price,
		Quantity:     i.Quantity,
		ReorderLevel: i.ReorderLevel,
		Grade:        i.Grade,
		Category:     i.Category,
		LowStock:     i.BelowThreshold(),
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

func ToAlertResponse(a *entity.LowStockAlert) *dto.AlertResponse {
	if a == nil {
		return nil
	}
	return &dto.AlertResponse{
		ID:               a.ID,
		ItemID:           a.ItemID,
		Status:           string(a.Status),
		IsCritical:       a.IsCritical,
		Threshold:        a.Threshold,
		QuantitySnapshot: a.QuantitySnapshot,
		CreatedBy:        a.CreatedBy,
		AcknowledgedBy:   a.AcknowledgedBy,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func ToAlertEvaluationResponse(e AlertEvaluation) *dto.AlertEvaluationResponse {
	return &dto.AlertEvaluationResponse{
		Breached:  e.Breached,
		Created:   e.Created,
		Refreshed: e.Refreshed,
		Alert:     ToAlertResponse(e.Alert),
	}
}

func ToSweepResponse(r SweepResult) *dto.SweepResponse {
	return &dto.SweepResponse{
		RunID:     r.RunID,
		Scanned:   r.Scanned,
		Created:   r.Created,
		Refreshed: r.Refreshed,
		Resolved:  r.Resolved,
	}
}

// ToHistoryResponse recorre el iterador del historial (máximo HistoryPageSize registros).
func ToHistoryResponse(h History) *dto.HistoryResponse {
	out := &dto.HistoryResponse{Items: make([]dto.HistoryRecordDTO, 0)}
	for r := range h.All() {
		out.Items = append(out.Items, dto.HistoryRecordDTO{
			Source:        string(r.Source),
			ID:            r.ID,
			Action:        string(r.Action),
			OldValue:      r.OldValue,
			NewValue:      r.NewValue,
			QuantityDelta: r.QuantityDelta,
			Reason:        r.Reason,
			Notes:         r.Notes,
			ActorID:       r.ActorID,
			CreatedAt:     r.CreatedAt,
		})
	}
	return out
}

func ToAlertHistoryResponse(entries []entity.AlertHistoryEntry) []dto.AlertHistoryEntryDTO {
	out := make([]dto.AlertHistoryEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.AlertHistoryEntryDTO{
			ID:        e.ID,
			Status:    string(e.Status),
			Note:      e.Note,
			ActorID:   e.ActorID,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}

// ToReplenishmentResponse arma la lista de reposición con sus totales.
func ToReplenishmentResponse(list []ReplenishmentSuggestion) *dto.ReplenishmentListResponse {
	out := &dto.ReplenishmentListResponse{
		Items:          make([]dto.ReplenishmentSuggestionDTO, 0, len(list)),
		EstimatedValue: decimal.Zero,
	}
	for _, s := range list {
		row := dto.ReplenishmentSuggestionDTO{
			Priority:       s.Priority,
			Source:         string(s.Item.Ref.Source),
			Code:           s.Item.Ref.Code,
			Name:           s.Item.Name,
			Quantity:       s.Item.Quantity,
			ReorderLevel:   s.Item.ReorderLevel,
			IdealStock:     s.IdealStock,
			SuggestedQty:   s.SuggestedQty,
			Price:          s.Item.Price,
			EstimatedValue: s.EstimatedValue,
			Critical:       s.Critical,
		}
		if s.Alert != nil {
			id := s.Alert.ID
			row.AlertID = &id
			row.AlertStatus = string(s.Alert.Status)
		}
		out.Items = append(out.Items, row)
		out.TotalUnits += s.SuggestedQty
		out.EstimatedValue = out.EstimatedValue.Add(s.EstimatedValue)
	}
	return out
}
