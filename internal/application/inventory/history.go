package inventory

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"strconv"
	"time"

	"github.com/jhoicas/bookstore-inventory/internal/domain"
	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
	"github.com/jhoicas/bookstore-inventory/internal/domain/repository"
)

// HistoryPageSize máximo de registros que devuelve el lector de historial.
const HistoryPageSize = 100

// HistorySource origen de un registro del historial unificado.
type HistorySource string

const (
	SourcePriceHistory HistorySource = "price_history"
	SourceAudit        HistorySource = "audit"
)

// HistoryRecord vista unificada de una entrada de auditoría o de historial de precios.
type HistoryRecord struct {
	Source        HistorySource
	ID            int64
	Action        entity.AuditAction
	OldValue      string
	NewValue      string
	QuantityDelta *int
	Reason        string
	Notes         string
	ActorID       string
	CreatedAt     time.Time
}

// History resultado de GetHistory. All puede recorrerse varias veces.
type History struct {
	audit  []entity.AuditEntry
	prices []entity.PriceHistoryEntry
}

// All mezcla ambas fuentes por fecha descendente; en empate va primero el historial
// de precios y luego el id mayor. Se detiene a los HistoryPageSize registros.
func (h History) All() iter.Seq[HistoryRecord] {
	return func(yield func(HistoryRecord) bool) {
		i, j := 0, 0
		for n := 0; n < HistoryPageSize; n++ {
			var rec HistoryRecord
			switch {
			case i < len(h.prices) && j < len(h.audit):
				if priceFirst(h.prices[i], h.audit[j]) {
					rec = fromPrice(h.prices[i])
					i++
				} else {
					rec = fromAudit(h.audit[j])
					j++
				}
			case i < len(h.prices):
				rec = fromPrice(h.prices[i])
				i++
			case j < len(h.audit):
				rec = fromAudit(h.audit[j])
				j++
			default:
				return
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// Records materializa All.
func (h History) Records() []HistoryRecord {
	return slices.Collect(h.All())
}

func priceFirst(p entity.PriceHistoryEntry, a entity.AuditEntry) bool {
	return !p.CreatedAt.Before(a.CreatedAt)
}

func fromPrice(p entity.PriceHistoryEntry) HistoryRecord {
	return HistoryRecord{
		Source:    SourcePriceHistory,
		ID:        p.ID,
		Action:    entity.AuditPriceUpdate,
		OldValue:  p.OldPrice,
		NewValue:  p.NewPrice,
		ActorID:   p.ActorID,
		CreatedAt: p.CreatedAt,
	}
}

func fromAudit(a entity.AuditEntry) HistoryRecord {
	return HistoryRecord{
		Source:        SourceAudit,
		ID:            a.ID,
		Action:        a.Action,
		OldValue:      a.OldValue,
		NewValue:      a.NewValue,
		QuantityDelta: a.QuantityDelta,
		Reason:        a.Reason,
		Notes:         a.Notes,
		ActorID:       a.ActorID,
		CreatedAt:     a.CreatedAt,
	}
}

// HistoryUseCase lector de historial por ítem. Solo lectura, sobre el pool (read committed).
type HistoryUseCase struct {
	items  repository.ItemRepository
	audit  repository.AuditRepository
	prices repository.PriceHistoryRepository
}

// NewHistoryUseCase construye el caso de uso.
func NewHistoryUseCase(items repository.ItemRepository, audit repository.AuditRepository, prices repository.PriceHistoryRepository) *HistoryUseCase {
	return &HistoryUseCase{items: items, audit: audit, prices: prices}
}

// GetHistory lee auditoría (sin PRICE_UPDATE, cuya fuente autoritativa es price_history)
// e historial de precios del ítem.
func (uc *HistoryUseCase) GetHistory(ctx context.Context, ref entity.ItemRef) (History, error) {
	if !ref.Valid() {
		return History{}, domain.ErrInvalidInput
	}
	item, err := uc.items.GetByRef(ctx, ref)
	if err != nil {
		return History{}, err
	}
	if item == nil {
		return History{}, domain.ErrNotFound
	}
	audit, err := uc.audit.ListByItem(ctx, item.ID, HistoryPageSize, entity.AuditPriceUpdate)
	if err != nil {
		return History{}, err
	}
	prices, err := uc.prices.ListByItem(ctx, item.ID, HistoryPageSize)
	if err != nil {
		return History{}, err
	}
	slices.SortStableFunc(audit, func(a, b entity.AuditEntry) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	slices.SortStableFunc(prices, func(a, b entity.PriceHistoryEntry) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return History{audit: audit, prices: prices}, nil
}

func newestFirst(ta, tb time.Time, ida, idb int64) int {
	if c := tb.Compare(ta); c != 0 {
		return c
	}
	return cmp.Compare(idb, ida)
}

// String identificador estable del registro ("audit:12").
func (r HistoryRecord) String() string {
	return string(r.Source) + ":" + strconv.FormatInt(r.ID, 10)
}
