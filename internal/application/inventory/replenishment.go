package inventory

import (
	"cmp"
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
	domaininv "github.com/jhoicas/bookstore-inventory/internal/domain/inventory"
	"github.com/jhoicas/bookstore-inventory/internal/domain/repository"
)

// ReplenishmentSuggestion un ítem bajo su umbral con la cantidad sugerida de pedido.
type ReplenishmentSuggestion struct {
	Item           entity.Item
	IdealStock     int
	SuggestedQty   int
	EstimatedValue decimal.Decimal // SuggestedQty × precio de venta
	Critical       bool
	Alert          *entity.LowStockAlert // alerta abierta del ítem, si la hay
	Priority       int                   // 1 = más urgente
}

// ReplenishmentUseCase arma la lista de reposición a partir de los ítems bajo umbral.
// Solo lectura: no crea ni modifica alertas.
type ReplenishmentUseCase struct {
	items  repository.ItemRepository
	alerts repository.AlertRepository
	opts   options
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(items repository.ItemRepository, alerts repository.AlertRepository, opts ...Option) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{items: items, alerts: alerts, opts: buildOptions(opts)}
}

// GenerateList devuelve los ítems bajo umbral ordenados por urgencia:
// primero los críticos, luego mayor déficit relativo al umbral, luego mayor déficit absoluto.
// La criticidad de una alerta abierta prevalece sobre la regla calculada.
func (uc *ReplenishmentUseCase) GenerateList(ctx context.Context) ([]ReplenishmentSuggestion, error) {
	below, err := uc.items.ListBelowThreshold(ctx)
	if err != nil {
		return nil, err
	}
	if len(below) == 0 {
		return []ReplenishmentSuggestion{}, nil
	}

	open, err := uc.alerts.List(ctx, repository.AlertFilter{})
	if err != nil {
		return nil, err
	}
	alertByItem := make(map[int64]entity.LowStockAlert, len(open))
	for _, a := range open {
		alertByItem[a.ItemID] = a
	}

	out := make([]ReplenishmentSuggestion, 0, len(below))
	for _, item := range below {
		ideal, qty := domaininv.SuggestedOrder(item.Quantity, item.ReorderLevel)
		s := ReplenishmentSuggestion{
			Item:           item,
			IdealStock:     ideal,
			SuggestedQty:   qty,
			EstimatedValue: item.Price.Mul(decimal.NewFromInt(int64(qty))),
			Critical:       domaininv.IsCritical(item.Quantity, item.ReorderLevel),
		}
		if a, ok := alertByItem[item.ID]; ok {
			s.Alert = &a
			s.Critical = a.IsCritical
		}
		out = append(out, s)
	}

	slices.SortStableFunc(out, func(a, b ReplenishmentSuggestion) int {
		if a.Critical != b.Critical {
			if a.Critical {
				return -1
			}
			return 1
		}
		defA := int64(a.Item.ReorderLevel - a.Item.Quantity)
		defB := int64(b.Item.ReorderLevel - b.Item.Quantity)
		// defA/thrA vs defB/thrB sin división
		if c := cmp.Compare(defB*int64(a.Item.ReorderLevel), defA*int64(b.Item.ReorderLevel)); c != 0 {
			return c
		}
		if c := cmp.Compare(defB, defA); c != 0 {
			return c
		}
		return cmp.Compare(a.Item.ID, b.Item.ID)
	})
	for i := range out {
		out[i].Priority = i + 1
	}

	uc.opts.log.Debug().Int("items", len(out)).Msg("lista de reposición generada")
	return out, nil
}
