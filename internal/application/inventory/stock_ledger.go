package inventory

import (
	"context"
	"strconv"
	"strings"

	"github.com/jhoicas/bookstore-inventory/internal/domain"
	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
	domaininv "github.com/jhoicas/bookstore-inventory/internal/domain/inventory"
	"github.com/jhoicas/bookstore-inventory/internal/domain/repository"
)

// StockLedgerUseCase aplica ajustes de cantidad de forma transaccional
// con bloqueo de fila (SELECT FOR UPDATE) y una entrada de auditoría por ajuste.
// No evalúa alertas: eso lo hace AlertUseCase de forma explícita.
type StockLedgerUseCase struct {
	txRunner TxRunner
	items    repository.ItemRepository
	opts     options
}

// NewStockLedgerUseCase construye el caso de uso. items se usa solo para lecturas fuera de la tx.
func NewStockLedgerUseCase(txRunner TxRunner, items repository.ItemRepository, opts ...Option) *StockLedgerUseCase {
	return &StockLedgerUseCase{
		txRunner: txRunner,
		items:    items,
		opts:     buildOptions(opts),
	}
}

// AdjustInput entrada de AdjustStock. Delta positivo = entrada, negativo = salida.
type AdjustInput struct {
	Ref     entity.ItemRef
	Delta   int
	Reason  string
	Notes   string
	ActorID string
}

// AdjustResult cantidades antes y después del ajuste.
type AdjustResult struct {
	OldQuantity int
	NewQuantity int
}

// AdjustStock bloquea la fila del ítem, valida que la cantidad no quede negativa,
// persiste la nueva cantidad y agrega la auditoría ADJUST_STOCK en la misma transacción.
func (uc *StockLedgerUseCase) AdjustStock(ctx context.Context, in AdjustInput) (AdjustResult, error) {
	if !in.Ref.Valid() || in.Delta == 0 || !domaininv.ValidDelta(in.Delta) || strings.TrimSpace(in.ActorID) == "" {
		return AdjustResult{}, domain.ErrInvalidInput
	}
	if err := domaininv.ValidateReason(in.Reason); err != nil {
		return AdjustResult{}, err
	}

	var res AdjustResult
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		item, err := repos.Items.GetByRefForUpdate(ctx, in.Ref)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		next, err := domaininv.ApplyDelta(item.Quantity, in.Delta)
		if err != nil {
			return err
		}
		if err := repos.Items.UpdateQuantity(ctx, item.ID, next); err != nil {
			return err
		}

		delta := in.Delta
		entry := &entity.AuditEntry{
			ItemID:        item.ID,
			ActorID:       in.ActorID,
			Action:        entity.AuditAdjustStock,
			OldValue:      strconv.Itoa(item.Quantity),
			NewValue:      strconv.Itoa(next),
			QuantityDelta: &delta,
			Reason:        in.Reason,
			Notes:         in.Notes,
			CreatedAt:     uc.opts.now(),
		}
		if err := repos.Audit.Append(ctx, entry); err != nil {
			return err
		}
		res = AdjustResult{OldQuantity: item.Quantity, NewQuantity: next}
		return nil
	})
	if err != nil {
		return AdjustResult{}, err
	}

	uc.opts.log.Info().
		Str("item", in.Ref.String()).
		Int("delta", in.Delta).
		Int("old_quantity", res.OldQuantity).
		Int("new_quantity", res.NewQuantity).
		Str("reason", in.Reason).
		Str("actor", in.ActorID).
		Msg("ajuste de stock aplicado")
	return res, nil
}

// AdjustByModeInput entrada en términos de la UI: agregar, retirar o fijar un valor.
type AdjustByModeInput struct {
	Ref     entity.ItemRef
	Mode    domaininv.AdjustMode
	Amount  int
	Reason  string
	Notes   string
	ActorID string
}

// AdjustByMode lee la cantidad actual fuera de la transacción, calcula el delta con signo
// y delega en AdjustStock. En modo "set" el delta queda fijado contra esa lectura.
func (uc *StockLedgerUseCase) AdjustByMode(ctx context.Context, in AdjustByModeInput) (AdjustResult, error) {
	if !in.Ref.Valid() {
		return AdjustResult{}, domain.ErrInvalidInput
	}
	item, err := uc.items.GetByRef(ctx, in.Ref)
	if err != nil {
		return AdjustResult{}, err
	}
	if item == nil {
		return AdjustResult{}, domain.ErrNotFound
	}
	delta, err := domaininv.ComputeDelta(in.Mode, in.Amount, item.Quantity)
	if err != nil {
		return AdjustResult{}, err
	}
	return uc.AdjustStock(ctx, AdjustInput{
		Ref:     in.Ref,
		Delta:   delta,
		Reason:  in.Reason,
		Notes:   in.Notes,
		ActorID: in.ActorID,
	})
}
