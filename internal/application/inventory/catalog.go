package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bookstore-inventory/internal/domain"
	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
	domaininv "github.com/jhoicas/bookstore-inventory/internal/domain/inventory"
	"github.com/jhoicas/bookstore-inventory/internal/domain/repository"
)

// CatalogUseCase alta y edición de ítems del catálogo con auditoría.
type CatalogUseCase struct {
	txRunner TxRunner
	items    repository.ItemRepository
	opts     options
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(txRunner TxRunner, items repository.ItemRepository, opts ...Option) *CatalogUseCase {
	return &CatalogUseCase{
		txRunner: txRunner,
		items:    items,
		opts:     buildOptions(opts),
	}
}

// NewItemInput datos de alta. Threshold nil = DefaultReorderLevel; ExternalID vacío = código generado.
type NewItemInput struct {
	Name       string
	Price      decimal.Decimal
	Category   string
	Grade      string
	Threshold  *int
	ExternalID string
	ActorID    string
}

// CreateItem registra un ítem con cantidad 0 y una entrada de auditoría CREATE.
func (uc *CatalogUseCase) CreateItem(ctx context.Context, in NewItemInput) (entity.ItemRef, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || strings.TrimSpace(in.ActorID) == "" || in.Price.IsNegative() {
		return entity.ItemRef{}, domain.ErrInvalidInput
	}
	threshold := entity.DefaultReorderLevel
	if in.Threshold != nil {
		if *in.Threshold < 0 {
			return entity.ItemRef{}, domain.ErrInvalidInput
		}
		threshold = *in.Threshold
	}

	now := uc.opts.now()
	ref := entity.Generated(domaininv.GenerateItemCode(name, now))
	if ext := strings.TrimSpace(in.ExternalID); ext != "" {
		ref = entity.External(ext)
	}

	grade, category := strings.TrimSpace(in.Grade), strings.TrimSpace(in.Category)
	if grade == "" || category == "" {
		c := domaininv.Classify(name)
		if grade == "" {
			grade = c.Grade
		}
		if category == "" {
			category = c.Category
		}
	}

	item := &entity.Item{
		Ref:          ref,
		Name:         name,
		Price:        in.Price.Round(2),
		Quantity:     0,
		ReorderLevel: threshold,
		Grade:        grade,
		Category:     category,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		existing, err := repos.Items.GetByRef(ctx, ref)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateIdentifier
		}
		if err := repos.Items.Create(ctx, item); err != nil {
			return err
		}
		snapshot, err := snapshotJSON(map[string]any{
			"ref":           ref.String(),
			"name":          item.Name,
			"price":         domaininv.FormatPrice(item.Price),
			"quantity":      item.Quantity,
			"reorder_level": item.ReorderLevel,
			"grade":         item.Grade,
			"category":      item.Category,
		})
		if err != nil {
			return err
		}
		return repos.Audit.Append(ctx, &entity.AuditEntry{
			ItemID:    item.ID,
			ActorID:   in.ActorID,
			Action:    entity.AuditCreate,
			NewValue:  snapshot,
			CreatedAt: now,
		})
	})
	if err != nil {
		return entity.ItemRef{}, err
	}

	uc.opts.log.Info().Str("item", ref.String()).Str("actor", in.ActorID).Msg("ítem creado")
	return ref, nil
}

// GetItem obtiene un ítem por referencia.
func (uc *CatalogUseCase) GetItem(ctx context.Context, ref entity.ItemRef) (*entity.Item, error) {
	if !ref.Valid() {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.items.GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// ItemChanges edición parcial; nil = campo no enviado.
type ItemChanges struct {
	Name      *string
	Category  *string
	Threshold *int
	Price     *decimal.Decimal
}

// UpdateResult qué se aplicó realmente.
type UpdateResult struct {
	Changed      bool
	PriceChanged bool
}

// UpdateItem aplica solo los campos que difieren del valor guardado.
// Si cambia el precio se audita únicamente PRICE_UPDATE (más la fila de price_history),
// aunque cambien también otros campos; si no, una sola entrada UPDATE con ambas fotos.
func (uc *CatalogUseCase) UpdateItem(ctx context.Context, ref entity.ItemRef, changes ItemChanges, actorID string) (UpdateResult, error) {
	if !ref.Valid() || strings.TrimSpace(actorID) == "" {
		return UpdateResult{}, domain.ErrInvalidInput
	}
	if changes.Threshold != nil && *changes.Threshold < 0 {
		return UpdateResult{}, domain.ErrInvalidInput
	}
	if changes.Price != nil && changes.Price.IsNegative() {
		return UpdateResult{}, domain.ErrInvalidInput
	}
	if changes.Name != nil && strings.TrimSpace(*changes.Name) == "" {
		return UpdateResult{}, domain.ErrInvalidInput
	}

	var res UpdateResult
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		item, err := repos.Items.GetByRefForUpdate(ctx, ref)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		var fields repository.ItemFieldChanges
		oldSnap, newSnap := map[string]any{}, map[string]any{}
		if changes.Name != nil {
			if name := strings.TrimSpace(*changes.Name); name != item.Name {
				fields.Name = &name
				oldSnap["name"], newSnap["name"] = item.Name, name
			}
		}
		if changes.Category != nil {
			if cat := strings.TrimSpace(*changes.Category); cat != item.Category {
				fields.Category = &cat
				oldSnap["category"], newSnap["category"] = item.Category, cat
			}
		}
		if changes.Threshold != nil && *changes.Threshold != item.ReorderLevel {
			t := *changes.Threshold
			fields.ReorderLevel = &t
			oldSnap["reorder_level"], newSnap["reorder_level"] = item.ReorderLevel, t
		}
		var oldPrice, newPrice string
		if changes.Price != nil && !changes.Price.Round(2).Equal(item.Price) {
			oldPrice, newPrice = domaininv.FormatPrice(item.Price), domaininv.FormatPrice(changes.Price.Round(2))
			fields.Price = &newPrice
		}
		if fields.Empty() {
			return nil
		}
		if err := repos.Items.UpdateFields(ctx, item.ID, fields); err != nil {
			return err
		}
		res.Changed = true
		now := uc.opts.now()

		if fields.Price != nil {
			res.PriceChanged = true
			if err := repos.Audit.Append(ctx, &entity.AuditEntry{
				ItemID:    item.ID,
				ActorID:   actorID,
				Action:    entity.AuditPriceUpdate,
				OldValue:  oldPrice,
				NewValue:  newPrice,
				CreatedAt: now,
			}); err != nil {
				return err
			}
			return repos.Prices.Append(ctx, &entity.PriceHistoryEntry{
				ItemID:    item.ID,
				OldPrice:  oldPrice,
				NewPrice:  newPrice,
				ActorID:   actorID,
				CreatedAt: now,
			})
		}

		oldJSON, err := snapshotJSON(oldSnap)
		if err != nil {
			return err
		}
		newJSON, err := snapshotJSON(newSnap)
		if err != nil {
			return err
		}
		return repos.Audit.Append(ctx, &entity.AuditEntry{
			ItemID:    item.ID,
			ActorID:   actorID,
			Action:    entity.AuditUpdate,
			OldValue:  oldJSON,
			NewValue:  newJSON,
			CreatedAt: now,
		})
	})
	if err != nil {
		return UpdateResult{}, err
	}
	if res.Changed {
		uc.opts.log.Info().
			Str("item", ref.String()).
			Bool("price_changed", res.PriceChanged).
			Str("actor", actorID).
			Msg("ítem actualizado")
	}
	return res, nil
}

// snapshotJSON serializa una foto de campos; encoding/json ordena las llaves del mapa.
func snapshotJSON(fields map[string]any) (string, error) {
	b, err := json.Marshal(fields)
	if err != nil {
		return "", errors.Join(domain.ErrInvalidInput, err)
	}
	return string(b), nil
}
