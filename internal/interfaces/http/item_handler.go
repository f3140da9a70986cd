package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/bookstore-inventory/internal/application/dto"
	"github.com/jhoicas/bookstore-inventory/internal/application/inventory"
	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
	domaininv "github.com/jhoicas/bookstore-inventory/internal/domain/inventory"
)

// ItemHandler catálogo, ajustes de stock e historial de ítems (protegido).
type ItemHandler struct {
	catalog *inventory.CatalogUseCase
	ledger  *inventory.StockLedgerUseCase
	history *inventory.HistoryUseCase
	log     zerolog.Logger
}

// NewItemHandler construye el handler.
func NewItemHandler(catalog *inventory.CatalogUseCase, ledger *inventory.StockLedgerUseCase, history *inventory.HistoryUseCase, log zerolog.Logger) *ItemHandler {
	return &ItemHandler{catalog: catalog, ledger: ledger, history: history, log: log}
}

// itemRef arma la referencia desde los parámetros :source/:code.
func itemRef(c *fiber.Ctx) (entity.ItemRef, bool) {
	src, ok := entity.ParseRefSource(c.Params("source"))
	if !ok {
		return entity.ItemRef{}, false
	}
	ref := entity.ItemRef{Source: src, Code: c.Params("code")}
	return ref, ref.Valid()
}

func invalidRef(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "referencia de ítem inválida: use generated|external y un código"})
}

// Create godoc
// @Summary      Crear ítem
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "Datos del ítem"
// @Success      201   {object}  dto.ItemRefResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	price, err := domaininv.ParsePrice(in.Price)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "precio inválido"})
	}
	ref, err := h.catalog.CreateItem(c.Context(), inventory.NewItemInput{
		Name:       in.Name,
		Price:      price,
		Category:   in.Category,
		Grade:      in.Grade,
		Threshold:  in.ReorderLevel,
		ExternalID: in.ExternalID,
		ActorID:    GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ItemRefResponse{Source: string(ref.Source), Code: ref.Code})
}

// Get godoc
// @Summary      Obtener ítem
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        source  path  string  true  "generated | external"
// @Param        code    path  string  true  "Código del ítem"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{source}/{code} [get]
func (h *ItemHandler) Get(c *fiber.Ctx) error {
	ref, ok := itemRef(c)
	if !ok {
		return invalidRef(c)
	}
	item, err := h.catalog.GetItem(c.Context(), ref)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(inventory.ToItemResponse(item))
}

// Update godoc
// @Summary      Editar ítem (parcial)
// @Description  Solo se escriben los campos que cambian. Un cambio de precio queda en price_history.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        source  path  string  true  "generated | external"
// @Param        code    path  string  true  "Código del ítem"
// @Param        body    body  dto.UpdateItemRequest  true  "Campos a modificar"
// @Success      200  {object}  dto.UpdateItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{source}/{code} [patch]
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	ref, ok := itemRef(c)
	if !ok {
		return invalidRef(c)
	}
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	changes := inventory.ItemChanges{Name: in.Name, Category: in.Category, Threshold: in.ReorderLevel}
	if in.Price != nil {
		price, err := domaininv.ParsePrice(*in.Price)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "precio inválido"})
		}
		changes.Price = &price
	}
	res, err := h.catalog.UpdateItem(c.Context(), ref, changes, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.UpdateItemResponse{Changed: res.Changed, PriceChanged: res.PriceChanged})
}

// Adjust godoc
// @Summary      Ajustar stock
// @Description  mode add/remove suma o resta amount; set fija la cantidad. reason del vocabulario o "Other: ...".
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        source  path  string  true  "generated | external"
// @Param        code    path  string  true  "Código del ítem"
// @Param        body    body  dto.AdjustStockRequest  true  "Ajuste"
// @Success      200  {object}  dto.AdjustStockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/items/{source}/{code}/adjustments [post]
func (h *ItemHandler) Adjust(c *fiber.Ctx) error {
	ref, ok := itemRef(c)
	if !ok {
		return invalidRef(c)
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.ledger.AdjustByMode(c.Context(), inventory.AdjustByModeInput{
		Ref:     ref,
		Mode:    domaininv.AdjustMode(in.Mode),
		Amount:  in.Amount,
		Reason:  in.Reason,
		Notes:   in.Notes,
		ActorID: GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.AdjustStockResponse{OldQuantity: res.OldQuantity, NewQuantity: res.NewQuantity})
}

// History godoc
// @Summary      Historial del ítem
// @Description  Auditoría y cambios de precio combinados, más reciente primero (máximo 100).
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        source  path  string  true  "generated | external"
// @Param        code    path  string  true  "Código del ítem"
// @Success      200  {object}  dto.HistoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{source}/{code}/history [get]
func (h *ItemHandler) History(c *fiber.Ctx) error {
	ref, ok := itemRef(c)
	if !ok {
		return invalidRef(c)
	}
	hist, err := h.history.GetHistory(c.Context(), ref)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(inventory.ToHistoryResponse(hist))
}

// Reasons godoc
// @Summary      Motivos de ajuste
// @Tags         items
// @Produce      json
// @Success      200  {object}  dto.AdjustmentReasonsResponse
// @Router       /api/adjustment-reasons [get]
func (h *ItemHandler) Reasons(c *fiber.Ctx) error {
	return c.JSON(dto.AdjustmentReasonsResponse{
		Reasons:     domaininv.AdjustmentReasons,
		OtherPrefix: domaininv.ReasonOtherPrefix,
	})
}

