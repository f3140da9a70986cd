package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/bookstore-inventory/internal/application/dto"
	"github.com/jhoicas/bookstore-inventory/internal/application/inventory"
	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
	"github.com/jhoicas/bookstore-inventory/internal/domain/repository"
)

// AlertHandler umbrales y ciclo de vida de alertas de stock bajo (protegido).
type AlertHandler struct {
	uc      *inventory.AlertUseCase
	restock *inventory.ReplenishmentUseCase
	log     zerolog.Logger
}

// NewAlertHandler construye el handler.
func NewAlertHandler(uc *inventory.AlertUseCase, restock *inventory.ReplenishmentUseCase, log zerolog.Logger) *AlertHandler {
	return &AlertHandler{uc: uc, restock: restock, log: log}
}

func alertID(c *fiber.Ctx) (int64, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return int64(id), true
}

func invalidAlertID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id de alerta inválido"})
}

// ConfigureThreshold godoc
// @Summary      Configurar umbral de reorden
// @Description  Fija el umbral y evalúa el ítem en la misma transacción.
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        source  path  string  true  "generated | external"
// @Param        code    path  string  true  "Código del ítem"
// @Param        body    body  dto.ConfigureThresholdRequest  true  "Umbral y criticidad"
// @Success      200  {object}  dto.AlertEvaluationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{source}/{code}/threshold [put]
func (h *AlertHandler) ConfigureThreshold(c *fiber.Ctx) error {
	ref, ok := itemRef(c)
	if !ok {
		return invalidRef(c)
	}
	var in dto.ConfigureThresholdRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	ev, err := h.uc.ConfigureThreshold(c.Context(), ref, in.ReorderLevel, in.IsCritical, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(inventory.ToAlertEvaluationResponse(ev))
}

// Evaluate godoc
// @Summary      Barrido de umbrales
// @Description  Evalúa todos los ítems bajo su umbral. Idempotente.
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SweepResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/alerts/evaluate [post]
func (h *AlertHandler) Evaluate(c *fiber.Ctx) error {
	res, err := h.uc.EvaluateThresholds(c.Context(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(inventory.ToSweepResponse(res))
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Ítems bajo su umbral con stock ideal (umbral × 1.5) y cantidad sugerida. Críticos primero.
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReplenishmentListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/alerts/replenishment [get]
func (h *AlertHandler) Replenishment(c *fiber.Ctx) error {
	list, err := h.restock.GenerateList(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(inventory.ToReplenishmentResponse(list))
}

// List godoc
// @Summary      Listar alertas
// @Description  Sin status devuelve las alertas abiertas. Críticas primero.
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        status   query  string  false  "pending | acknowledged | reorder_initiated | resolved"
// @Param        limit    query  int     false  "Límite"  default(20)
// @Param        offset   query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.AlertListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/alerts [get]
func (h *AlertHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()

	filter := repository.AlertFilter{Limit: page.Limit, Offset: page.Offset}
	if s := c.Query("status"); s != "" {
		st, ok := entity.ParseAlertStatus(s)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_STATUS", Message: "estado de alerta inválido"})
		}
		filter.Status = st
	}
	alerts, err := h.uc.ListAlerts(c.Context(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.AlertListResponse{
		Items: make([]dto.AlertResponse, 0, len(alerts)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for i := range alerts {
		out.Items = append(out.Items, *inventory.ToAlertResponse(&alerts[i]))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener alerta
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la alerta"
// @Success      200  {object}  dto.AlertResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/alerts/{id} [get]
func (h *AlertHandler) Get(c *fiber.Ctx) error {
	id, ok := alertID(c)
	if !ok {
		return invalidAlertID(c)
	}
	a, err := h.uc.GetAlert(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(inventory.ToAlertResponse(a))
}

// History godoc
// @Summary      Historial de la alerta
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la alerta"
// @Success      200  {array}   dto.AlertHistoryEntryDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/alerts/{id}/history [get]
func (h *AlertHandler) History(c *fiber.Ctx) error {
	id, ok := alertID(c)
	if !ok {
		return invalidAlertID(c)
	}
	entries, err := h.uc.GetAlertHistory(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(inventory.ToAlertHistoryResponse(entries))
}

// Transition godoc
// @Summary      Cambiar estado de la alerta
// @Description  resolved es terminal.
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la alerta"
// @Param        body  body  dto.TransitionRequest  true  "Estado destino y notas"
// @Success      200  {object}  dto.AlertResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/alerts/{id}/transition [post]
func (h *AlertHandler) Transition(c *fiber.Ctx) error {
	id, ok := alertID(c)
	if !ok {
		return invalidAlertID(c)
	}
	var in dto.TransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	a, err := h.uc.Transition(c.Context(), id, in.Status, in.Notes, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(inventory.ToAlertResponse(a))
}

// Acknowledge godoc
// @Summary      Reconocer alerta
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la alerta"
// @Param        body  body  dto.AlertNoteRequest  false  "Notas"
// @Success      200  {object}  dto.AlertResponse
// @Router       /api/alerts/{id}/acknowledge [post]
func (h *AlertHandler) Acknowledge(c *fiber.Ctx) error {
	return h.withNote(c, h.uc.Acknowledge)
}

// MarkForReorder godoc
// @Summary      Marcar alerta para reorden
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la alerta"
// @Param        body  body  dto.AlertNoteRequest  false  "Notas"
// @Success      200  {object}  dto.AlertResponse
// @Router       /api/alerts/{id}/reorder [post]
func (h *AlertHandler) MarkForReorder(c *fiber.Ctx) error {
	return h.withNote(c, h.uc.MarkForReorder)
}

type noteAction func(ctx context.Context, alertID int64, notes, actorID string) (*entity.LowStockAlert, error)

func (h *AlertHandler) withNote(c *fiber.Ctx, action noteAction) error {
	id, ok := alertID(c)
	if !ok {
		return invalidAlertID(c)
	}
	var in dto.AlertNoteRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	a, err := action(c.Context(), id, in.Notes, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(inventory.ToAlertResponse(a))
}
