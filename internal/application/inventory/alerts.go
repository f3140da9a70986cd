package inventory

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/bookstore-inventory/internal/domain"
	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
	domaininv "github.com/jhoicas/bookstore-inventory/internal/domain/inventory"
	"github.com/jhoicas/bookstore-inventory/internal/domain/repository"
)

const (
	defaultAlertPage = 20
	maxAlertPage     = 100
)

// AlertUseCase motor de alertas de stock bajo: barrido, configuración de umbral y máquina de estados.
// Orden de bloqueo: fila del ítem y luego su alerta abierta.
type AlertUseCase struct {
	txRunner     TxRunner
	items        repository.ItemRepository
	alerts       repository.AlertRepository
	alertHistory repository.AlertHistoryRepository
	opts         options
}

// NewAlertUseCase construye el caso de uso. Los repositorios se usan para lecturas fuera de la tx.
func NewAlertUseCase(
	txRunner TxRunner,
	items repository.ItemRepository,
	alerts repository.AlertRepository,
	alertHistory repository.AlertHistoryRepository,
	opts ...Option,
) *AlertUseCase {
	return &AlertUseCase{
		txRunner:     txRunner,
		items:        items,
		alerts:       alerts,
		alertHistory: alertHistory,
		opts:         buildOptions(opts),
	}
}

// SweepResult conteos de un barrido.
type SweepResult struct {
	RunID     string
	Scanned   int
	Created   int
	Refreshed int
	Resolved  int
}

// AlertEvaluation resultado de evaluar un ítem contra su umbral.
type AlertEvaluation struct {
	Breached  bool
	Created   bool
	Refreshed bool
	Alert     *entity.LowStockAlert // alerta abierta tras la evaluación; nil si no hay
}

// EvaluateThresholds recorre los ítems bajo umbral y crea o refresca su alerta abierta,
// una transacción por ítem. Nunca avanza el estado de una alerta existente.
// Un fallo corta el barrido; los ítems ya confirmados quedan confirmados.
func (uc *AlertUseCase) EvaluateThresholds(ctx context.Context, actorID string) (SweepResult, error) {
	if strings.TrimSpace(actorID) == "" {
		return SweepResult{}, domain.ErrInvalidInput
	}
	res := SweepResult{RunID: uuid.NewString()}
	log := uc.opts.log.With().Str("sweep_id", res.RunID).Logger()

	candidates, err := uc.items.ListBelowThreshold(ctx)
	if err != nil {
		return res, err
	}
	for _, c := range candidates {
		res.Scanned++
		var eval AlertEvaluation
		err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
			item, err := repos.Items.GetByIDForUpdate(ctx, c.ID)
			if err != nil {
				return err
			}
			if item == nil {
				return nil
			}
			eval, err = uc.evaluateLocked(ctx, repos, item, actorID, nil)
			return err
		})
		if err != nil {
			log.Error().Err(err).Str("item", c.Ref.String()).Msg("barrido de umbrales interrumpido")
			return res, fmt.Errorf("evaluar ítem %s: %w", c.Ref, err)
		}
		if eval.Created {
			res.Created++
			log.Info().Str("item", c.Ref.String()).Bool("critical", eval.Alert.IsCritical).Msg("alerta de stock bajo creada")
		}
		if eval.Refreshed {
			res.Refreshed++
		}
	}

	if uc.opts.autoResolve {
		n, err := uc.autoResolve(ctx, actorID)
		res.Resolved = n
		if err != nil {
			return res, err
		}
	}

	log.Info().
		Int("scanned", res.Scanned).
		Int("created", res.Created).
		Int("refreshed", res.Refreshed).
		Int("resolved", res.Resolved).
		Msg("barrido de umbrales completado")
	return res, nil
}

// autoResolve pasa a resolved las alertas abiertas cuyo ítem volvió a estar en o sobre el umbral.
func (uc *AlertUseCase) autoResolve(ctx context.Context, actorID string) (int, error) {
	recovered, err := uc.alerts.ListOpenRecovered(ctx)
	if err != nil {
		return 0, err
	}
	resolved := 0
	for _, a := range recovered {
		done := false
		err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
			item, err := repos.Items.GetByIDForUpdate(ctx, a.ItemID)
			if err != nil {
				return err
			}
			if item == nil || item.BelowThreshold() {
				return nil
			}
			alert, err := repos.Alerts.GetByIDForUpdate(ctx, a.ID)
			if err != nil {
				return err
			}
			if alert == nil || !alert.Status.Open() {
				return nil
			}
			now := uc.opts.now()
			if err := repos.Alerts.UpdateStatus(ctx, alert.ID, entity.AlertResolved, alert.AcknowledgedBy, now); err != nil {
				return err
			}
			note := fmt.Sprintf("resuelta automáticamente: cantidad %d, umbral %d", item.Quantity, item.ReorderLevel)
			if err := repos.AlertHistory.Append(ctx, &entity.AlertHistoryEntry{
				AlertID:   alert.ID,
				Status:    entity.AlertResolved,
				Note:      note,
				ActorID:   actorID,
				CreatedAt: now,
			}); err != nil {
				return err
			}
			done = true
			return nil
		})
		if err != nil {
			return resolved, fmt.Errorf("resolver alerta %d: %w", a.ID, err)
		}
		if done {
			resolved++
		}
	}
	return resolved, nil
}

// ConfigureThreshold persiste el umbral del ítem y lo evalúa en la misma transacción.
// Si ya hay alerta abierta se le fija is_critical = isCritical; si se crea una,
// queda crítica cuando lo indica la regla o el llamador.
func (uc *AlertUseCase) ConfigureThreshold(ctx context.Context, ref entity.ItemRef, threshold int, isCritical bool, actorID string) (AlertEvaluation, error) {
	if !ref.Valid() || threshold < 0 || strings.TrimSpace(actorID) == "" {
		return AlertEvaluation{}, domain.ErrInvalidInput
	}
	var eval AlertEvaluation
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		item, err := repos.Items.GetByRefForUpdate(ctx, ref)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if item.ReorderLevel != threshold {
			if err := repos.Items.UpdateFields(ctx, item.ID, repository.ItemFieldChanges{ReorderLevel: &threshold}); err != nil {
				return err
			}
			oldJSON, err := snapshotJSON(map[string]any{"reorder_level": item.ReorderLevel})
			if err != nil {
				return err
			}
			newJSON, err := snapshotJSON(map[string]any{"reorder_level": threshold})
			if err != nil {
				return err
			}
			if err := repos.Audit.Append(ctx, &entity.AuditEntry{
				ItemID:    item.ID,
				ActorID:   actorID,
				Action:    entity.AuditUpdate,
				OldValue:  oldJSON,
				NewValue:  newJSON,
				CreatedAt: uc.opts.now(),
			}); err != nil {
				return err
			}
			item.ReorderLevel = threshold
		}
		eval, err = uc.evaluateLocked(ctx, repos, item, actorID, &isCritical)
		return err
	})
	if err != nil {
		return AlertEvaluation{}, err
	}
	uc.opts.log.Info().
		Str("item", ref.String()).
		Int("threshold", threshold).
		Bool("breached", eval.Breached).
		Bool("alert_created", eval.Created).
		Str("actor", actorID).
		Msg("umbral de reorden configurado")
	return eval, nil
}

// evaluateLocked crea o refresca la alerta abierta del ítem. Requiere la fila del ítem bloqueada.
// criticalFlag nil (barrido): is_critical solo escala de false a true.
func (uc *AlertUseCase) evaluateLocked(ctx context.Context, repos TxRepos, item *entity.Item, actorID string, criticalFlag *bool) (AlertEvaluation, error) {
	open, err := repos.Alerts.GetOpenByItemForUpdate(ctx, item.ID)
	if err != nil {
		return AlertEvaluation{}, err
	}
	now := uc.opts.now()
	eval := AlertEvaluation{Breached: item.BelowThreshold(), Alert: open}
	computed := domaininv.IsCritical(item.Quantity, item.ReorderLevel)

	if open != nil {
		target := open.IsCritical
		if criticalFlag != nil {
			target = *criticalFlag
		} else if eval.Breached && computed {
			target = true
		}
		switch {
		case target != open.IsCritical:
			if err := repos.Alerts.SetCritical(ctx, open.ID, target, now); err != nil {
				return AlertEvaluation{}, err
			}
			open.IsCritical = target
			open.UpdatedAt = now
			eval.Refreshed = eval.Breached
		case eval.Breached:
			if err := repos.Alerts.Touch(ctx, open.ID, now); err != nil {
				return AlertEvaluation{}, err
			}
			open.UpdatedAt = now
			eval.Refreshed = true
		}
		return eval, nil
	}
	if !eval.Breached {
		return eval, nil
	}

	alert := &entity.LowStockAlert{
		ItemID:           item.ID,
		Status:           entity.AlertPending,
		IsCritical:       computed || (criticalFlag != nil && *criticalFlag),
		Threshold:        item.ReorderLevel,
		QuantitySnapshot: item.Quantity,
		CreatedBy:        actorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := repos.Alerts.Create(ctx, alert); err != nil {
		return AlertEvaluation{}, err
	}
	if err := repos.AlertHistory.Append(ctx, &entity.AlertHistoryEntry{
		AlertID:   alert.ID,
		Status:    entity.AlertPending,
		Note:      "cantidad " + strconv.Itoa(item.Quantity) + " bajo el umbral " + strconv.Itoa(item.ReorderLevel),
		ActorID:   actorID,
		CreatedAt: now,
	}); err != nil {
		return AlertEvaluation{}, err
	}
	eval.Created = true
	eval.Alert = alert
	return eval, nil
}

// Transition cambia el estado de una alerta y agrega su fila de historial en la misma transacción.
// resolved es terminal: una alerta resuelta no cambia de estado.
func (uc *AlertUseCase) Transition(ctx context.Context, alertID int64, status, notes, actorID string) (*entity.LowStockAlert, error) {
	st, ok := entity.ParseAlertStatus(status)
	if !ok {
		return nil, domain.ErrInvalidStatus
	}
	return uc.transition(ctx, alertID, st, notes, actorID, false)
}

// Acknowledge pasa la alerta a acknowledged y registra al actor como quien la reconoce.
func (uc *AlertUseCase) Acknowledge(ctx context.Context, alertID int64, notes, actorID string) (*entity.LowStockAlert, error) {
	return uc.transition(ctx, alertID, entity.AlertAcknowledged, notes, actorID, true)
}

// MarkForReorder pasa la alerta a reorder_initiated y registra al actor como quien la reconoce.
func (uc *AlertUseCase) MarkForReorder(ctx context.Context, alertID int64, notes, actorID string) (*entity.LowStockAlert, error) {
	return uc.transition(ctx, alertID, entity.AlertReorderInitiated, notes, actorID, true)
}

func (uc *AlertUseCase) transition(ctx context.Context, alertID int64, st entity.AlertStatus, notes, actorID string, recordAck bool) (*entity.LowStockAlert, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.LowStockAlert
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		alert, err := repos.Alerts.GetByIDForUpdate(ctx, alertID)
		if err != nil {
			return err
		}
		if alert == nil {
			return domain.ErrNotFound
		}
		if alert.Status == entity.AlertResolved {
			return domain.ErrInvalidStatus
		}
		ackBy := alert.AcknowledgedBy
		if recordAck {
			actor := actorID
			ackBy = &actor
		}
		now := uc.opts.now()
		if err := repos.Alerts.UpdateStatus(ctx, alert.ID, st, ackBy, now); err != nil {
			return err
		}
		if err := repos.AlertHistory.Append(ctx, &entity.AlertHistoryEntry{
			AlertID:   alert.ID,
			Status:    st,
			Note:      notes,
			ActorID:   actorID,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		alert.Status = st
		alert.AcknowledgedBy = ackBy
		alert.UpdatedAt = now
		out = alert
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.opts.log.Info().
		Int64("alert_id", alertID).
		Str("status", string(st)).
		Str("actor", actorID).
		Msg("transición de alerta")
	return out, nil
}

// GetAlert obtiene una alerta por id.
func (uc *AlertUseCase) GetAlert(ctx context.Context, alertID int64) (*entity.LowStockAlert, error) {
	alert, err := uc.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, domain.ErrNotFound
	}
	return alert, nil
}

// ListAlerts listado paginado; sin estado devuelve las alertas abiertas.
func (uc *AlertUseCase) ListAlerts(ctx context.Context, filter repository.AlertFilter) ([]entity.LowStockAlert, error) {
	if filter.Status != "" {
		if _, ok := entity.ParseAlertStatus(string(filter.Status)); !ok {
			return nil, domain.ErrInvalidStatus
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultAlertPage
	}
	if filter.Limit > maxAlertPage {
		filter.Limit = maxAlertPage
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.alerts.List(ctx, filter)
}

// GetAlertHistory transiciones de la alerta en orden cronológico.
func (uc *AlertUseCase) GetAlertHistory(ctx context.Context, alertID int64) ([]entity.AlertHistoryEntry, error) {
	if _, err := uc.GetAlert(ctx, alertID); err != nil {
		return nil, err
	}
	return uc.alertHistory.ListByAlert(ctx, alertID)
}
