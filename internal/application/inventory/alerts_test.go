package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bookstore-inventory/internal/application/inventory"
	"github.com/jhoicas/bookstore-inventory/internal/domain"
	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
	"github.com/jhoicas/bookstore-inventory/internal/domain/repository"
)

func (f *fixture) seedAlert(itemID int64, status entity.AlertStatus, critical bool) entity.LowStockAlert {
	now := f.clock.Now()
	return f.store.SeedAlert(entity.LowStockAlert{
		ItemID:     itemID,
		Status:     status,
		IsCritical: critical,
		Threshold:  10,
		CreatedBy:  testSystem,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func openAlerts(alerts []entity.LowStockAlert) int {
	n := 0
	for _, a := range alerts {
		if a.Status.Open() {
			n++
		}
	}
	return n
}

// ──────────────────────────────────────────────────────────────────────────────
// EvaluateThresholds
// ──────────────────────────────────────────────────────────────────────────────

func TestEvaluateThresholds_Idempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem("978-S1", 6, 10)

	first, err := f.alerts.EvaluateThresholds(ctx, testSystem)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)
	assert.NotEmpty(t, first.RunID)

	created := f.store.AlertsForItem(item.ID)
	require.Len(t, created, 1)

	second, err := f.alerts.EvaluateThresholds(ctx, testSystem)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Refreshed)
	assert.NotEqual(t, first.RunID, second.RunID)

	after := f.store.AlertsForItem(item.ID)
	require.Len(t, after, 1)
	assert.Equal(t, created[0].ID, after[0].ID)
	assert.Equal(t, entity.AlertPending, after[0].Status)
	assert.True(t, after[0].UpdatedAt.After(created[0].UpdatedAt))

	// La creación deja una fila inicial de historial; el refresco no agrega filas.
	history := f.store.AlertHistoryEntries(after[0].ID)
	require.Len(t, history, 1)
	assert.Equal(t, entity.AlertPending, history[0].Status)
}

func TestEvaluateThresholds_IgnoraUmbralCeroYStockSuficiente(t *testing.T) {
	f := newFixture(t)
	untracked := f.seedItem("978-S2", 0, 0)
	healthy := f.seedItem("978-S3", 10, 10)

	res, err := f.alerts.EvaluateThresholds(context.Background(), testSystem)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Scanned)
	assert.Empty(t, f.store.AlertsForItem(untracked.ID))
	assert.Empty(t, f.store.AlertsForItem(healthy.ID))
}

func TestEvaluateThresholds_CriticidadConUmbralImpar(t *testing.T) {
	f := newFixture(t)
	// 3 < 7*0.5 = 3.5 → crítica; 4 no lo es
	critical := f.seedItem("978-S4", 3, 7)
	normal := f.seedItem("978-S5", 4, 7)

	_, err := f.alerts.EvaluateThresholds(context.Background(), testSystem)
	require.NoError(t, err)

	assert.True(t, f.store.AlertsForItem(critical.ID)[0].IsCritical)
	assert.False(t, f.store.AlertsForItem(normal.ID)[0].IsCritical)
}

// Una alerta resuelta no se reabre: una nueva ruptura crea otra alerta.
func TestEvaluateThresholds_NuevaAlertaTrasResolver(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("978-S6", 2, 10)
	resolved := f.seedAlert(item.ID, entity.AlertResolved, false)

	res, err := f.alerts.EvaluateThresholds(context.Background(), testSystem)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)

	alerts := f.store.AlertsForItem(item.ID)
	require.Len(t, alerts, 2)
	assert.Equal(t, resolved.ID, alerts[0].ID)
	assert.Equal(t, entity.AlertResolved, alerts[0].Status)
	assert.Equal(t, entity.AlertPending, alerts[1].Status)
	assert.Equal(t, 1, openAlerts(alerts))
}

// El barrido no avanza el estado de una alerta existente.
func TestEvaluateThresholds_NoAvanzaEstado(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("978-S7", 2, 10)
	ack := f.seedAlert(item.ID, entity.AlertAcknowledged, false)

	res, err := f.alerts.EvaluateThresholds(context.Background(), testSystem)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Refreshed)

	alerts := f.store.AlertsForItem(item.ID)
	require.Len(t, alerts, 1)
	assert.Equal(t, ack.ID, alerts[0].ID)
	assert.Equal(t, entity.AlertAcknowledged, alerts[0].Status)
	assert.True(t, alerts[0].IsCritical)
}

func TestEvaluateThresholds_FalloCortaElBarrido(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("978-S8", 1, 10)
	f.store.FailOn("alerts.create", assert.AnError)

	res, err := f.alerts.EvaluateThresholds(context.Background(), testSystem)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Equal(t, 1, res.Scanned)
	assert.Equal(t, 0, res.Created)
	assert.Empty(t, f.store.AlertsForItem(item.ID))
}

func TestEvaluateThresholds_AutoResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("deshabilitado", func(t *testing.T) {
		f := newFixture(t)
		item := f.seedItem("978-AR1", 20, 10)
		f.seedAlert(item.ID, entity.AlertReorderInitiated, false)

		res, err := f.alerts.EvaluateThresholds(ctx, testSystem)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Resolved)
		assert.Equal(t, entity.AlertReorderInitiated, f.store.AlertsForItem(item.ID)[0].Status)
	})

	t.Run("habilitado", func(t *testing.T) {
		f := newFixture(t, inventory.WithAutoResolve(true))
		item := f.seedItem("978-AR2", 20, 10)
		alert := f.seedAlert(item.ID, entity.AlertReorderInitiated, false)
		stillLow := f.seedItem("978-AR3", 1, 10)
		f.seedAlert(stillLow.ID, entity.AlertAcknowledged, true)

		res, err := f.alerts.EvaluateThresholds(ctx, testSystem)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Resolved)

		assert.Equal(t, entity.AlertResolved, f.store.AlertsForItem(item.ID)[0].Status)
		assert.Equal(t, entity.AlertAcknowledged, f.store.AlertsForItem(stillLow.ID)[0].Status)

		history := f.store.AlertHistoryEntries(alert.ID)
		require.Len(t, history, 1)
		assert.Equal(t, entity.AlertResolved, history[0].Status)
		assert.Equal(t, testSystem, history[0].ActorID)
		assert.Contains(t, history[0].Note, "cantidad 20")
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// ConfigureThreshold
// ──────────────────────────────────────────────────────────────────────────────

func TestConfigureThreshold_CreaAlerta(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("978-T1", 5, 0)

	eval, err := f.alerts.ConfigureThreshold(context.Background(), item.Ref, 10, false, testActor)
	require.NoError(t, err)
	assert.True(t, eval.Breached)
	assert.True(t, eval.Created)
	require.NotNil(t, eval.Alert)
	// 5 no es menor que 10*0.5
	assert.False(t, eval.Alert.IsCritical)

	stored, _ := f.store.Item(item.ID)
	assert.Equal(t, 10, stored.ReorderLevel)

	entries := f.store.AuditEntries(item.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.AuditUpdate, entries[0].Action)
	assert.JSONEq(t, `{"reorder_level":0}`, entries[0].OldValue)
	assert.JSONEq(t, `{"reorder_level":10}`, entries[0].NewValue)
}

func TestConfigureThreshold_BanderaCriticaEnAlertaNueva(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("978-T2", 8, 10)

	eval, err := f.alerts.ConfigureThreshold(context.Background(), item.Ref, 10, true, testActor)
	require.NoError(t, err)
	assert.True(t, eval.Created)
	assert.True(t, eval.Alert.IsCritical)
	// umbral sin cambio: no hay auditoría
	assert.Empty(t, f.store.AuditEntries(item.ID))
}

func TestConfigureThreshold_ActualizaCriticidadExistente(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("978-T3", 1, 10)
	alert := f.seedAlert(item.ID, entity.AlertAcknowledged, true)

	eval, err := f.alerts.ConfigureThreshold(context.Background(), item.Ref, 10, false, testActor)
	require.NoError(t, err)
	assert.False(t, eval.Created)
	assert.True(t, eval.Refreshed)
	assert.Equal(t, alert.ID, eval.Alert.ID)

	alerts := f.store.AlertsForItem(item.ID)
	require.Len(t, alerts, 1)
	assert.False(t, alerts[0].IsCritical)
	assert.Equal(t, entity.AlertAcknowledged, alerts[0].Status)
}

func TestConfigureThreshold_SinRupturaNoCreaAlerta(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("978-T4", 15, 10)

	eval, err := f.alerts.ConfigureThreshold(context.Background(), item.Ref, 12, true, testActor)
	require.NoError(t, err)
	assert.False(t, eval.Breached)
	assert.Nil(t, eval.Alert)
	assert.Empty(t, f.store.AlertsForItem(item.ID))
}

func TestConfigureThreshold_EntradaInvalida(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("978-T5", 15, 10)
	ctx := context.Background()

	_, err := f.alerts.ConfigureThreshold(ctx, item.Ref, -1, false, testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.alerts.ConfigureThreshold(ctx, entity.External("NADA"), 5, false, testActor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transition
// ──────────────────────────────────────────────────────────────────────────────

// Escenario E.
func TestTransition_ReconocerYEstadoInvalido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem("978-E", 2, 10)
	alert := f.seedAlert(item.ID, entity.AlertPending, false)

	got, err := f.alerts.Transition(ctx, alert.ID, "acknowledged", "reviewed by manager", testActor)
	require.NoError(t, err)
	assert.Equal(t, entity.AlertAcknowledged, got.Status)
	assert.Nil(t, got.AcknowledgedBy)

	history := f.store.AlertHistoryEntries(alert.ID)
	require.Len(t, history, 1)
	assert.Equal(t, entity.AlertAcknowledged, history[0].Status)
	assert.Equal(t, "reviewed by manager", history[0].Note)
	assert.Equal(t, testActor, history[0].ActorID)

	_, err = f.alerts.Transition(ctx, alert.ID, "bogus_status", "", testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	assert.Equal(t, entity.AlertAcknowledged, f.store.AlertsForItem(item.ID)[0].Status)
	assert.Len(t, f.store.AlertHistoryEntries(alert.ID), 1)
}

func TestTransition_AlertaInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.alerts.Transition(context.Background(), 999, "resolved", "", testActor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransition_ResueltaEsTerminal(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("978-E2", 2, 10)
	alert := f.seedAlert(item.ID, entity.AlertResolved, false)

	_, err := f.alerts.Transition(context.Background(), alert.ID, "pending", "", testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	assert.Empty(t, f.store.AlertHistoryEntries(alert.ID))
}

func TestTransition_FalloDeHistorialHaceRollback(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("978-E3", 2, 10)
	alert := f.seedAlert(item.ID, entity.AlertPending, false)
	f.store.FailOn("alert_history.append", assert.AnError)

	_, err := f.alerts.Transition(context.Background(), alert.ID, "resolved", "", testActor)
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Equal(t, entity.AlertPending, f.store.AlertsForItem(item.ID)[0].Status)
	assert.Empty(t, f.store.AlertHistoryEntries(alert.ID))
}

func TestAcknowledgeYMarkForReorder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem("978-E4", 2, 10)
	alert := f.seedAlert(item.ID, entity.AlertPending, false)

	got, err := f.alerts.Acknowledge(ctx, alert.ID, "", "manager-1")
	require.NoError(t, err)
	assert.Equal(t, entity.AlertAcknowledged, got.Status)
	require.NotNil(t, got.AcknowledgedBy)
	assert.Equal(t, "manager-1", *got.AcknowledgedBy)

	got, err = f.alerts.MarkForReorder(ctx, alert.ID, "pedido OC-12", "buyer-7")
	require.NoError(t, err)
	assert.Equal(t, entity.AlertReorderInitiated, got.Status)
	assert.Equal(t, "buyer-7", *got.AcknowledgedBy)

	history, err := f.alerts.GetAlertHistory(ctx, alert.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.AlertAcknowledged, history[0].Status)
	assert.Equal(t, entity.AlertReorderInitiated, history[1].Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestListAlerts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedItem("978-L1", 2, 10)
	b := f.seedItem("978-L2", 2, 10)
	f.seedAlert(a.ID, entity.AlertPending, false)
	f.seedAlert(b.ID, entity.AlertResolved, false)
	critical := f.seedAlert(b.ID, entity.AlertAcknowledged, true)

	open, err := f.alerts.ListAlerts(ctx, repository.AlertFilter{})
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, critical.ID, open[0].ID)

	resolved, err := f.alerts.ListAlerts(ctx, repository.AlertFilter{Status: entity.AlertResolved})
	require.NoError(t, err)
	assert.Len(t, resolved, 1)

	_, err = f.alerts.ListAlerts(ctx, repository.AlertFilter{Status: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.alerts.GetAlertHistory(ctx, 12345)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
