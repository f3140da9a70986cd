package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bookstore-inventory/internal/application/inventory"
	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
)

func codes(list []inventory.ReplenishmentSuggestion) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.Item.Ref.Code)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// GenerateList
// ──────────────────────────────────────────────────────────────────────────────

func TestReplenishment_OrdenYCantidadSugerida(t *testing.T) {
	f := newFixture(t)
	f.seedItem("AGOTADO", 0, 10)
	f.seedItem("CERCA", 6, 10)
	f.seedItem("CHICO", 2, 4)
	conAlerta := f.seedItem("MARCADO", 7, 10)
	f.seedItem("SOBRADO", 15, 10)
	f.seedItem("SIN-UMBRAL", 0, 0)
	// Escenario: la alerta abierta fue marcada crítica a mano y prevalece sobre la regla
	alert := f.seedAlert(conAlerta.ID, entity.AlertAcknowledged, true)

	list, err := f.restock.GenerateList(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"AGOTADO", "MARCADO", "CHICO", "CERCA"}, codes(list))
	for i, s := range list {
		assert.Equal(t, i+1, s.Priority)
	}

	agotado := list[0]
	assert.True(t, agotado.Critical)
	assert.Equal(t, 15, agotado.IdealStock)
	assert.Equal(t, 15, agotado.SuggestedQty)
	assert.Equal(t, "187.5", agotado.EstimatedValue.String())
	assert.Nil(t, agotado.Alert)

	marcado := list[1]
	assert.True(t, marcado.Critical)
	assert.Equal(t, 8, marcado.SuggestedQty)
	require.NotNil(t, marcado.Alert)
	assert.Equal(t, alert.ID, marcado.Alert.ID)

	chico := list[2]
	assert.False(t, chico.Critical)
	assert.Equal(t, 6, chico.IdealStock)
	assert.Equal(t, 4, chico.SuggestedQty)
	assert.Equal(t, "50", chico.EstimatedValue.String())
}

func TestReplenishment_AlertaResueltaNoCuenta(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("ISBN-1", 7, 10)
	f.seedAlert(item.ID, entity.AlertResolved, true)

	list, err := f.restock.GenerateList(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Alert)
	assert.False(t, list[0].Critical, "7 de 10 no es crítico por regla")
}

func TestReplenishment_EmpateOrdenaPorID(t *testing.T) {
	f := newFixture(t)
	f.seedItem("B", 5, 10)
	f.seedItem("A", 5, 10)

	list, err := f.restock.GenerateList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, codes(list))
}

func TestReplenishment_ListaVaciaNoEsNil(t *testing.T) {
	f := newFixture(t)
	f.seedItem("OK", 50, 10)

	list, err := f.restock.GenerateList(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestReplenishment_NoModificaAlertas(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("ISBN-2", 0, 10)

	_, err := f.restock.GenerateList(context.Background())
	require.NoError(t, err)
	assert.Empty(t, f.store.AlertsForItem(item.ID))
}

func TestReplenishment_FallaDeAlmacenamiento(t *testing.T) {
	for _, op := range []string{"items.list_below", "alerts.list"} {
		t.Run(op, func(t *testing.T) {
			f := newFixture(t)
			f.seedItem("ISBN-3", 0, 10)
			f.store.FailOn(op, assert.AnError)

			_, err := f.restock.GenerateList(context.Background())
			assert.ErrorIs(t, err, assert.AnError)
		})
	}
}
