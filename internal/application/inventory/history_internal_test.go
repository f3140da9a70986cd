package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
)

var base = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func auditAt(id int64, offset time.Duration) entity.AuditEntry {
	return entity.AuditEntry{ID: id, Action: entity.AuditAdjustStock, CreatedAt: base.Add(offset)}
}

func priceAt(id int64, offset time.Duration) entity.PriceHistoryEntry {
	return entity.PriceHistoryEntry{ID: id, OldPrice: "1.00", NewPrice: "2.00", CreatedAt: base.Add(offset)}
}

func TestHistory_MezclaDescendente(t *testing.T) {
	h := History{
		audit:  []entity.AuditEntry{auditAt(5, 3*time.Minute), auditAt(2, time.Minute)},
		prices: []entity.PriceHistoryEntry{priceAt(9, 2*time.Minute), priceAt(1, 0)},
	}

	var got []string
	for r := range h.All() {
		got = append(got, r.String())
	}
	assert.Equal(t, []string{"audit:5", "price_history:9", "audit:2", "price_history:1"}, got)
}

// Empate de fecha: primero el historial de precios.
func TestHistory_EmpatePrimeroPrecio(t *testing.T) {
	h := History{
		audit:  []entity.AuditEntry{auditAt(7, 0)},
		prices: []entity.PriceHistoryEntry{priceAt(3, 0)},
	}
	recs := h.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, SourcePriceHistory, recs[0].Source)
	assert.Equal(t, entity.AuditPriceUpdate, recs[0].Action)
	assert.Equal(t, SourceAudit, recs[1].Source)
}

func TestHistory_TopeYReinicio(t *testing.T) {
	var h History
	for i := range 80 {
		h.audit = append(h.audit, auditAt(int64(1000-i), -time.Duration(2*i)*time.Second))
		h.prices = append(h.prices, priceAt(int64(500-i), -time.Duration(2*i+1)*time.Second))
	}

	first := h.Records()
	assert.Len(t, first, HistoryPageSize)
	assert.Equal(t, first, h.Records())

	for i := 1; i < len(first); i++ {
		assert.False(t, first[i].CreatedAt.After(first[i-1].CreatedAt), "orden descendente en %d", i)
	}
}

func TestHistory_CortePorConsumidor(t *testing.T) {
	h := History{audit: []entity.AuditEntry{auditAt(3, 2), auditAt(2, 1), auditAt(1, 0)}}
	n := 0
	for range h.All() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestHistory_Vacio(t *testing.T) {
	assert.Empty(t, History{}.Records())
}
