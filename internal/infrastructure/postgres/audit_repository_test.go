package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
)

func TestAuditRepo_Append(t *testing.T) {
	mock := newMock(t)
	delta := -3
	now := time.Now()
	e := &entity.AuditEntry{
		ItemID: 7, ActorID: "user-1", Action: entity.AuditAdjustStock,
		OldValue: "10", NewValue: "7", QuantityDelta: &delta, Reason: "Damaged", CreatedAt: now,
	}
	mock.ExpectQuery(`INSERT INTO audit_entries`).
		WithArgs(int64(7), "user-1", "ADJUST_STOCK", "10", "7", &delta, "Damaged", "", now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(15)))

	require.NoError(t, NewAuditRepository(mock).Append(context.Background(), e))
	assert.Equal(t, int64(15), e.ID)
}

func TestAuditRepo_ListByItem_ExcluyeAcciones(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	delta := 5
	rows := pgxmock.NewRows([]string{"id", "item_id", "actor_id", "action", "old_value", "new_value", "quantity_delta", "reason", "notes", "created_at"}).
		AddRow(int64(2), int64(7), "user-1", entity.AuditAdjustStock, "0", "5", &delta, "Restock from supplier", "", now).
		AddRow(int64(1), int64(7), "user-1", entity.AuditCreate, "", "{}", (*int)(nil), "", "", now)
	mock.ExpectQuery(`FROM audit_entries WHERE item_id = \$1 AND action NOT IN \(\$2\) ORDER BY created_at DESC, id DESC LIMIT 100`).
		WithArgs(int64(7), "PRICE_UPDATE").
		WillReturnRows(rows)

	out, err := NewAuditRepository(mock).ListByItem(context.Background(), 7, 100, entity.AuditPriceUpdate)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.NotNil(t, out[0].QuantityDelta)
	assert.Equal(t, 5, *out[0].QuantityDelta)
	assert.Nil(t, out[1].QuantityDelta)
}
