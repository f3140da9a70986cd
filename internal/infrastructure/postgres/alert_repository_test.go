package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bookstore-inventory/internal/domain"
	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
	"github.com/jhoicas/bookstore-inventory/internal/domain/repository"
)

func alertRows() *pgxmock.Rows {
	return pgxmock.NewRows(alertColumns)
}

func TestAlertRepo_List_SinEstadoDevuelveAbiertas(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	rows := alertRows().
		AddRow(int64(9), int64(2), entity.AlertPending, true, 10, 3, "system", (*string)(nil), now, now).
		AddRow(int64(4), int64(5), entity.AlertAcknowledged, false, 10, 8, "system", strPtr("user-1"), now, now)
	mock.ExpectQuery(`SELECT .* FROM low_stock_alerts WHERE status <> \$1 ORDER BY is_critical DESC, id DESC LIMIT 20 OFFSET 40`).
		WithArgs("resolved").
		WillReturnRows(rows)

	out, err := NewAlertRepository(mock).List(context.Background(), repository.AlertFilter{Limit: 20, Offset: 40})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].IsCritical)
	assert.Equal(t, entity.AlertAcknowledged, out[1].Status)
	require.NotNil(t, out[1].AcknowledgedBy)
	assert.Equal(t, "user-1", *out[1].AcknowledgedBy)
}

func TestAlertRepo_List_FiltraPorEstadoEItem(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`WHERE status = \$1 AND item_id = \$2 ORDER BY`).
		WithArgs("resolved", int64(5)).
		WillReturnRows(alertRows())

	out, err := NewAlertRepository(mock).List(context.Background(), repository.AlertFilter{Status: entity.AlertResolved, ItemID: 5})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAlertRepo_Create_IndiceParcialEsFalloDeAlmacenamiento(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO low_stock_alerts`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "low_stock_alerts_one_open_idx"})

	err := NewAlertRepository(mock).Create(context.Background(), &entity.LowStockAlert{ItemID: 1, Status: entity.AlertPending})
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
}

func TestAlertRepo_GetOpenByItemForUpdate_SinAlerta(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`WHERE item_id = \$1 AND status <> 'resolved' FOR UPDATE`).
		WithArgs(int64(3)).
		WillReturnRows(alertRows())

	a, err := NewAlertRepository(mock).GetOpenByItemForUpdate(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestAlertRepo_UpdateStatus_AlertaInexistente(t *testing.T) {
	mock := newMock(t)
	at := time.Now()
	mock.ExpectExec(`UPDATE low_stock_alerts SET status = \$1`).
		WithArgs("acknowledged", strPtr("user-1"), at, int64(77)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewAlertRepository(mock).UpdateStatus(context.Background(), 77, entity.AlertAcknowledged, strPtr("user-1"), at)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
