package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dimitrije/relayo-api/internal/database"
	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStatsService(t *testing.T) (*StatsService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewStatsService(db), mock
}

func TestStatsService_Get(t *testing.T) {
	svc, mock := setupStatsService(t)
	workspaceID := uuid.New()
	// Wednesday afternoon
	now := time.Date(2025, 3, 5, 15, 30, 0, 0, time.UTC)
	today := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \(SELECT COUNT\(\*\) FROM reservations`).
		WithArgs(workspaceID, today, today.AddDate(0, 0, 1), models.StatusPending, models.StatusConfirmed,
			sunday, sunday.AddDate(0, 0, 7)).
		WillReturnRows(pgxmock.NewRows([]string{"today", "pending", "customers", "week"}).
			AddRow(3, 2, 40, 7))

	stats, err := svc.Get(context.Background(), workspaceID, now)

	require.NoError(t, err)
	assert.Equal(t, 3, stats.TodayBookings)
	assert.Equal(t, 2, stats.PendingConfirmations)
	assert.Equal(t, 40, stats.TotalCustomers)
	assert.Equal(t, 350, stats.ThisWeekRevenue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsService_Get_WeekStartsOnSunday(t *testing.T) {
	svc, mock := setupStatsService(t)
	workspaceID := uuid.New()
	sunday := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	now := sunday.Add(9 * time.Hour)

	mock.ExpectQuery(`SELECT`).
		WithArgs(workspaceID, sunday, sunday.AddDate(0, 0, 1), models.StatusPending, models.StatusConfirmed,
			sunday, sunday.AddDate(0, 0, 7)).
		WillReturnRows(pgxmock.NewRows([]string{"today", "pending", "customers", "week"}).
			AddRow(0, 0, 0, 0))

	stats, err := svc.Get(context.Background(), workspaceID, now)

	require.NoError(t, err)
	assert.Equal(t, 0, stats.ThisWeekRevenue)
}

func TestStatsService_Get_Error(t *testing.T) {
	svc, mock := setupStatsService(t)

	mock.ExpectQuery(`SELECT`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("db down"))

	_, err := svc.Get(context.Background(), uuid.New(), time.Now())

	assert.Error(t, err)
}
