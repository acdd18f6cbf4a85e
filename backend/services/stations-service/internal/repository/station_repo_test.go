package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powerbank/backend/libs/db"
	"powerbank/backend/services/stations-service/internal/models"
)

func newSQLiteRepo(t *testing.T) *StationRepository {
	t.Helper()
	database, err := db.Open(db.Config{Driver: db.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, Migrate(context.Background(), database))
	return NewStationRepository(database)
}

func weekdaysOnly() models.WeekHours {
	var w models.WeekHours
	for d := time.Monday; d <= time.Friday; d++ {
		w[d] = models.DayHours{Start: "08:00", End: "20:00"}
	}
	return w
}

func TestStationRepository_UpsertGetList(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	for _, st := range []models.Station{
		{ID: "ZAPP0002", Title: "Library", Timezone: "America/Toronto", Hours: weekdaysOnly()},
		{ID: "NEXY0001", Title: "Gym", Timezone: "America/Vancouver"},
		{ID: "DEMO0001", Title: "Lab bench"},
	} {
		st := st
		require.NoError(t, repo.Upsert(ctx, &st))
	}

	got, err := repo.Get(ctx, "ZAPP0002")
	require.NoError(t, err)
	assert.Equal(t, "Library", got.Title)
	assert.Equal(t, weekdaysOnly(), got.Hours)
	assert.Nil(t, got.Online)
	assert.Nil(t, got.LastChecked)
	assert.False(t, got.CreatedAt.IsZero())

	monitored, err := repo.ListMonitored(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(monitored))
	for _, st := range monitored {
		ids = append(ids, st.ID)
	}
	assert.Equal(t, []string{"NEXY0001", "ZAPP0002"}, ids)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = repo.Get(ctx, "ZAPP9999")
	assert.ErrorIs(t, err, ErrStationNotFound)
}

func TestStationRepository_UpsertKeepsStatus(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	st := models.Station{ID: "ZAPP0001", Title: "Old", Timezone: "UTC"}
	require.NoError(t, repo.Upsert(ctx, &st))
	checked := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateStatus(ctx, "ZAPP0001", false, checked))

	st.Title = "New"
	st.Hours = weekdaysOnly()
	require.NoError(t, repo.Upsert(ctx, &st))

	got, err := repo.Get(ctx, "ZAPP0001")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "08:00", got.Hours[time.Monday].Start)
	require.NotNil(t, got.Online)
	assert.False(t, *got.Online)
	require.NotNil(t, got.LastChecked)
	assert.True(t, checked.Equal(*got.LastChecked))
}

func TestStationRepository_UpdateStatusMissing(t *testing.T) {
	repo := newSQLiteRepo(t)
	err := repo.UpdateStatus(context.Background(), "NEXY404", true, time.Now())
	assert.ErrorIs(t, err, ErrStationNotFound)
}

func TestStationRepository_PostgresPlaceholders(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	repo := NewStationRepository(db.Wrap(sqlDB, db.DriverPostgres))

	mock.ExpectQuery(`SELECT id, title, timezone, sunday_start, sunday_end, .* FROM stations WHERE id LIKE \$1 OR id LIKE \$2 ORDER BY id`).
		WithArgs("ZAPP%", "NEXY%").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	mock.ExpectExec(`UPDATE stations SET online = \$1, last_checked = \$2, updated_at = \$3 WHERE id = \$4`).
		WithArgs(true, sqlmock.AnyArg(), sqlmock.AnyArg(), "ZAPP0001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	stations, err := repo.ListMonitored(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stations)

	require.NoError(t, repo.UpdateStatus(context.Background(), "ZAPP0001", true, time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
