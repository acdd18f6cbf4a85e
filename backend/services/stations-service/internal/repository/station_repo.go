package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"powerbank/backend/libs/db"
	"powerbank/backend/services/stations-service/internal/models"
	"powerbank/backend/services/stations-service/internal/vendors"
)

// ErrStationNotFound indicates a missing station id.
var ErrStationNotFound = errors.New("station not found")

// StationRepository persists stations and their last-known state.
type StationRepository struct {
	db *db.DB
}

// NewStationRepository returns repository.
func NewStationRepository(database *db.DB) *StationRepository {
	return &StationRepository{db: database}
}

func selectStations() string {
	return "SELECT id, title, timezone, " + hoursColumnList() +
		", online, last_checked, created_at, updated_at FROM stations"
}

// ListMonitored returns stations with a vendor prefix, ordered by id.
func (r *StationRepository) ListMonitored(ctx context.Context) ([]models.Station, error) {
	prefixes := vendors.MonitoredPrefixes()
	conds := make([]string, 0, len(prefixes))
	args := make([]any, 0, len(prefixes))
	for _, p := range prefixes {
		conds = append(conds, "id LIKE ?")
		args = append(args, p+"%")
	}
	query := selectStations() + " WHERE " + strings.Join(conds, " OR ") + " ORDER BY id"
	return r.query(ctx, query, args...)
}

// List returns every station ordered by id.
func (r *StationRepository) List(ctx context.Context) ([]models.Station, error) {
	return r.query(ctx, selectStations()+" ORDER BY id")
}

// Get loads one station.
func (r *StationRepository) Get(ctx context.Context, id string) (*models.Station, error) {
	rows, err := r.query(ctx, selectStations()+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrStationNotFound
	}
	return &rows[0], nil
}

// UpdateStatus records the outcome of a check.
func (r *StationRepository) UpdateStatus(ctx context.Context, id string, online bool, checkedAt time.Time) error {
	const query = `UPDATE stations SET online = ?, last_checked = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, r.db.Q(query), online, checkedAt.UTC(), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStationNotFound
	}
	return nil
}

// Upsert creates or replaces a station's descriptive fields. Status columns are kept.
func (r *StationRepository) Upsert(ctx context.Context, st *models.Station) error {
	cols := []string{"id", "title", "timezone"}
	args := []any{st.ID, st.Title, st.Timezone}
	updates := []string{"title = excluded.title", "timezone = excluded.timezone"}
	for d, pair := range dayColumns {
		cols = append(cols, pair[0], pair[1])
		args = append(args, st.Hours[d].Start, st.Hours[d].End)
		updates = append(updates, pair[0]+" = excluded."+pair[0], pair[1]+" = excluded."+pair[1])
	}
	now := time.Now().UTC()
	cols = append(cols, "created_at", "updated_at")
	args = append(args, now, now)
	updates = append(updates, "updated_at = excluded.updated_at")

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := "INSERT INTO stations (" + strings.Join(cols, ", ") + ") VALUES (" + placeholders + ")" +
		" ON CONFLICT (id) DO UPDATE SET " + strings.Join(updates, ", ")

	_, err := r.db.ExecContext(ctx, r.db.Q(query), args...)
	return err
}

func (r *StationRepository) query(ctx context.Context, query string, args ...any) ([]models.Station, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stations, nil
}

func scanStation(rows *sql.Rows) (models.Station, error) {
	var (
		st          models.Station
		online      sql.NullBool
		lastChecked sql.NullTime
	)
	dest := []any{&st.ID, &st.Title, &st.Timezone}
	for d := range st.Hours {
		dest = append(dest, &st.Hours[d].Start, &st.Hours[d].End)
	}
	dest = append(dest, &online, &lastChecked, &st.CreatedAt, &st.UpdatedAt)
	if err := rows.Scan(dest...); err != nil {
		return models.Station{}, err
	}
	if online.Valid {
		v := online.Bool
		st.Online = &v
	}
	if lastChecked.Valid {
		t := lastChecked.Time.UTC()
		st.LastChecked = &t
	}
	return st, nil
}
