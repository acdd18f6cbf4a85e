package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"powerbank/backend/libs/db"
	"powerbank/backend/services/rentals-service/internal/models"
)

var (
	// ErrRentNotFound indicates a missing rent id.
	ErrRentNotFound = errors.New("rent not found")
	// ErrConflict means the rent changed since it was read.
	ErrConflict = errors.New("rent was modified concurrently")
)

const defaultListLimit = 50

// Migrate creates the rents table when missing.
func Migrate(ctx context.Context, database *db.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rents (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	start_station_id TEXT NOT NULL DEFAULT '',
	end_station_id TEXT,
	start_date TIMESTAMP,
	end_date TIMESTAMP,
	usage_duration INTEGER,
	total_payment BIGINT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	revision BIGINT NOT NULL DEFAULT 1
)`,
		`CREATE INDEX IF NOT EXISTS rents_status_idx ON rents (status)`,
	}
	for _, stmt := range stmts {
		if _, err := database.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate rents: %w", err)
		}
	}
	return nil
}

// RentRepository persists rents.
type RentRepository struct {
	db *db.DB
}

// NewRentRepository returns repository.
func NewRentRepository(database *db.DB) *RentRepository {
	return &RentRepository{db: database}
}

const selectRents = `SELECT id, status, start_station_id, end_station_id, start_date, end_date,
	usage_duration, total_payment, created_at, updated_at, revision FROM rents`

// Get loads one rent.
func (r *RentRepository) Get(ctx context.Context, id string) (*models.Rent, error) {
	row := r.db.QueryRowContext(ctx, r.db.Q(selectRents+" WHERE id = ?"), id)
	rent, err := scanRent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRentNotFound
	}
	if err != nil {
		return nil, err
	}
	return rent, nil
}

// Create inserts a rent. Missing id and status default to a new uuid and renting.
func (r *RentRepository) Create(ctx context.Context, rent *models.Rent) error {
	if rent.ID == "" {
		rent.ID = uuid.NewString()
	}
	if rent.Status == "" {
		rent.Status = models.StatusRenting
	}
	now := time.Now().UTC()
	rent.CreatedAt, rent.UpdatedAt, rent.Revision = now, now, 1

	const query = `
		INSERT INTO rents (id, status, start_station_id, end_station_id, start_date, end_date,
			usage_duration, total_payment, created_at, updated_at, revision)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, r.db.Q(query),
		rent.ID,
		string(rent.Status),
		rent.StartStationID,
		nullString(rent.EndStationID),
		nullTime(rent.StartDate),
		nullTime(rent.EndDate),
		nullInt(rent.UsageDuration),
		nullInt64(rent.TotalPayment),
		rent.CreatedAt,
		rent.UpdatedAt,
		rent.Revision,
	)
	if err != nil {
		return fmt.Errorf("create rent %s: %w", rent.ID, err)
	}
	return nil
}

// Update writes the mutable fields if the stored revision still equals expectedRevision,
// then advances rent.Revision.
func (r *RentRepository) Update(ctx context.Context, rent *models.Rent, expectedRevision int64) error {
	if rent.UpdatedAt.IsZero() {
		rent.UpdatedAt = time.Now().UTC()
	}
	next := expectedRevision + 1

	const query = `
		UPDATE rents
		SET status = ?, end_station_id = ?, end_date = ?, usage_duration = ?, total_payment = ?,
			updated_at = ?, revision = ?
		WHERE id = ? AND revision = ?
	`
	res, err := r.db.ExecContext(ctx, r.db.Q(query),
		string(rent.Status),
		nullString(rent.EndStationID),
		nullTime(rent.EndDate),
		nullInt(rent.UsageDuration),
		nullInt64(rent.TotalPayment),
		rent.UpdatedAt.UTC(),
		next,
		rent.ID,
		expectedRevision,
	)
	if err != nil {
		return fmt.Errorf("update rent %s: %w", rent.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.Get(ctx, rent.ID); err != nil {
			return err
		}
		return ErrConflict
	}
	rent.Revision = next
	return nil
}

// ListByStatus returns the most recently updated rents, optionally filtered by status.
func (r *RentRepository) ListByStatus(ctx context.Context, status models.Status, limit int) ([]models.Rent, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	query := selectRents
	args := make([]any, 0, 2)
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY updated_at DESC, id LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, r.db.Q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rents := make([]models.Rent, 0)
	for rows.Next() {
		rent, err := scanRent(rows)
		if err != nil {
			return nil, err
		}
		rents = append(rents, *rent)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rents, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRent(s scanner) (*models.Rent, error) {
	var (
		rent       models.Rent
		status     string
		endStation sql.NullString
		startDate  sql.NullTime
		endDate    sql.NullTime
		duration   sql.NullInt64
		payment    sql.NullInt64
	)
	if err := s.Scan(
		&rent.ID,
		&status,
		&rent.StartStationID,
		&endStation,
		&startDate,
		&endDate,
		&duration,
		&payment,
		&rent.CreatedAt,
		&rent.UpdatedAt,
		&rent.Revision,
	); err != nil {
		return nil, err
	}
	rent.Status = models.Status(status)
	if endStation.Valid {
		rent.EndStationID = &endStation.String
	}
	if startDate.Valid {
		t := startDate.Time.UTC()
		rent.StartDate = &t
	}
	if endDate.Valid {
		t := endDate.Time.UTC()
		rent.EndDate = &t
	}
	if duration.Valid {
		d := int(duration.Int64)
		rent.UsageDuration = &d
	}
	if payment.Valid {
		p := payment.Int64
		rent.TotalPayment = &p
	}
	rent.CreatedAt = rent.CreatedAt.UTC()
	rent.UpdatedAt = rent.UpdatedAt.UTC()
	return &rent, nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: v.UTC(), Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
