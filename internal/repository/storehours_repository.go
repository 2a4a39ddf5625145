package repository

import (
	"context"
	"database/sql"
	"fmt"

	"canopy-pos/internal/domain"

	"github.com/google/uuid"
)

// StoreHoursRepository defines the interface for store-hours access.
// Missing weekdays simply don't appear in the week; the UI fills gaps.
type StoreHoursRepository interface {
	GetWeek(ctx context.Context, storeID uuid.UUID) ([]*domain.StoreHours, error)
	Upsert(ctx context.Context, hours *domain.StoreHours) error
}

type storeHoursRepository struct {
	db *sql.DB
}

// NewStoreHoursRepository creates a new instance of StoreHoursRepository
func NewStoreHoursRepository(db *sql.DB) StoreHoursRepository {
	return &storeHoursRepository{db: db}
}

func (r *storeHoursRepository) GetWeek(ctx context.Context, storeID uuid.UUID) ([]*domain.StoreHours, error) {
	query := `
		SELECT store_id, weekday, opens_at, closes_at, closed
		FROM store_hours
		WHERE store_id = $1
		ORDER BY weekday
	`

	rows, err := r.db.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load store hours: %w", err)
	}
	defer rows.Close()

	week := []*domain.StoreHours{}
	for rows.Next() {
		hours := &domain.StoreHours{}
		err := rows.Scan(&hours.StoreID, &hours.Weekday, &hours.OpensAt, &hours.ClosesAt, &hours.Closed)
		if err != nil {
			return nil, fmt.Errorf("failed to scan store hours: %w", err)
		}
		week = append(week, hours)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating store hours: %w", err)
	}

	return week, nil
}

func (r *storeHoursRepository) Upsert(ctx context.Context, hours *domain.StoreHours) error {
	query := `
		INSERT INTO store_hours (store_id, weekday, opens_at, closes_at, closed)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (store_id, weekday) DO UPDATE SET
			opens_at = EXCLUDED.opens_at,
			closes_at = EXCLUDED.closes_at,
			closed = EXCLUDED.closed
	`

	_, err := r.db.ExecContext(ctx, query, hours.StoreID, hours.Weekday, hours.OpensAt, hours.ClosesAt, hours.Closed)
	if err != nil {
		return fmt.Errorf("failed to upsert store hours: %w", err)
	}

	return nil
}
