package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"canopy-pos/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrPromotionNotFound = errors.New("promotion not found")
	ErrPromotionTagTaken = errors.New("promotion tag already in use for this store")
)

// PromotionRepository defines the interface for promotion data access
type PromotionRepository interface {
	Create(ctx context.Context, promotion *domain.Promotion) error
	Update(ctx context.Context, promotion *domain.Promotion) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Promotion, error)
	FindByTag(ctx context.Context, storeID uuid.UUID, tag string) (*domain.Promotion, error)
	List(ctx context.Context, storeID uuid.UUID) ([]*domain.Promotion, error)
}

type promotionRepository struct {
	db *sql.DB
}

// NewPromotionRepository creates a new instance of PromotionRepository
func NewPromotionRepository(db *sql.DB) PromotionRepository {
	return &promotionRepository{db: db}
}

const promotionColumns = `id, store_id, name, tag, kind, value, starts_at, ends_at, active, created_at, updated_at`

func (r *promotionRepository) Create(ctx context.Context, promotion *domain.Promotion) error {
	query := `
		INSERT INTO promotions (id, store_id, name, tag, kind, value, starts_at, ends_at, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		promotion.ID,
		promotion.StoreID,
		promotion.Name,
		promotion.Tag,
		promotion.Kind,
		promotion.Value,
		promotion.StartsAt,
		promotion.EndsAt,
		promotion.Active,
		promotion.CreatedAt,
		promotion.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "promotions_store_id_tag_key") {
			return ErrPromotionTagTaken
		}
		return fmt.Errorf("failed to create promotion: %w", err)
	}

	return nil
}

func (r *promotionRepository) Update(ctx context.Context, promotion *domain.Promotion) error {
	query := `
		UPDATE promotions
		SET name = $2, tag = $3, kind = $4, value = $5, starts_at = $6,
		    ends_at = $7, active = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		promotion.ID,
		promotion.Name,
		promotion.Tag,
		promotion.Kind,
		promotion.Value,
		promotion.StartsAt,
		promotion.EndsAt,
		promotion.Active,
		promotion.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update promotion: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPromotionNotFound
	}

	return nil
}

func (r *promotionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete promotion: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPromotionNotFound
	}

	return nil
}

func (r *promotionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Promotion, error) {
	query := fmt.Sprintf(`SELECT %s FROM promotions WHERE id = $1`, promotionColumns)
	return r.scanRow(r.db.QueryRowContext(ctx, query, id))
}

func (r *promotionRepository) FindByTag(ctx context.Context, storeID uuid.UUID, tag string) (*domain.Promotion, error) {
	query := fmt.Sprintf(`SELECT %s FROM promotions WHERE store_id = $1 AND tag = $2`, promotionColumns)
	return r.scanRow(r.db.QueryRowContext(ctx, query, storeID, tag))
}

func (r *promotionRepository) List(ctx context.Context, storeID uuid.UUID) ([]*domain.Promotion, error) {
	query := fmt.Sprintf(`SELECT %s FROM promotions WHERE store_id = $1 ORDER BY starts_at DESC`, promotionColumns)

	rows, err := r.db.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}
	defer rows.Close()

	promotions := []*domain.Promotion{}
	for rows.Next() {
		promotion := &domain.Promotion{}
		err := rows.Scan(
			&promotion.ID,
			&promotion.StoreID,
			&promotion.Name,
			&promotion.Tag,
			&promotion.Kind,
			&promotion.Value,
			&promotion.StartsAt,
			&promotion.EndsAt,
			&promotion.Active,
			&promotion.CreatedAt,
			&promotion.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promotion: %w", err)
		}
		promotions = append(promotions, promotion)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating promotions: %w", err)
	}

	return promotions, nil
}

func (r *promotionRepository) scanRow(row *sql.Row) (*domain.Promotion, error) {
	promotion := &domain.Promotion{}
	err := row.Scan(
		&promotion.ID,
		&promotion.StoreID,
		&promotion.Name,
		&promotion.Tag,
		&promotion.Kind,
		&promotion.Value,
		&promotion.StartsAt,
		&promotion.EndsAt,
		&promotion.Active,
		&promotion.CreatedAt,
		&promotion.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPromotionNotFound
		}
		return nil, fmt.Errorf("failed to find promotion: %w", err)
	}
	return promotion, nil
}
