package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"canopy-pos/internal/domain"
	"canopy-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPromotionKind  = errors.New("promotion kind must be percentage or fixed")
	ErrInvalidPromotionValue = errors.New("promotion value must not be negative")
)

// PromotionService defines the interface for promotion management
type PromotionService interface {
	Create(ctx context.Context, promotion *domain.Promotion) error
	Update(ctx context.Context, promotion *domain.Promotion) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Promotion, error)
	List(ctx context.Context, storeID uuid.UUID) ([]*domain.Promotion, error)
}

type promotionService struct {
	promotions repository.PromotionRepository
}

// NewPromotionService creates a new instance of PromotionService
func NewPromotionService(promotions repository.PromotionRepository) PromotionService {
	return &promotionService{promotions: promotions}
}

func validatePromotion(p *domain.Promotion) error {
	if p.Kind != domain.DiscountPercentage && p.Kind != domain.DiscountFixed {
		return ErrInvalidPromotionKind
	}
	if p.Value.IsNegative() {
		return ErrInvalidPromotionValue
	}
	if p.Kind == domain.DiscountPercentage && p.Value.GreaterThan(decimal.NewFromInt(100)) {
		p.Value = decimal.NewFromInt(100)
	}
	return nil
}

func (s *promotionService) Create(ctx context.Context, promotion *domain.Promotion) error {
	if err := validatePromotion(promotion); err != nil {
		return err
	}

	promotion.ID = uuid.New()
	promotion.CreatedAt = time.Now()
	promotion.UpdatedAt = promotion.CreatedAt

	if err := s.promotions.Create(ctx, promotion); err != nil {
		return fmt.Errorf("failed to create promotion: %w", err)
	}
	return nil
}

func (s *promotionService) Update(ctx context.Context, promotion *domain.Promotion) error {
	if err := validatePromotion(promotion); err != nil {
		return err
	}

	promotion.UpdatedAt = time.Now()

	if err := s.promotions.Update(ctx, promotion); err != nil {
		return err
	}
	return nil
}

func (s *promotionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.promotions.Delete(ctx, id)
}

func (s *promotionService) Get(ctx context.Context, id uuid.UUID) (*domain.Promotion, error) {
	return s.promotions.FindByID(ctx, id)
}

func (s *promotionService) List(ctx context.Context, storeID uuid.UUID) ([]*domain.Promotion, error) {
	return s.promotions.List(ctx, storeID)
}
