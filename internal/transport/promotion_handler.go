package transport

import (
	"net/http"
	"time"

	"canopy-pos/internal/domain"
	"canopy-pos/internal/middleware"
	"canopy-pos/internal/repository"
	"canopy-pos/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PromotionRequest is the create/update payload for a promotion
type PromotionRequest struct {
	StoreID  string    `json:"store_id" validate:"required,uuid"`
	Name     string    `json:"name" validate:"required"`
	Tag      string    `json:"tag" validate:"required"`
	Kind     string    `json:"kind" validate:"required,oneof=percentage fixed"`
	Value    float64   `json:"value" validate:"gte=0"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
	EndsAt   time.Time `json:"ends_at" validate:"required"`
	Active   bool      `json:"active"`
}

// PromotionHandler handles HTTP requests for promotion management
type PromotionHandler struct {
	promotions service.PromotionService
	logger     *zap.Logger
}

// NewPromotionHandler creates a new PromotionHandler
func NewPromotionHandler(promotions service.PromotionService, logger *zap.Logger) *PromotionHandler {
	return &PromotionHandler{promotions: promotions, logger: logger}
}

// RegisterRoutes registers promotion routes; mutations are manager-only
func (h *PromotionHandler) RegisterRoutes(r chi.Router, authMiddleware, managerOnly func(http.Handler) http.Handler) {
	r.Route("/api/promotions", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/", h.List)
		r.Get("/{promotionID}", h.GetPromotion)

		r.Group(func(r chi.Router) {
			r.Use(managerOnly)
			r.Post("/", h.Create)
			r.Put("/{promotionID}", h.Update)
			r.Delete("/{promotionID}", h.Delete)
		})
	})
}

func (h *PromotionHandler) decode(w http.ResponseWriter, r *http.Request) (*domain.Promotion, bool) {
	var req PromotionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return nil, false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	storeID, _ := uuid.Parse(req.StoreID)
	return &domain.Promotion{
		StoreID:  storeID,
		Name:     req.Name,
		Tag:      req.Tag,
		Kind:     domain.DiscountKind(req.Kind),
		Value:    decimal.NewFromFloat(req.Value),
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Active:   req.Active,
	}, true
}

func (h *PromotionHandler) respondPromotionError(w http.ResponseWriter, err error) {
	switch err {
	case repository.ErrPromotionNotFound:
		middleware.RespondWithError(w, http.StatusNotFound, "promotion not found")
	case repository.ErrPromotionTagTaken:
		middleware.RespondWithError(w, http.StatusConflict, "promotion tag already in use for this store")
	case service.ErrInvalidPromotionKind, service.ErrInvalidPromotionValue:
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("Promotion operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "promotion operation failed")
	}
}

// Create creates a new promotion
func (h *PromotionHandler) Create(w http.ResponseWriter, r *http.Request) {
	promotion, ok := h.decode(w, r)
	if !ok {
		return
	}

	if err := h.promotions.Create(r.Context(), promotion); err != nil {
		h.respondPromotionError(w, err)
		return
	}

	h.logger.Info("Promotion created",
		zap.String("promotion_id", promotion.ID.String()),
		zap.String("tag", promotion.Tag),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, promotion)
}

// Update replaces an existing promotion
func (h *PromotionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "promotionID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid promotion ID")
		return
	}

	promotion, ok := h.decode(w, r)
	if !ok {
		return
	}
	promotion.ID = id

	if err := h.promotions.Update(r.Context(), promotion); err != nil {
		h.respondPromotionError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, promotion)
}

// Delete removes a promotion
func (h *PromotionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "promotionID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid promotion ID")
		return
	}

	if err := h.promotions.Delete(r.Context(), id); err != nil {
		h.respondPromotionError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPromotion returns a single promotion
func (h *PromotionHandler) GetPromotion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "promotionID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid promotion ID")
		return
	}

	promotion, err := h.promotions.Get(r.Context(), id)
	if err != nil {
		h.respondPromotionError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, promotion)
}

// List returns all promotions for a store
func (h *PromotionHandler) List(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(r.URL.Query().Get("store_id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid store ID")
		return
	}

	promotions, err := h.promotions.List(r.Context(), storeID)
	if err != nil {
		h.respondPromotionError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, promotions)
}
