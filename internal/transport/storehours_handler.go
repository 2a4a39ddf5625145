package transport

import (
	"net/http"

	"canopy-pos/internal/domain"
	"canopy-pos/internal/middleware"
	"canopy-pos/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StoreHoursEntry is one weekday's opening window
type StoreHoursEntry struct {
	Weekday  int    `json:"weekday" validate:"gte=0,lte=6"`
	OpensAt  string `json:"opens_at" validate:"required_unless=Closed true"`
	ClosesAt string `json:"closes_at" validate:"required_unless=Closed true"`
	Closed   bool   `json:"closed"`
}

// StoreHoursRequest replaces the configured week for a store
type StoreHoursRequest struct {
	Hours []StoreHoursEntry `json:"hours" validate:"required,min=1,max=7,dive"`
}

// StoreHoursHandler handles HTTP requests for store opening hours
type StoreHoursHandler struct {
	hours  repository.StoreHoursRepository
	logger *zap.Logger
}

// NewStoreHoursHandler creates a new StoreHoursHandler
func NewStoreHoursHandler(hours repository.StoreHoursRepository, logger *zap.Logger) *StoreHoursHandler {
	return &StoreHoursHandler{hours: hours, logger: logger}
}

// RegisterRoutes registers store-hours routes; updates are manager-only
func (h *StoreHoursHandler) RegisterRoutes(r chi.Router, authMiddleware, managerOnly func(http.Handler) http.Handler) {
	r.Route("/api/stores/{storeID}/hours", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/", h.GetWeek)
		r.With(managerOnly).Put("/", h.PutWeek)
	})
}

// GetWeek returns the configured opening hours for a store
func (h *StoreHoursHandler) GetWeek(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "storeID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid store ID")
		return
	}

	week, err := h.hours.GetWeek(r.Context(), storeID)
	if err != nil {
		h.logger.Error("Failed to fetch store hours", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to fetch store hours")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, week)
}

// PutWeek upserts the opening hours for the given weekdays
func (h *StoreHoursHandler) PutWeek(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "storeID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid store ID")
		return
	}

	var req StoreHoursRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	for _, entry := range req.Hours {
		hours := &domain.StoreHours{
			StoreID:  storeID,
			Weekday:  entry.Weekday,
			OpensAt:  entry.OpensAt,
			ClosesAt: entry.ClosesAt,
			Closed:   entry.Closed,
		}
		if err := h.hours.Upsert(r.Context(), hours); err != nil {
			h.logger.Error("Failed to update store hours",
				zap.Int("weekday", entry.Weekday),
				zap.Error(err),
			)
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update store hours")
			return
		}
	}

	week, err := h.hours.GetWeek(r.Context(), storeID)
	if err != nil {
		h.logger.Error("Failed to fetch store hours", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to fetch store hours")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, week)
}
