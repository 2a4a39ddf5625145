package transport

import (
	"net/http"

	"canopy-pos/internal/domain"
	"canopy-pos/internal/middleware"
	"canopy-pos/internal/repository"
	"canopy-pos/internal/service"
	"canopy-pos/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OpenSessionRequest opens a register session for a store
type OpenSessionRequest struct {
	StoreID string `json:"store_id" validate:"required,uuid"`
}

// ScanRequest carries a raw barcode from the register
type ScanRequest struct {
	Code string `json:"code" validate:"required"`
}

// AddLineRequest adds a product to the cart manually
type AddLineRequest struct {
	ProductID   string   `json:"product_id" validate:"required,uuid"`
	Quantity    int      `json:"quantity" validate:"required,gt=0"`
	DiscountPct *float64 `json:"discount_pct" validate:"omitempty,gte=0,lte=100"`
	PromoTag    string   `json:"promo_tag"`
	LotCode     string   `json:"lot_code"`
}

// UpdateLineRequest changes quantity and/or per-line discount
type UpdateLineRequest struct {
	Quantity    *int     `json:"quantity"`
	DiscountPct *float64 `json:"discount_pct" validate:"omitempty,gte=0,lte=100"`
}

// OrderDiscountRequest sets the order-level discount
type OrderDiscountRequest struct {
	Kind  string  `json:"kind" validate:"required,oneof=none percentage fixed"`
	Value float64 `json:"value" validate:"gte=0"`
}

// ApplyPromotionRequest applies a promotion by tag
type ApplyPromotionRequest struct {
	Tag string `json:"tag" validate:"required"`
}

// FinalizeRequest completes or parks the sale
type FinalizeRequest struct {
	PaymentMethod string `json:"payment_method"`
	CustomerID    string `json:"customer_id" validate:"omitempty,uuid"`
}

// PosHandler handles HTTP requests for the register
type PosHandler struct {
	pos    service.PosService
	logger *zap.Logger
}

// NewPosHandler creates a new PosHandler
func NewPosHandler(pos service.PosService, logger *zap.Logger) *PosHandler {
	return &PosHandler{pos: pos, logger: logger}
}

// RegisterRoutes registers all register routes; everything requires auth
func (h *PosHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/pos/sessions", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/", h.OpenSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Post("/scan", h.Scan)
			r.Post("/lines", h.AddLine)
			r.Patch("/lines/{lineKey}", h.UpdateLine)
			r.Delete("/lines/{lineKey}", h.RemoveLine)
			r.Put("/discount", h.SetDiscount)
			r.Post("/promotion", h.ApplyPromotion)
			r.Post("/clear", h.Clear)
			r.Post("/park", h.Park)
			r.Post("/complete", h.Complete)
			r.Post("/resume/{transactionID}", h.Resume)
			r.Get("/search", h.Search)
		})
	})
}

func (h *PosHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *PosHandler) operatorID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr, ok := middleware.GetOperatorID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid operator ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondCartError maps service errors to HTTP status codes
func (h *PosHandler) respondCartError(w http.ResponseWriter, err error) {
	switch err {
	case session.ErrSessionNotFound:
		middleware.RespondWithError(w, http.StatusNotFound, "cart session not found")
	case repository.ErrProductNotFound:
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case repository.ErrPromotionNotFound:
		middleware.RespondWithError(w, http.StatusNotFound, "promotion not found")
	case repository.ErrTransactionNotFound:
		middleware.RespondWithError(w, http.StatusNotFound, "transaction not found")
	case service.ErrScanUnmatched:
		middleware.RespondWithError(w, http.StatusNotFound, "product/batch not found for scan")
	case service.ErrPromotionNotActive:
		middleware.RespondWithError(w, http.StatusConflict, "promotion is not currently active")
	case service.ErrEmptyCart:
		middleware.RespondWithError(w, http.StatusConflict, "cart is empty")
	case service.ErrNotParked:
		middleware.RespondWithError(w, http.StatusConflict, "transaction is not parked")
	case service.ErrRegulatedLimitExceeded:
		middleware.RespondWithError(w, http.StatusConflict, "regulated equivalent exceeds the legal limit")
	default:
		h.logger.Error("Cart operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "cart operation failed")
	}
}

// OpenSession opens a new register session
func (h *PosHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	operatorID, ok := h.operatorID(w, r)
	if !ok {
		return
	}

	storeID, _ := uuid.Parse(req.StoreID)
	view, err := h.pos.OpenSession(r.Context(), storeID, operatorID)
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	h.logger.Info("Register session opened",
		zap.String("session_id", view.Session.ID.String()),
		zap.String("store_id", storeID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, view)
}

// GetSession returns the live cart with recomputed totals
func (h *PosHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	view, err := h.pos.View(r.Context(), id)
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// Scan resolves a barcode and merges the matched product into the cart
func (h *PosHandler) Scan(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req ScanRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := h.pos.Scan(r.Context(), id, req.Code)
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, outcome)
}

// AddLine adds a product manually
func (h *PosHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req AddLineRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, _ := uuid.Parse(req.ProductID)
	discount := decimal.Zero
	if req.DiscountPct != nil {
		discount = decimal.NewFromFloat(*req.DiscountPct)
	}

	view, err := h.pos.AddLine(r.Context(), id, productID, req.Quantity, discount, req.PromoTag, req.LotCode)
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// UpdateLine changes quantity and/or discount on one line
func (h *PosHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req UpdateLineRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var discount *decimal.Decimal
	if req.DiscountPct != nil {
		d := decimal.NewFromFloat(*req.DiscountPct)
		discount = &d
	}

	view, err := h.pos.UpdateLine(r.Context(), id, chi.URLParam(r, "lineKey"), req.Quantity, discount)
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// RemoveLine removes one line from the cart
func (h *PosHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	view, err := h.pos.RemoveLine(r.Context(), id, chi.URLParam(r, "lineKey"))
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// SetDiscount replaces the order-level discount
func (h *PosHandler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req OrderDiscountRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	discount := domain.OrderDiscount{
		Kind:  domain.DiscountKind(req.Kind),
		Value: decimal.NewFromFloat(req.Value),
	}

	view, err := h.pos.SetOrderDiscount(r.Context(), id, discount)
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// ApplyPromotion applies an active promotion by tag
func (h *PosHandler) ApplyPromotion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req ApplyPromotionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.pos.ApplyPromotion(r.Context(), id, req.Tag)
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// Clear empties the cart
func (h *PosHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	view, err := h.pos.ClearCart(r.Context(), id)
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// Park snapshots the cart as a parked transaction
func (h *PosHandler) Park(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req FinalizeRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	transaction, err := h.pos.Park(r.Context(), id, parseOptionalUUID(req.CustomerID))
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	h.logger.Info("Sale parked", zap.String("transaction_id", transaction.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, transaction)
}

// Complete finalizes the sale
func (h *PosHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req FinalizeRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	transaction, err := h.pos.Complete(r.Context(), id, req.PaymentMethod, parseOptionalUUID(req.CustomerID))
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	h.logger.Info("Sale completed",
		zap.String("transaction_id", transaction.ID.String()),
		zap.String("total", transaction.Total.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, transaction)
}

// Resume reconstructs a live cart from a parked transaction
func (h *PosHandler) Resume(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	transactionID, err := uuid.Parse(chi.URLParam(r, "transactionID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid transaction ID")
		return
	}

	view, err := h.pos.Resume(r.Context(), id, transactionID)
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// Search runs a keystroke-driven catalog search scoped to the session's store
func (h *PosHandler) Search(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 25)

	products, err := h.pos.SearchProducts(r.Context(), id, r.URL.Query().Get("q"), limit)
	if err != nil {
		if err == service.ErrSearchSuperseded {
			// A newer search is already in flight; this result set must
			// not be rendered.
			middleware.RespondWithError(w, http.StatusConflict, "search superseded")
			return
		}
		h.respondCartError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func parseOptionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
