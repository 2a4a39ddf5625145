package transport

import (
	"net/http"

	"canopy-pos/internal/domain"
	"canopy-pos/internal/middleware"
	"canopy-pos/internal/repository"
	"canopy-pos/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransactionListResponse is a paginated slice of transactions
type TransactionListResponse struct {
	Transactions []*domain.Transaction `json:"transactions"`
	Total        int                   `json:"total"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"page_size"`
}

// TransactionHandler handles HTTP requests for sale history
type TransactionHandler struct {
	pos          service.PosService
	transactions repository.TransactionRepository
	logger       *zap.Logger
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(pos service.PosService, transactions repository.TransactionRepository, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{pos: pos, transactions: transactions, logger: logger}
}

// RegisterRoutes registers sale history routes
func (h *TransactionHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/transactions", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/", h.List)
		r.Get("/{transactionID}", h.GetTransaction)
	})
}

// List returns transactions for a store, optionally filtered by status.
// Parked sales show up here so a register can pick one to resume.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(r.URL.Query().Get("store_id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid store ID")
		return
	}

	status := domain.TransactionStatus(r.URL.Query().Get("status"))
	page := parseIntOrDefault(r.URL.Query().Get("page"), 1)
	pageSize := parseIntOrDefault(r.URL.Query().Get("page_size"), 20)

	transactions, total, err := h.pos.History(r.Context(), storeID, status, page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list transactions", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, TransactionListResponse{
		Transactions: transactions,
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
	})
}

// GetTransaction returns one transaction with its item snapshot
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "transactionID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid transaction ID")
		return
	}

	transaction, err := h.transactions.FindByID(r.Context(), id)
	if err != nil {
		if err == repository.ErrTransactionNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "transaction not found")
			return
		}
		h.logger.Error("Failed to fetch transaction", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to fetch transaction")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, transaction)
}
