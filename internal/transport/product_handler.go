package transport

import (
	"encoding/json"
	"net/http"
	"strconv"

	"canopy-pos/internal/middleware"
	"canopy-pos/internal/normalize"
	"canopy-pos/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImportResult reports the outcome of a catalog import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ProductHandler handles HTTP requests for the catalog
type ProductHandler struct {
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products repository.ProductRepository, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

// RegisterRoutes registers catalog routes; import is manager-only
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, managerOnly func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/", h.Search)
		r.Get("/{productID}", h.GetProduct)
		r.With(managerOnly).Post("/import", h.Import)
	})
}

// Search returns products matching a free-text query within a store
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(r.URL.Query().Get("store_id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid store ID")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 25)

	products, err := h.products.Search(r.Context(), r.URL.Query().Get("q"), storeID, limit)
	if err != nil {
		h.logger.Error("Product search failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "product search failed")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// GetProduct returns a single product with its batches
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to fetch product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to fetch product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Import ingests an upstream catalog feed. Payloads come from several
// inventory systems with divergent field names; each record is run
// through the normalize adapter before upsert. A bad record is skipped,
// not fatal.
func (h *ProductHandler) Import(w http.ResponseWriter, r *http.Request) {
	var payloads []normalize.ProductPayload
	if err := json.NewDecoder(r.Body).Decode(&payloads); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := ImportResult{}
	for _, payload := range payloads {
		product, err := normalize.Product(payload)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		if err := h.products.Upsert(r.Context(), &product); err != nil {
			h.logger.Error("Product upsert failed",
				zap.String("product_id", product.ID.String()),
				zap.Error(err),
			)
			result.Skipped++
			result.Errors = append(result.Errors, "upsert failed: "+product.ID.String())
			continue
		}
		result.Imported++
	}

	h.logger.Info("Catalog import finished",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	middleware.RespondWithJSON(w, http.StatusOK, result)
}

func parseIntOrDefault(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
