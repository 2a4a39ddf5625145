// Package normalize is the single adapter between upstream inventory
// payloads and the canonical domain.Product. Upstream feeds disagree on
// field names (price vs unit_price, quantity_available vs
// stock_quantity, batches vs lots); every alias is resolved here so the
// pricing and resolver core never branches on field-name variants.
package normalize

import (
	"errors"
	"time"

	"canopy-pos/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrMissingID is returned when a payload carries no usable identifier.
var ErrMissingID = errors.New("product payload missing id")

// BatchPayload is a raw upstream lot record.
type BatchPayload struct {
	ID         string     `json:"id"`
	LotCode    string     `json:"lot_code"`
	LotNumber  string     `json:"lot_number"`
	Quantity   *int       `json:"quantity"`
	Remaining  *int       `json:"quantity_remaining"`
	CaseGTIN   string     `json:"case_gtin"`
	CaseUPC    string     `json:"case_upc"`
	UnitGTIN   string     `json:"unit_gtin"`
	UnitUPC    string     `json:"each_upc"`
	PackagedAt *time.Time `json:"packaged_on"`
	Location   string     `json:"location_code"`
}

// ProductPayload is a raw upstream catalog record with every field-name
// alias the known feeds emit.
type ProductPayload struct {
	ID              string         `json:"id"`
	StoreID         string         `json:"store_id"`
	SKU             string         `json:"sku"`
	Name            string         `json:"name"`
	Brand           string         `json:"brand"`
	Category        string         `json:"category"`
	SubCategory     string         `json:"sub_category"`
	THCPercent      *float64       `json:"thc_percent"`
	CBDPercent      *float64       `json:"cbd_percent"`
	Price           *float64       `json:"price"`
	UnitPrice       *float64       `json:"unit_price"`
	PackageSize     string         `json:"package_size"`
	Size            string         `json:"size"`
	EquivalentGrams *float64       `json:"equivalent_grams"`
	QuantityAvail   *int           `json:"quantity_available"`
	StockQuantity   *int           `json:"stock_quantity"`
	Batches         []BatchPayload `json:"batches"`
	Lots            []BatchPayload `json:"lots"`
}

// Product converts a raw payload into the canonical shape. Missing
// numerics default to zero rather than propagating as nulls; only a
// missing or malformed identifier is an error.
func Product(p ProductPayload) (domain.Product, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return domain.Product{}, ErrMissingID
	}

	storeID, _ := uuid.Parse(p.StoreID)

	out := domain.Product{
		ID:              id,
		StoreID:         storeID,
		SKU:             p.SKU,
		Name:            p.Name,
		Brand:           p.Brand,
		Category:        p.Category,
		SubCategory:     p.SubCategory,
		THCPercent:      floatOrZero(p.THCPercent),
		CBDPercent:      floatOrZero(p.CBDPercent),
		UnitPrice:       decimal.NewFromFloat(floatOrZero(first(p.UnitPrice, p.Price))),
		PackageSize:     firstString(p.PackageSize, p.Size),
		EquivalentGrams: p.EquivalentGrams,
		Stock:           intOrZero(first(p.QuantityAvail, p.StockQuantity)),
	}

	raw := p.Batches
	if len(raw) == 0 {
		raw = p.Lots
	}
	for _, b := range raw {
		out.Batches = append(out.Batches, batch(id, b))
	}

	return out, nil
}

func batch(productID uuid.UUID, b BatchPayload) domain.Batch {
	id, err := uuid.Parse(b.ID)
	if err != nil {
		id = uuid.New()
	}
	return domain.Batch{
		ID:         id,
		ProductID:  productID,
		LotCode:    firstString(b.LotCode, b.LotNumber),
		Quantity:   intOrZero(first(b.Remaining, b.Quantity)),
		CaseGTIN:   firstString(b.CaseGTIN, b.CaseUPC),
		UnitGTIN:   firstString(b.UnitGTIN, b.UnitUPC),
		PackagedAt: b.PackagedAt,
		Location:   b.Location,
	}
}

func first[T any](values ...*T) *T {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
