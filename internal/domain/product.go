package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog entry as the cart sees it: immutable,
// owned by the inventory side of the back office.
type Product struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	StoreID         uuid.UUID       `json:"store_id" db:"store_id"`
	SKU             string          `json:"sku" db:"sku"`
	Name            string          `json:"name" db:"name"`
	Brand           string          `json:"brand" db:"brand"`
	Category        string          `json:"category" db:"category"`
	SubCategory     string          `json:"sub_category" db:"sub_category"`
	THCPercent      float64         `json:"thc_percent" db:"thc_percent"`
	CBDPercent      float64         `json:"cbd_percent" db:"cbd_percent"`
	UnitPrice       decimal.Decimal `json:"unit_price" db:"unit_price"`
	PackageSize     string          `json:"package_size,omitempty" db:"package_size"`
	EquivalentGrams *float64        `json:"equivalent_grams,omitempty" db:"equivalent_grams"`
	Stock           int             `json:"stock" db:"stock"`
	Batches         []Batch         `json:"batches,omitempty"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// Batch is a traceability lot for a product. The lot code is unique
// within a product; GTINs are optional 14-digit codes.
type Batch struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	ProductID  uuid.UUID  `json:"product_id" db:"product_id"`
	LotCode    string     `json:"lot_code" db:"lot_code"`
	Quantity   int        `json:"quantity" db:"quantity"`
	CaseGTIN   string     `json:"case_gtin,omitempty" db:"case_gtin"`
	UnitGTIN   string     `json:"unit_gtin,omitempty" db:"unit_gtin"`
	PackagedAt *time.Time `json:"packaged_at,omitempty" db:"packaged_at"`
	Location   string     `json:"location,omitempty" db:"location"`
}
