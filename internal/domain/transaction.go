package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus enumerates the terminal states of a sale.
type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionParked    TransactionStatus = "parked"
	TransactionCancelled TransactionStatus = "cancelled"
)

// TransactionItem is the immutable snapshot of a cart line taken at
// park or completion time. Prices are copied so later catalog edits
// never rewrite history.
type TransactionItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	LotCode     string          `json:"lot_code,omitempty" db:"lot_code"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct" db:"discount_pct"`
	PromoTag    string          `json:"promo_tag,omitempty" db:"promo_tag"`
}

// Transaction is a finalized or parked sale. Immutable once written;
// resuming a parked transaction reconstructs a live cart from Items.
type Transaction struct {
	ID             uuid.UUID         `json:"id" db:"id"`
	StoreID        uuid.UUID         `json:"store_id" db:"store_id"`
	OperatorID     uuid.UUID         `json:"operator_id" db:"operator_id"`
	CustomerID     *uuid.UUID        `json:"customer_id,omitempty" db:"customer_id"`
	Items          []TransactionItem `json:"items"`
	Subtotal       decimal.Decimal   `json:"subtotal" db:"subtotal"`
	DiscountAmount decimal.Decimal   `json:"discount_amount" db:"discount_amount"`
	Tax            decimal.Decimal   `json:"tax" db:"tax"`
	Total          decimal.Decimal   `json:"total" db:"total"`
	PaymentMethod  string            `json:"payment_method,omitempty" db:"payment_method"`
	Status         TransactionStatus `json:"status" db:"status"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
}
