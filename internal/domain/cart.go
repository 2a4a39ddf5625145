package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountKind enumerates the order-level discount strategies.
type DiscountKind string

const (
	DiscountNone       DiscountKind = "none"
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// OrderDiscount is the single order-level discount on a cart. Value is
// a percentage for DiscountPercentage and a money amount for DiscountFixed.
type OrderDiscount struct {
	Kind  DiscountKind    `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// NoDiscount returns the zero order discount.
func NoDiscount() OrderDiscount {
	return OrderDiscount{Kind: DiscountNone}
}

// CartLine is one entry in the active sale. DiscountPct is a percentage
// in [0,100]; out-of-range values are clamped by the pricing engine.
type CartLine struct {
	Product     Product         `json:"product"`
	Quantity    int             `json:"quantity"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	PromoTag    string          `json:"promo_tag,omitempty"`
	Batch       *Batch          `json:"batch,omitempty"`
}

// LineKey identifies a cart line for merging: the same product scanned
// against the same lot increments quantity instead of adding a row.
func (l CartLine) LineKey() string {
	lot := "none"
	if l.Batch != nil && l.Batch.LotCode != "" {
		lot = l.Batch.LotCode
	}
	return l.Product.ID.String() + ":" + lot
}

// Totals holds the derived monetary aggregates of a cart. Values are
// kept unrounded during accumulation; Presented rounds for display.
type Totals struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	DiscountedSubtotal decimal.Decimal `json:"discounted_subtotal"`
	Tax                decimal.Decimal `json:"tax"`
	Total              decimal.Decimal `json:"total"`
}

// Presented returns the totals rounded to two decimal places. Rounding
// happens only here, never inside the accumulation.
func (t Totals) Presented() Totals {
	return Totals{
		Subtotal:           t.Subtotal.Round(2),
		DiscountAmount:     t.DiscountAmount.Round(2),
		DiscountedSubtotal: t.DiscountedSubtotal.Round(2),
		Tax:                t.Tax.Round(2),
		Total:              t.Total.Round(2),
	}
}

// CartSession is the live state of one register sale. It is a plain
// serializable value; all mutations return a new session rather than
// editing in place, so state transitions can be tested and replayed.
type CartSession struct {
	ID         uuid.UUID     `json:"id"`
	StoreID    uuid.UUID     `json:"store_id"`
	OperatorID uuid.UUID     `json:"operator_id"`
	CustomerID *uuid.UUID    `json:"customer_id,omitempty"`
	Lines      []CartLine    `json:"lines"`
	Discount   OrderDiscount `json:"discount"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// NewCartSession opens an empty session for a store register.
func NewCartSession(storeID, operatorID uuid.UUID) CartSession {
	now := time.Now().UTC()
	return CartSession{
		ID:         uuid.New(),
		StoreID:    storeID,
		OperatorID: operatorID,
		Discount:   NoDiscount(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s CartSession) touched() CartSession {
	s.UpdatedAt = time.Now().UTC()
	return s
}

func (s CartSession) cloneLines() []CartLine {
	lines := make([]CartLine, len(s.Lines))
	copy(lines, s.Lines)
	return lines
}

// WithLine merges a line into the session. A line with the same
// (product, lot) key increments quantity; otherwise the line is
// appended. Non-positive quantities are ignored.
func (s CartSession) WithLine(line CartLine) CartSession {
	if line.Quantity <= 0 {
		return s
	}
	lines := s.cloneLines()
	key := line.LineKey()
	for i, existing := range lines {
		if existing.LineKey() == key {
			lines[i].Quantity += line.Quantity
			s.Lines = lines
			return s.touched()
		}
	}
	s.Lines = append(lines, line)
	return s.touched()
}

// WithQuantity sets the quantity of the line identified by key. A
// quantity of zero or less removes the line; negative quantities are
// never stored.
func (s CartSession) WithQuantity(key string, quantity int) CartSession {
	if quantity <= 0 {
		return s.WithoutLine(key)
	}
	lines := s.cloneLines()
	for i, line := range lines {
		if line.LineKey() == key {
			lines[i].Quantity = quantity
			s.Lines = lines
			return s.touched()
		}
	}
	return s
}

// WithLineDiscount sets the per-line percentage discount, clamped to
// [0,100] at this mutation boundary.
func (s CartSession) WithLineDiscount(key string, pct decimal.Decimal) CartSession {
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	if pct.GreaterThan(decimal.NewFromInt(100)) {
		pct = decimal.NewFromInt(100)
	}
	lines := s.cloneLines()
	for i, line := range lines {
		if line.LineKey() == key {
			lines[i].DiscountPct = pct
			s.Lines = lines
			return s.touched()
		}
	}
	return s
}

// WithoutLine removes the line identified by key, if present.
func (s CartSession) WithoutLine(key string) CartSession {
	lines := make([]CartLine, 0, len(s.Lines))
	for _, line := range s.Lines {
		if line.LineKey() != key {
			lines = append(lines, line)
		}
	}
	if len(lines) == len(s.Lines) {
		return s
	}
	s.Lines = lines
	return s.touched()
}

// WithDiscount replaces the order-level discount. Negative values are
// clamped to zero; unknown kinds reset to none.
func (s CartSession) WithDiscount(d OrderDiscount) CartSession {
	switch d.Kind {
	case DiscountPercentage, DiscountFixed:
		if d.Value.IsNegative() {
			d.Value = decimal.Zero
		}
	default:
		d = NoDiscount()
	}
	s.Discount = d
	return s.touched()
}

// WithCustomer attaches a customer reference to the session.
func (s CartSession) WithCustomer(customerID *uuid.UUID) CartSession {
	s.CustomerID = customerID
	return s.touched()
}

// Cleared drops every line and the order discount while keeping the
// session identity, as after a manual clear or a completed sale.
func (s CartSession) Cleared() CartSession {
	s.Lines = nil
	s.Discount = NoDiscount()
	s.CustomerID = nil
	return s.touched()
}
