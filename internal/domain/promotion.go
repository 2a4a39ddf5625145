package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Promotion is a back-office discount campaign. The Tag is the opaque
// string a register uses to apply the promotion to a cart.
type Promotion struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	StoreID   uuid.UUID       `json:"store_id" db:"store_id"`
	Name      string          `json:"name" db:"name"`
	Tag       string          `json:"tag" db:"tag"`
	Kind      DiscountKind    `json:"kind" db:"kind"`
	Value     decimal.Decimal `json:"value" db:"value"`
	StartsAt  time.Time       `json:"starts_at" db:"starts_at"`
	EndsAt    time.Time       `json:"ends_at" db:"ends_at"`
	Active    bool            `json:"active" db:"active"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// CurrentAt reports whether the promotion can be applied at t.
func (p Promotion) CurrentAt(t time.Time) bool {
	return p.Active && !t.Before(p.StartsAt) && t.Before(p.EndsAt)
}

// StoreHours is the configured opening window for one weekday.
// Weekday follows time.Weekday (Sunday = 0).
type StoreHours struct {
	StoreID  uuid.UUID `json:"store_id" db:"store_id"`
	Weekday  int       `json:"weekday" db:"weekday"`
	OpensAt  string    `json:"opens_at" db:"opens_at"`
	ClosesAt string    `json:"closes_at" db:"closes_at"`
	Closed   bool      `json:"closed" db:"closed"`
}
