package domain

import (
	"time"

	"github.com/google/uuid"
)

// Operator is a back-office or register user.
type Operator struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RefreshToken is an opaque long-lived credential issued at login.
type RefreshToken struct {
	ID         uuid.UUID `json:"id" db:"id"`
	OperatorID uuid.UUID `json:"operator_id" db:"operator_id"`
	Token      string    `json:"token" db:"token"`
	ExpiresAt  time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	Revoked    bool      `json:"revoked" db:"revoked"`
}
