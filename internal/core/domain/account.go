package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role classifies an account within the closed payment loop.
type Role string

const (
	// RoleConsumer accounts spend and receive; they are seeded with a
	// starting balance when provisioned.
	RoleConsumer Role = "consumer"
	// RoleMerchant accounts primarily receive payments.
	RoleMerchant Role = "merchant"
	// RoleAdmin accounts provision other accounts; they hold no funds
	// of interest.
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one the platform knows.
func (r Role) Valid() bool {
	switch r {
	case RoleConsumer, RoleMerchant, RoleAdmin:
		return true
	}
	return false
}

// Account is a balance-holding identity. Balance is in the smallest
// currency unit; it can never go negative.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	DisplayName  string    `json:"display_name"`
	Balance      int64     `json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CanPay reports whether the account may originate transfers.
func (a *Account) CanPay() bool {
	return a.Role == RoleConsumer || a.Role == RoleMerchant
}

// CanReceive reports whether the account may be the target of a transfer.
func (a *Account) CanReceive() bool {
	return a.Role == RoleConsumer || a.Role == RoleMerchant
}
