package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a raffle participant and the tickets it holds
type Account struct {
	ID            uuid.UUID `json:"id" db:"id" example:"5f0c6f1e-8a8e-4d0b-9d7a-3b0f0b8f6a11"`
	AccountNumber string    `json:"accountNumber" db:"account_number" example:"ACC001"`
	Name          string    `json:"name" db:"name" example:"Alice"`
	Tickets       []string  `json:"tickets"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// AccountSummary is the public projection of an account returned by lookups
type AccountSummary struct {
	ID            uuid.UUID `json:"id" example:"5f0c6f1e-8a8e-4d0b-9d7a-3b0f0b8f6a11"`
	AccountNumber string    `json:"accountNumber" example:"ACC001"`
	Name          string    `json:"name" example:"Alice"`
}

// Summary returns the public fields of the account
func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:            a.ID,
		AccountNumber: a.AccountNumber,
		Name:          a.Name,
	}
}

// HasTicket reports whether the account holds the exact ticket value
func (a *Account) HasTicket(ticketNumber string) bool {
	for _, t := range a.Tickets {
		if t == ticketNumber {
			return true
		}
	}
	return false
}
