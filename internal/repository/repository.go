// Package repository persists accounts and the ticket reverse index.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/luckydraw/backend/internal/models"
)

var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrTicketNotFound         = errors.New("ticket not found")
	ErrDuplicateAccountNumber = errors.New("duplicate account number")
	ErrDuplicateTicket        = errors.New("duplicate ticket")
)

// AccountStore defines how accounts and their tickets are persisted.
//
// Implementations enforce both uniqueness rules themselves: account
// numbers case-insensitively and ticket values across all accounts.
// Returned accounts are copies and carry their tickets in insertion order.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	UpdateAccountName(ctx context.Context, id uuid.UUID, name string) (*models.Account, error)
	// DeleteAccount removes the account with its tickets and returns it as it was.
	DeleteAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)

	FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	FindByTicket(ctx context.Context, ticketNumber string) (*models.Account, error)

	AddTicket(ctx context.Context, accountID uuid.UUID, ticketNumber string) (*models.Account, error)
	RemoveTicket(ctx context.Context, accountID uuid.UUID, ticketNumber string) (*models.Account, error)

	Ping(ctx context.Context) error
}

var (
	_ AccountStore = (*PostgresStore)(nil)
	_ AccountStore = (*MemoryStore)(nil)
)
