package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/luckydraw/backend/internal/models"
	"github.com/luckydraw/backend/internal/repository"
)

// AccountService manages raffle participant accounts
type AccountService struct {
	store  repository.AccountStore
	cache  TicketCache
	logger *slog.Logger
}

// NewAccountService creates a new AccountService. A nil cache disables
// ticket cache invalidation.
func NewAccountService(store repository.AccountStore, cache TicketCache, logger *slog.Logger) *AccountService {
	if cache == nil {
		cache = NoopTicketCache{}
	}
	return &AccountService{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Create registers a new account with no tickets
func (s *AccountService) Create(ctx context.Context, accountNumber, name string) (*models.Account, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		return nil, validationError("Account number is required")
	}

	existing, err := s.store.FindByAccountNumber(ctx, accountNumber)
	switch {
	case err == nil:
		return nil, conflictError(
			fmt.Sprintf("Account number already exists as %q", existing.AccountNumber),
			repository.ErrDuplicateAccountNumber,
		)
	case !errors.Is(err, repository.ErrAccountNotFound):
		return nil, storageError("Failed to create account", err)
	}

	account := &models.Account{
		ID:            uuid.New(),
		AccountNumber: accountNumber,
		Name:          strings.TrimSpace(name),
		Tickets:       []string{},
	}

	if err := s.store.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateAccountNumber) {
			return nil, conflictError("Account number already exists", err)
		}
		return nil, storageError("Failed to create account", err)
	}

	s.logger.Info("account created", "account_id", account.ID, "account_number", account.AccountNumber)
	return account, nil
}

// Get returns a single account by id
func (s *AccountService) Get(ctx context.Context, id string) (*models.Account, error) {
	accountID, err := parseAccountID(id)
	if err != nil {
		return nil, err
	}

	account, err := s.store.GetAccount(ctx, accountID)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, notFoundError("Account not found", err)
	}
	if err != nil {
		return nil, storageError("Failed to fetch account", err)
	}

	return account, nil
}

// List returns every account, most recently created first
func (s *AccountService) List(ctx context.Context) ([]*models.Account, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, storageError("Failed to fetch accounts", err)
	}
	return accounts, nil
}

// Update replaces the account's display name
func (s *AccountService) Update(ctx context.Context, id, name string) (*models.Account, error) {
	accountID, err := parseAccountID(id)
	if err != nil {
		return nil, err
	}

	account, err := s.store.UpdateAccountName(ctx, accountID, strings.TrimSpace(name))
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, notFoundError("Account not found", err)
	}
	if err != nil {
		return nil, storageError("Failed to update account", err)
	}

	// Cached owners carry the name.
	s.cache.Invalidate(ctx, account.Tickets...)

	return account, nil
}

// Delete removes the account and every ticket it holds
func (s *AccountService) Delete(ctx context.Context, id string) error {
	accountID, err := parseAccountID(id)
	if err != nil {
		return err
	}

	deleted, err := s.store.DeleteAccount(ctx, accountID)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return notFoundError("Account not found", err)
	}
	if err != nil {
		return storageError("Failed to delete account", err)
	}

	s.cache.Invalidate(ctx, deleted.Tickets...)

	s.logger.Info("account deleted",
		"account_id", deleted.ID,
		"account_number", deleted.AccountNumber,
		"tickets_released", len(deleted.Tickets),
	)
	return nil
}

// parseAccountID treats a malformed id like an unknown one
func parseAccountID(id string) (uuid.UUID, error) {
	accountID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, notFoundError("Account not found", repository.ErrAccountNotFound)
	}
	return accountID, nil
}
