package services

import (
	"context"
	"errors"
	"strings"

	"github.com/luckydraw/backend/internal/models"
	"github.com/luckydraw/backend/internal/repository"
)

// SearchService answers read-only lookups by ticket or account number
type SearchService struct {
	store  repository.AccountStore
	owners *ownerLookup
}

// NewSearchService creates a new SearchService
func NewSearchService(store repository.AccountStore, cache TicketCache) *SearchService {
	return &SearchService{
		store:  store,
		owners: newOwnerLookup(store, cache),
	}
}

// FindByTicket returns the account holding the ticket
func (s *SearchService) FindByTicket(ctx context.Context, ticketNumber string) (*models.TicketSearchResult, error) {
	ticketNumber = strings.TrimSpace(ticketNumber)

	owner, err := s.owners.find(ctx, ticketNumber)
	if err != nil {
		return nil, storageError("Search failed", err)
	}
	if owner == nil {
		return nil, notFoundError("Ticket not found", repository.ErrTicketNotFound)
	}

	return &models.TicketSearchResult{
		TicketNumber: ticketNumber,
		Account:      *owner,
	}, nil
}

// FindByAccountNumber matches the account number ignoring case and
// returns the account with all of its tickets
func (s *SearchService) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.AccountSearchResult, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		return nil, notFoundError("Account not found", repository.ErrAccountNotFound)
	}

	account, err := s.store.FindByAccountNumber(ctx, accountNumber)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, notFoundError("Account not found", err)
	}
	if err != nil {
		return nil, storageError("Search failed", err)
	}

	return &models.AccountSearchResult{
		Account: account.Summary(),
		Tickets: account.Tickets,
	}, nil
}
