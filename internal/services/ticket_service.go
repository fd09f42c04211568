package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/luckydraw/backend/internal/models"
	"github.com/luckydraw/backend/internal/repository"
)

// TicketService attaches, detaches and checks raffle tickets
type TicketService struct {
	store  repository.AccountStore
	owners *ownerLookup
	qr     *QRService
	logger *slog.Logger
}

// NewTicketService creates a new TicketService. A nil cache reads the
// store on every lookup.
func NewTicketService(store repository.AccountStore, cache TicketCache, qr *QRService, logger *slog.Logger) *TicketService {
	return &TicketService{
		store:  store,
		owners: newOwnerLookup(store, cache),
		qr:     qr,
		logger: logger,
	}
}

// AddTicket appends a ticket to an account. The ticket value must not be
// held by any account, including this one.
func (s *TicketService) AddTicket(ctx context.Context, accountID, ticketNumber string) (*models.Account, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, validationError("Account ID is required")
	}
	ticketNumber = strings.TrimSpace(ticketNumber)
	if ticketNumber == "" {
		return nil, validationError("Ticket number is required")
	}

	// Read the store directly: a stale cache entry must not block a
	// ticket that was released.
	owner, err := s.store.FindByTicket(ctx, ticketNumber)
	switch {
	case err == nil:
		return nil, duplicateTicketError(ticketNumber, owner.AccountNumber)
	case !errors.Is(err, repository.ErrTicketNotFound):
		return nil, storageError("Failed to add ticket", err)
	}

	id, err := parseAccountID(accountID)
	if err != nil {
		return nil, err
	}

	account, err := s.store.AddTicket(ctx, id, ticketNumber)
	switch {
	case errors.Is(err, repository.ErrAccountNotFound):
		return nil, notFoundError("Account not found", err)
	case errors.Is(err, repository.ErrDuplicateTicket):
		// Lost a race with another writer; name the winner if it is visible.
		holder := "another account"
		if winner, findErr := s.store.FindByTicket(ctx, ticketNumber); findErr == nil {
			holder = winner.AccountNumber
		}
		return nil, duplicateTicketError(ticketNumber, holder)
	case err != nil:
		return nil, storageError("Failed to add ticket", err)
	}

	s.owners.forget(ctx, ticketNumber)

	s.logger.Info("ticket added", "account_id", account.ID, "ticket", ticketNumber)
	return account, nil
}

// CheckTicket reports whether the ticket exists and who holds it
func (s *TicketService) CheckTicket(ctx context.Context, ticketNumber string) (*models.TicketCheckResult, error) {
	ticketNumber = strings.TrimSpace(ticketNumber)

	owner, err := s.owners.find(ctx, ticketNumber)
	if err != nil {
		return nil, storageError("Failed to check ticket", err)
	}

	return &models.TicketCheckResult{
		Exists:       owner != nil,
		TicketNumber: ticketNumber,
		Account:      owner,
	}, nil
}

// RemoveTicket detaches the exact ticket value from the account
func (s *TicketService) RemoveTicket(ctx context.Context, accountID, ticketNumber string) (*models.Account, error) {
	id, err := parseAccountID(accountID)
	if err != nil {
		return nil, err
	}

	account, err := s.store.RemoveTicket(ctx, id, ticketNumber)
	switch {
	case errors.Is(err, repository.ErrAccountNotFound):
		return nil, notFoundError("Account not found", err)
	case errors.Is(err, repository.ErrTicketNotFound):
		return nil, notFoundError("Ticket not found in this account", err)
	case err != nil:
		return nil, storageError("Failed to remove ticket", err)
	}

	s.owners.forget(ctx, ticketNumber)

	s.logger.Info("ticket removed", "account_id", account.ID, "ticket", ticketNumber)
	return account, nil
}

// TicketQR renders an issued ticket as a PNG QR code
func (s *TicketService) TicketQR(ctx context.Context, ticketNumber string) (*models.TicketQRCode, error) {
	ticketNumber = strings.TrimSpace(ticketNumber)

	owner, err := s.owners.find(ctx, ticketNumber)
	if err != nil {
		return nil, storageError("Failed to generate QR code", err)
	}
	if owner == nil {
		return nil, notFoundError("Ticket not found", repository.ErrTicketNotFound)
	}

	image, err := s.qr.TicketImage(ticketNumber, owner.AccountNumber)
	if err != nil {
		return nil, storageError("Failed to generate QR code", err)
	}

	return &models.TicketQRCode{
		TicketNumber: ticketNumber,
		QRImage:      image,
	}, nil
}

func duplicateTicketError(ticketNumber, holder string) *ServiceError {
	return conflictError(
		fmt.Sprintf("Ticket %s already exists and is assigned to %s", ticketNumber, holder),
		repository.ErrDuplicateTicket,
	)
}

// ownerLookup resolves ticket owners through the cache
type ownerLookup struct {
	store repository.AccountStore
	cache TicketCache
}

func newOwnerLookup(store repository.AccountStore, cache TicketCache) *ownerLookup {
	if cache == nil {
		cache = NoopTicketCache{}
	}
	return &ownerLookup{store: store, cache: cache}
}

// find returns nil without error when nobody holds the ticket
func (l *ownerLookup) find(ctx context.Context, ticketNumber string) (*models.AccountSummary, error) {
	if ticketNumber == "" {
		return nil, nil
	}

	if owner, ok := l.cache.Get(ctx, ticketNumber); ok {
		return owner, nil
	}

	account, err := l.store.FindByTicket(ctx, ticketNumber)
	if errors.Is(err, repository.ErrTicketNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	owner := account.Summary()
	l.cache.Set(ctx, ticketNumber, owner)

	// A writer that committed between the read and Set has already
	// invalidated, so read again and drop the entry if it went stale.
	current, err := l.store.FindByTicket(ctx, ticketNumber)
	switch {
	case errors.Is(err, repository.ErrTicketNotFound):
		l.cache.Invalidate(ctx, ticketNumber)
		return nil, nil
	case err != nil:
		l.cache.Invalidate(ctx, ticketNumber)
		return nil, err
	case current.Summary() != owner:
		l.cache.Invalidate(ctx, ticketNumber)
		fresh := current.Summary()
		return &fresh, nil
	}

	return &owner, nil
}

func (l *ownerLookup) forget(ctx context.Context, ticketNumbers ...string) {
	l.cache.Invalidate(ctx, ticketNumbers...)
}
