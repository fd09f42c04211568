package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/luckydraw/backend/internal/models"
)

type memoryRecord struct {
	account models.Account
	seq     uint64
}

// MemoryStore keeps accounts in process memory. Every write takes the
// single write lock, so the uniqueness checks and the write are atomic.
type MemoryStore struct {
	mu          sync.RWMutex
	accounts    map[uuid.UUID]*memoryRecord
	byNumber    map[string]uuid.UUID // lowercase account number -> id
	ticketOwner map[string]uuid.UUID
	seq         uint64
	now         func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:    make(map[uuid.UUID]*memoryRecord),
		byNumber:    make(map[string]uuid.UUID),
		ticketOwner: make(map[string]uuid.UUID),
		now:         time.Now,
	}
}

// CreateAccount adds a new account to memory
func (s *MemoryStore) CreateAccount(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(account.AccountNumber)
	if _, exists := s.byNumber[key]; exists {
		return fmt.Errorf("create account %q: %w", account.AccountNumber, ErrDuplicateAccountNumber)
	}

	now := s.now()
	account.CreatedAt = now
	account.UpdatedAt = now
	account.Tickets = []string{}

	s.seq++
	s.accounts[account.ID] = &memoryRecord{account: *copyAccount(account), seq: s.seq}
	s.byNumber[key] = account.ID
	return nil
}

// GetAccount retrieves an account by id
func (s *MemoryStore) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return copyAccount(&rec.account), nil
}

// ListAccounts returns every account, newest first
func (s *MemoryStore) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	s.mu.RLock()
	records := make([]*memoryRecord, 0, len(s.accounts))
	for _, rec := range s.accounts {
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.account.CreatedAt.Equal(b.account.CreatedAt) {
			return a.account.CreatedAt.After(b.account.CreatedAt)
		}
		return a.seq > b.seq
	})

	list := make([]*models.Account, 0, len(records))
	for _, rec := range records {
		list = append(list, copyAccount(&rec.account))
	}
	s.mu.RUnlock()

	return list, nil
}

// UpdateAccountName replaces the display name of an account
func (s *MemoryStore) UpdateAccountName(ctx context.Context, id uuid.UUID, name string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}

	rec.account.Name = name
	rec.account.UpdatedAt = s.now()
	return copyAccount(&rec.account), nil
}

// DeleteAccount removes an account and releases its tickets
func (s *MemoryStore) DeleteAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}

	for _, ticket := range rec.account.Tickets {
		delete(s.ticketOwner, ticket)
	}
	delete(s.byNumber, strings.ToLower(rec.account.AccountNumber))
	delete(s.accounts, id)

	return copyAccount(&rec.account), nil
}

// FindByAccountNumber matches the account number case-insensitively
func (s *MemoryStore) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byNumber[strings.ToLower(accountNumber)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return copyAccount(&s.accounts[id].account), nil
}

// FindByTicket returns the account holding the exact ticket value
func (s *MemoryStore) FindByTicket(ctx context.Context, ticketNumber string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.ticketOwner[ticketNumber]
	if !ok {
		return nil, fmt.Errorf("ticket %q: %w", ticketNumber, ErrTicketNotFound)
	}
	return copyAccount(&s.accounts[id].account), nil
}

// AddTicket appends a ticket to an account
func (s *MemoryStore) AddTicket(ctx context.Context, accountID uuid.UUID, ticketNumber string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.accounts[accountID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	if _, taken := s.ticketOwner[ticketNumber]; taken {
		return nil, fmt.Errorf("add ticket %q: %w", ticketNumber, ErrDuplicateTicket)
	}

	rec.account.Tickets = append(rec.account.Tickets, ticketNumber)
	rec.account.UpdatedAt = s.now()
	s.ticketOwner[ticketNumber] = accountID

	return copyAccount(&rec.account), nil
}

// RemoveTicket detaches an exact ticket value from an account
func (s *MemoryStore) RemoveTicket(ctx context.Context, accountID uuid.UUID, ticketNumber string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.accounts[accountID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	if !rec.account.HasTicket(ticketNumber) {
		return nil, fmt.Errorf("ticket %q on account %s: %w", ticketNumber, accountID, ErrTicketNotFound)
	}

	rec.account.Tickets = removeFirst(rec.account.Tickets, ticketNumber)
	rec.account.UpdatedAt = s.now()
	delete(s.ticketOwner, ticketNumber)

	return copyAccount(&rec.account), nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func copyAccount(a *models.Account) *models.Account {
	c := *a
	c.Tickets = append([]string{}, a.Tickets...)
	return &c
}
