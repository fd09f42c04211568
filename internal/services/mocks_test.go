package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/luckydraw/backend/internal/models"
	"github.com/luckydraw/backend/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) account(args mock.Arguments) (*models.Account, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountStore) CreateAccount(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountStore) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return m.account(m.Called(ctx, id))
}

func (m *MockAccountStore) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountStore) UpdateAccountName(ctx context.Context, id uuid.UUID, name string) (*models.Account, error) {
	return m.account(m.Called(ctx, id, name))
}

func (m *MockAccountStore) DeleteAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return m.account(m.Called(ctx, id))
}

func (m *MockAccountStore) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	return m.account(m.Called(ctx, accountNumber))
}

func (m *MockAccountStore) FindByTicket(ctx context.Context, ticketNumber string) (*models.Account, error) {
	return m.account(m.Called(ctx, ticketNumber))
}

func (m *MockAccountStore) AddTicket(ctx context.Context, accountID uuid.UUID, ticketNumber string) (*models.Account, error) {
	return m.account(m.Called(ctx, accountID, ticketNumber))
}

func (m *MockAccountStore) RemoveTicket(ctx context.Context, accountID uuid.UUID, ticketNumber string) (*models.Account, error) {
	return m.account(m.Called(ctx, accountID, ticketNumber))
}

func (m *MockAccountStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockTicketCache struct {
	mock.Mock
}

func (m *MockTicketCache) Get(ctx context.Context, ticketNumber string) (*models.AccountSummary, bool) {
	args := m.Called(ctx, ticketNumber)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*models.AccountSummary), args.Bool(1)
}

func (m *MockTicketCache) Set(ctx context.Context, ticketNumber string, owner models.AccountSummary) {
	m.Called(ctx, ticketNumber, owner)
}

func (m *MockTicketCache) Invalidate(ctx context.Context, ticketNumbers ...string) {
	m.Called(ctx, ticketNumbers)
}

func (m *MockTicketCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// memoryTicketCache is a TicketCache that never expires entries
type memoryTicketCache struct {
	mu      sync.Mutex
	entries map[string]models.AccountSummary
}

func newMemoryTicketCache() *memoryTicketCache {
	return &memoryTicketCache{entries: make(map[string]models.AccountSummary)}
}

func (c *memoryTicketCache) Get(_ context.Context, ticketNumber string) (*models.AccountSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	owner, ok := c.entries[ticketNumber]
	if !ok {
		return nil, false
	}
	return &owner, true
}

func (c *memoryTicketCache) Set(_ context.Context, ticketNumber string, owner models.AccountSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ticketNumber] = owner
}

func (c *memoryTicketCache) Invalidate(_ context.Context, ticketNumbers ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range ticketNumbers {
		delete(c.entries, t)
	}
}

func (c *memoryTicketCache) Ping(context.Context) error { return nil }

// interleavedStore runs afterFind once, right after the first
// FindByTicket read that happens while it is set.
type interleavedStore struct {
	repository.AccountStore
	afterFind func()
	once      sync.Once
}

func (s *interleavedStore) FindByTicket(ctx context.Context, ticketNumber string) (*models.Account, error) {
	account, err := s.AccountStore.FindByTicket(ctx, ticketNumber)
	if s.afterFind != nil {
		s.once.Do(s.afterFind)
	}
	return account, err
}
