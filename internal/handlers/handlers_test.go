package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luckydraw/backend/internal/config"
	"github.com/luckydraw/backend/internal/models"
	"github.com/luckydraw/backend/internal/repository"
	"github.com/luckydraw/backend/internal/services"
)

type testServer struct {
	router http.Handler
	store  repository.AccountStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithStore(t, repository.NewMemoryStore())
}

func newTestServerWithStore(t *testing.T, store repository.AccountStore) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Server: config.ServerConfig{
			RequestTimeout:     5 * time.Second,
			CORSAllowedOrigins: []string{"*"},
		},
	}

	router := NewRouter(cfg, Dependencies{
		Accounts: services.NewAccountService(store, nil, logger),
		Tickets:  services.NewTicketService(store, nil, services.NewQRService(), logger),
		Search:   services.NewSearchService(store, nil),
		Store:    store,
		Logger:   logger,
	})

	return &testServer{router: router, store: store}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) createAccount(t *testing.T, accountNumber string) models.Account {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/accounts", `{"accountNumber":"`+accountNumber+`","name":"Test"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var account models.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &account))
	return account
}

func (s *testServer) addTicket(t *testing.T, accountID uuid.UUID, ticket string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, http.MethodPost, "/api/tickets", `{"accountId":"`+accountID.String()+`","ticketNumber":"`+ticket+`"}`)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) services.ErrorResponse {
	t.Helper()

	var resp services.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAccountHandler_CRUD(t *testing.T) {
	s := newTestServer(t)

	created := s.createAccount(t, "ACC001")
	assert.Equal(t, "ACC001", created.AccountNumber)
	assert.Equal(t, []string{}, created.Tickets)

	t.Run("get", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/accounts/"+created.ID.String(), "")
		require.Equal(t, http.StatusOK, w.Code)

		var got models.Account
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("list", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/accounts", "")
		require.Equal(t, http.StatusOK, w.Code)

		var list []models.Account
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		assert.Len(t, list, 1)
	})

	t.Run("update", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/accounts/"+created.ID.String(), `{"name":"Renamed"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var got models.Account
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "Renamed", got.Name)
		assert.Equal(t, "ACC001", got.AccountNumber)
	})

	t.Run("delete", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/accounts/"+created.ID.String(), "")
		require.Equal(t, http.StatusOK, w.Code)

		var msg models.MessageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
		assert.Equal(t, "Account deleted successfully", msg.Message)

		w = s.do(t, http.MethodGet, "/api/accounts/"+created.ID.String(), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAccountHandler_Errors(t *testing.T) {
	s := newTestServer(t)
	s.createAccount(t, "ACC001")

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"duplicate ignoring case", http.MethodPost, "/api/accounts", `{"accountNumber":"acc001"}`, http.StatusConflict, `Account number already exists as "ACC001"`},
		{"missing account number", http.MethodPost, "/api/accounts", `{"name":"x"}`, http.StatusBadRequest, "Account number is required"},
		{"blank account number", http.MethodPost, "/api/accounts", `{"accountNumber":"   "}`, http.StatusBadRequest, "Account number is required"},
		{"malformed body", http.MethodPost, "/api/accounts", `{"accountNumber":`, http.StatusBadRequest, "Invalid request body"},
		{"unknown field", http.MethodPost, "/api/accounts", `{"accountNumber":"X","tickets":["T1"]}`, http.StatusBadRequest, "Invalid request body"},
		{"two objects", http.MethodPost, "/api/accounts", `{"accountNumber":"X"}{}`, http.StatusBadRequest, "Request body must only contain a single JSON object"},
		{"too long", http.MethodPost, "/api/accounts", `{"accountNumber":"` + strings.Repeat("9", 65) + `"}`, http.StatusBadRequest, "Validation failed"},
		{"get unknown", http.MethodGet, "/api/accounts/" + uuid.NewString(), "", http.StatusNotFound, "Account not found"},
		{"get malformed id", http.MethodGet, "/api/accounts/nope", "", http.StatusNotFound, "Account not found"},
		{"update unknown", http.MethodPut, "/api/accounts/" + uuid.NewString(), `{"name":"x"}`, http.StatusNotFound, "Account not found"},
		{"delete unknown", http.MethodDelete, "/api/accounts/" + uuid.NewString(), "", http.StatusNotFound, "Account not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, decodeError(t, w).Error)
		})
	}
}

func TestTicketHandler(t *testing.T) {
	s := newTestServer(t)
	a := s.createAccount(t, "A")
	b := s.createAccount(t, "B")

	t.Run("add", func(t *testing.T) {
		w := s.addTicket(t, a.ID, "T1")
		require.Equal(t, http.StatusCreated, w.Code)

		var account models.Account
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &account))
		assert.Equal(t, []string{"T1"}, account.Tickets)
	})

	t.Run("add duplicate to other account", func(t *testing.T) {
		w := s.addTicket(t, b.ID, "T1")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Ticket T1 already exists and is assigned to A", decodeError(t, w).Error)
	})

	t.Run("add missing fields", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/tickets", `{"ticketNumber":"T9"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Account ID is required", decodeError(t, w).Error)

		w = s.do(t, http.MethodPost, "/api/tickets", `{"accountId":"`+a.ID.String()+`"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Ticket number is required", decodeError(t, w).Error)
	})

	t.Run("add to unknown account", func(t *testing.T) {
		w := s.addTicket(t, uuid.New(), "T9")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("check held", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/tickets/check/T1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var result models.TicketCheckResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.True(t, result.Exists)
		require.NotNil(t, result.Account)
		assert.Equal(t, "A", result.Account.AccountNumber)
	})

	t.Run("check free", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/tickets/check/T2", "")
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["exists"])
		assert.NotContains(t, body, "account")
	})

	t.Run("qr", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/tickets/T1/qr", "")
		require.Equal(t, http.StatusOK, w.Code)

		var qr models.TicketQRCode
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &qr))
		assert.Equal(t, "T1", qr.TicketNumber)
		assert.NotEmpty(t, qr.QRImage)

		w = s.do(t, http.MethodGet, "/api/tickets/T404/qr", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("remove from wrong account", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/tickets/"+b.ID.String()+"/T1", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Ticket not found in this account", decodeError(t, w).Error)
	})

	t.Run("remove", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/tickets/"+a.ID.String()+"/T1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var result models.TicketRemovalResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, "Ticket removed successfully", result.Message)
		require.NotNil(t, result.Account)
		assert.Empty(t, result.Account.Tickets)

		w = s.addTicket(t, b.ID, "T1")
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestTicketHandler_EscapedPathValues(t *testing.T) {
	s := newTestServer(t)
	a := s.createAccount(t, "ACC/1")

	for _, ticket := range []string{"A/B", "50%", "A B"} {
		require.Equal(t, http.StatusCreated, s.addTicket(t, a.ID, ticket).Code, ticket)
	}

	t.Run("search by ticket", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/search/ticket/A%2FB", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result models.TicketSearchResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, "A/B", result.TicketNumber)
		assert.Equal(t, a.ID, result.Account.ID)
	})

	t.Run("percent sign", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/search/ticket/50%25", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("check", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/tickets/check/A%2FB", "")
		require.Equal(t, http.StatusOK, w.Code)

		var result models.TicketCheckResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.True(t, result.Exists)
		assert.Equal(t, "A/B", result.TicketNumber)
	})

	t.Run("qr", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/tickets/A%2FB/qr", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("search by account number", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/search/account/acc%2F1", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result models.AccountSearchResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, "ACC/1", result.Account.AccountNumber)
		assert.Equal(t, []string{"A/B", "50%", "A B"}, result.Tickets)
	})

	t.Run("remove", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/tickets/"+a.ID.String()+"/A%2FB", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result models.TicketRemovalResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, []string{"50%", "A B"}, result.Account.Tickets)
	})

	t.Run("malformed escape", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/search/ticket/x", nil)
		req.URL.RawPath = "/api/search/ticket/A%2FB%zz"

		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid path parameter", decodeError(t, w).Error)
	})
}

func TestAccountHandler_UpdateWithoutBody(t *testing.T) {
	s := newTestServer(t)
	a := s.createAccount(t, "ACC001")

	w := s.do(t, http.MethodPut, "/api/accounts/"+a.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "", got.Name)
	assert.Equal(t, "ACC001", got.AccountNumber)

	w = s.do(t, http.MethodPut, "/api/accounts/"+a.ID.String(), `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchHandler(t *testing.T) {
	s := newTestServer(t)
	a := s.createAccount(t, "ACC001")
	require.Equal(t, http.StatusCreated, s.addTicket(t, a.ID, "T1").Code)

	t.Run("by ticket", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/search/ticket/T1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var result models.TicketSearchResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, "T1", result.TicketNumber)
		assert.Equal(t, a.ID, result.Account.ID)
	})

	t.Run("by ticket not found", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/search/ticket/T2", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Ticket not found", decodeError(t, w).Error)
	})

	t.Run("by account number ignoring case", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/search/account/acc001", "")
		require.Equal(t, http.StatusOK, w.Code)

		var result models.AccountSearchResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, "ACC001", result.Account.AccountNumber)
		assert.Equal(t, []string{"T1"}, result.Tickets)
	})

	t.Run("by account number not found", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/search/account/ACC999", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Account not found", decodeError(t, w).Error)
	})

	t.Run("deleted account releases ticket", func(t *testing.T) {
		require.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/accounts/"+a.ID.String(), "").Code)

		w := s.do(t, http.MethodGet, "/api/search/ticket/T1", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

type failingStore struct {
	*repository.MemoryStore
}

func (failingStore) ListAccounts(context.Context) ([]*models.Account, error) {
	return nil, errors.New("pq: connection refused")
}

func (failingStore) Ping(context.Context) error {
	return errors.New("pq: connection refused")
}

func TestStorageErrorsHideCause(t *testing.T) {
	s := newTestServerWithStore(t, failingStore{repository.NewMemoryStore()})

	w := s.do(t, http.MethodGet, "/api/accounts", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to fetch accounts", decodeError(t, w).Error)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestHealthHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		s := newTestServer(t)

		for _, path := range []string{"/health", "/api/health"} {
			w := s.do(t, http.MethodGet, path, "")
			require.Equal(t, http.StatusOK, w.Code)

			var status models.HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
			assert.Equal(t, "ok", status.Status)
			assert.Equal(t, "connected", status.Database)
			assert.Equal(t, "disabled", status.Cache)
		}
	})

	t.Run("database down", func(t *testing.T) {
		s := newTestServerWithStore(t, failingStore{repository.NewMemoryStore()})

		w := s.do(t, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var status models.HealthStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, "degraded", status.Status)
		assert.Equal(t, "disconnected", status.Database)
	})
}

func TestUnknownAPIRoute(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/nothing-here", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
