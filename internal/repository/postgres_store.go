package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/luckydraw/backend/internal/database"
	"github.com/luckydraw/backend/internal/models"
)

const uniqueViolation = "23505"

const (
	accountNumberConstraint = "accounts_account_number_lower_key"
	ticketNumberConstraint  = "tickets_ticket_number_key"
)

const accountColumns = `id, account_number, name, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// PostgresStore implements AccountStore on PostgreSQL
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a new PostgresStore
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateAccount inserts the account; the store assigns the timestamps
func (s *PostgresStore) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, account_number, name)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query, account.ID, account.AccountNumber, account.Name).
		Scan(&account.CreatedAt, &account.UpdatedAt)
	if isUniqueViolation(err, accountNumberConstraint) {
		return fmt.Errorf("create account %q: %w", account.AccountNumber, ErrDuplicateAccountNumber)
	}
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	if account.Tickets == nil {
		account.Tickets = []string{}
	}
	return nil
}

// GetAccount retrieves an account by id
func (s *PostgresStore) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return s.findOne(ctx, query, id)
}

// ListAccounts returns every account, newest first
func (s *PostgresStore) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC, seq DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*models.Account{}
	byID := make(map[uuid.UUID]*models.Account)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
		byID[account.ID] = account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	if len(accounts) == 0 {
		return accounts, nil
	}

	ticketRows, err := s.db.QueryContext(ctx, `SELECT account_id, ticket_number FROM tickets ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer ticketRows.Close()

	for ticketRows.Next() {
		var accountID uuid.UUID
		var ticket string
		if err := ticketRows.Scan(&accountID, &ticket); err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		// Accounts created after the first query are not in the list.
		if account, ok := byID[accountID]; ok {
			account.Tickets = append(account.Tickets, ticket)
		}
	}
	if err := ticketRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	return accounts, nil
}

// UpdateAccountName replaces the display name of an account
func (s *PostgresStore) UpdateAccountName(ctx context.Context, id uuid.UUID, name string) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns

	return s.findOne(ctx, query, id, name)
}

// DeleteAccount removes an account; its tickets are removed by cascade
func (s *PostgresStore) DeleteAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var deleted *models.Account

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		account, err := lockAccount(ctx, tx, id)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}

		deleted = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

// FindByAccountNumber matches the account number case-insensitively
func (s *PostgresStore) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(account_number) = LOWER($1)`
	return s.findOne(ctx, query, accountNumber)
}

// FindByTicket returns the account holding the exact ticket value
func (s *PostgresStore) FindByTicket(ctx context.Context, ticketNumber string) (*models.Account, error) {
	query := `
		SELECT a.id, a.account_number, a.name, a.created_at, a.updated_at
		FROM tickets t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.ticket_number = $1
	`

	account, err := s.findOne(ctx, query, ticketNumber)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("ticket %q: %w", ticketNumber, ErrTicketNotFound)
	}
	return account, err
}

// AddTicket appends a ticket to an account
func (s *PostgresStore) AddTicket(ctx context.Context, accountID uuid.UUID, ticketNumber string) (*models.Account, error) {
	var updated *models.Account

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		account, err := lockAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO tickets (ticket_number, account_id) VALUES ($1, $2)`,
			ticketNumber, accountID,
		)
		if isUniqueViolation(err, ticketNumberConstraint) {
			return fmt.Errorf("add ticket %q: %w", ticketNumber, ErrDuplicateTicket)
		}
		if err != nil {
			return fmt.Errorf("failed to add ticket: %w", err)
		}

		if err := touchAccount(ctx, tx, account); err != nil {
			return err
		}

		account.Tickets = append(account.Tickets, ticketNumber)
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// RemoveTicket detaches an exact ticket value from an account
func (s *PostgresStore) RemoveTicket(ctx context.Context, accountID uuid.UUID, ticketNumber string) (*models.Account, error) {
	var updated *models.Account

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		account, err := lockAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM tickets WHERE account_id = $1 AND ticket_number = $2`,
			accountID, ticketNumber,
		)
		if err != nil {
			return fmt.Errorf("failed to remove ticket: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("ticket %q on account %s: %w", ticketNumber, accountID, ErrTicketNotFound)
		}

		if err := touchAccount(ctx, tx, account); err != nil {
			return err
		}

		account.Tickets = removeFirst(account.Tickets, ticketNumber)
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Ping checks the database connection
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, args ...any) (*models.Account, error) {
	account, err := scanAccount(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if account.Tickets, err = loadTickets(ctx, s.db, account.ID); err != nil {
		return nil, err
	}

	return account, nil
}

func (s *PostgresStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// lockAccount loads an account row FOR UPDATE along with its tickets
func lockAccount(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	account, err := scanAccount(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}

	if account.Tickets, err = loadTickets(ctx, tx, id); err != nil {
		return nil, err
	}

	return account, nil
}

func touchAccount(ctx context.Context, tx *sql.Tx, account *models.Account) error {
	err := tx.QueryRowContext(ctx,
		`UPDATE accounts SET updated_at = NOW() WHERE id = $1 RETURNING updated_at`,
		account.ID,
	).Scan(&account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update account timestamp: %w", err)
	}
	return nil
}

func loadTickets(ctx context.Context, q queryer, accountID uuid.UUID) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT ticket_number FROM tickets WHERE account_id = $1 ORDER BY position`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load tickets: %w", err)
	}
	defer rows.Close()

	tickets := []string{}
	for rows.Next() {
		var ticket string
		if err := rows.Scan(&ticket); err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load tickets: %w", err)
	}

	return tickets, nil
}

func scanAccount(row rowScanner) (*models.Account, error) {
	account := &models.Account{Tickets: []string{}}
	err := row.Scan(
		&account.ID,
		&account.AccountNumber,
		&account.Name,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return false
	}
	return pqErr.Constraint == "" || pqErr.Constraint == constraint
}

func removeFirst(tickets []string, ticketNumber string) []string {
	for i, t := range tickets {
		if t == ticketNumber {
			out := make([]string, 0, len(tickets)-1)
			out = append(out, tickets[:i]...)
			return append(out, tickets[i+1:]...)
		}
	}
	return tickets
}
