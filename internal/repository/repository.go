package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is wrapped by every entity specific not-found error so callers
// can test for absence with errors.Is without knowing the entity.
var ErrNotFound = errors.New("not found")

var (
	ErrAnimalNotFound    = fmt.Errorf("animal %w", ErrNotFound)
	ErrMilestoneNotFound = fmt.Errorf("milestone %w", ErrNotFound)
	ErrDonationNotFound  = fmt.Errorf("donation %w", ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrPaymentQRNotFound = fmt.Errorf("payment qr %w", ErrNotFound)
)

// Querier is the subset of sqlx shared by *sqlx.DB and *sqlx.Tx, letting a
// repository run against either.
type Querier interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Rebind(query string) string
}

// isUniqueViolation checks for unique constraint violations (works for both SQLite and PostgreSQL)
func isUniqueViolation(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value")
}

// requireRows maps an UPDATE/DELETE that touched nothing to notFound.
func requireRows(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
