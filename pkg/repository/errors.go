package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes translated by Errors.Map.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// Errors names the domain sentinels a store reports for common database
// failures. A nil field leaves that failure unmapped.
type Errors struct {
	NotFound  error
	Duplicate error
	Invalid   error
}

// Map translates err to the matching domain sentinel. sql.ErrNoRows maps to
// NotFound, a unique violation to Duplicate, and a check constraint
// violation to Invalid (wrapping the constraint name). Other errors are
// returned unchanged.
func (e Errors) Map(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) && e.NotFound != nil {
		return e.NotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation && e.Duplicate != nil:
			return e.Duplicate
		case pgErr.Code == pgCheckViolation && e.Invalid != nil:
			return fmt.Errorf("%w: %s", e.Invalid, pgErr.ConstraintName)
		}
	}

	return err
}
