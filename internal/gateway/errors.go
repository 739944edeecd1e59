package gateway

import (
	"errors"
	"fmt"
	"strings"

	"openkanban/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// CodeUniqueViolation is the SQLSTATE for a unique constraint violation.
	CodeUniqueViolation = "23505"
	// CodeNotFound is the SQLSTATE for "no data found".
	CodeNotFound = "P0002"
)

// StoreError is the single failure type of every gateway operation.
type StoreError struct {
	Op      string
	Message string
	Code    string
	Details string
	Hint    string
	Err     error
}

func (e *StoreError) Error() string {
	var b strings.Builder
	b.WriteString("store error")
	if e.Op != "" {
		b.WriteString(" (" + e.Op + ")")
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Code != "" {
		fmt.Fprintf(&b, " (Code: %s)", e.Code)
	}
	if e.Details != "" {
		fmt.Fprintf(&b, " Details: %s", e.Details)
	}
	if e.Hint != "" {
		fmt.Fprintf(&b, " Hint: %s", e.Hint)
	}
	return b.String()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// wrapError turns any backend failure into a *StoreError. Postgres errors keep
// their message, code, detail and hint.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		if se.Op != "" {
			return se
		}
		cp := *se
		cp.Op = op
		return &cp
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &StoreError{
			Op:      op,
			Message: pgErr.Message,
			Code:    pgErr.Code,
			Details: pgErr.Detail,
			Hint:    pgErr.Hint,
			Err:     err,
		}
	}
	se = &StoreError{Op: op, Message: err.Error(), Err: err}
	if errors.Is(err, repository.ErrBoardNotFound) ||
		errors.Is(err, repository.ErrColumnNotFound) ||
		errors.Is(err, repository.ErrTaskNotFound) {
		se.Code = CodeNotFound
	}
	return se
}

// IsConflict reports whether err is a unique-constraint failure, e.g. a board
// slug that already exists.
func IsConflict(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == CodeUniqueViolation
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == CodeUniqueViolation
}

// IsNotFound reports whether err means the addressed row does not exist.
func IsNotFound(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == CodeNotFound
	}
	return false
}
