package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Error implements repositories.RepositoryError for pgx-backed repositories.
type Error struct {
	op          string
	err         error
	notFound    bool
	conflict    bool
	unavailable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.op != "" {
		return fmt.Sprintf("postgres %s: %v", e.op, e.err)
	}
	return e.err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// IsNotFound reports whether the query matched no rows.
func (e *Error) IsNotFound() bool { return e != nil && e.notFound }

// IsConflict reports a unique, foreign key or serialization violation.
func (e *Error) IsConflict() bool { return e != nil && e.conflict }

// IsUnavailable reports a connection-level failure.
func (e *Error) IsUnavailable() bool { return e != nil && e.unavailable }

// WrapError annotates pgx errors with repository semantics. Context cancellations pass through.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}

	e := &Error{op: op, err: err}
	var pgErr *pgconn.PgError
	var netErr net.Error
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		e.notFound = true
	case errors.As(err, &pgErr):
		switch pgErr.Code {
		case "23505", "23503", "40001":
			e.conflict = true
		case "57P01", "57P03", "53300":
			e.unavailable = true
		}
	case pgconn.SafeToRetry(err), pgconn.Timeout(err), errors.As(err, &netErr):
		e.unavailable = true
	}
	return e
}
