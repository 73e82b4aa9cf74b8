package firestore

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type errorKind uint8

const (
	kindOther errorKind = iota
	kindNotFound
	kindConflict
	kindUnavailable
)

// kindByCode maps gRPC status codes returned by Firestore onto repository error kinds.
// Codes that are absent classify as kindOther.
var kindByCode = map[codes.Code]errorKind{
	codes.NotFound:           kindNotFound,
	codes.AlreadyExists:      kindConflict,
	codes.FailedPrecondition: kindConflict,
	codes.Aborted:            kindConflict,
	codes.Unavailable:        kindUnavailable,
	codes.ResourceExhausted:  kindUnavailable,
	codes.Internal:           kindUnavailable,
	codes.DeadlineExceeded:   kindUnavailable,
}

// Error carries the failed operation and its classification. It satisfies
// repositories.RepositoryError.
type Error struct {
	op   string
	kind errorKind
	err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.op == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("firestore %s: %v", e.op, e.err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

func (e *Error) IsNotFound() bool    { return e != nil && e.kind == kindNotFound }
func (e *Error) IsConflict() bool    { return e != nil && e.kind == kindConflict }
func (e *Error) IsUnavailable() bool { return e != nil && e.kind == kindUnavailable }

// WrapError classifies err by its gRPC status. Context errors, including a gRPC Canceled
// status, come back as context errors so callers can tell aborts from backend faults.
// Already wrapped errors are returned unchanged.
func WrapError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	if wrapped := (*Error)(nil); errors.As(err, &wrapped) {
		return wrapped
	}
	code := status.Code(err)
	if code == codes.Canceled {
		return context.Canceled
	}
	return &Error{op: op, kind: kindByCode[code], err: err}
}

// IsNotFound reports whether err wraps a Firestore not-found error.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.IsNotFound()
}
