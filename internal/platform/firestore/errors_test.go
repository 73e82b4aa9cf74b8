package firestore

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestWrapErrorClassifiesCodes(t *testing.T) {
	cases := []struct {
		code                            codes.Code
		notFound, conflict, unavailable bool
	}{
		{codes.NotFound, true, false, false},
		{codes.AlreadyExists, false, true, false},
		{codes.Aborted, false, true, false},
		{codes.Unavailable, false, false, true},
		{codes.DeadlineExceeded, false, false, true},
		{codes.PermissionDenied, false, false, false},
	}
	for _, tc := range cases {
		err := WrapError("get", status.Error(tc.code, "boom"))
		var repoErr *Error
		if !errors.As(err, &repoErr) {
			t.Fatalf("%s: expected *Error, got %T", tc.code, err)
		}
		if repoErr.IsNotFound() != tc.notFound || repoErr.IsConflict() != tc.conflict || repoErr.IsUnavailable() != tc.unavailable {
			t.Fatalf("%s: unexpected classification %+v", tc.code, repoErr)
		}
	}
}

func TestWrapErrorPassesThroughCancellation(t *testing.T) {
	if err := WrapError("get", context.Canceled); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := WrapError("get", status.Error(codes.Canceled, "cancelled")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected grpc cancel to map to context.Canceled, got %v", err)
	}
	if WrapError("get", nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestWrapErrorIsIdempotent(t *testing.T) {
	first := WrapError("get", status.Error(codes.NotFound, "missing"))
	second := WrapError("other", first)
	if first != second {
		t.Fatalf("expected rewrap to return the same error")
	}
	if !IsNotFound(second) {
		t.Fatalf("expected IsNotFound to report true")
	}
}
