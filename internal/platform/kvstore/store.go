// Package kvstore provides the durable string key-value port used for per-profile client state
// such as the recently-viewed list, with memory, Redis, Firestore and SQLite backends.
package kvstore

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyKey is returned when an operation is attempted with a blank key.
var ErrEmptyKey = errors.New("kvstore: key is required")

// Store is a durable string key-value store. Get reports absence with ok=false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Pinger is implemented by backends that can report their reachability for readiness checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Scoped prefixes every key with scope so that independent owners (browser profiles)
// share one backend without collisions.
func Scoped(store Store, scope string) Store {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return store
	}
	return &scopedStore{inner: store, prefix: scope + ":"}
}

type scopedStore struct {
	inner  Store
	prefix string
}

func (s *scopedStore) Get(ctx context.Context, key string) (string, bool, error) {
	if strings.TrimSpace(key) == "" {
		return "", false, ErrEmptyKey
	}
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scopedStore) Set(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *scopedStore) Remove(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return s.inner.Remove(ctx, s.prefix+key)
}
