package auth

import (
	"context"
	"slices"
	"strings"
	"time"
)

// Roles carried in the "role" custom claim. Only RoleAdmin may call the admin API.
const (
	RoleUser       = "user"
	RoleStoreOwner = "store_owner"
	RoleAdmin      = "admin"
)

// Identity is the verified caller of an admin endpoint.
type Identity struct {
	UID      string
	Email    string
	Roles    []string
	Locale   string
	Provider string
	IssuedAt time.Time
}

// HasRole matches role case-insensitively.
func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	role = normaliseRole(role)
	if role == "" {
		return false
	}
	return slices.ContainsFunc(i.Roles, func(r string) bool { return strings.EqualFold(r, role) })
}

// IsAdmin is shorthand for HasRole(RoleAdmin).
func (i *Identity) IsAdmin() bool {
	return i.HasRole(RoleAdmin)
}

type identityKey struct{}

// WithIdentity attaches identity to ctx.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity stored by RequireFirebaseAuth.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	identity, _ := ctx.Value(identityKey{}).(*Identity)
	return identity, identity != nil
}
