package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"

	"github.com/bazzarna/storefront/internal/platform/httpx"
)

const (
	defaultRoleClaim     = "role"
	defaultLocaleClaim   = "locale"
	defaultVerifyTimeout = 5 * time.Second
)

var (
	// ErrTokenExpired signals that the provided Firebase ID token has expired.
	ErrTokenExpired = errors.New("auth: firebase id token expired")
	// ErrTokenInvalid signals that the provided Firebase ID token is invalid for other reasons.
	ErrTokenInvalid = errors.New("auth: firebase id token invalid")
)

// TokenVerifier verifies Firebase ID tokens.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// Authenticator wires Firebase token verification into HTTP middleware.
type Authenticator struct {
	verifier  TokenVerifier
	roleClaim string
	timeout   time.Duration
}

// Option customises Authenticator behaviour.
type Option func(*Authenticator)

// WithRoleClaim overrides the custom claim used for role extraction.
func WithRoleClaim(claim string) Option {
	return func(a *Authenticator) {
		if claim = strings.TrimSpace(claim); claim != "" {
			a.roleClaim = claim
		}
	}
}

// WithVerificationTimeout sets the timeout used when verifying tokens.
func WithVerificationTimeout(d time.Duration) Option {
	return func(a *Authenticator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// NewAuthenticator constructs a Firebase Authenticator for middleware composition.
func NewAuthenticator(verifier TokenVerifier, opts ...Option) *Authenticator {
	a := &Authenticator{
		verifier:  verifier,
		roleClaim: defaultRoleClaim,
		timeout:   defaultVerifyTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// RequireFirebaseAuth verifies the Authorization bearer token and, when roles are given,
// requires the identity to hold at least one of them.
func (a *Authenticator) RequireFirebaseAuth(allowedRoles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, role := range allowedRoles {
		if role = normaliseRole(role); role != "" {
			allowed[role] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			tokenStr, ok := extractBearerToken(r.Header.Get("Authorization"))
			if !ok {
				httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authorization header missing or invalid", http.StatusUnauthorized))
				return
			}
			if a == nil || a.verifier == nil {
				httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authorization service unavailable", http.StatusUnauthorized))
				return
			}

			verifyCtx, cancel := context.WithTimeout(ctx, a.timeout)
			token, err := a.verifier.VerifyIDToken(verifyCtx, tokenStr)
			cancel()
			if err != nil {
				writeVerificationError(ctx, w, err)
				return
			}

			identity := &Identity{
				UID:    token.UID,
				Email:  claimAsString(token.Claims, "email"),
				Locale: claimAsString(token.Claims, defaultLocaleClaim),
				Roles:  rolesFromClaims(token.Claims, a.roleClaim),
			}
			if token.IssuedAt > 0 {
				identity.IssuedAt = time.Unix(token.IssuedAt, 0).UTC()
			}
			identity.Provider = token.Firebase.SignInProvider
			if len(identity.Roles) == 0 {
				identity.Roles = []string{RoleUser}
			}
			if len(allowed) > 0 && !hasAllowedRole(identity.Roles, allowed) {
				httpx.WriteError(ctx, w, httpx.NewError("insufficient_role", "identity does not have required role", http.StatusForbidden))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
		})
	}
}

func hasAllowedRole(identityRoles []string, allowed map[string]struct{}) bool {
	for _, role := range identityRoles {
		if _, ok := allowed[normaliseRole(role)]; ok {
			return true
		}
	}
	return false
}

// rolesFromClaims accepts a single role string, a list of roles, or a map of role flags
// ({"admin": true}).
func rolesFromClaims(claims map[string]interface{}, key string) []string {
	var candidates []string
	switch v := claims[key].(type) {
	case string:
		candidates = []string{v}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				candidates = append(candidates, s)
			}
		}
	case []string:
		candidates = v
	case map[string]interface{}:
		for role, flag := range v {
			if enabled, ok := flag.(bool); ok && enabled {
				candidates = append(candidates, role)
			}
		}
	}

	out := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		role := normaliseRole(candidate)
		if role == "" {
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return out
}

func claimAsString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func normaliseRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

func extractBearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeVerificationError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTokenExpired), firebaseauth.IsIDTokenExpired(err):
		httpx.WriteError(ctx, w, httpx.NewError("token_expired", "firebase id token expired", http.StatusUnauthorized))
	case errors.Is(err, ErrTokenInvalid), firebaseauth.IsIDTokenInvalid(err):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_token", "firebase id token invalid", http.StatusUnauthorized))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_token", "firebase id token verification failed", http.StatusUnauthorized))
	}
}
