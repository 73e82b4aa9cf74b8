// Package profile issues the anonymous browser-profile cookie that scopes per-visitor state
// (recently-viewed products, similar-product request generations) on the server.
package profile

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"

	"github.com/bazzarna/storefront/internal/platform/requestctx"
)

const (
	defaultCookieName = "bz_profile"
	defaultMaxAge     = 365 * 24 * time.Hour
)

// ErrInvalidConfig indicates the manager was initialised with missing or invalid keys.
var ErrInvalidConfig = errors.New("profile: invalid config")

// Data is the payload stored in the profile cookie.
type Data struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// Config controls cookie encoding and lifetime.
type Config struct {
	CookieName string
	HashKey    []byte
	BlockKey   []byte
	MaxAge     time.Duration
	Secure     bool
	Now        func() time.Time
	NewID      func() string
}

// Manager reads and writes signed (and, with a block key, encrypted) profile cookies.
type Manager struct {
	cfg   Config
	codec *securecookie.SecureCookie
}

// NewManager validates cfg and constructs a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.HashKey) == 0 {
		return nil, fmt.Errorf("%w: hash key is required", ErrInvalidConfig)
	}
	switch len(cfg.BlockKey) {
	case 0, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: block key must be 16, 24 or 32 bytes", ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.CookieName) == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultMaxAge
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = func() string { return uuid.NewString() }
	}

	var block []byte
	if len(cfg.BlockKey) > 0 {
		block = cfg.BlockKey
	}
	codec := securecookie.New(cfg.HashKey, block)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(cfg.MaxAge.Seconds()))

	return &Manager{cfg: cfg, codec: codec}, nil
}

// Load decodes the profile cookie. ok is false when the cookie is absent, tampered with,
// expired, or carries an id that is not a UUID.
func (m *Manager) Load(r *http.Request) (Data, bool) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return Data{}, false
	}
	var data Data
	if err := m.codec.Decode(m.cfg.CookieName, cookie.Value, &data); err != nil {
		return Data{}, false
	}
	if _, err := uuid.Parse(data.ID); err != nil {
		return Data{}, false
	}
	return data, true
}

// Issue creates a fresh profile and writes its cookie.
func (m *Manager) Issue(w http.ResponseWriter) (Data, error) {
	data := Data{ID: m.cfg.NewID(), CreatedAt: m.cfg.Now().UTC()}
	encoded, err := m.codec.Encode(m.cfg.CookieName, data)
	if err != nil {
		return Data{}, fmt.Errorf("profile: encode cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(m.cfg.MaxAge.Seconds()),
		Expires:  m.cfg.Now().Add(m.cfg.MaxAge).UTC(),
		Secure:   m.cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return data, nil
}

// Middleware attaches the visitor's profile id to the request context, issuing a new cookie
// on first visit. Encoding failures leave the request without a profile rather than failing it.
func (m *Manager) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, ok := m.Load(r)
			if !ok {
				issued, err := m.Issue(w)
				if err != nil {
					requestctx.Logger(r.Context()).Sugar().Warnw("profile cookie issue failed", "error", err)
					next.ServeHTTP(w, r)
					return
				}
				data = issued
			}
			next.ServeHTTP(w, r.WithContext(requestctx.WithProfileID(r.Context(), data.ID)))
		})
	}
}
