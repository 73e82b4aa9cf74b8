// Package i18n holds the storefront's message catalogue (Arabic first, English second) and
// the per-request locale negotiation.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/bazzarna/storefront/internal/platform/requestctx"
)

const (
	// QueryParam overrides the locale for one request and persists it in CookieName.
	QueryParam = "hl"
	// CookieName stores the visitor's explicit locale choice.
	CookieName = "bz_lang"
	// DefaultLocale is used when nothing else matches.
	DefaultLocale = "ar"
)

//go:embed locales/*.json
var embedded embed.FS

// Bundle is an immutable set of flat key/message dictionaries keyed by locale.
type Bundle struct {
	dict     map[string]map[string]string
	fallback string
	tags     []language.Tag
	matcher  language.Matcher
}

// Default loads the embedded catalogue with Arabic as the fallback.
func Default() *Bundle {
	b, err := Embedded(DefaultLocale, []string{"ar", "en"})
	if err != nil {
		panic(fmt.Sprintf("i18n: embedded locales invalid: %v", err))
	}
	return b
}

// Embedded loads the bundled catalogue restricted to supported.
func Embedded(fallback string, supported []string) (*Bundle, error) {
	return Load(embedded, "locales", fallback, supported)
}

// Load reads <dir>/<locale>.json from fsys for every supported locale. The fallback locale
// must be present; other missing files are skipped.
func Load(fsys fs.FS, dir, fallback string, supported []string) (*Bundle, error) {
	fallback = strings.ToLower(strings.TrimSpace(fallback))
	if fallback == "" {
		fallback = DefaultLocale
	}
	b := &Bundle{dict: make(map[string]map[string]string), fallback: fallback}

	// The fallback goes first so the matcher prefers it on ties.
	ordered := append([]string{fallback}, supported...)
	for _, locale := range ordered {
		locale = strings.ToLower(strings.TrimSpace(locale))
		if _, seen := b.dict[locale]; seen || locale == "" {
			continue
		}
		raw, err := fs.ReadFile(fsys, dir+"/"+locale+".json")
		if err != nil {
			if locale == fallback {
				return nil, fmt.Errorf("i18n: load locale %s: %w", locale, err)
			}
			continue
		}
		var messages map[string]string
		if err := json.Unmarshal(raw, &messages); err != nil {
			return nil, fmt.Errorf("i18n: unmarshal %s: %w", locale, err)
		}
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("i18n: invalid locale %s: %w", locale, err)
		}
		b.dict[locale] = messages
		b.tags = append(b.tags, tag)
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// Fallback returns the configured fallback locale.
func (b *Bundle) Fallback() string { return b.fallback }

// Supported lists loaded locales, fallback first.
func (b *Bundle) Supported() []string {
	out := make([]string, 0, len(b.tags))
	for _, tag := range b.tags {
		out = append(out, tag.String())
	}
	return out
}

// T returns the message for key in locale, then in the fallback, then the key itself.
func (b *Bundle) T(locale, key string) string {
	if m, ok := b.dict[strings.ToLower(locale)]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := b.dict[b.fallback][key]; ok {
		return v
	}
	return key
}

// Match picks the best supported locale for the given preferences, each of which may be a
// single tag or a full Accept-Language header.
func (b *Bundle) Match(prefs ...string) string {
	var tags []language.Tag
	for _, pref := range prefs {
		if strings.TrimSpace(pref) == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(pref)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return b.fallback
	}
	_, index, confidence := b.matcher.Match(tags...)
	if confidence == language.No {
		return b.fallback
	}
	return b.tags[index].String()
}

// Resolve negotiates the locale for a request: the hl query parameter, then the bz_lang
// cookie, then Accept-Language.
func (b *Bundle) Resolve(r *http.Request) (locale string, fromQuery bool) {
	if q := strings.TrimSpace(r.URL.Query().Get(QueryParam)); q != "" {
		if _, ok := b.dict[strings.ToLower(q)]; ok {
			return strings.ToLower(q), true
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		if _, ok := b.dict[strings.ToLower(c.Value)]; ok {
			return strings.ToLower(c.Value), false
		}
	}
	return b.Match(r.Header.Get("Accept-Language")), false
}

// Middleware stores the negotiated locale on the request context and echoes it in
// Content-Language. An explicit ?hl= choice is remembered in the bz_lang cookie.
func (b *Bundle) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale, fromQuery := b.Resolve(r)
			if fromQuery {
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    locale,
					Path:     "/",
					MaxAge:   365 * 24 * 60 * 60,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Add("Vary", "Accept-Language")
			w.Header().Set("Content-Language", locale)
			next.ServeHTTP(w, r.WithContext(requestctx.WithLocale(r.Context(), locale)))
		})
	}
}

// FromContext returns the negotiated locale, or the default when no middleware ran.
func FromContext(r *http.Request) string {
	if locale := requestctx.Locale(r.Context()); locale != "" {
		return locale
	}
	return DefaultLocale
}
