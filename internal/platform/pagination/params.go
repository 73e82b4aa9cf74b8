package pagination

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPageSize is the storefront grid size used when the client omits pageSize.
	DefaultPageSize = 12
	// DefaultMaxPageSize caps pageSize to keep listing queries bounded.
	DefaultMaxPageSize = 100
)

var (
	ErrInvalidPage     = errors.New("pagination: invalid page")
	ErrInvalidPageSize = errors.New("pagination: invalid pageSize")
	ErrInvalidSort     = errors.New("pagination: invalid sort")
)

// Params holds the numbered-page and ordering values extracted from a request.
type Params struct {
	Page     int
	PageSize int
	Sort     string
	Desc     bool
}

// Options control how Parse behaves for a given listing.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	DefaultSort     string
	DefaultDesc     bool
	AllowedSorts    []string
}

// FromRequest parses the supported query parameters from the supplied request.
func FromRequest(r *http.Request, opts Options) (Params, error) {
	if r == nil {
		return Params{}, errors.New("pagination: nil request")
	}
	return Parse(r.URL.Query(), opts)
}

// Parse reads page, pageSize, sort and order. Oversized pageSize values are clamped rather
// than rejected.
func Parse(values url.Values, opts Options) (Params, error) {
	if values == nil {
		values = url.Values{}
	}

	page := 1
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, fmt.Errorf("%w: must be an integer", ErrInvalidPage)
		}
		if parsed < 1 {
			return Params{}, fmt.Errorf("%w: must be at least 1", ErrInvalidPage)
		}
		page = parsed
	}

	pageSize, err := parsePageSize(values.Get("pageSize"), opts)
	if err != nil {
		return Params{}, err
	}

	sortField := opts.DefaultSort
	desc := opts.DefaultDesc
	if raw := strings.TrimSpace(values.Get("sort")); raw != "" {
		if !allowed(raw, opts.AllowedSorts) {
			return Params{}, fmt.Errorf("%w: field %q is not allowed", ErrInvalidSort, raw)
		}
		sortField = raw
	}
	switch strings.ToLower(strings.TrimSpace(values.Get("order"))) {
	case "":
	case "asc":
		desc = false
	case "desc":
		desc = true
	default:
		return Params{}, fmt.Errorf("%w: invalid direction %q", ErrInvalidSort, values.Get("order"))
	}

	return Params{Page: page, PageSize: pageSize, Sort: sortField, Desc: desc}, nil
}

func parsePageSize(raw string, opts Options) (int, error) {
	maxPageSize := opts.MaxPageSize
	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}
	defaultPageSize := opts.DefaultPageSize
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	if defaultPageSize > maxPageSize {
		defaultPageSize = maxPageSize
	}

	if strings.TrimSpace(raw) == "" {
		return defaultPageSize, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: must be an integer", ErrInvalidPageSize)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidPageSize)
	}
	return min(value, maxPageSize), nil
}

func allowed(value string, set []string) bool {
	for _, candidate := range set {
		if candidate == value {
			return true
		}
	}
	return false
}
