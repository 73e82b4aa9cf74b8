package pagination

import (
	"errors"
	"net/http"
	"net/url"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	params, err := Parse(url.Values{}, Options{DefaultSort: "created_at", DefaultDesc: true})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if params.Page != 1 {
		t.Fatalf("expected page 1 got %d", params.Page)
	}
	if params.PageSize != DefaultPageSize {
		t.Fatalf("expected default page size %d got %d", DefaultPageSize, params.PageSize)
	}
	if params.Sort != "created_at" || !params.Desc {
		t.Fatalf("expected created_at desc got %s desc=%v", params.Sort, params.Desc)
	}
}

func TestParsePageSize(t *testing.T) {
	opts := Options{DefaultPageSize: 24, MaxPageSize: 40}
	values := url.Values{}
	values.Set("pageSize", "30")

	params, err := Parse(values, opts)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if params.PageSize != 30 {
		t.Fatalf("expected page size 30 got %d", params.PageSize)
	}

	values.Set("pageSize", "400")
	params, err = Parse(values, opts)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if params.PageSize != opts.MaxPageSize {
		t.Fatalf("expected page size clamped to %d got %d", opts.MaxPageSize, params.PageSize)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		values url.Values
		want   error
	}{
		{"page text", url.Values{"page": {"abc"}}, ErrInvalidPage},
		{"page zero", url.Values{"page": {"0"}}, ErrInvalidPage},
		{"pageSize text", url.Values{"pageSize": {"abc"}}, ErrInvalidPageSize},
		{"pageSize negative", url.Values{"pageSize": {"-1"}}, ErrInvalidPageSize},
		{"sort unknown", url.Values{"sort": {"secret"}}, ErrInvalidSort},
		{"order unknown", url.Values{"order": {"sideways"}}, ErrInvalidSort},
	}
	opts := Options{AllowedSorts: []string{"price"}}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.values, opts)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v got %v", tc.want, err)
			}
		})
	}
}

func TestFromRequestParsesSort(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/products?page=3&sort=price&order=asc", nil)
	params, err := FromRequest(req, Options{AllowedSorts: []string{"price", "name"}, DefaultDesc: true})
	if err != nil {
		t.Fatalf("FromRequest returned error: %v", err)
	}
	if params.Page != 3 || params.Sort != "price" || params.Desc {
		t.Fatalf("unexpected params %+v", params)
	}
}
