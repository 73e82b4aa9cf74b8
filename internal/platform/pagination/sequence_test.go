package pagination

import (
	"encoding/json"
	"strings"
	"testing"
)

func render(items []PageItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestComputePageSequence(t *testing.T) {
	cases := []struct {
		current, total int
		want           string
	}{
		{1, 0, "[]"},
		{1, 1, "[]"},
		{1, 2, "[1,2]"},
		{1, 3, "[1,2,3]"},
		{3, 5, "[1,2,3,4,5]"},
		{1, 5, "[1,2,...,5]"},
		{5, 5, "[1,...,4,5]"},
		{10, 20, "[1,...,9,10,11,...,20]"},
		{4, 20, "[1,...,3,4,5,...,20]"},
		{3, 20, "[1,2,3,4,...,20]"},
		{18, 20, "[1,...,17,18,19,20]"},
		{20, 20, "[1,...,19,20]"},
	}
	for _, tc := range cases {
		got := render(ComputePageSequence(tc.current, tc.total))
		if got != tc.want {
			t.Errorf("ComputePageSequence(%d, %d) = %s, want %s", tc.current, tc.total, got, tc.want)
		}
	}
}

func TestComputePageSequenceEmptyIsNotNil(t *testing.T) {
	items := ComputePageSequence(1, 1)
	if items == nil {
		t.Fatal("expected non-nil empty sequence")
	}
	payload, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != "[]" {
		t.Fatalf("expected [] got %s", payload)
	}
}

func TestPageItemJSON(t *testing.T) {
	payload, err := json.Marshal(ComputePageSequence(10, 20))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[1,"...",9,10,11,"...",20]`
	if string(payload) != want {
		t.Fatalf("expected %s got %s", want, payload)
	}
}

func TestNavigation(t *testing.T) {
	nav := Navigation(1, 5)
	if !nav.First.Disabled || !nav.Prev.Disabled {
		t.Fatalf("expected first/prev disabled on page 1: %+v", nav)
	}
	if nav.Next.Disabled || nav.Next.Page != 2 || nav.Last.Page != 5 {
		t.Fatalf("unexpected next/last: %+v", nav)
	}

	nav = Navigation(5, 5)
	if !nav.Next.Disabled || !nav.Last.Disabled {
		t.Fatalf("expected next/last disabled on last page: %+v", nav)
	}
	if nav.Prev.Disabled || nav.Prev.Page != 4 || nav.First.Page != 1 {
		t.Fatalf("unexpected first/prev: %+v", nav)
	}

	nav = Navigation(3, 5)
	if nav.First.Disabled || nav.Prev.Disabled || nav.Next.Disabled || nav.Last.Disabled {
		t.Fatalf("expected every control enabled mid-range: %+v", nav)
	}
}

func TestTotalPages(t *testing.T) {
	cases := map[[2]int]int{
		{0, 12}:  0,
		{1, 12}:  1,
		{12, 12}: 1,
		{13, 12}: 2,
		{25, 12}: 3,
		{5, 0}:   0,
	}
	for in, want := range cases {
		if got := TotalPages(in[0], in[1]); got != want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", in[0], in[1], got, want)
		}
	}
	if got := Offset(3, 12); got != 24 {
		t.Fatalf("Offset(3, 12) = %d", got)
	}
}
