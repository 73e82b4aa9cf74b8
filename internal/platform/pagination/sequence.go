package pagination

import (
	"encoding/json"
	"strconv"
)

// EllipsisMarker is the placeholder rendered for a run of skipped pages.
const EllipsisMarker = "..."

// PageItem is one entry of a rendered page sequence: either a page number or an ellipsis.
type PageItem struct {
	Page     int
	Ellipsis bool
}

// Number returns a page item for page n.
func Number(n int) PageItem {
	return PageItem{Page: n}
}

// Ellipsis returns an ellipsis item.
func Ellipsis() PageItem {
	return PageItem{Ellipsis: true}
}

// String renders the item the way it is displayed.
func (p PageItem) String() string {
	if p.Ellipsis {
		return EllipsisMarker
	}
	return strconv.Itoa(p.Page)
}

// MarshalJSON encodes page numbers as JSON numbers and ellipses as "...".
func (p PageItem) MarshalJSON() ([]byte, error) {
	if p.Ellipsis {
		return json.Marshal(EllipsisMarker)
	}
	return json.Marshal(p.Page)
}

// ComputePageSequence returns the sparse list of page links for currentPage out of totalPages.
// Page 1 and the last page are always present, together with the current page and its immediate
// neighbours. Gaps are collapsed into ellipses. An empty sequence means no pagination should
// be rendered.
func ComputePageSequence(currentPage, totalPages int) []PageItem {
	if totalPages <= 1 {
		return []PageItem{}
	}

	items := []PageItem{Number(1)}
	if currentPage > 3 {
		items = append(items, Ellipsis())
	}

	start := max(2, currentPage-1)
	end := min(totalPages-1, currentPage+1)
	for p := start; p <= end; p++ {
		items = append(items, Number(p))
	}

	if currentPage < totalPages-2 {
		items = append(items, Ellipsis())
	}
	return append(items, Number(totalPages))
}

// NavTarget is a first/prev/next/last control.
type NavTarget struct {
	Page     int  `json:"page"`
	Disabled bool `json:"disabled"`
}

// NavigationState bundles the four navigation controls rendered around a page sequence.
type NavigationState struct {
	First NavTarget `json:"first"`
	Prev  NavTarget `json:"prev"`
	Next  NavTarget `json:"next"`
	Last  NavTarget `json:"last"`
}

// Navigation computes the navigation targets for currentPage. Controls that would not move
// away from the current boundary are disabled.
func Navigation(currentPage, totalPages int) NavigationState {
	atFirst := currentPage <= 1
	atLast := currentPage >= totalPages
	return NavigationState{
		First: NavTarget{Page: 1, Disabled: atFirst},
		Prev:  NavTarget{Page: currentPage - 1, Disabled: atFirst},
		Next:  NavTarget{Page: currentPage + 1, Disabled: atLast},
		Last:  NavTarget{Page: totalPages, Disabled: atLast},
	}
}

// TotalPages returns ceil(count/pageSize).
func TotalPages(count, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// Offset converts a 1-based page into a row offset.
func Offset(page, pageSize int) int {
	if page <= 1 || pageSize <= 0 {
		return 0
	}
	return (page - 1) * pageSize
}
