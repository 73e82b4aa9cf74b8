package services

import domain "github.com/bazzarna/storefront/internal/domain"

// CategorySelection is an insertion-ordered set of selected category ids. Membership of the ids
// in the current category collection is the caller's responsibility.
type CategorySelection struct {
	ids []string
}

// NewCategorySelection seeds a selection, dropping blanks and duplicates.
func NewCategorySelection(ids ...string) *CategorySelection {
	s := &CategorySelection{}
	for _, id := range ids {
		if id != "" && !s.Contains(id) {
			s.ids = append(s.ids, id)
		}
	}
	return s
}

// Toggle adds id when absent and removes it when present.
func (s *CategorySelection) Toggle(id string) {
	if s.Contains(id) {
		s.Remove(id)
		return
	}
	s.ids = append(s.ids, id)
}

// Remove drops id. Missing ids are a no-op.
func (s *CategorySelection) Remove(id string) {
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
			return
		}
	}
}

// Contains reports membership.
func (s *CategorySelection) Contains(id string) bool {
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// Selected returns the ids in the order they were added.
func (s *CategorySelection) Selected() []string {
	return append([]string{}, s.ids...)
}

// SelectableCategories keeps main categories only.
func SelectableCategories(all []domain.Category) []domain.Category {
	out := make([]domain.Category, 0, len(all))
	for _, c := range all {
		if c.IsMain() {
			out = append(out, c)
		}
	}
	return out
}

// ChildCategories returns the subcategories of parentID. A blank parent has none.
func ChildCategories(all []domain.Category, parentID string) []domain.Category {
	out := []domain.Category{}
	if parentID == "" {
		return out
	}
	for _, c := range all {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, c)
		}
	}
	return out
}
