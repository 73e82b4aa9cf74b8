package domain

import "strings"

// BrandSlug lowercases name and joins its words with hyphens.
func BrandSlug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// BrandFromSlug reverses BrandSlug up to letter case, which brand lookups ignore.
func BrandFromSlug(slug string) string {
	return strings.TrimSpace(strings.ReplaceAll(slug, "-", " "))
}
