// Package search implements the free-text filter used by every list view.
package search

import "strings"

// Filter returns the items for which any field contains query, ignoring
// case. An empty or blank query keeps every item. The input is not modified.
func Filter[T any](items []T, query string, fields ...func(T) string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if q == "" || matches(it, q, fields) {
			out = append(out, it)
		}
	}
	return out
}

func matches[T any](it T, q string, fields []func(T) string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f(it)), q) {
			return true
		}
	}
	return false
}

// Strings filters a list of plain strings
func Strings(items []string, query string) []string {
	return Filter(items, query, func(s string) string { return s })
}
