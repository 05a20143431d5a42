// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package metadata

// Page is one fixed-length page. Slots always has the requested size; slots
// past the end of the data are nil so the UI renders a stable layout.
type Page[T any] struct {
	Slots []*T `json:"slots"`
	Page  int  `json:"page"`
	Pages int  `json:"pages"`
	Total int  `json:"total"`
}

// Items returns the non-nil slots.
func (p Page[T]) Items() []T {
	out := make([]T, 0, len(p.Slots))
	for _, s := range p.Slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// PageCount returns ((n-1)/size)+1, and 1 for an empty list.
func PageCount(n, size int) int {
	if size <= 0 || n <= 0 {
		return 1
	}
	return (n-1)/size + 1
}

// Paginate returns 1-based page of items. Pages outside [1, PageCount] clamp.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = PageSize
	}
	pages := PageCount(len(items), size)
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	slots := make([]*T, size)
	start := (page - 1) * size
	for i := 0; i < size && start+i < len(items); i++ {
		slots[i] = &items[start+i]
	}
	return Page[T]{Slots: slots, Page: page, Pages: pages, Total: len(items)}
}
