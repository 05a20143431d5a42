// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

// Package carousel windows an ordered card list into fixed-size, overlapping
// pages with clamped navigation.
//
// With N cards and window W, N <= W yields a single page holding every card.
// Otherwise there are N-W+1 pages and page i holds cards [i, i+W).
package carousel

// DefaultWindow is the number of cards visible at once.
const DefaultWindow = 3

// Direction is a navigation action.
type Direction string

const (
	None     Direction = ""
	Backward Direction = "backward"
	Forward  Direction = "forward"
)

// ParseDirection maps a request value to a Direction; unknown values are None.
func ParseDirection(s string) Direction {
	switch Direction(s) {
	case Backward, Forward:
		return Direction(s)
	}
	return None
}

// Page is the visible window of a carousel.
type Page[T any] struct {
	Index int `json:"index"`
	Count int `json:"count"`
	Items []T `json:"items"`
}

// PageCount returns the number of pages for n cards and window size w.
// An empty list has zero pages.
func PageCount(n, w int) int {
	if n == 0 {
		return 0
	}
	if w <= 0 || n <= w {
		return 1
	}
	return n - w + 1
}

// Navigate applies a direction to index and clamps the result into
// [0, pages-1]. With no pages the index is 0.
func Navigate(index int, dir Direction, pages int) int {
	switch dir {
	case Backward:
		index--
	case Forward:
		index++
	}
	if pages <= 0 || index < 0 {
		return 0
	}
	if index > pages-1 {
		return pages - 1
	}
	return index
}

// Window returns the page at index after applying dir. The returned page's
// Index is the clamped position the caller should store for the next request.
func Window[T any](items []T, w, index int, dir Direction) Page[T] {
	pages := PageCount(len(items), w)
	index = Navigate(index, dir, pages)
	if pages == 0 {
		return Page[T]{Items: []T{}}
	}

	end := index + w
	if w <= 0 || end > len(items) {
		end = len(items)
	}
	return Page[T]{
		Index: index,
		Count: pages,
		Items: items[index:end],
	}
}
