package application

import (
	"context"
	"strings"
)

// windowSize is the number of page links shown around the current page.
const windowSize = 5

// ListView adds page navigation and local filtering on top of a Controller.
type ListView[T any] struct {
	ctrl *Controller[T]
}

// NewListView wraps ctrl.
func NewListView[T any](ctrl *Controller[T]) *ListView[T] {
	return &ListView[T]{ctrl: ctrl}
}

// Controller returns the wrapped controller.
func (v *ListView[T]) Controller() *Controller[T] {
	return v.ctrl
}

// GoToPage loads page n. Pages outside [1, TotalPages] are ignored.
func (v *ListView[T]) GoToPage(ctx context.Context, n int) error {
	page := v.ctrl.Page()
	if n < 1 || n > page.TotalPages {
		return nil
	}
	return v.ctrl.List(ctx, n)
}

// Open shows page n. Until a page has loaded, n is requested as given so the
// backend can report the real page count; after that n goes through GoToPage.
func (v *ListView[T]) Open(ctx context.Context, n int) error {
	if !v.ctrl.Loaded() {
		return v.ctrl.List(ctx, max(n, 1))
	}
	return v.GoToPage(ctx, n)
}

// PastEnd reports whether n lies beyond the last known page.
func (v *ListView[T]) PastEnd(n int) bool {
	page := v.ctrl.Page()
	return v.ctrl.Loaded() && n > page.TotalPages
}

// Next loads the following page when there is one.
func (v *ListView[T]) Next(ctx context.Context) error {
	page := v.ctrl.Page()
	if !page.HasNextPage {
		return nil
	}
	return v.GoToPage(ctx, page.CurrentPage+1)
}

// Prev loads the preceding page when there is one.
func (v *ListView[T]) Prev(ctx context.Context) error {
	page := v.ctrl.Page()
	if !page.HasPrevPage {
		return nil
	}
	return v.GoToPage(ctx, page.CurrentPage-1)
}

// Window returns up to five page numbers centred on the current page and
// clamped to [1, TotalPages].
func (v *ListView[T]) Window() []int {
	return PageWindow(v.ctrl.Page().CurrentPage, v.ctrl.Page().TotalPages)
}

// PageWindow computes the page link window for current within total pages.
func PageWindow(current, total int) []int {
	if total < 1 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	start := current - windowSize/2
	if start < 1 {
		start = 1
	}
	end := start + windowSize - 1
	if end > total {
		end = total
		start = max(1, end-windowSize+1)
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// Filter returns the loaded items for which any field returned by fields
// contains query, ignoring case. Only the current page is searched.
func (v *ListView[T]) Filter(query string, fields func(T) []string) []T {
	items := v.ctrl.Items()
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, f := range fields(item) {
			if strings.Contains(strings.ToLower(f), query) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
