// Package gallery holds the catalog view engine behind the landing page
// product gallery: category filtering, viewport-driven pagination and the
// selected-product detail overlay.
//
// An Engine is single-actor state. It performs no I/O and every mutating call
// leaves pageIndex valid for the current filter and page size.
package gallery

import (
	"slices"

	"github.com/agrosoja/agrosoja/internal/model"
)

// Engine derives the visible page of products.
type Engine struct {
	items     []model.Product
	filter    Filter
	pageIndex int
	pageSize  int
	policy    PageSizePolicy
	selected  *model.Product
}

// New creates an empty engine using policy; the initial page size is the
// policy's wide size.
func New(policy PageSizePolicy) *Engine {
	return &Engine{
		filter:   FilterAll,
		pageSize: policy.Wide,
		policy:   policy,
	}
}

// Load installs the result of a fresh page load and resets the filter and
// page to (all, 0). A selected product missing from the new list is cleared.
func (e *Engine) Load(items []model.Product) {
	e.items = append([]model.Product(nil), items...)
	e.filter = FilterAll
	e.pageIndex = 0
	e.dropMissingSelection()
}

// Replace swaps in a re-fetched product list, keeping the filter and page
// where still valid. A selected product missing from the new list is cleared.
func (e *Engine) Replace(items []model.Product) {
	e.items = append([]model.Product(nil), items...)
	e.clampPage()
	e.dropMissingSelection()
}

// Items returns a copy of the full product list in store order.
func (e *Engine) Items() []model.Product {
	return slices.Clone(e.items)
}

// Filter returns the active filter.
func (e *Engine) Filter() Filter {
	return e.filter
}

// PageIndex returns the zero-based current page.
func (e *Engine) PageIndex() int {
	return e.pageIndex
}

// PageSize returns the number of products per page.
func (e *Engine) PageSize() int {
	return e.pageSize
}

// SetFilter changes the filter and returns to the first page.
func (e *Engine) SetFilter(f Filter) {
	e.filter = f
	e.pageIndex = 0
}

// SetPageSize changes the page size. The page index resets to 0 when it no
// longer addresses an existing page. Non-positive sizes are ignored.
func (e *Engine) SetPageSize(n int) {
	if n < 1 {
		return
	}
	e.pageSize = n
	e.clampPage()
}

// Resize applies the page size policy for a viewport width. Widths that land
// on the current step leave the engine untouched.
func (e *Engine) Resize(width int) {
	if n := e.policy.PageSize(width); n != e.pageSize {
		e.SetPageSize(n)
	}
}

// Filtered returns a new slice of the products matching the filter, in
// store order.
func (e *Engine) Filtered() []model.Product {
	out := make([]model.Product, 0, len(e.items))
	for _, p := range e.items {
		if e.filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// PageCount returns ceil(len(Filtered()) / PageSize()), 0 when nothing matches.
func (e *Engine) PageCount() int {
	return pageCount(len(e.Filtered()), e.pageSize)
}

func pageCount(n, size int) int {
	if n == 0 || size < 1 {
		return 0
	}
	return (n + size - 1) / size
}

// Visible returns the current page of filtered products. It is empty when the
// page index is out of range.
func (e *Engine) Visible() []model.Product {
	filtered := e.Filtered()
	start := e.pageIndex * e.pageSize
	if start < 0 || start >= len(filtered) {
		return nil
	}
	end := min(start+e.pageSize, len(filtered))
	return filtered[start:end]
}

// GoToPage moves to page i; out-of-range indexes are ignored.
func (e *Engine) GoToPage(i int) {
	if i >= 0 && i < e.PageCount() {
		e.pageIndex = i
	}
}

// NextPage advances one page when there is one.
func (e *Engine) NextPage() {
	e.GoToPage(e.pageIndex + 1)
}

// PreviousPage goes back one page when there is one.
func (e *Engine) PreviousPage() {
	e.GoToPage(e.pageIndex - 1)
}

// HasNext reports whether a forward control should be shown.
func (e *Engine) HasNext() bool {
	return e.pageIndex+1 < e.PageCount()
}

// HasPrevious reports whether a backward control should be shown.
func (e *Engine) HasPrevious() bool {
	return e.pageIndex > 0
}

// Select opens the detail overlay for p. p need not belong to the list.
func (e *Engine) Select(p model.Product) {
	e.selected = &p
}

// SelectID selects the product with the given id from the list and reports
// whether it was found. An unknown id clears the selection.
func (e *Engine) SelectID(id string) bool {
	for _, p := range e.items {
		if p.ID == id {
			e.Select(p)
			return true
		}
	}
	e.ClearSelection()
	return false
}

// ClearSelection closes the detail overlay.
func (e *Engine) ClearSelection() {
	e.selected = nil
}

// Selected returns the selected product, if any.
func (e *Engine) Selected() (model.Product, bool) {
	if e.selected == nil {
		return model.Product{}, false
	}
	return *e.selected, true
}

// clampPage enforces the page index invariant.
func (e *Engine) clampPage() {
	if e.pageIndex >= e.PageCount() {
		e.pageIndex = 0
	}
}

func (e *Engine) dropMissingSelection() {
	if e.selected == nil {
		return
	}
	for _, p := range e.items {
		if p.ID == e.selected.ID {
			return
		}
	}
	e.selected = nil
}
