package gallery

import (
	"strings"

	"github.com/agrosoja/agrosoja/internal/model"
)

// Filter narrows the catalog before pagination. FilterAll matches every
// product; any other value matches products of the same category.
type Filter string

// FilterAll disables category filtering.
const FilterAll Filter = "all"

// Filters lists the filter options in display order.
var Filters = []Filter{FilterAll, Filter(model.CategoryPlanted), Filter(model.CategoryGrains)}

// ParseFilter maps a query value to a Filter. Unknown or empty values map to
// FilterAll.
func ParseFilter(s string) Filter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "graos", "grains":
		return Filter(model.CategoryGrains)
	case "plantada", "planted":
		return Filter(model.CategoryPlanted)
	default:
		return FilterAll
	}
}

// Matches reports whether p passes the filter.
func (f Filter) Matches(p model.Product) bool {
	return f == FilterAll || model.Category(f) == p.Category
}

// Label returns the button label for the filter.
func (f Filter) Label() string {
	switch model.Category(f) {
	case model.CategoryGrains:
		return "Grãos (Colheita)"
	case model.CategoryPlanted:
		return "Lavoura (Plantada)"
	default:
		return "Todos"
	}
}
