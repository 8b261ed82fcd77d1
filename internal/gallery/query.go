package gallery

import (
	"net/url"
	"strconv"

	"github.com/agrosoja/agrosoja/internal/model"
)

// Query is the view state a request carries: filter, page, viewport width
// and the open product, if any.
type Query struct {
	Filter Filter
	Page   int
	Width  int
	Item   string
}

// ParseQuery reads filter, page, vw and item from v. Malformed numbers are
// treated as absent.
func ParseQuery(v url.Values) Query {
	q := Query{Filter: ParseFilter(v.Get("filter")), Item: v.Get("item")}
	if n, err := strconv.Atoi(v.Get("page")); err == nil {
		q.Page = n
	}
	if n, err := strconv.Atoi(v.Get("vw")); err == nil {
		q.Width = n
	}
	return q
}

// Values encodes q back into query parameters, omitting defaults.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Filter != "" && q.Filter != FilterAll {
		v.Set("filter", string(q.Filter))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Item != "" {
		v.Set("item", q.Item)
	}
	return v
}

// Restore builds an engine over items and replays q on it. Steps that are out
// of range are ignored the same way the engine ignores them interactively.
func Restore(policy PageSizePolicy, items []model.Product, q Query) *Engine {
	e := New(policy)
	e.Load(items)
	e.Resize(q.Width)
	e.SetFilter(q.Filter)
	e.GoToPage(q.Page)
	if q.Item != "" {
		e.SelectID(q.Item)
	}
	return e
}
