package gallery

import "github.com/agrosoja/agrosoja/internal/model"

// Page is a render-ready snapshot of an Engine.
type Page struct {
	Items       []model.Product `json:"items"`
	Filter      Filter          `json:"filter"`
	Index       int             `json:"page"`
	Count       int             `json:"page_count"`
	Size        int             `json:"page_size"`
	Total       int             `json:"total"`
	HasNext     bool            `json:"has_next"`
	HasPrevious bool            `json:"has_previous"`
	Selected    *model.Product  `json:"selected,omitempty"`
}

// Page captures the engine's current view.
func (e *Engine) Page() Page {
	items := e.Visible()
	if items == nil {
		items = []model.Product{}
	}
	p := Page{
		Items:       items,
		Filter:      e.filter,
		Index:       e.pageIndex,
		Count:       e.PageCount(),
		Size:        e.pageSize,
		Total:       len(e.Filtered()),
		HasNext:     e.HasNext(),
		HasPrevious: e.HasPrevious(),
	}
	if sel, ok := e.Selected(); ok {
		p.Selected = &sel
	}
	return p
}

// Pages returns 0..Count-1 for rendering page dots.
func (p Page) Pages() []int {
	out := make([]int, p.Count)
	for i := range out {
		out[i] = i
	}
	return out
}
