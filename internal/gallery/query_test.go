package gallery

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuery(t *testing.T) {
	q := ParseQuery(url.Values{"filter": {"planted"}, "page": {"2"}, "vw": {"400"}, "item": {"p3"}})
	assert.Equal(t, Query{Filter: Filter("plantada"), Page: 2, Width: 400, Item: "p3"}, q)

	q = ParseQuery(url.Values{"page": {"x"}, "vw": {""}})
	assert.Equal(t, Query{Filter: FilterAll}, q)
}

func TestQueryValuesOmitsDefaults(t *testing.T) {
	assert.Empty(t, Query{Filter: FilterAll}.Values().Encode())
	assert.Equal(t, "filter=graos&page=1", Query{Filter: Filter("graos"), Page: 1, Width: 300}.Values().Encode())
}

func TestRestore(t *testing.T) {
	items := sevenProducts()

	e := Restore(DefaultPolicy, items, Query{Filter: FilterAll, Page: 1, Width: 1280})
	assert.Equal(t, 1, e.PageIndex())
	assert.Equal(t, []string{"p6"}, ids(e.Visible()))

	// Narrow viewport: one product per page.
	e = Restore(DefaultPolicy, items, Query{Filter: Filter("plantada"), Page: 2, Width: 375})
	assert.Equal(t, 1, e.PageSize())
	assert.Equal(t, []string{"p5"}, ids(e.Visible()))

	// Out of range pages fall back to the first page.
	e = Restore(DefaultPolicy, items, Query{Filter: Filter("plantada"), Page: 1})
	assert.Equal(t, 0, e.PageIndex())

	e = Restore(DefaultPolicy, items, Query{Item: "p4"})
	sel, ok := e.Selected()
	assert.True(t, ok)
	assert.Equal(t, "p4", sel.ID)

	e = Restore(DefaultPolicy, items, Query{Item: "gone"})
	_, ok = e.Selected()
	assert.False(t, ok)
}
