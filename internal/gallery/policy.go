package gallery

// PageSizePolicy is the step function from viewport width to page size.
type PageSizePolicy struct {
	Breakpoint int // widths below this are narrow
	Narrow     int
	Wide       int
}

// DefaultPolicy shows one product per page on phones and six elsewhere.
var DefaultPolicy = PageSizePolicy{Breakpoint: 768, Narrow: 1, Wide: 6}

// PageSize returns the page size for a viewport width. A non-positive width
// means the width is unknown and yields the wide size.
func (p PageSizePolicy) PageSize(width int) int {
	if width > 0 && width < p.Breakpoint {
		return p.Narrow
	}
	return p.Wide
}
