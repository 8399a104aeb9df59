package listview

// DefaultPageSize is used when no page size, or an unrecognized one, is
// configured.
const DefaultPageSize = 20

// PageSizeOptions are the page sizes the dashboard offers.
var PageSizeOptions = []int{10, 20, 50, 100}

// PageInfo is the navigation metadata derived for the current page.
// StartIndex and EndIndex are 1-based and inclusive, ready for a
// "Showing X to Y of Z" label. An empty source yields zero pages and zero
// indices.
type PageInfo struct {
	TotalItems  int
	TotalPages  int
	CurrentPage int
	PageSize    int
	StartIndex  int
	EndIndex    int
	HasNext     bool
	HasPrevious bool
}

// Pager is the third pipeline stage. It tracks the current page and page
// size; the page slice itself is derived fresh on every Slice call, so the
// pager self-corrects when the upstream sequence shrinks underneath it.
type Pager struct {
	page       int
	pageSize   int
	totalPages int // from the last Slice, bounds GoToPage
}

// NewPager builds a pager at page 1. Unrecognized page sizes fall back to
// DefaultPageSize.
func NewPager(pageSize int) *Pager {
	if !ValidPageSize(pageSize) {
		pageSize = DefaultPageSize
	}
	return &Pager{page: 1, pageSize: pageSize}
}

// ValidPageSize reports whether n is one of the offered page sizes.
func ValidPageSize(n int) bool {
	for _, opt := range PageSizeOptions {
		if n == opt {
			return true
		}
	}
	return false
}

// CurrentPage returns the page the pager is on.
func (p *Pager) CurrentPage() int { return p.page }

// PageSize returns the configured page size.
func (p *Pager) PageSize() int { return p.pageSize }

// GoToPage moves to page n, clamped into [1, totalPages] as of the last
// computation. Out-of-range requests are never an error.
func (p *Pager) GoToPage(n int) {
	if n < 1 {
		n = 1
	}
	if p.totalPages > 0 && n > p.totalPages {
		n = p.totalPages
	}
	p.page = n
}

// NextPage and PreviousPage are single-step conveniences over GoToPage.
func (p *Pager) NextPage()     { p.GoToPage(p.page + 1) }
func (p *Pager) PreviousPage() { p.GoToPage(p.page - 1) }

// SetPageSize switches to one of the offered page sizes and returns to page
// 1, since the old page offset is meaningless under a new size. Unrecognized
// sizes are ignored.
func (p *Pager) SetPageSize(n int) {
	if !ValidPageSize(n) || n == p.pageSize {
		return
	}
	p.pageSize = n
	p.page = 1
}

// Slice returns the current page of records plus navigation metadata. If the
// sequence shrank since the last computation and the current page fell off
// the end, the page is clamped down here, without any caller involvement.
func (p *Pager) Slice(records []Record) ([]Record, PageInfo) {
	total := len(records)
	totalPages := (total + p.pageSize - 1) / p.pageSize
	p.totalPages = totalPages

	if totalPages == 0 {
		return nil, PageInfo{
			CurrentPage: 0,
			PageSize:    p.pageSize,
		}
	}

	if p.page > totalPages {
		p.page = totalPages
	}

	start := (p.page - 1) * p.pageSize
	end := start + p.pageSize
	if end > total {
		end = total
	}

	return records[start:end], PageInfo{
		TotalItems:  total,
		TotalPages:  totalPages,
		CurrentPage: p.page,
		PageSize:    p.pageSize,
		StartIndex:  start + 1,
		EndIndex:    end,
		HasNext:     p.page < totalPages,
		HasPrevious: p.page > 1,
	}
}
