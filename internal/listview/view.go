package listview

import (
	"sync"
	"time"
)

// Options configures a View. SearchFields has no default; a view with no
// searchable fields simply never matches a term.
type Options struct {
	SearchFields []string
	Debounce     time.Duration
	PageSize     int
}

// View composes the three stages in fixed order: search, then filter, then
// pagination. Nothing is cached between reads; Page derives the slice fresh
// from the current source, term, filter state, and pager state, so swapping
// the source wholesale or touching any upstream knob propagates without
// manual invalidation.
//
// The view owns its three stage states. Callers mutate them only through the
// methods here, which makes the view safe for the poll-refresh goroutine and
// a request handler to share.
type View struct {
	mu     sync.Mutex
	source []Record
	search *Search
	filter *Filter
	pager  *Pager
}

// NewView builds an empty view; call SetSource when the first fetch lands.
func NewView(opts Options) *View {
	return &View{
		search: NewSearch(opts.SearchFields, opts.Debounce),
		filter: NewFilter(),
		pager:  NewPager(opts.PageSize),
	}
}

// SetSource replaces the backing sequence wholesale, as happens on every
// poll or refetch. The records themselves are treated as read-only.
func (v *View) SetSource(records []Record) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.source = records
}

// SetSearchTerm forwards to the search stage; the term takes effect after
// the debounce interval.
func (v *View) SetSearchTerm(term string) { v.search.SetTerm(term) }

// IsSearching reports whether a debounced term update is still pending.
func (v *View) IsSearching() bool { return v.search.IsSearching() }

// UpdateFilter replaces one named filter field.
func (v *View) UpdateFilter(field string, value any) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter.Update(field, value)
}

// ClearFilters resets the whole filter state atomically.
func (v *View) ClearFilters() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.Clear()
}

// HasActiveFilters reports whether any filter predicate is active.
func (v *View) HasActiveFilters() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter.Active()
}

// GoToPage, NextPage, PreviousPage and SetPageSize forward to the pager.
func (v *View) GoToPage(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pager.GoToPage(n)
}

func (v *View) NextPage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pager.NextPage()
}

func (v *View) PreviousPage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pager.PreviousPage()
}

func (v *View) SetPageSize(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pager.SetPageSize(n)
}

// Page runs the full pipeline and returns the current page slice with its
// navigation metadata. Pagination always operates on the searched-and-
// filtered sequence, never on the raw source.
func (v *View) Page() ([]Record, PageInfo) {
	v.mu.Lock()
	defer v.mu.Unlock()

	visible := v.filter.Apply(v.search.Apply(v.source))
	return v.pager.Slice(visible)
}

// FilteredCount returns how many records survive search and filter, before
// pagination. The dashboard uses it for "N results" captions.
func (v *View) FilteredCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.filter.Apply(v.search.Apply(v.source)))
}
