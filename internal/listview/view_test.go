package listview

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewRecords(n int) []Record {
	records := make([]Record, n)
	for i := range records {
		status := "completed"
		if i%3 == 0 {
			status = "failed"
		}
		records[i] = Record{
			"id":         fmt.Sprintf("j%d", i+1),
			"filename":   fmt.Sprintf("invoice-%03d.pdf", i+1),
			"status":     status,
			"created_at": time.Date(2026, 3, 1+i%28, 12, 0, 0, 0, time.UTC).Format(time.RFC3339),
			"confidence": 0.5 + float64(i%50)/100,
		}
	}
	return records
}

func newTestView() *View {
	return NewView(Options{
		SearchFields: []string{"filename", "status"},
		Debounce:     0,
		PageSize:     10,
	})
}

func TestView_PaginationRunsOnFilteredSequence(t *testing.T) {
	v := newTestView()
	v.SetSource(viewRecords(60))

	_, info := v.Page()
	assert.Equal(t, 60, info.TotalItems)
	assert.Equal(t, 6, info.TotalPages)

	// 20 of 60 records are failed; pagination must see those 20, not 60.
	require.NoError(t, v.UpdateFilter(FieldStatus, []string{"failed"}))

	page, info := v.Page()
	assert.Equal(t, 20, info.TotalItems)
	assert.Equal(t, 2, info.TotalPages)
	require.Len(t, page, 10)
	for _, rec := range page {
		assert.Equal(t, "failed", rec["status"])
	}
}

func TestView_SearchThenFilterThenPage(t *testing.T) {
	v := NewView(Options{SearchFields: []string{"filename"}, PageSize: 10})
	v.SetSource([]Record{
		{"id": "j1", "filename": "invoice.pdf", "status": "completed"},
		{"id": "j2", "filename": "invoice-copy.pdf", "status": "failed"},
		{"id": "j3", "filename": "receipt.png", "status": "failed"},
	})

	v.SetSearchTerm("invoice")
	require.NoError(t, v.UpdateFilter(FieldStatus, []string{"failed"}))

	page, info := v.Page()
	assert.Equal(t, 1, info.TotalItems)
	require.Len(t, page, 1)
	assert.Equal(t, "j2", page[0]["id"])
}

func TestView_ShrinkingFilterClampsCurrentPage(t *testing.T) {
	v := newTestView()
	v.SetSource(viewRecords(60))

	v.GoToPage(5)
	_, info := v.Page()
	require.Equal(t, 5, info.CurrentPage)

	// Narrowing to the 20 failed records leaves only 2 pages; the very next
	// read lands on page 2 with no extra navigation.
	require.NoError(t, v.UpdateFilter(FieldStatus, []string{"failed"}))
	_, info = v.Page()
	assert.Equal(t, 2, info.CurrentPage)
}

func TestView_SourceSwapPropagates(t *testing.T) {
	v := newTestView()
	v.SetSource(viewRecords(60))
	v.GoToPage(6)

	// A poll replaced the source wholesale; everything downstream is
	// recomputed from the new sequence on the next read.
	v.SetSource(viewRecords(5))
	page, info := v.Page()
	assert.Equal(t, 5, info.TotalItems)
	assert.Equal(t, 1, info.TotalPages)
	assert.Equal(t, 1, info.CurrentPage)
	assert.Len(t, page, 5)

	v.SetSource(nil)
	page, info = v.Page()
	assert.Empty(t, page)
	assert.Zero(t, info.TotalPages)
}

func TestView_ClearFiltersRestoresFullSequence(t *testing.T) {
	v := newTestView()
	v.SetSource(viewRecords(30))

	require.NoError(t, v.UpdateFilter(FieldStatus, []string{"failed"}))
	require.True(t, v.HasActiveFilters())
	_, info := v.Page()
	require.Equal(t, 10, info.TotalItems)

	v.ClearFilters()
	assert.False(t, v.HasActiveFilters())
	_, info = v.Page()
	assert.Equal(t, 30, info.TotalItems)
}

func TestView_FilteredCount(t *testing.T) {
	v := newTestView()
	v.SetSource(viewRecords(30))

	assert.Equal(t, 30, v.FilteredCount())
	v.SetSearchTerm("invoice-00")
	assert.Equal(t, 9, v.FilteredCount())
}

func TestView_DebouncedTermSettlesIntoResults(t *testing.T) {
	v := NewView(Options{
		SearchFields: []string{"filename"},
		Debounce:     15 * time.Millisecond,
		PageSize:     10,
	})
	v.SetSource(viewRecords(30))

	v.SetSearchTerm("invoice-001")
	assert.True(t, v.IsSearching())
	assert.Equal(t, 30, v.FilteredCount(), "term not yet effective")

	assert.Eventually(t, func() bool {
		return v.FilteredCount() == 1
	}, time.Second, time.Millisecond)
	assert.False(t, v.IsSearching())
}
