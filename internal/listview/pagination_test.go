package listview

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedRecords(n int) []Record {
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{"id": fmt.Sprintf("j%d", i+1)}
	}
	return records
}

func TestPager_Slice(t *testing.T) {
	records := numberedRecords(23)

	p := NewPager(10)

	page, info := p.Slice(records)
	require.Len(t, page, 10)
	assert.Equal(t, 23, info.TotalItems)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 1, info.CurrentPage)
	assert.Equal(t, 1, info.StartIndex)
	assert.Equal(t, 10, info.EndIndex)
	assert.True(t, info.HasNext)
	assert.False(t, info.HasPrevious)
	assert.Equal(t, "j1", page[0]["id"])

	p.GoToPage(3)
	page, info = p.Slice(records)
	require.Len(t, page, 3)
	assert.Equal(t, 21, info.StartIndex)
	assert.Equal(t, 23, info.EndIndex)
	assert.False(t, info.HasNext)
	assert.True(t, info.HasPrevious)
	assert.Equal(t, "j21", page[0]["id"])
}

func TestPager_PagesPartitionTheSequence(t *testing.T) {
	records := numberedRecords(47)

	p := NewPager(10)
	_, info := p.Slice(records)

	var concatenated []Record
	for n := 1; n <= info.TotalPages; n++ {
		p.GoToPage(n)
		page, _ := p.Slice(records)
		concatenated = append(concatenated, page...)
	}

	// Pages are disjoint, order-preserving, and cover every record.
	require.Len(t, concatenated, len(records))
	for i, rec := range concatenated {
		assert.Equal(t, records[i]["id"], rec["id"])
	}
}

func TestPager_GoToPageClamps(t *testing.T) {
	records := numberedRecords(23)

	p := NewPager(10)
	p.Slice(records)

	tests := []struct {
		request int
		want    int
	}{
		{-5, 1},
		{0, 1},
		{2, 2},
		{3, 3},
		{99, 3},
	}

	for _, tt := range tests {
		p.GoToPage(tt.request)
		assert.Equal(t, tt.want, p.CurrentPage(), "GoToPage(%d)", tt.request)
	}
}

func TestPager_SelfCorrectsWhenSourceShrinks(t *testing.T) {
	p := NewPager(10)

	p.Slice(numberedRecords(50))
	p.GoToPage(5)
	require.Equal(t, 5, p.CurrentPage())

	// The sequence shrank to 3 pages; the next recomputation clamps down
	// without any explicit navigation call.
	page, info := p.Slice(numberedRecords(23))
	assert.Equal(t, 3, p.CurrentPage())
	assert.Equal(t, 3, info.CurrentPage)
	assert.Len(t, page, 3)
}

func TestPager_EmptySource(t *testing.T) {
	p := NewPager(10)

	page, info := p.Slice(nil)
	assert.Empty(t, page)
	assert.Zero(t, info.TotalItems)
	assert.Zero(t, info.TotalPages)
	assert.Zero(t, info.CurrentPage)
	assert.Zero(t, info.StartIndex)
	assert.Zero(t, info.EndIndex)
	assert.False(t, info.HasNext)
	assert.False(t, info.HasPrevious)

	// A page position from a previous, larger sequence does not leak into
	// the empty result.
	p.Slice(numberedRecords(50))
	p.GoToPage(5)
	_, info = p.Slice(nil)
	assert.Zero(t, info.CurrentPage)
	assert.Zero(t, info.TotalPages)
}

func TestPager_SetPageSize(t *testing.T) {
	p := NewPager(10)
	p.Slice(numberedRecords(100))
	p.GoToPage(4)

	p.SetPageSize(50)
	assert.Equal(t, 50, p.PageSize())
	assert.Equal(t, 1, p.CurrentPage(), "page size change resets to page 1")

	// Unrecognized sizes are ignored entirely.
	p.GoToPage(2)
	p.SetPageSize(33)
	assert.Equal(t, 50, p.PageSize())
	assert.Equal(t, 2, p.CurrentPage())

	// Re-setting the same size is not a reset either.
	p.SetPageSize(50)
	assert.Equal(t, 2, p.CurrentPage())
}

func TestNewPager_UnrecognizedSizeFallsBack(t *testing.T) {
	assert.Equal(t, DefaultPageSize, NewPager(0).PageSize())
	assert.Equal(t, DefaultPageSize, NewPager(7).PageSize())
	assert.Equal(t, 100, NewPager(100).PageSize())
}
