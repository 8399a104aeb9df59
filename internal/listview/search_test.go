package listview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchRecords() []Record {
	return []Record{
		{"id": "j1", "filename": "invoice.pdf", "status": "completed"},
		{"id": "j2", "filename": "receipt.png", "status": "failed"},
		{"id": "j3", "filename": "INVENTORY.xlsx", "status": "queued"},
	}
}

func TestSearch_Apply(t *testing.T) {
	tests := []struct {
		name    string
		fields  []string
		term    string
		wantIDs []string
	}{
		{
			name:    "empty term is identity",
			fields:  []string{"filename"},
			term:    "",
			wantIDs: []string{"j1", "j2", "j3"},
		},
		{
			name:    "whitespace-only term is identity",
			fields:  []string{"filename"},
			term:    "   ",
			wantIDs: []string{"j1", "j2", "j3"},
		},
		{
			name:    "substring match on filename",
			fields:  []string{"filename"},
			term:    "inv",
			wantIDs: []string{"j1", "j3"},
		},
		{
			name:    "match is case-insensitive both ways",
			fields:  []string{"filename"},
			term:    "INVOICE",
			wantIDs: []string{"j1"},
		},
		{
			name:    "any configured field may match",
			fields:  []string{"filename", "status"},
			term:    "fail",
			wantIDs: []string{"j2"},
		},
		{
			name:    "missing field never matches",
			fields:  []string{"document_type"},
			term:    "inv",
			wantIDs: []string{},
		},
		{
			name:    "no configured fields never matches",
			fields:  nil,
			term:    "inv",
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSearch(tt.fields, 0)
			s.SetTerm(tt.term)

			got := s.Apply(searchRecords())

			ids := make([]string, 0, len(got))
			for _, rec := range got {
				ids = append(ids, rec["id"].(string))
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestSearch_NestedFieldPath(t *testing.T) {
	records := []Record{
		{"id": "j1", "result": map[string]any{"vendor": "Acme Supplies"}},
		{"id": "j2", "result": map[string]any{"vendor": "Globex"}},
		{"id": "j3"}, // no result at all
	}

	s := NewSearch([]string{"result.vendor"}, 0)
	s.SetTerm("acme")

	got := s.Apply(records)
	require.Len(t, got, 1)
	assert.Equal(t, "j1", got[0]["id"])
}

func TestSearch_Debounce(t *testing.T) {
	const interval = 20 * time.Millisecond

	s := NewSearch([]string{"filename"}, interval)

	s.SetTerm("inv")
	assert.Equal(t, "inv", s.Term())
	assert.Empty(t, s.EffectiveTerm())
	assert.True(t, s.IsSearching())

	// While pending, the stage still filters with the old (empty) term.
	assert.Len(t, s.Apply(searchRecords()), 3)

	assert.Eventually(t, func() bool {
		return s.EffectiveTerm() == "inv" && !s.IsSearching()
	}, time.Second, time.Millisecond)

	assert.Len(t, s.Apply(searchRecords()), 2)
}

func TestSearch_DebounceCancelsPendingTerm(t *testing.T) {
	const interval = 30 * time.Millisecond

	s := NewSearch([]string{"filename"}, interval)

	// Each keystroke resets the timer; only the final term may settle.
	s.SetTerm("i")
	time.Sleep(interval / 3)
	s.SetTerm("in")
	time.Sleep(interval / 3)
	s.SetTerm("receipt")

	assert.Eventually(t, func() bool {
		return !s.IsSearching()
	}, time.Second, time.Millisecond)

	assert.Equal(t, "receipt", s.EffectiveTerm())
}

func TestSearch_ApplyDoesNotMutateInput(t *testing.T) {
	records := searchRecords()

	s := NewSearch([]string{"filename"}, 0)
	s.SetTerm("inv")
	_ = s.Apply(records)

	require.Len(t, records, 3)
	assert.Equal(t, "j2", records[1]["id"])
}
