package listview

import (
	"strings"
	"sync"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// DefaultDebounce is the delay between a term change and the term taking
// effect, unless configured otherwise.
const DefaultDebounce = 300 * time.Millisecond

// Search is the first pipeline stage: a debounced, case-insensitive substring
// match over a configured set of record field paths.
//
// SetTerm schedules the effective-term update on a cancellable timer; every
// call cancels the previous timer, so the term only settles once input has
// been stable for the full interval. A zero interval applies terms
// immediately, which is what the API service uses for one-shot requests.
type Search struct {
	mu        sync.Mutex
	term      string
	debounced string
	timer     *time.Timer
	interval  time.Duration
	fields    []jmespath.JMESPath
}

// NewSearch builds a search stage over the given field paths. Paths may
// address nested attributes with dot-separated segments ("result.vendor");
// paths that fail to compile are dropped rather than reported, matching the
// stage's no-error contract.
func NewSearch(fields []string, interval time.Duration) *Search {
	s := &Search{interval: interval}
	for _, f := range fields {
		compiled, err := jmespath.Compile(f)
		if err != nil {
			continue
		}
		s.fields = append(s.fields, compiled)
	}
	return s
}

// SetTerm records a new raw term and schedules it to become effective after
// the debounce interval. A pending schedule from an earlier call is canceled
// first.
func (s *Search) SetTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.term = term

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if s.interval <= 0 {
		s.debounced = term
		return
	}

	s.timer = time.AfterFunc(s.interval, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// A later SetTerm stopped this timer, but Stop can lose the race
		// with an already-fired callback. Only settle if the raw term is
		// still the one this timer was scheduled for.
		if s.term == term {
			s.debounced = term
		}
	})
}

// Term returns the raw term as last typed.
func (s *Search) Term() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

// EffectiveTerm returns the debounced term currently used for matching.
func (s *Search) EffectiveTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debounced
}

// IsSearching reports whether the raw term is still ahead of the debounced
// one, i.e. a schedule is pending.
func (s *Search) IsSearching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term != s.debounced
}

// Apply returns the records whose configured fields contain the effective
// term, case-insensitively. An empty or whitespace-only term is the identity:
// the input slice is returned untouched, order preserved. A field that is
// missing from a record simply does not match; nothing is ever reported as an
// error.
func (s *Search) Apply(records []Record) []Record {
	term := strings.ToLower(strings.TrimSpace(s.EffectiveTerm()))
	if term == "" {
		return records
	}

	matched := make([]Record, 0, len(records))
	for _, rec := range records {
		if s.matches(rec, term) {
			matched = append(matched, rec)
		}
	}
	return matched
}

func (s *Search) matches(rec Record, term string) bool {
	for _, field := range s.fields {
		value, err := field.Search(map[string]any(rec))
		if err != nil || value == nil {
			continue
		}
		if strings.Contains(strings.ToLower(stringValue(value)), term) {
			return true
		}
	}
	return false
}
