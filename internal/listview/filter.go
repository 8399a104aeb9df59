package listview

import (
	"fmt"
	"time"
)

// DateRange bounds a filter on record creation time. Either bound may be nil.
// Comparison is calendar-day granular and inclusive on both ends.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Filter field names accepted by Update.
const (
	FieldStatus        = "status"
	FieldDateRange     = "dateRange"
	FieldDocumentType  = "documentType"
	FieldTemplate      = "template"
	FieldConfidenceMin = "confidenceMin"
)

// Filter is the second pipeline stage: a multi-predicate structured filter.
// Dimensions combine with AND; values within a set dimension combine with OR.
// The zero value matches everything.
type Filter struct {
	Statuses      []string
	Range         DateRange
	DocumentTypes []string
	Templates     []string
	ConfidenceMin float64
}

// NewFilter returns a filter with all predicates inactive.
func NewFilter() *Filter {
	return &Filter{}
}

// Update replaces exactly one named field, leaving the others untouched.
// dateRange is replaced wholesale: callers supply the full DateRange even
// when changing a single bound. Unknown field names and mistyped values are
// rejected so a bad caller cannot silently deactivate a predicate.
func (f *Filter) Update(field string, value any) error {
	switch field {
	case FieldStatus:
		set, ok := value.([]string)
		if !ok {
			return fmt.Errorf("filter field %q wants []string, got %T", field, value)
		}
		f.Statuses = set
	case FieldDateRange:
		r, ok := value.(DateRange)
		if !ok {
			return fmt.Errorf("filter field %q wants listview.DateRange, got %T", field, value)
		}
		f.Range = r
	case FieldDocumentType:
		set, ok := value.([]string)
		if !ok {
			return fmt.Errorf("filter field %q wants []string, got %T", field, value)
		}
		f.DocumentTypes = set
	case FieldTemplate:
		set, ok := value.([]string)
		if !ok {
			return fmt.Errorf("filter field %q wants []string, got %T", field, value)
		}
		f.Templates = set
	case FieldConfidenceMin:
		min, ok := value.(float64)
		if !ok {
			return fmt.Errorf("filter field %q wants float64, got %T", field, value)
		}
		f.ConfidenceMin = min
	default:
		return fmt.Errorf("unknown filter field %q", field)
	}
	return nil
}

// Clear resets every field to its inactive default in one step.
func (f *Filter) Clear() {
	*f = Filter{}
}

// Active reports whether at least one predicate would currently exclude
// anything: any non-empty set, any date bound, or a confidence floor above 0.
func (f *Filter) Active() bool {
	return len(f.Statuses) > 0 ||
		f.Range.Start != nil ||
		f.Range.End != nil ||
		len(f.DocumentTypes) > 0 ||
		len(f.Templates) > 0 ||
		f.ConfidenceMin > 0
}

// Apply returns the records satisfying all active predicates. With no active
// predicate the input slice is returned untouched.
func (f *Filter) Apply(records []Record) []Record {
	if !f.Active() {
		return records
	}

	matched := make([]Record, 0, len(records))
	for _, rec := range records {
		if f.matches(rec) {
			matched = append(matched, rec)
		}
	}
	return matched
}

func (f *Filter) matches(rec Record) bool {
	if len(f.Statuses) > 0 && !inSet(f.Statuses, stringValue(rec[KeyStatus])) {
		return false
	}

	if f.Range.Start != nil || f.Range.End != nil {
		created, ok := recordTime(rec[KeyCreatedAt])
		if !ok {
			// Unparseable timestamps degrade to non-matching when a
			// range is active, never to an error.
			return false
		}
		day := toDay(created)
		if f.Range.Start != nil && day.Before(toDay(*f.Range.Start)) {
			return false
		}
		if f.Range.End != nil && day.After(toDay(*f.Range.End)) {
			return false
		}
	}

	if f.ConfidenceMin > 0 && NormalizeConfidence(rec[KeyConfidence]) < f.ConfidenceMin {
		return false
	}

	if len(f.DocumentTypes) > 0 && !inSet(f.DocumentTypes, stringValue(rec[KeyDocumentType])) {
		return false
	}

	if len(f.Templates) > 0 && !inSet(f.Templates, stringValue(rec[KeyTemplateID])) {
		return false
	}

	return true
}

func inSet(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}

// toDay truncates a timestamp to its calendar day in UTC.
func toDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
