// Package listview implements the dashboard list-view pipeline: a debounced
// search stage, a structured filter stage, and a pagination stage composed in
// that order over an in-memory slice of job records.
package listview

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Record is a single job row as the dashboard sees it: an opaque map of
// column name to value, typically decoded from processing-API JSON. Stages
// never mutate a Record; every stage returns a freshly derived slice.
type Record map[string]any

// Well-known record keys consumed by the filter stage.
const (
	KeyStatus       = "status"
	KeyCreatedAt    = "created_at"
	KeyDocumentType = "document_type"
	KeyTemplateID   = "template_id"
	KeyConfidence   = "confidence"
)

// NormalizeConfidence coerces a raw confidence value onto a 0-100 scale.
// Values at or below 1 are treated as fractions (0.85 becomes 85), since the
// extraction backend reports both scales. Unparseable or missing values rank
// lowest and come back as 0.
func NormalizeConfidence(v any) float64 {
	var c float64

	switch val := v.(type) {
	case float64:
		c = val
	case float32:
		c = float64(val)
	case int:
		c = float64(val)
	case int32:
		c = float64(val)
	case int64:
		c = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0
		}
		c = parsed
	case string:
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0
		}
		c = parsed
	default:
		return 0
	}

	if c < 0 {
		return 0
	}
	if c <= 1 {
		c *= 100
	}
	if c > 100 {
		c = 100
	}

	return c
}

// recordTime resolves a record timestamp that may arrive as a time.Time or as
// an ISO-8601 string. Returns false for anything it cannot parse.
func recordTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, val); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// stringValue renders a resolved field value for substring matching. Nil
// resolves to the empty string so missing fields never match.
func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
