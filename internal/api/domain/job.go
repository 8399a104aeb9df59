package domain

import (
	"errors"
)

// Job lifecycle: queued on upload, processing once a worker claims it, then
// completed or failed.
const (
	JobStatusQueued     = "queued"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

var (
	ErrJobNotFound     = errors.New("job not found")
	ErrJobNotCompleted = errors.New("job is not completed")
	ErrFieldNotFound   = errors.New("extracted field not found")
)

// ValidStatus reports whether s belongs to the closed status set.
func ValidStatus(s string) bool {
	switch s {
	case JobStatusQueued, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}
