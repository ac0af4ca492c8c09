package store

import "time"

// Status describes the terminal state of a pipeline run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Submission is one recorded pipeline run: what was uploaded, how the
// run ended, and the identifiers the third-party services returned.
type Submission struct {
	ID          string `badgerhold:"key"`
	Filename    string
	Size        int64
	Status      Status
	FailureKind string // Empty on success
	Error       string // Empty on success
	Fields      map[string]string
	DataID      string
	FileID      string
	CreatedAt   time.Time
}
