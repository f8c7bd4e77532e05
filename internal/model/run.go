package model

import "time"

// Run records one extraction invocation for the run-history store.
type Run struct {
	ID          string       `json:"id"`
	Source      string       `json:"source"`
	Kind        SourceKind   `json:"kind"`
	RecordCount int          `json:"record_count"`
	Records     []CardRecord `json:"records,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
}
