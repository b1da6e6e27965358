// internal/models/run.go
package models

import "time"

// SchedulingRun is the audit record of one batch auto-scheduling
// invocation. Persisted after the run completes; never updated.
type SchedulingRun struct {
	ID             string    `json:"runId"`
	JobID          string    `json:"jobId"`
	HRID           string    `json:"hrId"`
	ScheduledCount int       `json:"scheduledCount"`
	FailedCount    int       `json:"failedCount"`
	StartedAt      time.Time `json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
}
