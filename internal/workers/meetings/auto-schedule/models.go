// internal/workers/meetings/auto-schedule/models.go
package autoschedule

type Input struct {
	JobID string `json:"jobId"`
	HRID  string `json:"hrId"`
}

type Output struct {
	RunID              string   `json:"runId"`
	ScheduledCount     int      `json:"scheduledCount"`
	FailedCount        int      `json:"failedCount"`
	FailedCandidateIDs []string `json:"failedCandidateIds,omitempty"`
	FinishedAt         string   `json:"finishedAt"` // ISO 8601
}
