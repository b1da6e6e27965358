// internal/models/meeting.go
package models

import "time"

// MeetingStatus mirrors the status enum on the backend's meeting document.
type MeetingStatus string

const (
	MeetingStatusScheduled MeetingStatus = "Scheduled"
	MeetingStatusCompleted MeetingStatus = "Completed"
	MeetingStatusCancelled MeetingStatus = "Cancelled"
	MeetingStatusPending   MeetingStatus = "Pending"
)

// Meeting is an interview record owned by the job-board backend. The
// scheduler only reads and creates meetings; status transitions after
// creation happen elsewhere.
type Meeting struct {
	ID           string        `json:"_id,omitempty"`
	JobID        string        `json:"job_id"`
	CandidateID  string        `json:"candidate_id"`
	HRID         string        `json:"hr_id"`
	MeetingDate  time.Time     `json:"meetingDate"`
	DateCreation time.Time     `json:"dateCreation,omitempty"`
	Status       MeetingStatus `json:"status"`
	RoomURL      string        `json:"roomUrl,omitempty"`
	Notes        string        `json:"notes,omitempty"`
}

// HasStart reports whether the meeting carries a usable start time.
// Records without one are ignored by conflict checks.
func (m Meeting) HasStart() bool {
	return !m.MeetingDate.IsZero()
}
