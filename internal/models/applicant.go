// internal/models/applicant.go
package models

// Applicant is a candidate who applied to a job posting. Read-only to
// the scheduler; whether they already have a meeting is derived from the
// job's meeting list, not stored here.
type Applicant struct {
	ID             string `json:"_id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// WhiteTest is the screening-test artifact that must exist for a job
// before interviews may be auto-scheduled.
type WhiteTest struct {
	ID    string `json:"_id"`
	JobID string `json:"job_id"`
	Title string `json:"title,omitempty"`
}
