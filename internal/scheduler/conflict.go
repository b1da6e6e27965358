// internal/scheduler/conflict.go
package scheduler

import (
	"time"

	"meeting-scheduler/internal/models"
)

// Overlaps reports whether a candidate slot [start, start+d) intersects
// any meeting in the collection. Every meeting is assumed to occupy
// [meetingDate, meetingDate+d); the backend does not store a duration
// field, all meetings created by this service are d long. Meetings
// without a start time are skipped.
func Overlaps(start time.Time, d time.Duration, meetings []models.Meeting) bool {
	end := start.Add(d)
	for _, m := range meetings {
		if !m.HasStart() {
			continue
		}
		meetingEnd := m.MeetingDate.Add(d)
		if start.Before(meetingEnd) && end.After(m.MeetingDate) {
			return true
		}
	}
	return false
}
