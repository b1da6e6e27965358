// internal/scheduler/prober.go
package scheduler

import (
	"time"

	"meeting-scheduler/internal/models"
)

const (
	// DefaultSlotDuration is the length of every interview created by
	// the auto-scheduler.
	DefaultSlotDuration = 60 * time.Minute

	// MaxProbeAttempts bounds the slot search so a fully booked
	// calendar terminates with "no slot" instead of scanning forever.
	MaxProbeAttempts = 100

	businessDayStartHour = 9
	businessDayEndHour   = 17
)

// FindNextSlot returns the next timestamp at or after from that falls on
// a weekday inside business hours and does not overlap any meeting in
// the collection. Candidates are quantized to d-length steps anchored at
// 09:00. Returns ok=false when MaxProbeAttempts candidates were all
// taken.
func FindNextSlot(from time.Time, meetings []models.Meeting, d time.Duration) (time.Time, bool) {
	candidate := atBusinessDayStart(from)
	if from.Hour() >= businessDayEndHour {
		candidate = candidate.AddDate(0, 0, 1)
	}
	candidate = skipWeekend(candidate)

	for attempt := 0; attempt < MaxProbeAttempts; attempt++ {
		if !Overlaps(candidate, d, meetings) {
			return candidate, true
		}
		candidate = candidate.Add(d)
		if slotEndsAfterBusinessDay(candidate, d) {
			candidate = atBusinessDayStart(candidate).AddDate(0, 0, 1)
			candidate = skipWeekend(candidate)
		}
	}

	return time.Time{}, false
}

// atBusinessDayStart returns 09:00 on t's calendar date.
func atBusinessDayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), businessDayStartHour, 0, 0, 0, t.Location())
}

func skipWeekend(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// slotEndsAfterBusinessDay treats a slot whose end would cross 17:00 as
// invalid; ending exactly at 17:00 is allowed.
func slotEndsAfterBusinessDay(start time.Time, d time.Duration) bool {
	dayEnd := time.Date(start.Year(), start.Month(), start.Day(), businessDayEndHour, 0, 0, 0, start.Location())
	return start.Add(d).After(dayEnd)
}
