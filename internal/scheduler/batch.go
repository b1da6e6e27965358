// internal/scheduler/batch.go
package scheduler

import (
	"context"
	"time"

	"meeting-scheduler/internal/common/logger"
	"meeting-scheduler/internal/models"
)

// MeetingCreator is the one collaborator operation the batch scheduler
// needs: create a meeting and return it with its assigned id, or fail
// loudly.
type MeetingCreator interface {
	CreateMeeting(ctx context.Context, req CreateMeetingRequest) (*models.Meeting, error)
}

// CreateMeetingRequest carries the fields of a meeting-creation call.
type CreateMeetingRequest struct {
	JobID       string
	CandidateID string
	HRID        string
	StartTime   time.Time
	Status      models.MeetingStatus
}

// Result summarizes one batch run. ScheduledCount+FailedCount always
// equals the number of applicants passed in.
type Result struct {
	ScheduledCount     int
	FailedCount        int
	FailedCandidateIDs []string
}

// Config holds the tunables of a batch run.
type Config struct {
	SlotDuration time.Duration
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// Batch drives the availability prober across all applicants of a job
// that lack a meeting, reserving one slot at a time. Creation calls are
// strictly sequential: the known-meetings set only grows after a call's
// result is known, which is what keeps slots from colliding without any
// locking.
type Batch struct {
	creator      MeetingCreator
	slotDuration time.Duration
	now          func() time.Time
	logger       logger.Logger
}

func NewBatch(creator MeetingCreator, cfg *Config, log logger.Logger) *Batch {
	b := &Batch{
		creator:      creator,
		slotDuration: DefaultSlotDuration,
		now:          time.Now,
		logger:       log,
	}
	if cfg != nil {
		if cfg.SlotDuration > 0 {
			b.slotDuration = cfg.SlotDuration
		}
		if cfg.Now != nil {
			b.now = cfg.Now
		}
	}
	return b
}

// Run schedules one meeting per unscheduled applicant, in caller order.
// The cursor starts at midnight tomorrow and is never rewound; after a
// successful creation it advances to the end of the booked slot. A
// failed creation leaves the cursor alone so the next applicant gets a
// chance at the same slot. Per-candidate failures (slot exhaustion or a
// rejected creation call) are counted, never escalated.
func (b *Batch) Run(ctx context.Context, jobID, hrID string, unscheduled []models.Applicant, existing []models.Meeting) Result {
	var res Result
	if len(unscheduled) == 0 {
		return res
	}

	known := make([]models.Meeting, len(existing))
	copy(known, existing)

	now := b.now()
	cursor := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)

	for _, applicant := range unscheduled {
		slot, ok := FindNextSlot(cursor, known, b.slotDuration)
		if !ok {
			res.FailedCount++
			res.FailedCandidateIDs = append(res.FailedCandidateIDs, applicant.ID)
			b.logger.Warn("no free slot for candidate", map[string]interface{}{
				"jobId":       jobID,
				"candidateId": applicant.ID,
			})
			continue
		}

		created, err := b.creator.CreateMeeting(ctx, CreateMeetingRequest{
			JobID:       jobID,
			CandidateID: applicant.ID,
			HRID:        hrID,
			StartTime:   slot,
			Status:      models.MeetingStatusScheduled,
		})
		if err != nil {
			res.FailedCount++
			res.FailedCandidateIDs = append(res.FailedCandidateIDs, applicant.ID)
			b.logger.Warn("meeting creation failed", map[string]interface{}{
				"jobId":       jobID,
				"candidateId": applicant.ID,
				"slot":        slot.Format(time.RFC3339),
				"error":       err.Error(),
			})
			continue
		}

		known = append(known, *created)
		res.ScheduledCount++
		cursor = slot.Add(b.slotDuration)

		b.logger.Info("meeting scheduled", map[string]interface{}{
			"jobId":       jobID,
			"candidateId": applicant.ID,
			"meetingId":   created.ID,
			"slot":        slot.Format(time.RFC3339),
		})
	}

	return res
}
