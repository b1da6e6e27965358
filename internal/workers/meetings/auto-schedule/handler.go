// internal/workers/meetings/auto-schedule/handler.go
package autoschedule

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"meeting-scheduler/internal/common/database"
	"meeting-scheduler/internal/common/errors"
	"meeting-scheduler/internal/common/logger"
	"meeting-scheduler/internal/common/metrics"
	"meeting-scheduler/internal/common/validation"
	"meeting-scheduler/internal/models"
	"meeting-scheduler/internal/scheduler"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "auto-schedule-meetings"

	lockKeyPrefix = "scheduler:lock:job:"
)

// JobBoardAPI is the slice of the platform client this worker needs.
type JobBoardAPI interface {
	ListApplicants(ctx context.Context, jobID string) ([]models.Applicant, error)
	ListMeetings(ctx context.Context, jobID string) ([]models.Meeting, error)
	GetWhiteTest(ctx context.Context, jobID string) (*models.WhiteTest, error)
	CreateMeeting(ctx context.Context, req scheduler.CreateMeetingRequest) (*models.Meeting, error)
}

// RunIndexer persists run summaries for search. Optional.
type RunIndexer interface {
	IndexDocument(ctx context.Context, index, id string, doc interface{}) error
}

type Handler struct {
	config     *Config
	api        JobBoardAPI
	rdb        *database.RedisClient
	db         *sql.DB
	es         RunIndexer
	logger     logger.Logger
	errHandler *errors.ErrorHandler
	now        func() time.Time
}

// NewHandler wires the worker. db and es are optional: the audit row
// and the search index are best-effort, the run itself never depends on
// them. rdb may be nil in dev setups, which disables run locking.
func NewHandler(config *Config, api JobBoardAPI, rdb *database.RedisClient, db *sql.DB, es RunIndexer, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		api:        api,
		rdb:        rdb,
		db:         db,
		es:         es,
		logger:     scoped,
		errHandler: errors.NewErrorHandler(scoped),
		now:        time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var variables map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &variables); err != nil {
		h.failJob(client, job, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	if result := validation.ValidateInput(variables, GetInputSchema()); !result.Valid {
		h.failJob(client, job, errors.NewInvalidInputError(
			fmt.Sprintf("validation errors: %v", result.GetErrorMessages())))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	start := h.now()
	output, err := h.execute(ctx, &input)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	metrics.RunDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())

	if err != nil {
		stdErr := errors.NewSchedulerInternalError(err)
		if se, ok := err.(*errors.StandardError); ok {
			stdErr = se
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.failJob(client, job, stdErr)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.MeetingsScheduled.WithLabelValues(TaskType).Add(float64(output.ScheduledCount))
	metrics.MeetingsFailed.WithLabelValues(TaskType).Add(float64(output.FailedCount))
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if stdErr := validateInput(input); stdErr != nil {
		return nil, stdErr
	}

	// One run per job posting at a time. The TTL covers a crashed
	// holder; a concurrent run fails fast instead of double-booking.
	if h.rdb != nil {
		runToken := uuid.New().String()
		acquired, err := h.rdb.AcquireLock(ctx, lockKeyPrefix+input.JobID, runToken, h.config.LockTTL)
		if err != nil {
			return nil, errors.NewSchedulerInternalError(err)
		}
		if !acquired {
			return nil, errors.NewRunInProgressError(input.JobID)
		}
		metrics.RunsActive.WithLabelValues(TaskType).Inc()
		defer func() {
			metrics.RunsActive.WithLabelValues(TaskType).Dec()
			if err := h.rdb.ReleaseLock(context.Background(), lockKeyPrefix+input.JobID); err != nil {
				h.logger.Warn("failed to release run lock", map[string]interface{}{
					"jobId": input.JobID,
					"error": err.Error(),
				})
			}
		}()
	}

	// Interviews only make sense once the posting has a screening test.
	test, err := h.api.GetWhiteTest(ctx, input.JobID)
	if err != nil {
		return nil, errors.NewUpstreamFetchError("white test", err)
	}
	if test == nil {
		return nil, errors.NewWhiteTestMissingError(input.JobID)
	}

	applicants, err := h.api.ListApplicants(ctx, input.JobID)
	if err != nil {
		return nil, errors.NewUpstreamFetchError("applicants", err)
	}

	meetings, err := h.api.ListMeetings(ctx, input.JobID)
	if err != nil {
		return nil, errors.NewUpstreamFetchError("meetings", err)
	}

	unscheduled, active := partition(applicants, meetings)
	startedAt := h.now()
	runID := uuid.New().String()

	if len(unscheduled) == 0 {
		h.logger.Info("no unscheduled applicants, nothing to do", map[string]interface{}{
			"jobId":          input.JobID,
			"applicantCount": len(applicants),
		})
		out := &Output{
			RunID:      runID,
			FinishedAt: h.now().UTC().Format(time.RFC3339),
		}
		h.persistRun(ctx, input, out, startedAt)
		return out, nil
	}

	batch := scheduler.NewBatch(h.api, &scheduler.Config{
		SlotDuration: h.config.SlotDuration,
		Now:          h.now,
	}, h.logger)

	result := batch.Run(ctx, input.JobID, input.HRID, unscheduled, active)

	output := &Output{
		RunID:              runID,
		ScheduledCount:     result.ScheduledCount,
		FailedCount:        result.FailedCount,
		FailedCandidateIDs: result.FailedCandidateIDs,
		FinishedAt:         h.now().UTC().Format(time.RFC3339),
	}

	h.persistRun(ctx, input, output, startedAt)

	h.logger.Info("scheduling run finished", map[string]interface{}{
		"jobId":          input.JobID,
		"runId":          runID,
		"scheduledCount": output.ScheduledCount,
		"failedCount":    output.FailedCount,
	})

	return output, nil
}

// partition splits applicants into those still needing a meeting and
// returns the meetings that count as booked. Cancelled meetings neither
// mark an applicant as scheduled nor block a slot.
func partition(applicants []models.Applicant, meetings []models.Meeting) ([]models.Applicant, []models.Meeting) {
	scheduledBy := make(map[string]bool, len(meetings))
	active := make([]models.Meeting, 0, len(meetings))
	for _, m := range meetings {
		if m.Status == models.MeetingStatusCancelled {
			continue
		}
		scheduledBy[m.CandidateID] = true
		active = append(active, m)
	}

	var unscheduled []models.Applicant
	for _, a := range applicants {
		if !scheduledBy[a.ID] {
			unscheduled = append(unscheduled, a)
		}
	}
	return unscheduled, active
}

// persistRun records the run in postgres and elasticsearch. Both are
// best-effort: a lost audit row must never fail a finished run.
func (h *Handler) persistRun(ctx context.Context, input *Input, output *Output, startedAt time.Time) {
	run := models.SchedulingRun{
		ID:             output.RunID,
		JobID:          input.JobID,
		HRID:           input.HRID,
		ScheduledCount: output.ScheduledCount,
		FailedCount:    output.FailedCount,
		StartedAt:      startedAt.UTC(),
		FinishedAt:     h.now().UTC(),
	}

	if h.db != nil {
		_, err := h.db.ExecContext(ctx, `
			INSERT INTO scheduling_runs (
				id, job_id, hr_id, scheduled_count, failed_count, started_at, finished_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			run.ID,
			run.JobID,
			run.HRID,
			run.ScheduledCount,
			run.FailedCount,
			run.StartedAt,
			run.FinishedAt,
		)
		if err != nil {
			h.logger.Warn("scheduling run audit insert failed", map[string]interface{}{
				"runId": run.ID,
				"error": err.Error(),
			})
		}
	}

	if h.es != nil {
		if err := h.es.IndexDocument(ctx, h.config.RunIndex, run.ID, run); err != nil {
			h.logger.Warn("scheduling run index failed", map[string]interface{}{
				"runId": run.ID,
				"error": err.Error(),
			})
		}
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	} else {
		h.logger.Info("job completed successfully", map[string]interface{}{
			"jobKey": job.Key,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, stdErr *errors.StandardError) {
	h.errHandler.HandleJobError(context.Background(), client, job, stdErr)
}

// Execute runs the scheduling logic outside a Zeebe job. Used by tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
