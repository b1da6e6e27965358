// internal/workers/meetings/auto-schedule/handler_test.go
package autoschedule

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeting-scheduler/internal/common/config"
	"meeting-scheduler/internal/common/database"
	"meeting-scheduler/internal/common/errors"
	"meeting-scheduler/internal/common/logger"
	"meeting-scheduler/internal/models"
	"meeting-scheduler/internal/scheduler"
)

const (
	testJobID = "64a000000000000000000001"
	testHRID  = "64d000000000000000000001"
)

// Monday 10:00, so runs schedule from Tuesday 09:00 onward.
var testNow = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

// ==========================
// Test Helper Functions
// ==========================

type fakeAPI struct {
	applicants    []models.Applicant
	meetings      []models.Meeting
	whiteTest     *models.WhiteTest
	applicantsErr error
	meetingsErr   error
	whiteTestErr  error
	createErr     map[string]error

	created []models.Meeting
}

func (f *fakeAPI) ListApplicants(ctx context.Context, jobID string) ([]models.Applicant, error) {
	if f.applicantsErr != nil {
		return nil, f.applicantsErr
	}
	return f.applicants, nil
}

func (f *fakeAPI) ListMeetings(ctx context.Context, jobID string) ([]models.Meeting, error) {
	if f.meetingsErr != nil {
		return nil, f.meetingsErr
	}
	return f.meetings, nil
}

func (f *fakeAPI) GetWhiteTest(ctx context.Context, jobID string) (*models.WhiteTest, error) {
	if f.whiteTestErr != nil {
		return nil, f.whiteTestErr
	}
	return f.whiteTest, nil
}

func (f *fakeAPI) CreateMeeting(ctx context.Context, req scheduler.CreateMeetingRequest) (*models.Meeting, error) {
	if err, ok := f.createErr[req.CandidateID]; ok {
		return nil, err
	}
	meeting := models.Meeting{
		ID:          fmt.Sprintf("meeting-%d", len(f.created)+1),
		JobID:       req.JobID,
		CandidateID: req.CandidateID,
		HRID:        req.HRID,
		MeetingDate: req.StartTime,
		Status:      req.Status,
	}
	f.created = append(f.created, meeting)
	return &meeting, nil
}

func applicant(n int) models.Applicant {
	return models.Applicant{
		ID:        fmt.Sprintf("64b00000000000000000000%d", n),
		FirstName: fmt.Sprintf("Candidate%d", n),
	}
}

func defaultAPI() *fakeAPI {
	return &fakeAPI{
		whiteTest: &models.WhiteTest{ID: "64e000000000000000000001", JobID: testJobID},
	}
}

func newTestRedis(t *testing.T) *database.RedisClient {
	mr := miniredis.RunT(t)
	rdb, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func newTestHandler(t *testing.T, api *fakeAPI, rdb *database.RedisClient) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewHandler(LoadConfig(), api, rdb, db, nil, logger.NewNoOpLogger())
	h.now = func() time.Time { return testNow }
	return h, mock
}

func expectRunInsert(mock sqlmock.Sqlmock) {
	mock.ExpectExec(`INSERT INTO scheduling_runs`).
		WillReturnResult(sqlmock.NewResult(1, 1))
}

func testInput() *Input {
	return &Input{JobID: testJobID, HRID: testHRID}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_SchedulesAllApplicants(t *testing.T) {
	api := defaultAPI()
	api.applicants = []models.Applicant{applicant(1), applicant(2), applicant(3)}

	h, mock := newTestHandler(t, api, newTestRedis(t))
	expectRunInsert(mock)

	output, err := h.Execute(context.Background(), testInput())
	require.NoError(t, err)
	require.NotNil(t, output)

	assert.Equal(t, 3, output.ScheduledCount)
	assert.Equal(t, 0, output.FailedCount)
	assert.Empty(t, output.FailedCandidateIDs)
	assert.NotEmpty(t, output.RunID)

	// Consecutive hour slots starting Tuesday 09:00.
	require.Len(t, api.created, 3)
	assert.Equal(t, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), api.created[0].MeetingDate)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), api.created[1].MeetingDate)
	assert.Equal(t, time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC), api.created[2].MeetingDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_SkipsAlreadyScheduled(t *testing.T) {
	api := defaultAPI()
	api.applicants = []models.Applicant{applicant(1), applicant(2)}
	api.meetings = []models.Meeting{
		{
			ID:          "64c000000000000000000001",
			JobID:       testJobID,
			CandidateID: applicant(1).ID,
			MeetingDate: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
			Status:      models.MeetingStatusScheduled,
		},
	}

	h, mock := newTestHandler(t, api, newTestRedis(t))
	expectRunInsert(mock)

	output, err := h.Execute(context.Background(), testInput())
	require.NoError(t, err)

	assert.Equal(t, 1, output.ScheduledCount)
	require.Len(t, api.created, 1)
	assert.Equal(t, applicant(2).ID, api.created[0].CandidateID)
	// The existing 09:00 meeting blocks that slot.
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), api.created[0].MeetingDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_CancelledMeetingDoesNotCount(t *testing.T) {
	api := defaultAPI()
	api.applicants = []models.Applicant{applicant(1)}
	api.meetings = []models.Meeting{
		{
			ID:          "64c000000000000000000001",
			JobID:       testJobID,
			CandidateID: applicant(1).ID,
			MeetingDate: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
			Status:      models.MeetingStatusCancelled,
		},
	}

	h, mock := newTestHandler(t, api, newTestRedis(t))
	expectRunInsert(mock)

	output, err := h.Execute(context.Background(), testInput())
	require.NoError(t, err)

	// Cancelled meeting neither marks the applicant scheduled nor
	// blocks the 09:00 slot.
	assert.Equal(t, 1, output.ScheduledCount)
	require.Len(t, api.created, 1)
	assert.Equal(t, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), api.created[0].MeetingDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NoUnscheduledApplicants(t *testing.T) {
	api := defaultAPI()
	api.applicants = []models.Applicant{applicant(1)}
	api.meetings = []models.Meeting{
		{
			ID:          "64c000000000000000000001",
			JobID:       testJobID,
			CandidateID: applicant(1).ID,
			MeetingDate: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
			Status:      models.MeetingStatusScheduled,
		},
	}

	h, mock := newTestHandler(t, api, newTestRedis(t))
	expectRunInsert(mock)

	output, err := h.Execute(context.Background(), testInput())
	require.NoError(t, err)

	assert.Equal(t, 0, output.ScheduledCount)
	assert.Equal(t, 0, output.FailedCount)
	assert.Empty(t, api.created)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_CreateFailureCountsAndContinues(t *testing.T) {
	api := defaultAPI()
	api.applicants = []models.Applicant{applicant(1), applicant(2), applicant(3)}
	api.createErr = map[string]error{
		applicant(2).ID: fmt.Errorf("backend rejected meeting"),
	}

	h, mock := newTestHandler(t, api, newTestRedis(t))
	expectRunInsert(mock)

	output, err := h.Execute(context.Background(), testInput())
	require.NoError(t, err)

	assert.Equal(t, 2, output.ScheduledCount)
	assert.Equal(t, 1, output.FailedCount)
	assert.Equal(t, []string{applicant(2).ID}, output.FailedCandidateIDs)

	// The failed candidate's slot is reused by the next applicant.
	require.Len(t, api.created, 2)
	assert.Equal(t, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), api.created[0].MeetingDate)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), api.created[1].MeetingDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_InvalidInput(t *testing.T) {
	h, _ := newTestHandler(t, defaultAPI(), newTestRedis(t))

	for _, input := range []*Input{
		{JobID: "", HRID: testHRID},
		{JobID: testJobID, HRID: ""},
		{JobID: "not-an-id", HRID: testHRID},
		{JobID: testJobID, HRID: "zzz"},
	} {
		output, err := h.Execute(context.Background(), input)
		require.Error(t, err)
		assert.Nil(t, output)

		stdErr, ok := err.(*errors.StandardError)
		require.True(t, ok)
		assert.Equal(t, errors.ErrCodeInvalidInput, stdErr.Code)
	}
}

func TestHandler_Execute_WhiteTestMissing(t *testing.T) {
	api := defaultAPI()
	api.whiteTest = nil
	api.applicants = []models.Applicant{applicant(1)}

	h, _ := newTestHandler(t, api, newTestRedis(t))

	output, err := h.Execute(context.Background(), testInput())
	require.Error(t, err)
	assert.Nil(t, output)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeWhiteTestMissing, stdErr.Code)
	assert.False(t, stdErr.Retryable)
	assert.Empty(t, api.created)
}

func TestHandler_Execute_UpstreamFetchError(t *testing.T) {
	api := defaultAPI()
	api.applicantsErr = fmt.Errorf("connection refused")

	h, _ := newTestHandler(t, api, newTestRedis(t))

	output, err := h.Execute(context.Background(), testInput())
	require.Error(t, err)
	assert.Nil(t, output)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeUpstreamFetch, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestHandler_Execute_RunInProgress(t *testing.T) {
	api := defaultAPI()
	api.applicants = []models.Applicant{applicant(1)}

	rdb := newTestRedis(t)
	h, _ := newTestHandler(t, api, rdb)

	// Simulate a concurrent run holding the lock.
	held, err := rdb.AcquireLock(context.Background(), lockKeyPrefix+testJobID, "other-run", time.Minute)
	require.NoError(t, err)
	require.True(t, held)

	output, err := h.Execute(context.Background(), testInput())
	require.Error(t, err)
	assert.Nil(t, output)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeRunInProgress, stdErr.Code)
	assert.Empty(t, api.created)
}

func TestHandler_Execute_LockReleasedAfterRun(t *testing.T) {
	api := defaultAPI()
	api.applicants = []models.Applicant{applicant(1)}

	rdb := newTestRedis(t)
	h, mock := newTestHandler(t, api, rdb)
	expectRunInsert(mock)

	_, err := h.Execute(context.Background(), testInput())
	require.NoError(t, err)

	// A second run may start immediately.
	held, err := rdb.AcquireLock(context.Background(), lockKeyPrefix+testJobID, "next-run", time.Minute)
	require.NoError(t, err)
	assert.True(t, held)
}

func TestHandler_Execute_AuditInsertFailureIsNonCritical(t *testing.T) {
	api := defaultAPI()
	api.applicants = []models.Applicant{applicant(1)}

	h, mock := newTestHandler(t, api, newTestRedis(t))
	mock.ExpectExec(`INSERT INTO scheduling_runs`).
		WillReturnError(fmt.Errorf("audit table unavailable"))

	output, err := h.Execute(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, 1, output.ScheduledCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}
