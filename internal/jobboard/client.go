// Package jobboard is the REST client for the job-board platform API.
// All scheduling state (applicants, meetings, screening tests) lives on
// the platform side; this service only orchestrates it.
package jobboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"meeting-scheduler/internal/common/config"
	commonhttp "meeting-scheduler/internal/common/http"
	"meeting-scheduler/internal/common/logger"
	"meeting-scheduler/internal/models"
	"meeting-scheduler/internal/scheduler"
)

// envelope is the platform's uniform response shape.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

type Client struct {
	baseURL   string
	authToken string
	http      *commonhttp.Client
	logger    logger.Logger
}

func NewClient(cfg config.JobBoardConfig, log logger.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		authToken: cfg.AuthToken,
		http:      commonhttp.NewClient(timeout),
		logger:    log,
	}
}

// ListApplicants returns every applicant of a job posting.
func (c *Client) ListApplicants(ctx context.Context, jobID string) ([]models.Applicant, error) {
	var applicants []models.Applicant
	if err := c.get(ctx, fmt.Sprintf("/api/jobs/%s/applicants", jobID), &applicants); err != nil {
		return nil, err
	}
	return applicants, nil
}

// ListMeetings returns every meeting attached to a job posting,
// regardless of status.
func (c *Client) ListMeetings(ctx context.Context, jobID string) ([]models.Meeting, error) {
	var meetings []models.Meeting
	if err := c.get(ctx, fmt.Sprintf("/api/meetings/job/%s", jobID), &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

// GetWhiteTest returns the screening test configured for a job, or nil
// when the platform has none for it.
func (c *Client) GetWhiteTest(ctx context.Context, jobID string) (*models.WhiteTest, error) {
	var test models.WhiteTest
	err := c.get(ctx, fmt.Sprintf("/api/whitetests/job/%s", jobID), &test)
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	if test.ID == "" {
		return nil, nil
	}
	return &test, nil
}

// CreateMeeting posts a new meeting and returns it with the id the
// platform assigned.
func (c *Client) CreateMeeting(ctx context.Context, req scheduler.CreateMeetingRequest) (*models.Meeting, error) {
	body := models.Meeting{
		JobID:       req.JobID,
		CandidateID: req.CandidateID,
		HRID:        req.HRID,
		MeetingDate: req.StartTime,
		Status:      req.Status,
	}

	var created models.Meeting
	if err := c.post(ctx, "/api/meetings", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// APIError carries the platform's refusal back to the caller.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("job-board API error (status %d): %s", e.StatusCode, e.Message)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.send(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", req.URL.Path, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("unexpected response from %s: %w", req.URL.Path, err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		c.logger.Warn("job-board API refused request", map[string]interface{}{
			"path":    req.URL.Path,
			"status":  resp.StatusCode,
			"message": env.Message,
		})
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data from %s: %w", req.URL.Path, err)
		}
	}

	return nil
}
