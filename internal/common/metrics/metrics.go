// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	MeetingsScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_meetings_scheduled_total",
			Help: "Total number of meetings created by scheduling runs",
		},
		[]string{"task_type"},
	)

	MeetingsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_meetings_failed_total",
			Help: "Total number of candidates a run could not schedule",
		},
		[]string{"task_type"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "scheduler_run_duration_seconds",
			Help: "Duration of a full scheduling run in seconds",
		},
		[]string{"task_type"},
	)

	RunsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scheduler_runs_active",
			Help: "Number of scheduling runs currently holding a job lock",
		},
		[]string{"task_type"},
	)
)
