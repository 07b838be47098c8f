package jobs

import (
	"sync"
	"time"

	"github.com/gcbaptista/markets-feeds/model"
)

// recentWindow bounds the per-type execution history used for averages.
const recentWindow = 100

// JobMetricsData is a point-in-time copy of the job counters.
type JobMetricsData struct {
	JobsCreated          int64                     `json:"jobsCreated"`
	JobsCompleted        int64                     `json:"jobsCompleted"`
	JobsFailed           int64                     `json:"jobsFailed"`
	SuccessRate          float64                   `json:"successRate"`
	AverageExecutionTime time.Duration             `json:"averageExecutionTimeNs"`
	JobsByType           map[model.JobType]int64   `json:"jobsByType"`
	JobsByStatus         map[model.JobStatus]int64 `json:"jobsByStatus"`
	LastUpdated          time.Time                 `json:"lastUpdated"`
}

// JobMetrics tracks job counts and execution times.
type JobMetrics struct {
	mu                 sync.RWMutex
	created            int64
	completed          int64
	failed             int64
	totalExecutionTime time.Duration
	byType             map[model.JobType]int64
	byStatus           map[model.JobStatus]int64
	recent             map[model.JobType][]time.Duration
	lastUpdated        time.Time
}

// NewJobMetrics creates a new metrics collector
func NewJobMetrics() *JobMetrics {
	return &JobMetrics{
		byType:      make(map[model.JobType]int64),
		byStatus:    make(map[model.JobStatus]int64),
		recent:      make(map[model.JobType][]time.Duration),
		lastUpdated: time.Now(),
	}
}

// RecordJobCreated counts a new pending job.
func (m *JobMetrics) RecordJobCreated(jobType model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.created++
	m.byType[jobType]++
	m.byStatus[model.JobStatusPending]++
	m.lastUpdated = time.Now()
}

// RecordJobStatusChange moves one job between status buckets.
func (m *JobMetrics) RecordJobStatusChange(oldStatus, newStatus model.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if oldStatus != "" && m.byStatus[oldStatus] > 0 {
		m.byStatus[oldStatus]--
	}
	m.byStatus[newStatus]++
	m.lastUpdated = time.Now()
}

// RecordJobCompleted records a successful run and its duration.
func (m *JobMetrics) RecordJobCompleted(jobType model.JobType, executionTime time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.completed++
	m.totalExecutionTime += executionTime

	times := append(m.recent[jobType], executionTime)
	if len(times) > recentWindow {
		times = times[len(times)-recentWindow:]
	}
	m.recent[jobType] = times
	m.lastUpdated = time.Now()
}

// RecordJobFailed records job failure
func (m *JobMetrics) RecordJobFailed(jobType model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failed++
	m.lastUpdated = time.Now()
}

// GetMetrics returns a copy of the current counters.
func (m *JobMetrics) GetMetrics() JobMetricsData {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byType := make(map[model.JobType]int64, len(m.byType))
	for k, v := range m.byType {
		byType[k] = v
	}
	byStatus := make(map[model.JobStatus]int64, len(m.byStatus))
	for k, v := range m.byStatus {
		byStatus[k] = v
	}

	var average time.Duration
	if m.completed > 0 {
		average = m.totalExecutionTime / time.Duration(m.completed)
	}

	return JobMetricsData{
		JobsCreated:          m.created,
		JobsCompleted:        m.completed,
		JobsFailed:           m.failed,
		SuccessRate:          m.successRateLocked(),
		AverageExecutionTime: average,
		JobsByType:           byType,
		JobsByStatus:         byStatus,
		LastUpdated:          m.lastUpdated,
	}
}

// GetAverageExecutionTimeByType averages the recent successful runs of one job type.
func (m *JobMetrics) GetAverageExecutionTimeByType(jobType model.JobType) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	times := m.recent[jobType]
	if len(times) == 0 {
		return 0
	}

	var total time.Duration
	for _, t := range times {
		total += t
	}
	return total / time.Duration(len(times))
}

// GetSuccessRate returns the success rate (0.0 to 1.0)
func (m *JobMetrics) GetSuccessRate() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.successRateLocked()
}

func (m *JobMetrics) successRateLocked() float64 {
	finished := m.completed + m.failed
	if finished == 0 {
		return 1.0 // No jobs yet, assume 100% success
	}
	return float64(m.completed) / float64(finished)
}

// GetCurrentWorkload returns the number of pending and running jobs
func (m *JobMetrics) GetCurrentWorkload() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.byStatus[model.JobStatusPending] + m.byStatus[model.JobStatusRunning]
}
