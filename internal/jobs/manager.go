package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gcbaptista/markets-feeds/internal/clock"
	"github.com/gcbaptista/markets-feeds/internal/errors"
	"github.com/gcbaptista/markets-feeds/internal/logging"
	"github.com/gcbaptista/markets-feeds/model"
)

// JobFunc is the body of a background job. It should stop when ctx is cancelled.
type JobFunc func(ctx context.Context, job *model.Job) error

// Default retention of finished jobs.
const (
	cleanupInterval = time.Hour
	jobRetention    = 24 * time.Hour
)

// Manager handles background job execution and tracking
type Manager struct {
	mu      sync.RWMutex
	jobs    map[string]*model.Job
	done    map[string]chan struct{} // closed when the job reaches a terminal status
	workers chan struct{}            // Limits concurrent jobs
	metrics *JobMetrics

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup

	clock  clock.Clock
	logger *zap.Logger
}

// NewManager creates a new job manager with specified worker count
func NewManager(maxWorkers int, c clock.Clock, logger *zap.Logger) *Manager {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		jobs:    make(map[string]*model.Job),
		done:    make(map[string]chan struct{}),
		workers: make(chan struct{}, maxWorkers),
		metrics: NewJobMetrics(),
		ctx:     ctx,
		cancel:  cancel,
		clock:   clock.OrReal(c),
		logger:  logging.OrNop(logger),
	}
}

// Start begins the job manager and starts background cleanup
func (m *Manager) Start() {
	m.logger.Info("Job manager started", zap.Int("workers", cap(m.workers)))

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.cleanupRoutine()
	}()
}

// Stop cancels running jobs and waits for every worker to return. It is safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.cancel()
		m.wg.Wait()
		m.logger.Info("Job manager stopped")
	})
}

// CreateJob creates a new pending job and returns its ID
func (m *Manager) CreateJob(jobType model.JobType, target string, metadata map[string]string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		Target:    target,
		CreatedAt: m.clock.Now(),
		Metadata:  metadata,
	}

	m.jobs[job.ID] = job
	m.done[job.ID] = make(chan struct{})
	m.metrics.RecordJobCreated(jobType)
	m.logger.Debug("Created job",
		zap.String("job_id", job.ID),
		zap.String("type", string(job.Type)),
		zap.String("target", job.Target))
	return job.ID
}

// GetJob retrieves a copy of a job by ID
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// ListJobs returns copies of the jobs for a target, optionally filtered by status, oldest first.
// An empty target matches every job.
func (m *Manager) ListJobs(target string, status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Job, 0)
	for _, job := range m.jobs {
		if target != "" && job.Target != target {
			continue
		}
		if status != nil && job.Status != *status {
			continue
		}
		result = append(result, copyJob(job))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// ExecuteJob runs a job function in a goroutine with proper tracking. It returns once the job
// is scheduled; use Wait to block until it finishes.
func (m *Manager) ExecuteJob(jobID string, jobFunc JobFunc) error {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return errors.NewJobNotFoundError(jobID)
	}

	if job.Status != model.JobStatusPending {
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is not in pending status (current: %s)", jobID, job.Status)
	}

	if m.ctx.Err() != nil {
		m.mu.Unlock()
		m.updateJobStatus(jobID, model.JobStatusCancelled, "Job manager shutting down")
		return fmt.Errorf("job manager is shutting down")
	}

	oldStatus := job.Status
	job.Status = model.JobStatusRunning
	now := m.clock.Now()
	job.StartedAt = &now
	m.metrics.RecordJobStatusChange(oldStatus, job.Status)
	snapshot := copyJob(job)
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()

		// Acquire worker slot
		select {
		case m.workers <- struct{}{}:
		case <-m.ctx.Done():
			m.updateJobStatus(jobID, model.JobStatusCancelled, "Job manager shutting down")
			return
		}
		defer func() { <-m.workers }()

		startTime := time.Now()
		err := m.run(jobFunc, snapshot)
		executionTime := time.Since(startTime)

		// Metrics are recorded before the status change releases waiters
		switch {
		case err != nil && m.ctx.Err() != nil:
			m.updateJobStatus(jobID, model.JobStatusCancelled, err.Error())
			m.logger.Info("Job cancelled", zap.String("job_id", jobID), zap.Error(err))
		case err != nil:
			m.metrics.RecordJobFailed(snapshot.Type)
			m.updateJobStatus(jobID, model.JobStatusFailed, err.Error())
			m.logger.Error("Job failed",
				zap.String("job_id", jobID),
				zap.String("type", string(snapshot.Type)),
				zap.Duration("duration", executionTime),
				zap.Error(err))
		default:
			m.metrics.RecordJobCompleted(snapshot.Type, executionTime)
			m.updateJobStatus(jobID, model.JobStatusCompleted, "")
			m.logger.Info("Job completed",
				zap.String("job_id", jobID),
				zap.String("type", string(snapshot.Type)),
				zap.Duration("duration", executionTime))
		}
	}()

	return nil
}

// run invokes the job body, turning a panic into a job failure.
func (m *Manager) run(jobFunc JobFunc, job *model.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return jobFunc(m.ctx, job)
}

// Wait blocks until the job reaches a terminal status or ctx is done, and returns the final job.
func (m *Manager) Wait(ctx context.Context, jobID string) (*model.Job, error) {
	m.mu.RLock()
	done, exists := m.done[jobID]
	m.mu.RUnlock()
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}

	select {
	case <-done:
		return m.GetJob(jobID)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// UpdateJobProgress updates the progress of a running job
func (m *Manager) UpdateJobProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}

	if job.Progress == nil {
		job.Progress = &model.JobProgress{}
	}

	job.Progress.Current = current
	job.Progress.Total = total
	job.Progress.Message = message
}

// updateJobStatus updates the status of a job and releases its waiters once it is terminal.
func (m *Manager) updateJobStatus(jobID string, status model.JobStatus, errorMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists || job.Status.IsTerminal() {
		return
	}

	oldStatus := job.Status
	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}

	m.metrics.RecordJobStatusChange(oldStatus, status)

	if status.IsTerminal() {
		now := m.clock.Now()
		job.CompletedAt = &now
		if done, ok := m.done[jobID]; ok {
			close(done)
		}
	}
}

// cleanupRoutine runs periodic job cleanup
func (m *Manager) cleanupRoutine() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(jobRetention)
		case <-m.ctx.Done():
			return
		}
	}
}

// CleanupOldJobs removes finished jobs that completed more than maxAge ago
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.clock.Now().Add(-maxAge)
	cleaned := 0

	for jobID, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, jobID)
			delete(m.done, jobID)
			cleaned++
		}
	}

	if cleaned > 0 {
		m.logger.Info("Cleaned up old jobs", zap.Int("count", cleaned))
	}
	return cleaned
}

// GetMetrics returns current job performance metrics
func (m *Manager) GetMetrics() JobMetricsData {
	return m.metrics.GetMetrics()
}

// GetJobSuccessRate returns the overall job success rate
func (m *Manager) GetJobSuccessRate() float64 {
	return m.metrics.GetSuccessRate()
}

// GetCurrentWorkload returns the number of currently active jobs
func (m *Manager) GetCurrentWorkload() int64 {
	return m.metrics.GetCurrentWorkload()
}

func copyJob(job *model.Job) *model.Job {
	jobCopy := *job
	if job.Progress != nil {
		progressCopy := *job.Progress
		jobCopy.Progress = &progressCopy
	}
	if job.Metadata != nil {
		jobCopy.Metadata = make(map[string]string, len(job.Metadata))
		for k, v := range job.Metadata {
			jobCopy.Metadata[k] = v
		}
	}
	return &jobCopy
}
