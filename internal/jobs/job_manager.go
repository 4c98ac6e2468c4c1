package jobs

import (
	"fmt"
	"log/slog"

	"fulfillment/internal/core/ports"
)

// Config holds the job schedules. An empty schedule disables its job.
type Config struct {
	AutoDispatchSchedule   string
	AutoDispatchBatch      int
	ReconciliationSchedule string
}

// job is a scheduled background task.
type job interface {
	Start() error
	Stop()
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	jobs    []job
	started []job
	logger  *slog.Logger
}

// NewJobManager creates a new job manager with the enabled jobs.
func NewJobManager(
	uowFactory ports.UnitOfWorkFactory,
	dispatcher DeliveryDispatcher,
	recorder ports.InconsistencyRecorder,
	config Config,
	logger *slog.Logger,
) *JobManager {
	jm := &JobManager{logger: logger.With("component", "job_manager")}

	if config.AutoDispatchSchedule != "" {
		jm.jobs = append(jm.jobs, NewAutoDispatchJob(
			uowFactory, dispatcher, config.AutoDispatchSchedule, config.AutoDispatchBatch, logger))
	} else {
		jm.logger.Info("Auto dispatch disabled")
	}

	if config.ReconciliationSchedule != "" {
		jm.jobs = append(jm.jobs, NewReconciliationJob(
			uowFactory, recorder, config.ReconciliationSchedule, logger))
	} else {
		jm.logger.Info("Reconciliation disabled")
	}

	return jm
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	for _, j := range jm.jobs {
		if err := j.Start(); err != nil {
			// Stop already started jobs if this one fails
			jm.StopAll()
			return fmt.Errorf("failed to start %T: %w", j, err)
		}
		jm.started = append(jm.started, j)
	}

	return nil
}

// StopAll stops all started jobs gracefully.
func (jm *JobManager) StopAll() {
	for _, j := range jm.started {
		j.Stop()
	}
	jm.started = nil
}
