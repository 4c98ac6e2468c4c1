// Package jobs provides scheduled background tasks for the fulfillment service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. AutoDispatchJob - dispatches ready orders that have no delivery yet
// 2. ReconciliationJob - records order/delivery status pairs the consistency rules forbid
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(uowFactory, createDeliveryHandler, recorder, jobs.Config{
//		AutoDispatchSchedule:   "*/5 * * * * *",
//		ReconciliationSchedule: "0 * * * * *",
//	}, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules are six-field cron expressions (seconds first). An empty schedule
// disables the job.
//
// # Error Handling
//
//   - Auto dispatch skips orders that have no driver nearby or were changed
//     concurrently; other failures are logged per order
//   - Reconciliation only detects; each inconsistent pair is recorded once
//   - Failed job starts will stop any already running jobs
package jobs
