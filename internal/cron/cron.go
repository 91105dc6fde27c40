package cron

import (
	"context"
	"sync"

	"github.com/caarlos0/env/v6"
	cronv3 "github.com/robfig/cron/v3"

	cron_config "github.com/bjorkit/backupwatch/internal/cron/config"
	"github.com/bjorkit/backupwatch/internal/logger"
	"github.com/bjorkit/backupwatch/internal/tracing"
	"github.com/bjorkit/backupwatch/services/pipeline"
)

// CONSTANTS
const (
	// GroupPipeline is the group for report ingestion jobs
	GroupPipeline = "pipeline"
)

// LOCK MANAGEMENT
//
// Poll cycles must never overlap; the group lock serializes them.
var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupPipeline: new(sync.Mutex),
	},
}

type CronManager struct {
	log      logger.Logger
	cron     *cronv3.Cron
	jobIDs   map[string]cronv3.EntryID
	pipeline *pipeline.Pipeline
}

func NewCronManager(log logger.Logger, p *pipeline.Pipeline) *CronManager {
	return &CronManager{
		log:      log,
		jobIDs:   make(map[string]cronv3.EntryID),
		pipeline: p,
	}
}

// Stop gracefully stops the cron manager
func (cm *CronManager) Stop() {
	if cm.cron != nil {
		cm.log.Info("Stopping cron manager")
		ctx := cm.cron.Stop()
		// Wait for jobs to finish
		<-ctx.Done()
	}
}

// registerJobs adds all cron jobs to the scheduler
func (cm *CronManager) registerJobs(c *cronv3.Cron) {
	// Load cron config from environment variables
	var cronConfig cron_config.Config
	if err := env.Parse(&cronConfig); err != nil {
		cm.log.Fatalf("Failed to parse cron config from environment: %v", err)
	}

	if cronConfig.CronScheduleHeartbeat != "" {
		id, err := c.AddFunc(cronConfig.CronScheduleHeartbeat, func() {
			cm.log.Info("Cron heartbeat")
		})
		if err != nil {
			cm.log.Fatalf("Could not add heartbeat cron job: %v", err)
		}
		cm.jobIDs["heartbeat"] = id
		cm.log.Infof("Registered heartbeat job with schedule: %s", cronConfig.CronScheduleHeartbeat)
	}

	if cronConfig.CronSchedulePollCycle != "" {
		id, err := c.AddFunc(cronConfig.CronSchedulePollCycle, func() {
			jobLocks.locks[GroupPipeline].Lock()
			defer jobLocks.locks[GroupPipeline].Unlock()
			cm.runPollCycle()
		})
		if err != nil {
			cm.log.Fatalf("Could not add poll cycle cron job: %v", err)
		}
		cm.jobIDs["poll_cycle"] = id
		cm.log.Infof("Registered poll cycle job with schedule: %s", cronConfig.CronSchedulePollCycle)
	}
}

// StartCron initializes and starts the cron scheduler
func (cm *CronManager) StartCron() {
	cm.log.Info("Starting cron manager")
	// Create a new cron with seconds field enabled and panic recovery
	cronOptions := []cronv3.Option{
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger), // Skip if still running
			cronv3.Recover(cronv3.DefaultLogger),            // Default recovery as backup
		),
	}
	c := cronv3.New(cronOptions...)
	cm.registerJobs(c)
	c.Start()
	cm.cron = c
}

// runPollCycle runs one ingestion cycle. Errors abandon the cycle; the
// next scheduled run retries from scratch, so no backoff is needed.
func (cm *CronManager) runPollCycle() {
	ctx := context.Background()

	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.runPollCycle")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	if err := cm.pipeline.RunCycle(ctx); err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Poll cycle failed: %v", err)
	}
}
