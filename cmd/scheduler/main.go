package main

import (
	"time"

	"github.com/hibiken/asynq"

	"yt-summary-publisher/internal/config"
	"yt-summary-publisher/internal/logger"
	"yt-summary-publisher/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.GetLogger().WithError(err).Fatal("Invalid configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	redisAddr := cfg.RedisAddr
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		&asynq.SchedulerOpts{},
	)

	task, err := tasks.NewReconcilePostsTask()
	if err != nil {
		logger.GetLogger().WithError(err).Fatal("Could not create task")
	}

	// Sweep posts stuck in posting every 5 minutes
	_, err = scheduler.Register("@every 5m", task, asynq.Unique(4*time.Minute))
	if err != nil {
		logger.GetLogger().WithError(err).Fatal("Could not register task")
	}

	logger.GetLogger().WithField("commit", CommitSHA).Info("Scheduler starting")
	if err := scheduler.Run(); err != nil {
		logger.GetLogger().WithError(err).Fatal("Could not run scheduler")
	}
}
