package main

import (
	"time"

	"github.com/hibiken/asynq"

	"yt-summary-publisher/internal/app"
	"yt-summary-publisher/internal/config"
	"yt-summary-publisher/internal/db"
	"yt-summary-publisher/internal/logger"
	"yt-summary-publisher/internal/worker"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.GetLogger().WithError(err).Fatal("Invalid configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := db.InitDB(cfg.DatabaseURL); err != nil {
		logger.GetLogger().WithError(err).Fatal("Could not connect to database")
	}
	defer db.DB.Close()

	redisAddr := cfg.RedisAddr
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	dispatcher, err := app.NewDispatcher(cfg)
	if err != nil {
		logger.GetLogger().WithError(err).Fatal("Could not build dispatcher")
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		asynq.Config{
			// Jobs run one at a time, like the in-process loop.
			Concurrency: 1,
			Queues: map[string]int{
				"high":    2,
				"default": 1,
			},
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				delay := 30 * time.Second
				maxDelay := 30 * time.Minute

				for i := 0; i < n; i++ {
					delay *= 2
					if delay > maxDelay {
						delay = maxDelay
						break
					}
				}

				logger.GetLogger().WithField("task", task.Type()).WithField("attempt", n+1).WithError(err).
					Warnf("Task failed, retrying in %v", delay)
				return delay
			},
		},
	)

	mux := asynq.NewServeMux()
	worker.NewTaskHandler(dispatcher, cfg.StuckPostingTimeout).Register(mux)

	logger.GetLogger().WithField("commit", CommitSHA).Info("Worker starting")
	if err := srv.Run(mux); err != nil {
		logger.GetLogger().WithError(err).Fatal("Could not run worker")
	}
}
