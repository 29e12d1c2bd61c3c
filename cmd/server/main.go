package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"yt-summary-publisher/internal/app"
	"yt-summary-publisher/internal/cache"
	"yt-summary-publisher/internal/config"
	"yt-summary-publisher/internal/db"
	"yt-summary-publisher/internal/handlers"
	"yt-summary-publisher/internal/logger"
	"yt-summary-publisher/internal/middleware"
	"yt-summary-publisher/internal/worker"
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

	if err := db.InitDB(cfg.DatabaseURL); err != nil {
		logger.GetLogger().WithError(err).Fatal("Could not connect to database")
	}
	defer db.DB.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.EnsureSchema(ctx); err != nil {
		logger.GetLogger().WithError(err).Fatal("Could not create schema")
	}

	dispatcher, err := app.NewDispatcher(cfg)
	if err != nil {
		logger.GetLogger().WithError(err).Fatal("Could not build dispatcher")
	}
	poller := worker.NewPoller(dispatcher, cfg.PollInterval, cfg.DueBatchSize)

	var (
		rdb         cache.Redis
		asynqClient tasks.TaskEnqueuer
	)
	if cfg.RedisEnabled() {
		client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer client.Close()
		rdb = client

		ac := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer ac.Close()
		asynqClient = ac
	} else {
		logger.GetLogger().Info("REDIS_ADDR not set; video cache and async run-now disabled")
	}
	videos := cache.NewVideos(db.Videos{}, rdb, cfg.VideoCacheTTL)

	h := handlers.New(dispatcher, videos, poller, asynqClient, cfg.BaseURL)
	router := h.Router()
	router.Use(middleware.RequestID)
	router.Use(middleware.NewRateLimiterMiddleware(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst).Middleware)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.GetLogger().WithField("port", cfg.Port).WithField("commit", CommitSHA).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return poller.Run(gctx)
	})

	if cfg.TelegramBotCommands && cfg.TelegramBotToken != "" {
		startBot(gctx, g, h, cfg.TelegramBotToken, cfg.TelegramChatID)
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithError(err).Fatal("Server exited with error")
	}
	logger.GetLogger().Info("Server stopped")
}

// startBot runs the command bot alongside the server. A missing or malformed chat id leaves the
// bot off instead of answering every chat.
func startBot(ctx context.Context, g *errgroup.Group, h *handlers.Handlers, token, rawChatID string) {
	chatID, err := handlers.BotChatID(rawChatID)
	if err != nil {
		logger.GetLogger().WithError(err).Warn("Telegram bot commands disabled")
		return
	}
	g.Go(func() error {
		if err := h.StartTelegramBot(ctx, token, chatID); err != nil {
			// The control surface keeps running without the bot.
			logger.GetLogger().WithError(err).Error("Telegram bot stopped")
		}
		return nil
	})
}
