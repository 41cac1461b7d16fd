package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hlsrec/hls-recommender-go/internal/config"
	"github.com/hlsrec/hls-recommender-go/internal/db"
	"github.com/hlsrec/hls-recommender-go/internal/handler"
	"github.com/hlsrec/hls-recommender-go/internal/middleware"
	"github.com/hlsrec/hls-recommender-go/internal/queue"
	"github.com/hlsrec/hls-recommender-go/internal/recommend"
	"github.com/hlsrec/hls-recommender-go/internal/repository"
	"github.com/hlsrec/hls-recommender-go/internal/service"
	"github.com/hlsrec/hls-recommender-go/internal/transcode"
	"github.com/hlsrec/hls-recommender-go/internal/validation"
	"github.com/hlsrec/hls-recommender-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const rateLimiterSweepInterval = 10 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Named("server")

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	for _, dir := range []string{cfg.Storage.UploadDir, cfg.Storage.HLSDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage directory %s: %w", dir, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.MigrateUp(cfg.Database.URL()); err != nil {
		return err
	}

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close(pool)

	repo := repository.New(pool)

	engagementService := service.NewEngagementService(repo, repo)
	if _, err := engagementService.EnsureDefaultUser(ctx, cfg.Users.DefaultUsername, cfg.Users.DefaultEmail); err != nil {
		return err
	}

	recommender := recommend.New(repo, recommend.Options{
		TopK:           cfg.Recommend.TopK,
		StopWords:      cfg.Recommend.StopWords,
		ExtraStopWords: cfg.Recommend.ExtraStopWords,
	}, recommend.WithLogger(logger.Named("recommend")))

	encoder := transcode.NewFFmpeg(
		transcode.WithBinary(cfg.Transcoder.Binary),
		transcode.WithPreset(cfg.Transcoder.Preset),
		transcode.WithSegmentSeconds(cfg.Transcoder.SegmentSeconds),
		transcode.WithTimeout(cfg.Transcoder.Timeout),
		transcode.WithLogger(logger.Named("transcode")),
	)

	var (
		publisher    *queue.Publisher
		jobPublisher service.JobPublisher
		queueHealth  handler.HealthReporter
	)
	if cfg.RabbitMQ.Enabled {
		publisher, err = queue.NewPublisher(&cfg.RabbitMQ)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Warn("Failed to close publisher", zap.Error(err))
			}
		}()
		jobPublisher = publisher
		queueHealth = publisher
	}

	uploadService := service.NewUploadService(
		repo,
		repo,
		encoder,
		jobPublisher,
		validation.New(cfg.Server.MaxUploadBytes),
		service.UploadConfig{
			UploadDir:     cfg.Storage.UploadDir,
			HLSDir:        cfg.Storage.HLSDir,
			PublicBaseURL: cfg.Server.PublicBaseURL,
			Async:         cfg.Transcoder.Async,
		},
	)
	videoService := service.NewVideoService(repo, repo, recommender)

	uploadLimit := middleware.NewRateLimiter(cfg.Server.UploadRateLimit, cfg.Server.UploadRateBurst)
	go uploadLimit.Run(ctx, rateLimiterSweepInterval)

	router := handler.NewRouter(handler.Router{
		Health:      handler.NewHealthHandler(repo, queueHealth),
		Videos:      handler.NewVideoHandler(uploadService, videoService, cfg.Storage.HLSDir, cfg.Server.MaxUploadBytes),
		Engagement:  handler.NewEngagementHandler(engagementService),
		UploadLimit: uploadLimit,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting",
			zap.Int("port", cfg.Server.Port),
			zap.Bool("asyncTranscode", cfg.Transcoder.Async),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
		_ = server.Close()
		return err
	}

	log.Info("Server stopped gracefully")
	return nil
}
