package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hlsrec/hls-recommender-go/internal/config"
	"github.com/hlsrec/hls-recommender-go/internal/db"
	"github.com/hlsrec/hls-recommender-go/internal/queue"
	"github.com/hlsrec/hls-recommender-go/internal/repository"
	"github.com/hlsrec/hls-recommender-go/internal/service"
	"github.com/hlsrec/hls-recommender-go/internal/transcode"
	"github.com/hlsrec/hls-recommender-go/internal/validation"
	"github.com/hlsrec/hls-recommender-go/pkg/logger"

	"go.uber.org/zap"
)

const reconnectDelay = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "transcoder: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.RabbitMQ.Enabled {
		return errors.New("rabbitmq.enabled must be true to run the transcoder worker")
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Named("transcoder")

	if err := os.MkdirAll(cfg.Storage.HLSDir, 0o755); err != nil {
		return fmt.Errorf("create hls directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close(pool)

	repo := repository.New(pool)

	encoder := transcode.NewFFmpeg(
		transcode.WithBinary(cfg.Transcoder.Binary),
		transcode.WithPreset(cfg.Transcoder.Preset),
		transcode.WithSegmentSeconds(cfg.Transcoder.SegmentSeconds),
		transcode.WithTimeout(cfg.Transcoder.Timeout),
		transcode.WithLogger(logger.Named("transcode")),
	)

	uploads := service.NewUploadService(
		repo,
		repo,
		encoder,
		nil,
		validation.New(cfg.Server.MaxUploadBytes),
		service.UploadConfig{
			UploadDir:     cfg.Storage.UploadDir,
			HLSDir:        cfg.Storage.HLSDir,
			PublicBaseURL: cfg.Server.PublicBaseURL,
			Async:         true,
		},
	)

	log.Info("Transcoder worker starting",
		zap.String("queue", cfg.RabbitMQ.Queue),
		zap.Int("prefetch", cfg.RabbitMQ.Prefetch),
	)

	err = supervise(ctx, func() (jobConsumer, error) {
		return queue.NewConsumer(&cfg.RabbitMQ, uploads)
	}, reconnectDelay, log)

	log.Info("Transcoder worker stopped")
	return err
}

type jobConsumer interface {
	Run(ctx context.Context) error
	Close() error
}

// supervise runs consumers until ctx is cancelled, reconnecting after delay
// whenever the broker drops the connection.
func supervise(ctx context.Context, connect func() (jobConsumer, error), delay time.Duration, log *zap.Logger) error {
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for {
		consumer, err := connect()
		if err != nil {
			log.Error("Failed to connect consumer", zap.Error(err))
		} else {
			err = consumer.Run(ctx)
			if closeErr := consumer.Close(); closeErr != nil {
				log.Warn("Failed to close consumer", zap.Error(closeErr))
			}
			if err == nil {
				return nil
			}
			log.Error("Consumer stopped", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			log.Info("Reconnecting consumer")
		}
	}
}
