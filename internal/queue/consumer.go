package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/hlsrec/hls-recommender-go/internal/config"
	"github.com/hlsrec/hls-recommender-go/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// JobHandler processes one transcode job. Returning an error means the job
// could not be recorded either way and should be retried.
type JobHandler interface {
	HandleJob(ctx context.Context, msg *TranscodeJobMessage) error
}

// JobHandlerFunc adapts a function to JobHandler.
type JobHandlerFunc func(ctx context.Context, msg *TranscodeJobMessage) error

// HandleJob calls f.
func (f JobHandlerFunc) HandleJob(ctx context.Context, msg *TranscodeJobMessage) error {
	return f(ctx, msg)
}

// ErrDeliveriesClosed is returned by Run when the broker closes the channel.
var ErrDeliveriesClosed = errors.New("delivery channel closed")

// Consumer reads transcode jobs with manual acknowledgement.
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	config  *config.RabbitMQConfig
	handler JobHandler
	tag     string
}

// NewConsumer connects, declares the topology and applies the prefetch limit.
func NewConsumer(cfg *config.RabbitMQConfig, handler JobHandler) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch, cfg); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}

	return &Consumer{
		conn:    conn,
		channel: ch,
		config:  cfg,
		handler: handler,
		tag:     "hlsrec-transcoder",
	}, nil
}

// Run consumes until ctx is cancelled or the broker closes the channel.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.channel.ConsumeWithContext(
		ctx,
		c.config.Queue, // queue
		c.tag,          // consumer
		false,          // auto-ack
		false,          // exclusive
		false,          // no-local
		false,          // no-wait
		nil,            // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	logger.Log.Info("Consuming transcode jobs",
		zap.String("queue", c.config.Queue),
		zap.Int("prefetch", c.config.Prefetch),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrDeliveriesClosed
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	msg, err := UnmarshalTranscodeJobMessage(d.Body)
	if err != nil {
		logger.Log.Error("Dropping malformed job message",
			zap.Error(err),
			zap.String("messageId", d.MessageId),
		)
		_ = d.Nack(false, false)
		return
	}

	if err := c.handler.HandleJob(ctx, msg); err != nil {
		requeue := shouldRequeue(d.Redelivered, ctx.Err())
		logger.Log.Error("Transcode job failed",
			zap.Error(err),
			zap.String("jobId", msg.JobID.String()),
			zap.Bool("requeue", requeue),
		)
		_ = d.Nack(false, requeue)
		return
	}

	if err := d.Ack(false); err != nil {
		logger.Log.Error("Failed to ack job", zap.Error(err), zap.String("jobId", msg.JobID.String()))
	}
}

// shouldRequeue decides the fate of a job whose handler returned an error.
// Work interrupted by shutdown always goes back to the queue; other failures
// get one redelivery and are then dropped.
func shouldRequeue(redelivered bool, ctxErr error) bool {
	if ctxErr != nil {
		return true
	}
	return !redelivered
}

// Close cancels the consumer and closes the connection.
func (c *Consumer) Close() error {
	var errs []error
	if c.channel != nil {
		_ = c.channel.Cancel(c.tag, false)
		if err := c.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing consumer: %w", errors.Join(errs...))
	}
	return nil
}

// IsHealthy reports whether the connection is open.
func (c *Consumer) IsHealthy() bool {
	return c.conn != nil && !c.conn.IsClosed()
}
