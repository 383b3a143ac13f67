package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"meetmii/internal/client"
	"meetmii/internal/models"
)

// ScanAppender is the analytics-log surface the consumer writes to.
// Satisfied by repository.ScanRepository.
type ScanAppender interface {
	Append(ctx context.Context, event *models.ScanEvent) error
}

// ScanConsumer pulls scan events from the bus and appends them to the
// analytics log. It runs as one long-lived goroutine with its own
// cancellation signal and is joined during graceful shutdown.
//
// Messages are committed even when processing fails: a malformed or
// unprocessable event is dropped rather than retried, trading durability
// for consumer-group liveness.
type ScanConsumer struct {
	consumer *client.KafkaConsumer
	scans    ScanAppender
	logger   *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewScanConsumer(consumer *client.KafkaConsumer, scans ScanAppender, logger *zap.Logger) *ScanConsumer {
	return &ScanConsumer{
		consumer: consumer,
		scans:    scans,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start launches the pull loop.
func (c *ScanConsumer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.run(ctx)
	c.logger.Info("scan consumer started")
}

// Stop cancels the pull loop and waits for it to drain, bounded by ctx.
func (c *ScanConsumer) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	select {
	case <-c.done:
	case <-ctx.Done():
		return fmt.Errorf("scan consumer did not stop in time: %w", ctx.Err())
	}
	return c.consumer.Close()
}

func (c *ScanConsumer) run(ctx context.Context) {
	defer close(c.done)

	for {
		msg, err := c.consumer.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				c.logger.Info("scan consumer stopping")
				return
			}
			c.logger.Error("failed to fetch scan message", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		if err := c.process(ctx, msg.Value); err != nil {
			c.logger.Error("failed to process scan message",
				zap.Error(err),
				zap.Int("value_size", len(msg.Value)),
			)
		}

		// Commit even on processing failure so one bad message cannot
		// wedge the consumer group.
		if err := c.commit(ctx, msg); err != nil {
			c.logger.Error("failed to commit scan message", zap.Error(err))
		}
	}
}

func (c *ScanConsumer) commit(ctx context.Context, msg kafka.Message) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return c.consumer.CommitMessages(ctx, msg)
}

// scanMessage is the wire shape published by the profile service.
type scanMessage struct {
	Username  string  `json:"username"`
	ScannedAt string  `json:"scanned_at"`
	IPAddress *string `json:"ip_address,omitempty"`
}

func (c *ScanConsumer) process(ctx context.Context, value []byte) error {
	var msg scanMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		return fmt.Errorf("decode scan message: %w", err)
	}
	if msg.Username == "" {
		return fmt.Errorf("scan message missing username")
	}

	scannedAt, err := time.Parse(time.RFC3339Nano, msg.ScannedAt)
	if err != nil {
		scannedAt = time.Now().UTC()
	}

	event := &models.ScanEvent{
		Username:  msg.Username,
		ScannedAt: scannedAt,
		IPAddress: msg.IPAddress,
	}
	if err := c.scans.Append(ctx, event); err != nil {
		return fmt.Errorf("append scan event: %w", err)
	}

	c.logger.Info("processed scan event", zap.String("username", msg.Username))
	return nil
}
