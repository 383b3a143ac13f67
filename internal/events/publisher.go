package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"meetmii/internal/models"
)

// publishTimeout bounds how long a profile read will wait for the broker ack.
const publishTimeout = 5 * time.Second

// MessageWriter is the producer surface the publisher needs.
type MessageWriter interface {
	WriteMessage(ctx context.Context, key, value []byte) error
}

// ScanPublisher emits a scan event every time a public profile is viewed.
// Delivery is best-effort: failures are logged and swallowed so the profile
// response is never blocked or failed by the bus.
type ScanPublisher struct {
	writer MessageWriter
	logger *zap.Logger
}

func NewScanPublisher(writer MessageWriter, logger *zap.Logger) *ScanPublisher {
	return &ScanPublisher{
		writer: writer,
		logger: logger,
	}
}

// PublishScan publishes {username, scanned_at} to the scan topic. The call
// blocks briefly for the broker ack but never returns an error.
func (p *ScanPublisher) PublishScan(ctx context.Context, username string) {
	event := models.ScanEvent{
		Username:  username,
		ScannedAt: time.Now().UTC(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to encode scan event",
			zap.String("username", username),
			zap.Error(err),
		)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessage(ctx, []byte(username), value); err != nil {
		p.logger.Error("failed to publish scan event",
			zap.String("username", username),
			zap.Error(err),
		)
		return
	}

	p.logger.Info("published scan event", zap.String("username", username))
}
