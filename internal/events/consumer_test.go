package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"meetmii/internal/models"
)

type fakeAppender struct {
	events []models.ScanEvent
	err    error
}

func (f *fakeAppender) Append(ctx context.Context, event *models.ScanEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, *event)
	return nil
}

func newTestConsumer(appender *fakeAppender) *ScanConsumer {
	return NewScanConsumer(nil, appender, zap.NewNop())
}

func TestScanConsumerProcess(t *testing.T) {
	appender := &fakeAppender{}
	c := newTestConsumer(appender)

	err := c.process(context.Background(), []byte(`{"username":"ana","scanned_at":"2026-08-24T18:30:00Z"}`))
	require.NoError(t, err)

	require.Len(t, appender.events, 1)
	assert.Equal(t, "ana", appender.events[0].Username)
	assert.Equal(t, time.Date(2026, 8, 24, 18, 30, 0, 0, time.UTC), appender.events[0].ScannedAt.UTC())
}

func TestScanConsumerProcessBadTimestampFallsBackToNow(t *testing.T) {
	appender := &fakeAppender{}
	c := newTestConsumer(appender)

	before := time.Now().UTC()
	err := c.process(context.Background(), []byte(`{"username":"ana","scanned_at":"yesterday-ish"}`))
	require.NoError(t, err)

	require.Len(t, appender.events, 1)
	got := appender.events[0].ScannedAt
	assert.False(t, got.Before(before))
	assert.False(t, got.After(time.Now().UTC()))
}

func TestScanConsumerProcessRejectsMalformedMessages(t *testing.T) {
	appender := &fakeAppender{}
	c := newTestConsumer(appender)

	tests := []struct {
		name  string
		value string
	}{
		{"invalid json", `{"username":`},
		{"missing username", `{"scanned_at":"2026-08-24T18:30:00Z"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.process(context.Background(), []byte(tt.value))
			assert.Error(t, err)
		})
	}
	assert.Empty(t, appender.events)
}

func TestScanConsumerProcessPropagatesAppendFailure(t *testing.T) {
	appender := &fakeAppender{err: assert.AnError}
	c := newTestConsumer(appender)

	err := c.process(context.Background(), []byte(`{"username":"ana","scanned_at":"2026-08-24T18:30:00Z"}`))
	assert.ErrorIs(t, err, assert.AnError)
}
