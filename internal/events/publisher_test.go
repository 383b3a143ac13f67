package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	keys   []string
	values [][]byte
	err    error
}

func (f *fakeWriter) WriteMessage(ctx context.Context, key, value []byte) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, string(key))
	f.values = append(f.values, value)
	return nil
}

func TestScanPublisherPublishScan(t *testing.T) {
	writer := &fakeWriter{}
	p := NewScanPublisher(writer, zap.NewNop())

	p.PublishScan(context.Background(), "ana")

	require.Len(t, writer.values, 1)
	assert.Equal(t, "ana", writer.keys[0])

	var msg scanMessage
	require.NoError(t, json.Unmarshal(writer.values[0], &msg))
	assert.Equal(t, "ana", msg.Username)

	scannedAt, err := time.Parse(time.RFC3339Nano, msg.ScannedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), scannedAt, time.Minute)
}

func TestScanPublisherSwallowsWriteFailure(t *testing.T) {
	writer := &fakeWriter{err: assert.AnError}
	p := NewScanPublisher(writer, zap.NewNop())

	// Must not panic or surface the error; publishing is best effort.
	p.PublishScan(context.Background(), "ana")
	assert.Empty(t, writer.values)
}
