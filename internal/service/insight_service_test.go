package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"meetmii/internal/models"
)

type fakeInsightRepository struct {
	mu      sync.Mutex
	saved   map[string][]models.WeeklyInsight
	saveErr error
}

func newFakeInsightRepository() *fakeInsightRepository {
	return &fakeInsightRepository{saved: make(map[string][]models.WeeklyInsight)}
}

func (f *fakeInsightRepository) EnsureSchema(ctx context.Context) error { return nil }

func (f *fakeInsightRepository) Save(ctx context.Context, insight *models.WeeklyInsight) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[insight.Username] = append(f.saved[insight.Username], *insight)
	return nil
}

func (f *fakeInsightRepository) LatestForUsername(ctx context.Context, username string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.saved[username]
	if len(rows) == 0 {
		return "", nil
	}
	return rows[len(rows)-1].Insight, nil
}

func (f *fakeInsightRepository) HealthCheck(ctx context.Context) error { return nil }

// generatorFunc adapts a function to the TextGenerator interface.
type generatorFunc func(ctx context.Context, username string, data models.WeeklyScanData) (string, error)

func (g generatorFunc) GenerateInsight(ctx context.Context, username string, data models.WeeklyScanData) (string, error) {
	return g(ctx, username, data)
}

func TestInsightServiceGenerateAll(t *testing.T) {
	now := time.Now().UTC()
	scans := &fakeScanRepository{events: []models.ScanEvent{
		{Username: "ana", ScannedAt: now.Add(-time.Hour)},
		{Username: "ana", ScannedAt: now.AddDate(0, 0, -2)},
		{Username: "bob", ScannedAt: now.AddDate(0, 0, -1)},
	}}
	insights := newFakeInsightRepository()
	generator := generatorFunc(func(ctx context.Context, username string, data models.WeeklyScanData) (string, error) {
		return fmt.Sprintf("insight for %s (%d scans)", username, data.TotalScansThisWeek), nil
	})

	svc := NewInsightService(scans, insights, generator, nil, zap.NewNop())
	processed, err := svc.GenerateAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, processed)
	require.Len(t, insights.saved["ana"], 1)
	require.Len(t, insights.saved["bob"], 1)
	assert.Equal(t, "insight for ana (2 scans)", insights.saved["ana"][0].Insight)

	// week_start is the run day at midnight UTC.
	ws := insights.saved["ana"][0].WeekStart
	assert.Equal(t, time.UTC, ws.Location())
	assert.Equal(t, 0, ws.Hour())
	assert.Equal(t, 0, ws.Minute())
	assert.Equal(t, now.Truncate(24*time.Hour), ws)
}

func TestInsightServiceGenerateAllFallbackOnGeneratorFailure(t *testing.T) {
	now := time.Now().UTC()
	scans := &fakeScanRepository{events: []models.ScanEvent{
		{Username: "ana", ScannedAt: now.Add(-time.Hour)},
		{Username: "bob", ScannedAt: now.Add(-time.Hour)},
	}}
	insights := newFakeInsightRepository()
	generator := generatorFunc(func(ctx context.Context, username string, data models.WeeklyScanData) (string, error) {
		if username == "ana" {
			return "", errors.New("gemini unavailable")
		}
		return "a real insight", nil
	})

	svc := NewInsightService(scans, insights, generator, nil, zap.NewNop())
	processed, err := svc.GenerateAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, processed, "a generation failure still stores a fallback row")
	require.Len(t, insights.saved["ana"], 1)
	assert.Equal(t, FallbackInsight, insights.saved["ana"][0].Insight)
	assert.Equal(t, "a real insight", insights.saved["bob"][0].Insight)
}

func TestInsightServiceGenerateAllSkipsOnStoreFailure(t *testing.T) {
	now := time.Now().UTC()
	scans := &fakeScanRepository{events: []models.ScanEvent{
		{Username: "ana", ScannedAt: now.Add(-time.Hour)},
	}}
	insights := newFakeInsightRepository()
	insights.saveErr = errors.New("clickhouse down")
	generator := generatorFunc(func(ctx context.Context, username string, data models.WeeklyScanData) (string, error) {
		return "a real insight", nil
	})

	svc := NewInsightService(scans, insights, generator, nil, zap.NewNop())
	processed, err := svc.GenerateAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, processed)
}

func TestInsightServiceGenerateAllNoUsers(t *testing.T) {
	svc := NewInsightService(&fakeScanRepository{}, newFakeInsightRepository(), generatorFunc(func(ctx context.Context, username string, data models.WeeklyScanData) (string, error) {
		t.Fatal("generator must not be called without scan data")
		return "", nil
	}), nil, zap.NewNop())

	processed, err := svc.GenerateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
}

func TestInsightServiceLatestFor(t *testing.T) {
	insights := newFakeInsightRepository()
	svc := NewInsightService(&fakeScanRepository{}, insights, nil, nil, zap.NewNop())
	ctx := context.Background()

	// No stored insight yet.
	text, err := svc.LatestFor(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, FirstTimeInsight, text)

	require.NoError(t, insights.Save(ctx, &models.WeeklyInsight{
		Username:    "ana",
		Insight:     "older insight",
		GeneratedAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, insights.Save(ctx, &models.WeeklyInsight{
		Username:    "ana",
		Insight:     "newest insight",
		GeneratedAt: time.Now(),
	}))

	text, err = svc.LatestFor(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "newest insight", text)
}
