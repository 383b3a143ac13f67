package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"meetmii/internal/client"
	"meetmii/internal/models"
	"meetmii/internal/repository"
	"meetmii/internal/util"
)

const (
	// FallbackInsight is stored when generation fails for a user.
	FallbackInsight = "Keep sharing your MeetMii card - every connection starts with a scan!"
	// FirstTimeInsight is returned when a user has no stored insight yet.
	FirstTimeInsight = "Start sharing your MeetMii card to get personalized weekly insights!"

	insightCacheTTL = time.Hour
	generateWorkers = 4
)

// TextGenerator produces a natural-language insight from weekly scan data.
// Implemented by client.GeminiClient.
type TextGenerator interface {
	GenerateInsight(ctx context.Context, username string, data models.WeeklyScanData) (string, error)
}

// InsightService runs the weekly insight pipeline and serves the latest
// insight per user.
type InsightService struct {
	scans     repository.ScanRepository
	insights  repository.InsightRepository
	generator TextGenerator
	cache     *client.RedisClient
	logger    *zap.Logger
}

func NewInsightService(
	scans repository.ScanRepository,
	insights repository.InsightRepository,
	generator TextGenerator,
	cache *client.RedisClient,
	logger *zap.Logger,
) *InsightService {
	return &InsightService{
		scans:     scans,
		insights:  insights,
		generator: generator,
		cache:     cache,
		logger:    logger,
	}
}

// GenerateAll produces and stores one insight for every username with scan
// data. One user's failure never aborts the run: generation errors store
// the fallback sentence and store errors skip that user. Returns how many
// insights were stored.
//
// week_start is the run's own day truncated to midnight UTC, not an aligned
// calendar week boundary. That matches the historical rows already written.
func (s *InsightService) GenerateAll(ctx context.Context) (int, error) {
	usernames, err := s.scans.DistinctUsernames(ctx)
	if err != nil {
		return 0, fmt.Errorf("list usernames: %w", err)
	}

	now := time.Now().UTC()
	weekStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var (
		mu        sync.Mutex
		processed int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(generateWorkers)

	for _, username := range usernames {
		username := username
		g.Go(func() error {
			if s.generateForUser(gctx, username, weekStart) {
				mu.Lock()
				processed++
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return processed, err
	}

	s.logger.Info("insight generation completed",
		util.Int("users_total", len(usernames)),
		util.Int("users_processed", processed),
	)

	return processed, nil
}

// generateForUser handles one user end to end and reports whether an
// insight row was stored.
func (s *InsightService) generateForUser(ctx context.Context, username string, weekStart time.Time) bool {
	data := s.weeklyScanData(ctx, username)

	text, err := s.generator.GenerateInsight(ctx, username, data)
	if err != nil {
		s.logger.Error("insight generation failed, using fallback",
			util.String("username", username),
			util.ErrorField(err),
		)
		text = FallbackInsight
	}

	insight := &models.WeeklyInsight{
		Username:    username,
		Insight:     text,
		WeekStart:   weekStart,
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.insights.Save(ctx, insight); err != nil {
		s.logger.Error("failed to store insight",
			util.String("username", username),
			util.ErrorField(err),
		)
		return false
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, insightCacheKey(username)); err != nil {
			s.logger.Warn("insight cache invalidation failed", util.ErrorField(err))
		}
	}

	return true
}

// weeklyScanData gathers the four prompt metrics. Each query is independent;
// a failed query logs and contributes its zero value so the user still gets
// an insight.
func (s *InsightService) weeklyScanData(ctx context.Context, username string) models.WeeklyScanData {
	now := time.Now().UTC()
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	var data models.WeeklyScanData
	var err error

	if data.TotalScansThisWeek, err = s.scans.CountInWindow(ctx, username, weekAgo, now); err != nil {
		s.logger.Warn("weekly count failed", util.String("username", username), util.ErrorField(err))
	}
	if data.TotalScansLastWeek, err = s.scans.CountInWindow(ctx, username, twoWeeksAgo, weekAgo); err != nil {
		s.logger.Warn("prior-week count failed", util.String("username", username), util.ErrorField(err))
	}
	if data.BusiestDay, err = s.scans.BusiestDayOfWeek(ctx, username, weekAgo); err != nil {
		s.logger.Warn("busiest day query failed", util.String("username", username), util.ErrorField(err))
	}
	if data.BusiestHour, err = s.scans.BusiestHour(ctx, username, weekAgo); err != nil {
		s.logger.Warn("busiest hour query failed", util.String("username", username), util.ErrorField(err))
	}

	return data
}

// LatestFor returns the most recent insight for a username, or the canned
// first-time message when none has been generated yet.
func (s *InsightService) LatestFor(ctx context.Context, username string) (string, error) {
	key := insightCacheKey(username)
	if s.cache != nil {
		if cached, err := s.cache.GetString(ctx, key); err == nil {
			return cached, nil
		} else if !client.IsCacheMiss(err) {
			s.logger.Warn("insight cache read failed", util.ErrorField(err))
		}
	}

	insight, err := s.insights.LatestForUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("latest insight: %w", err)
	}
	if insight == "" {
		insight = FirstTimeInsight
	}

	if s.cache != nil {
		if err := s.cache.SetString(ctx, key, insight, insightCacheTTL); err != nil {
			s.logger.Warn("insight cache write failed", util.ErrorField(err))
		}
	}

	return insight, nil
}

// HealthCheck verifies the insight store is reachable.
func (s *InsightService) HealthCheck(ctx context.Context) error {
	return s.insights.HealthCheck(ctx)
}

func insightCacheKey(username string) string {
	return "latest_insight:" + username
}
