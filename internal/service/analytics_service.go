package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"meetmii/internal/client"
	"meetmii/internal/models"
	"meetmii/internal/repository"
	"meetmii/internal/util"
)

const statsCacheTTL = 60 * time.Second

// AnalyticsService appends scan events and answers windowed count queries.
type AnalyticsService struct {
	scans  repository.ScanRepository
	cache  *client.RedisClient
	logger *zap.Logger
}

// ScanRequest is the body for POST /analytics/scan.
type ScanRequest struct {
	Username  string  `json:"username"`
	IPAddress *string `json:"ip_address,omitempty"`
}

func NewAnalyticsService(scans repository.ScanRepository, cache *client.RedisClient, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		scans:  scans,
		cache:  cache,
		logger: logger,
	}
}

// LogScan appends one scan event stamped with the current time. Transport
// failures surface to the caller; this write path is required to succeed.
func (s *AnalyticsService) LogScan(ctx context.Context, req *ScanRequest) error {
	if req.Username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	event := &models.ScanEvent{
		Username:  req.Username,
		ScannedAt: time.Now().UTC(),
		IPAddress: req.IPAddress,
	}
	if err := s.scans.Append(ctx, event); err != nil {
		return fmt.Errorf("log scan: %w", err)
	}

	s.logger.Info("scan logged", util.String("username", req.Username))
	return nil
}

// Stats returns total / this-week / this-month counts for a username.
// Windows are half-open [now-7d, now) and [now-30d, now). Results are
// served from a short-TTL cache when available; cache failures are logged
// and bypassed.
func (s *AnalyticsService) Stats(ctx context.Context, username string) (*models.ScanStats, error) {
	key := "scan_stats:" + username
	if s.cache != nil {
		if cached, err := s.cache.GetString(ctx, key); err == nil {
			var stats models.ScanStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		} else if !client.IsCacheMiss(err) {
			s.logger.Warn("stats cache read failed", util.ErrorField(err))
		}
	}

	stats, err := s.computeStats(ctx, username)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.cache.SetString(ctx, key, string(payload), statsCacheTTL); err != nil {
				s.logger.Warn("stats cache write failed", util.ErrorField(err))
			}
		}
	}

	return stats, nil
}

func (s *AnalyticsService) computeStats(ctx context.Context, username string) (*models.ScanStats, error) {
	now := time.Now().UTC()

	total, err := s.scans.CountTotal(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("total scans: %w", err)
	}
	week, err := s.scans.CountInWindow(ctx, username, now.AddDate(0, 0, -7), now)
	if err != nil {
		return nil, fmt.Errorf("weekly scans: %w", err)
	}
	month, err := s.scans.CountInWindow(ctx, username, now.AddDate(0, 0, -30), now)
	if err != nil {
		return nil, fmt.Errorf("monthly scans: %w", err)
	}

	return &models.ScanStats{
		Username:       username,
		TotalScans:     total,
		ScansThisWeek:  week,
		ScansThisMonth: month,
	}, nil
}

// HealthCheck verifies the analytics log is reachable.
func (s *AnalyticsService) HealthCheck(ctx context.Context) error {
	return s.scans.HealthCheck(ctx)
}
