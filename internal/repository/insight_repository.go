package repository

import (
	"context"
	"fmt"

	"meetmii/internal/client"
	"meetmii/internal/models"
)

// InsightRepository stores generated weekly insights. Rows are append-only;
// the latest insight is the one with the greatest generated_at.
type InsightRepository interface {
	EnsureSchema(ctx context.Context) error
	Save(ctx context.Context, insight *models.WeeklyInsight) error
	// LatestForUsername returns the most recent insight text, or "" when
	// none has been generated yet.
	LatestForUsername(ctx context.Context, username string) (string, error)
	HealthCheck(ctx context.Context) error
}

type insightRepository struct {
	ch *client.ClickHouseClient
}

// NewInsightRepository builds a ClickHouse-backed insight store.
func NewInsightRepository(ch *client.ClickHouseClient) InsightRepository {
	return &insightRepository{ch: ch}
}

// EnsureSchema creates the weekly_insights table if absent.
func (r *insightRepository) EnsureSchema(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS weekly_insights (
			username     String,
			insight      String,
			week_start   DateTime64(3, 'UTC'),
			generated_at DateTime64(3, 'UTC')
		)
		ENGINE = MergeTree
		ORDER BY (username, generated_at)
	`
	if err := r.ch.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create weekly_insights: %w", err)
	}
	return nil
}

func (r *insightRepository) Save(ctx context.Context, insight *models.WeeklyInsight) error {
	query := `INSERT INTO weekly_insights (username, insight, week_start, generated_at) VALUES (?, ?, ?, ?)`
	if err := r.ch.Exec(ctx, query, insight.Username, insight.Insight, insight.WeekStart, insight.GeneratedAt); err != nil {
		return fmt.Errorf("insert insight: %w", err)
	}
	return nil
}

func (r *insightRepository) LatestForUsername(ctx context.Context, username string) (string, error) {
	query := `
		SELECT insight
		FROM weekly_insights
		WHERE username = ?
		ORDER BY generated_at DESC
		LIMIT 1
	`
	rows, err := r.ch.QueryRows(ctx, query, username)
	if err != nil {
		return "", fmt.Errorf("query latest insight: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return "", rows.Err()
	}
	var insight string
	if err := rows.Scan(&insight); err != nil {
		return "", fmt.Errorf("scan insight: %w", err)
	}
	return insight, nil
}

func (r *insightRepository) HealthCheck(ctx context.Context) error {
	return r.ch.HealthCheck(ctx)
}
