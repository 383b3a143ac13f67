package repository

import (
	"context"
	"fmt"
	"time"

	"meetmii/internal/client"
	"meetmii/internal/models"
)

// dayNames maps ClickHouse toDayOfWeek (1 = Monday) to display names.
var dayNames = [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ScanRepository is the append-only analytics log of profile scans.
type ScanRepository interface {
	EnsureSchema(ctx context.Context) error
	Append(ctx context.Context, event *models.ScanEvent) error
	DistinctUsernames(ctx context.Context) ([]string, error)
	CountTotal(ctx context.Context, username string) (uint64, error)
	// CountInWindow counts events with scanned_at in [start, end).
	CountInWindow(ctx context.Context, username string, start, end time.Time) (uint64, error)
	// BusiestDayOfWeek returns the weekday name with the most scans since
	// the given time, or "" when there are none. Ties resolve to the
	// earliest day of the week.
	BusiestDayOfWeek(ctx context.Context, username string, since time.Time) (string, error)
	// BusiestHour returns the hour of day (0-23) with the most scans since
	// the given time, or 0 when there are none. Ties resolve to the
	// earliest hour.
	BusiestHour(ctx context.Context, username string, since time.Time) (int, error)
	HealthCheck(ctx context.Context) error
}

type scanRepository struct {
	ch *client.ClickHouseClient
}

// NewScanRepository builds a ClickHouse-backed scan log.
func NewScanRepository(ch *client.ClickHouseClient) ScanRepository {
	return &scanRepository{ch: ch}
}

// EnsureSchema creates the scan_events table if absent. Safe to call on
// every startup.
func (r *scanRepository) EnsureSchema(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS scan_events (
			username   String,
			scanned_at DateTime64(3, 'UTC'),
			ip_address Nullable(String)
		)
		ENGINE = MergeTree
		ORDER BY (username, scanned_at)
	`
	if err := r.ch.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create scan_events: %w", err)
	}
	return nil
}

func (r *scanRepository) Append(ctx context.Context, event *models.ScanEvent) error {
	query := `INSERT INTO scan_events (username, scanned_at, ip_address) VALUES (?, ?, ?)`
	if err := r.ch.Exec(ctx, query, event.Username, event.ScannedAt, event.IPAddress); err != nil {
		return fmt.Errorf("insert scan event: %w", err)
	}
	return nil
}

func (r *scanRepository) DistinctUsernames(ctx context.Context) ([]string, error) {
	rows, err := r.ch.QueryRows(ctx, `SELECT DISTINCT username FROM scan_events`)
	if err != nil {
		return nil, fmt.Errorf("query distinct usernames: %w", err)
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("scan username: %w", err)
		}
		usernames = append(usernames, username)
	}
	return usernames, rows.Err()
}

func (r *scanRepository) CountTotal(ctx context.Context, username string) (uint64, error) {
	var n uint64
	query := `SELECT count() FROM scan_events WHERE username = ?`
	if err := r.ch.QueryRow(ctx, query, username).Scan(&n); err != nil {
		return 0, fmt.Errorf("count scans: %w", err)
	}
	return n, nil
}

func (r *scanRepository) CountInWindow(ctx context.Context, username string, start, end time.Time) (uint64, error) {
	var n uint64
	query := `SELECT count() FROM scan_events WHERE username = ? AND scanned_at >= ? AND scanned_at < ?`
	if err := r.ch.QueryRow(ctx, query, username, start, end).Scan(&n); err != nil {
		return 0, fmt.Errorf("count scans in window: %w", err)
	}
	return n, nil
}

func (r *scanRepository) BusiestDayOfWeek(ctx context.Context, username string, since time.Time) (string, error) {
	query := `
		SELECT toDayOfWeek(scanned_at) AS dow, count() AS n
		FROM scan_events
		WHERE username = ? AND scanned_at >= ?
		GROUP BY dow
		ORDER BY n DESC, dow ASC
		LIMIT 1
	`
	rows, err := r.ch.QueryRows(ctx, query, username, since)
	if err != nil {
		return "", fmt.Errorf("query busiest day: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return "", rows.Err()
	}
	var (
		dow uint8
		n   uint64
	)
	if err := rows.Scan(&dow, &n); err != nil {
		return "", fmt.Errorf("scan busiest day: %w", err)
	}
	if int(dow) >= len(dayNames) || dow == 0 {
		return "", fmt.Errorf("unexpected day of week %d", dow)
	}
	return dayNames[dow], nil
}

func (r *scanRepository) BusiestHour(ctx context.Context, username string, since time.Time) (int, error) {
	query := `
		SELECT toHour(scanned_at) AS hour, count() AS n
		FROM scan_events
		WHERE username = ? AND scanned_at >= ?
		GROUP BY hour
		ORDER BY n DESC, hour ASC
		LIMIT 1
	`
	rows, err := r.ch.QueryRows(ctx, query, username, since)
	if err != nil {
		return 0, fmt.Errorf("query busiest hour: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return 0, rows.Err()
	}
	var (
		hour uint8
		n    uint64
	)
	if err := rows.Scan(&hour, &n); err != nil {
		return 0, fmt.Errorf("scan busiest hour: %w", err)
	}
	return int(hour), nil
}

func (r *scanRepository) HealthCheck(ctx context.Context) error {
	return r.ch.HealthCheck(ctx)
}
