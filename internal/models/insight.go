package models

import "time"

// WeeklyInsight is one generated summary row. Rows are never mutated; the
// latest insight for a user is the row with the greatest GeneratedAt.
type WeeklyInsight struct {
	Username    string    `json:"username"`
	Insight     string    `json:"insight"`
	WeekStart   time.Time `json:"week_start"`
	GeneratedAt time.Time `json:"generated_at"`
}
