package models

import "time"

// ScanEvent is one append-only row in the analytics log: somebody viewed a
// username's public profile. Duplicate scans are valid.
type ScanEvent struct {
	Username  string    `json:"username"`
	ScannedAt time.Time `json:"scanned_at"`
	IPAddress *string   `json:"ip_address,omitempty"`
}

// ScanStats summarises scan counts for one username.
type ScanStats struct {
	Username       string `json:"username"`
	TotalScans     uint64 `json:"total_scans"`
	ScansThisWeek  uint64 `json:"scans_this_week"`
	ScansThisMonth uint64 `json:"scans_this_month"`
}

// WeeklyScanData carries the four metrics the insight prompt is built from.
type WeeklyScanData struct {
	TotalScansThisWeek uint64
	TotalScansLastWeek uint64
	BusiestDay         string
	BusiestHour        int
}
