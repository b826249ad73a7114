package model

import "time"

// VisitorStats is the site-wide visitor counter snapshot.
type VisitorStats struct {
	TotalVisitors int64     `json:"totalVisitors"`
	TodayVisitors int64     `json:"todayVisitors"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
