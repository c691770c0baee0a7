package models

// DashboardSummary is the aggregate payload backing the dashboard page.
type DashboardSummary struct {
	UpcomingMatches []Match  `json:"upcoming_matches"`
	PendingCount    int      `json:"pending_count"`
	TotalPoints     int      `json:"total_points"`
	Rank            *int     `json:"rank,omitempty"`
	Leagues         []League `json:"leagues"`
}
