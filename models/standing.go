package models

import "time"

// Standing is one leaderboard row: a user's accumulated points across
// all scored predictions.
type Standing struct {
	Rank        int       `json:"rank"`
	UserID      int       `json:"user_id"`
	Nickname    *string   `json:"nickname,omitempty"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Points      int       `json:"points"`
	ExactScores int       `json:"exact_scores"`
	Predicted   int       `json:"predicted"`
	UpdatedAt   time.Time `json:"updated_at"`
}
