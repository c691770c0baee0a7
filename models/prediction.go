package models

import "time"

// Prediction is a user's submitted scoreline for a match. Regular-time
// scores are required on submission; extra-time scores exist only when
// the predicted regular time ties, and the penalties winner only when
// the predicted extra time also ties. Extra-time scores are cumulative,
// so each must be >= the corresponding regular-time score.
type Prediction struct {
	ID              int   `json:"id"`
	UserID          int   `json:"user_id"`
	MatchID         int   `json:"match_id"`
	HomeScore       *int  `json:"home_score,omitempty"`
	AwayScore       *int  `json:"away_score,omitempty"`
	HomeScoreET     *int  `json:"home_score_et,omitempty"`
	AwayScoreET     *int  `json:"away_score_et,omitempty"`
	PenaltiesWinner *Side `json:"penalties_winner,omitempty"`

	// Points awarded once the match result is scored.
	Points *int `json:"points,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
