package models

import "time"

// League is a private group of users competing on a shared leaderboard.
// Membership is granted by join code.
type League struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	JoinCode  string    `json:"join_code,omitempty"`
	OwnerID   int       `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`

	MemberCount int `json:"member_count,omitempty"`
}
