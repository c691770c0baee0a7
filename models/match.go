package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusCanceled   MatchStatus = "canceled"
)

type MatchPhase string

const (
	PhaseGroup        MatchPhase = "group"
	PhaseRoundOf32    MatchPhase = "round_of_32"
	PhaseRoundOf16    MatchPhase = "round_of_16"
	PhaseQuarterFinal MatchPhase = "quarter_final"
	PhaseSemiFinal    MatchPhase = "semi_final"
	PhaseFinal        MatchPhase = "final"
)

// KnockoutPhases lists the elimination rounds in bracket order.
var KnockoutPhases = []MatchPhase{
	PhaseRoundOf32,
	PhaseRoundOf16,
	PhaseQuarterFinal,
	PhaseSemiFinal,
	PhaseFinal,
}

func (p MatchPhase) Valid() bool {
	if p == PhaseGroup {
		return true
	}
	return p.Knockout()
}

func (p MatchPhase) Knockout() bool {
	for _, kp := range KnockoutPhases {
		if p == kp {
			return true
		}
	}
	return false
}

// Side identifies one of the two teams in a match.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

func (s Side) Valid() bool {
	return s == SideHome || s == SideAway
}

// Match is a fixture. Team IDs are nullable because knockout slots are
// created before the qualifying teams are known. LocksAt freezes
// prediction edits; it defaults to kickoff time.
type Match struct {
	ID          int         `json:"id"`
	Phase       MatchPhase  `json:"phase"`
	HomeTeamID  *int        `json:"home_team_id,omitempty"`
	AwayTeamID  *int        `json:"away_team_id,omitempty"`
	StadiumID   *int        `json:"stadium_id,omitempty"`
	KickoffTime time.Time   `json:"kickoff_time"`
	LocksAt     time.Time   `json:"locks_at"`
	Status      MatchStatus `json:"status"`

	// Final result, set once the match completes. Extra-time scores are
	// cumulative and only present for knockout matches that went past
	// regular time.
	HomeScore       *int  `json:"home_score,omitempty"`
	AwayScore       *int  `json:"away_score,omitempty"`
	HomeScoreET     *int  `json:"home_score_et,omitempty"`
	AwayScoreET     *int  `json:"away_score_et,omitempty"`
	PenaltiesWinner *Side `json:"penalties_winner,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	Home    *Team    `json:"home,omitempty"`
	Away    *Team    `json:"away,omitempty"`
	Stadium *Stadium `json:"stadium,omitempty"`
}

// Locked reports whether prediction edits for the match are frozen.
func (m *Match) Locked(now time.Time) bool {
	return !now.Before(m.LocksAt)
}
