// Package predictions holds the knockout score-entry state machine.
//
// A draft starts from two regular-time scores and cascades: a tie in
// regular time opens the extra-time fields, a tie in (cumulative) extra
// time requires a penalty-shootout winner. Evaluate is a pure function
// so the transition table is testable without any UI or storage.
package predictions

import "github.com/porraza/porraza-server/models"

// Draft is a partially entered knockout prediction. Nil means the user
// has not filled the field in yet.
type Draft struct {
	HomeScore       *int
	AwayScore       *int
	HomeScoreET     *int
	AwayScoreET     *int
	PenaltiesWinner *models.Side
}

// FromPrediction copies the score fields of a stored prediction into a
// draft for re-evaluation or display.
func FromPrediction(p *models.Prediction) Draft {
	if p == nil {
		return Draft{}
	}
	return Draft{
		HomeScore:       p.HomeScore,
		AwayScore:       p.AwayScore,
		HomeScoreET:     p.HomeScoreET,
		AwayScoreET:     p.AwayScoreET,
		PenaltiesWinner: p.PenaltiesWinner,
	}
}

// State names the six positions the draft can be in.
type State string

const (
	// StateIncomplete: one or both regular-time scores missing.
	StateIncomplete State = "incomplete"
	// StateDecidedRegular: regular-time scores present and unequal.
	StateDecidedRegular State = "decided_regular"
	// StateAwaitingExtraTime: regular time tied, extra time not yet
	// validly filled.
	StateAwaitingExtraTime State = "awaiting_extra_time"
	// StateDecidedExtraTime: valid extra-time scores, unequal.
	StateDecidedExtraTime State = "decided_extra_time"
	// StateAwaitingPenalties: extra time tied, no shootout winner yet.
	StateAwaitingPenalties State = "awaiting_penalties"
	// StateDecidedPenalties: extra time tied and a winner selected.
	StateDecidedPenalties State = "decided_penalties"
)

// Submittable reports whether a draft in this state may be saved.
func (s State) Submittable() bool {
	switch s {
	case StateDecidedRegular, StateDecidedExtraTime, StateDecidedPenalties:
		return true
	}
	return false
}

// Evaluate classifies the draft and returns it normalized. The returned
// draft has stale dependent fields cleared: once the regular-time tie is
// broken (or a score removed), extra-time and penalty entries are unset;
// once the extra-time tie is broken, the penalty entry is unset. Invalid
// extra time (a cumulative score below regular time) is kept so the user
// can correct it, but blocks submission.
func Evaluate(d Draft) (State, Draft) {
	if d.HomeScore == nil || d.AwayScore == nil {
		d.HomeScoreET, d.AwayScoreET, d.PenaltiesWinner = nil, nil, nil
		return StateIncomplete, d
	}

	if *d.HomeScore != *d.AwayScore {
		d.HomeScoreET, d.AwayScoreET, d.PenaltiesWinner = nil, nil, nil
		return StateDecidedRegular, d
	}

	// Regular time tied: extra time required.
	if !extraTimeValid(d) {
		d.PenaltiesWinner = nil
		return StateAwaitingExtraTime, d
	}

	if *d.HomeScoreET != *d.AwayScoreET {
		d.PenaltiesWinner = nil
		return StateDecidedExtraTime, d
	}

	// Extra time tied: shootout winner required.
	if d.PenaltiesWinner == nil || !d.PenaltiesWinner.Valid() {
		d.PenaltiesWinner = nil
		return StateAwaitingPenalties, d
	}
	return StateDecidedPenalties, d
}

// Submittable is shorthand for evaluating a draft and checking the state.
func Submittable(d Draft) bool {
	s, _ := Evaluate(d)
	return s.Submittable()
}

// Normalize returns the draft with stale dependent fields cleared.
func Normalize(d Draft) Draft {
	_, n := Evaluate(d)
	return n
}

// Outcome resolves the predicted winner for display: penalty winner
// first, then the extra-time comparison, then regular time. Nil means
// undecided or a (group-stage) draw.
func Outcome(d Draft) *models.Side {
	if d.PenaltiesWinner != nil && d.PenaltiesWinner.Valid() {
		w := *d.PenaltiesWinner
		return &w
	}
	if d.HomeScoreET != nil && d.AwayScoreET != nil && *d.HomeScoreET != *d.AwayScoreET {
		return sideFor(*d.HomeScoreET, *d.AwayScoreET)
	}
	if d.HomeScore != nil && d.AwayScore != nil && *d.HomeScore != *d.AwayScore {
		return sideFor(*d.HomeScore, *d.AwayScore)
	}
	return nil
}

func sideFor(home, away int) *models.Side {
	s := models.SideAway
	if home > away {
		s = models.SideHome
	}
	return &s
}

// extraTimeValid requires both cumulative scores present and each at
// least the corresponding regular-time score.
func extraTimeValid(d Draft) bool {
	if d.HomeScoreET == nil || d.AwayScoreET == nil {
		return false
	}
	return *d.HomeScoreET >= *d.HomeScore && *d.AwayScoreET >= *d.AwayScore
}
