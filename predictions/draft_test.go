package predictions

import (
	"testing"

	"github.com/porraza/porraza-server/models"
)

func ip(v int) *int { return &v }

func sp(s models.Side) *models.Side { return &s }

func TestEvaluate_Incomplete(t *testing.T) {
	cases := []Draft{
		{},
		{HomeScore: ip(1)},
		{AwayScore: ip(2)},
	}
	for _, d := range cases {
		state, _ := Evaluate(d)
		assertEq(t, state, StateIncomplete)
		if state.Submittable() {
			t.Fatalf("incomplete draft must not be submittable: %+v", d)
		}
	}
}

func TestEvaluate_DecidedRegular(t *testing.T) {
	state, norm := Evaluate(Draft{HomeScore: ip(2), AwayScore: ip(0)})
	assertEq(t, state, StateDecidedRegular)
	if !state.Submittable() {
		t.Fatal("decisive regular-time draft must be submittable")
	}
	if norm.HomeScoreET != nil || norm.AwayScoreET != nil || norm.PenaltiesWinner != nil {
		t.Fatalf("extra fields must stay empty, got %+v", norm)
	}
}

func TestEvaluate_TieOpensExtraTime(t *testing.T) {
	state, _ := Evaluate(Draft{HomeScore: ip(1), AwayScore: ip(1)})
	assertEq(t, state, StateAwaitingExtraTime)
	if state.Submittable() {
		t.Fatal("tied draft without extra time must not be submittable")
	}
}

func TestEvaluate_ExtraTimeDecides(t *testing.T) {
	d := Draft{
		HomeScore: ip(1), AwayScore: ip(1),
		HomeScoreET: ip(1), AwayScoreET: ip(2),
	}
	state, _ := Evaluate(d)
	assertEq(t, state, StateDecidedExtraTime)
	if got := Outcome(d); got == nil || *got != models.SideAway {
		t.Fatalf("expected away outcome, got %v", got)
	}
}

func TestEvaluate_ExtraTimeBelowRegularBlocks(t *testing.T) {
	// Cumulative scoring: 2-2 after ninety cannot become 1-3.
	d := Draft{
		HomeScore: ip(2), AwayScore: ip(2),
		HomeScoreET: ip(1), AwayScoreET: ip(3),
	}
	state, norm := Evaluate(d)
	assertEq(t, state, StateAwaitingExtraTime)
	if state.Submittable() {
		t.Fatal("invalid extra time must block submission")
	}
	// The offending entry stays so the user can fix it.
	if norm.HomeScoreET == nil || *norm.HomeScoreET != 1 {
		t.Fatalf("invalid extra-time entry should be kept, got %+v", norm)
	}
}

func TestEvaluate_ExtraTimeTieRequiresPenalties(t *testing.T) {
	d := Draft{
		HomeScore: ip(1), AwayScore: ip(1),
		HomeScoreET: ip(1), AwayScoreET: ip(1),
	}
	state, _ := Evaluate(d)
	assertEq(t, state, StateAwaitingPenalties)

	d.PenaltiesWinner = sp(models.SideHome)
	state, _ = Evaluate(d)
	assertEq(t, state, StateDecidedPenalties)
	if !state.Submittable() {
		t.Fatal("shootout-decided draft must be submittable")
	}
	if got := Outcome(d); got == nil || *got != models.SideHome {
		t.Fatalf("expected home outcome, got %v", got)
	}
}

func TestEvaluate_BreakingRegularTieClearsEverything(t *testing.T) {
	d := Draft{
		HomeScore: ip(1), AwayScore: ip(1),
		HomeScoreET: ip(1), AwayScoreET: ip(1),
		PenaltiesWinner: sp(models.SideHome),
	}
	state, _ := Evaluate(d)
	assertEq(t, state, StateDecidedPenalties)

	// User edits the away score afterwards.
	d.AwayScore = ip(2)
	state, norm := Evaluate(d)
	assertEq(t, state, StateDecidedRegular)
	if norm.HomeScoreET != nil || norm.AwayScoreET != nil || norm.PenaltiesWinner != nil {
		t.Fatalf("stale extra-time and penalty entries must be cleared, got %+v", norm)
	}
}

func TestEvaluate_BreakingExtraTimeTieClearsPenalties(t *testing.T) {
	d := Draft{
		HomeScore: ip(0), AwayScore: ip(0),
		HomeScoreET: ip(0), AwayScoreET: ip(0),
		PenaltiesWinner: sp(models.SideAway),
	}
	d.HomeScoreET = ip(1)
	state, norm := Evaluate(d)
	assertEq(t, state, StateDecidedExtraTime)
	if norm.PenaltiesWinner != nil {
		t.Fatalf("stale penalty winner must be cleared, got %+v", norm)
	}
}

func TestEvaluate_RemovingScoreClearsExtras(t *testing.T) {
	d := Draft{
		HomeScore: ip(1), AwayScore: ip(1),
		HomeScoreET: ip(2), AwayScoreET: ip(2),
		PenaltiesWinner: sp(models.SideHome),
	}
	d.HomeScore = nil
	state, norm := Evaluate(d)
	assertEq(t, state, StateIncomplete)
	if norm.HomeScoreET != nil || norm.AwayScoreET != nil || norm.PenaltiesWinner != nil {
		t.Fatalf("extras must not survive an incomplete draft, got %+v", norm)
	}
}

func TestEvaluate_InvalidPenaltySideTreatedAsUnset(t *testing.T) {
	bogus := models.Side("both")
	d := Draft{
		HomeScore: ip(1), AwayScore: ip(1),
		HomeScoreET: ip(1), AwayScoreET: ip(1),
		PenaltiesWinner: &bogus,
	}
	state, norm := Evaluate(d)
	assertEq(t, state, StateAwaitingPenalties)
	if norm.PenaltiesWinner != nil {
		t.Fatalf("invalid side must be discarded, got %+v", norm)
	}
}

func TestOutcome_PenaltiesBeatScoreComparison(t *testing.T) {
	// Shootout winner takes precedence even over an (inconsistent)
	// decisive extra-time scoreline left in the draft.
	d := Draft{
		HomeScore: ip(1), AwayScore: ip(1),
		HomeScoreET: ip(3), AwayScoreET: ip(2),
		PenaltiesWinner: sp(models.SideAway),
	}
	if got := Outcome(d); got == nil || *got != models.SideAway {
		t.Fatalf("expected away via penalties, got %v", got)
	}
}

func TestOutcome_DrawIsNil(t *testing.T) {
	if got := Outcome(Draft{HomeScore: ip(1), AwayScore: ip(1)}); got != nil {
		t.Fatalf("tied regular time with nothing else is undecided, got %v", got)
	}
	if got := Outcome(Draft{}); got != nil {
		t.Fatalf("empty draft is undecided, got %v", got)
	}
}

func assertEq[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Fatalf("got %v want %v", got, want)
	}
}
