package brackets

import (
	"errors"
	"testing"
	"time"

	"github.com/porraza/porraza-server/models"
)

func ip(v int) *int { return &v }

func knockoutFixtures() map[models.MatchPhase][]*models.Match {
	byPhase := make(map[models.MatchPhase][]*models.Match)
	id := 0
	kickoff := time.Date(2026, 6, 28, 18, 0, 0, 0, time.UTC)
	for _, phase := range models.KnockoutPhases {
		for i := 0; i < roundSizes[phase]; i++ {
			id++
			byPhase[phase] = append(byPhase[phase], &models.Match{
				ID:          id,
				Phase:       phase,
				KickoffTime: kickoff,
				LocksAt:     kickoff,
				Status:      models.MatchStatusScheduled,
			})
		}
		kickoff = kickoff.Add(72 * time.Hour)
	}
	return byPhase
}

func TestBuildView_NumberingAndIndex(t *testing.T) {
	byPhase := knockoutFixtures()
	view, err := BuildView(byPhase, nil, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("BuildView: %v", err)
	}

	if len(view.Rounds) != 5 {
		t.Fatalf("expected 5 rounds, got %d", len(view.Rounds))
	}
	if len(view.Index) != 31 {
		t.Fatalf("expected 31 numbered matches, got %d", len(view.Index))
	}

	// Numbering is sequential across rounds in bracket order, so the
	// final is match 31.
	finalSeed := view.Rounds[4].Seeds[0]
	if finalSeed.MatchNumber != 31 {
		t.Fatalf("final should be match 31, got %d", finalSeed.MatchNumber)
	}
	if view.Index[31] != finalSeed.MatchID {
		t.Fatalf("index must map 31 to the final's match ID")
	}
	if view.Rounds[0].Title != "Round of 32" || view.Rounds[4].Title != "Final" {
		t.Fatalf("unexpected round titles: %s / %s", view.Rounds[0].Title, view.Rounds[4].Title)
	}
}

func TestBuildView_RejectsBrokenShape(t *testing.T) {
	byPhase := knockoutFixtures()
	byPhase[models.PhaseSemiFinal] = byPhase[models.PhaseSemiFinal][:1]
	_, err := BuildView(byPhase, nil, time.Now())
	if !errors.Is(err, ErrBracketShape) {
		t.Fatalf("expected ErrBracketShape, got %v", err)
	}
}

func TestBuildView_PredictionOutcomeStylesWinner(t *testing.T) {
	byPhase := knockoutFixtures()
	first := byPhase[models.PhaseRoundOf32][0]
	home := &models.Team{ID: 1, Name: "Spain"}
	away := &models.Team{ID: 2, Name: "Italy"}
	first.HomeTeamID, first.Home = &home.ID, home
	first.AwayTeamID, first.Away = &away.ID, away

	winner := models.SideAway
	preds := map[int]*models.Prediction{
		first.ID: {
			ID: 100, MatchID: first.ID,
			HomeScore: ip(1), AwayScore: ip(1),
			HomeScoreET: ip(1), AwayScoreET: ip(1),
			PenaltiesWinner: &winner,
		},
	}

	view, err := BuildView(byPhase, preds, time.Now())
	if err != nil {
		t.Fatalf("BuildView: %v", err)
	}
	seed := view.Rounds[0].Seeds[0]
	if seed.Prediction == nil || seed.Outcome == nil || *seed.Outcome != models.SideAway {
		t.Fatalf("expected away outcome on seed, got %+v", seed)
	}
	if seed.Teams[0].Winner || !seed.Teams[1].Winner {
		t.Fatalf("winner styling wrong: %+v", seed.Teams)
	}
	if seed.Teams[0].Name != "Spain" || seed.Teams[1].Name != "Italy" {
		t.Fatalf("team names not mapped: %+v", seed.Teams)
	}
}

func TestBuildView_UnknownSlotIsTBD(t *testing.T) {
	view, err := BuildView(knockoutFixtures(), nil, time.Now())
	if err != nil {
		t.Fatalf("BuildView: %v", err)
	}
	if got := view.Rounds[4].Seeds[0].Teams[0].Name; got != "TBD" {
		t.Fatalf("unresolved slot should read TBD, got %q", got)
	}
}
