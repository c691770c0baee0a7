package services

import (
	"errors"
	"testing"

	"github.com/porraza/porraza-server/models"
)

func TestScorePrediction(t *testing.T) {
	tests := []struct {
		name       string
		prediction models.Prediction
		match      models.Match
		wantPoints int
		wantExact  bool
	}{
		{
			name:       "exact scoreline",
			prediction: models.Prediction{HomeScore: ip(2), AwayScore: ip(1)},
			match:      models.Match{HomeScore: ip(2), AwayScore: ip(1)},
			wantPoints: 3,
			wantExact:  true,
		},
		{
			name:       "correct outcome wrong score",
			prediction: models.Prediction{HomeScore: ip(3), AwayScore: ip(0)},
			match:      models.Match{HomeScore: ip(1), AwayScore: ip(0)},
			wantPoints: 1,
		},
		{
			name:       "correct draw wrong score",
			prediction: models.Prediction{HomeScore: ip(0), AwayScore: ip(0)},
			match:      models.Match{HomeScore: ip(2), AwayScore: ip(2)},
			wantPoints: 1,
		},
		{
			name:       "wrong outcome",
			prediction: models.Prediction{HomeScore: ip(2), AwayScore: ip(0)},
			match:      models.Match{HomeScore: ip(0), AwayScore: ip(1)},
			wantPoints: 0,
		},
		{
			name: "exact plus penalty winner bonus",
			prediction: models.Prediction{
				HomeScore: ip(1), AwayScore: ip(1),
				PenaltiesWinner: sp(models.SideHome),
			},
			match: models.Match{
				HomeScore: ip(1), AwayScore: ip(1),
				PenaltiesWinner: sp(models.SideHome),
			},
			wantPoints: 4,
			wantExact:  true,
		},
		{
			name: "wrong penalty winner earns no bonus",
			prediction: models.Prediction{
				HomeScore: ip(1), AwayScore: ip(1),
				PenaltiesWinner: sp(models.SideHome),
			},
			match: models.Match{
				HomeScore: ip(1), AwayScore: ip(1),
				PenaltiesWinner: sp(models.SideAway),
			},
			wantPoints: 3,
			wantExact:  true,
		},
		{
			name: "penalty bonus requires the match to reach a shootout",
			prediction: models.Prediction{
				HomeScore: ip(1), AwayScore: ip(1),
				PenaltiesWinner: sp(models.SideHome),
			},
			match:      models.Match{HomeScore: ip(2), AwayScore: ip(2)},
			wantPoints: 3,
			wantExact:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, exact := ScorePrediction(&tt.prediction, &tt.match)
			if points != tt.wantPoints {
				t.Errorf("points = %d, want %d", points, tt.wantPoints)
			}
			if exact != tt.wantExact {
				t.Errorf("exact = %v, want %v", exact, tt.wantExact)
			}
		})
	}
}

func TestValidateResult(t *testing.T) {
	tests := []struct {
		name    string
		phase   models.MatchPhase
		input   MatchResultInput
		wantErr bool
	}{
		{
			name:  "group result plain scoreline",
			phase: models.PhaseGroup,
			input: MatchResultInput{HomeScore: 1, AwayScore: 1},
		},
		{
			name:    "group result with extra time",
			phase:   models.PhaseGroup,
			input:   MatchResultInput{HomeScore: 1, AwayScore: 1, HomeScoreET: ip(2), AwayScoreET: ip(1)},
			wantErr: true,
		},
		{
			name:  "knockout decided in regular time",
			phase: models.PhaseQuarterFinal,
			input: MatchResultInput{HomeScore: 2, AwayScore: 0},
		},
		{
			name:    "knockout tie without extra time",
			phase:   models.PhaseQuarterFinal,
			input:   MatchResultInput{HomeScore: 1, AwayScore: 1},
			wantErr: true,
		},
		{
			name:  "knockout decided in extra time",
			phase: models.PhaseFinal,
			input: MatchResultInput{HomeScore: 1, AwayScore: 1, HomeScoreET: ip(2), AwayScoreET: ip(1)},
		},
		{
			name:    "knockout extra-time tie without shootout winner",
			phase:   models.PhaseFinal,
			input:   MatchResultInput{HomeScore: 1, AwayScore: 1, HomeScoreET: ip(2), AwayScoreET: ip(2)},
			wantErr: true,
		},
		{
			name:  "knockout decided on penalties",
			phase: models.PhaseFinal,
			input: MatchResultInput{
				HomeScore: 0, AwayScore: 0,
				HomeScoreET: ip(0), AwayScoreET: ip(0),
				PenaltiesWinner: sp(models.SideAway),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResult(tt.phase, tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrMatchInvalidResult) {
					t.Fatalf("expected ErrMatchInvalidResult, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
