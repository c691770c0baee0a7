package services

import (
	"context"

	"github.com/porraza/porraza-server/models"
	"github.com/porraza/porraza-server/repositories"
)

// Scoring rules: an exact regular-time scoreline is worth 3 points, a
// correct regular-time outcome 1 point, and predicting the right
// shootout winner adds 1 bonus point when the match actually went to
// penalties.
const (
	pointsExactScore     = 3
	pointsCorrectOutcome = 1
	pointsPenaltyBonus   = 1
)

type ScoringService interface {
	// ScoreMatch awards points for every submitted prediction of a
	// completed match and accumulates them into the standings, all
	// through the caller's transaction. Returns how many predictions
	// were scored.
	ScoreMatch(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) (int, error)

	Leaderboard(ctx context.Context, limit int) ([]*models.Standing, error)
}

type scoringService struct {
	predictionRepo repositories.PredictionRepository
	standingRepo   repositories.StandingRepository
}

func NewScoringService(
	predictionRepo repositories.PredictionRepository,
	standingRepo repositories.StandingRepository,
) ScoringService {
	return &scoringService{
		predictionRepo: predictionRepo,
		standingRepo:   standingRepo,
	}
}

func (s *scoringService) ScoreMatch(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) (int, error) {
	if match.Status != models.MatchStatusCompleted || match.HomeScore == nil || match.AwayScore == nil {
		return 0, ErrMatchNotCompleted
	}

	preds, err := s.predictionRepo.ListByMatch(ctx, match.ID)
	if err != nil {
		return 0, err
	}

	scored := 0
	for _, p := range preds {
		// Blank predictions never score and never count as predicted.
		if p.HomeScore == nil || p.AwayScore == nil {
			continue
		}

		points, exact := ScorePrediction(p, match)
		if err := s.predictionRepo.SetPoints(ctx, exec, p.ID, points); err != nil {
			return scored, err
		}
		if err := s.standingRepo.AddPoints(ctx, exec, p.UserID, points, exact); err != nil {
			return scored, err
		}
		scored++
	}
	return scored, nil
}

func (s *scoringService) Leaderboard(ctx context.Context, limit int) ([]*models.Standing, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.standingRepo.ListTop(ctx, limit)
}

// ScorePrediction computes the points for one submitted prediction
// against the final result. Exported for the scoring tests.
func ScorePrediction(p *models.Prediction, match *models.Match) (points int, exact bool) {
	exact = *p.HomeScore == *match.HomeScore && *p.AwayScore == *match.AwayScore
	switch {
	case exact:
		points = pointsExactScore
	case outcomeOf(*p.HomeScore, *p.AwayScore) == outcomeOf(*match.HomeScore, *match.AwayScore):
		points = pointsCorrectOutcome
	}

	if match.PenaltiesWinner != nil && p.PenaltiesWinner != nil && *match.PenaltiesWinner == *p.PenaltiesWinner {
		points += pointsPenaltyBonus
	}
	return points, exact
}

func outcomeOf(home, away int) int {
	switch {
	case home > away:
		return 1
	case home < away:
		return -1
	}
	return 0
}
