package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/porraza/porraza-server/brackets"
	"github.com/porraza/porraza-server/models"
	"github.com/porraza/porraza-server/repositories"
	"github.com/porraza/porraza-server/storage"
)

type BracketService interface {
	// GetBracketView loads the knockout fixtures and the viewer's
	// predictions and assembles the renderer payload.
	GetBracketView(ctx context.Context, userID int) (*brackets.View, error)
}

type bracketService struct {
	matchRepo      repositories.MatchRepository
	predictionRepo repositories.PredictionRepository
	uploader       storage.FileUploader
}

func NewBracketService(
	matchRepo repositories.MatchRepository,
	predictionRepo repositories.PredictionRepository,
	uploader storage.FileUploader,
) BracketService {
	return &bracketService{
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		uploader:       uploader,
	}
}

func (s *bracketService) GetBracketView(ctx context.Context, userID int) (*brackets.View, error) {
	var (
		matches []*models.Match
		preds   []*models.Prediction
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListKnockout(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		preds, err = s.predictionRepo.ListKnockoutByUser(gCtx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byPhase := make(map[models.MatchPhase][]*models.Match, len(models.KnockoutPhases))
	for _, match := range matches {
		populateMatchDetailsFunc(match, s.uploader)
		byPhase[match.Phase] = append(byPhase[match.Phase], match)
	}

	byMatch := make(map[int]*models.Prediction, len(preds))
	for _, p := range preds {
		byMatch[p.MatchID] = p
	}

	return brackets.BuildView(byPhase, byMatch, time.Now())
}
