package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/porraza/porraza-server/models"
	"github.com/porraza/porraza-server/repositories"
	"github.com/porraza/porraza-server/storage"
)

const dashboardUpcomingLimit = 5

type DashboardService interface {
	Summary(ctx context.Context, userID int) (*models.DashboardSummary, error)
}

type dashboardService struct {
	matchRepo    repositories.MatchRepository
	standingRepo repositories.StandingRepository
	leagueRepo   repositories.LeagueRepository
	uploader     storage.FileUploader
}

func NewDashboardService(
	matchRepo repositories.MatchRepository,
	standingRepo repositories.StandingRepository,
	leagueRepo repositories.LeagueRepository,
	uploader storage.FileUploader,
) DashboardService {
	return &dashboardService{
		matchRepo:    matchRepo,
		standingRepo: standingRepo,
		leagueRepo:   leagueRepo,
		uploader:     uploader,
	}
}

func (s *dashboardService) Summary(ctx context.Context, userID int) (*models.DashboardSummary, error) {
	summary := &models.DashboardSummary{
		UpcomingMatches: []models.Match{},
		Leagues:         []models.League{},
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		now := time.Now()
		status := models.MatchStatusScheduled
		matches, err := s.matchRepo.List(gCtx, repositories.MatchFilter{Status: &status, From: &now})
		if err != nil {
			return err
		}
		// Count before truncating so the badge reflects every upcoming
		// match, not just the few shown.
		summary.PendingCount = len(matches)
		if len(matches) > dashboardUpcomingLimit {
			matches = matches[:dashboardUpcomingLimit]
		}
		for _, match := range matches {
			populateMatchDetailsFunc(match, s.uploader)
			summary.UpcomingMatches = append(summary.UpcomingMatches, *match)
		}
		return nil
	})

	g.Go(func() error {
		standing, err := s.standingRepo.GetByUser(gCtx, userID)
		if err != nil {
			// No standing yet simply means nothing has been scored.
			if errors.Is(err, repositories.ErrStandingNotFound) {
				return nil
			}
			return err
		}
		summary.TotalPoints = standing.Points
		rank := standing.Rank
		summary.Rank = &rank
		return nil
	})

	g.Go(func() error {
		leagues, err := s.leagueRepo.ListByUser(gCtx, userID)
		if err != nil {
			return err
		}
		for _, league := range leagues {
			summary.Leagues = append(summary.Leagues, *league)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}
