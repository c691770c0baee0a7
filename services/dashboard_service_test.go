package services

import (
	"context"
	"testing"
	"time"

	"github.com/porraza/porraza-server/models"
	"github.com/porraza/porraza-server/repositories"
)

type fakeMatchLister struct {
	repositories.MatchRepository
	matches []*models.Match
}

func (f *fakeMatchLister) List(_ context.Context, _ repositories.MatchFilter) ([]*models.Match, error) {
	return f.matches, nil
}

type fakeStandingRepo struct {
	repositories.StandingRepository
	standing *models.Standing
}

func (f *fakeStandingRepo) GetByUser(_ context.Context, _ int) (*models.Standing, error) {
	if f.standing == nil {
		return nil, repositories.ErrStandingNotFound
	}
	cp := *f.standing
	return &cp, nil
}

type fakeLeagueLister struct {
	repositories.LeagueRepository
	leagues []*models.League
}

func (f *fakeLeagueLister) ListByUser(_ context.Context, _ int) ([]*models.League, error) {
	return f.leagues, nil
}

func TestDashboardSummary_PendingCountNotCappedByDisplayLimit(t *testing.T) {
	kickoff := time.Date(2026, 6, 25, 18, 0, 0, 0, time.UTC)
	var matches []*models.Match
	for i := 1; i <= 7; i++ {
		matches = append(matches, &models.Match{
			ID: i, Phase: models.PhaseGroup, Status: models.MatchStatusScheduled,
			KickoffTime: kickoff, LocksAt: kickoff,
		})
	}

	svc := &dashboardService{
		matchRepo:    &fakeMatchLister{matches: matches},
		standingRepo: &fakeStandingRepo{standing: &models.Standing{UserID: 7, Rank: 3, Points: 12}},
		leagueRepo:   &fakeLeagueLister{leagues: []*models.League{{ID: 1, Name: "Oficina"}}},
	}

	summary, err := svc.Summary(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.PendingCount != 7 {
		t.Errorf("PendingCount = %d, want 7 (all upcoming matches, not just the displayed ones)", summary.PendingCount)
	}
	if len(summary.UpcomingMatches) != 5 {
		t.Errorf("UpcomingMatches has %d entries, want the display limit of 5", len(summary.UpcomingMatches))
	}
	if summary.TotalPoints != 12 {
		t.Errorf("TotalPoints = %d, want 12", summary.TotalPoints)
	}
	if summary.Rank == nil || *summary.Rank != 3 {
		t.Errorf("Rank = %v, want 3", summary.Rank)
	}
	if len(summary.Leagues) != 1 {
		t.Errorf("Leagues has %d entries, want 1", len(summary.Leagues))
	}
}
