package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/porraza/porraza-server/models"
	"github.com/porraza/porraza-server/repositories"
)

func (f *fakeMatchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	cp := *m
	f.byID[m.ID] = &cp
	return nil
}

type fakeScoringService struct {
	calls int
}

func (f *fakeScoringService) ScoreMatch(_ context.Context, _ repositories.SQLExecutor, _ *models.Match) (int, error) {
	f.calls++
	return 1, nil
}

func (f *fakeScoringService) Leaderboard(_ context.Context, _ int) ([]*models.Standing, error) {
	return nil, nil
}

func TestRecordResult_CompletedMatchRejected(t *testing.T) {
	match := &models.Match{
		ID:        5,
		Phase:     models.PhaseFinal,
		Status:    models.MatchStatusCompleted,
		HomeScore: ip(1),
		AwayScore: ip(0),
	}
	svc := &matchService{
		matchRepo: &fakeMatchRepo{byID: map[int]*models.Match{5: match}},
	}

	_, err := svc.RecordResult(context.Background(), 5, MatchResultInput{HomeScore: 2, AwayScore: 0})
	if !errors.Is(err, ErrMatchAlreadyCompleted) {
		t.Fatalf("expected ErrMatchAlreadyCompleted, got %v", err)
	}
}

func TestRecordResult_ScoresEachMatchOnce(t *testing.T) {
	kickoff := time.Date(2026, 7, 1, 18, 0, 0, 0, time.UTC)
	repo := &fakeMatchRepo{byID: map[int]*models.Match{
		5: {ID: 5, Phase: models.PhaseFinal, Status: models.MatchStatusInProgress, KickoffTime: kickoff, LocksAt: kickoff},
	}}
	scoring := &fakeScoringService{}
	conn := &recordingConn{}
	svc := &matchService{
		db:        openRecordingDB(t, conn),
		matchRepo: repo,
		scoring:   scoring,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	result := MatchResultInput{HomeScore: 2, AwayScore: 1}

	match, err := svc.RecordResult(context.Background(), 5, result)
	if err != nil {
		t.Fatalf("first result submission failed: %v", err)
	}
	if match.Status != models.MatchStatusCompleted {
		t.Fatalf("match status = %s, want %s", match.Status, models.MatchStatusCompleted)
	}
	if conn.commits != 1 {
		t.Fatalf("expected the result and its scoring to commit once, got %d commits", conn.commits)
	}

	// An admin re-submitting the same result must be rejected before any
	// scoring runs, or standings would accumulate the points twice.
	_, err = svc.RecordResult(context.Background(), 5, result)
	if !errors.Is(err, ErrMatchAlreadyCompleted) {
		t.Fatalf("expected ErrMatchAlreadyCompleted on re-submission, got %v", err)
	}
	if scoring.calls != 1 {
		t.Fatalf("predictions scored %d times, want exactly once", scoring.calls)
	}
}
