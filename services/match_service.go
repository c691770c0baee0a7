package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/porraza/porraza-server/live"
	"github.com/porraza/porraza-server/models"
	"github.com/porraza/porraza-server/predictions"
	"github.com/porraza/porraza-server/repositories"
	"github.com/porraza/porraza-server/storage"
)

type CreateMatchInput struct {
	Phase       models.MatchPhase `json:"phase"`
	HomeTeamID  *int              `json:"home_team_id"`
	AwayTeamID  *int              `json:"away_team_id"`
	StadiumID   *int              `json:"stadium_id"`
	KickoffTime time.Time         `json:"kickoff_time"`
	LocksAt     *time.Time        `json:"locks_at"`
}

// MatchResultInput carries the final result. The same cascade rules as
// predictions apply: a knockout result must resolve a winner.
type MatchResultInput struct {
	HomeScore       int          `json:"home_score"`
	AwayScore       int          `json:"away_score"`
	HomeScoreET     *int         `json:"home_score_et"`
	AwayScoreET     *int         `json:"away_score_et"`
	PenaltiesWinner *models.Side `json:"penalties_winner"`
}

type MatchService interface {
	Create(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context, filter repositories.MatchFilter) ([]*models.Match, error)
	RecordResult(ctx context.Context, matchID int, input MatchResultInput) (*models.Match, error)

	// AutoStartDueMatches is invoked by the background scheduler to
	// flip scheduled matches past kickoff to in_progress.
	AutoStartDueMatches(ctx context.Context) error
}

type matchService struct {
	db        *sql.DB
	matchRepo repositories.MatchRepository
	scoring   ScoringService
	uploader  storage.FileUploader
	hub       LiveBroadcaster
	logger    *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	scoring ScoringService,
	uploader storage.FileUploader,
	hub LiveBroadcaster,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:        db,
		matchRepo: matchRepo,
		scoring:   scoring,
		uploader:  uploader,
		hub:       hub,
		logger:    logger,
	}
}

func (s *matchService) Create(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	if !input.Phase.Valid() {
		return nil, ErrMatchInvalidPhase
	}
	if input.KickoffTime.IsZero() {
		return nil, fmt.Errorf("%w: kickoff time is required", ErrValidationFailed)
	}

	locksAt := input.KickoffTime
	if input.LocksAt != nil {
		locksAt = *input.LocksAt
	}

	match := &models.Match{
		Phase:       input.Phase,
		HomeTeamID:  input.HomeTeamID,
		AwayTeamID:  input.AwayTeamID,
		StadiumID:   input.StadiumID,
		KickoffTime: input.KickoffTime,
		LocksAt:     locksAt,
		Status:      models.MatchStatusScheduled,
	}

	if err := s.matchRepo.Create(ctx, s.db, match); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchTeamInvalid):
			return nil, ErrTeamNotFound
		case errors.Is(err, repositories.ErrMatchStadiumInvalid):
			return nil, ErrStadiumNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	populateMatchDetailsFunc(match, s.uploader)
	return match, nil
}

func (s *matchService) List(ctx context.Context, filter repositories.MatchFilter) ([]*models.Match, error) {
	if filter.Phase != nil && !filter.Phase.Valid() {
		return nil, ErrMatchInvalidPhase
	}
	matches, err := s.matchRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, match := range matches {
		populateMatchDetailsFunc(match, s.uploader)
	}
	return matches, nil
}

func (s *matchService) RecordResult(ctx context.Context, matchID int, input MatchResultInput) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	// Scoring accumulates into standings, so recording the same match
	// twice would double-count every user's points.
	if match.Status == models.MatchStatusCompleted {
		return nil, ErrMatchAlreadyCompleted
	}

	if err := validateResult(match.Phase, input); err != nil {
		return nil, err
	}

	match.HomeScore = &input.HomeScore
	match.AwayScore = &input.AwayScore
	match.HomeScoreET = input.HomeScoreET
	match.AwayScoreET = input.AwayScoreET
	match.PenaltiesWinner = input.PenaltiesWinner
	match.Status = models.MatchStatusCompleted

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	if txErr = s.matchRepo.UpdateResult(ctx, tx, match); txErr != nil {
		return nil, txErr
	}

	scored, txErr := s.scoring.ScoreMatch(ctx, tx, match)
	if txErr != nil {
		return nil, txErr
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit match result: %w", txErr)
	}

	s.logger.Info("match result recorded",
		slog.Int("match_id", match.ID),
		slog.String("phase", string(match.Phase)),
		slog.Int("predictions_scored", scored),
	)

	if s.hub != nil {
		s.hub.BroadcastToRoom(live.RoomBracket, live.EventMatchUpdated, match)
		s.hub.BroadcastToRoom(live.RoomLeaderboard, live.EventLeaderboardUpdated, map[string]interface{}{
			"match_id": match.ID,
			"scored":   scored,
		})
	}

	populateMatchDetailsFunc(match, s.uploader)
	return match, nil
}

func (s *matchService) AutoStartDueMatches(ctx context.Context) error {
	ids, err := s.matchRepo.MarkInProgressDue(ctx, time.Now())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	s.logger.Info("matches moved to in_progress", slog.Int("count", len(ids)))
	if s.hub != nil {
		s.hub.BroadcastToRoom(live.RoomBracket, live.EventMatchUpdated, map[string]interface{}{
			"started_match_ids": ids,
		})
	}
	return nil
}

// validateResult enforces the same cascade invariants on results as on
// predictions: group matches carry a plain scoreline, knockout matches
// must end with a winner.
func validateResult(phase models.MatchPhase, input MatchResultInput) error {
	if err := validateScoreRange(&input.HomeScore, &input.AwayScore, input.HomeScoreET, input.AwayScoreET); err != nil {
		return fmt.Errorf("%w: %s", ErrMatchInvalidResult, err)
	}

	if phase == models.PhaseGroup {
		if input.HomeScoreET != nil || input.AwayScoreET != nil || input.PenaltiesWinner != nil {
			return fmt.Errorf("%w: group-stage results have no extra time or penalties", ErrMatchInvalidResult)
		}
		return nil
	}

	draft := predictions.Draft{
		HomeScore:       &input.HomeScore,
		AwayScore:       &input.AwayScore,
		HomeScoreET:     input.HomeScoreET,
		AwayScoreET:     input.AwayScoreET,
		PenaltiesWinner: input.PenaltiesWinner,
	}
	if state, _ := predictions.Evaluate(draft); !state.Submittable() {
		return fmt.Errorf("%w: knockout result must resolve a winner (state %s)", ErrMatchInvalidResult, state)
	}
	return nil
}
