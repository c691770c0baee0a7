package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/porraza/porraza-server/live"
	"github.com/porraza/porraza-server/models"
	"github.com/porraza/porraza-server/predictions"
	"github.com/porraza/porraza-server/repositories"
)

const maxScore = 99

// LiveBroadcaster pushes server-side events to subscribed clients.
type LiveBroadcaster interface {
	BroadcastToRoom(room string, eventType string, payload interface{})
}

// PredictionEntry is one record of the save payload. ID must reference
// an existing prediction row; drafts without a backing record are
// rejected before anything is written.
type PredictionEntry struct {
	ID              *int         `json:"id"`
	HomeScore       *int         `json:"home_score"`
	AwayScore       *int         `json:"away_score"`
	HomeScoreET     *int         `json:"home_score_et"`
	AwayScoreET     *int         `json:"away_score_et"`
	PenaltiesWinner *models.Side `json:"penalties_winner"`
}

type PredictionService interface {
	// ListForPhase returns the user's predictions for every match of
	// the phase, seeding empty rows first so each has an ID to save to.
	ListForPhase(ctx context.Context, userID int, phase models.MatchPhase) ([]*models.Prediction, error)

	// SavePredictions validates and persists an ordered batch of
	// entries for one phase in a single transaction.
	SavePredictions(ctx context.Context, userID int, phase models.MatchPhase, entries []PredictionEntry) ([]*models.Prediction, error)
}

type predictionService struct {
	db             *sql.DB
	predictionRepo repositories.PredictionRepository
	matchRepo      repositories.MatchRepository
	hub            LiveBroadcaster
	now            func() time.Time
}

func NewPredictionService(
	db *sql.DB,
	predictionRepo repositories.PredictionRepository,
	matchRepo repositories.MatchRepository,
	hub LiveBroadcaster,
) PredictionService {
	return &predictionService{
		db:             db,
		predictionRepo: predictionRepo,
		matchRepo:      matchRepo,
		hub:            hub,
		now:            time.Now,
	}
}

func (s *predictionService) ListForPhase(ctx context.Context, userID int, phase models.MatchPhase) ([]*models.Prediction, error) {
	if !phase.Valid() {
		return nil, ErrMatchInvalidPhase
	}
	if err := s.predictionRepo.EnsureForPhase(ctx, userID, phase); err != nil {
		return nil, err
	}
	return s.predictionRepo.ListByUserAndPhase(ctx, userID, phase)
}

func (s *predictionService) SavePredictions(ctx context.Context, userID int, phase models.MatchPhase, entries []PredictionEntry) ([]*models.Prediction, error) {
	if !phase.Valid() {
		return nil, ErrMatchInvalidPhase
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: empty prediction batch", ErrValidationFailed)
	}

	// Validate the whole batch up front so a bad record aborts before
	// anything is written.
	validated := make([]*models.Prediction, 0, len(entries))
	now := s.now()
	for i, entry := range entries {
		p, err := s.validateEntry(ctx, userID, phase, entry, now)
		if err != nil {
			return nil, fmt.Errorf("prediction %d: %w", i+1, err)
		}
		validated = append(validated, p)
	}

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

	for _, p := range validated {
		if txErr = s.predictionRepo.UpdateScores(ctx, tx, p); txErr != nil {
			return nil, txErr
		}
	}
	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit prediction batch: %w", txErr)
	}

	if s.hub != nil && phase.Knockout() {
		s.hub.BroadcastToRoom(live.RoomBracket, live.EventPredictionsSaved, map[string]interface{}{
			"user_id": userID,
			"phase":   phase,
			"count":   len(validated),
		})
	}

	return validated, nil
}

// validateEntry resolves the backing prediction and match, enforces
// locks and ownership and returns the normalized prediction ready to
// persist.
func (s *predictionService) validateEntry(ctx context.Context, userID int, phase models.MatchPhase, entry PredictionEntry, now time.Time) (*models.Prediction, error) {
	if entry.ID == nil || *entry.ID <= 0 {
		return nil, ErrPredictionIDRequired
	}

	stored, err := s.predictionRepo.GetByID(ctx, *entry.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrPredictionNotFound) {
			return nil, ErrPredictionNotFound
		}
		return nil, err
	}
	if stored.UserID != userID {
		return nil, ErrForbiddenOperation
	}

	match, err := s.matchRepo.GetByID(ctx, stored.MatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if match.Phase != phase {
		return nil, ErrPredictionPhaseMismatch
	}
	if match.Locked(now) {
		return nil, ErrPredictionLocked
	}

	if err := validateScoreRange(entry.HomeScore, entry.AwayScore, entry.HomeScoreET, entry.AwayScoreET); err != nil {
		return nil, err
	}

	draft := predictions.Draft{
		HomeScore:       entry.HomeScore,
		AwayScore:       entry.AwayScore,
		HomeScoreET:     entry.HomeScoreET,
		AwayScoreET:     entry.AwayScoreET,
		PenaltiesWinner: entry.PenaltiesWinner,
	}

	if phase == models.PhaseGroup {
		if draft.HomeScoreET != nil || draft.AwayScoreET != nil || draft.PenaltiesWinner != nil {
			return nil, ErrPredictionExtraNotAllowed
		}
		if draft.HomeScore == nil || draft.AwayScore == nil {
			return nil, ErrPredictionNotSubmittable
		}
	} else {
		state, normalized := predictions.Evaluate(draft)
		if !state.Submittable() {
			if state == predictions.StateAwaitingExtraTime && draft.HomeScoreET != nil && draft.AwayScoreET != nil {
				return nil, ErrPredictionExtraTimeInvalid
			}
			return nil, ErrPredictionNotSubmittable
		}
		draft = normalized
	}

	stored.HomeScore = draft.HomeScore
	stored.AwayScore = draft.AwayScore
	stored.HomeScoreET = draft.HomeScoreET
	stored.AwayScoreET = draft.AwayScoreET
	stored.PenaltiesWinner = draft.PenaltiesWinner
	return stored, nil
}

func validateScoreRange(scores ...*int) error {
	for _, score := range scores {
		if score != nil && (*score < 0 || *score > maxScore) {
			return ErrPredictionScoreInvalid
		}
	}
	return nil
}
