package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/porraza/porraza-server/models"
)

var ErrPredictionNotFound = errors.New("prediction not found")

type PredictionRepository interface {
	// EnsureForPhase creates empty prediction rows for every match of
	// the phase the user does not have one for yet, so the form always
	// has a backing prediction ID to write to.
	EnsureForPhase(ctx context.Context, userID int, phase models.MatchPhase) error
	GetByID(ctx context.Context, id int) (*models.Prediction, error)
	ListByUserAndPhase(ctx context.Context, userID int, phase models.MatchPhase) ([]*models.Prediction, error)
	ListKnockoutByUser(ctx context.Context, userID int) ([]*models.Prediction, error)
	ListByMatch(ctx context.Context, matchID int) ([]*models.Prediction, error)
	UpdateScores(ctx context.Context, exec SQLExecutor, p *models.Prediction) error
	SetPoints(ctx context.Context, exec SQLExecutor, id int, points int) error
}

type postgresPredictionRepository struct {
	db *sql.DB
}

func NewPostgresPredictionRepository(db *sql.DB) PredictionRepository {
	return &postgresPredictionRepository{db: db}
}

const predictionColumns = `
	id, user_id, match_id, home_score, away_score,
	home_score_et, away_score_et, penalties_winner, points, created_at, updated_at`

func (r *postgresPredictionRepository) EnsureForPhase(ctx context.Context, userID int, phase models.MatchPhase) error {
	query := `
		INSERT INTO predictions (user_id, match_id)
		SELECT $1, m.id FROM matches m WHERE m.phase = $2
		ON CONFLICT (user_id, match_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, phase); err != nil {
		return fmt.Errorf("failed to seed predictions for user %d phase %s: %w", userID, phase, err)
	}
	return nil
}

func (r *postgresPredictionRepository) GetByID(ctx context.Context, id int) (*models.Prediction, error) {
	query := `SELECT` + predictionColumns + ` FROM predictions WHERE id = $1`

	p, err := scanPrediction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPredictionNotFound
		}
		return nil, fmt.Errorf("failed to scan prediction by id %d: %w", id, err)
	}
	return p, nil
}

func (r *postgresPredictionRepository) ListByUserAndPhase(ctx context.Context, userID int, phase models.MatchPhase) ([]*models.Prediction, error) {
	query := `
		SELECT` + prefixedPredictionColumns() + `
		FROM predictions p
		JOIN matches m ON m.id = p.match_id
		WHERE p.user_id = $1 AND m.phase = $2
		ORDER BY m.kickoff_time, m.id`

	return r.queryPredictions(ctx, query, userID, phase)
}

func (r *postgresPredictionRepository) ListKnockoutByUser(ctx context.Context, userID int) ([]*models.Prediction, error) {
	query := `
		SELECT` + prefixedPredictionColumns() + `
		FROM predictions p
		JOIN matches m ON m.id = p.match_id
		WHERE p.user_id = $1 AND m.phase != $2
		ORDER BY m.kickoff_time, m.id`

	return r.queryPredictions(ctx, query, userID, models.PhaseGroup)
}

func (r *postgresPredictionRepository) ListByMatch(ctx context.Context, matchID int) ([]*models.Prediction, error) {
	query := `SELECT` + predictionColumns + ` FROM predictions WHERE match_id = $1`
	return r.queryPredictions(ctx, query, matchID)
}

func (r *postgresPredictionRepository) UpdateScores(ctx context.Context, exec SQLExecutor, p *models.Prediction) error {
	query := `
		UPDATE predictions
		SET home_score = $1, away_score = $2, home_score_et = $3, away_score_et = $4,
		    penalties_winner = $5, updated_at = now()
		WHERE id = $6 AND user_id = $7`

	result, err := exec.ExecContext(ctx, query,
		p.HomeScore,
		p.AwayScore,
		p.HomeScoreET,
		p.AwayScoreET,
		p.PenaltiesWinner,
		p.ID,
		p.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update prediction %d: %w", p.ID, err)
	}
	return checkAffectedRows(result, ErrPredictionNotFound)
}

func (r *postgresPredictionRepository) SetPoints(ctx context.Context, exec SQLExecutor, id int, points int) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE predictions SET points = $1 WHERE id = $2`, points, id)
	if err != nil {
		return fmt.Errorf("failed to set points on prediction %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPredictionNotFound)
}

func (r *postgresPredictionRepository) queryPredictions(ctx context.Context, query string, args ...interface{}) ([]*models.Prediction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var result []*models.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction row: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func prefixedPredictionColumns() string {
	return `
	p.id, p.user_id, p.match_id, p.home_score, p.away_score,
	p.home_score_et, p.away_score_et, p.penalties_winner, p.points, p.created_at, p.updated_at`
}

func scanPrediction(row rowScanner) (*models.Prediction, error) {
	p := &models.Prediction{}
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.MatchID,
		&p.HomeScore,
		&p.AwayScore,
		&p.HomeScoreET,
		&p.AwayScoreET,
		&p.PenaltiesWinner,
		&p.Points,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
