package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/porraza/porraza-server/models"
)

var ErrStandingNotFound = errors.New("standing not found")

type StandingRepository interface {
	// AddPoints accumulates a scored prediction into the user's
	// leaderboard row, creating it on first score.
	AddPoints(ctx context.Context, exec SQLExecutor, userID, points int, exact bool) error
	ListTop(ctx context.Context, limit int) ([]*models.Standing, error)
	ListByLeague(ctx context.Context, leagueID int) ([]*models.Standing, error)
	GetByUser(ctx context.Context, userID int) (*models.Standing, error)
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) AddPoints(ctx context.Context, exec SQLExecutor, userID, points int, exact bool) error {
	exactInc := 0
	if exact {
		exactInc = 1
	}
	query := `
		INSERT INTO standings (user_id, points, exact_scores, predicted, updated_at)
		VALUES ($1, $2, $3, 1, now())
		ON CONFLICT (user_id) DO UPDATE
		SET points = standings.points + EXCLUDED.points,
		    exact_scores = standings.exact_scores + EXCLUDED.exact_scores,
		    predicted = standings.predicted + 1,
		    updated_at = now()`

	if _, err := exec.ExecContext(ctx, query, userID, points, exactInc); err != nil {
		return fmt.Errorf("failed to accumulate standings for user %d: %w", userID, err)
	}
	return nil
}

const standingSelect = `
	SELECT rank() OVER (ORDER BY st.points DESC, st.exact_scores DESC, st.user_id),
	       st.user_id, u.nickname, u.first_name, u.last_name,
	       st.points, st.exact_scores, st.predicted, st.updated_at
	FROM standings st
	JOIN users u ON u.id = st.user_id`

func (r *postgresStandingRepository) ListTop(ctx context.Context, limit int) ([]*models.Standing, error) {
	query := standingSelect + `
		ORDER BY st.points DESC, st.exact_scores DESC, st.user_id
		LIMIT $1`
	return r.queryStandings(ctx, query, limit)
}

func (r *postgresStandingRepository) ListByLeague(ctx context.Context, leagueID int) ([]*models.Standing, error) {
	// Rank within the league, not globally.
	query := `
		SELECT rank() OVER (ORDER BY st.points DESC, st.exact_scores DESC, st.user_id),
		       st.user_id, u.nickname, u.first_name, u.last_name,
		       st.points, st.exact_scores, st.predicted, st.updated_at
		FROM standings st
		JOIN users u ON u.id = st.user_id
		JOIN league_members lm ON lm.user_id = st.user_id
		WHERE lm.league_id = $1
		ORDER BY st.points DESC, st.exact_scores DESC, st.user_id`
	return r.queryStandings(ctx, query, leagueID)
}

func (r *postgresStandingRepository) GetByUser(ctx context.Context, userID int) (*models.Standing, error) {
	query := `
		SELECT ranked.* FROM (` + standingSelect + `) AS ranked(rank, user_id, nickname, first_name, last_name, points, exact_scores, predicted, updated_at)
		WHERE ranked.user_id = $1`

	standing := &models.Standing{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&standing.Rank,
		&standing.UserID,
		&standing.Nickname,
		&standing.FirstName,
		&standing.LastName,
		&standing.Points,
		&standing.ExactScores,
		&standing.Predicted,
		&standing.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, fmt.Errorf("failed to scan standing for user %d: %w", userID, err)
	}
	return standing, nil
}

func (r *postgresStandingRepository) queryStandings(ctx context.Context, query string, args ...interface{}) ([]*models.Standing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings: %w", err)
	}
	defer rows.Close()

	var standings []*models.Standing
	for rows.Next() {
		standing := &models.Standing{}
		if err := rows.Scan(
			&standing.Rank,
			&standing.UserID,
			&standing.Nickname,
			&standing.FirstName,
			&standing.LastName,
			&standing.Points,
			&standing.ExactScores,
			&standing.Predicted,
			&standing.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan standing row: %w", err)
		}
		standings = append(standings, standing)
	}
	return standings, rows.Err()
}
