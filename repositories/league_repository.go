package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/porraza/porraza-server/models"
)

var (
	ErrLeagueNotFound           = errors.New("league not found")
	ErrLeagueNameConflict       = errors.New("league name is already in use")
	ErrLeagueMembershipConflict = errors.New("user is already a member of this league")
)

type LeagueRepository interface {
	Create(ctx context.Context, exec SQLExecutor, league *models.League) error
	GetByID(ctx context.Context, id int) (*models.League, error)
	GetByJoinCode(ctx context.Context, code string) (*models.League, error)
	AddMember(ctx context.Context, exec SQLExecutor, leagueID, userID int) error
	IsMember(ctx context.Context, leagueID, userID int) (bool, error)
	ListByUser(ctx context.Context, userID int) ([]*models.League, error)
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

func (r *postgresLeagueRepository) Create(ctx context.Context, exec SQLExecutor, league *models.League) error {
	query := `
		INSERT INTO leagues (name, join_code, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query, league.Name, league.JoinCode, league.OwnerID).
		Scan(&league.ID, &league.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrLeagueNameConflict
		}
		return fmt.Errorf("failed to create league: %w", err)
	}
	return nil
}

func (r *postgresLeagueRepository) GetByID(ctx context.Context, id int) (*models.League, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *postgresLeagueRepository) GetByJoinCode(ctx context.Context, code string) (*models.League, error) {
	return r.getBy(ctx, "join_code = $1", code)
}

func (r *postgresLeagueRepository) getBy(ctx context.Context, where string, arg interface{}) (*models.League, error) {
	query := `
		SELECT id, name, join_code, owner_id, created_at
		FROM leagues
		WHERE ` + where

	league := &models.League{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&league.ID,
		&league.Name,
		&league.JoinCode,
		&league.OwnerID,
		&league.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to scan league: %w", err)
	}
	return league, nil
}

func (r *postgresLeagueRepository) AddMember(ctx context.Context, exec SQLExecutor, leagueID, userID int) error {
	query := `INSERT INTO league_members (league_id, user_id) VALUES ($1, $2)`
	if _, err := exec.ExecContext(ctx, query, leagueID, userID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return ErrLeagueMembershipConflict
			case "23503":
				return ErrLeagueNotFound
			}
		}
		return fmt.Errorf("failed to add league member: %w", err)
	}
	return nil
}

func (r *postgresLeagueRepository) IsMember(ctx context.Context, leagueID, userID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM league_members WHERE league_id = $1 AND user_id = $2)`,
		leagueID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check league membership: %w", err)
	}
	return exists, nil
}

func (r *postgresLeagueRepository) ListByUser(ctx context.Context, userID int) ([]*models.League, error) {
	query := `
		SELECT l.id, l.name, l.join_code, l.owner_id, l.created_at,
		       (SELECT count(*) FROM league_members lm2 WHERE lm2.league_id = l.id)
		FROM leagues l
		JOIN league_members lm ON lm.league_id = l.id
		WHERE lm.user_id = $1
		ORDER BY l.created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues for user %d: %w", userID, err)
	}
	defer rows.Close()

	var leagues []*models.League
	for rows.Next() {
		league := &models.League{}
		if err := rows.Scan(
			&league.ID,
			&league.Name,
			&league.JoinCode,
			&league.OwnerID,
			&league.CreatedAt,
			&league.MemberCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan league row: %w", err)
		}
		leagues = append(leagues, league)
	}
	return leagues, rows.Err()
}
