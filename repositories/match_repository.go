package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/porraza/porraza-server/models"
)

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchTeamInvalid    = errors.New("match references an unknown team")
	ErrMatchStadiumInvalid = errors.New("match references an unknown stadium")
)

type MatchFilter struct {
	Phase  *models.MatchPhase
	Status *models.MatchStatus
	From   *time.Time
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context, filter MatchFilter) ([]*models.Match, error)
	ListKnockout(ctx context.Context) ([]*models.Match, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
	MarkInProgressDue(ctx context.Context, now time.Time) ([]int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	m.id, m.phase, m.home_team_id, m.away_team_id, m.stadium_id,
	m.kickoff_time, m.locks_at, m.status,
	m.home_score, m.away_score, m.home_score_et, m.away_score_et, m.penalties_winner,
	m.created_at,
	ht.id, ht.name, ht.short_code, ht.group_name, ht.crest_key,
	at.id, at.name, at.short_code, at.group_name, at.crest_key,
	s.id, s.name, s.city, s.capacity, s.photo_key`

const matchJoins = `
	FROM matches m
	LEFT JOIN teams ht ON ht.id = m.home_team_id
	LEFT JOIN teams at ON at.id = m.away_team_id
	LEFT JOIN stadiums s ON s.id = m.stadium_id`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(phase, home_team_id, away_team_id, stadium_id, kickoff_time, locks_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.Phase,
		match.HomeTeamID,
		match.AwayTeamID,
		match.StadiumID,
		match.KickoffTime,
		match.LocksAt,
		match.Status,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + matchJoins + ` WHERE m.id = $1`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, filter MatchFilter) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + matchJoins
	var conditions []string
	var args []interface{}

	if filter.Phase != nil {
		args = append(args, *filter.Phase)
		conditions = append(conditions, fmt.Sprintf("m.phase = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("m.status = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("m.kickoff_time >= $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY m.kickoff_time, m.id"

	return r.queryMatches(ctx, query, args...)
}

// ListKnockout returns every elimination-round fixture ordered for
// bracket assembly: by phase position, then kickoff, then id.
func (r *postgresMatchRepository) ListKnockout(ctx context.Context) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + matchJoins + `
		WHERE m.phase != $1
		ORDER BY
			CASE m.phase
				WHEN 'round_of_32' THEN 1
				WHEN 'round_of_16' THEN 2
				WHEN 'quarter_final' THEN 3
				WHEN 'semi_final' THEN 4
				WHEN 'final' THEN 5
			END,
			m.kickoff_time, m.id`

	return r.queryMatches(ctx, query, models.PhaseGroup)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		UPDATE matches
		SET home_score = $1, away_score = $2, home_score_et = $3, away_score_et = $4,
		    penalties_winner = $5, status = $6
		WHERE id = $7`

	result, err := exec.ExecContext(ctx, query,
		match.HomeScore,
		match.AwayScore,
		match.HomeScoreET,
		match.AwayScoreET,
		match.PenaltiesWinner,
		match.Status,
		match.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update match %d result: %w", match.ID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// MarkInProgressDue flips scheduled matches whose kickoff has passed and
// returns their IDs.
func (r *postgresMatchRepository) MarkInProgressDue(ctx context.Context, now time.Time) ([]int, error) {
	query := `
		UPDATE matches
		SET status = $1
		WHERE status = $2 AND kickoff_time <= $3
		RETURNING id`

	rows, err := r.db.QueryContext(ctx, query, models.MatchStatusInProgress, models.MatchStatusScheduled, now)
	if err != nil {
		return nil, fmt.Errorf("failed to mark due matches in progress: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan due match id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	var (
		htID, atID, sID                   sql.NullInt64
		htName, htCode, atName, atCode    sql.NullString
		htGroup, atGroup, htCrest, atCrest sql.NullString
		sName, sCity, sPhoto              sql.NullString
		sCapacity                         sql.NullInt64
	)

	err := row.Scan(
		&match.ID, &match.Phase, &match.HomeTeamID, &match.AwayTeamID, &match.StadiumID,
		&match.KickoffTime, &match.LocksAt, &match.Status,
		&match.HomeScore, &match.AwayScore, &match.HomeScoreET, &match.AwayScoreET, &match.PenaltiesWinner,
		&match.CreatedAt,
		&htID, &htName, &htCode, &htGroup, &htCrest,
		&atID, &atName, &atCode, &atGroup, &atCrest,
		&sID, &sName, &sCity, &sCapacity, &sPhoto,
	)
	if err != nil {
		return nil, err
	}

	if htID.Valid {
		match.Home = &models.Team{
			ID:        int(htID.Int64),
			Name:      htName.String,
			ShortCode: htCode.String,
			GroupName: nullableString(htGroup),
			CrestKey:  nullableString(htCrest),
		}
	}
	if atID.Valid {
		match.Away = &models.Team{
			ID:        int(atID.Int64),
			Name:      atName.String,
			ShortCode: atCode.String,
			GroupName: nullableString(atGroup),
			CrestKey:  nullableString(atCrest),
		}
	}
	if sID.Valid {
		match.Stadium = &models.Stadium{
			ID:       int(sID.Int64),
			Name:     sName.String,
			City:     sCity.String,
			PhotoKey: nullableString(sPhoto),
		}
		if sCapacity.Valid {
			capacity := int(sCapacity.Int64)
			match.Stadium.Capacity = &capacity
		}
	}

	return match, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		switch {
		case strings.Contains(pqErr.Constraint, "team"):
			return ErrMatchTeamInvalid
		case strings.Contains(pqErr.Constraint, "stadium"):
			return ErrMatchStadiumInvalid
		}
	}
	return fmt.Errorf("match repository error: %w", err)
}
