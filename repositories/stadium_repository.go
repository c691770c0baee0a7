package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/porraza/porraza-server/models"
)

var ErrStadiumNotFound = errors.New("stadium not found")

type StadiumRepository interface {
	Create(ctx context.Context, stadium *models.Stadium) error
	GetByID(ctx context.Context, id int) (*models.Stadium, error)
	List(ctx context.Context) ([]*models.Stadium, error)
	UpdatePhotoKey(ctx context.Context, id int, key *string) error
}

type postgresStadiumRepository struct {
	db *sql.DB
}

func NewPostgresStadiumRepository(db *sql.DB) StadiumRepository {
	return &postgresStadiumRepository{db: db}
}

func (r *postgresStadiumRepository) Create(ctx context.Context, stadium *models.Stadium) error {
	query := `
		INSERT INTO stadiums (name, city, capacity)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, stadium.Name, stadium.City, stadium.Capacity).
		Scan(&stadium.ID, &stadium.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create stadium: %w", err)
	}
	return nil
}

func (r *postgresStadiumRepository) GetByID(ctx context.Context, id int) (*models.Stadium, error) {
	query := `
		SELECT id, name, city, capacity, photo_key, created_at
		FROM stadiums
		WHERE id = $1`

	stadium := &models.Stadium{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&stadium.ID,
		&stadium.Name,
		&stadium.City,
		&stadium.Capacity,
		&stadium.PhotoKey,
		&stadium.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStadiumNotFound
		}
		return nil, fmt.Errorf("failed to scan stadium by id %d: %w", id, err)
	}
	return stadium, nil
}

func (r *postgresStadiumRepository) List(ctx context.Context) ([]*models.Stadium, error) {
	query := `
		SELECT id, name, city, capacity, photo_key, created_at
		FROM stadiums
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stadiums: %w", err)
	}
	defer rows.Close()

	var stadiums []*models.Stadium
	for rows.Next() {
		stadium := &models.Stadium{}
		if err := rows.Scan(
			&stadium.ID,
			&stadium.Name,
			&stadium.City,
			&stadium.Capacity,
			&stadium.PhotoKey,
			&stadium.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stadium row: %w", err)
		}
		stadiums = append(stadiums, stadium)
	}
	return stadiums, rows.Err()
}

func (r *postgresStadiumRepository) UpdatePhotoKey(ctx context.Context, id int, key *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE stadiums SET photo_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("failed to update stadium photo: %w", err)
	}
	return checkAffectedRows(result, ErrStadiumNotFound)
}
