package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/porraza/porraza-server/models"
	"github.com/porraza/porraza-server/repositories"
)

const joinCodeLength = 8

type LeagueService interface {
	Create(ctx context.Context, ownerID int, name string) (*models.League, error)
	Join(ctx context.Context, userID int, joinCode string) (*models.League, error)
	ListMine(ctx context.Context, userID int) ([]*models.League, error)
	Leaderboard(ctx context.Context, leagueID, userID int) ([]*models.Standing, error)
}

type leagueService struct {
	db           *sql.DB
	leagueRepo   repositories.LeagueRepository
	standingRepo repositories.StandingRepository
}

func NewLeagueService(
	db *sql.DB,
	leagueRepo repositories.LeagueRepository,
	standingRepo repositories.StandingRepository,
) LeagueService {
	return &leagueService{
		db:           db,
		leagueRepo:   leagueRepo,
		standingRepo: standingRepo,
	}
}

func (s *leagueService) Create(ctx context.Context, ownerID int, name string) (*models.League, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrLeagueNameRequired
	}

	league := &models.League{
		Name:     name,
		JoinCode: generateRandomToken(joinCodeLength),
		OwnerID:  ownerID,
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

	if txErr = s.leagueRepo.Create(ctx, tx, league); txErr != nil {
		if errors.Is(txErr, repositories.ErrLeagueNameConflict) {
			return nil, ErrLeagueNameConflict
		}
		return nil, txErr
	}
	if txErr = s.leagueRepo.AddMember(ctx, tx, league.ID, ownerID); txErr != nil {
		return nil, txErr
	}
	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit league creation: %w", txErr)
	}

	league.MemberCount = 1
	return league, nil
}

func (s *leagueService) Join(ctx context.Context, userID int, joinCode string) (*models.League, error) {
	joinCode = strings.TrimSpace(joinCode)
	if joinCode == "" {
		return nil, ErrLeagueCodeInvalid
	}

	league, err := s.leagueRepo.GetByJoinCode(ctx, joinCode)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueCodeInvalid
		}
		return nil, err
	}

	if err := s.leagueRepo.AddMember(ctx, s.db, league.ID, userID); err != nil {
		if errors.Is(err, repositories.ErrLeagueMembershipConflict) {
			return nil, ErrLeagueMembershipConflict
		}
		return nil, err
	}
	return league, nil
}

func (s *leagueService) ListMine(ctx context.Context, userID int) ([]*models.League, error) {
	return s.leagueRepo.ListByUser(ctx, userID)
}

func (s *leagueService) Leaderboard(ctx context.Context, leagueID, userID int) ([]*models.Standing, error) {
	member, err := s.leagueRepo.IsMember(ctx, leagueID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrForbiddenOperation
	}
	return s.standingRepo.ListByLeague(ctx, leagueID)
}
