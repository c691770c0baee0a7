package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/porraza/porraza-server/models"
	"github.com/porraza/porraza-server/repositories"
)

// recordingConn is a minimal database/sql driver connection that only
// supports transactions and counts what happens to them, so service
// tests can assert commit/rollback behavior without a database.
type recordingConn struct {
	begins    int
	commits   int
	rollbacks int
}

func (c *recordingConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("statements not supported")
}

func (c *recordingConn) Close() error { return nil }

func (c *recordingConn) Begin() (driver.Tx, error) {
	c.begins++
	return &recordingTx{conn: c}, nil
}

type recordingTx struct{ conn *recordingConn }

func (t *recordingTx) Commit() error   { t.conn.commits++; return nil }
func (t *recordingTx) Rollback() error { t.conn.rollbacks++; return nil }

type recordingDriver struct{ conn *recordingConn }

func (d *recordingDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

var testDriver = &recordingDriver{}

func init() { sql.Register("servicetest", testDriver) }

func openRecordingDB(t *testing.T, conn *recordingConn) *sql.DB {
	t.Helper()
	testDriver.conn = conn
	db, err := sql.Open("servicetest", "")
	if err != nil {
		t.Fatalf("failed to open recording db: %v", err)
	}
	return db
}

type fakePredictionRepo struct {
	repositories.PredictionRepository
	byID map[int]*models.Prediction

	// updated collects successful UpdateScores calls; failUpdateAt
	// makes the Nth call fail.
	updated      []*models.Prediction
	failUpdateAt int
}

func (f *fakePredictionRepo) GetByID(_ context.Context, id int) (*models.Prediction, error) {
	if p, ok := f.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repositories.ErrPredictionNotFound
}

func (f *fakePredictionRepo) UpdateScores(_ context.Context, _ repositories.SQLExecutor, p *models.Prediction) error {
	if f.failUpdateAt > 0 && len(f.updated)+1 == f.failUpdateAt {
		return errors.New("update failed")
	}
	f.updated = append(f.updated, p)
	return nil
}

type fakeMatchRepo struct {
	repositories.MatchRepository
	byID map[int]*models.Match
}

func (f *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	if m, ok := f.byID[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, repositories.ErrMatchNotFound
}

func ip(v int) *int { return &v }

func sp(s models.Side) *models.Side { return &s }

func newFixtureService() (*predictionService, time.Time) {
	now := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)
	open := now.Add(24 * time.Hour)
	locked := now.Add(-time.Hour)

	matches := map[int]*models.Match{
		1: {ID: 1, Phase: models.PhaseGroup, KickoffTime: open, LocksAt: open},
		2: {ID: 2, Phase: models.PhaseRoundOf32, KickoffTime: open, LocksAt: open},
		3: {ID: 3, Phase: models.PhaseRoundOf32, KickoffTime: locked, LocksAt: locked},
	}
	preds := map[int]*models.Prediction{
		10: {ID: 10, UserID: 7, MatchID: 1},
		20: {ID: 20, UserID: 7, MatchID: 2},
		21: {ID: 21, UserID: 7, MatchID: 2},
		30: {ID: 30, UserID: 7, MatchID: 3},
		40: {ID: 40, UserID: 9, MatchID: 2},
	}

	svc := &predictionService{
		predictionRepo: &fakePredictionRepo{byID: preds},
		matchRepo:      &fakeMatchRepo{byID: matches},
		now:            func() time.Time { return now },
	}
	return svc, now
}

func TestValidateEntry_MissingIDAborts(t *testing.T) {
	svc, now := newFixtureService()
	_, err := svc.validateEntry(context.Background(), 7, models.PhaseGroup,
		PredictionEntry{HomeScore: ip(1), AwayScore: ip(0)}, now)
	if !errors.Is(err, ErrPredictionIDRequired) {
		t.Fatalf("expected ErrPredictionIDRequired, got %v", err)
	}
}

func TestValidateEntry_ForeignPredictionForbidden(t *testing.T) {
	svc, now := newFixtureService()
	_, err := svc.validateEntry(context.Background(), 7, models.PhaseRoundOf32,
		PredictionEntry{ID: ip(40), HomeScore: ip(1), AwayScore: ip(0)}, now)
	if !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("expected ErrForbiddenOperation, got %v", err)
	}
}

func TestValidateEntry_LockedMatchRejected(t *testing.T) {
	svc, now := newFixtureService()
	_, err := svc.validateEntry(context.Background(), 7, models.PhaseRoundOf32,
		PredictionEntry{ID: ip(30), HomeScore: ip(1), AwayScore: ip(0)}, now)
	if !errors.Is(err, ErrPredictionLocked) {
		t.Fatalf("expected ErrPredictionLocked, got %v", err)
	}
}

func TestValidateEntry_PhaseMismatch(t *testing.T) {
	svc, now := newFixtureService()
	_, err := svc.validateEntry(context.Background(), 7, models.PhaseGroup,
		PredictionEntry{ID: ip(20), HomeScore: ip(1), AwayScore: ip(0)}, now)
	if !errors.Is(err, ErrPredictionPhaseMismatch) {
		t.Fatalf("expected ErrPredictionPhaseMismatch, got %v", err)
	}
}

func TestValidateEntry_GroupStageRejectsExtraFields(t *testing.T) {
	svc, now := newFixtureService()
	_, err := svc.validateEntry(context.Background(), 7, models.PhaseGroup,
		PredictionEntry{ID: ip(10), HomeScore: ip(1), AwayScore: ip(1), HomeScoreET: ip(2)}, now)
	if !errors.Is(err, ErrPredictionExtraNotAllowed) {
		t.Fatalf("expected ErrPredictionExtraNotAllowed, got %v", err)
	}
}

func TestValidateEntry_GroupStageDrawAllowed(t *testing.T) {
	svc, now := newFixtureService()
	p, err := svc.validateEntry(context.Background(), 7, models.PhaseGroup,
		PredictionEntry{ID: ip(10), HomeScore: ip(2), AwayScore: ip(2)}, now)
	if err != nil {
		t.Fatalf("group-stage draw should be valid: %v", err)
	}
	if p.HomeScore == nil || *p.HomeScore != 2 {
		t.Fatalf("scores not carried over: %+v", p)
	}
}

func TestValidateEntry_KnockoutTieWithoutExtraTimeBlocked(t *testing.T) {
	svc, now := newFixtureService()
	_, err := svc.validateEntry(context.Background(), 7, models.PhaseRoundOf32,
		PredictionEntry{ID: ip(20), HomeScore: ip(1), AwayScore: ip(1)}, now)
	if !errors.Is(err, ErrPredictionNotSubmittable) {
		t.Fatalf("expected ErrPredictionNotSubmittable, got %v", err)
	}
}

func TestValidateEntry_KnockoutExtraTimeBelowRegular(t *testing.T) {
	svc, now := newFixtureService()
	_, err := svc.validateEntry(context.Background(), 7, models.PhaseRoundOf32,
		PredictionEntry{ID: ip(20), HomeScore: ip(2), AwayScore: ip(2), HomeScoreET: ip(1), AwayScoreET: ip(3)}, now)
	if !errors.Is(err, ErrPredictionExtraTimeInvalid) {
		t.Fatalf("expected ErrPredictionExtraTimeInvalid, got %v", err)
	}
}

func TestValidateEntry_KnockoutNormalizesStaleExtras(t *testing.T) {
	// A decisive regular-time score with leftovers from an earlier tie:
	// the leftovers must be dropped, not persisted.
	svc, now := newFixtureService()
	p, err := svc.validateEntry(context.Background(), 7, models.PhaseRoundOf32,
		PredictionEntry{
			ID:              ip(20),
			HomeScore:       ip(2),
			AwayScore:       ip(0),
			HomeScoreET:     ip(2),
			AwayScoreET:     ip(2),
			PenaltiesWinner: sp(models.SideAway),
		}, now)
	if err != nil {
		t.Fatalf("decisive draft should be valid: %v", err)
	}
	if p.HomeScoreET != nil || p.AwayScoreET != nil || p.PenaltiesWinner != nil {
		t.Fatalf("stale extras must be cleared before persisting: %+v", p)
	}
}

func TestSavePredictions_CommitsBatch(t *testing.T) {
	svc, _ := newFixtureService()
	conn := &recordingConn{}
	svc.db = openRecordingDB(t, conn)
	repo := svc.predictionRepo.(*fakePredictionRepo)

	saved, err := svc.SavePredictions(context.Background(), 7, models.PhaseRoundOf32, []PredictionEntry{
		{ID: ip(20), HomeScore: ip(2), AwayScore: ip(0)},
		{ID: ip(21), HomeScore: ip(1), AwayScore: ip(3)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(saved) != 2 || len(repo.updated) != 2 {
		t.Fatalf("expected both entries written, got saved=%d updated=%d", len(saved), len(repo.updated))
	}
	if conn.commits != 1 || conn.rollbacks != 0 {
		t.Fatalf("expected one commit and no rollback, got commits=%d rollbacks=%d", conn.commits, conn.rollbacks)
	}
}

func TestSavePredictions_RollsBackOnMidBatchFailure(t *testing.T) {
	svc, _ := newFixtureService()
	conn := &recordingConn{}
	svc.db = openRecordingDB(t, conn)
	repo := svc.predictionRepo.(*fakePredictionRepo)
	repo.failUpdateAt = 2

	_, err := svc.SavePredictions(context.Background(), 7, models.PhaseRoundOf32, []PredictionEntry{
		{ID: ip(20), HomeScore: ip(2), AwayScore: ip(0)},
		{ID: ip(21), HomeScore: ip(1), AwayScore: ip(3)},
	})
	if err == nil {
		t.Fatal("expected the batch to fail on the second entry")
	}
	if conn.commits != 0 || conn.rollbacks != 1 {
		t.Fatalf("expected a rollback and no commit, got commits=%d rollbacks=%d", conn.commits, conn.rollbacks)
	}
}

func TestValidateEntry_ScoreRange(t *testing.T) {
	svc, now := newFixtureService()
	_, err := svc.validateEntry(context.Background(), 7, models.PhaseGroup,
		PredictionEntry{ID: ip(10), HomeScore: ip(-1), AwayScore: ip(0)}, now)
	if !errors.Is(err, ErrPredictionScoreInvalid) {
		t.Fatalf("expected ErrPredictionScoreInvalid, got %v", err)
	}
	_, err = svc.validateEntry(context.Background(), 7, models.PhaseGroup,
		PredictionEntry{ID: ip(10), HomeScore: ip(100), AwayScore: ip(0)}, now)
	if !errors.Is(err, ErrPredictionScoreInvalid) {
		t.Fatalf("expected ErrPredictionScoreInvalid, got %v", err)
	}
}
