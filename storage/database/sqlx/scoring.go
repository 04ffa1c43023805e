package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/markazhub/markaz/core/scoring"
)

type (
	scoringSessionRow struct {
		ID           string `db:"id"`
		StudentID    string `db:"student_id"`
		ClassID      string `db:"class_id"`
		BranchYearID string `db:"branch_year_id"`
		HolderID     string `db:"holder_id"`
	}

	scoreRow struct {
		SessionID  string    `db:"session_id"`
		Category   string    `db:"category"`
		Score      int       `db:"score"`
		ExaminerID string    `db:"examiner_id"`
		ScoredAt   time.Time `db:"scored_at"`
	}
)

type scoringRepository struct {
	db *sqlx.DB
}

var _ scoring.Repository = (*scoringRepository)(nil) // interface compliance check

func NewScoringRepository(db *sqlx.DB) *scoringRepository {
	return &scoringRepository{db: db}
}

func (repo scoringRepository) loadScores(ctx context.Context, sess *scoring.Session) error {
	var rows []scoreRow
	query := `SELECT * FROM munaqasyah_score WHERE session_id = $1`
	if err := repo.db.SelectContext(ctx, &rows, query, sess.ID); err != nil {
		return errors.Wrap(err, "loading scores")
	}
	sess.PerCategory = make(map[string]scoring.Score, len(rows))
	for _, r := range rows {
		sess.PerCategory[r.Category] = scoring.Score{
			Score:      r.Score,
			ExaminerID: r.ExaminerID,
			Timestamp:  r.ScoredAt,
		}
	}
	return nil
}

func (repo scoringRepository) GetOrCreateSession(ctx context.Context, studentID, classID, branchYearID string) (scoring.Session, error) {
	query := `
INSERT INTO munaqasyah_session (id, student_id, class_id, branch_year_id, holder_id)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (student_id, class_id, branch_year_id) DO NOTHING`
	_, err := repo.db.ExecContext(ctx, query, uuid.New().String(), studentID, classID, branchYearID, scoring.HolderUnheld)
	if err != nil {
		return scoring.Session{}, errors.Wrap(err, "creating session")
	}

	var r scoringSessionRow
	get := `SELECT * FROM munaqasyah_session WHERE student_id = $1 AND class_id = $2 AND branch_year_id = $3`
	if err = repo.db.GetContext(ctx, &r, get, studentID, classID, branchYearID); err != nil {
		return scoring.Session{}, errors.Wrap(err, "getting session")
	}

	sess := r.unpack()
	if err = repo.loadScores(ctx, &sess); err != nil {
		return scoring.Session{}, err
	}
	return sess, nil
}

func (r scoringSessionRow) unpack() scoring.Session {
	return scoring.Session{
		ID:           r.ID,
		StudentID:    r.StudentID,
		ClassID:      r.ClassID,
		BranchYearID: r.BranchYearID,
		HolderID:     r.HolderID,
	}
}

func (repo scoringRepository) GetSessionByStudent(ctx context.Context, studentID string) (scoring.Session, error) {
	var r scoringSessionRow
	query := `SELECT * FROM munaqasyah_session WHERE student_id = $1 LIMIT 1`
	if err := repo.db.GetContext(ctx, &r, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return scoring.Session{}, scoring.ErrNotFound
		}
		return scoring.Session{}, errors.Wrap(err, "getting session")
	}

	sess := r.unpack()
	if err := repo.loadScores(ctx, &sess); err != nil {
		return scoring.Session{}, err
	}
	return sess, nil
}

func (repo scoringRepository) PatchHolder(ctx context.Context, sessionID, holderID string) error {
	// plain overwrite; concurrent claimants race and the last write sticks
	res, err := repo.db.ExecContext(ctx, `UPDATE munaqasyah_session SET holder_id = $1 WHERE id = $2`, holderID, sessionID)
	if err != nil {
		return errors.Wrap(err, "patching holder")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return scoring.ErrNotFound
	}
	return nil
}

func (repo scoringRepository) PatchCategory(ctx context.Context, sessionID, category string, sc scoring.Score) error {
	query := `
INSERT INTO munaqasyah_score (session_id, category, score, examiner_id, scored_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (session_id, category) DO UPDATE SET
	score = EXCLUDED.score,
	examiner_id = EXCLUDED.examiner_id,
	scored_at = EXCLUDED.scored_at`
	if _, err := repo.db.ExecContext(ctx, query, sessionID, category, sc.Score, sc.ExaminerID, sc.Timestamp.UTC()); err != nil {
		return errors.Wrap(err, "patching category score")
	}
	return nil
}
