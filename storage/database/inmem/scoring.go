package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/markazhub/markaz/core/scoring"
)

type scoringRepository struct {
	db *scoringTable
}

func NewScoringRepository(db *DB) scoring.Repository {
	return &scoringRepository{db: db.scoring}
}

func copySession(sess scoring.Session) scoring.Session {
	scores := make(map[string]scoring.Score, len(sess.PerCategory))
	for cat, sc := range sess.PerCategory {
		scores[cat] = sc
	}
	sess.PerCategory = scores
	return sess
}

func (repo *scoringRepository) GetOrCreateSession(ctx context.Context, studentID, classID, branchYearID string) (scoring.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, sess := range repo.db.table {
		if sess.StudentID == studentID && sess.ClassID == classID && sess.BranchYearID == branchYearID {
			return copySession(*sess), nil
		}
	}
	sess := scoring.Session{
		ID:           uuid.New().String(),
		StudentID:    studentID,
		ClassID:      classID,
		BranchYearID: branchYearID,
		PerCategory:  make(map[string]scoring.Score),
		HolderID:     scoring.HolderUnheld,
	}
	repo.db.table[sess.ID] = &sess
	return copySession(sess), nil
}

func (repo *scoringRepository) GetSessionByStudent(ctx context.Context, studentID string) (scoring.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, sess := range repo.db.table {
		if sess.StudentID == studentID {
			return copySession(*sess), nil
		}
	}
	return scoring.Session{}, scoring.ErrNotFound
}

func (repo *scoringRepository) PatchHolder(ctx context.Context, sessionID, holderID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sess, ok := repo.db.table[sessionID]
	if !ok {
		return scoring.ErrNotFound
	}
	sess.HolderID = holderID // last writer wins
	return nil
}

func (repo *scoringRepository) PatchCategory(ctx context.Context, sessionID, category string, sc scoring.Score) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sess, ok := repo.db.table[sessionID]
	if !ok {
		return scoring.ErrNotFound
	}
	if sess.PerCategory == nil {
		sess.PerCategory = make(map[string]scoring.Score)
	}
	sess.PerCategory[category] = sc
	return nil
}
