package scoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/markazhub/markaz/core"
)

var (
	// errors
	ErrNotFound     = errors.New("scoring session not found")
	ErrLockConflict = errors.New("another munaqisy is scoring this student")
	ErrNotLoaded    = errors.New("no scoring session loaded")
	ErrBadCategory  = errors.New("unknown score category")
)

type (
	Repository interface {
		// GetOrCreateSession returns the student's session for the given
		// class/year, creating an unheld one on first access.
		GetOrCreateSession(ctx context.Context, studentID, classID, branchYearID string) (Session, error)
		GetSessionByStudent(ctx context.Context, studentID string) (Session, error)
		// PatchHolder overwrites the exclusivity holder. Last writer wins:
		// there is no compare-and-swap, which leaves a claim race open (see
		// Workflow.Load).
		PatchHolder(ctx context.Context, sessionID, holderID string) error
		PatchCategory(ctx context.Context, sessionID, category string, sc Score) error
	}

	// Workflow drives one examiner's pass over students: scan, load, score
	// category by category, finish, back to the scanner. Not safe for use
	// by multiple examiners; each examiner owns a Workflow.
	Workflow struct {
		mu         sync.Mutex
		repo       Repository
		logger     core.Logger
		examinerID string

		state State
		sess  Session
	}
)

func NewWorkflow(repo Repository, logger core.Logger, examinerID string) *Workflow {
	return &Workflow{
		repo:       repo,
		logger:     logger,
		examinerID: examinerID,
		state:      StateIdle,
	}
}

func (wf *Workflow) State() State {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	return wf.state
}

// Session returns a snapshot of the local (cached) session copy.
func (wf *Workflow) Session() Session {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	return wf.snapshotLocked()
}

func (wf *Workflow) snapshotLocked() Session {
	sess := wf.sess
	sess.PerCategory = make(map[string]Score, len(wf.sess.PerCategory))
	for k, v := range wf.sess.PerCategory {
		sess.PerCategory[k] = v
	}
	return sess
}

// Load fetches (or creates) the student's session and, when unheld,
// immediately claims it for this examiner through the same patch channel
// used for score updates. The claim is cooperative check-then-act: two
// examiners loading simultaneously can both pass the check, and the last
// patch wins. If another examiner already holds the session, Load returns
// ErrLockConflict and the caller must send the examiner back to the scanner.
func (wf *Workflow) Load(ctx context.Context, studentID, classID, branchYearID string) (Session, error) {
	wf.mu.Lock()
	defer wf.mu.Unlock()

	wf.state = StateLoading
	sess, err := wf.repo.GetOrCreateSession(ctx, studentID, classID, branchYearID)
	if err != nil {
		wf.state = StateIdle
		return Session{}, errors.Wrap(err, "loading scoring session")
	}

	if sess.Unheld() {
		// optimistic claim
		if err = wf.repo.PatchHolder(ctx, sess.ID, wf.examinerID); err != nil {
			wf.state = StateIdle
			return Session{}, errors.Wrap(err, "claiming scoring session")
		}
		sess.HolderID = wf.examinerID
	} else if !sess.HeldBy(wf.examinerID) {
		wf.state = StateLockConflict
		return Session{}, ErrLockConflict
	}

	if sess.PerCategory == nil {
		sess.PerCategory = make(map[string]Score)
	}
	wf.sess = sess
	wf.state = StateLoaded
	return wf.snapshotLocked(), nil
}

// SubmitCategory merges the score into the local copy first (optimistic)
// and then persists it. A failed persist is logged and reported but the
// local merge is kept: there is no rollback, so the cached copy can show
// a score that never saved.
func (wf *Workflow) SubmitCategory(ctx context.Context, category string, score int) error {
	wf.mu.Lock()
	defer wf.mu.Unlock()

	if wf.state != StateLoaded {
		return ErrNotLoaded
	}
	if !validCategory(category) {
		return ErrBadCategory
	}

	sc := Score{
		Score:      score,
		ExaminerID: wf.examinerID,
		Timestamp:  time.Now().UTC(),
	}
	wf.sess.PerCategory[category] = sc

	if err := wf.repo.PatchCategory(ctx, wf.sess.ID, category, sc); err != nil {
		wf.logger.Error(fmt.Sprintf("persisting %s score for student %s: %v", category, wf.sess.StudentID, err), err)
		return errors.Wrap(err, "persisting category score")
	}
	return nil
}

// Finish releases the session by patching the holder back to the unheld
// sentinel and returns the workflow to the scanner (idle).
func (wf *Workflow) Finish(ctx context.Context) error {
	wf.mu.Lock()
	defer wf.mu.Unlock()

	if wf.state != StateLoaded {
		return ErrNotLoaded
	}

	wf.state = StateSubmitting
	if err := wf.repo.PatchHolder(ctx, wf.sess.ID, HolderUnheld); err != nil {
		wf.state = StateLoaded
		return errors.Wrap(err, "releasing scoring session")
	}

	wf.sess = Session{}
	wf.state = StateIdle
	return nil
}

func validCategory(category string) bool {
	for _, c := range AllCategories {
		if c == category {
			return true
		}
	}
	return false
}
