package scoring

import "time"

// HolderUnheld is the sentinel meaning no examiner holds the session.
// The holder is released by patching it back to this value; there is no
// separate lock endpoint.
const HolderUnheld = "unheld"

// Munaqasyah score categories.
const (
	CategoryMemorization = "memorization"
	CategoryTajwid       = "tajwid"
	CategoryMakhraj      = "makhraj"
	CategoryFluency      = "fluency"
	CategoryAdab         = "adab"
)

var AllCategories = []string{
	CategoryMemorization,
	CategoryTajwid,
	CategoryMakhraj,
	CategoryFluency,
	CategoryAdab,
}

type (
	// Score is one category's result within a munaqasyah session.
	Score struct {
		Score      int       `json:"score"`
		ExaminerID string    `json:"examiner_id"`
		Timestamp  time.Time `json:"timestamp"`
	}

	// Session is the per-student munaqasyah record. The authoritative copy
	// lives in the repository; a workflow's in-memory copy is a cache that
	// is re-synchronized (patched) on every mutation.
	Session struct {
		ID           string           `json:"id"`
		StudentID    string           `json:"student_id"`
		ClassID      string           `json:"class_id"`
		BranchYearID string           `json:"branch_year_id"`
		PerCategory  map[string]Score `json:"per_category"`
		HolderID     string           `json:"holder_id"`
	}
)

func (s *Session) HeldBy(examinerID string) bool {
	return s.HolderID == examinerID
}

func (s *Session) Unheld() bool {
	return s.HolderID == HolderUnheld || s.HolderID == ""
}

func (s *Session) Total() int {
	var total int
	for _, sc := range s.PerCategory {
		total += sc.Score
	}
	return total
}
