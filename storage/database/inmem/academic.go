package inmemdb

import (
	"context"
	"sort"

	"github.com/markazhub/markaz/core/academic"
)

type academicRepository struct {
	db *academicTables
}

func NewAcademicRepository(db *DB) academic.Repository {
	return &academicRepository{db: db.academic}
}

func (repo *academicRepository) CreateBranch(ctx context.Context, br academic.Branch) (academic.Branch, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.branches[br.ID] = &br
	return br, nil
}

func (repo *academicRepository) GetBranchByID(ctx context.Context, id string) (academic.Branch, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if br, ok := repo.db.branches[id]; ok {
		return *br, nil
	}
	return academic.Branch{}, academic.ErrBranchNotFound
}

func (repo *academicRepository) QueryAllBranches(ctx context.Context) ([]academic.Branch, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	branches := make([]academic.Branch, 0, len(repo.db.branches))
	for _, br := range repo.db.branches {
		branches = append(branches, *br)
	}
	sort.Slice(branches, func(i, j int) bool { return branches[i].Name < branches[j].Name })
	return branches, nil
}

func (repo *academicRepository) CreateBranchYear(ctx context.Context, by academic.BranchYear) (academic.BranchYear, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.branchYears[by.ID] = &by
	return by, nil
}

func (repo *academicRepository) GetBranchYearByID(ctx context.Context, id string) (academic.BranchYear, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if by, ok := repo.db.branchYears[id]; ok {
		return *by, nil
	}
	return academic.BranchYear{}, academic.ErrYearNotFound
}

func (repo *academicRepository) GetActiveBranchYear(ctx context.Context, branchID string) (academic.BranchYear, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, by := range repo.db.branchYears {
		if by.BranchID == branchID && by.Status == academic.YearActive {
			return *by, nil
		}
	}
	return academic.BranchYear{}, academic.ErrYearNotFound
}

func (repo *academicRepository) QueryBranchYears(ctx context.Context, branchID string) ([]academic.BranchYear, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	years := make([]academic.BranchYear, 0)
	for _, by := range repo.db.branchYears {
		if by.BranchID == branchID {
			years = append(years, *by)
		}
	}
	sort.Slice(years, func(i, j int) bool { return years[i].StartsAt.After(years[j].StartsAt) })
	return years, nil
}

func (repo *academicRepository) UpdateBranchYear(ctx context.Context, by academic.BranchYear) (academic.BranchYear, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.branchYears[by.ID]; !ok {
		return academic.BranchYear{}, academic.ErrYearNotFound
	}
	repo.db.branchYears[by.ID] = &by
	return by, nil
}

func (repo *academicRepository) CreateClass(ctx context.Context, cls academic.Class) (academic.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *academicRepository) GetClassByID(ctx context.Context, id string) (academic.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if cls, ok := repo.db.classes[id]; ok {
		return *cls, nil
	}
	return academic.Class{}, academic.ErrClassNotFound
}

func (repo *academicRepository) QueryClasses(ctx context.Context, branchYearID string) ([]academic.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	classes := make([]academic.Class, 0)
	for _, cls := range repo.db.classes {
		if cls.BranchYearID == branchYearID {
			classes = append(classes, *cls)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	return classes, nil
}

func (repo *academicRepository) CreateAttendanceSession(ctx context.Context, as academic.AttendanceSession) (academic.AttendanceSession, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.attendanceSessions[as.ID] = &as
	return as, nil
}

func (repo *academicRepository) GetAttendanceSessionByID(ctx context.Context, id string) (academic.AttendanceSession, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if as, ok := repo.db.attendanceSessions[id]; ok {
		return *as, nil
	}
	return academic.AttendanceSession{}, academic.ErrSessionNotFound
}

func (repo *academicRepository) UpsertAttendanceRecord(ctx context.Context, rec academic.AttendanceRecord) (academic.AttendanceRecord, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := rec.SessionID + "/" + rec.StudentID
	if existing, ok := repo.db.attendanceRecords[key]; ok {
		return *existing, nil // first scan wins
	}
	repo.db.attendanceRecords[key] = &rec
	return rec, nil
}

func (repo *academicRepository) QueryAttendanceRecords(ctx context.Context, sessionID string) ([]academic.AttendanceRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	records := make([]academic.AttendanceRecord, 0)
	for _, rec := range repo.db.attendanceRecords {
		if rec.SessionID == sessionID {
			records = append(records, *rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ScannedAt.Before(records[j].ScannedAt) })
	return records, nil
}
