package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/markazhub/markaz/core/student"
)

type studentRepository struct {
	db *studentTable
}

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		students = append(students, *s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students
}

func (repo *studentRepository) CheckNISUniqueness(ctx context.Context, nis string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, std := range repo.db.table {
		if std.NIS == nis {
			return student.ErrNISExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if std, ok := repo.db.table[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByNIS(ctx context.Context, nis string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, std := range repo.db.table {
		if std.NIS == nis {
			return *std, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0)
	for _, std := range repo.query() {
		if !matchStudent(std, filter) {
			continue
		}
		students = append(students, std)
	}
	return students, nil
}

func matchStudent(std student.Student, filter student.QueryFilter) bool {
	if filter.Search != "" {
		s := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(std.Name), s) &&
			!strings.Contains(strings.ToLower(std.NIS), s) {
			return false
		}
	}
	if filter.BranchID != "" && std.BranchID != filter.BranchID {
		return false
	}
	if filter.SubBranchID != "" && std.SubBranchID != filter.SubBranchID {
		return false
	}
	if filter.ClassID != "" && !std.IsEnrolledIn(filter.ClassID) {
		return false
	}
	if filter.Status != "" && std.Status != filter.Status {
		return false
	}
	return true
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	existing, ok := repo.db.table[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if std.NIS != "" {
		existing.NIS = std.NIS
	}
	if std.Name != "" {
		existing.Name = std.Name
	}
	if std.BranchID != "" {
		existing.BranchID = std.BranchID
	}
	if std.SubBranchID != "" {
		existing.SubBranchID = std.SubBranchID
	}
	if std.Status != "" {
		existing.Status = std.Status
	}
	if !std.UpdatedAt.IsZero() {
		existing.UpdatedAt = std.UpdatedAt
	}
	return *existing, nil
}

func (repo *studentRepository) SetStudentClasses(ctx context.Context, id string, classIDs []string) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	existing, ok := repo.db.table[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	existing.ClassIDs = classIDs
	return *existing, nil
}

func (repo *studentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
