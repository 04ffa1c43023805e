package student

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/markazhub/markaz/core"
)

var (
	// errors
	ErrNotFound   = errors.New("student not found")
	ErrNISExists  = errors.New("a student with this NIS already exists")
	ErrNotInClass = errors.New("student is not enrolled in this class")
)

type (
	Repository interface {
		CheckNISUniqueness(ctx context.Context, nis string) error
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		GetStudentByNIS(ctx context.Context, nis string) (Student, error)
		// FilterStudents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Student.Name or Student.NIS.
		FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		SetStudentClasses(ctx context.Context, id string, classIDs []string) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids ...string) error
	}

	ServiceInterface interface {
		CheckNISUniqueness(nis string) error
		Register(ctx context.Context, ns NewStudent) (Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		GetByNIS(ctx context.Context, nis string) (Student, error)
		Filter(ctx context.Context, filter QueryFilter) ([]Student, error)
		Update(ctx context.Context, id string, us UpdateStudent) (Student, error)
		Enroll(ctx context.Context, id, classID string) (Student, error)
		Unenroll(ctx context.Context, id, classID string) (Student, error)
		Delete(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckNISUniqueness(nis string) error {
	if err := svc.repo.CheckNISUniqueness(context.Background(), nis); err != nil {
		if errors.Cause(err) == ErrNISExists {
			return core.NewValidationError(err, core.FieldError{Field: "nis", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Register(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	std := Student{
		ID:          uuid.New().String(),
		NIS:         ns.NIS,
		Name:        ns.Name,
		BranchID:    ns.BranchID,
		SubBranchID: ns.SubBranchID,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetByNIS(ctx context.Context, nis string) (Student, error) {
	return svc.repo.GetStudentByNIS(ctx, core.CleanNIS(nis))
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Student, error) {
	return svc.repo.FilterStudents(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	std := Student{
		ID:          id,
		Name:        us.Name,
		SubBranchID: us.SubBranchID,
		Status:      us.Status,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *Service) Enroll(ctx context.Context, id, classID string) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if std.IsEnrolledIn(classID) {
		return std, nil // idempotent
	}
	return svc.repo.SetStudentClasses(ctx, id, append(std.ClassIDs, classID))
}

func (svc *Service) Unenroll(ctx context.Context, id, classID string) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if !std.IsEnrolledIn(classID) {
		return Student{}, ErrNotInClass
	}
	classIDs := make([]string, 0, len(std.ClassIDs)-1)
	for _, cid := range std.ClassIDs {
		if cid != classID {
			classIDs = append(classIDs, cid)
		}
	}
	return svc.repo.SetStudentClasses(ctx, id, classIDs)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteStudentsByID(ctx, ids...)
}
