package academic

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/markazhub/markaz/core"
)

var (
	// errors
	ErrBranchNotFound  = errors.New("branch not found")
	ErrYearNotFound    = errors.New("branch year not found")
	ErrClassNotFound   = errors.New("class not found")
	ErrSessionNotFound = errors.New("attendance session not found")
	ErrYearNotDraft    = errors.New("only a draft year can be activated")
	ErrYearNotActive   = errors.New("only an active year can be closed")
	ErrActiveYearBusy  = errors.New("branch already has an active year")
)

type (
	Repository interface {
		CreateBranch(ctx context.Context, br Branch) (Branch, error)
		GetBranchByID(ctx context.Context, id string) (Branch, error)
		QueryAllBranches(ctx context.Context) ([]Branch, error)

		CreateBranchYear(ctx context.Context, by BranchYear) (BranchYear, error)
		GetBranchYearByID(ctx context.Context, id string) (BranchYear, error)
		GetActiveBranchYear(ctx context.Context, branchID string) (BranchYear, error)
		QueryBranchYears(ctx context.Context, branchID string) ([]BranchYear, error)
		UpdateBranchYear(ctx context.Context, by BranchYear) (BranchYear, error)

		CreateClass(ctx context.Context, cls Class) (Class, error)
		GetClassByID(ctx context.Context, id string) (Class, error)
		QueryClasses(ctx context.Context, branchYearID string) ([]Class, error)

		CreateAttendanceSession(ctx context.Context, as AttendanceSession) (AttendanceSession, error)
		GetAttendanceSessionByID(ctx context.Context, id string) (AttendanceSession, error)
		// UpsertAttendanceRecord records a scan; one record per
		// (session, student), repeat scans keep the first timestamp.
		UpsertAttendanceRecord(ctx context.Context, rec AttendanceRecord) (AttendanceRecord, error)
		QueryAttendanceRecords(ctx context.Context, sessionID string) ([]AttendanceRecord, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateBranch(ctx context.Context, name, address string) (Branch, error) {
	br := Branch{
		ID:        uuid.New().String(),
		Name:      core.CleanString(name),
		Address:   core.CleanString(address),
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateBranch(ctx, br)
}

func (svc *Service) GetBranch(ctx context.Context, id string) (Branch, error) {
	return svc.repo.GetBranchByID(ctx, id)
}

func (svc *Service) QueryBranches(ctx context.Context) ([]Branch, error) {
	return svc.repo.QueryAllBranches(ctx)
}

// CreateYear opens a new draft year for a branch.
func (svc *Service) CreateYear(ctx context.Context, ny NewBranchYear) (BranchYear, error) {
	if _, err := svc.repo.GetBranchByID(ctx, ny.BranchID); err != nil {
		return BranchYear{}, err
	}
	by := BranchYear{
		ID:        uuid.New().String(),
		BranchID:  ny.BranchID,
		Name:      ny.Name,
		Status:    YearDraft,
		StartsAt:  ny.StartsAt,
		EndsAt:    ny.EndsAt,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateBranchYear(ctx, by)
}

func (svc *Service) GetYear(ctx context.Context, id string) (BranchYear, error) {
	return svc.repo.GetBranchYearByID(ctx, id)
}

func (svc *Service) QueryYears(ctx context.Context, branchID string) ([]BranchYear, error) {
	return svc.repo.QueryBranchYears(ctx, branchID)
}

// ActivateYear promotes a draft year to active. A branch may have at most
// one active year, so an existing active year blocks the transition.
func (svc *Service) ActivateYear(ctx context.Context, id string) (BranchYear, error) {
	by, err := svc.repo.GetBranchYearByID(ctx, id)
	if err != nil {
		return BranchYear{}, err
	}
	if by.Status != YearDraft {
		return BranchYear{}, ErrYearNotDraft
	}
	if _, err := svc.repo.GetActiveBranchYear(ctx, by.BranchID); err == nil {
		return BranchYear{}, ErrActiveYearBusy
	} else if errors.Cause(err) != ErrYearNotFound {
		return BranchYear{}, err
	}
	by.Status = YearActive
	return svc.repo.UpdateBranchYear(ctx, by)
}

// CloseYear retires an active year.
func (svc *Service) CloseYear(ctx context.Context, id string) (BranchYear, error) {
	by, err := svc.repo.GetBranchYearByID(ctx, id)
	if err != nil {
		return BranchYear{}, err
	}
	if by.Status != YearActive {
		return BranchYear{}, ErrYearNotActive
	}
	now := time.Now().UTC()
	by.Status = YearClosed
	by.ClosedAt = &now
	return svc.repo.UpdateBranchYear(ctx, by)
}

func (svc *Service) CreateClass(ctx context.Context, nc NewClass) (Class, error) {
	if _, err := svc.repo.GetBranchYearByID(ctx, nc.BranchYearID); err != nil {
		return Class{}, err
	}
	cls := Class{
		ID:           uuid.New().String(),
		BranchYearID: nc.BranchYearID,
		SubBranchID:  nc.SubBranchID,
		Name:         nc.Name,
		TeacherID:    nc.TeacherID,
	}
	return svc.repo.CreateClass(ctx, cls)
}

func (svc *Service) GetClass(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *Service) QueryClasses(ctx context.Context, branchYearID string) ([]Class, error) {
	return svc.repo.QueryClasses(ctx, branchYearID)
}

func (svc *Service) OpenAttendanceSession(ctx context.Context, ns NewAttendanceSession, openedBy string) (AttendanceSession, error) {
	if _, err := svc.repo.GetClassByID(ctx, ns.ClassID); err != nil {
		return AttendanceSession{}, err
	}
	as := AttendanceSession{
		ID:       uuid.New().String(),
		ClassID:  ns.ClassID,
		Topic:    ns.Topic,
		HeldAt:   ns.HeldAt,
		OpenedBy: openedBy,
	}
	return svc.repo.CreateAttendanceSession(ctx, as)
}

// RecordScan stores one student scan. Scanning the same student twice in a
// session is not an error; the first scan wins.
func (svc *Service) RecordScan(ctx context.Context, sp ScanPayload) (AttendanceRecord, error) {
	if _, err := svc.repo.GetAttendanceSessionByID(ctx, sp.SessionID); err != nil {
		return AttendanceRecord{}, err
	}
	rec := AttendanceRecord{
		SessionID: sp.SessionID,
		StudentID: sp.StudentID,
		ScannedAt: time.Now().UTC(),
	}
	return svc.repo.UpsertAttendanceRecord(ctx, rec)
}

func (svc *Service) QueryAttendance(ctx context.Context, sessionID string) ([]AttendanceRecord, error) {
	return svc.repo.QueryAttendanceRecords(ctx, sessionID)
}
