package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/markazhub/markaz/core/academic"
)

type (
	branchRow struct {
		ID        string    `db:"id"`
		Name      string    `db:"name"`
		Address   string    `db:"address"`
		CreatedAt time.Time `db:"created_at"`
	}

	branchYearRow struct {
		ID        string       `db:"id"`
		BranchID  string       `db:"branch_id"`
		Name      string       `db:"name"`
		Status    string       `db:"status"`
		StartsAt  time.Time    `db:"starts_at"`
		EndsAt    time.Time    `db:"ends_at"`
		ClosedAt  sql.NullTime `db:"closed_at"`
		CreatedAt time.Time    `db:"created_at"`
	}

	classRow struct {
		ID           string         `db:"id"`
		BranchYearID string         `db:"branch_year_id"`
		SubBranchID  sql.NullString `db:"sub_branch_id"`
		Name         string         `db:"name"`
		TeacherID    sql.NullString `db:"teacher_id"`
	}

	attendanceSessionRow struct {
		ID       string    `db:"id"`
		ClassID  string    `db:"class_id"`
		Topic    string    `db:"topic"`
		HeldAt   time.Time `db:"held_at"`
		OpenedBy string    `db:"opened_by"`
	}

	attendanceRecordRow struct {
		SessionID string    `db:"session_id"`
		StudentID string    `db:"student_id"`
		ScannedAt time.Time `db:"scanned_at"`
	}
)

func (r branchYearRow) unpack() academic.BranchYear {
	by := academic.BranchYear{
		ID:        r.ID,
		BranchID:  r.BranchID,
		Name:      r.Name,
		Status:    r.Status,
		StartsAt:  r.StartsAt,
		EndsAt:    r.EndsAt,
		CreatedAt: r.CreatedAt,
	}
	if r.ClosedAt.Valid {
		t := r.ClosedAt.Time
		by.ClosedAt = &t
	}
	return by
}

func (r classRow) unpack() academic.Class {
	return academic.Class{
		ID:           r.ID,
		BranchYearID: r.BranchYearID,
		SubBranchID:  r.SubBranchID.String,
		Name:         r.Name,
		TeacherID:    r.TeacherID.String,
	}
}

type academicRepository struct {
	db *sqlx.DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *sqlx.DB) *academicRepository {
	return &academicRepository{db: db}
}

func (repo academicRepository) trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo academicRepository) CreateBranch(ctx context.Context, br academic.Branch) (academic.Branch, error) {
	query := `INSERT INTO branch (id, name, address, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := repo.db.ExecContext(ctx, query, br.ID, br.Name, br.Address, br.CreatedAt.UTC()); err != nil {
		return academic.Branch{}, errors.Wrap(err, "creating branch")
	}
	return br, nil
}

func (repo academicRepository) GetBranchByID(ctx context.Context, id string) (academic.Branch, error) {
	var r branchRow
	if err := repo.db.GetContext(ctx, &r, `SELECT * FROM branch WHERE id = $1`, id); err != nil {
		return academic.Branch{}, repo.trapNoRowsErr(err, academic.ErrBranchNotFound, "getting branch")
	}
	return academic.Branch(r), nil
}

func (repo academicRepository) QueryAllBranches(ctx context.Context) ([]academic.Branch, error) {
	var rows []branchRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM branch ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying branches")
	}
	branches := make([]academic.Branch, 0, len(rows))
	for _, r := range rows {
		branches = append(branches, academic.Branch(r))
	}
	return branches, nil
}

func (repo academicRepository) CreateBranchYear(ctx context.Context, by academic.BranchYear) (academic.BranchYear, error) {
	query := `
INSERT INTO branch_year (id, branch_id, name, status, starts_at, ends_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, query, by.ID, by.BranchID, by.Name, by.Status, by.StartsAt.UTC(), by.EndsAt.UTC(), by.CreatedAt.UTC())
	if err != nil {
		return academic.BranchYear{}, errors.Wrap(err, "creating branch year")
	}
	return by, nil
}

func (repo academicRepository) GetBranchYearByID(ctx context.Context, id string) (academic.BranchYear, error) {
	var r branchYearRow
	if err := repo.db.GetContext(ctx, &r, `SELECT * FROM branch_year WHERE id = $1`, id); err != nil {
		return academic.BranchYear{}, repo.trapNoRowsErr(err, academic.ErrYearNotFound, "getting branch year")
	}
	return r.unpack(), nil
}

func (repo academicRepository) GetActiveBranchYear(ctx context.Context, branchID string) (academic.BranchYear, error) {
	var r branchYearRow
	query := `SELECT * FROM branch_year WHERE branch_id = $1 AND status = $2`
	if err := repo.db.GetContext(ctx, &r, query, branchID, academic.YearActive); err != nil {
		return academic.BranchYear{}, repo.trapNoRowsErr(err, academic.ErrYearNotFound, "getting active branch year")
	}
	return r.unpack(), nil
}

func (repo academicRepository) QueryBranchYears(ctx context.Context, branchID string) ([]academic.BranchYear, error) {
	var rows []branchYearRow
	query := `SELECT * FROM branch_year WHERE branch_id = $1 ORDER BY starts_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, query, branchID); err != nil {
		return nil, errors.Wrap(err, "querying branch years")
	}
	years := make([]academic.BranchYear, 0, len(rows))
	for _, r := range rows {
		years = append(years, r.unpack())
	}
	return years, nil
}

func (repo academicRepository) UpdateBranchYear(ctx context.Context, by academic.BranchYear) (academic.BranchYear, error) {
	var closedAt sql.NullTime
	if by.ClosedAt != nil {
		closedAt = sql.NullTime{Time: by.ClosedAt.UTC(), Valid: true}
	}
	query := `UPDATE branch_year SET name = $1, status = $2, starts_at = $3, ends_at = $4, closed_at = $5 WHERE id = $6`
	res, err := repo.db.ExecContext(ctx, query, by.Name, by.Status, by.StartsAt.UTC(), by.EndsAt.UTC(), closedAt, by.ID)
	if err != nil {
		return academic.BranchYear{}, errors.Wrap(err, "updating branch year")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return academic.BranchYear{}, academic.ErrYearNotFound
	}
	return by, nil
}

func (repo academicRepository) CreateClass(ctx context.Context, cls academic.Class) (academic.Class, error) {
	query := `INSERT INTO class (id, branch_year_id, sub_branch_id, name, teacher_id) VALUES ($1, $2, $3, $4, $5)`
	subBranchID := sql.NullString{String: cls.SubBranchID, Valid: cls.SubBranchID != ""}
	teacherID := sql.NullString{String: cls.TeacherID, Valid: cls.TeacherID != ""}
	if _, err := repo.db.ExecContext(ctx, query, cls.ID, cls.BranchYearID, subBranchID, cls.Name, teacherID); err != nil {
		return academic.Class{}, errors.Wrap(err, "creating class")
	}
	return cls, nil
}

func (repo academicRepository) GetClassByID(ctx context.Context, id string) (academic.Class, error) {
	var r classRow
	if err := repo.db.GetContext(ctx, &r, `SELECT * FROM class WHERE id = $1`, id); err != nil {
		return academic.Class{}, repo.trapNoRowsErr(err, academic.ErrClassNotFound, "getting class")
	}
	return r.unpack(), nil
}

func (repo academicRepository) QueryClasses(ctx context.Context, branchYearID string) ([]academic.Class, error) {
	var rows []classRow
	query := `SELECT * FROM class WHERE branch_year_id = $1 ORDER BY name`
	if err := repo.db.SelectContext(ctx, &rows, query, branchYearID); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]academic.Class, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.unpack())
	}
	return classes, nil
}

func (repo academicRepository) CreateAttendanceSession(ctx context.Context, as academic.AttendanceSession) (academic.AttendanceSession, error) {
	query := `INSERT INTO attendance_session (id, class_id, topic, held_at, opened_by) VALUES ($1, $2, $3, $4, $5)`
	if _, err := repo.db.ExecContext(ctx, query, as.ID, as.ClassID, as.Topic, as.HeldAt.UTC(), as.OpenedBy); err != nil {
		return academic.AttendanceSession{}, errors.Wrap(err, "creating attendance session")
	}
	return as, nil
}

func (repo academicRepository) GetAttendanceSessionByID(ctx context.Context, id string) (academic.AttendanceSession, error) {
	var r attendanceSessionRow
	if err := repo.db.GetContext(ctx, &r, `SELECT * FROM attendance_session WHERE id = $1`, id); err != nil {
		return academic.AttendanceSession{}, repo.trapNoRowsErr(err, academic.ErrSessionNotFound, "getting attendance session")
	}
	return academic.AttendanceSession(r), nil
}

func (repo academicRepository) UpsertAttendanceRecord(ctx context.Context, rec academic.AttendanceRecord) (academic.AttendanceRecord, error) {
	// repeat scans keep the first timestamp
	query := `
INSERT INTO attendance_record (session_id, student_id, scanned_at)
VALUES ($1, $2, $3)
ON CONFLICT (session_id, student_id) DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, query, rec.SessionID, rec.StudentID, rec.ScannedAt.UTC()); err != nil {
		return academic.AttendanceRecord{}, errors.Wrap(err, "recording scan")
	}

	var r attendanceRecordRow
	get := `SELECT * FROM attendance_record WHERE session_id = $1 AND student_id = $2`
	if err := repo.db.GetContext(ctx, &r, get, rec.SessionID, rec.StudentID); err != nil {
		return academic.AttendanceRecord{}, repo.trapNoRowsErr(err, academic.ErrSessionNotFound, "getting attendance record")
	}
	return academic.AttendanceRecord(r), nil
}

func (repo academicRepository) QueryAttendanceRecords(ctx context.Context, sessionID string) ([]academic.AttendanceRecord, error) {
	var rows []attendanceRecordRow
	query := `SELECT * FROM attendance_record WHERE session_id = $1 ORDER BY scanned_at`
	if err := repo.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	records := make([]academic.AttendanceRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, academic.AttendanceRecord(r))
	}
	return records, nil
}
