package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/markazhub/markaz/core/student"
)

type studentRow struct {
	ID          string         `db:"id"`
	NIS         string         `db:"nis"`
	Name        string         `db:"name"`
	BranchID    string         `db:"branch_id"`
	SubBranchID sql.NullString `db:"sub_branch_id"`
	ClassIDs    pq.StringArray `db:"class_ids"`
	Status      string         `db:"status"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r studentRow) unpack() student.Student {
	return student.Student{
		ID:          r.ID,
		NIS:         r.NIS,
		Name:        r.Name,
		BranchID:    r.BranchID,
		SubBranchID: r.SubBranchID.String,
		ClassIDs:    r.ClassIDs,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func packStudent(std student.Student) studentRow {
	r := studentRow{
		ID:          std.ID,
		NIS:         std.NIS,
		Name:        std.Name,
		BranchID:    std.BranchID,
		SubBranchID: sql.NullString{String: std.SubBranchID, Valid: std.SubBranchID != ""},
		ClassIDs:    pq.StringArray(std.ClassIDs),
		Status:      std.Status,
		CreatedAt:   std.CreatedAt.UTC(),
		UpdatedAt:   std.UpdatedAt.UTC(),
	}
	if r.ClassIDs == nil {
		r.ClassIDs = pq.StringArray{}
	}
	return r
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CheckNISUniqueness(ctx context.Context, nis string) error {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM student WHERE nis = $1)`
	if err := repo.db.GetContext(ctx, &exists, query, nis); err != nil {
		return errors.Wrap(err, "checking NIS uniqueness")
	}
	if exists {
		return student.ErrNISExists
	}
	return nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	query := `
INSERT INTO student (id, nis, name, branch_id, sub_branch_id, class_ids, status, created_at, updated_at)
VALUES (:id, :nis, :name, :branch_id, :sub_branch_id, :class_ids, :status, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, packStudent(std)); err != nil {
		return student.Student{}, errors.Wrap(err, "creating student")
	}
	return std, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var r studentRow
	if err := repo.db.GetContext(ctx, &r, `SELECT * FROM student WHERE id = $1`, id); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "getting student")
	}
	return r.unpack(), nil
}

func (repo studentRepository) GetStudentByNIS(ctx context.Context, nis string) (student.Student, error) {
	var r studentRow
	if err := repo.db.GetContext(ctx, &r, `SELECT * FROM student WHERE nis = $1`, nis); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "getting student")
	}
	return r.unpack(), nil
}

func (repo studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR nis ILIKE $%d)", n, n))
	}
	if filter.BranchID != "" {
		args = append(args, filter.BranchID)
		conds = append(conds, fmt.Sprintf("branch_id = $%d", len(args)))
	}
	if filter.SubBranchID != "" {
		args = append(args, filter.SubBranchID)
		conds = append(conds, fmt.Sprintf("sub_branch_id = $%d", len(args)))
	}
	if filter.ClassID != "" {
		args = append(args, pq.StringArray{filter.ClassID})
		conds = append(conds, fmt.Sprintf("class_ids @> $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT * FROM student`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name"

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.unpack())
	}
	return students, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	var (
		sets []string
		args []interface{}
	)
	set := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if std.NIS != "" {
		set("nis", std.NIS)
	}
	if std.Name != "" {
		set("name", std.Name)
	}
	if std.BranchID != "" {
		set("branch_id", std.BranchID)
	}
	if std.SubBranchID != "" {
		set("sub_branch_id", std.SubBranchID)
	}
	if std.Status != "" {
		set("status", std.Status)
	}
	if !std.UpdatedAt.IsZero() {
		set("updated_at", std.UpdatedAt.UTC())
	}
	if len(sets) == 0 {
		return repo.GetStudentByID(ctx, std.ID)
	}

	args = append(args, std.ID)
	query := fmt.Sprintf(`UPDATE student SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudentByID(ctx, std.ID)
}

func (repo studentRepository) SetStudentClasses(ctx context.Context, id string, classIDs []string) (student.Student, error) {
	ids := pq.StringArray(classIDs)
	if ids == nil {
		ids = pq.StringArray{}
	}
	query := `UPDATE student SET class_ids = $1, updated_at = now() WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, ids, id)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "setting student classes")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudentByID(ctx, id)
}

func (repo studentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM student WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting students")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return nil
}
