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

	"github.com/markazhub/markaz/core/user"
)

type userRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	BranchID     sql.NullString `db:"branch_id"`
	SubBranchID  sql.NullString `db:"sub_branch_id"`
	ClassIDs     pq.StringArray `db:"class_ids"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    sql.NullTime   `db:"last_login"`
}

func (r userRow) unpack() user.User {
	usr := user.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username,
		Email:        r.Email,
		Roles:        r.Roles,
		BranchID:     r.BranchID.String,
		SubBranchID:  r.SubBranchID.String,
		ClassIDs:     r.ClassIDs,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	isActive := r.IsActive
	usr.IsActive = &isActive
	if r.LastLogin.Valid {
		usr.LastLogin = r.LastLogin.Time
	}
	return usr
}

func packUser(usr user.User) userRow {
	r := userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     usr.Username,
		Email:        usr.Email,
		Roles:        pq.StringArray(usr.Roles),
		BranchID:     sql.NullString{String: usr.BranchID, Valid: usr.BranchID != ""},
		SubBranchID:  sql.NullString{String: usr.SubBranchID, Valid: usr.SubBranchID != ""},
		ClassIDs:     pq.StringArray(usr.ClassIDs),
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    sql.NullTime{Time: usr.LastLogin.UTC(), Valid: !usr.LastLogin.IsZero()},
	}
	if usr.IsActive != nil {
		r.IsActive = *usr.IsActive
	}
	if r.Roles == nil {
		r.Roles = pq.StringArray{}
	}
	if r.ClassIDs == nil {
		r.ClassIDs = pq.StringArray{}
	}
	return r
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	query := `SELECT id, username, email FROM "user" WHERE lower(username) = lower($1) OR lower(email) = lower($2)`
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, query, username, email); err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}

	excluded := make(map[string]struct{}, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded[usr.ID] = struct{}{}
	}
	for _, r := range rows {
		if _, ok := excluded[r.ID]; ok {
			continue
		}
		if strings.EqualFold(r.Username, username) {
			return user.ErrUsernameExists
		}
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	query := `
INSERT INTO "user" (id, name, username, email, is_active, roles, branch_id, sub_branch_id, class_ids, password_hash, created_at, updated_at, last_login)
VALUES (:id, :name, :username, :email, :is_active, :roles, :branch_id, :sub_branch_id, :class_ids, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, query, packUser(usr)); err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM "user" ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return unpackUsers(rows), nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.ID != "" {
		args = append(args, filter.ID)
		conds = append(conds, fmt.Sprintf("id = $%d", len(args)))
	}
	seen := make(map[string]struct{}, len(filter.UsernameOrEmail))
	for _, uoe := range filter.UsernameOrEmail {
		if _, ok := seen[uoe]; ok {
			continue
		}
		seen[uoe] = struct{}{}
		args = append(args, uoe)
		n := len(args)
		conds = append(conds, fmt.Sprintf("(lower(username) = lower($%d) OR lower(email) = lower($%d))", n, n))
	}
	if len(conds) == 0 {
		return user.User{}, user.ErrNotFound
	}

	query := `SELECT * FROM "user" WHERE ` + strings.Join(conds, " OR ") + ` LIMIT 1`
	var r userRow
	if err := repo.db.GetContext(ctx, &r, query, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user")
	}
	return r.unpack(), nil
}

func (repo userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR username ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}
	if len(filter.Roles) > 0 {
		args = append(args, pq.StringArray(filter.Roles))
		conds = append(conds, fmt.Sprintf("roles && $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conds = append(conds, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if filter.BranchID != "" {
		args = append(args, filter.BranchID)
		conds = append(conds, fmt.Sprintf("branch_id = $%d", len(args)))
	}
	if !filter.CreatedFrom.IsZero() {
		args = append(args, filter.CreatedFrom.UTC())
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !filter.CreatedTo.IsZero() {
		args = append(args, filter.CreatedTo.UTC())
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := `SELECT * FROM "user"`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at"

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return unpackUsers(rows), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	var (
		sets []string
		args []interface{}
	)
	set := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if usr.Name != "" {
		set("name", usr.Name)
	}
	if usr.Username != "" {
		set("username", usr.Username)
	}
	if usr.Email != "" {
		set("email", usr.Email)
	}
	if usr.Roles != nil {
		set("roles", pq.StringArray(usr.Roles))
	}
	if usr.BranchID != "" {
		set("branch_id", usr.BranchID)
	}
	if usr.SubBranchID != "" {
		set("sub_branch_id", usr.SubBranchID)
	}
	if usr.ClassIDs != nil {
		set("class_ids", pq.StringArray(usr.ClassIDs))
	}
	if usr.PasswordHash != nil {
		set("password_hash", usr.PasswordHash)
	}
	if !usr.UpdatedAt.IsZero() {
		set("updated_at", usr.UpdatedAt.UTC())
	}
	if !usr.LastLogin.IsZero() {
		set("last_login", usr.LastLogin.UTC())
	}
	if isActive != nil {
		set("is_active", *isActive)
	}
	if len(sets) == 0 {
		return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
	}

	args = append(args, usr.ID)
	query := fmt.Sprintf(`UPDATE "user" SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	query := `
INSERT INTO "user" (id, name, username, email, is_active, roles, branch_id, sub_branch_id, class_ids, password_hash, created_at, updated_at, last_login)
VALUES (:id, :name, :username, :email, :is_active, :roles, :branch_id, :sub_branch_id, :class_ids, :password_hash, :created_at, :updated_at, :last_login)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	username = EXCLUDED.username,
	email = EXCLUDED.email,
	is_active = EXCLUDED.is_active,
	roles = EXCLUDED.roles,
	branch_id = EXCLUDED.branch_id,
	sub_branch_id = EXCLUDED.sub_branch_id,
	class_ids = EXCLUDED.class_ids,
	password_hash = EXCLUDED.password_hash,
	updated_at = EXCLUDED.updated_at,
	last_login = EXCLUDED.last_login`
	if _, err := repo.db.NamedExecContext(ctx, query, packUser(usr)); err != nil {
		return user.User{}, errors.Wrap(err, "upserting user")
	}
	return usr, nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting users")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}

func unpackUsers(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.unpack())
	}
	return users
}
