package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/course-booking/internal/model"
)

const userColumns = "id, email, name, image, gender, contact_no, address, role, quote, created_at, updated_at"

// UserRepo reads and writes the users table.  Instructor reads also load
// the instructor's classes, ordered by position.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// UpsertByEmail inserts a user keyed by email or merges the supplied
// fields into the existing row.  Fields absent from the patch are left
// untouched on update.
func (r *UserRepo) UpsertByEmail(ctx context.Context, email string, patch model.UserPatch) (model.UpsertResult, error) {
	fields := patch.Fields()
	cols := []string{"id", "email"}
	newID := uuid.NewString()
	args := []any{newID, email}
	updates := make([]string, 0, len(fields))
	for _, f := range fields {
		cols = append(cols, f.Column)
		args = append(args, f.Value)
		updates = append(updates, f.Column+" = VALUES("+f.Column+")")
	}
	if len(updates) == 0 {
		updates = append(updates, "email = email")
	}
	q := "INSERT INTO users (" + strings.Join(cols, ", ") + ") VALUES (" + placeholders(len(cols)) +
		") ON DUPLICATE KEY UPDATE " + strings.Join(updates, ", ")
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return model.UpsertResult{}, translate("upsert user", err)
	}
	return upsertResult(res, newID)
}

// GetByEmail fetches a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", email))
	if err != nil {
		return nil, translate("get user by email", err)
	}
	return r.withClasses(ctx, u)
}

// GetByID fetches a user of any role by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	id, err := parseID(id)
	if err != nil {
		return nil, err
	}
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id))
	if err != nil {
		return nil, translate("get user", err)
	}
	return r.withClasses(ctx, u)
}

// GetInstructor fetches an instructor and their classes.  Users of any
// other role are reported as not found.
func (r *UserRepo) GetInstructor(ctx context.Context, id string) (*model.User, error) {
	id, err := parseID(id)
	if err != nil {
		return nil, err
	}
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? AND role = ? LIMIT 1", id, model.RoleInstructor))
	if err != nil {
		return nil, translate("get instructor", err)
	}
	return r.withClasses(ctx, u)
}

// ListInstructors returns instructors whose name contains search
// (case-insensitive).  limit <= 0 returns every match.
func (r *UserRepo) ListInstructors(ctx context.Context, search string, limit int) ([]*model.User, error) {
	q := "SELECT " + userColumns + " FROM users WHERE role = ?"
	args := []any{model.RoleInstructor}
	if search != "" {
		q += " AND LOWER(name) LIKE ?"
		args = append(args, likePattern(search))
	}
	q += " ORDER BY created_at, id"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, translate("list instructors", err)
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, translate("scan instructor", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list instructors", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(out))
	for _, u := range out {
		ids = append(ids, u.ID)
	}
	byOwner, err := loadClasses(ctx, r.DB, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range out {
		u.Classes = byOwner[u.ID]
	}
	return out, nil
}

// CountInstructors counts users with the instructor role.
func (r *UserRepo) CountInstructors(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE role = ?", model.RoleInstructor).Scan(&n)
	if err != nil {
		return 0, translate("count instructors", err)
	}
	return n, nil
}

func (r *UserRepo) withClasses(ctx context.Context, u *model.User) (*model.User, error) {
	if u.Role != model.RoleInstructor {
		return u, nil
	}
	byOwner, err := loadClasses(ctx, r.DB, []string{u.ID})
	if err != nil {
		return nil, err
	}
	u.Classes = byOwner[u.ID]
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Image, &u.Gender, &u.ContactNo,
		&u.Address, &u.Role, &u.Quote, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
