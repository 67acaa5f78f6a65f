package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/course-booking/internal/model"
)

// ClassRepo manages the classes table.  A class row belongs to exactly one
// instructor; position orders the rows of one instructor and is what
// clients see as classIndex.
type ClassRepo struct {
	db *sql.DB
}

// NewClassRepo returns a new ClassRepo bound to the given database.
func NewClassRepo(db *sql.DB) *ClassRepo { return &ClassRepo{db: db} }

// AddClass appends a class to an instructor's list.  The class ID must be
// set by the caller; Position is assigned here as one past the current
// last position.  The instructor row is locked for the duration of the
// transaction so concurrent appends get distinct positions.
func (r *ClassRepo) AddClass(ctx context.Context, instructorID string, c *model.Class) error {
	instructorID, err := parseID(instructorID)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return translate("begin add class", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var role string
	err = tx.QueryRowContext(ctx, "SELECT role FROM users WHERE id = ? FOR UPDATE", instructorID).Scan(&role)
	if err != nil {
		return translate("lock instructor", err)
	}
	if role != model.RoleInstructor {
		return fmt.Errorf("lock instructor: %w", model.ErrNotFound)
	}

	var pos int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), -1) + 1 FROM classes WHERE instructor_id = ?", instructorID).Scan(&pos)
	if err != nil {
		return translate("next class position", err)
	}

	const ins = `INSERT INTO classes (id, instructor_id, position, name, image, price, total_student, description)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, ins, c.ID, instructorID, pos, c.Name, c.Image, c.Price, c.TotalStudent, c.Description); err != nil {
		return translate("insert class", err)
	}
	if err := tx.Commit(); err != nil {
		return translate("commit add class", err)
	}
	committed = true
	c.Position = pos
	return nil
}

// IncrementStudents adds one to a class's seat count in a single UPDATE,
// so concurrent bookings never lose increments.  Every row has a class
// id here, so index is ignored.
func (r *ClassRepo) IncrementStudents(ctx context.Context, instructorID, classID string, _ int) error {
	instructorID, err := parseID(instructorID)
	if err != nil {
		return err
	}
	classID, err = parseID(classID)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE classes SET total_student = total_student + 1 WHERE id = ? AND instructor_id = ?",
		classID, instructorID)
	if err != nil {
		return translate("increment students", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return translate("increment students", err)
	}
	if n == 0 {
		return fmt.Errorf("increment students: %w", model.ErrNotFound)
	}
	return nil
}

// CountClasses counts classes owned by instructors.
func (r *ClassRepo) CountClasses(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM classes c JOIN users u ON u.id = c.instructor_id WHERE u.role = ?`
	var n int64
	if err := r.db.QueryRowContext(ctx, q, model.RoleInstructor).Scan(&n); err != nil {
		return 0, translate("count classes", err)
	}
	return n, nil
}

// loadClasses fetches the classes of the given instructors grouped by
// instructor id, each group ordered by position.
func loadClasses(ctx context.Context, db *sql.DB, instructorIDs []string) (map[string][]model.Class, error) {
	out := make(map[string][]model.Class, len(instructorIDs))
	if len(instructorIDs) == 0 {
		return out, nil
	}
	q := `SELECT id, instructor_id, position, name, image, price, total_student, description
          FROM classes WHERE instructor_id IN (` + placeholders(len(instructorIDs)) + `)
          ORDER BY instructor_id, position`
	args := make([]any, 0, len(instructorIDs))
	for _, id := range instructorIDs {
		args = append(args, id)
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, translate("load classes", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			c     model.Class
			owner string
			desc  sql.NullString
		)
		if err := rows.Scan(&c.ID, &owner, &c.Position, &c.Name, &c.Image, &c.Price, &c.TotalStudent, &desc); err != nil {
			return nil, translate("scan class", err)
		}
		c.Description = desc.String
		out[owner] = append(out[owner], c)
	}
	if err := rows.Err(); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return out, nil
		}
		return nil, translate("load classes", err)
	}
	return out, nil
}
