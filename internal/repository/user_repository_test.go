package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/course-booking/internal/model"
)

const (
	instructorUUID = "0b7a4c6e-2f51-4d6a-9a0e-2a9f1c3d4e51"
	classUUID      = "6a1e5f2c-8b3d-4e7f-a1c2-b3d4e5f60718"
	studentUUID    = "c9d8e7f6-a5b4-4c3d-8e2f-1a0b9c8d7e6f"
	bookingUUID    = "11111111-2222-4333-8444-555555555555"
)

var userCols = []string{"id", "email", "name", "image", "gender", "contact_no", "address", "role", "quote", "created_at", "updated_at"}
var classCols = []string{"id", "instructor_id", "position", "name", "image", "price", "total_student", "description"}

func TestUserRepo_UpsertByEmail_InsertsOnlySuppliedFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO users \(id, email, name, role\) VALUES \(\?,\?,\?,\?\) ON DUPLICATE KEY UPDATE name = VALUES\(name\), role = VALUES\(role\)`).
		WithArgs(sqlmock.AnyArg(), "a@x.io", "Ann", "instructor").
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := NewUserRepo(db).UpsertByEmail(context.Background(), "a@x.io", model.UserPatch{Name: "Ann", Role: "instructor"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.UpsertedCount)
	assert.NotEmpty(t, res.UpsertedID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_UpsertByEmail_ExistingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`ON DUPLICATE KEY UPDATE email = email`).
		WithArgs(sqlmock.AnyArg(), "a@x.io").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`ON DUPLICATE KEY UPDATE quote = VALUES\(quote\)`).
		WithArgs(sqlmock.AnyArg(), "a@x.io", "hi").
		WillReturnResult(sqlmock.NewResult(0, 2))

	repo := NewUserRepo(db)
	res, err := repo.UpsertByEmail(context.Background(), "a@x.io", model.UserPatch{})
	require.NoError(t, err)
	assert.Equal(t, model.UpsertResult{MatchedCount: 1}, res)

	res, err = repo.UpsertByEmail(context.Background(), "a@x.io", model.UserPatch{Quote: "hi"})
	require.NoError(t, err)
	assert.Equal(t, model.UpsertResult{MatchedCount: 1, ModifiedCount: 1}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByEmail_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM users WHERE email = \?`).
		WithArgs("nobody@x.io").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err = NewUserRepo(db).GetByEmail(context.Background(), "nobody@x.io")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserRepo_GetInstructor_LoadsClasses(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`FROM users WHERE id = \? AND role = \?`).
		WithArgs(instructorUUID, model.RoleInstructor).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(instructorUUID, "t@x.io", "Tara", "", "", "", "", "instructor", "", now, now))
	mock.ExpectQuery(`FROM classes WHERE instructor_id IN \(\?\)`).
		WithArgs(instructorUUID).
		WillReturnRows(sqlmock.NewRows(classCols).
			AddRow(classUUID, instructorUUID, 0, "Yoga", "", 19.99, 4, nil))

	u, err := NewUserRepo(db).GetInstructor(context.Background(), instructorUUID)
	require.NoError(t, err)
	require.Len(t, u.Classes, 1)
	assert.Equal(t, "Yoga", u.Classes[0].Name)
	assert.Equal(t, 4, u.TotalStudents())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetInstructor_InvalidID(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewUserRepo(db).GetInstructor(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, model.ErrInvalidID)
}

func TestUserRepo_ListInstructors_SearchAndLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE role = \? AND LOWER\(name\) LIKE \? ORDER BY created_at, id LIMIT \?`).
		WithArgs(model.RoleInstructor, `%50\%%`, 2).
		WillReturnRows(sqlmock.NewRows(userCols))

	out, err := NewUserRepo(db).ListInstructors(context.Background(), "50%", 2)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_UpsertByEmail_DuplicateIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err = NewUserRepo(db).UpsertByEmail(context.Background(), "a@x.io", model.UserPatch{Name: "A"})
	assert.ErrorIs(t, err, model.ErrConflict)
}
