package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/course-booking/internal/model"
)

func TestClassRepo_IncrementStudents_SingleAtomicUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE classes SET total_student = total_student \+ 1 WHERE id = \? AND instructor_id = \?`).
		WithArgs(classUUID, instructorUUID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewClassRepo(db).IncrementStudents(context.Background(), instructorUUID, classUUID, 0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepo_IncrementStudents_UnknownClass(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE classes`).WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewClassRepo(db).IncrementStudents(context.Background(), instructorUUID, classUUID, 3)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestClassRepo_AddClass_AssignsNextPosition(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT role FROM users WHERE id = \? FOR UPDATE`).
		WithArgs(instructorUUID).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("instructor"))
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(position\), -1\) \+ 1 FROM classes`).
		WithArgs(instructorUUID).
		WillReturnRows(sqlmock.NewRows([]string{"pos"}).AddRow(2))
	mock.ExpectExec(`INSERT INTO classes`).
		WithArgs(classUUID, instructorUUID, 2, "Pilates", "", 25.0, 0, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c := &model.Class{ID: classUUID, Name: "Pilates", Price: 25}
	require.NoError(t, NewClassRepo(db).AddClass(context.Background(), instructorUUID, c))
	assert.Equal(t, 2, c.Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepo_AddClass_RejectsStudent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT role FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("student"))
	mock.ExpectRollback()

	err = NewClassRepo(db).AddClass(context.Background(), instructorUUID, &model.Class{ID: classUUID, Name: "X"})
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepo_CountClasses(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM classes c JOIN users u`).
		WithArgs(model.RoleInstructor).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(7))

	n, err := NewClassRepo(db).CountClasses(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
}
