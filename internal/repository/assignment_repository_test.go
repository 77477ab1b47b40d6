package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/eadl-dev/acadtrack-api/internal/models"
)

func TestAssignmentRepositoryExists(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)
	key := models.AssignmentKey{CourseCode: "MATH101", PersonnelCode: "INS-AAAAAA"}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM assignments WHERE course_code = $1 AND personnel_code = $2 LIMIT 1")).
		WithArgs("MATH101", "INS-AAAAAA").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	found, err := repo.Exists(context.Background(), key)
	require.NoError(t, err)
	require.True(t, found)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM assignments WHERE course_code = $1 AND personnel_code = $2 LIMIT 1")).
		WithArgs("MATH101", "INS-AAAAAA").
		WillReturnError(sql.ErrNoRows)
	found, err = repo.Exists(context.Background(), key)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryCreateAndFind(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignments")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assignment := &models.Assignment{CourseCode: "MATH101", PersonnelCode: "INS-AAAAAA"}
	require.NoError(t, repo.Create(context.Background(), assignment))
	require.False(t, assignment.CreatedAt.IsZero())

	rows := sqlmock.NewRows([]string{"course_code", "personnel_code", "course_label", "course_credits", "course_hours", "personnel_name"}).
		AddRow("MATH101", "INS-AAAAAA", "Calculus", 6, 48, "Ada Instructor")
	mock.ExpectQuery("SELECT a.course_code, a.personnel_code").
		WithArgs("MATH101", "INS-AAAAAA").
		WillReturnRows(rows)

	row, err := repo.FindDetailByKey(context.Background(), assignment.Key())
	require.NoError(t, err)
	require.Equal(t, "Calculus", row.CourseLabel)
	require.Equal(t, "Ada Instructor", row.PersonnelName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignments WHERE course_code = $1 AND personnel_code = $2")).
		WithArgs("MATH101", "INS-AAAAAA").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), models.AssignmentKey{CourseCode: "MATH101", PersonnelCode: "INS-AAAAAA"}))
	require.NoError(t, mock.ExpectationsWereMet())
}
