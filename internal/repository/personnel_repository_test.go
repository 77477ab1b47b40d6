package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/eadl-dev/acadtrack-api/internal/models"
)

func TestPersonnelRepositoryCreateAndFindByLogin(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPersonnelRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO personnel")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	personnel := &models.Personnel{
		Code:         "INS-3FA29C",
		Name:         "Ada Instructor",
		Login:        "ada",
		PasswordHash: "$2a$10$hash",
		Sex:          "F",
		Role:         models.RoleInstructor,
	}
	require.NoError(t, repo.Create(context.Background(), personnel))
	require.False(t, personnel.CreatedAt.IsZero())

	rows := sqlmock.NewRows([]string{"code", "name", "login", "password_hash", "sex", "role", "created_at", "updated_at"}).
		AddRow("INS-3FA29C", "Ada Instructor", "ada", "$2a$10$hash", "F", "INSTRUCTOR", time.Now(), time.Now())
	mock.ExpectQuery("SELECT code, name, login").
		WithArgs("ada").
		WillReturnRows(rows)

	found, err := repo.FindByLogin(context.Background(), "ada")
	require.NoError(t, err)
	require.Equal(t, "INS-3FA29C", found.Code)
	require.Equal(t, models.RoleInstructor, found.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonnelRepositoryExistsByLogin(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPersonnelRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM personnel WHERE login = $1 LIMIT 1")).
		WithArgs("ada").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	found, err := repo.ExistsByLogin(context.Background(), "ada")
	require.NoError(t, err)
	require.True(t, found)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM personnel WHERE login = $1 LIMIT 1")).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)
	found, err = repo.ExistsByLogin(context.Background(), "nobody")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonnelRepositoryDeleteAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPersonnelRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM personnel")).
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, repo.DeleteAll(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
