package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/eadl-dev/acadtrack-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sessionFixture() *models.Session {
	start := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	return &models.Session{
		Hours:         2,
		StartAt:       start,
		EndAt:         start.Add(2 * time.Hour),
		Status:        models.SessionStatusPending,
		CourseCode:    "MATH101",
		RoomCode:      "R-101",
		SubmitterCode: "INS-AAAAAA",
		ValidatorCode: "DIR-BBBBBB",
	}
}

func TestSessionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	session := sessionFixture()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM rooms WHERE code = $1 FOR UPDATE")).
		WithArgs("R-101").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("FREE"))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sessions")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), session))
	require.EqualValues(t, 42, session.ID)
	require.False(t, session.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCreateRoomNotFree(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	session := sessionFixture()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM rooms WHERE code = $1 FOR UPDATE")).
		WithArgs("R-101").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("OCCUPIED"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), session)
	require.Error(t, err)

	var unavailable *models.RoomUnavailableError
	require.True(t, errors.As(err, &unavailable))
	require.Equal(t, models.RoomStatusOccupied, unavailable.Status)
	require.Equal(t, "R-101", unavailable.RoomCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCreateRoomMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM rooms WHERE code = $1 FOR UPDATE")).
		WithArgs("R-404").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	session := sessionFixture()
	session.RoomCode = "R-404"
	err := repo.Create(context.Background(), session)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectQuery("SELECT .* FROM sessions WHERE id").
		WithArgs(int64(9999)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 9999)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryExistsByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM sessions WHERE id = $1 LIMIT 1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	found, err := repo.ExistsByID(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, found)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM sessions WHERE id = $1 LIMIT 1")).
		WithArgs(int64(2)).
		WillReturnError(sql.ErrNoRows)
	found, err = repo.ExistsByID(context.Background(), 2)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListDetails(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	start := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "hours", "start_at", "end_at", "status",
		"course_code", "course_label", "course_credits", "course_hours",
		"room_code", "room_description", "room_status",
		"submitter_code", "submitter_name", "validator_code", "validator_name",
	}).AddRow(
		1, 2, start, start.Add(2*time.Hour), "PENDING",
		"MATH101", "Calculus", 6, 48,
		"R-101", "Lecture hall", "FREE",
		"INS-AAAAAA", "Ada Instructor", "DIR-BBBBBB", "Bob Director",
	)
	mock.ExpectQuery("SELECT s.id, s.hours").WillReturnRows(rows)

	details, err := repo.ListDetails(context.Background())
	require.NoError(t, err)
	require.Len(t, details, 1)

	detail := details[0].Detail()
	require.Equal(t, "Calculus", detail.Course.Label)
	require.Equal(t, "Ada Instructor", detail.Submitter.Name)
	require.Equal(t, models.RoomStatusFree, detail.Room.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCountByPersonnel(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sessions WHERE submitter_code = $1 OR validator_code = $1")).
		WithArgs("INS-AAAAAA").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	total, err := repo.CountByPersonnel(context.Background(), "INS-AAAAAA")
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCountByRoom(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sessions WHERE room_code = $1")).
		WithArgs("R-101").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	total, err := repo.CountByRoom(context.Background(), "R-101")
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
