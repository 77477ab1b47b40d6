package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eadl-dev/acadtrack-api/internal/models"
	appErrors "github.com/eadl-dev/acadtrack-api/pkg/errors"
)

type mockSessionRepo struct {
	items      map[int64]*models.Session
	details    map[int64]*models.SessionDetailRow
	nextID     int64
	roomStatus models.RoomStatus
	deleted    []int64
}

func (m *mockSessionRepo) Create(ctx context.Context, session *models.Session) error {
	// Mirrors the conditional write: the row lock re-checks the status.
	if m.roomStatus != "" && m.roomStatus != models.RoomStatusFree {
		return &models.RoomUnavailableError{RoomCode: session.RoomCode, Status: m.roomStatus}
	}
	if m.items == nil {
		m.items = make(map[int64]*models.Session)
	}
	m.nextID++
	session.ID = m.nextID
	cp := *session
	m.items[session.ID] = &cp
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id int64) (*models.Session, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSessionRepo) FindDetailByID(ctx context.Context, id int64) (*models.SessionDetailRow, error) {
	if row, ok := m.details[id]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSessionRepo) ListDetails(ctx context.Context) ([]models.SessionDetailRow, error) {
	out := make([]models.SessionDetailRow, 0, len(m.details))
	for _, row := range m.details {
		out = append(out, *row)
	}
	return out, nil
}

func (m *mockSessionRepo) ExistsByID(ctx context.Context, id int64) (bool, error) {
	_, ok := m.items[id]
	return ok, nil
}

func (m *mockSessionRepo) Update(ctx context.Context, session *models.Session) error {
	cp := *session
	m.items[session.ID] = &cp
	return nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, id int64) error {
	delete(m.items, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockSessionRepo) DeleteAll(ctx context.Context) error {
	m.items = map[int64]*models.Session{}
	return nil
}

type mockCourseResolver struct {
	items map[string]*models.Course
}

func (m *mockCourseResolver) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	if c, ok := m.items[code]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockPersonnelResolver struct {
	items map[string]*models.Personnel
}

func (m *mockPersonnelResolver) FindByCode(ctx context.Context, code string) (*models.Personnel, error) {
	if p, ok := m.items[code]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockRoomResolver struct {
	items map[string]*models.Room
}

func (m *mockRoomResolver) FindByCode(ctx context.Context, code string) (*models.Room, error) {
	if r, ok := m.items[code]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func sessionFixture() (*mockSessionRepo, *mockCourseResolver, *mockPersonnelResolver, *mockRoomResolver) {
	repo := &mockSessionRepo{roomStatus: models.RoomStatusFree}
	courses := &mockCourseResolver{items: map[string]*models.Course{
		"MATH101": {Code: "MATH101", Label: "Calculus", Credits: 6, Hours: 48},
	}}
	personnel := &mockPersonnelResolver{items: map[string]*models.Personnel{
		"INS-AAAAAA": {Code: "INS-AAAAAA", Name: "Ada Instructor", Role: models.RoleInstructor},
		"DIR-BBBBBB": {Code: "DIR-BBBBBB", Name: "Bob Director", Role: models.RoleDirector},
	}}
	rooms := &mockRoomResolver{items: map[string]*models.Room{
		"R-101": {Code: "R-101", Description: "Lecture hall", Capacity: 80, Status: models.RoomStatusFree},
	}}
	return repo, courses, personnel, rooms
}

func newSessionService(repo *mockSessionRepo, courses *mockCourseResolver, personnel *mockPersonnelResolver, rooms *mockRoomResolver) *SessionService {
	gate := NewAvailabilityGate(rooms)
	return NewSessionService(repo, courses, personnel, gate, NewSessionValidator(validator.New()), nil, zap.NewNop())
}

func validSessionRequest() SessionRequest {
	start := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	return SessionRequest{
		Hours:         2,
		StartAt:       &start,
		EndAt:         &end,
		CourseCode:    "MATH101",
		RoomCode:      "R-101",
		SubmitterCode: "INS-AAAAAA",
		ValidatorCode: "DIR-BBBBBB",
	}
}

func TestSessionServiceCreate(t *testing.T) {
	repo, courses, personnel, rooms := sessionFixture()
	service := newSessionService(repo, courses, personnel, rooms)

	detail, err := service.Create(context.Background(), "ADM-000001", validSessionRequest())
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusPending, detail.Status)
	assert.Equal(t, "MATH101", detail.Course.Code)
	assert.Equal(t, "R-101", detail.Room.Code)
	assert.Equal(t, "Ada Instructor", detail.Submitter.Name)
	assert.Equal(t, "Bob Director", detail.Validator.Name)
	assert.Len(t, repo.items, 1)
}

func TestSessionServiceCreateRoomOccupied(t *testing.T) {
	repo, courses, personnel, rooms := sessionFixture()
	rooms.items["R-101"].Status = models.RoomStatusOccupied
	service := newSessionService(repo, courses, personnel, rooms)

	_, err := service.Create(context.Background(), "ADM-000001", validSessionRequest())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrRoomUnavailable.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)
	assert.Empty(t, repo.items)
}

func TestSessionServiceCreateRoomClosed(t *testing.T) {
	repo, courses, personnel, rooms := sessionFixture()
	rooms.items["R-101"].Status = models.RoomStatusClosed
	service := newSessionService(repo, courses, personnel, rooms)

	_, err := service.Create(context.Background(), "ADM-000001", validSessionRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRoomUnavailable.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceCreateRoomLostRace(t *testing.T) {
	// The gate sees FREE but the conditional write observes OCCUPIED: a
	// concurrent create got the room first.
	repo, courses, personnel, rooms := sessionFixture()
	repo.roomStatus = models.RoomStatusOccupied
	service := newSessionService(repo, courses, personnel, rooms)

	_, err := service.Create(context.Background(), "ADM-000001", validSessionRequest())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrRoomUnavailable.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)

	var unavailable *models.RoomUnavailableError
	assert.True(t, errors.As(err, &unavailable))
}

func TestSessionServiceCreateUnknownRoom(t *testing.T) {
	repo, courses, personnel, rooms := sessionFixture()
	service := newSessionService(repo, courses, personnel, rooms)

	req := validSessionRequest()
	req.RoomCode = "R-404"
	_, err := service.Create(context.Background(), "ADM-000001", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceCreateUnknownCourse(t *testing.T) {
	repo, courses, personnel, rooms := sessionFixture()
	service := newSessionService(repo, courses, personnel, rooms)

	req := validSessionRequest()
	req.CourseCode = "NOPE"
	_, err := service.Create(context.Background(), "ADM-000001", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.items)
}

func TestSessionServiceCreateUnknownSubmitter(t *testing.T) {
	repo, courses, personnel, rooms := sessionFixture()
	service := newSessionService(repo, courses, personnel, rooms)

	req := validSessionRequest()
	req.SubmitterCode = "INS-MISSING"
	_, err := service.Create(context.Background(), "ADM-000001", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceCreateEndBeforeStart(t *testing.T) {
	repo, courses, personnel, rooms := sessionFixture()
	service := newSessionService(repo, courses, personnel, rooms)

	req := validSessionRequest()
	end := req.StartAt.Add(-time.Hour)
	req.EndAt = &end
	_, err := service.Create(context.Background(), "ADM-000001", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceCreateMissingTimestamps(t *testing.T) {
	repo, courses, personnel, rooms := sessionFixture()
	service := newSessionService(repo, courses, personnel, rooms)

	req := validSessionRequest()
	req.StartAt = nil
	_, err := service.Create(context.Background(), "ADM-000001", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceGetByIDNotFound(t *testing.T) {
	repo, courses, personnel, rooms := sessionFixture()
	service := newSessionService(repo, courses, personnel, rooms)

	_, err := service.GetByID(context.Background(), 9999)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, 404, appErr.Status)
}

func TestSessionServiceUpdateInvalidStatus(t *testing.T) {
	repo, courses, personnel, rooms := sessionFixture()
	service := newSessionService(repo, courses, personnel, rooms)

	created, err := service.Create(context.Background(), "ADM-000001", validSessionRequest())
	require.NoError(t, err)

	req := validSessionRequest()
	req.Status = "APPROVED"
	_, err = service.Update(context.Background(), "ADM-000001", created.ID, req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceUpdateKeepsRoom(t *testing.T) {
	repo, courses, personnel, rooms := sessionFixture()
	service := newSessionService(repo, courses, personnel, rooms)

	created, err := service.Create(context.Background(), "ADM-000001", validSessionRequest())
	require.NoError(t, err)

	// Once booked, the room stays booked even if it is later flagged
	// OCCUPIED: updates do not re-run the availability gate.
	rooms.items["R-101"].Status = models.RoomStatusOccupied
	repo.details = map[int64]*models.SessionDetailRow{created.ID: {ID: created.ID}}

	req := validSessionRequest()
	req.Status = "VALIDATED"
	req.RoomCode = ""
	updated, err := service.Update(context.Background(), "DIR-BBBBBB", created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, models.SessionStatusValidated, repo.items[created.ID].Status)
	assert.Equal(t, "R-101", repo.items[created.ID].RoomCode)
}

func TestSessionServiceDeleteTwice(t *testing.T) {
	repo, courses, personnel, rooms := sessionFixture()
	service := newSessionService(repo, courses, personnel, rooms)

	created, err := service.Create(context.Background(), "ADM-000001", validSessionRequest())
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), "ADM-000001", created.ID))

	err = service.Delete(context.Background(), "ADM-000001", created.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceDeleteAll(t *testing.T) {
	repo, courses, personnel, rooms := sessionFixture()
	service := newSessionService(repo, courses, personnel, rooms)

	_, err := service.Create(context.Background(), "ADM-000001", validSessionRequest())
	require.NoError(t, err)

	require.NoError(t, service.DeleteAll(context.Background(), "ADM-000001"))
	assert.Empty(t, repo.items)
}
