package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eadl-dev/acadtrack-api/internal/models"
	appErrors "github.com/eadl-dev/acadtrack-api/pkg/errors"
)

type mockRoomRepo struct {
	items map[string]*models.Room
}

func (m *mockRoomRepo) List(ctx context.Context) ([]models.Room, error) {
	out := make([]models.Room, 0, len(m.items))
	for _, r := range m.items {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockRoomRepo) FindByCode(ctx context.Context, code string) (*models.Room, error) {
	if r, ok := m.items[code]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRoomRepo) ListByMinCapacity(ctx context.Context, minCapacity int) ([]models.Room, error) {
	out := make([]models.Room, 0)
	for _, r := range m.items {
		if r.Capacity >= minCapacity {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockRoomRepo) ListByStatus(ctx context.Context, status models.RoomStatus) ([]models.Room, error) {
	out := make([]models.Room, 0)
	for _, r := range m.items {
		if r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockRoomRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, ok := m.items[code]
	return ok, nil
}

func (m *mockRoomRepo) Create(ctx context.Context, room *models.Room) error {
	if m.items == nil {
		m.items = make(map[string]*models.Room)
	}
	cp := *room
	m.items[room.Code] = &cp
	return nil
}

func (m *mockRoomRepo) Update(ctx context.Context, room *models.Room) error {
	cp := *room
	m.items[room.Code] = &cp
	return nil
}

func (m *mockRoomRepo) Delete(ctx context.Context, code string) error {
	delete(m.items, code)
	return nil
}

func (m *mockRoomRepo) Count(ctx context.Context) (int, error) {
	return len(m.items), nil
}

type fixedRoomCounter struct {
	count int
}

func (f fixedRoomCounter) CountByRoom(ctx context.Context, roomCode string) (int, error) {
	return f.count, nil
}

func newRoomService(repo *mockRoomRepo) *RoomService {
	return NewRoomService(repo, fixedRoomCounter{}, validator.New(), zap.NewNop())
}

func TestRoomServiceCreate(t *testing.T) {
	repo := &mockRoomRepo{}
	service := newRoomService(repo)

	room, err := service.Create(context.Background(), "ADM-000001", RoomRequest{
		Code:        "R-101",
		Description: "Lecture hall",
		Capacity:    80,
		Status:      "free",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusFree, room.Status)
	assert.Len(t, repo.items, 1)
}

func TestRoomServiceCreateInvalidStatus(t *testing.T) {
	service := newRoomService(&mockRoomRepo{})

	_, err := service.Create(context.Background(), "ADM-000001", RoomRequest{
		Code:        "R-101",
		Description: "Lecture hall",
		Status:      "BUSY",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRoomServiceCreateDuplicate(t *testing.T) {
	repo := &mockRoomRepo{items: map[string]*models.Room{
		"R-101": {Code: "R-101", Status: models.RoomStatusFree},
	}}
	service := newRoomService(repo)

	_, err := service.Create(context.Background(), "ADM-000001", RoomRequest{
		Code:        "R-101",
		Description: "Lecture hall",
		Status:      "FREE",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRoomServiceUpdateStatus(t *testing.T) {
	repo := &mockRoomRepo{items: map[string]*models.Room{
		"R-101": {Code: "R-101", Description: "Lecture hall", Capacity: 80, Status: models.RoomStatusFree},
	}}
	service := newRoomService(repo)

	updated, err := service.Update(context.Background(), "ADM-000001", "R-101", RoomRequest{Status: "OCCUPIED"})
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusOccupied, updated.Status)
	assert.Equal(t, "Lecture hall", updated.Description)
	assert.Equal(t, 80, updated.Capacity)
}

func TestRoomServiceUpdateNotFound(t *testing.T) {
	service := newRoomService(&mockRoomRepo{})

	_, err := service.Update(context.Background(), "ADM-000001", "R-404", RoomRequest{Status: "FREE"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRoomServiceFinders(t *testing.T) {
	repo := &mockRoomRepo{items: map[string]*models.Room{
		"R-101": {Code: "R-101", Capacity: 80, Status: models.RoomStatusFree},
		"R-202": {Code: "R-202", Capacity: 20, Status: models.RoomStatusClosed},
	}}
	service := newRoomService(repo)

	big, err := service.ListByMinCapacity(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, big, 1)
	assert.Equal(t, "R-101", big[0].Code)

	closed, err := service.ListByStatus(context.Background(), "closed")
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, "R-202", closed[0].Code)

	_, err = service.ListByStatus(context.Background(), "BUSY")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRoomServiceCreateNegativeCapacity(t *testing.T) {
	service := newRoomService(&mockRoomRepo{})

	_, err := service.Create(context.Background(), "ADM-000001", RoomRequest{
		Code:        "R-101",
		Description: "Lecture hall",
		Capacity:    -5,
		Status:      "FREE",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "negative")
}

func TestRoomServiceDeleteReferenced(t *testing.T) {
	repo := &mockRoomRepo{items: map[string]*models.Room{
		"R-101": {Code: "R-101", Status: models.RoomStatusFree},
	}}
	service := NewRoomService(repo, fixedRoomCounter{count: 3}, validator.New(), zap.NewNop())

	err := service.Delete(context.Background(), "ADM-000001", "R-101")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.items, 1)
}

func TestRoomServiceDeleteNotFound(t *testing.T) {
	service := newRoomService(&mockRoomRepo{})

	err := service.Delete(context.Background(), "ADM-000001", "R-404")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
