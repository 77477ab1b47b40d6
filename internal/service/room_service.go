package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eadl-dev/acadtrack-api/internal/models"
	appErrors "github.com/eadl-dev/acadtrack-api/pkg/errors"
)

type roomRepository interface {
	List(ctx context.Context) ([]models.Room, error)
	FindByCode(ctx context.Context, code string) (*models.Room, error)
	ListByMinCapacity(ctx context.Context, minCapacity int) ([]models.Room, error)
	ListByStatus(ctx context.Context, status models.RoomStatus) ([]models.Room, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, code string) error
	Count(ctx context.Context) (int, error)
}

// roomSessionCounter counts sessions booked into a room.
type roomSessionCounter interface {
	CountByRoom(ctx context.Context, roomCode string) (int, error)
}

// RoomRequest describes the payload for creating or updating a room.
// Update semantics are partial: empty fields keep their current value,
// so a capacity of zero means "keep the stored capacity".
type RoomRequest struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
	Status      string `json:"status"`
}

// RoomService manages rooms. The status field it writes is the live
// availability signal the scheduling gate reads; the scheduler itself
// never flips it.
type RoomService struct {
	repo      roomRepository
	sessions  roomSessionCounter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService instantiates RoomService.
func NewRoomService(repo roomRepository, sessions roomSessionCounter, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{repo: repo, sessions: sessions, validator: validate, logger: logger}
}

// Create adds a room under its natural-key code.
func (s *RoomService) Create(ctx context.Context, actor string, req RoomRequest) (*models.Room, error) {
	s.logger.Info("creating room", zap.String("actor", actor), zap.String("code", req.Code))

	if req.Code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room code is required")
	}
	if req.Description == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room description is required")
	}
	if req.Status == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room status is required")
	}
	if req.Capacity < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room capacity cannot be negative")
	}

	status, err := models.ParseRoomStatus(req.Status)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid room status: %s", req.Status))
	}

	found, err := s.repo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room")
	}
	if found {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("room already exists: %s", req.Code))
	}

	room := models.Room{
		Code:        req.Code,
		Description: req.Description,
		Capacity:    req.Capacity,
		Status:      status,
	}
	if err := s.repo.Create(ctx, &room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	return &room, nil
}

// List returns all rooms.
func (s *RoomService) List(ctx context.Context) ([]models.Room, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	return items, nil
}

// GetByCode returns a room by its code.
func (s *RoomService) GetByCode(ctx context.Context, code string) (*models.Room, error) {
	if code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room code is required")
	}
	room, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("room not found: %s", code))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	return room, nil
}

// ListByMinCapacity returns rooms holding at least the given capacity.
func (s *RoomService) ListByMinCapacity(ctx context.Context, minCapacity int) ([]models.Room, error) {
	if minCapacity < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "minimum capacity cannot be negative")
	}
	items, err := s.repo.ListByMinCapacity(ctx, minCapacity)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms by capacity")
	}
	return items, nil
}

// ListByStatus returns rooms in the given availability status.
func (s *RoomService) ListByStatus(ctx context.Context, rawStatus string) ([]models.Room, error) {
	status, err := models.ParseRoomStatus(rawStatus)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid room status: %s", rawStatus))
	}
	items, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms by status")
	}
	return items, nil
}

// Update modifies a room. Empty request fields keep the stored values;
// the code is immutable.
func (s *RoomService) Update(ctx context.Context, actor, code string, req RoomRequest) (*models.Room, error) {
	s.logger.Info("updating room", zap.String("actor", actor), zap.String("code", code))

	if code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room code is required")
	}
	if req.Capacity < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room capacity cannot be negative")
	}

	existing, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("room not found: %s", code))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}

	if req.Description != "" {
		existing.Description = req.Description
	}
	if req.Capacity != 0 {
		existing.Capacity = req.Capacity
	}
	if req.Status != "" {
		status, err := models.ParseRoomStatus(req.Status)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid room status: %s", req.Status))
		}
		existing.Status = status
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room")
	}
	return existing, nil
}

// Delete removes a room. Deletion is rejected while sessions are booked
// into the room, mirroring the schema's foreign key.
func (s *RoomService) Delete(ctx context.Context, actor, code string) error {
	s.logger.Warn("deleting room", zap.String("actor", actor), zap.String("code", code))

	if code == "" {
		return appErrors.Clone(appErrors.ErrValidation, "room code is required")
	}

	found, err := s.repo.ExistsByCode(ctx, code)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("room not found: %s", code))
	}

	if n, err := s.sessions.CountByRoom(ctx, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count referencing sessions")
	} else if n > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("room %s is referenced by %d session(s)", code, n))
	}

	if err := s.repo.Delete(ctx, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete room")
	}
	return nil
}

// Exists reports whether a room with the code is present.
func (s *RoomService) Exists(ctx context.Context, code string) (bool, error) {
	if code == "" {
		return false, appErrors.Clone(appErrors.ErrValidation, "room code is required")
	}
	found, err := s.repo.ExistsByCode(ctx, code)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room")
	}
	return found, nil
}

// Count returns the total number of rooms.
func (s *RoomService) Count(ctx context.Context) (int, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count rooms")
	}
	return total, nil
}
