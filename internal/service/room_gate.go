package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/eadl-dev/acadtrack-api/internal/models"
	appErrors "github.com/eadl-dev/acadtrack-api/pkg/errors"
)

type gateRoomRepository interface {
	FindByCode(ctx context.Context, code string) (*models.Room, error)
}

// AvailabilityGate decides whether a room can accept a new session. The
// decision is based solely on the room's current status flag; there is no
// interval index and no overlap detection against existing sessions.
type AvailabilityGate struct {
	rooms gateRoomRepository
}

// NewAvailabilityGate constructs the gate.
func NewAvailabilityGate(rooms gateRoomRepository) *AvailabilityGate {
	return &AvailabilityGate{rooms: rooms}
}

// CheckAvailability resolves the room and returns it only when its status
// is FREE. It has no side effects.
func (g *AvailabilityGate) CheckAvailability(ctx context.Context, roomCode string) (*models.Room, error) {
	if strings.TrimSpace(roomCode) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room code is required")
	}

	room, err := g.rooms.FindByCode(ctx, roomCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("room not found: %s", roomCode))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}

	if room.Status != models.RoomStatusFree {
		unavailable := &models.RoomUnavailableError{RoomCode: room.Code, Status: room.Status}
		return nil, appErrors.Wrap(unavailable, appErrors.ErrRoomUnavailable.Code, appErrors.ErrRoomUnavailable.Status, unavailable.Error())
	}

	return room, nil
}
