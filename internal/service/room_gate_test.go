package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eadl-dev/acadtrack-api/internal/models"
	appErrors "github.com/eadl-dev/acadtrack-api/pkg/errors"
)

func TestAvailabilityGateFreeRoom(t *testing.T) {
	rooms := &mockRoomResolver{items: map[string]*models.Room{
		"R-1": {Code: "R-1", Status: models.RoomStatusFree},
	}}
	gate := NewAvailabilityGate(rooms)

	room, err := gate.CheckAvailability(context.Background(), "R-1")
	require.NoError(t, err)
	assert.Equal(t, "R-1", room.Code)
}

func TestAvailabilityGateBlockedStatuses(t *testing.T) {
	for _, status := range []models.RoomStatus{models.RoomStatusOccupied, models.RoomStatusClosed} {
		rooms := &mockRoomResolver{items: map[string]*models.Room{
			"R-1": {Code: "R-1", Status: status},
		}}
		gate := NewAvailabilityGate(rooms)

		_, err := gate.CheckAvailability(context.Background(), "R-1")
		require.Error(t, err, "status %s must block", status)

		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrRoomUnavailable.Code, appErr.Code)
		assert.Equal(t, 409, appErr.Status)

		var unavailable *models.RoomUnavailableError
		require.True(t, errors.As(err, &unavailable))
		assert.Equal(t, status, unavailable.Status)
		assert.Contains(t, unavailable.Error(), "R-1")
	}
}

func TestAvailabilityGateUnknownRoom(t *testing.T) {
	gate := NewAvailabilityGate(&mockRoomResolver{})

	_, err := gate.CheckAvailability(context.Background(), "R-404")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityGateBlankCode(t *testing.T) {
	gate := NewAvailabilityGate(&mockRoomResolver{})

	_, err := gate.CheckAvailability(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
