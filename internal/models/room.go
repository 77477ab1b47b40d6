package models

import (
	"fmt"
	"strings"
	"time"
)

// RoomStatus is the single source of truth for room availability. It is set
// by operators, never derived from session time windows.
type RoomStatus string

const (
	RoomStatusFree     RoomStatus = "FREE"
	RoomStatusOccupied RoomStatus = "OCCUPIED"
	RoomStatusClosed   RoomStatus = "CLOSED"
)

// ParseRoomStatus maps a free-form status string onto the enum.
func ParseRoomStatus(raw string) (RoomStatus, error) {
	switch RoomStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoomStatusFree:
		return RoomStatusFree, nil
	case RoomStatusOccupied:
		return RoomStatusOccupied, nil
	case RoomStatusClosed:
		return RoomStatusClosed, nil
	default:
		return "", fmt.Errorf("unknown room status %q", raw)
	}
}

// Room is a bookable space identified by its natural-key code.
type Room struct {
	Code        string     `db:"code" json:"code"`
	Description string     `db:"description" json:"description"`
	Capacity    int        `db:"capacity" json:"capacity"`
	Status      RoomStatus `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// RoomRef is the compact projection embedded in session responses.
type RoomRef struct {
	Code        string     `db:"code" json:"code"`
	Description string     `db:"description" json:"description"`
	Status      RoomStatus `db:"status" json:"status"`
}

// RoomUnavailableError is returned when a session targets a room whose
// status is not FREE.
type RoomUnavailableError struct {
	RoomCode string     `json:"room_code"`
	Status   RoomStatus `json:"status"`
}

// Error implements the error interface.
func (e *RoomUnavailableError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("room %s is currently %s", e.RoomCode, e.Status)
}
