package models

import (
	"fmt"
	"strings"
	"time"
)

// SessionStatus enumerates the workflow states of a scheduled session.
// Transition legality between the states is caller policy; the scheduler
// only guarantees the value is one of the enumerated ones.
type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "PENDING"
	SessionStatusValidated SessionStatus = "VALIDATED"
	SessionStatusRejected  SessionStatus = "REJECTED"
)

// ParseSessionStatus maps a free-form status string onto the enum.
func ParseSessionStatus(raw string) (SessionStatus, error) {
	switch SessionStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case SessionStatusPending:
		return SessionStatusPending, nil
	case SessionStatusValidated:
		return SessionStatusValidated, nil
	case SessionStatusRejected:
		return SessionStatusRejected, nil
	default:
		return "", fmt.Errorf("unknown session status %q", raw)
	}
}

// Session binds a course, a room, a submitting and a validating personnel
// to a time window. The id is assigned by the database, monotonically.
type Session struct {
	ID            int64         `db:"id" json:"id"`
	Hours         int           `db:"hours" json:"hours"`
	StartAt       time.Time     `db:"start_at" json:"start_at"`
	EndAt         time.Time     `db:"end_at" json:"end_at"`
	Status        SessionStatus `db:"status" json:"status"`
	CourseCode    string        `db:"course_code" json:"course_code"`
	RoomCode      string        `db:"room_code" json:"room_code"`
	SubmitterCode string        `db:"submitter_code" json:"submitter_code"`
	ValidatorCode string        `db:"validator_code" json:"validator_code"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// SessionDetail is the response projection with resolved references.
type SessionDetail struct {
	ID        int64         `json:"id"`
	Hours     int           `json:"hours"`
	StartAt   time.Time     `json:"start_at"`
	EndAt     time.Time     `json:"end_at"`
	Status    SessionStatus `json:"status"`
	Course    CourseRef     `json:"course"`
	Room      RoomRef       `json:"room"`
	Submitter PersonnelRef  `json:"submitter"`
	Validator PersonnelRef  `json:"validator"`
}

// SessionDetailRow is the flat shape produced by the joined listing query.
type SessionDetailRow struct {
	ID              int64         `db:"id"`
	Hours           int           `db:"hours"`
	StartAt         time.Time     `db:"start_at"`
	EndAt           time.Time     `db:"end_at"`
	Status          SessionStatus `db:"status"`
	CourseCode      string        `db:"course_code"`
	CourseLabel     string        `db:"course_label"`
	CourseCredits   int           `db:"course_credits"`
	CourseHours     int           `db:"course_hours"`
	RoomCode        string        `db:"room_code"`
	RoomDescription string        `db:"room_description"`
	RoomStatus      RoomStatus    `db:"room_status"`
	SubmitterCode   string        `db:"submitter_code"`
	SubmitterName   string        `db:"submitter_name"`
	ValidatorCode   string        `db:"validator_code"`
	ValidatorName   string        `db:"validator_name"`
}

// Detail expands the flat row into the nested response projection.
func (r SessionDetailRow) Detail() SessionDetail {
	return SessionDetail{
		ID:      r.ID,
		Hours:   r.Hours,
		StartAt: r.StartAt,
		EndAt:   r.EndAt,
		Status:  r.Status,
		Course: CourseRef{
			Code:    r.CourseCode,
			Label:   r.CourseLabel,
			Credits: r.CourseCredits,
			Hours:   r.CourseHours,
		},
		Room: RoomRef{
			Code:        r.RoomCode,
			Description: r.RoomDescription,
			Status:      r.RoomStatus,
		},
		Submitter: PersonnelRef{Code: r.SubmitterCode, Name: r.SubmitterName},
		Validator: PersonnelRef{Code: r.ValidatorCode, Name: r.ValidatorName},
	}
}
