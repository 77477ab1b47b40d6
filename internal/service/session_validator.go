package service

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/eadl-dev/acadtrack-api/internal/models"
	appErrors "github.com/eadl-dev/acadtrack-api/pkg/errors"
)

// SessionRequest describes the payload for creating or updating a session.
type SessionRequest struct {
	Hours         int        `json:"hours" validate:"gte=0"`
	StartAt       *time.Time `json:"start_at"`
	EndAt         *time.Time `json:"end_at"`
	Status        string     `json:"status,omitempty"`
	CourseCode    string     `json:"course_code"`
	RoomCode      string     `json:"room_code"`
	SubmitterCode string     `json:"submitter_code" validate:"required"`
	ValidatorCode string     `json:"validator_code" validate:"required"`
}

// SessionValidator checks a session request's temporal well-formedness and
// required fields. It performs no I/O; referential checks belong to the
// scheduler.
type SessionValidator struct {
	validate *validator.Validate
}

// NewSessionValidator constructs the validator.
func NewSessionValidator(validate *validator.Validate) *SessionValidator {
	if validate == nil {
		validate = validator.New()
	}
	return &SessionValidator{validate: validate}
}

// Validate rejects requests with missing codes, absent timestamps, or an
// end that is not strictly after the start.
func (v *SessionValidator) Validate(req SessionRequest) error {
	if req.RoomCode == "" {
		return appErrors.Clone(appErrors.ErrValidation, "room code is required")
	}
	if req.CourseCode == "" {
		return appErrors.Clone(appErrors.ErrValidation, "course code is required")
	}
	if req.StartAt == nil {
		return appErrors.Clone(appErrors.ErrValidation, "start timestamp is required")
	}
	if req.EndAt == nil {
		return appErrors.Clone(appErrors.ErrValidation, "end timestamp is required")
	}
	if !req.EndAt.After(*req.StartAt) {
		return appErrors.Clone(appErrors.ErrValidation, "end timestamp must be after start timestamp")
	}

	if err := v.validate.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	return nil
}

// ParseStatus maps the request's workflow status onto the enum, rejecting
// unknown values.
func (v *SessionValidator) ParseStatus(raw string) (models.SessionStatus, error) {
	status, err := models.ParseSessionStatus(raw)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid session status: %s", raw))
	}
	return status, nil
}
