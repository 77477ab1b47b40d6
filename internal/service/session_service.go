package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/eadl-dev/acadtrack-api/internal/models"
	appErrors "github.com/eadl-dev/acadtrack-api/pkg/errors"
)

type sessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id int64) (*models.Session, error)
	FindDetailByID(ctx context.Context, id int64) (*models.SessionDetailRow, error)
	ListDetails(ctx context.Context) ([]models.SessionDetailRow, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

type courseResolver interface {
	FindByCode(ctx context.Context, code string) (*models.Course, error)
}

type personnelResolver interface {
	FindByCode(ctx context.Context, code string) (*models.Personnel, error)
}

// SessionService is the scheduler: it composes the availability gate, the
// request validator, and the stores to implement session bookings. All
// mutating operations take the acting personnel code explicitly for
// attribution; there is no ambient caller context.
type SessionService struct {
	repo      sessionRepository
	courses   courseResolver
	personnel personnelResolver
	gate      *AvailabilityGate
	validator *SessionValidator
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewSessionService instantiates SessionService. metrics may be nil.
func NewSessionService(repo sessionRepository, courses courseResolver, personnel personnelResolver, gate *AvailabilityGate, validator *SessionValidator, metrics *MetricsService, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, courses: courses, personnel: personnel, gate: gate, validator: validator, metrics: metrics, logger: logger}
}

// Create books a new session. The request is validated, the target room
// must currently be FREE, and every referenced entity must exist; nothing
// is written unless all checks pass. The persist itself re-checks the room
// status under a row lock, so two concurrent creates cannot both succeed
// against a single FREE state.
func (s *SessionService) Create(ctx context.Context, actor string, req SessionRequest) (*models.SessionDetail, error) {
	s.logger.Info("creating session",
		zap.String("actor", actor),
		zap.String("course", req.CourseCode),
		zap.String("room", req.RoomCode))

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	room, err := s.gate.CheckAvailability(ctx, req.RoomCode)
	if err != nil {
		var unavailable *models.RoomUnavailableError
		if errors.As(err, &unavailable) {
			s.metrics.RecordGateRejection(string(unavailable.Status))
		}
		return nil, err
	}

	course, submitter, validator, err := s.resolveReferences(ctx, req)
	if err != nil {
		return nil, err
	}

	session := models.Session{
		Hours:         req.Hours,
		StartAt:       *req.StartAt,
		EndAt:         *req.EndAt,
		Status:        models.SessionStatusPending,
		CourseCode:    course.Code,
		RoomCode:      room.Code,
		SubmitterCode: submitter.Code,
		ValidatorCode: validator.Code,
	}

	if err := s.repo.Create(ctx, &session); err != nil {
		var unavailable *models.RoomUnavailableError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("room not found: %s", req.RoomCode))
		case errors.As(err, &unavailable):
			s.metrics.RecordGateRejection(string(unavailable.Status))
			return nil, appErrors.Wrap(unavailable, appErrors.ErrRoomUnavailable.Code, appErrors.ErrRoomUnavailable.Status, unavailable.Error())
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
		}
	}

	s.metrics.RecordSessionCreated()

	detail := models.SessionDetail{
		ID:      session.ID,
		Hours:   session.Hours,
		StartAt: session.StartAt,
		EndAt:   session.EndAt,
		Status:  session.Status,
		Course: models.CourseRef{
			Code:    course.Code,
			Label:   course.Label,
			Credits: course.Credits,
			Hours:   course.Hours,
		},
		Room: models.RoomRef{
			Code:        room.Code,
			Description: room.Description,
			Status:      room.Status,
		},
		Submitter: models.PersonnelRef{Code: submitter.Code, Name: submitter.Name},
		Validator: models.PersonnelRef{Code: validator.Code, Name: validator.Name},
	}
	return &detail, nil
}

// GetByID returns the projected session.
func (s *SessionService) GetByID(ctx context.Context, id int64) (*models.SessionDetail, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id must be positive")
	}
	row, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("session not found: %d", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	detail := row.Detail()
	return &detail, nil
}

// List returns all sessions projected to their response shape. An empty
// slice is a valid, non-error result.
func (s *SessionService) List(ctx context.Context) ([]models.SessionDetail, error) {
	rows, err := s.repo.ListDetails(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	details := make([]models.SessionDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.Detail())
	}
	return details, nil
}

// Update re-validates the request as if newly created and re-resolves the
// course and both personnel references. The room is NOT re-validated: the
// booking keeps the room of the existing session, matching create-time
// gating semantics.
func (s *SessionService) Update(ctx context.Context, actor string, id int64, req SessionRequest) (*models.SessionDetail, error) {
	s.logger.Info("updating session", zap.String("actor", actor), zap.Int64("id", id))

	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id must be positive")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("session not found: %d", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	// The room code is not part of the updatable surface; keep the
	// original booking's room so validation does not trip on it.
	req.RoomCode = existing.RoomCode

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	status := existing.Status
	if req.Status != "" {
		status, err = s.validator.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
	}

	course, submitter, validator, err := s.resolveReferences(ctx, req)
	if err != nil {
		return nil, err
	}

	existing.Hours = req.Hours
	existing.StartAt = *req.StartAt
	existing.EndAt = *req.EndAt
	existing.Status = status
	existing.CourseCode = course.Code
	existing.SubmitterCode = submitter.Code
	existing.ValidatorCode = validator.Code

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session")
	}

	row, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload session")
	}
	detail := row.Detail()
	return &detail, nil
}

// Delete removes a session; deleting an unknown id is an error, so a second
// delete of the same id reports not-found instead of silently succeeding.
func (s *SessionService) Delete(ctx context.Context, actor string, id int64) error {
	s.logger.Warn("deleting session", zap.String("actor", actor), zap.Int64("id", id))

	found, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check session")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("session not found: %d", id))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	return nil
}

// DeleteAll removes every session unconditionally. Irreversible.
func (s *SessionService) DeleteAll(ctx context.Context, actor string) error {
	s.logger.Warn("deleting ALL sessions", zap.String("actor", actor))

	if err := s.repo.DeleteAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete sessions")
	}
	return nil
}

func (s *SessionService) resolveReferences(ctx context.Context, req SessionRequest) (*models.Course, *models.Personnel, *models.Personnel, error) {
	course, err := s.courses.FindByCode(ctx, req.CourseCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course not found: %s", req.CourseCode))
		}
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	submitter, err := s.personnel.FindByCode(ctx, req.SubmitterCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("submitter not found: %s", req.SubmitterCode))
		}
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submitter")
	}

	validator, err := s.personnel.FindByCode(ctx, req.ValidatorCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("validator not found: %s", req.ValidatorCode))
		}
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load validator")
	}

	return course, submitter, validator, nil
}
