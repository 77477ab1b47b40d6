package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/eadl-dev/acadtrack-api/internal/models"
	appErrors "github.com/eadl-dev/acadtrack-api/pkg/errors"
)

type assignmentRepository interface {
	Exists(ctx context.Context, key models.AssignmentKey) (bool, error)
	Create(ctx context.Context, a *models.Assignment) error
	FindDetailByKey(ctx context.Context, key models.AssignmentKey) (*models.AssignmentDetailRow, error)
	ListDetails(ctx context.Context) ([]models.AssignmentDetailRow, error)
	Delete(ctx context.Context, key models.AssignmentKey) error
}

// AssignmentRequest describes the payload for creating an assignment.
type AssignmentRequest struct {
	CourseCode    string `json:"course_code"`
	PersonnelCode string `json:"personnel_code"`
}

// AssignmentService manages the Personnel↔Course relation keyed by the
// composite (course code, personnel code) identity.
type AssignmentService struct {
	repo      assignmentRepository
	courses   courseResolver
	personnel personnelResolver
	logger    *zap.Logger
}

// NewAssignmentService instantiates AssignmentService.
func NewAssignmentService(repo assignmentRepository, courses courseResolver, personnel personnelResolver, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, courses: courses, personnel: personnel, logger: logger}
}

// Create links a personnel to a course. The pair must not already exist and
// both parents must resolve.
func (s *AssignmentService) Create(ctx context.Context, actor string, req AssignmentRequest) (*models.AssignmentDetail, error) {
	s.logger.Info("creating assignment",
		zap.String("actor", actor),
		zap.String("course", req.CourseCode),
		zap.String("personnel", req.PersonnelCode))

	key, err := assignmentKey(req.CourseCode, req.PersonnelCode)
	if err != nil {
		return nil, err
	}

	found, err := s.repo.Exists(ctx, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
	}
	if found {
		return nil, appErrors.Clone(appErrors.ErrDuplicateAssignment, fmt.Sprintf("assignment already exists for course %s and personnel %s", key.CourseCode, key.PersonnelCode))
	}

	personnel, err := s.personnel.FindByCode(ctx, key.PersonnelCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("personnel not found: %s", key.PersonnelCode))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load personnel")
	}

	course, err := s.courses.FindByCode(ctx, key.CourseCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course not found: %s", key.CourseCode))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	assignment := models.Assignment{CourseCode: course.Code, PersonnelCode: personnel.Code}
	if err := s.repo.Create(ctx, &assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}

	detail := models.AssignmentDetail{
		CourseCode:    course.Code,
		PersonnelCode: personnel.Code,
		Course: models.CourseRef{
			Code:    course.Code,
			Label:   course.Label,
			Credits: course.Credits,
			Hours:   course.Hours,
		},
		Personnel: models.PersonnelRef{Code: personnel.Code, Name: personnel.Name},
	}
	return &detail, nil
}

// GetByID returns the projected assignment for the composite key.
func (s *AssignmentService) GetByID(ctx context.Context, courseCode, personnelCode string) (*models.AssignmentDetail, error) {
	key, err := assignmentKey(courseCode, personnelCode)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.FindDetailByKey(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("assignment not found for course %s and personnel %s", key.CourseCode, key.PersonnelCode))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	detail := row.Detail()
	return &detail, nil
}

// List returns all assignments with their parent projections.
func (s *AssignmentService) List(ctx context.Context) ([]models.AssignmentDetail, error) {
	rows, err := s.repo.ListDetails(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	details := make([]models.AssignmentDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.Detail())
	}
	return details, nil
}

// Delete removes the assignment; an absent pair is an error.
func (s *AssignmentService) Delete(ctx context.Context, actor, courseCode, personnelCode string) error {
	s.logger.Info("deleting assignment",
		zap.String("actor", actor),
		zap.String("course", courseCode),
		zap.String("personnel", personnelCode))

	key, err := assignmentKey(courseCode, personnelCode)
	if err != nil {
		return err
	}

	found, err := s.repo.Exists(ctx, key)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("assignment not found for course %s and personnel %s", key.CourseCode, key.PersonnelCode))
	}

	if err := s.repo.Delete(ctx, key); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}

func assignmentKey(courseCode, personnelCode string) (models.AssignmentKey, error) {
	if strings.TrimSpace(courseCode) == "" {
		return models.AssignmentKey{}, appErrors.Clone(appErrors.ErrValidation, "course code is required")
	}
	if strings.TrimSpace(personnelCode) == "" {
		return models.AssignmentKey{}, appErrors.Clone(appErrors.ErrValidation, "personnel code is required")
	}
	return models.AssignmentKey{CourseCode: courseCode, PersonnelCode: personnelCode}, nil
}
