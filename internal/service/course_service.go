package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eadl-dev/acadtrack-api/internal/models"
	"github.com/eadl-dev/acadtrack-api/pkg/cache"
	appErrors "github.com/eadl-dev/acadtrack-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByCode(ctx context.Context, code string) (*models.Course, error)
	SearchByLabel(ctx context.Context, fragment string) ([]models.Course, error)
	ListByMinCredits(ctx context.Context, minCredits int) ([]models.Course, error)
	ListByMinHours(ctx context.Context, minHours int) ([]models.Course, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, c *models.Course) error
	Update(ctx context.Context, c *models.Course) error
	Delete(ctx context.Context, code string) error
	Count(ctx context.Context) (int, error)
}

type courseSessionCounter interface {
	CountByCourse(ctx context.Context, courseCode string) (int, error)
}

// CourseRequest describes the payload for creating or updating a course.
type CourseRequest struct {
	Code        string `json:"code"`
	Label       string `json:"label" validate:"required"`
	Description string `json:"description"`
	Credits     int    `json:"credits" validate:"gte=0"`
	Hours       int    `json:"hours" validate:"gte=0"`
}

const courseListCacheKey = "courses:list"

// CourseService manages the course catalog.
type CourseService struct {
	repo        courseRepository
	sessions    courseSessionCounter
	assignments courseSessionCounter
	store       *cache.Store
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService instantiates CourseService.
func NewCourseService(repo courseRepository, sessions, assignments courseSessionCounter, store *cache.Store, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, sessions: sessions, assignments: assignments, store: store, validator: validate, logger: logger}
}

// Create adds a course under its natural-key code.
func (s *CourseService) Create(ctx context.Context, actor string, req CourseRequest) (*models.Course, error) {
	s.logger.Info("creating course", zap.String("actor", actor), zap.String("code", req.Code))

	if req.Code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course code is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	found, err := s.repo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course")
	}
	if found {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("course already exists: %s", req.Code))
	}

	course := models.Course{
		Code:        req.Code,
		Label:       req.Label,
		Description: req.Description,
		Credits:     req.Credits,
		Hours:       req.Hours,
	}
	if err := s.repo.Create(ctx, &course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.invalidateListCache(ctx)
	return &course, nil
}

// List returns all courses, read through the catalog cache when enabled.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	var cached []models.Course
	if hit, err := s.store.Get(ctx, courseListCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	if err := s.store.Set(ctx, courseListCacheKey, items); err != nil {
		s.logger.Warn("failed to cache course list", zap.Error(err))
	}
	return items, nil
}

// GetByCode returns a course by its code.
func (s *CourseService) GetByCode(ctx context.Context, code string) (*models.Course, error) {
	if code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course code is required")
	}
	course, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course not found: %s", code))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// SearchByLabel returns courses whose label contains the fragment.
func (s *CourseService) SearchByLabel(ctx context.Context, fragment string) ([]models.Course, error) {
	items, err := s.repo.SearchByLabel(ctx, fragment)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search courses")
	}
	return items, nil
}

// ListByMinCredits returns courses worth at least the given credit count.
func (s *CourseService) ListByMinCredits(ctx context.Context, minCredits int) ([]models.Course, error) {
	if minCredits < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "minimum credits cannot be negative")
	}
	items, err := s.repo.ListByMinCredits(ctx, minCredits)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses by credits")
	}
	return items, nil
}

// ListByMinHours returns courses with at least the given hour volume.
func (s *CourseService) ListByMinHours(ctx context.Context, minHours int) ([]models.Course, error) {
	if minHours < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "minimum hours cannot be negative")
	}
	items, err := s.repo.ListByMinHours(ctx, minHours)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses by hours")
	}
	return items, nil
}

// Update modifies a course. The code is immutable.
func (s *CourseService) Update(ctx context.Context, actor, code string, req CourseRequest) (*models.Course, error) {
	s.logger.Info("updating course", zap.String("actor", actor), zap.String("code", code))

	if code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course code is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	existing, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course not found: %s", code))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	existing.Label = req.Label
	existing.Description = req.Description
	existing.Credits = req.Credits
	existing.Hours = req.Hours

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	s.invalidateListCache(ctx)
	return existing, nil
}

// Delete removes a course. Deletion is rejected while sessions or
// assignments still reference the code.
func (s *CourseService) Delete(ctx context.Context, actor, code string) error {
	s.logger.Warn("deleting course", zap.String("actor", actor), zap.String("code", code))

	if code == "" {
		return appErrors.Clone(appErrors.ErrValidation, "course code is required")
	}

	found, err := s.repo.ExistsByCode(ctx, code)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course not found: %s", code))
	}

	if n, err := s.sessions.CountByCourse(ctx, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count referencing sessions")
	} else if n > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("course %s is referenced by %d session(s)", code, n))
	}

	if n, err := s.assignments.CountByCourse(ctx, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count referencing assignments")
	} else if n > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("course %s is referenced by %d assignment(s)", code, n))
	}

	if err := s.repo.Delete(ctx, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}

	s.invalidateListCache(ctx)
	return nil
}

// Exists reports whether a course with the code is present.
func (s *CourseService) Exists(ctx context.Context, code string) (bool, error) {
	if code == "" {
		return false, appErrors.Clone(appErrors.ErrValidation, "course code is required")
	}
	found, err := s.repo.ExistsByCode(ctx, code)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course")
	}
	return found, nil
}

// Count returns the total number of courses.
func (s *CourseService) Count(ctx context.Context) (int, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count courses")
	}
	return total, nil
}

func (s *CourseService) invalidateListCache(ctx context.Context) {
	if err := s.store.Invalidate(ctx, courseListCacheKey); err != nil {
		s.logger.Warn("failed to invalidate course list cache", zap.Error(err))
	}
}
