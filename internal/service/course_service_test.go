package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eadl-dev/acadtrack-api/internal/models"
	appErrors "github.com/eadl-dev/acadtrack-api/pkg/errors"
)

type mockCourseRepo struct {
	items map[string]*models.Course
}

func (m *mockCourseRepo) List(ctx context.Context) ([]models.Course, error) {
	out := make([]models.Course, 0, len(m.items))
	for _, c := range m.items {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCourseRepo) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	if c, ok := m.items[code]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) SearchByLabel(ctx context.Context, fragment string) ([]models.Course, error) {
	out := make([]models.Course, 0)
	for _, c := range m.items {
		if strings.Contains(strings.ToLower(c.Label), strings.ToLower(fragment)) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCourseRepo) ListByMinCredits(ctx context.Context, minCredits int) ([]models.Course, error) {
	out := make([]models.Course, 0)
	for _, c := range m.items {
		if c.Credits >= minCredits {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCourseRepo) ListByMinHours(ctx context.Context, minHours int) ([]models.Course, error) {
	out := make([]models.Course, 0)
	for _, c := range m.items {
		if c.Hours >= minHours {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCourseRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, ok := m.items[code]
	return ok, nil
}

func (m *mockCourseRepo) Create(ctx context.Context, c *models.Course) error {
	if m.items == nil {
		m.items = make(map[string]*models.Course)
	}
	cp := *c
	m.items[c.Code] = &cp
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, c *models.Course) error {
	cp := *c
	m.items[c.Code] = &cp
	return nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, code string) error {
	delete(m.items, code)
	return nil
}

func (m *mockCourseRepo) Count(ctx context.Context) (int, error) {
	return len(m.items), nil
}

type fixedCourseCounter struct {
	count int
}

func (f fixedCourseCounter) CountByCourse(ctx context.Context, courseCode string) (int, error) {
	return f.count, nil
}

func newCourseService(repo *mockCourseRepo, sessions, assignments courseSessionCounter) *CourseService {
	return NewCourseService(repo, sessions, assignments, nil, validator.New(), zap.NewNop())
}

func TestCourseServiceCreate(t *testing.T) {
	repo := &mockCourseRepo{}
	service := newCourseService(repo, fixedCourseCounter{}, fixedCourseCounter{})

	course, err := service.Create(context.Background(), "ADM-000001", CourseRequest{
		Code:    "MATH101",
		Label:   "Calculus",
		Credits: 6,
		Hours:   48,
	})
	require.NoError(t, err)
	assert.Equal(t, "MATH101", course.Code)
	assert.Len(t, repo.items, 1)
}

func TestCourseServiceCreateDuplicate(t *testing.T) {
	repo := &mockCourseRepo{}
	service := newCourseService(repo, fixedCourseCounter{}, fixedCourseCounter{})

	req := CourseRequest{Code: "MATH101", Label: "Calculus"}
	_, err := service.Create(context.Background(), "ADM-000001", req)
	require.NoError(t, err)

	_, err = service.Create(context.Background(), "ADM-000001", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceCreateInvalid(t *testing.T) {
	service := newCourseService(&mockCourseRepo{}, fixedCourseCounter{}, fixedCourseCounter{})

	_, err := service.Create(context.Background(), "ADM-000001", CourseRequest{Code: "MATH101"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = service.Create(context.Background(), "ADM-000001", CourseRequest{Label: "Calculus"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceGetByCodeNotFound(t *testing.T) {
	service := newCourseService(&mockCourseRepo{}, fixedCourseCounter{}, fixedCourseCounter{})

	_, err := service.GetByCode(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceFinders(t *testing.T) {
	repo := &mockCourseRepo{items: map[string]*models.Course{
		"MATH101": {Code: "MATH101", Label: "Calculus", Credits: 6, Hours: 48},
		"HIST200": {Code: "HIST200", Label: "Modern History", Credits: 3, Hours: 24},
	}}
	service := newCourseService(repo, fixedCourseCounter{}, fixedCourseCounter{})

	found, err := service.SearchByLabel(context.Background(), "calc")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "MATH101", found[0].Code)

	byCredits, err := service.ListByMinCredits(context.Background(), 4)
	require.NoError(t, err)
	assert.Len(t, byCredits, 1)

	byHours, err := service.ListByMinHours(context.Background(), 24)
	require.NoError(t, err)
	assert.Len(t, byHours, 2)

	_, err = service.ListByMinCredits(context.Background(), -1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceDeleteGuarded(t *testing.T) {
	repo := &mockCourseRepo{items: map[string]*models.Course{
		"MATH101": {Code: "MATH101", Label: "Calculus"},
	}}
	service := newCourseService(repo, fixedCourseCounter{count: 1}, fixedCourseCounter{})

	err := service.Delete(context.Background(), "ADM-000001", "MATH101")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.items, 1)
}

func TestCourseServiceDelete(t *testing.T) {
	repo := &mockCourseRepo{items: map[string]*models.Course{
		"MATH101": {Code: "MATH101", Label: "Calculus"},
	}}
	service := newCourseService(repo, fixedCourseCounter{}, fixedCourseCounter{})

	require.NoError(t, service.Delete(context.Background(), "ADM-000001", "MATH101"))
	assert.Empty(t, repo.items)
}
