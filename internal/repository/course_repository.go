package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eadl-dev/acadtrack-api/internal/models"
)

// CourseRepository provides persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = "code, label, description, credits, hours, created_at, updated_at"

// List returns all courses ordered by code.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses ORDER BY code ASC", courseColumns)
	var items []models.Course
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return items, nil
}

// FindByCode loads a course by its code.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE code = $1", courseColumns)
	var c models.Course
	if err := r.db.GetContext(ctx, &c, query, code); err != nil {
		return nil, err
	}
	return &c, nil
}

// SearchByLabel returns courses whose label contains the fragment, case-insensitively.
func (r *CourseRepository) SearchByLabel(ctx context.Context, fragment string) ([]models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE label ILIKE '%%' || $1 || '%%' ORDER BY code ASC", courseColumns)
	var items []models.Course
	if err := r.db.SelectContext(ctx, &items, query, fragment); err != nil {
		return nil, fmt.Errorf("search courses by label: %w", err)
	}
	return items, nil
}

// ListByMinCredits returns courses worth at least the given credit count.
func (r *CourseRepository) ListByMinCredits(ctx context.Context, minCredits int) ([]models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE credits >= $1 ORDER BY code ASC", courseColumns)
	var items []models.Course
	if err := r.db.SelectContext(ctx, &items, query, minCredits); err != nil {
		return nil, fmt.Errorf("list courses by min credits: %w", err)
	}
	return items, nil
}

// ListByMinHours returns courses with at least the given hour volume.
func (r *CourseRepository) ListByMinHours(ctx context.Context, minHours int) ([]models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE hours >= $1 ORDER BY code ASC", courseColumns)
	var items []models.Course
	if err := r.db.SelectContext(ctx, &items, query, minHours); err != nil {
		return nil, fmt.Errorf("list courses by min hours: %w", err)
	}
	return items, nil
}

// ExistsByCode reports whether a course with the code exists.
func (r *CourseRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, `SELECT 1 FROM courses WHERE code = $1 LIMIT 1`, code)
	return exists(err, "course exists by code")
}

// Create stores a new course record.
func (r *CourseRepository) Create(ctx context.Context, c *models.Course) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	const query = `INSERT INTO courses (code, label, description, credits, hours, created_at, updated_at) VALUES (:code, :label, :description, :credits, :hours, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies a course record. The code is immutable.
func (r *CourseRepository) Update(ctx context.Context, c *models.Course) error {
	c.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET label = :label, description = :description, credits = :credits, hours = :hours, updated_at = :updated_at WHERE code = :code`
	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes a course by code.
func (r *CourseRepository) Delete(ctx context.Context, code string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE code = $1`, code); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

// Count returns the total number of courses.
func (r *CourseRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM courses`); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return total, nil
}
