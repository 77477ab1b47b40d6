package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eadl-dev/acadtrack-api/internal/models"
)

// AssignmentRepository provides persistence for personnel-course assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentDetailQuery = `SELECT a.course_code, a.personnel_code,
c.label AS course_label, c.credits AS course_credits, c.hours AS course_hours,
p.name AS personnel_name
FROM assignments a
JOIN courses c ON c.code = a.course_code
JOIN personnel p ON p.code = a.personnel_code`

// Exists reports whether the composite key is already present.
func (r *AssignmentRepository) Exists(ctx context.Context, key models.AssignmentKey) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, `SELECT 1 FROM assignments WHERE course_code = $1 AND personnel_code = $2 LIMIT 1`, key.CourseCode, key.PersonnelCode)
	return exists(err, "assignment exists")
}

// Create stores a new assignment keyed by the composite identity.
func (r *AssignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignments (course_code, personnel_code, created_at) VALUES (:course_code, :personnel_code, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// FindDetailByKey loads the joined projection of an assignment.
func (r *AssignmentRepository) FindDetailByKey(ctx context.Context, key models.AssignmentKey) (*models.AssignmentDetailRow, error) {
	var row models.AssignmentDetailRow
	if err := r.db.GetContext(ctx, &row, assignmentDetailQuery+" WHERE a.course_code = $1 AND a.personnel_code = $2", key.CourseCode, key.PersonnelCode); err != nil {
		return nil, err
	}
	return &row, nil
}

// ListDetails returns the joined projection of every assignment.
func (r *AssignmentRepository) ListDetails(ctx context.Context) ([]models.AssignmentDetailRow, error) {
	var rows []models.AssignmentDetailRow
	if err := r.db.SelectContext(ctx, &rows, assignmentDetailQuery+" ORDER BY a.course_code ASC, a.personnel_code ASC"); err != nil {
		return nil, fmt.Errorf("list assignment details: %w", err)
	}
	return rows, nil
}

// Delete removes an assignment by its composite key.
func (r *AssignmentRepository) Delete(ctx context.Context, key models.AssignmentKey) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE course_code = $1 AND personnel_code = $2`, key.CourseCode, key.PersonnelCode); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}

// CountByCourse returns how many assignments reference the course.
func (r *AssignmentRepository) CountByCourse(ctx context.Context, courseCode string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM assignments WHERE course_code = $1`, courseCode); err != nil {
		return 0, fmt.Errorf("count assignments by course: %w", err)
	}
	return total, nil
}

// CountByPersonnel returns how many assignments reference the personnel.
func (r *AssignmentRepository) CountByPersonnel(ctx context.Context, personnelCode string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM assignments WHERE personnel_code = $1`, personnelCode); err != nil {
		return 0, fmt.Errorf("count assignments by personnel: %w", err)
	}
	return total, nil
}

// Count returns the total number of assignments.
func (r *AssignmentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM assignments`); err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}
	return total, nil
}
