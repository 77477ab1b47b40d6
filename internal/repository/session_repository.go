package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eadl-dev/acadtrack-api/internal/models"
)

// SessionRepository provides persistence for scheduled sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = "id, hours, start_at, end_at, status, course_code, room_code, submitter_code, validator_code, created_at, updated_at"

const sessionDetailQuery = `SELECT s.id, s.hours, s.start_at, s.end_at, s.status,
c.code AS course_code, c.label AS course_label, c.credits AS course_credits, c.hours AS course_hours,
r.code AS room_code, r.description AS room_description, r.status AS room_status,
ps.code AS submitter_code, ps.name AS submitter_name,
pv.code AS validator_code, pv.name AS validator_name
FROM sessions s
JOIN courses c ON c.code = s.course_code
JOIN rooms r ON r.code = s.room_code
JOIN personnel ps ON ps.code = s.submitter_code
JOIN personnel pv ON pv.code = s.validator_code`

// Create persists a session while holding the room row lock. The status is
// re-checked under the lock so that at most one concurrent create can
// observe the room as FREE and succeed; the loser sees the final status.
// sql.ErrNoRows is returned untouched when the room does not exist.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create session: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var status models.RoomStatus
	if err = tx.GetContext(ctx, &status, `SELECT status FROM rooms WHERE code = $1 FOR UPDATE`, session.RoomCode); err != nil {
		return err
	}
	if status != models.RoomStatusFree {
		err = &models.RoomUnavailableError{RoomCode: session.RoomCode, Status: status}
		return err
	}

	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	const insert = `INSERT INTO sessions (hours, start_at, end_at, status, course_code, room_code, submitter_code, validator_code, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	if err = tx.QueryRowxContext(ctx, insert,
		session.Hours, session.StartAt, session.EndAt, session.Status,
		session.CourseCode, session.RoomCode, session.SubmitterCode, session.ValidatorCode,
		session.CreatedAt, session.UpdatedAt,
	).Scan(&session.ID); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create session: %w", err)
	}
	return nil
}

// FindByID loads a session by id.
func (r *SessionRepository) FindByID(ctx context.Context, id int64) (*models.Session, error) {
	query := fmt.Sprintf("SELECT %s FROM sessions WHERE id = $1", sessionColumns)
	var s models.Session
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindDetailByID loads the joined projection of a session.
func (r *SessionRepository) FindDetailByID(ctx context.Context, id int64) (*models.SessionDetailRow, error) {
	var row models.SessionDetailRow
	if err := r.db.GetContext(ctx, &row, sessionDetailQuery+" WHERE s.id = $1", id); err != nil {
		return nil, err
	}
	return &row, nil
}

// ListDetails returns the joined projection of every session.
func (r *SessionRepository) ListDetails(ctx context.Context) ([]models.SessionDetailRow, error) {
	var rows []models.SessionDetailRow
	if err := r.db.SelectContext(ctx, &rows, sessionDetailQuery+" ORDER BY s.id ASC"); err != nil {
		return nil, fmt.Errorf("list session details: %w", err)
	}
	return rows, nil
}

// ExistsByID reports whether a session with the id exists.
func (r *SessionRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, `SELECT 1 FROM sessions WHERE id = $1 LIMIT 1`, id)
	return exists(err, "session exists by id")
}

// Update modifies a session record. The room gate is not re-run here; the
// booking keeps its original room unless the caller changed the code, and
// re-validation on update is the scheduler's responsibility.
func (r *SessionRepository) Update(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now().UTC()
	const query = `UPDATE sessions SET hours = :hours, start_at = :start_at, end_at = :end_at, status = :status, course_code = :course_code, room_code = :room_code, submitter_code = :submitter_code, validator_code = :validator_code, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// Delete removes a session by id.
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteAll removes every session record.
func (r *SessionRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("delete all sessions: %w", err)
	}
	return nil
}

// CountByCourse returns how many sessions reference the course.
func (r *SessionRepository) CountByCourse(ctx context.Context, courseCode string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM sessions WHERE course_code = $1`, courseCode); err != nil {
		return 0, fmt.Errorf("count sessions by course: %w", err)
	}
	return total, nil
}

// CountByRoom returns how many sessions are booked into the room.
func (r *SessionRepository) CountByRoom(ctx context.Context, roomCode string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM sessions WHERE room_code = $1`, roomCode); err != nil {
		return 0, fmt.Errorf("count sessions by room: %w", err)
	}
	return total, nil
}

// CountByPersonnel returns how many sessions reference the personnel as
// submitter or validator.
func (r *SessionRepository) CountByPersonnel(ctx context.Context, personnelCode string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM sessions WHERE submitter_code = $1 OR validator_code = $1`, personnelCode); err != nil {
		return 0, fmt.Errorf("count sessions by personnel: %w", err)
	}
	return total, nil
}

// Count returns the total number of sessions.
func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM sessions`); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return total, nil
}
