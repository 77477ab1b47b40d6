package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eadl-dev/acadtrack-api/internal/models"
)

// RoomRepository provides persistence for rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

const roomColumns = "code, description, capacity, status, created_at, updated_at"

// List returns all rooms ordered by code.
func (r *RoomRepository) List(ctx context.Context) ([]models.Room, error) {
	query := fmt.Sprintf("SELECT %s FROM rooms ORDER BY code ASC", roomColumns)
	var items []models.Room
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return items, nil
}

// FindByCode loads a room by its code.
func (r *RoomRepository) FindByCode(ctx context.Context, code string) (*models.Room, error) {
	query := fmt.Sprintf("SELECT %s FROM rooms WHERE code = $1", roomColumns)
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, code); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListByMinCapacity returns rooms holding at least the given capacity.
func (r *RoomRepository) ListByMinCapacity(ctx context.Context, minCapacity int) ([]models.Room, error) {
	query := fmt.Sprintf("SELECT %s FROM rooms WHERE capacity >= $1 ORDER BY code ASC", roomColumns)
	var items []models.Room
	if err := r.db.SelectContext(ctx, &items, query, minCapacity); err != nil {
		return nil, fmt.Errorf("list rooms by min capacity: %w", err)
	}
	return items, nil
}

// ListByStatus returns rooms in the given availability status.
func (r *RoomRepository) ListByStatus(ctx context.Context, status models.RoomStatus) ([]models.Room, error) {
	query := fmt.Sprintf("SELECT %s FROM rooms WHERE status = $1 ORDER BY code ASC", roomColumns)
	var items []models.Room
	if err := r.db.SelectContext(ctx, &items, query, status); err != nil {
		return nil, fmt.Errorf("list rooms by status: %w", err)
	}
	return items, nil
}

// ExistsByCode reports whether a room with the code exists.
func (r *RoomRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, `SELECT 1 FROM rooms WHERE code = $1 LIMIT 1`, code)
	return exists(err, "room exists by code")
}

// Create stores a new room record.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now

	const query = `INSERT INTO rooms (code, description, capacity, status, created_at, updated_at) VALUES (:code, :description, :capacity, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Update modifies a room record. The code is immutable; status changes are
// the operator-owned availability signal read by the scheduling gate.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now().UTC()
	const query = `UPDATE rooms SET description = :description, capacity = :capacity, status = :status, updated_at = :updated_at WHERE code = :code`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

// Delete removes a room by code.
func (r *RoomRepository) Delete(ctx context.Context, code string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE code = $1`, code); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}

// Count returns the total number of rooms.
func (r *RoomRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM rooms`); err != nil {
		return 0, fmt.Errorf("count rooms: %w", err)
	}
	return total, nil
}
