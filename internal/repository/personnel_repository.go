package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eadl-dev/acadtrack-api/internal/models"
)

// PersonnelRepository provides persistence for personnel.
type PersonnelRepository struct {
	db *sqlx.DB
}

// NewPersonnelRepository creates a new personnel repository.
func NewPersonnelRepository(db *sqlx.DB) *PersonnelRepository {
	return &PersonnelRepository{db: db}
}

const personnelColumns = "code, name, login, password_hash, sex, role, created_at, updated_at"

// List returns all personnel ordered by code.
func (r *PersonnelRepository) List(ctx context.Context) ([]models.Personnel, error) {
	query := fmt.Sprintf("SELECT %s FROM personnel ORDER BY code ASC", personnelColumns)
	var items []models.Personnel
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list personnel: %w", err)
	}
	return items, nil
}

// FindByCode loads a personnel by its code.
func (r *PersonnelRepository) FindByCode(ctx context.Context, code string) (*models.Personnel, error) {
	query := fmt.Sprintf("SELECT %s FROM personnel WHERE code = $1", personnelColumns)
	var p models.Personnel
	if err := r.db.GetContext(ctx, &p, query, code); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByLogin loads a personnel by its unique login.
func (r *PersonnelRepository) FindByLogin(ctx context.Context, login string) (*models.Personnel, error) {
	query := fmt.Sprintf("SELECT %s FROM personnel WHERE login = $1", personnelColumns)
	var p models.Personnel
	if err := r.db.GetContext(ctx, &p, query, login); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByRole returns personnel holding the given role.
func (r *PersonnelRepository) ListByRole(ctx context.Context, role models.PersonnelRole) ([]models.Personnel, error) {
	query := fmt.Sprintf("SELECT %s FROM personnel WHERE role = $1 ORDER BY code ASC", personnelColumns)
	var items []models.Personnel
	if err := r.db.SelectContext(ctx, &items, query, role); err != nil {
		return nil, fmt.Errorf("list personnel by role: %w", err)
	}
	return items, nil
}

// ExistsByCode reports whether a personnel with the code exists.
func (r *PersonnelRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, `SELECT 1 FROM personnel WHERE code = $1 LIMIT 1`, code)
	return exists(err, "personnel exists by code")
}

// ExistsByLogin reports whether a personnel with the login exists.
func (r *PersonnelRepository) ExistsByLogin(ctx context.Context, login string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, `SELECT 1 FROM personnel WHERE login = $1 LIMIT 1`, login)
	return exists(err, "personnel exists by login")
}

// Create stores a new personnel record.
func (r *PersonnelRepository) Create(ctx context.Context, p *models.Personnel) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	const query = `INSERT INTO personnel (code, name, login, password_hash, sex, role, created_at, updated_at) VALUES (:code, :name, :login, :password_hash, :sex, :role, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("create personnel: %w", err)
	}
	return nil
}

// Update modifies a personnel record. The code is immutable.
func (r *PersonnelRepository) Update(ctx context.Context, p *models.Personnel) error {
	p.UpdatedAt = time.Now().UTC()
	const query = `UPDATE personnel SET name = :name, login = :login, password_hash = :password_hash, sex = :sex, role = :role, updated_at = :updated_at WHERE code = :code`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("update personnel: %w", err)
	}
	return nil
}

// Delete removes a personnel by code.
func (r *PersonnelRepository) Delete(ctx context.Context, code string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM personnel WHERE code = $1`, code); err != nil {
		return fmt.Errorf("delete personnel: %w", err)
	}
	return nil
}

// DeleteAll removes every personnel record.
func (r *PersonnelRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM personnel`); err != nil {
		return fmt.Errorf("delete all personnel: %w", err)
	}
	return nil
}

// Count returns the total number of personnel.
func (r *PersonnelRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM personnel`); err != nil {
		return 0, fmt.Errorf("count personnel: %w", err)
	}
	return total, nil
}
