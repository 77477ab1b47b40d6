package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eadl-dev/acadtrack-api/internal/models"
	"github.com/eadl-dev/acadtrack-api/pkg/cache"
	appErrors "github.com/eadl-dev/acadtrack-api/pkg/errors"
)

type personnelRepository interface {
	List(ctx context.Context) ([]models.Personnel, error)
	FindByCode(ctx context.Context, code string) (*models.Personnel, error)
	FindByLogin(ctx context.Context, login string) (*models.Personnel, error)
	ListByRole(ctx context.Context, role models.PersonnelRole) ([]models.Personnel, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	ExistsByLogin(ctx context.Context, login string) (bool, error)
	Create(ctx context.Context, p *models.Personnel) error
	Update(ctx context.Context, p *models.Personnel) error
	Delete(ctx context.Context, code string) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// referenceCounter counts rows referencing a personnel code, and totals
// for the bulk-delete guard.
type referenceCounter interface {
	CountByPersonnel(ctx context.Context, code string) (int, error)
	Count(ctx context.Context) (int, error)
}

// PersonnelRequest describes the payload for creating or updating personnel.
type PersonnelRequest struct {
	Name     string `json:"name" validate:"required"`
	Login    string `json:"login" validate:"required"`
	Password string `json:"password,omitempty"`
	Sex      string `json:"sex" validate:"required,oneof=M F"`
	Role     string `json:"role" validate:"required"`
}

const personnelListCacheKey = "personnel:list"

// PersonnelService manages staff records. Codes are generated here and
// never change afterwards.
type PersonnelService struct {
	repo         personnelRepository
	sessions     referenceCounter
	assignments  referenceCounter
	store        *cache.Store
	validator    *validator.Validate
	logger       *zap.Logger
	generateCode func(models.PersonnelRole) string
}

// codeAllocationAttempts bounds the retry loop when a freshly generated
// matricule collides with an existing one.
const codeAllocationAttempts = 5

// NewPersonnelService instantiates PersonnelService.
func NewPersonnelService(repo personnelRepository, sessions, assignments referenceCounter, store *cache.Store, validate *validator.Validate, logger *zap.Logger) *PersonnelService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersonnelService{repo: repo, sessions: sessions, assignments: assignments, store: store, validator: validate, logger: logger, generateCode: generatePersonnelCode}
}

// Create registers a new personnel with a generated role-prefixed code and
// a bcrypt-hashed password. Logins are unique.
func (s *PersonnelService) Create(ctx context.Context, actor string, req PersonnelRequest) (*models.Personnel, error) {
	s.logger.Info("creating personnel", zap.String("actor", actor), zap.String("login", req.Login))

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid personnel payload")
	}
	if req.Password == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "password is required")
	}

	role, err := models.ParsePersonnelRole(req.Role)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid personnel role: %s", req.Role))
	}

	taken, err := s.repo.ExistsByLogin(ctx, req.Login)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check login")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("login already in use: %s", req.Login))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	code, err := s.allocateCode(ctx, role)
	if err != nil {
		return nil, err
	}

	personnel := models.Personnel{
		Code:         code,
		Name:         req.Name,
		Login:        req.Login,
		PasswordHash: string(hash),
		Sex:          req.Sex,
		Role:         role,
	}

	if err := s.repo.Create(ctx, &personnel); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create personnel")
	}

	s.invalidateListCache(ctx)
	return &personnel, nil
}

// List returns all personnel, read through the catalog cache when enabled.
func (s *PersonnelService) List(ctx context.Context) ([]models.Personnel, error) {
	var cached []models.Personnel
	if hit, err := s.store.Get(ctx, personnelListCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list personnel")
	}

	if err := s.store.Set(ctx, personnelListCacheKey, items); err != nil {
		s.logger.Warn("failed to cache personnel list", zap.Error(err))
	}
	return items, nil
}

// GetByCode returns a personnel by its matricule.
func (s *PersonnelService) GetByCode(ctx context.Context, code string) (*models.Personnel, error) {
	if code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "personnel code is required")
	}
	personnel, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("personnel not found: %s", code))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load personnel")
	}
	return personnel, nil
}

// ListByRole returns personnel holding the given role.
func (s *PersonnelService) ListByRole(ctx context.Context, rawRole string) ([]models.Personnel, error) {
	role, err := models.ParsePersonnelRole(rawRole)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid personnel role: %s", rawRole))
	}
	items, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list personnel by role")
	}
	return items, nil
}

// Update modifies a personnel. The code is immutable; the password is only
// rehashed when a new one is supplied.
func (s *PersonnelService) Update(ctx context.Context, actor, code string, req PersonnelRequest) (*models.Personnel, error) {
	s.logger.Info("updating personnel", zap.String("actor", actor), zap.String("code", code))

	if code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "personnel code is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid personnel payload")
	}

	role, err := models.ParsePersonnelRole(req.Role)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid personnel role: %s", req.Role))
	}

	existing, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("personnel not found: %s", code))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load personnel")
	}

	if req.Login != existing.Login {
		taken, err := s.repo.ExistsByLogin(ctx, req.Login)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check login")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("login already in use: %s", req.Login))
		}
	}

	existing.Name = req.Name
	existing.Login = req.Login
	existing.Sex = req.Sex
	existing.Role = role
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		existing.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update personnel")
	}

	s.invalidateListCache(ctx)
	return existing, nil
}

// Delete removes a personnel. Deletion is rejected while sessions or
// assignments still reference the code, so references never dangle.
func (s *PersonnelService) Delete(ctx context.Context, actor, code string) error {
	s.logger.Warn("deleting personnel", zap.String("actor", actor), zap.String("code", code))

	if code == "" {
		return appErrors.Clone(appErrors.ErrValidation, "personnel code is required")
	}

	found, err := s.repo.ExistsByCode(ctx, code)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check personnel")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("personnel not found: %s", code))
	}

	if n, err := s.sessions.CountByPersonnel(ctx, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count referencing sessions")
	} else if n > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("personnel %s is referenced by %d session(s)", code, n))
	}

	if n, err := s.assignments.CountByPersonnel(ctx, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count referencing assignments")
	} else if n > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("personnel %s is referenced by %d assignment(s)", code, n))
	}

	if err := s.repo.Delete(ctx, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete personnel")
	}

	s.invalidateListCache(ctx)
	return nil
}

// DeleteAll removes every personnel record. Irreversible. Rejected while
// any session or assignment exists, for the same reason single deletes
// are: the rows would be left pointing at nothing.
func (s *PersonnelService) DeleteAll(ctx context.Context, actor string) error {
	s.logger.Warn("deleting ALL personnel", zap.String("actor", actor))

	if n, err := s.sessions.Count(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count sessions")
	} else if n > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("%d session(s) still reference personnel", n))
	}

	if n, err := s.assignments.Count(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count assignments")
	} else if n > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("%d assignment(s) still reference personnel", n))
	}

	if err := s.repo.DeleteAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete personnel")
	}

	s.invalidateListCache(ctx)
	return nil
}

// Exists reports whether a personnel with the code is present.
func (s *PersonnelService) Exists(ctx context.Context, code string) (bool, error) {
	if code == "" {
		return false, appErrors.Clone(appErrors.ErrValidation, "personnel code is required")
	}
	found, err := s.repo.ExistsByCode(ctx, code)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check personnel")
	}
	return found, nil
}

// Count returns the total number of personnel.
func (s *PersonnelService) Count(ctx context.Context) (int, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count personnel")
	}
	return total, nil
}

// allocateCode draws matricules until one is unused. The random suffix
// space is small enough that collisions happen eventually, so a collision
// regenerates instead of surfacing a key violation.
func (s *PersonnelService) allocateCode(ctx context.Context, role models.PersonnelRole) (string, error) {
	for i := 0; i < codeAllocationAttempts; i++ {
		code := s.generateCode(role)
		taken, err := s.repo.ExistsByCode(ctx, code)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check personnel code")
		}
		if !taken {
			return code, nil
		}
		s.logger.Warn("personnel code collision, regenerating", zap.String("code", code))
	}
	return "", appErrors.Clone(appErrors.ErrInternal, "could not allocate a unique personnel code")
}

func (s *PersonnelService) invalidateListCache(ctx context.Context) {
	if err := s.store.Invalidate(ctx, personnelListCacheKey); err != nil {
		s.logger.Warn("failed to invalidate personnel list cache", zap.Error(err))
	}
}
