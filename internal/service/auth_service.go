package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eadl-dev/acadtrack-api/internal/models"
	"github.com/eadl-dev/acadtrack-api/pkg/config"
	appErrors "github.com/eadl-dev/acadtrack-api/pkg/errors"
)

type authAccountReader interface {
	FindByLogin(ctx context.Context, login string) (*models.Personnel, error)
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
}

// AuthService handles credential checks and token lifecycle. Accounts
// themselves are created through PersonnelService; here they only sign in.
type AuthService struct {
	accounts  authAccountReader
	audit     auditWriter
	jwtCfg    config.JWTConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService instantiates AuthService.
func NewAuthService(accounts authAccountReader, audit auditWriter, jwtCfg config.JWTConfig, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{accounts: accounts, audit: audit, jwtCfg: jwtCfg, validator: validate, logger: logger}
}

// Login verifies the credentials and returns a signed access token. Invalid
// login and invalid password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	account, err := s.accounts.FindByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login rejected", zap.String("login", req.Login), zap.String("ip", req.IP))
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	token, issuedAt, err := s.issueToken(account)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	s.recordLogin(ctx, account, req)
	s.logger.Info("login succeeded", zap.String("code", account.Code), zap.String("role", string(account.Role)))

	return &models.AuthResponse{
		Token:     token,
		ExpiresIn: int64(s.jwtCfg.Expiration.Seconds()),
		IssuedAt:  issuedAt,
		Code:      account.Code,
		Name:      account.Name,
		Role:      account.Role,
	}, nil
}

// ValidateToken parses and verifies an access token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	if !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return claims, nil
}

func (s *AuthService) issueToken(account *models.Personnel) (string, time.Time, error) {
	now := time.Now().UTC()
	claims := models.JWTClaims{
		Code:  account.Code,
		Login: account.Login,
		Role:  account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.Code,
			Issuer:    s.jwtCfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.Expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, now, nil
}

func (s *AuthService) recordLogin(ctx context.Context, account *models.Personnel, req models.LoginRequest) {
	if s.audit == nil {
		return
	}
	entry := models.AuditLog{
		ActorCode: &account.Code,
		Action:    models.AuditActionLogin,
		Resource:  "auth",
		IPAddress: req.IP,
		UserAgent: req.UserAgent,
	}
	if err := s.audit.CreateAuditLog(ctx, &entry); err != nil {
		s.logger.Warn("failed to record login audit", zap.Error(err))
	}
}
