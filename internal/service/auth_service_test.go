package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eadl-dev/acadtrack-api/internal/models"
	"github.com/eadl-dev/acadtrack-api/pkg/config"
	appErrors "github.com/eadl-dev/acadtrack-api/pkg/errors"
)

type mockAuditWriter struct {
	entries []models.AuditLog
}

func (m *mockAuditWriter) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *mockAuditWriter) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!pass"), bcrypt.MinCost)
	require.NoError(t, err)

	accounts := &mockPersonnelRepo{
		items: map[string]*models.Personnel{
			"DIR-BBBBBB": {
				Code:         "DIR-BBBBBB",
				Name:         "Bob Director",
				Login:        "bob",
				PasswordHash: string(hash),
				Role:         models.RoleDirector,
			},
		},
		loginIndex: map[string]string{"bob": "DIR-BBBBBB"},
	}
	audit := &mockAuditWriter{}
	jwtCfg := config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "acadtrack-test"}
	return NewAuthService(accounts, audit, jwtCfg, validator.New(), zap.NewNop()), audit
}

func TestAuthServiceLogin(t *testing.T) {
	service, audit := newAuthFixture(t)

	auth, err := service.Login(context.Background(), models.LoginRequest{Login: "bob", Password: "s3cret!pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, "DIR-BBBBBB", auth.Code)
	assert.Equal(t, models.RoleDirector, auth.Role)
	assert.EqualValues(t, 3600, auth.ExpiresIn)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionLogin, audit.entries[0].Action)
	require.NotNil(t, audit.entries[0].ActorCode)
	assert.Equal(t, "DIR-BBBBBB", *audit.entries[0].ActorCode)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	service, audit := newAuthFixture(t)

	_, err := service.Login(context.Background(), models.LoginRequest{Login: "bob", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.Empty(t, audit.entries)
}

func TestAuthServiceLoginUnknownLogin(t *testing.T) {
	service, _ := newAuthFixture(t)

	_, err := service.Login(context.Background(), models.LoginRequest{Login: "nobody", Password: "s3cret!pass"})
	require.Error(t, err)
	// Unknown login and wrong password are indistinguishable.
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginMissingFields(t *testing.T) {
	service, _ := newAuthFixture(t)

	_, err := service.Login(context.Background(), models.LoginRequest{Login: "bob"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateToken(t *testing.T) {
	service, _ := newAuthFixture(t)

	auth, err := service.Login(context.Background(), models.LoginRequest{Login: "bob", Password: "s3cret!pass"})
	require.NoError(t, err)

	claims, err := service.ValidateToken(auth.Token)
	require.NoError(t, err)
	assert.Equal(t, "DIR-BBBBBB", claims.Code)
	assert.Equal(t, "bob", claims.Login)
	assert.Equal(t, models.RoleDirector, claims.Role)
}

func TestAuthServiceValidateTokenTampered(t *testing.T) {
	service, _ := newAuthFixture(t)

	auth, err := service.Login(context.Background(), models.LoginRequest{Login: "bob", Password: "s3cret!pass"})
	require.NoError(t, err)

	_, err = service.ValidateToken(auth.Token + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
