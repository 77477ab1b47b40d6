package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eadl-dev/acadtrack-api/internal/models"
	"github.com/eadl-dev/acadtrack-api/internal/service"
	appErrors "github.com/eadl-dev/acadtrack-api/pkg/errors"
	"github.com/eadl-dev/acadtrack-api/pkg/response"
)

// AuthHandler handles authentication endpoints. Registration creates a
// regular personnel record, so the handler also holds the personnel
// service.
type AuthHandler struct {
	service   *service.AuthService
	personnel *service.PersonnelService
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(svc *service.AuthService, personnel *service.PersonnelService) *AuthHandler {
	return &AuthHandler{service: svc, personnel: personnel}
}

// Register godoc
// @Summary Register a personnel account
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body service.PersonnelRequest true "Account details"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.PersonnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if req.Password == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "password is required"))
		return
	}

	created, err := h.personnel.Create(c.Request.Context(), req.Login, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Login godoc
// @Summary Authenticate and obtain an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	auth, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, auth, nil)
}

// Me godoc
// @Summary Return the authenticated caller's claims
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"code":  claims.Code,
		"login": claims.Login,
		"role":  claims.Role,
	}, nil)
}
