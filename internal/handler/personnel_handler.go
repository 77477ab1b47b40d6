package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eadl-dev/acadtrack-api/internal/service"
	appErrors "github.com/eadl-dev/acadtrack-api/pkg/errors"
	"github.com/eadl-dev/acadtrack-api/pkg/response"
)

// PersonnelHandler handles staff endpoints.
type PersonnelHandler struct {
	service *service.PersonnelService
}

// NewPersonnelHandler constructs a personnel handler.
func NewPersonnelHandler(svc *service.PersonnelService) *PersonnelHandler {
	return &PersonnelHandler{service: svc}
}

// List godoc
// @Summary List personnel
// @Tags Personnel
// @Produce json
// @Security BearerAuth
// @Param role query string false "Filter by role"
// @Success 200 {object} response.Envelope
// @Router /personnel [get]
func (h *PersonnelHandler) List(c *gin.Context) {
	if role := c.Query("role"); role != "" {
		items, err := h.service.ListByRole(c.Request.Context(), role)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, items, nil)
		return
	}

	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get personnel by code
// @Tags Personnel
// @Produce json
// @Security BearerAuth
// @Param code path string true "Personnel code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /personnel/{code} [get]
func (h *PersonnelHandler) Get(c *gin.Context) {
	personnel, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, personnel, nil)
}

// Create godoc
// @Summary Create personnel
// @Tags Personnel
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.PersonnelRequest true "Personnel payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /personnel [post]
func (h *PersonnelHandler) Create(c *gin.Context) {
	var req service.PersonnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	personnel, err := h.service.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, personnel)
}

// Update godoc
// @Summary Update personnel
// @Tags Personnel
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Personnel code"
// @Param payload body service.PersonnelRequest true "Personnel payload"
// @Success 200 {object} response.Envelope
// @Router /personnel/{code} [put]
func (h *PersonnelHandler) Update(c *gin.Context) {
	var req service.PersonnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	personnel, err := h.service.Update(c.Request.Context(), actorFromContext(c), c.Param("code"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, personnel, nil)
}

// Delete godoc
// @Summary Delete personnel
// @Tags Personnel
// @Security BearerAuth
// @Param code path string true "Personnel code"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /personnel/{code} [delete]
func (h *PersonnelHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), actorFromContext(c), c.Param("code")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteAll godoc
// @Summary Delete all personnel
// @Tags Personnel
// @Security BearerAuth
// @Success 204
// @Router /personnel [delete]
func (h *PersonnelHandler) DeleteAll(c *gin.Context) {
	if err := h.service.DeleteAll(c.Request.Context(), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Count godoc
// @Summary Count personnel
// @Tags Personnel
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /personnel/count [get]
func (h *PersonnelHandler) Count(c *gin.Context) {
	total, err := h.service.Count(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"count": total}, nil)
}
