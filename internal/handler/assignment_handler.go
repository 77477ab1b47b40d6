package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eadl-dev/acadtrack-api/internal/service"
	appErrors "github.com/eadl-dev/acadtrack-api/pkg/errors"
	"github.com/eadl-dev/acadtrack-api/pkg/response"
)

// AssignmentHandler handles teaching assignment endpoints. Assignments are
// addressed by their composite key in the path: course code then personnel
// code.
type AssignmentHandler struct {
	service *service.AssignmentService
}

// NewAssignmentHandler constructs an assignment handler.
func NewAssignmentHandler(svc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// List godoc
// @Summary List assignments
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	assignments, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Get godoc
// @Summary Get assignment by composite key
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param course path string true "Course code"
// @Param personnel path string true "Personnel code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{course}/{personnel} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	assignment, err := h.service.GetByID(c.Request.Context(), c.Param("course"), c.Param("personnel"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Create godoc
// @Summary Assign a personnel to a course
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.AssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req service.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.service.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Delete godoc
// @Summary Delete assignment
// @Tags Assignments
// @Security BearerAuth
// @Param course path string true "Course code"
// @Param personnel path string true "Personnel code"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /assignments/{course}/{personnel} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), actorFromContext(c), c.Param("course"), c.Param("personnel")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
