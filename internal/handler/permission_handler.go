package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/pkg/response"
)

type permissionService interface {
	Create(ctx context.Context, teacherID string, req dto.CreatePermissionRequest) (*models.PermissionRequest, error)
	List(ctx context.Context, query dto.PermissionQuery) ([]models.PermissionRequest, *models.Pagination, error)
	Approve(ctx context.Context, id, reviewerID string) (*models.PermissionRequest, error)
}

// PermissionHandler exposes late attendance permission requests.
type PermissionHandler struct {
	service permissionService
}

// NewPermissionHandler constructs PermissionHandler.
func NewPermissionHandler(svc permissionService) *PermissionHandler {
	return &PermissionHandler{service: svc}
}

// Create godoc
// @Summary Request permission to submit attendance late
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.CreatePermissionRequest true "Request"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance/permissions [post]
func (h *PermissionHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.CreatePermissionRequest
	if !bindJSON(c, &req, "invalid permission payload") {
		return
	}
	res, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// List godoc
// @Summary List permission requests
// @Description Teachers only see their own requests
// @Tags Attendance
// @Produce json
// @Param status query string false "pending or approved"
// @Param teacher_id query string false "Teacher"
// @Success 200 {object} response.Envelope
// @Router /attendance/permissions [get]
func (h *PermissionHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var query dto.PermissionQuery
	if !bindQuery(c, &query) {
		return
	}
	if claims.Role == models.RoleTeacher {
		query.TeacherID = claims.UserID
	}
	items, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Approve godoc
// @Summary Approve a permission request
// @Tags Attendance
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance/permissions/{id}/approve [post]
func (h *PermissionHandler) Approve(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.service.Approve(c.Request.Context(), id, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
