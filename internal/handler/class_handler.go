package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/pkg/response"
)

type classService interface {
	List(ctx context.Context, query dto.ListQuery) ([]models.Class, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, req dto.UpsertClassRequest) (*models.Class, error)
	Update(ctx context.Context, id string, req dto.UpsertClassRequest) (*models.Class, error)
	Delete(ctx context.Context, id string) error
}

type classCourseService interface {
	ListByClass(ctx context.Context, classID string) ([]models.ClassCourseAssignmentDetail, error)
	Create(ctx context.Context, classID string, req dto.CreateAssignmentRequest) (*models.ClassCourseAssignment, error)
	UpdateTeacher(ctx context.Context, id string, req dto.UpdateAssignmentTeacherRequest) (*models.ClassCourseAssignment, error)
	Delete(ctx context.Context, id string) error
}

// ClassHandler exposes class CRUD and the courses taught to each class.
type ClassHandler struct {
	classes     classService
	assignments classCourseService
}

// NewClassHandler constructs ClassHandler.
func NewClassHandler(classes classService, assignments classCourseService) *ClassHandler {
	return &ClassHandler{classes: classes, assignments: assignments}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Param year_level query int false "Year level"
// @Param search query string false "Name search"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	var query dto.ListQuery
	if !bindQuery(c, &query) {
		return
	}
	items, pagination, err := h.classes.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	class, err := h.classes.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Create godoc
// @Summary Create class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body dto.UpsertClassRequest true "Class"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req dto.UpsertClassRequest
	if !bindJSON(c, &req, "invalid class payload") {
		return
	}
	class, err := h.classes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Update godoc
// @Summary Update class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body dto.UpsertClassRequest true "Class"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	var req dto.UpsertClassRequest
	if !bindJSON(c, &req, "invalid class payload") {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	class, err := h.classes.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Delete godoc
// @Summary Delete class
// @Description Rejected with 412 while the class has active students
// @Tags Classes
// @Param id path string true "Class ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.classes.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListAssignments godoc
// @Summary List courses assigned to a class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id}/assignments [get]
func (h *ClassHandler) ListAssignments(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	items, err := h.assignments.ListByClass(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// CreateAssignment godoc
// @Summary Assign a course to a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body dto.CreateAssignmentRequest true "Assignment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes/{id}/assignments [post]
func (h *ClassHandler) CreateAssignment(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	assignment, err := h.assignments.Create(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// UpdateAssignmentTeacher godoc
// @Summary Change the teacher of an assignment
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.UpdateAssignmentTeacherRequest true "Teacher"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *ClassHandler) UpdateAssignmentTeacher(c *gin.Context) {
	var req dto.UpdateAssignmentTeacherRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	assignment, err := h.assignments.UpdateTeacher(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// DeleteAssignment godoc
// @Summary Remove an assignment
// @Tags Classes
// @Param id path string true "Assignment ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id} [delete]
func (h *ClassHandler) DeleteAssignment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.assignments.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
