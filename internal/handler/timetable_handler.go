package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/middleware"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/pkg/response"
)

type timetableService interface {
	Create(ctx context.Context, req dto.CreateTimetableRequest) (*models.Timetable, error)
	AssignSlot(ctx context.Context, req dto.AssignSlotRequest) (*models.RosterSlot, error)
	ClearSlot(ctx context.Context, rosterID string) (*models.RosterSlot, error)
	Activate(ctx context.Context, id string) (*models.Timetable, error)
	Deactivate(ctx context.Context, id string) (*models.Timetable, error)
	Get(ctx context.Context, id string) (*dto.TimetableGrid, error)
	List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, *models.Pagination, error)
	ActiveGrid(ctx context.Context, classID string) (*dto.TimetableGrid, bool, error)
	Delete(ctx context.Context, id string) error
}

// TimetableHandler exposes timetable grid endpoints.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs TimetableHandler.
func NewTimetableHandler(svc timetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Create godoc
// @Summary Create timetable
// @Description Creates an inactive timetable with an empty slot for every school day and period
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.CreateTimetableRequest true "Timetable payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	var req dto.CreateTimetableRequest
	if !bindJSON(c, &req, "invalid timetable payload") {
		return
	}
	tt, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tt)
}

// List godoc
// @Summary List timetables
// @Tags Timetables
// @Produce json
// @Param class_id query string false "Class"
// @Param academic_year query string false "Academic year"
// @Param term query int false "Term"
// @Param active query bool false "Active flag"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	var query dto.TimetableQuery
	if !bindQuery(c, &query) {
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get timetable grid
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	grid, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// ClassActive godoc
// @Summary Get the active timetable of a class
// @Tags Timetables
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/class/{classId} [get]
func (h *TimetableHandler) ClassActive(c *gin.Context) {
	classID, ok := idParam(c, "classId")
	if !ok {
		return
	}
	grid, hit, err := h.service.ActiveGrid(c.Request.Context(), classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, grid, nil, middleware.ExtractMeta(c))
}

// AssignSlot godoc
// @Summary Assign a course to a slot
// @Description Places a class-course assignment on a slot of an inactive timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.AssignSlotRequest true "Assignment"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/assign-slot [post]
func (h *TimetableHandler) AssignSlot(c *gin.Context) {
	var req dto.AssignSlotRequest
	if !bindJSON(c, &req, "invalid slot assignment payload") {
		return
	}
	slot, err := h.service.AssignSlot(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// ClearSlot godoc
// @Summary Clear a slot
// @Tags Timetables
// @Produce json
// @Param rosterId path string true "Roster slot ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/slots/{rosterId}/clear [post]
func (h *TimetableHandler) ClearSlot(c *gin.Context) {
	rosterID, ok := idParam(c, "rosterId")
	if !ok {
		return
	}
	slot, err := h.service.ClearSlot(c.Request.Context(), rosterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Activate godoc
// @Summary Activate timetable
// @Description Activates the timetable and deactivates every other timetable of its class
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id}/activate [post]
func (h *TimetableHandler) Activate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	tt, err := h.service.Activate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tt, nil)
}

// Deactivate godoc
// @Summary Deactivate timetable
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id}/deactivate [post]
func (h *TimetableHandler) Deactivate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	tt, err := h.service.Deactivate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tt, nil)
}

// Delete godoc
// @Summary Delete timetable
// @Tags Timetables
// @Param id path string true "Timetable ID"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
