package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/internal/service"
	"github.com/noah-isme/sma-academic-api/pkg/response"
)

type attendanceService interface {
	Location() *time.Location
	Today() time.Time
	PeriodStatus(ctx context.Context, rosterID string, date time.Time) (models.PeriodStatus, error)
	Submit(ctx context.Context, req dto.SubmitAttendanceRequest, userID string) (*dto.SubmitAttendanceResponse, error)
	Records(ctx context.Context, rosterID string, date time.Time) ([]models.AttendanceRecord, error)
	TeacherDay(ctx context.Context, teacherID string, date time.Time) (*dto.TeacherDayResponse, error)
}

// AttendanceHandler exposes per-period attendance endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Submit godoc
// @Summary Submit attendance for a slot
// @Description Records presence for every active student of the slot's class. Students missing from the map are absent.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.SubmitAttendanceRequest true "Attendance"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/submit [post]
func (h *AttendanceHandler) Submit(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.SubmitAttendanceRequest
	if !bindJSON(c, &req, "invalid attendance payload") {
		return
	}
	res, err := h.service.Submit(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Status godoc
// @Summary Period attendance status
// @Description Resolves COMPLETED, MISSED, PENDING, YET_TO_START, FUTURE or UNKNOWN for a slot on a date
// @Tags Attendance
// @Produce json
// @Param rosterId path string true "Roster slot ID"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/status/{rosterId} [get]
func (h *AttendanceHandler) Status(c *gin.Context) {
	date, ok := dateQuery(c, h.service.Location(), h.service.Today())
	if !ok {
		return
	}
	rosterID := c.Param("rosterId")
	status, err := h.service.PeriodStatus(c.Request.Context(), rosterID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.PeriodStatusResponse{
		RosterID: rosterID,
		Date:     date.Format(service.DateLayout),
		Status:   status,
	}, nil)
}

// Records godoc
// @Summary Attendance records of a slot
// @Tags Attendance
// @Produce json
// @Param rosterId path string true "Roster slot ID"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/roster/{rosterId} [get]
func (h *AttendanceHandler) Records(c *gin.Context) {
	date, ok := dateQuery(c, h.service.Location(), h.service.Today())
	if !ok {
		return
	}
	rosterID, ok := idParam(c, "rosterId")
	if !ok {
		return
	}
	records, err := h.service.Records(c.Request.Context(), rosterID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// TeacherDay godoc
// @Summary Teacher's slots for a day
// @Description Lists the caller's slots in active timetables for the date with their attendance status
// @Tags Timetables
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetables/teacher/me [get]
func (h *AttendanceHandler) TeacherDay(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	date, ok := dateQuery(c, h.service.Location(), h.service.Today())
	if !ok {
		return
	}
	res, err := h.service.TeacherDay(c.Request.Context(), claims.UserID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
