package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/pkg/response"
)

type markService interface {
	Record(ctx context.Context, req dto.RecordMarkRequest) (*models.Mark, error)
	StudentMarks(ctx context.Context, studentID string, academicYear int) ([]models.MarkDetail, error)
}

type deliberationService interface {
	ListRules(ctx context.Context) ([]models.DeliberationRule, error)
	CreateRule(ctx context.Context, req dto.CreateDeliberationRuleRequest) (*models.DeliberationRule, error)
	DeleteRule(ctx context.Context, id string) error
	Evaluate(ctx context.Context, req dto.EvaluateRequest) (*dto.EvaluateResponse, error)
}

// GradingHandler exposes marks and deliberation.
type GradingHandler struct {
	marks        markService
	deliberation deliberationService
}

// NewGradingHandler constructs GradingHandler.
func NewGradingHandler(marks markService, deliberation deliberationService) *GradingHandler {
	return &GradingHandler{marks: marks, deliberation: deliberation}
}

// RecordMark godoc
// @Summary Record a mark
// @Description Stores or replaces the score of a student for a course, year and term
// @Tags Marks
// @Accept json
// @Produce json
// @Param payload body dto.RecordMarkRequest true "Mark"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /marks [post]
func (h *GradingHandler) RecordMark(c *gin.Context) {
	var req dto.RecordMarkRequest
	if !bindJSON(c, &req, "invalid mark payload") {
		return
	}
	mark, err := h.marks.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mark, nil)
}

// StudentMarks godoc
// @Summary Marks of a student
// @Tags Marks
// @Produce json
// @Param studentId path string true "Student ID"
// @Param academic_year query int false "Start year, defaults to the current academic year"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /marks/student/{studentId} [get]
func (h *GradingHandler) StudentMarks(c *gin.Context) {
	year, ok := intQuery(c, "academic_year")
	if !ok {
		return
	}
	studentID, ok := idParam(c, "studentId")
	if !ok {
		return
	}
	marks, err := h.marks.StudentMarks(c.Request.Context(), studentID, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marks, nil)
}

// ListRules godoc
// @Summary List deliberation rules
// @Tags Deliberation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /deliberation/rules [get]
func (h *GradingHandler) ListRules(c *gin.Context) {
	rules, err := h.deliberation.ListRules(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rules, nil)
}

// CreateRule godoc
// @Summary Create deliberation rule
// @Tags Deliberation
// @Accept json
// @Produce json
// @Param payload body dto.CreateDeliberationRuleRequest true "Rule"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /deliberation/rules [post]
func (h *GradingHandler) CreateRule(c *gin.Context) {
	var req dto.CreateDeliberationRuleRequest
	if !bindJSON(c, &req, "invalid rule payload") {
		return
	}
	rule, err := h.deliberation.CreateRule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rule)
}

// DeleteRule godoc
// @Summary Delete deliberation rule
// @Tags Deliberation
// @Param id path string true "Rule ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /deliberation/rules/{id} [delete]
func (h *GradingHandler) DeleteRule(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.deliberation.DeleteRule(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Evaluate godoc
// @Summary Evaluate a class
// @Description Applies the deliberation rules to the yearly average of every active student
// @Tags Deliberation
// @Accept json
// @Produce json
// @Param payload body dto.EvaluateRequest true "Class and year"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /deliberation/evaluate [post]
func (h *GradingHandler) Evaluate(c *gin.Context) {
	var req dto.EvaluateRequest
	if !bindJSON(c, &req, "invalid evaluation payload") {
		return
	}
	res, err := h.deliberation.Evaluate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
