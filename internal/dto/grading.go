package dto

import "github.com/noah-isme/sma-academic-api/internal/models"

// RecordMarkRequest stores or replaces a score.
type RecordMarkRequest struct {
	StudentID    string   `json:"student_id" validate:"required,uuid"`
	CourseID     string   `json:"course_id" validate:"required,uuid"`
	AcademicYear int      `json:"academic_year" validate:"required,min=1000,max=9999"`
	Term         int      `json:"term" validate:"required,oneof=1 2 3"`
	Score        *float64 `json:"score" validate:"required,min=0,max=100"`
}

// CreateDeliberationRuleRequest defines a score range and its decision.
type CreateDeliberationRuleRequest struct {
	MinScore *float64 `json:"min_score" validate:"required,min=0,max=100"`
	MaxScore *float64 `json:"max_score" validate:"required,min=0,max=100"`
	Decision string   `json:"decision" validate:"required,notblank,max=50"`
	Label    string   `json:"label" validate:"max=100"`
}

// EvaluateRequest runs deliberation for a class.
type EvaluateRequest struct {
	ClassID      string `json:"class_id" validate:"required,uuid"`
	AcademicYear int    `json:"academic_year" validate:"required,min=1000,max=9999"`
}

// EvaluateResponse lists the decision of each active student.
type EvaluateResponse struct {
	ClassID      string                       `json:"class_id"`
	AcademicYear int                          `json:"academic_year"`
	Outcomes     []models.DeliberationOutcome `json:"outcomes"`
}
