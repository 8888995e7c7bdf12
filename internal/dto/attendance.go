package dto

import "github.com/noah-isme/sma-academic-api/internal/models"

// SubmitAttendanceRequest records presence for every active student of the slot's class.
// Students missing from Attendance are recorded absent.
type SubmitAttendanceRequest struct {
	RosterID   string          `json:"roster_id" validate:"required,uuid"`
	Attendance map[string]bool `json:"attendance"`
}

// SubmitAttendanceResponse summarises a stored submission.
type SubmitAttendanceResponse struct {
	RecordID string `json:"record_id"`
	Present  int    `json:"present"`
	Absent   int    `json:"absent"`
	Total    int    `json:"total"`
}

// PeriodStatusResponse reports the attendance state of a slot on a date.
type PeriodStatusResponse struct {
	RosterID string              `json:"roster_id"`
	Date     string              `json:"date"`
	Status   models.PeriodStatus `json:"status"`
}

// CreatePermissionRequest asks for permission to submit attendance late.
type CreatePermissionRequest struct {
	RosterID   string `json:"roster_id" validate:"required,uuid"`
	PeriodDate string `json:"period_date" validate:"required,datetime=2006-01-02"`
	Reason     string `json:"reason" validate:"required,notblank,max=500"`
}

// PermissionQuery lists permission requests.
type PermissionQuery struct {
	Status    string `form:"status" validate:"omitempty,oneof=pending approved"`
	TeacherID string `form:"teacher_id" validate:"omitempty,uuid"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}
