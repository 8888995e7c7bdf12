package models

import "time"

// PermissionStatus tracks the review state of a late attendance request.
type PermissionStatus string

const (
	PermissionPending  PermissionStatus = "pending"
	PermissionApproved PermissionStatus = "approved"
)

// PermissionRequest asks to submit attendance for a period after it was missed.
type PermissionRequest struct {
	ID           string           `db:"id" json:"id"`
	TeacherID    string           `db:"teacher_id" json:"teacher_id"`
	RosterID     string           `db:"roster_id" json:"roster_id"`
	ClassID      string           `db:"class_id" json:"class_id"`
	PeriodDate   time.Time        `db:"period_date" json:"period_date"`
	PeriodNumber int              `db:"period_number" json:"period_number"`
	Reason       string           `db:"reason" json:"reason"`
	Status       PermissionStatus `db:"status" json:"status"`
	ReviewedBy   *string          `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}

// PermissionFilter narrows permission listings.
type PermissionFilter struct {
	Status    PermissionStatus
	TeacherID string
	Page      int
	PageSize  int
}
