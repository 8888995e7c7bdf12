package models

import "time"

// PeriodStatus is the attendance state of a slot on a given date.
type PeriodStatus string

const (
	PeriodStatusUnknown    PeriodStatus = "UNKNOWN"
	PeriodStatusCompleted  PeriodStatus = "COMPLETED"
	PeriodStatusFuture     PeriodStatus = "FUTURE"
	PeriodStatusMissed     PeriodStatus = "MISSED"
	PeriodStatusYetToStart PeriodStatus = "YET_TO_START"
	PeriodStatusPending    PeriodStatus = "PENDING"
)

// AttendanceRecord is one attendance submission for a roster slot.
type AttendanceRecord struct {
	ID          string            `db:"id" json:"id"`
	RosterID    string            `db:"roster_id" json:"roster_id"`
	ClassID     string            `db:"class_id" json:"class_id"`
	SubmittedBy string            `db:"submitted_by" json:"submitted_by"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	Entries     []AttendanceEntry `db:"-" json:"entries,omitempty"`
}

// AttendanceEntry is the presence of one student within a record.
type AttendanceEntry struct {
	ID          string `db:"id" json:"id"`
	RecordID    string `db:"record_id" json:"record_id"`
	StudentID   string `db:"student_id" json:"student_id"`
	StudentName string `db:"student_name" json:"student_name,omitempty"`
	IsPresent   bool   `db:"is_present" json:"is_present"`
}
