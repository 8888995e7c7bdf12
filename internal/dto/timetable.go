package dto

import (
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/pkg/period"
)

// CreateTimetableRequest creates an empty weekly grid for a class.
type CreateTimetableRequest struct {
	ClassID      string `json:"class_id" validate:"required,uuid"`
	AcademicYear string `json:"academic_year"`
	Term         int    `json:"term" validate:"required,oneof=1 2 3"`
}

// AssignSlotRequest places a class-course assignment on a roster slot.
type AssignSlotRequest struct {
	RosterID     string `json:"roster_id" validate:"required,uuid"`
	AssignmentID string `json:"assignment_id" validate:"required,uuid"`
}

// TimetableQuery lists timetables.
type TimetableQuery struct {
	ClassID      string `form:"class_id" validate:"omitempty,uuid"`
	AcademicYear string `form:"academic_year"`
	Term         int    `form:"term"`
	Active       *bool  `form:"active"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
}

// GridCell is one slot in a grid response.
type GridCell struct {
	RosterID    string          `json:"roster_id"`
	Period      int             `json:"period"`
	TimeWindow  period.Window   `json:"time_window"`
	Category    period.Category `json:"category"`
	CourseID    *string         `json:"course_id,omitempty"`
	CourseName  *string         `json:"course_name,omitempty"`
	TeacherID   *string         `json:"teacher_id,omitempty"`
	TeacherName *string         `json:"teacher_name,omitempty"`
}

// GridDay is one column of the weekly grid.
type GridDay struct {
	Day   string     `json:"day_of_week"`
	Cells []GridCell `json:"cells"`
}

// TimetableGrid is a timetable with its slots laid out by day and period.
type TimetableGrid struct {
	Timetable models.Timetable `json:"timetable"`
	Periods   []period.Period  `json:"periods"`
	Days      []GridDay        `json:"days"`
}

// TeacherDaySlot is a slot a teacher delivers on a given date.
type TeacherDaySlot struct {
	RosterID   string              `json:"roster_id"`
	ClassID    string              `json:"class_id"`
	ClassName  string              `json:"class_name"`
	CourseID   *string             `json:"course_id,omitempty"`
	CourseName *string             `json:"course_name,omitempty"`
	DayOfWeek  string              `json:"day_of_week"`
	Period     int                 `json:"period"`
	TimeWindow period.Window       `json:"time_window"`
	Status     models.PeriodStatus `json:"status"`
}

// TeacherDayResponse lists a teacher's slots for a date.
type TeacherDayResponse struct {
	Date  string           `json:"date"`
	Slots []TeacherDaySlot `json:"slots"`
}
