package models

import "time"

// Timetable is the weekly grid of a class for one academic year and term.
// Only inactive timetables may be edited; a class has at most one active timetable.
type Timetable struct {
	ID           string    `db:"id" json:"id"`
	ClassID      string    `db:"class_id" json:"class_id"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Term         int       `db:"term" json:"term"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// TimetableFilter narrows timetable listings.
type TimetableFilter struct {
	ClassID      string
	AcademicYear string
	Term         int
	Active       *bool
	Page         int
	PageSize     int
}

// RosterSlot is one cell of a timetable: a day and period, optionally holding a
// course and the teacher who delivers it.
type RosterSlot struct {
	ID          string    `db:"id" json:"id"`
	TimetableID string    `db:"timetable_id" json:"timetable_id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	DayOfWeek   string    `db:"day_of_week" json:"day_of_week"`
	Period      int       `db:"period" json:"period"`
	CourseID    *string   `db:"course_id" json:"course_id,omitempty"`
	TeacherID   *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Assigned reports whether a course has been placed on the slot.
func (s RosterSlot) Assigned() bool {
	return s.CourseID != nil
}

// RosterSlotContext is a slot together with the timetable attributes the
// assignment rules depend on.
type RosterSlotContext struct {
	RosterSlot
	TimetableActive bool   `db:"timetable_active"`
	AcademicYear    string `db:"academic_year"`
	Term            int    `db:"term"`
}

// RosterSlotDetail carries display names for grid responses.
type RosterSlotDetail struct {
	RosterSlot
	CourseName  *string `db:"course_name" json:"course_name,omitempty"`
	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
	ClassName   string  `db:"class_name" json:"class_name,omitempty"`
}
