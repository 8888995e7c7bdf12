package models

import "time"

// Mark is a student's score in a course for one academic year and term.
type Mark struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	AcademicYear int       `db:"academic_year" json:"academic_year"`
	Term         int       `db:"term" json:"term"`
	Score        float64   `db:"score" json:"score"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// MarkDetail adds the course name.
type MarkDetail struct {
	Mark
	CourseName string `db:"course_name" json:"course_name"`
}

// StudentAverage is the mean score of a student across a year.
type StudentAverage struct {
	StudentID   string   `db:"student_id" json:"student_id"`
	StudentName string   `db:"student_name" json:"student_name"`
	Average     *float64 `db:"average" json:"average,omitempty"`
	MarkCount   int      `db:"mark_count" json:"mark_count"`
}
