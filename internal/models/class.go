package models

import "time"

// Class is a cohort of students at a year level. Year levels run from 1 to 3.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	YearLevel int       `db:"year_level" json:"year_level"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	YearLevel int
	Search    string
	Page      int
	PageSize  int
}

// ClassCourseAssignment links a course to a class for an academic year, optionally
// with the teacher who delivers it. At most one exists per class and course.
type ClassCourseAssignment struct {
	ID           string    `db:"id" json:"id"`
	ClassID      string    `db:"class_id" json:"class_id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	TeacherID    *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	AcademicYear int       `db:"academic_year" json:"academic_year"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ClassCourseAssignmentDetail adds course and teacher names for listings.
type ClassCourseAssignmentDetail struct {
	ClassCourseAssignment
	CourseName  string  `db:"course_name" json:"course_name"`
	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
}
