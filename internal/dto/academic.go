package dto

// UpsertClassRequest creates or updates a class.
type UpsertClassRequest struct {
	Name      string `json:"name" validate:"required,notblank,max=100"`
	YearLevel int    `json:"year_level" validate:"required,min=1,max=3"`
}

// UpsertCourseRequest creates or updates a course.
type UpsertCourseRequest struct {
	Name      string `json:"name" validate:"required,notblank,max=150"`
	YearLevel int    `json:"year_level" validate:"required,min=1,max=3"`
}

// CreateAssignmentRequest links a course to a class. AcademicYear defaults to the
// start year of the current academic year.
type CreateAssignmentRequest struct {
	CourseID     string  `json:"course_id" validate:"required,uuid"`
	TeacherID    *string `json:"teacher_id" validate:"omitempty,uuid"`
	AcademicYear int     `json:"academic_year" validate:"omitempty,min=1000,max=9999"`
}

// UpdateAssignmentTeacherRequest changes or clears the teacher of an assignment.
type UpdateAssignmentTeacherRequest struct {
	TeacherID *string `json:"teacher_id" validate:"omitempty,uuid"`
}

// CreateStudentRequest registers a student in a class.
type CreateStudentRequest struct {
	ClassID            string `json:"class_id" validate:"required,uuid"`
	FullName           string `json:"full_name" validate:"required,notblank,max=150"`
	RegistrationNumber string `json:"registration_number" validate:"required,notblank,max=50"`
}

// UpdateStudentRequest updates mutable student fields.
type UpdateStudentRequest struct {
	ClassID  string `json:"class_id" validate:"required,uuid"`
	FullName string `json:"full_name" validate:"required,notblank,max=150"`
}

// ListQuery carries the shared list parameters.
type ListQuery struct {
	ClassID   string `form:"class_id" validate:"omitempty,uuid"`
	YearLevel int    `form:"year_level"`
	Search    string `form:"search"`
	Active    *bool  `form:"active"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}
