package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/pkg/academicyear"
	"github.com/noah-isme/sma-academic-api/pkg/database"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
	"github.com/noah-isme/sma-academic-api/pkg/validation"
)

type classCourseRepository interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ClassCourseAssignment, error)
	FindByClassAndCourse(ctx context.Context, classID, courseID string) (*models.ClassCourseAssignment, error)
	ListByClass(ctx context.Context, classID string) ([]models.ClassCourseAssignmentDetail, error)
	Create(ctx context.Context, a *models.ClassCourseAssignment) error
	UpdateTeacher(ctx context.Context, id string, teacherID *string) error
	Delete(ctx context.Context, id string) error
}

type courseLookup interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ClassCourseServiceParams wires ClassCourseService dependencies.
type ClassCourseServiceParams struct {
	Assignments   classCourseRepository
	Classes       classLookup
	Courses       courseLookup
	Users         userLookup
	RolloverMonth time.Month
	Validator     *validator.Validate
	Logger        *zap.Logger
}

// ClassCourseService links courses to classes and picks their teachers.
type ClassCourseService struct {
	assignments classCourseRepository
	classes     classLookup
	courses     courseLookup
	users       userLookup
	rollover    time.Month
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewClassCourseService constructs the service.
func NewClassCourseService(params ClassCourseServiceParams) *ClassCourseService {
	if params.Validator == nil {
		params.Validator = validation.Default()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &ClassCourseService{
		assignments: params.Assignments,
		classes:     params.Classes,
		courses:     params.Courses,
		users:       params.Users,
		rollover:    params.RolloverMonth,
		validator:   params.Validator,
		logger:      params.Logger,
		now:         time.Now,
	}
}

// ListByClass returns the assignments of a class.
func (s *ClassCourseService) ListByClass(ctx context.Context, classID string) ([]models.ClassCourseAssignmentDetail, error) {
	if err := s.ensureClass(ctx, classID); err != nil {
		return nil, err
	}
	items, err := s.assignments.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list class assignments")
	}
	return items, nil
}

// Create assigns a course to a class.
func (s *ClassCourseService) Create(ctx context.Context, classID string, req dto.CreateAssignmentRequest) (*models.ClassCourseAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid assignment payload")
	}
	if err := s.ensureClass(ctx, classID); err != nil {
		return nil, err
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}

	switch _, err := s.assignments.FindByClassAndCourse(ctx, classID, req.CourseID); {
	case err == nil:
		return nil, appErrors.Clone(appErrors.ErrConflict, "course already assigned to class")
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Internal(err, "failed to check existing assignment")
	}

	if err := s.ensureTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	year := req.AcademicYear
	if year == 0 {
		year, _ = academicyear.StartYear(academicyear.Current(s.now(), s.rollover))
	}

	assignment := &models.ClassCourseAssignment{
		ClassID:      classID,
		CourseID:     req.CourseID,
		TeacherID:    req.TeacherID,
		AcademicYear: year,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "course already assigned to class")
		}
		return nil, appErrors.Internal(err, "failed to create assignment")
	}
	s.logger.Info("course assigned", zap.String("assignment_id", assignment.ID), zap.String("class_id", classID), zap.String("course_id", req.CourseID))
	return assignment, nil
}

// UpdateTeacher changes or clears the teacher of an assignment.
func (s *ClassCourseService) UpdateTeacher(ctx context.Context, id string, req dto.UpdateAssignmentTeacherRequest) (*models.ClassCourseAssignment, error) {
	assignment, err := s.assignments.FindByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrAssignmentNotFound
		}
		return nil, appErrors.Internal(err, "failed to load assignment")
	}
	if err := s.ensureTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}
	if err := s.assignments.UpdateTeacher(ctx, id, req.TeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrAssignmentNotFound
		}
		return nil, appErrors.Internal(err, "failed to update assignment teacher")
	}
	assignment.TeacherID = req.TeacherID
	return assignment, nil
}

// Delete removes an assignment.
func (s *ClassCourseService) Delete(ctx context.Context, id string) error {
	if err := s.assignments.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrAssignmentNotFound
		}
		return appErrors.Internal(err, "failed to delete assignment")
	}
	return nil
}

func (s *ClassCourseService) ensureClass(ctx context.Context, classID string) error {
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Internal(err, "failed to load class")
	}
	return nil
}

func (s *ClassCourseService) ensureTeacher(ctx context.Context, teacherID *string) error {
	if teacherID == nil {
		return nil
	}
	user, err := s.users.FindByID(ctx, *teacherID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Internal(err, "failed to load teacher")
	}
	if !user.IsActiveTeacher() {
		return appErrors.Clone(appErrors.ErrValidation, "teacher_id must reference an active teacher")
	}
	return nil
}
