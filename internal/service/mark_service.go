package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/pkg/academicyear"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
	"github.com/noah-isme/sma-academic-api/pkg/validation"
)

type markRepository interface {
	Upsert(ctx context.Context, mark *models.Mark) error
	ListByStudent(ctx context.Context, studentID string, academicYear int) ([]models.MarkDetail, error)
}

type studentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// MarkService records course scores.
type MarkService struct {
	repo      markRepository
	students  studentLookup
	courses   courseLookup
	rollover  time.Month
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewMarkService constructs MarkService.
func NewMarkService(repo markRepository, students studentLookup, courses courseLookup, rollover time.Month, validate *validator.Validate, logger *zap.Logger) *MarkService {
	if validate == nil {
		validate = validation.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarkService{repo: repo, students: students, courses: courses, rollover: rollover, validator: validate, logger: logger, now: time.Now}
}

// Record stores a score, replacing any previous score for the same student,
// course, academic year and term.
func (s *MarkService) Record(ctx context.Context, req dto.RecordMarkRequest) (*models.Mark, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid mark payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}

	mark := &models.Mark{
		StudentID:    req.StudentID,
		CourseID:     req.CourseID,
		AcademicYear: req.AcademicYear,
		Term:         req.Term,
		Score:        *req.Score,
	}
	if err := s.repo.Upsert(ctx, mark); err != nil {
		return nil, appErrors.Internal(err, "failed to record mark")
	}
	return mark, nil
}

// StudentMarks lists a student's marks for an academic year, defaulting to the
// start year of the current academic year.
func (s *MarkService) StudentMarks(ctx context.Context, studentID string, academicYear int) ([]models.MarkDetail, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	if academicYear == 0 {
		academicYear, _ = academicyear.StartYear(academicyear.Current(s.now(), s.rollover))
	}
	marks, err := s.repo.ListByStudent(ctx, studentID, academicYear)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list marks")
	}
	return marks, nil
}
