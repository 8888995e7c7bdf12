package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
	"github.com/noah-isme/sma-academic-api/pkg/validation"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByRegistrationNumber(ctx context.Context, number string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Deactivate(ctx context.Context, id string) error
}

// StudentService implements business logic around students.
type StudentService struct {
	repo      studentRepository
	classes   classLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, classes classLookup, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validation.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, classes: classes, validator: validate, logger: logger}
}

// List returns students filtered by class and active flag.
func (s *StudentService) List(ctx context.Context, query dto.ListQuery) ([]models.Student, *models.Pagination, error) {
	page, size := models.NormalisePage(query.Page, query.PageSize)
	students, total, err := s.repo.List(ctx, models.StudentFilter{
		ClassID:  query.ClassID,
		Active:   query.Active,
		Search:   query.Search,
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list students")
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	return student, nil
}

// Create registers an active student.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid student payload")
	}
	if err := s.ensureClass(ctx, req.ClassID); err != nil {
		return nil, err
	}
	number := strings.TrimSpace(req.RegistrationNumber)
	exists, err := s.repo.ExistsByRegistrationNumber(ctx, number)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check registration number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "registration number already exists")
	}

	student := &models.Student{
		ClassID:            req.ClassID,
		FullName:           strings.TrimSpace(req.FullName),
		RegistrationNumber: number,
		Active:             true,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Internal(err, "failed to create student")
	}
	s.logger.Info("student created", zap.String("student_id", student.ID), zap.String("class_id", student.ClassID))
	return student, nil
}

// Update changes the class or name of a student.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid student payload")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureClass(ctx, req.ClassID); err != nil {
		return nil, err
	}
	student.ClassID = req.ClassID
	student.FullName = strings.TrimSpace(req.FullName)
	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to update student")
	}
	return student, nil
}

// Deactivate removes a student from attendance rolls without deleting history.
func (s *StudentService) Deactivate(ctx context.Context, id string) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Internal(err, "failed to deactivate student")
	}
	return nil
}

func (s *StudentService) ensureClass(ctx context.Context, classID string) error {
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "class_id does not reference an existing class")
		}
		return appErrors.Internal(err, "failed to load class")
	}
	return nil
}
