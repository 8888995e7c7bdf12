package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-academic-api/internal/models"
)

const studentColumns = "id, class_id, full_name, registration_number, active, created_at, updated_at"

// StudentRepository handles persistence for students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new repository instance.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the filter ordered by name.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var cond conditions
	if filter.ClassID != "" {
		cond.add("class_id = $%d", filter.ClassID)
	}
	if filter.Active != nil {
		cond.add("active = $%d", *filter.Active)
	}
	if filter.Search != "" {
		cond.add("(LOWER(full_name) LIKE $%[1]d OR LOWER(registration_number) LIKE $%[1]d)", likePattern(filter.Search))
	}

	query := "SELECT " + studentColumns + " FROM students" + cond.where() + " ORDER BY full_name" + limitOffset(filter.Page, filter.PageSize)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, cond.args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students"+cond.where(), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListActiveByClass returns the active students of a class, the population of an
// attendance submission.
func (r *StudentRepository) ListActiveByClass(ctx context.Context, exec sqlx.ExtContext, classID string) ([]models.Student, error) {
	query := "SELECT " + studentColumns + " FROM students WHERE class_id = $1 AND active = TRUE ORDER BY full_name"
	var students []models.Student
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &students, query, classID); err != nil {
		return nil, fmt.Errorf("list active students: %w", err)
	}
	return students, nil
}

// FindByID retrieves a student or sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var s models.Student
	if err := r.db.GetContext(ctx, &s, "SELECT "+studentColumns+" FROM students WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &s, nil
}

// ExistsByRegistrationNumber reports whether the registration number is taken.
func (r *StudentRepository) ExistsByRegistrationNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM students WHERE registration_number = $1)`, number); err != nil {
		return false, fmt.Errorf("check registration number: %w", err)
	}
	return exists, nil
}

// Create inserts a student.
func (r *StudentRepository) Create(ctx context.Context, s *models.Student) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	const query = `INSERT INTO students (id, class_id, full_name, registration_number, active, created_at, updated_at)
VALUES (:id, :class_id, :full_name, :registration_number, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update saves class and name.
func (r *StudentRepository) Update(ctx context.Context, s *models.Student) error {
	s.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET class_id = :class_id, full_name = :full_name, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return expectAffected(res, "update student")
}

// Deactivate marks a student inactive. Inactive students are excluded from attendance.
func (r *StudentRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE students SET active = FALSE, updated_at = $2 WHERE id = $1`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate student: %w", err)
	}
	return expectAffected(res, "deactivate student")
}
