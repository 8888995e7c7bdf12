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

const assignmentColumns = "id, class_id, course_id, teacher_id, academic_year, created_at, updated_at"

// ClassCourseRepository persists class-course assignments.
type ClassCourseRepository struct {
	db *sqlx.DB
}

// NewClassCourseRepository constructs the repository.
func NewClassCourseRepository(db *sqlx.DB) *ClassCourseRepository {
	return &ClassCourseRepository{db: db}
}

// FindByID loads an assignment, optionally within a transaction.
func (r *ClassCourseRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ClassCourseAssignment, error) {
	var a models.ClassCourseAssignment
	query := "SELECT " + assignmentColumns + " FROM class_course_assignments WHERE id = $1"
	if err := sqlx.GetContext(ctx, pick(r.db, exec), &a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find class course assignment: %w", err)
	}
	return &a, nil
}

// FindByClassAndCourse returns the assignment for the pair or sql.ErrNoRows.
func (r *ClassCourseRepository) FindByClassAndCourse(ctx context.Context, classID, courseID string) (*models.ClassCourseAssignment, error) {
	var a models.ClassCourseAssignment
	query := "SELECT " + assignmentColumns + " FROM class_course_assignments WHERE class_id = $1 AND course_id = $2"
	if err := r.db.GetContext(ctx, &a, query, classID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find class course pair: %w", err)
	}
	return &a, nil
}

// ListByClass returns the assignments of a class with course and teacher names.
func (r *ClassCourseRepository) ListByClass(ctx context.Context, classID string) ([]models.ClassCourseAssignmentDetail, error) {
	const query = `SELECT a.id, a.class_id, a.course_id, a.teacher_id, a.academic_year, a.created_at, a.updated_at,
c.name AS course_name, u.full_name AS teacher_name
FROM class_course_assignments a
JOIN courses c ON c.id = a.course_id
LEFT JOIN users u ON u.id = a.teacher_id
WHERE a.class_id = $1
ORDER BY c.name`
	var list []models.ClassCourseAssignmentDetail
	if err := r.db.SelectContext(ctx, &list, query, classID); err != nil {
		return nil, fmt.Errorf("list class course assignments: %w", err)
	}
	return list, nil
}

// Create inserts an assignment.
func (r *ClassCourseRepository) Create(ctx context.Context, a *models.ClassCourseAssignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	const query = `INSERT INTO class_course_assignments (id, class_id, course_id, teacher_id, academic_year, created_at, updated_at)
VALUES (:id, :class_id, :course_id, :teacher_id, :academic_year, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("create class course assignment: %w", err)
	}
	return nil
}

// UpdateTeacher sets or clears the teacher of an assignment.
func (r *ClassCourseRepository) UpdateTeacher(ctx context.Context, id string, teacherID *string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE class_course_assignments SET teacher_id = $2, updated_at = $3 WHERE id = $1`, id, teacherID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update assignment teacher: %w", err)
	}
	return expectAffected(res, "update assignment teacher")
}

// Delete removes an assignment.
func (r *ClassCourseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM class_course_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete class course assignment: %w", err)
	}
	return expectAffected(res, "delete class course assignment")
}
