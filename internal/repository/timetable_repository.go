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

const timetableColumns = "id, class_id, academic_year, term, is_active, created_at, updated_at"

// TimetableRepository persists timetable headers.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// Create inserts an inactive timetable.
func (r *TimetableRepository) Create(ctx context.Context, exec sqlx.ExtContext, tt *models.Timetable) error {
	if tt.ID == "" {
		tt.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	tt.CreatedAt, tt.UpdatedAt = now, now
	tt.IsActive = false

	const query = `INSERT INTO timetables (id, class_id, academic_year, term, is_active, created_at, updated_at)
VALUES (:id, :class_id, :academic_year, :term, :is_active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, pick(r.db, exec), query, tt); err != nil {
		return fmt.Errorf("insert timetable: %w", err)
	}
	return nil
}

// FindByID loads a timetable or returns sql.ErrNoRows.
func (r *TimetableRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Timetable, error) {
	var tt models.Timetable
	if err := sqlx.GetContext(ctx, pick(r.db, exec), &tt, "SELECT "+timetableColumns+" FROM timetables WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find timetable: %w", err)
	}
	return &tt, nil
}

// ExistsForTerm reports whether the class already has a timetable for the year and term.
func (r *TimetableRepository) ExistsForTerm(ctx context.Context, classID, academicYear string, term int) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM timetables WHERE class_id = $1 AND academic_year = $2 AND term = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, classID, academicYear, term); err != nil {
		return false, fmt.Errorf("check timetable uniqueness: %w", err)
	}
	return exists, nil
}

// FindActiveByClass returns the active timetable of a class or sql.ErrNoRows.
func (r *TimetableRepository) FindActiveByClass(ctx context.Context, classID string) (*models.Timetable, error) {
	var tt models.Timetable
	query := "SELECT " + timetableColumns + " FROM timetables WHERE class_id = $1 AND is_active = TRUE"
	if err := r.db.GetContext(ctx, &tt, query, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find active timetable: %w", err)
	}
	return &tt, nil
}

// List returns timetables matching filter, newest academic year first.
func (r *TimetableRepository) List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error) {
	var cond conditions
	if filter.ClassID != "" {
		cond.add("class_id = $%d", filter.ClassID)
	}
	if filter.AcademicYear != "" {
		cond.add("academic_year = $%d", filter.AcademicYear)
	}
	if filter.Term > 0 {
		cond.add("term = $%d", filter.Term)
	}
	if filter.Active != nil {
		cond.add("is_active = $%d", *filter.Active)
	}

	query := "SELECT " + timetableColumns + " FROM timetables" + cond.where() + " ORDER BY academic_year DESC, term DESC, created_at DESC" + limitOffset(filter.Page, filter.PageSize)
	var list []models.Timetable
	if err := r.db.SelectContext(ctx, &list, query, cond.args...); err != nil {
		return nil, 0, fmt.Errorf("list timetables: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM timetables"+cond.where(), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("count timetables: %w", err)
	}
	return list, total, nil
}

// DeactivateClass clears the active flag on every timetable of the class except keepID.
func (r *TimetableRepository) DeactivateClass(ctx context.Context, exec sqlx.ExtContext, classID, keepID string) error {
	const query = `UPDATE timetables SET is_active = FALSE, updated_at = $3 WHERE class_id = $1 AND id <> $2 AND is_active = TRUE`
	if _, err := pick(r.db, exec).ExecContext(ctx, query, classID, keepID, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate class timetables: %w", err)
	}
	return nil
}

// SetActive flips the active flag of one timetable.
func (r *TimetableRepository) SetActive(ctx context.Context, exec sqlx.ExtContext, id string, active bool) error {
	res, err := pick(r.db, exec).ExecContext(ctx, `UPDATE timetables SET is_active = $2, updated_at = $3 WHERE id = $1`, id, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set timetable active: %w", err)
	}
	return expectAffected(res, "set timetable active")
}

// Delete removes a timetable row.
func (r *TimetableRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	res, err := pick(r.db, exec).ExecContext(ctx, `DELETE FROM timetables WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	return expectAffected(res, "delete timetable")
}
