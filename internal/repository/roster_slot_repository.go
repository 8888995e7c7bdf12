package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-academic-api/internal/models"
)

const slotColumns = "id, timetable_id, class_id, day_of_week, period, course_id, teacher_id, updated_at"

// RosterSlotRepository persists the cells of timetables.
type RosterSlotRepository struct {
	db *sqlx.DB
}

// NewRosterSlotRepository constructs repository.
func NewRosterSlotRepository(db *sqlx.DB) *RosterSlotRepository {
	return &RosterSlotRepository{db: db}
}

// BulkCreate inserts slots with a single multi-row statement.
func (r *RosterSlotRepository) BulkCreate(ctx context.Context, exec sqlx.ExtContext, slots []models.RosterSlot) error {
	if len(slots) == 0 {
		return nil
	}
	const cols = 8
	now := time.Now().UTC()
	values := make([]string, 0, len(slots))
	args := make([]interface{}, 0, len(slots)*cols)
	for i := range slots {
		if slots[i].ID == "" {
			slots[i].ID = uuid.NewString()
		}
		slots[i].UpdatedAt = now
		s := slots[i]

		holders := make([]string, cols)
		for j := range holders {
			holders[j] = fmt.Sprintf("$%d", len(args)+j+1)
		}
		values = append(values, "("+strings.Join(holders, ", ")+")")
		args = append(args, s.ID, s.TimetableID, s.ClassID, s.DayOfWeek, s.Period, s.CourseID, s.TeacherID, s.UpdatedAt)
	}

	query := "INSERT INTO roster_slots (" + slotColumns + ") VALUES " + strings.Join(values, ", ")
	if _, err := pick(r.db, exec).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert roster slots: %w", err)
	}
	return nil
}

// FindContext loads a slot with its timetable flags. Inside a serializable
// transaction the read takes part in conflict detection.
func (r *RosterSlotRepository) FindContext(ctx context.Context, exec sqlx.ExtContext, id string) (*models.RosterSlotContext, error) {
	const query = `SELECT s.id, s.timetable_id, s.class_id, s.day_of_week, s.period, s.course_id, s.teacher_id, s.updated_at,
t.is_active AS timetable_active, t.academic_year, t.term
FROM roster_slots s
JOIN timetables t ON t.id = s.timetable_id
WHERE s.id = $1`
	var slot models.RosterSlotContext
	if err := sqlx.GetContext(ctx, pick(r.db, exec), &slot, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find roster slot: %w", err)
	}
	return &slot, nil
}

// TeacherBookedElsewhere reports whether the teacher holds the same day and period in
// another active timetable of the same academic year and term.
func (r *RosterSlotRepository) TeacherBookedElsewhere(ctx context.Context, exec sqlx.ExtContext, teacherID string, slot models.RosterSlotContext) (bool, error) {
	const query = `SELECT EXISTS(
SELECT 1 FROM roster_slots s
JOIN timetables t ON t.id = s.timetable_id
WHERE s.teacher_id = $1 AND s.day_of_week = $2 AND s.period = $3
AND t.is_active = TRUE AND t.academic_year = $4 AND t.term = $5 AND t.id <> $6)`
	var booked bool
	if err := sqlx.GetContext(ctx, pick(r.db, exec), &booked, query, teacherID, slot.DayOfWeek, slot.Period, slot.AcademicYear, slot.Term, slot.TimetableID); err != nil {
		return false, fmt.Errorf("check teacher availability: %w", err)
	}
	return booked, nil
}

// TeacherConflictOnActivation reports whether any teacher of tt holds one of its day and
// period pairs in an active timetable of another class for the same academic year and
// term. Timetables of tt's own class are ignored since activation replaces them.
func (r *RosterSlotRepository) TeacherConflictOnActivation(ctx context.Context, exec sqlx.ExtContext, tt models.Timetable) (bool, error) {
	const query = `SELECT EXISTS(
SELECT 1 FROM roster_slots s
JOIN roster_slots o ON o.teacher_id = s.teacher_id AND o.day_of_week = s.day_of_week AND o.period = s.period
JOIN timetables t ON t.id = o.timetable_id
WHERE s.timetable_id = $1 AND s.teacher_id IS NOT NULL
AND t.is_active = TRUE AND t.academic_year = $2 AND t.term = $3 AND t.class_id <> $4)`
	var conflict bool
	if err := sqlx.GetContext(ctx, pick(r.db, exec), &conflict, query, tt.ID, tt.AcademicYear, tt.Term, tt.ClassID); err != nil {
		return false, fmt.Errorf("check activation conflicts: %w", err)
	}
	return conflict, nil
}

// SetAssignment writes course and teacher onto a slot and returns the stored row.
// Nil values clear the slot.
func (r *RosterSlotRepository) SetAssignment(ctx context.Context, exec sqlx.ExtContext, id string, courseID, teacherID *string) (*models.RosterSlot, error) {
	query := `UPDATE roster_slots SET course_id = $2, teacher_id = $3, updated_at = $4 WHERE id = $1 RETURNING ` + slotColumns
	var slot models.RosterSlot
	if err := sqlx.GetContext(ctx, pick(r.db, exec), &slot, query, id, courseID, teacherID, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("update roster slot: %w", err)
	}
	return &slot, nil
}

// ListByTimetable returns every slot of a timetable ordered by day and period.
func (r *RosterSlotRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.RosterSlotDetail, error) {
	const query = `SELECT s.id, s.timetable_id, s.class_id, s.day_of_week, s.period, s.course_id, s.teacher_id, s.updated_at,
c.name AS course_name, u.full_name AS teacher_name, cl.name AS class_name
FROM roster_slots s
JOIN classes cl ON cl.id = s.class_id
LEFT JOIN courses c ON c.id = s.course_id
LEFT JOIN users u ON u.id = s.teacher_id
WHERE s.timetable_id = $1
ORDER BY CASE s.day_of_week WHEN 'MONDAY' THEN 1 WHEN 'TUESDAY' THEN 2 WHEN 'WEDNESDAY' THEN 3 WHEN 'THURSDAY' THEN 4 ELSE 5 END, s.period`
	var slots []models.RosterSlotDetail
	if err := r.db.SelectContext(ctx, &slots, query, timetableID); err != nil {
		return nil, fmt.Errorf("list roster slots: %w", err)
	}
	return slots, nil
}

// ListTeacherDay returns the teacher's slots in active timetables for a weekday.
func (r *RosterSlotRepository) ListTeacherDay(ctx context.Context, teacherID, day string) ([]models.RosterSlotDetail, error) {
	const query = `SELECT s.id, s.timetable_id, s.class_id, s.day_of_week, s.period, s.course_id, s.teacher_id, s.updated_at,
c.name AS course_name, u.full_name AS teacher_name, cl.name AS class_name
FROM roster_slots s
JOIN timetables t ON t.id = s.timetable_id
JOIN classes cl ON cl.id = s.class_id
LEFT JOIN courses c ON c.id = s.course_id
LEFT JOIN users u ON u.id = s.teacher_id
WHERE s.teacher_id = $1 AND s.day_of_week = $2 AND t.is_active = TRUE
ORDER BY s.period`
	var slots []models.RosterSlotDetail
	if err := r.db.SelectContext(ctx, &slots, query, teacherID, day); err != nil {
		return nil, fmt.Errorf("list teacher slots: %w", err)
	}
	return slots, nil
}

// DeleteByTimetable removes every slot of a timetable.
func (r *RosterSlotRepository) DeleteByTimetable(ctx context.Context, exec sqlx.ExtContext, timetableID string) error {
	if _, err := pick(r.db, exec).ExecContext(ctx, `DELETE FROM roster_slots WHERE timetable_id = $1`, timetableID); err != nil {
		return fmt.Errorf("delete roster slots: %w", err)
	}
	return nil
}
