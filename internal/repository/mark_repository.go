package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-academic-api/internal/models"
)

// MarkRepository persists student scores.
type MarkRepository struct {
	db *sqlx.DB
}

// NewMarkRepository constructs the repository.
func NewMarkRepository(db *sqlx.DB) *MarkRepository {
	return &MarkRepository{db: db}
}

// Upsert stores the score for (student, course, year, term), replacing any previous value.
func (r *MarkRepository) Upsert(ctx context.Context, mark *models.Mark) error {
	if mark.ID == "" {
		mark.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	mark.CreatedAt, mark.UpdatedAt = now, now

	const query = `INSERT INTO marks (id, student_id, course_id, academic_year, term, score, created_at, updated_at)
VALUES (:id, :student_id, :course_id, :academic_year, :term, :score, :created_at, :updated_at)
ON CONFLICT (student_id, course_id, academic_year, term)
DO UPDATE SET score = EXCLUDED.score, updated_at = EXCLUDED.updated_at
RETURNING id, created_at`
	rows, err := r.db.NamedQueryContext(ctx, query, mark)
	if err != nil {
		return fmt.Errorf("upsert mark: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&mark.ID, &mark.CreatedAt); err != nil {
			return fmt.Errorf("scan upserted mark: %w", err)
		}
	}
	return rows.Err()
}

// ListByStudent returns a student's marks for a year with course names.
func (r *MarkRepository) ListByStudent(ctx context.Context, studentID string, academicYear int) ([]models.MarkDetail, error) {
	const query = `SELECT m.id, m.student_id, m.course_id, m.academic_year, m.term, m.score, m.created_at, m.updated_at, c.name AS course_name
FROM marks m JOIN courses c ON c.id = m.course_id
WHERE m.student_id = $1 AND m.academic_year = $2
ORDER BY m.term, c.name`
	var marks []models.MarkDetail
	if err := r.db.SelectContext(ctx, &marks, query, studentID, academicYear); err != nil {
		return nil, fmt.Errorf("list student marks: %w", err)
	}
	return marks, nil
}

// AveragesByClass returns every active student of the class with the mean of their
// marks for the year. Students without marks have a nil average.
func (r *MarkRepository) AveragesByClass(ctx context.Context, classID string, academicYear int) ([]models.StudentAverage, error) {
	const query = `SELECT s.id AS student_id, s.full_name AS student_name, AVG(m.score) AS average, COUNT(m.id) AS mark_count
FROM students s
LEFT JOIN marks m ON m.student_id = s.id AND m.academic_year = $2
WHERE s.class_id = $1 AND s.active = TRUE
GROUP BY s.id, s.full_name
ORDER BY s.full_name`
	var rows []models.StudentAverage
	if err := r.db.SelectContext(ctx, &rows, query, classID, academicYear); err != nil {
		return nil, fmt.Errorf("average class marks: %w", err)
	}
	return rows, nil
}
