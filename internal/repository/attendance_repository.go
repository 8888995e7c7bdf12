package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-academic-api/internal/models"
)

// AttendanceRepository persists per-period attendance records and their entries.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// CountForSlot counts records of the slot created within [from, to].
func (r *AttendanceRepository) CountForSlot(ctx context.Context, exec sqlx.ExtContext, rosterID string, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM attendance_records WHERE roster_id = $1 AND created_at >= $2 AND created_at <= $3`
	var count int
	if err := sqlx.GetContext(ctx, pick(r.db, exec), &count, query, rosterID, from, to); err != nil {
		return 0, fmt.Errorf("count attendance records: %w", err)
	}
	return count, nil
}

// DeleteForSlot removes records of the slot created within [from, to]. Entries go with
// them through the foreign key cascade.
func (r *AttendanceRepository) DeleteForSlot(ctx context.Context, exec sqlx.ExtContext, rosterID string, from, to time.Time) (int64, error) {
	const query = `DELETE FROM attendance_records WHERE roster_id = $1 AND created_at >= $2 AND created_at <= $3`
	res, err := pick(r.db, exec).ExecContext(ctx, query, rosterID, from, to)
	if err != nil {
		return 0, fmt.Errorf("delete attendance records: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete attendance rows affected: %w", err)
	}
	return affected, nil
}

// CreateRecord inserts a record header.
func (r *AttendanceRepository) CreateRecord(ctx context.Context, exec sqlx.ExtContext, record *models.AttendanceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attendance_records (id, roster_id, class_id, submitted_by, created_at) VALUES (:id, :roster_id, :class_id, :submitted_by, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, pick(r.db, exec), query, record); err != nil {
		return fmt.Errorf("insert attendance record: %w", err)
	}
	return nil
}

// CreateEntries inserts the entries of a record in one statement.
func (r *AttendanceRepository) CreateEntries(ctx context.Context, exec sqlx.ExtContext, entries []models.AttendanceEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
	}
	const query = `INSERT INTO attendance_entries (id, record_id, student_id, is_present) VALUES (:id, :record_id, :student_id, :is_present)`
	if _, err := sqlx.NamedExecContext(ctx, pick(r.db, exec), query, entries); err != nil {
		return fmt.Errorf("insert attendance entries: %w", err)
	}
	return nil
}

// ListForSlot returns the records of a slot within [from, to] with their entries.
func (r *AttendanceRepository) ListForSlot(ctx context.Context, rosterID string, from, to time.Time) ([]models.AttendanceRecord, error) {
	const recordQuery = `SELECT id, roster_id, class_id, submitted_by, created_at FROM attendance_records
WHERE roster_id = $1 AND created_at >= $2 AND created_at <= $3 ORDER BY created_at`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, recordQuery, rosterID, from, to); err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	if len(records) == 0 {
		return records, nil
	}

	ids := make([]string, len(records))
	index := make(map[string]int, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
		index[rec.ID] = i
	}
	const entryQuery = `SELECT e.id, e.record_id, e.student_id, st.full_name AS student_name, e.is_present
FROM attendance_entries e JOIN students st ON st.id = e.student_id
WHERE e.record_id = ANY($1) ORDER BY st.full_name`
	var entries []models.AttendanceEntry
	if err := r.db.SelectContext(ctx, &entries, entryQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list attendance entries: %w", err)
	}
	for _, e := range entries {
		i := index[e.RecordID]
		records[i].Entries = append(records[i].Entries, e)
	}
	return records, nil
}
