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

const permissionColumns = "id, teacher_id, roster_id, class_id, period_date, period_number, reason, status, reviewed_by, reviewed_at, created_at"

// PermissionRepository persists late attendance permission requests.
type PermissionRepository struct {
	db *sqlx.DB
}

// NewPermissionRepository constructs the repository.
func NewPermissionRepository(db *sqlx.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// Create inserts a request.
func (r *PermissionRepository) Create(ctx context.Context, req *models.PermissionRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO permission_requests (id, teacher_id, roster_id, class_id, period_date, period_number, reason, status, created_at)
VALUES (:id, :teacher_id, :roster_id, :class_id, :period_date, :period_number, :reason, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create permission request: %w", err)
	}
	return nil
}

// FindByID returns a request or sql.ErrNoRows.
func (r *PermissionRepository) FindByID(ctx context.Context, id string) (*models.PermissionRequest, error) {
	var req models.PermissionRequest
	if err := r.db.GetContext(ctx, &req, "SELECT "+permissionColumns+" FROM permission_requests WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find permission request: %w", err)
	}
	return &req, nil
}

// HasPending reports whether a pending request exists for the slot and date.
func (r *PermissionRepository) HasPending(ctx context.Context, rosterID string, periodDate time.Time) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM permission_requests WHERE roster_id = $1 AND period_date = $2 AND status = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, rosterID, periodDate, models.PermissionPending); err != nil {
		return false, fmt.Errorf("check pending permission: %w", err)
	}
	return exists, nil
}

// List returns requests newest first.
func (r *PermissionRepository) List(ctx context.Context, filter models.PermissionFilter) ([]models.PermissionRequest, int, error) {
	var cond conditions
	if filter.Status != "" {
		cond.add("status = $%d", filter.Status)
	}
	if filter.TeacherID != "" {
		cond.add("teacher_id = $%d", filter.TeacherID)
	}

	query := "SELECT " + permissionColumns + " FROM permission_requests" + cond.where() + " ORDER BY created_at DESC" + limitOffset(filter.Page, filter.PageSize)
	var list []models.PermissionRequest
	if err := r.db.SelectContext(ctx, &list, query, cond.args...); err != nil {
		return nil, 0, fmt.Errorf("list permission requests: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM permission_requests"+cond.where(), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("count permission requests: %w", err)
	}
	return list, total, nil
}

// Approve marks a pending request approved. Requests that are no longer pending
// are left untouched and reported with sql.ErrNoRows.
func (r *PermissionRepository) Approve(ctx context.Context, id, reviewerID string, at time.Time) error {
	const query = `UPDATE permission_requests SET status = $2, reviewed_by = $3, reviewed_at = $4 WHERE id = $1 AND status = $5`
	res, err := r.db.ExecContext(ctx, query, id, models.PermissionApproved, reviewerID, at, models.PermissionPending)
	if err != nil {
		return fmt.Errorf("approve permission request: %w", err)
	}
	return expectAffected(res, "approve permission request")
}
