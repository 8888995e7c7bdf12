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
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
	"github.com/noah-isme/sma-academic-api/pkg/period"
	"github.com/noah-isme/sma-academic-api/pkg/validation"
)

type permissionRepository interface {
	Create(ctx context.Context, req *models.PermissionRequest) error
	FindByID(ctx context.Context, id string) (*models.PermissionRequest, error)
	HasPending(ctx context.Context, rosterID string, periodDate time.Time) (bool, error)
	List(ctx context.Context, filter models.PermissionFilter) ([]models.PermissionRequest, int, error)
	Approve(ctx context.Context, id, reviewerID string, at time.Time) error
}

// PermissionService handles requests to submit attendance after a period was missed.
type PermissionService struct {
	repo      permissionRepository
	slots     slotLookup
	loc       *time.Location
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPermissionService constructs the service.
func NewPermissionService(repo permissionRepository, slots slotLookup, loc *time.Location, validate *validator.Validate, logger *zap.Logger) *PermissionService {
	if loc == nil {
		loc = time.UTC
	}
	if validate == nil {
		validate = validation.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionService{repo: repo, slots: slots, loc: loc, validator: validate, logger: logger, now: time.Now}
}

// Create files a pending request for a slot the caller teaches.
func (s *PermissionService) Create(ctx context.Context, teacherID string, req dto.CreatePermissionRequest) (*models.PermissionRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid permission payload")
	}
	periodDate, err := time.ParseInLocation(DateLayout, req.PeriodDate, s.loc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "period_date must be YYYY-MM-DD")
	}

	slot, err := s.slots.FindContext(ctx, nil, req.RosterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSlotNotFound
		}
		return nil, appErrors.Internal(err, "failed to load roster slot")
	}
	if slot.TeacherID == nil || *slot.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "slot is not taught by the requesting teacher")
	}
	if !period.IsLessonPeriod(slot.Period) {
		return nil, appErrors.ErrInvalidPeriodType
	}

	pending, err := s.repo.HasPending(ctx, slot.ID, periodDate)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check pending requests")
	}
	if pending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a pending request already exists for this slot and date")
	}

	request := &models.PermissionRequest{
		TeacherID:    teacherID,
		RosterID:     slot.ID,
		ClassID:      slot.ClassID,
		PeriodDate:   periodDate,
		PeriodNumber: slot.Period,
		Reason:       req.Reason,
		Status:       models.PermissionPending,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Internal(err, "failed to create permission request")
	}
	s.logger.Info("permission requested", zap.String("permission_id", request.ID), zap.String("roster_id", slot.ID), zap.String("teacher_id", teacherID))
	return request, nil
}

// List returns requests filtered by status and teacher.
func (s *PermissionService) List(ctx context.Context, query dto.PermissionQuery) ([]models.PermissionRequest, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, validation.Error(err, "invalid permission query")
	}
	page, size := models.NormalisePage(query.Page, query.PageSize)
	items, total, err := s.repo.List(ctx, models.PermissionFilter{
		Status:    models.PermissionStatus(query.Status),
		TeacherID: query.TeacherID,
		Page:      page,
		PageSize:  size,
	})
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list permission requests")
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Approve marks a pending request approved by reviewerID. Approval records the
// review only: attendance submission never consults permission requests, so a
// late submission is accepted with or without one.
func (s *PermissionService) Approve(ctx context.Context, id, reviewerID string) (*models.PermissionRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "permission request not found")
		}
		return nil, appErrors.Internal(err, "failed to load permission request")
	}
	if request.Status != models.PermissionPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "permission request already reviewed")
	}

	at := s.now().UTC()
	if err := s.repo.Approve(ctx, id, reviewerID, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "permission request already reviewed")
		}
		return nil, appErrors.Internal(err, "failed to approve permission request")
	}
	request.Status = models.PermissionApproved
	request.ReviewedBy = &reviewerID
	request.ReviewedAt = &at
	return request, nil
}
