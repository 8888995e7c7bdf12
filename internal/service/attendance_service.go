package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/pkg/config"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
	"github.com/noah-isme/sma-academic-api/pkg/period"
	"github.com/noah-isme/sma-academic-api/pkg/validation"
)

// DateLayout is the calendar date format accepted and returned by the API.
const DateLayout = "2006-01-02"

type slotLookup interface {
	FindContext(ctx context.Context, exec sqlx.ExtContext, id string) (*models.RosterSlotContext, error)
}

type teacherDayLister interface {
	ListTeacherDay(ctx context.Context, teacherID, day string) ([]models.RosterSlotDetail, error)
}

type activeStudentLister interface {
	ListActiveByClass(ctx context.Context, exec sqlx.ExtContext, classID string) ([]models.Student, error)
}

type attendanceRepository interface {
	CountForSlot(ctx context.Context, exec sqlx.ExtContext, rosterID string, from, to time.Time) (int, error)
	DeleteForSlot(ctx context.Context, exec sqlx.ExtContext, rosterID string, from, to time.Time) (int64, error)
	CreateRecord(ctx context.Context, exec sqlx.ExtContext, record *models.AttendanceRecord) error
	CreateEntries(ctx context.Context, exec sqlx.ExtContext, entries []models.AttendanceEntry) error
	ListForSlot(ctx context.Context, rosterID string, from, to time.Time) ([]models.AttendanceRecord, error)
}

// AttendanceServiceParams wires AttendanceService dependencies.
type AttendanceServiceParams struct {
	Slots      slotLookup
	TeacherDay teacherDayLister
	Students   activeStudentLister
	Records    attendanceRepository
	Tx         txProvider
	Location   *time.Location
	Policy     string
	Metrics    *MetricsService
	Validator  *validator.Validate
	Logger     *zap.Logger
}

// AttendanceService resolves period status and stores attendance submissions.
type AttendanceService struct {
	slots      slotLookup
	teacherDay teacherDayLister
	students   activeStudentLister
	records    attendanceRepository
	tx         txProvider
	loc        *time.Location
	policy     string
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewAttendanceService constructs the service.
func NewAttendanceService(params AttendanceServiceParams) *AttendanceService {
	if params.Location == nil {
		params.Location = time.UTC
	}
	if params.Policy == "" {
		params.Policy = config.ResubmissionAppend
	}
	if params.Validator == nil {
		params.Validator = validation.Default()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &AttendanceService{
		slots:      params.Slots,
		teacherDay: params.TeacherDay,
		students:   params.Students,
		records:    params.Records,
		tx:         params.Tx,
		loc:        params.Location,
		policy:     params.Policy,
		metrics:    params.Metrics,
		validator:  params.Validator,
		logger:     params.Logger,
		now:        time.Now,
	}
}

// Location returns the school timezone dates are interpreted in.
func (s *AttendanceService) Location() *time.Location {
	return s.loc
}

// Today returns the current calendar date in the school timezone.
func (s *AttendanceService) Today() time.Time {
	start, _ := s.dayRange(s.now())
	return start
}

// dayRange returns the first and last instant of the calendar day of t in the school timezone.
func (s *AttendanceService) dayRange(t time.Time) (time.Time, time.Time) {
	y, m, d := t.In(s.loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 0, 1).Add(-time.Millisecond)
}

// PeriodStatus reports the attendance state of a slot on a date. It has no side effects.
// An id that is not a UUID names no slot and resolves to UNKNOWN.
func (s *AttendanceService) PeriodStatus(ctx context.Context, rosterID string, date time.Time) (models.PeriodStatus, error) {
	if !validation.IsUUID(rosterID) {
		return models.PeriodStatusUnknown, nil
	}
	slot, err := s.slots.FindContext(ctx, nil, rosterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PeriodStatusUnknown, nil
		}
		return models.PeriodStatusUnknown, appErrors.Internal(err, "failed to load roster slot")
	}
	return s.statusFor(ctx, slot.ID, slot.Period, date)
}

func (s *AttendanceService) statusFor(ctx context.Context, rosterID string, number int, date time.Time) (models.PeriodStatus, error) {
	p, ok := period.Lookup(number)
	if !ok {
		return models.PeriodStatusUnknown, nil
	}
	dayStart, dayEnd := s.dayRange(date)
	start, end, err := p.Window.Bounds(dayStart, s.loc)
	if err != nil {
		s.logger.Warn("unparsable period window", zap.Int("period", number), zap.Error(err))
		return models.PeriodStatusUnknown, nil
	}

	count, err := s.records.CountForSlot(ctx, nil, rosterID, dayStart, dayEnd)
	if err != nil {
		return models.PeriodStatusUnknown, appErrors.Internal(err, "failed to count attendance records")
	}
	if count > 0 {
		return models.PeriodStatusCompleted, nil
	}

	now := s.now().In(s.loc)
	today, _ := s.dayRange(now)
	switch {
	case dayStart.After(today):
		return models.PeriodStatusFuture, nil
	case dayStart.Before(today), now.After(end):
		return models.PeriodStatusMissed, nil
	case now.Before(start):
		return models.PeriodStatusYetToStart, nil
	default:
		return models.PeriodStatusPending, nil
	}
}

// Submit records presence for every active student of the slot's class.
// Students absent from the map are recorded absent.
func (s *AttendanceService) Submit(ctx context.Context, req dto.SubmitAttendanceRequest, userID string) (resp *dto.SubmitAttendanceResponse, err error) {
	defer func() { s.metrics.RecordSubmission(s.policy, outcomeOf(err)) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid attendance payload")
	}

	slot, err := s.slots.FindContext(ctx, nil, req.RosterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSlotNotFound
		}
		return nil, appErrors.Internal(err, "failed to load roster slot")
	}

	students, err := s.students.ListActiveByClass(ctx, nil, slot.ClassID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load students")
	}

	now := s.now()
	dayStart, dayEnd := s.dayRange(now)
	record := &models.AttendanceRecord{
		RosterID:    slot.ID,
		ClassID:     slot.ClassID,
		SubmittedBy: userID,
		CreatedAt:   now.UTC(),
	}
	resp = &dto.SubmitAttendanceResponse{Total: len(students)}

	var opts *sql.TxOptions
	if s.policy != config.ResubmissionAppend {
		opts = serializable
	}
	err = runInTx(ctx, s.tx, opts, func(tx *sqlx.Tx) error {
		switch s.policy {
		case config.ResubmissionReject:
			count, err := s.records.CountForSlot(ctx, tx, slot.ID, dayStart, dayEnd)
			if err != nil {
				return appErrors.Internal(err, "failed to check existing attendance")
			}
			if count > 0 {
				return appErrors.ErrAttendanceSubmitted
			}
		case config.ResubmissionOverwrite:
			removed, err := s.records.DeleteForSlot(ctx, tx, slot.ID, dayStart, dayEnd)
			if err != nil {
				return appErrors.Internal(err, "failed to replace existing attendance")
			}
			if removed > 0 {
				s.logger.Info("replacing attendance", zap.String("roster_id", slot.ID), zap.Int64("records", removed))
			}
		}

		if err := s.records.CreateRecord(ctx, tx, record); err != nil {
			return appErrors.Internal(err, "failed to create attendance record")
		}

		entries := make([]models.AttendanceEntry, 0, len(students))
		for _, st := range students {
			present := req.Attendance[st.ID]
			if present {
				resp.Present++
			}
			entries = append(entries, models.AttendanceEntry{RecordID: record.ID, StudentID: st.ID, IsPresent: present})
		}
		if err := s.records.CreateEntries(ctx, tx, entries); err != nil {
			return appErrors.Internal(err, "failed to create attendance entries")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp.RecordID = record.ID
	resp.Absent = resp.Total - resp.Present
	s.logger.Info("attendance submitted",
		zap.String("record_id", record.ID),
		zap.String("roster_id", slot.ID),
		zap.String("submitted_by", userID),
		zap.Int("present", resp.Present),
		zap.Int("total", resp.Total),
	)
	return resp, nil
}

// Records lists the submissions of a slot on a date with their entries.
func (s *AttendanceService) Records(ctx context.Context, rosterID string, date time.Time) ([]models.AttendanceRecord, error) {
	if _, err := s.slots.FindContext(ctx, nil, rosterID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSlotNotFound
		}
		return nil, appErrors.Internal(err, "failed to load roster slot")
	}
	from, to := s.dayRange(date)
	records, err := s.records.ListForSlot(ctx, rosterID, from, to)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list attendance records")
	}
	return records, nil
}

// TeacherDay lists the active slots a teacher delivers on date with their status.
func (s *AttendanceService) TeacherDay(ctx context.Context, teacherID string, date time.Time) (*dto.TeacherDayResponse, error) {
	resp := &dto.TeacherDayResponse{Date: date.In(s.loc).Format(DateLayout), Slots: []dto.TeacherDaySlot{}}
	day, ok := period.DayOfWeek(date.In(s.loc))
	if !ok {
		return resp, nil
	}

	slots, err := s.teacherDay.ListTeacherDay(ctx, teacherID, day)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list teacher slots")
	}
	for _, slot := range slots {
		status, err := s.statusFor(ctx, slot.ID, slot.Period, date)
		if err != nil {
			return nil, err
		}
		p, _ := period.Lookup(slot.Period)
		resp.Slots = append(resp.Slots, dto.TeacherDaySlot{
			RosterID:   slot.ID,
			ClassID:    slot.ClassID,
			ClassName:  slot.ClassName,
			CourseID:   slot.CourseID,
			CourseName: slot.CourseName,
			DayOfWeek:  slot.DayOfWeek,
			Period:     slot.Period,
			TimeWindow: p.Window,
			Status:     status,
		})
	}
	return resp, nil
}
