package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/pkg/academicyear"
	"github.com/noah-isme/sma-academic-api/pkg/database"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
	"github.com/noah-isme/sma-academic-api/pkg/period"
	"github.com/noah-isme/sma-academic-api/pkg/validation"
)

type timetableRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, tt *models.Timetable) error
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Timetable, error)
	ExistsForTerm(ctx context.Context, classID, academicYear string, term int) (bool, error)
	FindActiveByClass(ctx context.Context, classID string) (*models.Timetable, error)
	List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error)
	DeactivateClass(ctx context.Context, exec sqlx.ExtContext, classID, keepID string) error
	SetActive(ctx context.Context, exec sqlx.ExtContext, id string, active bool) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type rosterSlotRepository interface {
	BulkCreate(ctx context.Context, exec sqlx.ExtContext, slots []models.RosterSlot) error
	FindContext(ctx context.Context, exec sqlx.ExtContext, id string) (*models.RosterSlotContext, error)
	TeacherBookedElsewhere(ctx context.Context, exec sqlx.ExtContext, teacherID string, slot models.RosterSlotContext) (bool, error)
	TeacherConflictOnActivation(ctx context.Context, exec sqlx.ExtContext, tt models.Timetable) (bool, error)
	SetAssignment(ctx context.Context, exec sqlx.ExtContext, id string, courseID, teacherID *string) (*models.RosterSlot, error)
	ListByTimetable(ctx context.Context, timetableID string) ([]models.RosterSlotDetail, error)
	DeleteByTimetable(ctx context.Context, exec sqlx.ExtContext, timetableID string) error
}

type assignmentLookup interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ClassCourseAssignment, error)
}

type classLookup interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// TimetableServiceParams wires TimetableService dependencies.
type TimetableServiceParams struct {
	Timetables  timetableRepository
	Slots       rosterSlotRepository
	Assignments assignmentLookup
	Classes     classLookup
	Tx          txProvider
	Cache       *CacheService
	CacheTTL    time.Duration
	Metrics     *MetricsService
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// TimetableService builds weekly grids and enforces the slot assignment rules.
type TimetableService struct {
	timetables  timetableRepository
	slots       rosterSlotRepository
	assignments assignmentLookup
	classes     classLookup
	tx          txProvider
	cache       *CacheService
	cacheTTL    time.Duration
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTimetableService constructs the service.
func NewTimetableService(params TimetableServiceParams) *TimetableService {
	if params.Validator == nil {
		params.Validator = validation.Default()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &TimetableService{
		timetables:  params.Timetables,
		slots:       params.Slots,
		assignments: params.Assignments,
		classes:     params.Classes,
		tx:          params.Tx,
		cache:       params.Cache,
		cacheTTL:    params.CacheTTL,
		metrics:     params.Metrics,
		validator:   params.Validator,
		logger:      params.Logger,
	}
}

func gridCacheKey(classID string) string {
	return "timetable:grid:" + classID
}

// Create stores an inactive timetable with every school day and period as an empty slot.
func (s *TimetableService) Create(ctx context.Context, req dto.CreateTimetableRequest) (*models.Timetable, error) {
	if res := academicyear.Validate(req.AcademicYear); !res.Valid {
		return nil, appErrors.Clone(appErrors.ErrInvalidAcademicYear, res.Message)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid timetable payload")
	}

	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Internal(err, "failed to load class")
	}

	exists, err := s.timetables.ExistsForTerm(ctx, req.ClassID, req.AcademicYear, req.Term)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check existing timetable")
	}
	if exists {
		return nil, appErrors.ErrDuplicateTimetable
	}

	tt := &models.Timetable{ClassID: req.ClassID, AcademicYear: req.AcademicYear, Term: req.Term}
	err = runInTx(ctx, s.tx, nil, func(tx *sqlx.Tx) error {
		if err := s.timetables.Create(ctx, tx, tt); err != nil {
			return appErrors.Internal(err, "failed to create timetable")
		}
		if err := s.slots.BulkCreate(ctx, tx, emptySlots(tt)); err != nil {
			return appErrors.Internal(err, "failed to create roster slots")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("timetable created",
		zap.String("timetable_id", tt.ID),
		zap.String("class_id", tt.ClassID),
		zap.String("academic_year", tt.AcademicYear),
		zap.Int("term", tt.Term),
	)
	return tt, nil
}

func emptySlots(tt *models.Timetable) []models.RosterSlot {
	days := period.SchoolDays()
	slots := make([]models.RosterSlot, 0, len(days)*period.Count)
	for _, day := range days {
		for n := 1; n <= period.Count; n++ {
			slots = append(slots, models.RosterSlot{
				TimetableID: tt.ID,
				ClassID:     tt.ClassID,
				DayOfWeek:   day,
				Period:      n,
			})
		}
	}
	return slots
}

// AssignSlot places a class-course assignment on a slot. The checks and the
// write share one serializable transaction.
func (s *TimetableService) AssignSlot(ctx context.Context, req dto.AssignSlotRequest) (slot *models.RosterSlot, err error) {
	defer func() { s.metrics.RecordSlotAssignment(outcomeOf(err)) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid slot assignment payload")
	}

	err = runInTx(ctx, s.tx, serializable, func(tx *sqlx.Tx) error {
		current, err := s.editableSlot(ctx, tx, req.RosterID)
		if err != nil {
			return err
		}
		if !period.IsLessonPeriod(current.Period) {
			return appErrors.ErrInvalidPeriodType
		}

		assignment, err := s.assignments.FindByID(ctx, tx, req.AssignmentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.ErrAssignmentNotFound
			}
			return appErrors.Internal(err, "failed to load assignment")
		}
		if assignment.ClassID != current.ClassID {
			return appErrors.ErrClassMismatch
		}

		if assignment.TeacherID != nil {
			booked, err := s.slots.TeacherBookedElsewhere(ctx, tx, *assignment.TeacherID, *current)
			if err != nil {
				return appErrors.Internal(err, "failed to check teacher availability")
			}
			if booked {
				return appErrors.ErrTeacherDoubleBooked
			}
		}

		courseID := assignment.CourseID
		slot, err = s.slots.SetAssignment(ctx, tx, current.ID, &courseID, assignment.TeacherID)
		if err != nil {
			return appErrors.Internal(err, "failed to assign slot")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

// ClearSlot removes the course and teacher from a slot of an inactive timetable.
func (s *TimetableService) ClearSlot(ctx context.Context, rosterID string) (*models.RosterSlot, error) {
	var slot *models.RosterSlot
	err := runInTx(ctx, s.tx, serializable, func(tx *sqlx.Tx) error {
		current, err := s.editableSlot(ctx, tx, rosterID)
		if err != nil {
			return err
		}
		slot, err = s.slots.SetAssignment(ctx, tx, current.ID, nil, nil)
		if err != nil {
			return appErrors.Internal(err, "failed to clear slot")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *TimetableService) editableSlot(ctx context.Context, tx sqlx.ExtContext, rosterID string) (*models.RosterSlotContext, error) {
	current, err := s.slots.FindContext(ctx, tx, rosterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSlotNotFound
		}
		return nil, appErrors.Internal(err, "failed to load roster slot")
	}
	if current.TimetableActive {
		return nil, appErrors.ErrTimetableLocked
	}
	return current, nil
}

// Activate makes the timetable the only active one of its class. It fails when one
// of its teachers already holds the same day and period in an active timetable of
// another class for the same academic year and term.
func (s *TimetableService) Activate(ctx context.Context, id string) (*models.Timetable, error) {
	var tt *models.Timetable
	err := runInTx(ctx, s.tx, serializable, func(tx *sqlx.Tx) error {
		var err error
		tt, err = s.findTimetable(ctx, tx, id)
		if err != nil {
			return err
		}
		conflict, err := s.slots.TeacherConflictOnActivation(ctx, tx, *tt)
		if err != nil {
			return appErrors.Internal(err, "failed to check teacher availability")
		}
		if conflict {
			return appErrors.ErrTeacherDoubleBooked
		}
		if err := s.timetables.DeactivateClass(ctx, tx, tt.ClassID, tt.ID); err != nil {
			return appErrors.Internal(err, "failed to deactivate class timetables")
		}
		if err := s.timetables.SetActive(ctx, tx, tt.ID, true); err != nil {
			// A concurrent activation for the class already holds the active index.
			if database.IsUniqueViolation(err) {
				return concurrentUpdate(err)
			}
			return appErrors.Internal(err, "failed to activate timetable")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	tt.IsActive = true
	s.cache.Invalidate(ctx, gridCacheKey(tt.ClassID))
	s.logger.Info("timetable activated", zap.String("timetable_id", tt.ID), zap.String("class_id", tt.ClassID))
	return tt, nil
}

// Deactivate unlocks a timetable for editing.
func (s *TimetableService) Deactivate(ctx context.Context, id string) (*models.Timetable, error) {
	tt, err := s.findTimetable(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := s.timetables.SetActive(ctx, nil, tt.ID, false); err != nil {
		return nil, appErrors.Internal(err, "failed to deactivate timetable")
	}
	tt.IsActive = false
	s.cache.Invalidate(ctx, gridCacheKey(tt.ClassID))
	return tt, nil
}

// Get returns a timetable laid out as a grid.
func (s *TimetableService) Get(ctx context.Context, id string) (*dto.TimetableGrid, error) {
	tt, err := s.findTimetable(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return s.buildGrid(ctx, tt)
}

// List returns timetables with pagination metadata.
func (s *TimetableService) List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, *models.Pagination, error) {
	page, size := models.NormalisePage(query.Page, query.PageSize)
	items, total, err := s.timetables.List(ctx, models.TimetableFilter{
		ClassID:      query.ClassID,
		AcademicYear: query.AcademicYear,
		Term:         query.Term,
		Active:       query.Active,
		Page:         page,
		PageSize:     size,
	})
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list timetables")
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ActiveGrid returns the grid of the class's active timetable and whether it came from cache.
func (s *TimetableService) ActiveGrid(ctx context.Context, classID string) (*dto.TimetableGrid, bool, error) {
	key := gridCacheKey(classID)
	var cached dto.TimetableGrid
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	tt, err := s.timetables.FindActiveByClass(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.ErrNoActiveTimetable
		}
		return nil, false, appErrors.Internal(err, "failed to load active timetable")
	}
	grid, err := s.buildGrid(ctx, tt)
	if err != nil {
		return nil, false, err
	}
	s.cache.Set(ctx, key, grid, s.cacheTTL)
	return grid, false, nil
}

// Delete removes an inactive timetable and its slots.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	return runInTx(ctx, s.tx, nil, func(tx *sqlx.Tx) error {
		tt, err := s.findTimetable(ctx, tx, id)
		if err != nil {
			return err
		}
		if tt.IsActive {
			return appErrors.ErrTimetableLocked
		}
		if err := s.slots.DeleteByTimetable(ctx, tx, tt.ID); err != nil {
			return appErrors.Internal(err, "failed to delete roster slots")
		}
		if err := s.timetables.Delete(ctx, tx, tt.ID); err != nil {
			return appErrors.Internal(err, "failed to delete timetable")
		}
		return nil
	})
}

func (s *TimetableService) findTimetable(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Timetable, error) {
	tt, err := s.timetables.FindByID(ctx, exec, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrTimetableNotFound
		}
		return nil, appErrors.Internal(err, "failed to load timetable")
	}
	return tt, nil
}

func (s *TimetableService) buildGrid(ctx context.Context, tt *models.Timetable) (*dto.TimetableGrid, error) {
	slots, err := s.slots.ListByTimetable(ctx, tt.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load roster slots")
	}

	byDay := make(map[string][]dto.GridCell, len(period.SchoolDays()))
	for _, slot := range slots {
		p, _ := period.Lookup(slot.Period)
		byDay[slot.DayOfWeek] = append(byDay[slot.DayOfWeek], dto.GridCell{
			RosterID:    slot.ID,
			Period:      slot.Period,
			TimeWindow:  p.Window,
			Category:    p.Category,
			CourseID:    slot.CourseID,
			CourseName:  slot.CourseName,
			TeacherID:   slot.TeacherID,
			TeacherName: slot.TeacherName,
		})
	}

	grid := &dto.TimetableGrid{Timetable: *tt, Periods: period.All()}
	for _, day := range period.SchoolDays() {
		cells := byDay[day]
		sort.Slice(cells, func(i, j int) bool { return cells[i].Period < cells[j].Period })
		if cells == nil {
			cells = []dto.GridCell{}
		}
		grid.Days = append(grid.Days, dto.GridDay{Day: day, Cells: cells})
	}
	return grid, nil
}
