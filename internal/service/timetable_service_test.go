package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
	"github.com/noah-isme/sma-academic-api/pkg/period"
)

type timetableRepoStub struct {
	items       map[string]*models.Timetable
	exists      bool
	created     *models.Timetable
	deactivated []string
	activated   map[string]bool
	activateErr error
	deleted     []string
}

func newTimetableRepoStub(items ...models.Timetable) *timetableRepoStub {
	stub := &timetableRepoStub{items: map[string]*models.Timetable{}, activated: map[string]bool{}}
	for i := range items {
		tt := items[i]
		stub.items[tt.ID] = &tt
	}
	return stub
}

func (s *timetableRepoStub) Create(_ context.Context, _ sqlx.ExtContext, tt *models.Timetable) error {
	tt.ID = "tt-new"
	tt.IsActive = false
	s.created = tt
	return nil
}

func (s *timetableRepoStub) FindByID(_ context.Context, _ sqlx.ExtContext, id string) (*models.Timetable, error) {
	tt, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *tt
	return &clone, nil
}

func (s *timetableRepoStub) ExistsForTerm(context.Context, string, string, int) (bool, error) {
	return s.exists, nil
}

func (s *timetableRepoStub) FindActiveByClass(_ context.Context, classID string) (*models.Timetable, error) {
	for _, tt := range s.items {
		if tt.ClassID == classID && tt.IsActive {
			clone := *tt
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *timetableRepoStub) List(context.Context, models.TimetableFilter) ([]models.Timetable, int, error) {
	out := make([]models.Timetable, 0, len(s.items))
	for _, tt := range s.items {
		out = append(out, *tt)
	}
	return out, len(out), nil
}

func (s *timetableRepoStub) DeactivateClass(_ context.Context, _ sqlx.ExtContext, classID, keepID string) error {
	for id, tt := range s.items {
		if tt.ClassID == classID && id != keepID {
			tt.IsActive = false
			s.deactivated = append(s.deactivated, id)
		}
	}
	return nil
}

func (s *timetableRepoStub) SetActive(_ context.Context, _ sqlx.ExtContext, id string, active bool) error {
	if active && s.activateErr != nil {
		return s.activateErr
	}
	s.activated[id] = active
	if tt, ok := s.items[id]; ok {
		tt.IsActive = active
	}
	return nil
}

func (s *timetableRepoStub) Delete(_ context.Context, _ sqlx.ExtContext, id string) error {
	s.deleted = append(s.deleted, id)
	delete(s.items, id)
	return nil
}

type rosterSlotRepoStub struct {
	slots        map[string]*models.RosterSlotContext
	created      []models.RosterSlot
	createErr    error
	bookings     map[string]bool
	setErr       error
	bookedChecks int
	conflict     bool
	details      []models.RosterSlotDetail
	deletedFor   []string
}

func bookingKey(teacherID, day string, number int) string {
	return fmt.Sprintf("%s/%s/%d", teacherID, day, number)
}

func (s *rosterSlotRepoStub) BulkCreate(_ context.Context, _ sqlx.ExtContext, slots []models.RosterSlot) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = slots
	return nil
}

func (s *rosterSlotRepoStub) FindContext(_ context.Context, _ sqlx.ExtContext, id string) (*models.RosterSlotContext, error) {
	slot, ok := s.slots[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *slot
	return &clone, nil
}

func (s *rosterSlotRepoStub) TeacherBookedElsewhere(_ context.Context, _ sqlx.ExtContext, teacherID string, slot models.RosterSlotContext) (bool, error) {
	s.bookedChecks++
	return s.bookings[bookingKey(teacherID, slot.DayOfWeek, slot.Period)], nil
}

func (s *rosterSlotRepoStub) TeacherConflictOnActivation(context.Context, sqlx.ExtContext, models.Timetable) (bool, error) {
	return s.conflict, nil
}

func (s *rosterSlotRepoStub) SetAssignment(_ context.Context, _ sqlx.ExtContext, id string, courseID, teacherID *string) (*models.RosterSlot, error) {
	if s.setErr != nil {
		return nil, s.setErr
	}
	slot := s.slots[id]
	slot.CourseID, slot.TeacherID = courseID, teacherID
	out := slot.RosterSlot
	return &out, nil
}

func (s *rosterSlotRepoStub) ListByTimetable(context.Context, string) ([]models.RosterSlotDetail, error) {
	return s.details, nil
}

func (s *rosterSlotRepoStub) ListTeacherDay(context.Context, string, string) ([]models.RosterSlotDetail, error) {
	return s.details, nil
}

func (s *rosterSlotRepoStub) DeleteByTimetable(_ context.Context, _ sqlx.ExtContext, id string) error {
	s.deletedFor = append(s.deletedFor, id)
	return nil
}

type assignmentLookupStub struct {
	items map[string]*models.ClassCourseAssignment
}

func (s *assignmentLookupStub) FindByID(_ context.Context, _ sqlx.ExtContext, id string) (*models.ClassCourseAssignment, error) {
	a, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return a, nil
}

type classLookupStub struct {
	items map[string]*models.Class
}

func (s *classLookupStub) FindByID(_ context.Context, id string) (*models.Class, error) {
	c, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

type memoryCacheRepo struct {
	data    map[string][]byte
	deleted []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{data: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memoryCacheRepo) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
		m.deleted = append(m.deleted, key)
	}
	return nil
}

func strPtr(v string) *string { return &v }

type timetableFixture struct {
	svc         *TimetableService
	timetables  *timetableRepoStub
	slots       *rosterSlotRepoStub
	assignments *assignmentLookupStub
	cache       *memoryCacheRepo
}

func newTimetableFixture(t *testing.T, provider txProvider) *timetableFixture {
	t.Helper()
	f := &timetableFixture{
		timetables: newTimetableRepoStub(
			models.Timetable{ID: "tt-a", ClassID: classOneID, AcademicYear: "2024-2025", Term: 1},
			models.Timetable{ID: "tt-b", ClassID: classOneID, AcademicYear: "2024-2025", Term: 2, IsActive: true},
			models.Timetable{ID: "tt-other", ClassID: classTwoID, AcademicYear: "2024-2025", Term: 1, IsActive: true},
		),
		slots: &rosterSlotRepoStub{slots: map[string]*models.RosterSlotContext{
			slotLessonID:  {RosterSlot: models.RosterSlot{ID: slotLessonID, TimetableID: "tt-a", ClassID: classOneID, DayOfWeek: period.Monday, Period: 1}, AcademicYear: "2024-2025", Term: 1},
			slotBreakID:   {RosterSlot: models.RosterSlot{ID: slotBreakID, TimetableID: "tt-a", ClassID: classOneID, DayOfWeek: period.Monday, Period: 3}, AcademicYear: "2024-2025", Term: 1},
			slotTuesdayID: {RosterSlot: models.RosterSlot{ID: slotTuesdayID, TimetableID: "tt-a", ClassID: classOneID, DayOfWeek: period.Tuesday, Period: 4}, AcademicYear: "2024-2025", Term: 1},
			slotLockedID:  {RosterSlot: models.RosterSlot{ID: slotLockedID, TimetableID: "tt-b", ClassID: classOneID, DayOfWeek: period.Monday, Period: 1}, TimetableActive: true, AcademicYear: "2024-2025", Term: 2},
		}},
		assignments: &assignmentLookupStub{items: map[string]*models.ClassCourseAssignment{
			asgOneID:        {ID: asgOneID, ClassID: classOneID, CourseID: courseMathID, TeacherID: strPtr(teacherOneID)},
			asgNoTeacherID:  {ID: asgNoTeacherID, ClassID: classOneID, CourseID: courseArtID},
			asgOtherClassID: {ID: asgOtherClassID, ClassID: classTwoID, CourseID: courseMathID, TeacherID: strPtr(teacherOneID)},
		}},
		cache: newMemoryCacheRepo(),
	}
	f.svc = NewTimetableService(TimetableServiceParams{
		Timetables:  f.timetables,
		Slots:       f.slots,
		Assignments: f.assignments,
		Classes:     &classLookupStub{items: map[string]*models.Class{classOneID: {ID: classOneID, Name: "X-A"}}},
		Tx:          provider,
		Cache:       NewCacheService(f.cache, nil, time.Minute, nil, true),
	})
	return f
}

func TestTimetableServiceCreateBuildsEmptyGrid(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	f := newTimetableFixture(t, provider)

	tt, err := f.svc.Create(context.Background(), dto.CreateTimetableRequest{ClassID: classOneID, AcademicYear: "2025-2026", Term: 1})
	require.NoError(t, err)
	assert.False(t, tt.IsActive)
	require.Len(t, f.slots.created, 55)

	first, last := f.slots.created[0], f.slots.created[54]
	assert.Equal(t, period.Monday, first.DayOfWeek)
	assert.Equal(t, 1, first.Period)
	assert.Equal(t, period.Friday, last.DayOfWeek)
	assert.Equal(t, 11, last.Period)
	for _, slot := range f.slots.created {
		assert.Equal(t, "tt-new", slot.TimetableID)
		assert.Equal(t, classOneID, slot.ClassID)
		assert.False(t, slot.Assigned())
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServiceCreateValidation(t *testing.T) {
	cases := []struct {
		name string
		req  dto.CreateTimetableRequest
		want *appErrors.Error
	}{
		{"bad year format", dto.CreateTimetableRequest{ClassID: classOneID, AcademicYear: "2025/2026", Term: 1}, appErrors.ErrInvalidAcademicYear},
		{"non consecutive year", dto.CreateTimetableRequest{ClassID: classOneID, AcademicYear: "2025-2027", Term: 1}, appErrors.ErrInvalidAcademicYear},
		{"term out of range", dto.CreateTimetableRequest{ClassID: classOneID, AcademicYear: "2025-2026", Term: 4}, appErrors.ErrValidation},
		{"malformed class id", dto.CreateTimetableRequest{ClassID: "class-1", AcademicYear: "2025-2026", Term: 1}, appErrors.ErrValidation},
		{"unknown class", dto.CreateTimetableRequest{ClassID: classMissingID, AcademicYear: "2025-2026", Term: 1}, appErrors.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newTimetableFixture(t, nil)
			_, err := f.svc.Create(context.Background(), tc.req)
			assertCode(t, err, tc.want)
			assert.Nil(t, f.timetables.created)
		})
	}
}

func TestTimetableServiceCreateDuplicate(t *testing.T) {
	f := newTimetableFixture(t, nil)
	f.timetables.exists = true

	_, err := f.svc.Create(context.Background(), dto.CreateTimetableRequest{ClassID: classOneID, AcademicYear: "2024-2025", Term: 1})
	assertCode(t, err, appErrors.ErrDuplicateTimetable)
}

func TestTimetableServiceCreateRollsBackWhenSlotsFail(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	f := newTimetableFixture(t, provider)
	f.slots.createErr = errors.New("insert failed")

	_, err := f.svc.Create(context.Background(), dto.CreateTimetableRequest{ClassID: classOneID, AcademicYear: "2025-2026", Term: 1})
	assertCode(t, err, appErrors.ErrInternal)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServiceAssignSlotRules(t *testing.T) {
	cases := []struct {
		name       string
		req        dto.AssignSlotRequest
		booked     bool
		want       *appErrors.Error
		wantChecks int
	}{
		{"slot missing", dto.AssignSlotRequest{RosterID: slotMissingID, AssignmentID: asgOneID}, false, appErrors.ErrSlotNotFound, 0},
		{"timetable active", dto.AssignSlotRequest{RosterID: slotLockedID, AssignmentID: asgOneID}, false, appErrors.ErrTimetableLocked, 0},
		{"break period", dto.AssignSlotRequest{RosterID: slotBreakID, AssignmentID: asgOneID}, false, appErrors.ErrInvalidPeriodType, 0},
		{"assignment missing", dto.AssignSlotRequest{RosterID: slotLessonID, AssignmentID: asgMissingID}, false, appErrors.ErrAssignmentNotFound, 0},
		{"class mismatch", dto.AssignSlotRequest{RosterID: slotLessonID, AssignmentID: asgOtherClassID}, false, appErrors.ErrClassMismatch, 0},
		{"teacher double booked", dto.AssignSlotRequest{RosterID: slotLessonID, AssignmentID: asgOneID}, true, appErrors.ErrTeacherDoubleBooked, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider, mock := newTxProviderMock(t)
			mock.ExpectBegin()
			mock.ExpectRollback()
			f := newTimetableFixture(t, provider)
			if tc.booked {
				f.slots.bookings = map[string]bool{bookingKey(teacherOneID, period.Monday, 1): true}
			}

			_, err := f.svc.AssignSlot(context.Background(), tc.req)
			assertCode(t, err, tc.want)
			assert.Equal(t, tc.wantChecks, f.slots.bookedChecks)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTimetableServiceAssignSlotRejectsMalformedIDs(t *testing.T) {
	cases := map[string]dto.AssignSlotRequest{
		"roster id":     {RosterID: "not-a-uuid", AssignmentID: asgOneID},
		"assignment id": {RosterID: slotLessonID, AssignmentID: "abc"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			f := newTimetableFixture(t, nil)
			_, err := f.svc.AssignSlot(context.Background(), req)
			assertCode(t, err, appErrors.ErrValidation)
			assert.Zero(t, f.slots.bookedChecks)
		})
	}
}

func TestTimetableServiceAssignSlotBookingIsPerDayAndPeriod(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()
	f := newTimetableFixture(t, provider)
	f.slots.bookings = map[string]bool{bookingKey(teacherOneID, period.Monday, 1): true}

	slot, err := f.svc.AssignSlot(context.Background(), dto.AssignSlotRequest{RosterID: slotTuesdayID, AssignmentID: asgOneID})
	require.NoError(t, err)
	require.NotNil(t, slot.TeacherID)
	assert.Equal(t, teacherOneID, *slot.TeacherID)

	_, err = f.svc.AssignSlot(context.Background(), dto.AssignSlotRequest{RosterID: slotLessonID, AssignmentID: asgOneID})
	assertCode(t, err, appErrors.ErrTeacherDoubleBooked)
	assert.Equal(t, 2, f.slots.bookedChecks)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServiceAssignSlotWritesCourseAndTeacher(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	f := newTimetableFixture(t, provider)

	slot, err := f.svc.AssignSlot(context.Background(), dto.AssignSlotRequest{RosterID: slotLessonID, AssignmentID: asgOneID})
	require.NoError(t, err)
	require.NotNil(t, slot.CourseID)
	assert.Equal(t, courseMathID, *slot.CourseID)
	require.NotNil(t, slot.TeacherID)
	assert.Equal(t, teacherOneID, *slot.TeacherID)
	assert.Equal(t, 1, f.slots.bookedChecks)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServiceAssignSlotWithoutTeacherSkipsBookingCheck(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	f := newTimetableFixture(t, provider)
	f.slots.bookings = map[string]bool{bookingKey(teacherOneID, period.Monday, 1): true}

	slot, err := f.svc.AssignSlot(context.Background(), dto.AssignSlotRequest{RosterID: slotLessonID, AssignmentID: asgNoTeacherID})
	require.NoError(t, err)
	assert.Nil(t, slot.TeacherID)
	assert.Zero(t, f.slots.bookedChecks)
}

func TestTimetableServiceAssignSlotSerializationConflict(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	f := newTimetableFixture(t, provider)
	f.slots.setErr = &pq.Error{Code: "40001", Message: "could not serialize access"}

	_, err := f.svc.AssignSlot(context.Background(), dto.AssignSlotRequest{RosterID: slotLessonID, AssignmentID: asgOneID})
	assertCode(t, err, appErrors.ErrConcurrentUpdate)
}

func TestTimetableServiceClearSlot(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()
	f := newTimetableFixture(t, provider)
	f.slots.slots[slotLessonID].CourseID = strPtr(courseMathID)

	slot, err := f.svc.ClearSlot(context.Background(), slotLessonID)
	require.NoError(t, err)
	assert.False(t, slot.Assigned())

	_, err = f.svc.ClearSlot(context.Background(), slotLockedID)
	assertCode(t, err, appErrors.ErrTimetableLocked)
}

func TestTimetableServiceActivateKeepsOneActivePerClass(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	f := newTimetableFixture(t, provider)
	f.cache.data[gridCacheKey(classOneID)] = []byte(`{}`)

	tt, err := f.svc.Activate(context.Background(), "tt-a")
	require.NoError(t, err)
	assert.True(t, tt.IsActive)

	assert.True(t, f.timetables.items["tt-a"].IsActive)
	assert.False(t, f.timetables.items["tt-b"].IsActive)
	assert.True(t, f.timetables.items["tt-other"].IsActive)
	assert.Contains(t, f.cache.deleted, gridCacheKey(classOneID))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServiceActivateRejectsTeacherConflict(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	f := newTimetableFixture(t, provider)
	f.slots.conflict = true

	_, err := f.svc.Activate(context.Background(), "tt-a")
	assertCode(t, err, appErrors.ErrTeacherDoubleBooked)
	assert.False(t, f.timetables.items["tt-a"].IsActive)
	assert.True(t, f.timetables.items["tt-b"].IsActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServiceActivateRaceIsConcurrentUpdate(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	f := newTimetableFixture(t, provider)
	f.timetables.activateErr = &pq.Error{Code: "23505", Constraint: "uq_timetables_active_class"}

	_, err := f.svc.Activate(context.Background(), "tt-a")
	assertCode(t, err, appErrors.ErrConcurrentUpdate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServiceActivateMissing(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	f := newTimetableFixture(t, provider)

	_, err := f.svc.Activate(context.Background(), "tt-x")
	assertCode(t, err, appErrors.ErrTimetableNotFound)
}

func TestTimetableServiceDeleteRejectsActive(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()
	f := newTimetableFixture(t, provider)

	err := f.svc.Delete(context.Background(), "tt-b")
	assertCode(t, err, appErrors.ErrTimetableLocked)

	require.NoError(t, f.svc.Delete(context.Background(), "tt-a"))
	assert.Equal(t, []string{"tt-a"}, f.slots.deletedFor)
	assert.Equal(t, []string{"tt-a"}, f.timetables.deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServiceActiveGridUsesCache(t *testing.T) {
	f := newTimetableFixture(t, nil)
	f.slots.details = []models.RosterSlotDetail{
		{RosterSlot: models.RosterSlot{ID: "s2", DayOfWeek: period.Monday, Period: 2}},
		{RosterSlot: models.RosterSlot{ID: "s1", DayOfWeek: period.Monday, Period: 1, CourseID: strPtr(courseMathID)}, CourseName: strPtr("Mathematics")},
	}

	grid, hit, err := f.svc.ActiveGrid(context.Background(), classOneID)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "tt-b", grid.Timetable.ID)
	require.Len(t, grid.Days, 5)
	monday := grid.Days[0]
	assert.Equal(t, period.Monday, monday.Day)
	require.Len(t, monday.Cells, 2)
	assert.Equal(t, 1, monday.Cells[0].Period)
	assert.Equal(t, period.Window("07:40-08:30"), monday.Cells[0].TimeWindow)
	assert.Equal(t, "Mathematics", *monday.Cells[0].CourseName)
	assert.Empty(t, grid.Days[4].Cells)
	assert.Len(t, grid.Periods, period.Count)

	cached, hit, err := f.svc.ActiveGrid(context.Background(), classOneID)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, grid.Timetable.ID, cached.Timetable.ID)
}

func TestTimetableServiceActiveGridWithoutActiveTimetable(t *testing.T) {
	f := newTimetableFixture(t, nil)

	_, _, err := f.svc.ActiveGrid(context.Background(), classMissingID)
	assertCode(t, err, appErrors.ErrNoActiveTimetable)
}
