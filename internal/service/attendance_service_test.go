package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/pkg/config"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
	"github.com/noah-isme/sma-academic-api/pkg/period"
)

var schoolZone = time.FixedZone("WIB", 7*3600)

type studentListerStub struct {
	byClass map[string][]models.Student
}

func (s *studentListerStub) ListActiveByClass(_ context.Context, _ sqlx.ExtContext, classID string) ([]models.Student, error) {
	return s.byClass[classID], nil
}

type attendanceRepoStub struct {
	counts   map[string]int
	calls    []string
	from, to time.Time
	record   *models.AttendanceRecord
	entries  []models.AttendanceEntry
	listed   []models.AttendanceRecord
}

func (s *attendanceRepoStub) CountForSlot(_ context.Context, _ sqlx.ExtContext, rosterID string, from, to time.Time) (int, error) {
	s.calls = append(s.calls, "count")
	s.from, s.to = from, to
	return s.counts[rosterID], nil
}

func (s *attendanceRepoStub) DeleteForSlot(_ context.Context, _ sqlx.ExtContext, rosterID string, from, to time.Time) (int64, error) {
	s.calls = append(s.calls, "delete")
	removed := int64(s.counts[rosterID])
	s.counts[rosterID] = 0
	return removed, nil
}

func (s *attendanceRepoStub) CreateRecord(_ context.Context, _ sqlx.ExtContext, record *models.AttendanceRecord) error {
	s.calls = append(s.calls, "record")
	record.ID = "rec-1"
	s.record = record
	return nil
}

func (s *attendanceRepoStub) CreateEntries(_ context.Context, _ sqlx.ExtContext, entries []models.AttendanceEntry) error {
	s.calls = append(s.calls, "entries")
	s.entries = entries
	return nil
}

func (s *attendanceRepoStub) ListForSlot(_ context.Context, _ string, from, to time.Time) ([]models.AttendanceRecord, error) {
	s.from, s.to = from, to
	return s.listed, nil
}

type attendanceFixture struct {
	svc     *AttendanceService
	slots   *rosterSlotRepoStub
	records *attendanceRepoStub
}

func newAttendanceFixture(t *testing.T, provider txProvider, policy string, now time.Time) *attendanceFixture {
	t.Helper()
	f := &attendanceFixture{
		slots: &rosterSlotRepoStub{slots: map[string]*models.RosterSlotContext{
			slotFirstPeriodID:  {RosterSlot: models.RosterSlot{ID: slotFirstPeriodID, ClassID: classOneID, DayOfWeek: period.Monday, Period: 1}},
			slotFourthPeriodID: {RosterSlot: models.RosterSlot{ID: slotFourthPeriodID, ClassID: classOneID, DayOfWeek: period.Monday, Period: 4}},
			slotBadPeriodID:    {RosterSlot: models.RosterSlot{ID: slotBadPeriodID, ClassID: classOneID, DayOfWeek: period.Monday, Period: 12}},
		}},
		records: &attendanceRepoStub{counts: map[string]int{}},
	}
	students := &studentListerStub{byClass: map[string][]models.Student{
		classOneID: {{ID: studentOneID}, {ID: studentTwoID}, {ID: studentThreeID}},
	}}
	f.svc = NewAttendanceService(AttendanceServiceParams{
		Slots:      f.slots,
		TeacherDay: f.slots,
		Students:   students,
		Records:    f.records,
		Tx:         provider,
		Location:   schoolZone,
		Policy:     policy,
	})
	f.svc.now = func() time.Time { return now }
	return f
}

// Monday 10 March 2025, 08:00 school time.
var mondayMorning = time.Date(2025, time.March, 10, 8, 0, 0, 0, schoolZone)

func TestAttendanceServicePeriodStatusLadder(t *testing.T) {
	today := time.Date(2025, time.March, 10, 0, 0, 0, 0, schoolZone)
	cases := []struct {
		name      string
		rosterID  string
		date      time.Time
		now       time.Time
		completed bool
		want      models.PeriodStatus
	}{
		{"missing slot", slotMissingID, today, mondayMorning, false, models.PeriodStatusUnknown},
		{"malformed id", "not-a-uuid", today, mondayMorning, false, models.PeriodStatusUnknown},
		{"unknown period", slotBadPeriodID, today, mondayMorning, false, models.PeriodStatusUnknown},
		{"record exists", slotFirstPeriodID, today.AddDate(0, 0, -3), mondayMorning, true, models.PeriodStatusCompleted},
		{"future date", slotFirstPeriodID, today.AddDate(0, 0, 1), mondayMorning, false, models.PeriodStatusFuture},
		{"past date", slotFirstPeriodID, today.AddDate(0, 0, -1), mondayMorning, false, models.PeriodStatusMissed},
		{"in progress", slotFirstPeriodID, today, mondayMorning, false, models.PeriodStatusPending},
		{"not started", slotFourthPeriodID, today, mondayMorning, false, models.PeriodStatusYetToStart},
		{"ended", slotFirstPeriodID, today, time.Date(2025, time.March, 10, 8, 31, 0, 0, schoolZone), false, models.PeriodStatusMissed},
		{"exactly at end", slotFirstPeriodID, today, time.Date(2025, time.March, 10, 8, 30, 0, 0, schoolZone), false, models.PeriodStatusPending},
		{"exactly at start", slotFirstPeriodID, today, time.Date(2025, time.March, 10, 7, 40, 0, 0, schoolZone), false, models.PeriodStatusPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAttendanceFixture(t, nil, config.ResubmissionAppend, tc.now)
			if tc.completed {
				f.records.counts[tc.rosterID] = 1
			}
			status, err := f.svc.PeriodStatus(context.Background(), tc.rosterID, tc.date)
			require.NoError(t, err)
			assert.Equal(t, tc.want, status)
		})
	}
}

func TestAttendanceServicePeriodStatusCountsWholeSchoolDay(t *testing.T) {
	f := newAttendanceFixture(t, nil, config.ResubmissionAppend, mondayMorning)

	// 20:00 UTC on the 9th is already the 10th in school time.
	_, err := f.svc.PeriodStatus(context.Background(), slotFirstPeriodID, time.Date(2025, time.March, 9, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, schoolZone), f.records.from)
	assert.Equal(t, time.Date(2025, time.March, 10, 23, 59, 59, int(999*time.Millisecond), schoolZone), f.records.to)
}

func TestAttendanceServiceSubmitAppend(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	f := newAttendanceFixture(t, provider, config.ResubmissionAppend, mondayMorning)
	f.records.counts[slotFirstPeriodID] = 2

	resp, err := f.svc.Submit(context.Background(), dto.SubmitAttendanceRequest{
		RosterID:   slotFirstPeriodID,
		Attendance: map[string]bool{studentOneID: true, studentThreeID: false, studentUnknownID: true},
	}, teacherOneID)
	require.NoError(t, err)

	assert.Equal(t, &dto.SubmitAttendanceResponse{RecordID: "rec-1", Present: 1, Absent: 2, Total: 3}, resp)
	assert.Equal(t, []string{"record", "entries"}, f.records.calls)
	assert.Equal(t, classOneID, f.records.record.ClassID)
	assert.Equal(t, teacherOneID, f.records.record.SubmittedBy)
	require.Len(t, f.records.entries, 3)
	for _, entry := range f.records.entries {
		assert.Equal(t, "rec-1", entry.RecordID)
		assert.Equal(t, entry.StudentID == studentOneID, entry.IsPresent)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceServiceSubmitRejectPolicy(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()
	f := newAttendanceFixture(t, provider, config.ResubmissionReject, mondayMorning)
	req := dto.SubmitAttendanceRequest{RosterID: slotFirstPeriodID, Attendance: map[string]bool{studentOneID: true}}

	_, err := f.svc.Submit(context.Background(), req, teacherOneID)
	require.NoError(t, err)

	f.records.counts[slotFirstPeriodID] = 1
	_, err = f.svc.Submit(context.Background(), req, teacherOneID)
	assertCode(t, err, appErrors.ErrAttendanceSubmitted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceServiceSubmitOverwritePolicy(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	f := newAttendanceFixture(t, provider, config.ResubmissionOverwrite, mondayMorning)
	f.records.counts[slotFirstPeriodID] = 1

	resp, err := f.svc.Submit(context.Background(), dto.SubmitAttendanceRequest{RosterID: slotFirstPeriodID}, teacherOneID)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Present)
	assert.Equal(t, 3, resp.Absent)
	assert.Equal(t, []string{"delete", "record", "entries"}, f.records.calls)
}

func TestAttendanceServiceSubmitAfterPeriodEndedNeedsNoPermission(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	evening := time.Date(2025, time.March, 10, 19, 0, 0, 0, schoolZone)
	f := newAttendanceFixture(t, provider, config.ResubmissionReject, evening)

	status, err := f.svc.PeriodStatus(context.Background(), slotFirstPeriodID, evening)
	require.NoError(t, err)
	require.Equal(t, models.PeriodStatusMissed, status)

	resp, err := f.svc.Submit(context.Background(), dto.SubmitAttendanceRequest{
		RosterID:   slotFirstPeriodID,
		Attendance: map[string]bool{studentTwoID: true},
	}, teacherOneID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Present)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceServiceSubmitMissingSlot(t *testing.T) {
	f := newAttendanceFixture(t, nil, config.ResubmissionAppend, mondayMorning)

	_, err := f.svc.Submit(context.Background(), dto.SubmitAttendanceRequest{RosterID: slotMissingID}, teacherOneID)
	assertCode(t, err, appErrors.ErrSlotNotFound)

	_, err = f.svc.Submit(context.Background(), dto.SubmitAttendanceRequest{}, teacherOneID)
	assertCode(t, err, appErrors.ErrValidation)

	_, err = f.svc.Submit(context.Background(), dto.SubmitAttendanceRequest{RosterID: "not-a-uuid"}, teacherOneID)
	assertCode(t, err, appErrors.ErrValidation)
}

func TestAttendanceServiceRecords(t *testing.T) {
	f := newAttendanceFixture(t, nil, config.ResubmissionAppend, mondayMorning)
	f.records.listed = []models.AttendanceRecord{{ID: "rec-1", RosterID: slotFirstPeriodID}}

	records, err := f.svc.Records(context.Background(), slotFirstPeriodID, mondayMorning)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 0, f.records.from.Hour())

	_, err = f.svc.Records(context.Background(), slotMissingID, mondayMorning)
	assertCode(t, err, appErrors.ErrSlotNotFound)
}

func TestAttendanceServiceTeacherDay(t *testing.T) {
	f := newAttendanceFixture(t, nil, config.ResubmissionAppend, mondayMorning)
	f.slots.details = []models.RosterSlotDetail{
		{RosterSlot: models.RosterSlot{ID: slotFirstPeriodID, ClassID: classOneID, DayOfWeek: period.Monday, Period: 1}, ClassName: "X-A"},
		{RosterSlot: models.RosterSlot{ID: slotFourthPeriodID, ClassID: classOneID, DayOfWeek: period.Monday, Period: 4}, ClassName: "X-A"},
	}

	resp, err := f.svc.TeacherDay(context.Background(), teacherOneID, mondayMorning)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", resp.Date)
	require.Len(t, resp.Slots, 2)
	assert.Equal(t, models.PeriodStatusPending, resp.Slots[0].Status)
	assert.Equal(t, period.Window("07:40-08:30"), resp.Slots[0].TimeWindow)
	assert.Equal(t, models.PeriodStatusYetToStart, resp.Slots[1].Status)

	saturday := time.Date(2025, time.March, 15, 9, 0, 0, 0, schoolZone)
	resp, err = f.svc.TeacherDay(context.Background(), teacherOneID, saturday)
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}
