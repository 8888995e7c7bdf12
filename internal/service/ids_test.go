package service

// Fixture identifiers. Request payloads validate ids as UUIDs.
const (
	classOneID     = "11111111-0000-4000-8000-000000000001"
	classTwoID     = "11111111-0000-4000-8000-000000000002"
	classMissingID = "11111111-0000-4000-8000-000000000009"

	slotLessonID       = "22222222-0000-4000-8000-000000000001"
	slotBreakID        = "22222222-0000-4000-8000-000000000003"
	slotLockedID       = "22222222-0000-4000-8000-00000000000b"
	slotMissingID      = "22222222-0000-4000-8000-000000000099"
	slotFirstPeriodID  = "22222222-0000-4000-8000-000000000101"
	slotFourthPeriodID = "22222222-0000-4000-8000-000000000104"
	slotBadPeriodID    = "22222222-0000-4000-8000-000000000112"
	slotOneID          = "22222222-0000-4000-8000-000000000201"
	slotLunchID        = "22222222-0000-4000-8000-000000000206"
	slotTuesdayID      = "22222222-0000-4000-8000-000000000304"

	asgOneID        = "33333333-0000-4000-8000-000000000001"
	asgNoTeacherID  = "33333333-0000-4000-8000-000000000002"
	asgOtherClassID = "33333333-0000-4000-8000-000000000003"
	asgMissingID    = "33333333-0000-4000-8000-000000000009"
	asgNewID        = "33333333-0000-4000-8000-00000000000a"

	courseMathID    = "44444444-0000-4000-8000-000000000001"
	courseArtID     = "44444444-0000-4000-8000-000000000002"
	courseMissingID = "44444444-0000-4000-8000-000000000009"

	teacherOneID = "55555555-0000-4000-8000-000000000001"
	teacherTwoID = "55555555-0000-4000-8000-000000000002"
	adminOneID   = "55555555-0000-4000-8000-00000000000a"
	ghostUserID  = "55555555-0000-4000-8000-000000000099"

	studentOneID     = "66666666-0000-4000-8000-000000000001"
	studentTwoID     = "66666666-0000-4000-8000-000000000002"
	studentThreeID   = "66666666-0000-4000-8000-000000000003"
	studentFourID    = "66666666-0000-4000-8000-000000000004"
	studentFiveID    = "66666666-0000-4000-8000-000000000005"
	studentMissingID = "66666666-0000-4000-8000-000000000009"
	studentUnknownID = "66666666-0000-4000-8000-000000000098"
	studentNewID     = "66666666-0000-4000-8000-00000000000a"
)
