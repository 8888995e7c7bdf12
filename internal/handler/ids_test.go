package handler

const (
	classOneID     = "0b7c9a4e-1d2f-4a6b-8c3d-000000000001"
	classSevenID   = "0b7c9a4e-1d2f-4a6b-8c3d-000000000007"
	classMissingID = "0b7c9a4e-1d2f-4a6b-8c3d-000000000099"
	slotOneID      = "5e0d2c71-8a3b-4f9e-b6d4-000000000001"
	asgMissingID   = "9a1f6b3c-2e4d-4c8a-a7b5-000000000099"
	permOneID      = "c4e8d1a2-7b9f-4e3c-9d6a-000000000001"
	timetableOneID = "7f3a2b1c-9d8e-4a5b-b6c7-000000000001"
	studentOneID   = "e2d4c6b8-1a3f-4e5d-8c7b-000000000001"
	teacherTwoID   = "3c5e7a9b-2d4f-4a6c-8e1b-000000000002"
	otherTeacherID = "3c5e7a9b-2d4f-4a6c-8e1b-000000000099"
)
