package models

import "time"

// Student is a learner enrolled in exactly one class.
type Student struct {
	ID                 string    `db:"id" json:"id"`
	ClassID            string    `db:"class_id" json:"class_id"`
	FullName           string    `db:"full_name" json:"full_name"`
	RegistrationNumber string    `db:"registration_number" json:"registration_number"`
	Active             bool      `db:"active" json:"active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	ClassID  string
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
