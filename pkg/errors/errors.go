package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so errors.Is works against
// the predefined values even after Clone or Wrap.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Internal wraps an infrastructure failure as a 500 with the given message.
func Internal(err error, message string) *Error {
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, message)
}

// Generic errors.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Timetable and attendance rule violations.
var (
	ErrInvalidAcademicYear = New("INVALID_ACADEMIC_YEAR", http.StatusBadRequest, "invalid academic year")
	ErrDuplicateTimetable  = New("DUPLICATE_TIMETABLE", http.StatusBadRequest, "timetable already exists for this class, academic year and term")
	ErrSlotNotFound        = New("SLOT_NOT_FOUND", http.StatusNotFound, "roster slot not found")
	ErrTimetableLocked     = New("TIMETABLE_LOCKED", http.StatusBadRequest, "timetable is active; deactivate it before editing")
	ErrInvalidPeriodType   = New("INVALID_PERIOD_TYPE", http.StatusBadRequest, "courses can only be assigned to lesson periods")
	ErrAssignmentNotFound  = New("ASSIGNMENT_NOT_FOUND", http.StatusNotFound, "class course assignment not found")
	ErrClassMismatch       = New("CLASS_MISMATCH", http.StatusBadRequest, "assignment belongs to a different class")
	ErrTeacherDoubleBooked = New("TEACHER_DOUBLE_BOOKED", http.StatusBadRequest, "teacher is already scheduled in another active timetable at this time")
	ErrConcurrentUpdate    = New("CONCURRENT_UPDATE", http.StatusConflict, "concurrent update detected, retry the request")
	ErrAttendanceSubmitted = New("ATTENDANCE_ALREADY_SUBMITTED", http.StatusBadRequest, "attendance already submitted for this period today")
	ErrTimetableNotFound   = New("TIMETABLE_NOT_FOUND", http.StatusNotFound, "timetable not found")
	ErrNoActiveTimetable   = New("NO_ACTIVE_TIMETABLE", http.StatusNotFound, "class has no active timetable")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
