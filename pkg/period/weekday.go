package period

import "time"

// Day names as stored on roster slots.
const (
	Monday    = "MONDAY"
	Tuesday   = "TUESDAY"
	Wednesday = "WEDNESDAY"
	Thursday  = "THURSDAY"
	Friday    = "FRIDAY"
)

var schoolDays = [...]string{Monday, Tuesday, Wednesday, Thursday, Friday}

// SchoolDays returns the teaching days in week order.
func SchoolDays() []string {
	out := make([]string, len(schoolDays))
	copy(out, schoolDays[:])
	return out
}

// DayOfWeek maps t to its school day name. Weekends report false.
func DayOfWeek(t time.Time) (string, bool) {
	wd := t.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return "", false
	}
	return schoolDays[wd-time.Monday], true
}

// IsSchoolDay reports whether name is one of the stored day names.
func IsSchoolDay(name string) bool {
	for _, d := range schoolDays {
		if d == name {
			return true
		}
	}
	return false
}
