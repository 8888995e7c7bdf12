// Package academicyear parses and formats "YYYY-YYYY" academic year labels.
package academicyear

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var pattern = regexp.MustCompile(`^(\d{4})-(\d{4})$`)

// Result is the outcome of validating a label. Invalid labels carry zero years.
type Result struct {
	Valid     bool   `json:"valid"`
	StartYear int    `json:"start_year,omitempty"`
	EndYear   int    `json:"end_year,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Validate checks that s is "YYYY-YYYY" with consecutive years.
func Validate(s string) Result {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return Result{Message: fmt.Sprintf("academic year %q must be formatted as YYYY-YYYY", s)}
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if end != start+1 {
		return Result{Message: fmt.Sprintf("academic year %q must span consecutive years", s)}
	}
	return Result{Valid: true, StartYear: start, EndYear: end}
}

// Generate formats the label of the year starting in start. Validate accepts the
// result only for start in [1000, 9998], the range where both years have four digits.
func Generate(start int) string {
	return fmt.Sprintf("%d-%d", start, start+1)
}

// StartYear returns the first calendar year of a valid label.
func StartYear(s string) (int, bool) {
	r := Validate(s)
	return r.StartYear, r.Valid
}

// Current returns the label in effect at now. The year rolls over on the first day
// of rollover; months before it belong to the year that started the previous calendar year.
func Current(now time.Time, rollover time.Month) string {
	if rollover < time.January || rollover > time.December {
		rollover = time.August
	}
	start := now.Year()
	if now.Month() < rollover {
		start--
	}
	return Generate(start)
}
