// Package period describes the fixed daily bell schedule and school week.
package period

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies a period.
type Category string

const (
	CategoryLesson Category = "lesson"
	CategoryBreak  Category = "break"
	CategoryLunch  Category = "lunch"
)

// Window is a local time-of-day range formatted as "HH:MM-HH:MM".
type Window string

// Period is one entry of the bell schedule.
type Period struct {
	Number   int      `json:"number"`
	Window   Window   `json:"time_window"`
	Category Category `json:"category"`
}

// Count is the number of periods in a school day.
const Count = 11

var table = [Count]Period{
	{Number: 1, Window: "07:40-08:30", Category: CategoryLesson},
	{Number: 2, Window: "08:30-09:20", Category: CategoryLesson},
	{Number: 3, Window: "09:20-09:40", Category: CategoryBreak},
	{Number: 4, Window: "09:40-10:30", Category: CategoryLesson},
	{Number: 5, Window: "10:30-11:20", Category: CategoryLesson},
	{Number: 6, Window: "11:20-12:20", Category: CategoryLunch},
	{Number: 7, Window: "12:20-13:10", Category: CategoryLesson},
	{Number: 8, Window: "13:10-14:00", Category: CategoryLesson},
	{Number: 9, Window: "14:00-14:20", Category: CategoryBreak},
	{Number: 10, Window: "14:20-15:10", Category: CategoryLesson},
	{Number: 11, Window: "15:10-16:00", Category: CategoryLesson},
}

// Lookup returns the period with the given number. Unknown numbers report false.
func Lookup(number int) (Period, bool) {
	if number < 1 || number > Count {
		return Period{}, false
	}
	return table[number-1], true
}

// IsLessonPeriod reports whether number is a period that can hold a course.
func IsLessonPeriod(number int) bool {
	p, ok := Lookup(number)
	return ok && p.Category == CategoryLesson
}

// All returns the bell schedule in period order.
func All() []Period {
	out := make([]Period, Count)
	copy(out, table[:])
	return out
}

// Bounds resolves the window to absolute instants on the calendar day of day in loc.
func (w Window) Bounds(day time.Time, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	startRaw, endRaw, ok := strings.Cut(string(w), "-")
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("malformed period window %q", w)
	}
	start, err := clockOn(day.In(loc), strings.TrimSpace(startRaw), loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("malformed period window %q: %w", w, err)
	}
	end, err := clockOn(day.In(loc), strings.TrimSpace(endRaw), loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("malformed period window %q: %w", w, err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("period window %q ends before it starts", w)
	}
	return start, end, nil
}

func clockOn(day time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc), nil
}
