package service

import (
	"fmt"
	"time"
)

// parseClock converts a wall-clock string in HH:MM form into minutes since
// midnight.
func parseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", value, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// overlaps reports whether two half-open minute ranges intersect. Ranges
// that merely touch do not overlap.
func overlaps(startA, endA, startB, endB int) bool {
	return startA < endB && endA > startB
}

// clockRangesOverlap applies overlaps to HH:MM strings.
func clockRangesOverlap(startA, endA, startB, endB string) (bool, error) {
	sa, err := parseClock(startA)
	if err != nil {
		return false, err
	}
	ea, err := parseClock(endA)
	if err != nil {
		return false, err
	}
	sb, err := parseClock(startB)
	if err != nil {
		return false, err
	}
	eb, err := parseClock(endB)
	if err != nil {
		return false, err
	}
	return overlaps(sa, ea, sb, eb), nil
}

// datesForWeek returns the calendar dates of teaching week N of the given
// year, keyed by weekday 1 (Monday) through 6 (Saturday). Week 1 starts on
// the first Monday of the year, so early January days before that Monday
// belong to the last week of the previous year.
func datesForWeek(year, weekNumber int) map[int]time.Time {
	firstDay := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)

	offset := (8 - int(firstDay.Weekday())) % 7
	firstMonday := firstDay.AddDate(0, 0, offset)

	monday := firstMonday.AddDate(0, 0, (weekNumber-1)*7)

	dates := make(map[int]time.Time, 6)
	for i := 0; i < 6; i++ {
		dates[i+1] = monday.AddDate(0, 0, i)
	}
	return dates
}

// academicYear resolves which calendar year a semester's weeks are counted
// in. The autumn semester (1) runs from August into January, so when asked
// about it in spring the previous calendar year applies.
func academicYear(now time.Time, semester int) int {
	year := now.Year()
	if semester == 1 && now.Month() < time.August {
		return year - 1
	}
	return year
}

// weekdayOf maps a date onto the 1 (Monday) to 7 (Sunday) weekday numbering
// used by the schedule.
func weekdayOf(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
