package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	minutes, err := parseClock("08:00")
	require.NoError(t, err)
	assert.Equal(t, 480, minutes)

	minutes, err = parseClock("18:40")
	require.NoError(t, err)
	assert.Equal(t, 1120, minutes)

	_, err = parseClock("8am")
	assert.Error(t, err)

	_, err = parseClock("25:00")
	assert.Error(t, err)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                       string
		startA, endA, startB, endB int
		want                       bool
	}{
		{"partial overlap", 480, 560, 520, 600, true},
		{"identical ranges", 480, 560, 480, 560, true},
		{"containment", 480, 600, 500, 520, true},
		{"adjacent ranges do not overlap", 480, 560, 560, 640, false},
		{"disjoint", 480, 560, 570, 650, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, overlaps(tc.startA, tc.endA, tc.startB, tc.endB))
			// symmetry
			assert.Equal(t, tc.want, overlaps(tc.startB, tc.endB, tc.startA, tc.endA))
		})
	}
}

func TestClockRangesOverlap(t *testing.T) {
	got, err := clockRangesOverlap("08:00", "09:20", "09:00", "10:20")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = clockRangesOverlap("08:00", "09:20", "09:20", "10:40")
	require.NoError(t, err)
	assert.False(t, got)

	_, err = clockRangesOverlap("08:00", "09:20", "bad", "10:40")
	assert.Error(t, err)
}

func TestDatesForWeekYearStartingOnMonday(t *testing.T) {
	// 2024-01-01 is a Monday, so week 1 is Jan 1 through Jan 6.
	dates := datesForWeek(2024, 1)
	require.Len(t, dates, 6)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), dates[1])
	assert.Equal(t, time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC), dates[6])
}

func TestDatesForWeekSkipsDaysBeforeFirstMonday(t *testing.T) {
	// 2023-01-01 is a Sunday; week 1 starts on Monday Jan 2.
	dates := datesForWeek(2023, 1)
	assert.Equal(t, time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC), dates[1])

	dates = datesForWeek(2023, 3)
	assert.Equal(t, time.Date(2023, time.January, 16, 0, 0, 0, 0, time.UTC), dates[1])
	assert.Equal(t, time.Date(2023, time.January, 21, 0, 0, 0, 0, time.UTC), dates[6])
}

func TestDatesForWeekConsecutiveDays(t *testing.T) {
	dates := datesForWeek(2025, 10)
	for wd := 2; wd <= 6; wd++ {
		assert.Equal(t, dates[wd-1].AddDate(0, 0, 1), dates[wd])
	}
	for wd := 1; wd <= 6; wd++ {
		assert.Equal(t, wd, weekdayOf(dates[wd]))
	}
}

func TestAcademicYear(t *testing.T) {
	spring := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	autumn := time.Date(2025, time.October, 10, 0, 0, 0, 0, time.UTC)

	// Asking about the autumn semester in spring refers to the previous year.
	assert.Equal(t, 2024, academicYear(spring, 1))
	assert.Equal(t, 2025, academicYear(autumn, 1))

	// The spring semester always sits in the current calendar year.
	assert.Equal(t, 2025, academicYear(spring, 2))
	assert.Equal(t, 2025, academicYear(autumn, 2))
}

func TestWeekdayOf(t *testing.T) {
	assert.Equal(t, 1, weekdayOf(time.Date(2024, time.September, 16, 0, 0, 0, 0, time.UTC))) // Monday
	assert.Equal(t, 6, weekdayOf(time.Date(2024, time.September, 21, 0, 0, 0, 0, time.UTC))) // Saturday
	assert.Equal(t, 7, weekdayOf(time.Date(2024, time.September, 22, 0, 0, 0, 0, time.UTC))) // Sunday
}
