package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akazantsev/timetable-api/internal/models"
)

// fakeLessonStore filters an in-memory lesson list the way the SQL layer
// would.
type fakeLessonStore struct {
	lessons []models.Lesson
	err     error
}

func (f *fakeLessonStore) ListByResource(_ context.Context, q models.ResourceQuery) ([]models.Lesson, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Lesson
	for _, lesson := range f.lessons {
		if excluded(q.ExcludeIDs, lesson.ID) {
			continue
		}
		if q.Date != nil {
			if !lesson.Date.Equal(*q.Date) {
				continue
			}
		} else {
			if lesson.Semester != q.Semester || lesson.WeekNumber != q.WeekNumber {
				continue
			}
			if q.Weekday > 0 && lesson.Weekday != q.Weekday {
				continue
			}
		}
		switch q.Dimension {
		case models.DimensionTeacher:
			if lesson.TeacherName != q.Value {
				continue
			}
		case models.DimensionGroup:
			if lesson.GroupName != q.Value {
				continue
			}
		case models.DimensionAuditory:
			if lesson.Auditory != q.Value {
				continue
			}
		}
		out = append(out, lesson)
	}
	return out, nil
}

func (f *fakeLessonStore) ListByScope(_ context.Context, semester, weekNumber int) ([]models.Lesson, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Lesson
	for _, lesson := range f.lessons {
		if lesson.Semester == semester && lesson.WeekNumber == weekNumber {
			out = append(out, lesson)
		}
	}
	return out, nil
}

func excluded(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func storedLesson(id string, weekday int, timeStart, timeEnd, group, teacher, auditory string) models.Lesson {
	return models.Lesson{
		ID:          id,
		Semester:    1,
		WeekNumber:  3,
		GroupName:   group,
		Subject:     "Databases",
		Date:        time.Date(2024, time.September, 15+weekday, 0, 0, 0, 0, time.UTC),
		Weekday:     weekday,
		TimeStart:   timeStart,
		TimeEnd:     timeEnd,
		TeacherName: teacher,
		Auditory:    auditory,
	}
}

func TestFindConflictsMergesTagsForOneLesson(t *testing.T) {
	store := &fakeLessonStore{lessons: []models.Lesson{
		storedLesson("lesson-1", 2, "08:00", "09:20", "IS-21", "Ivanov I.I.", "305"),
	}}
	svc := NewConflictService(store, nil, false)

	conflicts, err := svc.FindConflicts(context.Background(), PlacementProbe{
		Semester:    1,
		WeekNumber:  3,
		Weekday:     2,
		TimeStart:   "08:40",
		TimeEnd:     "10:00",
		TeacherName: "Ivanov I.I.",
		GroupName:   "IS-21",
		Auditory:    "305",
	})
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "lesson-1", conflicts[0].LessonID)
	assert.Len(t, conflicts[0].Tags, 3)
	assert.True(t, conflicts[0].HasDimension(models.DimensionTeacher))
	assert.True(t, conflicts[0].HasDimension(models.DimensionGroup))
	assert.True(t, conflicts[0].HasDimension(models.DimensionAuditory))
}

func TestFindConflictsIgnoresAdjacentSlots(t *testing.T) {
	store := &fakeLessonStore{lessons: []models.Lesson{
		storedLesson("lesson-1", 2, "08:00", "09:20", "IS-21", "Ivanov I.I.", "305"),
	}}
	svc := NewConflictService(store, nil, false)

	conflicts, err := svc.FindConflicts(context.Background(), PlacementProbe{
		Semester:    1,
		WeekNumber:  3,
		Weekday:     2,
		TimeStart:   "09:20",
		TimeEnd:     "10:40",
		TeacherName: "Ivanov I.I.",
	})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestFindConflictsSkipsEmptyResources(t *testing.T) {
	store := &fakeLessonStore{lessons: []models.Lesson{
		storedLesson("lesson-1", 2, "08:00", "09:20", "IS-21", "", ""),
	}}
	svc := NewConflictService(store, nil, false)

	// No teacher, group or room on the probe means nothing to check.
	conflicts, err := svc.FindConflicts(context.Background(), PlacementProbe{
		Semester:   1,
		WeekNumber: 3,
		Weekday:    2,
		TimeStart:  "08:00",
		TimeEnd:    "09:20",
	})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestFindConflictsExcludesProbedLesson(t *testing.T) {
	store := &fakeLessonStore{lessons: []models.Lesson{
		storedLesson("lesson-1", 2, "08:00", "09:20", "IS-21", "Ivanov I.I.", "305"),
	}}
	svc := NewConflictService(store, nil, false)

	conflicts, err := svc.FindConflicts(context.Background(), PlacementProbe{
		LessonID:    "lesson-1",
		Semester:    1,
		WeekNumber:  3,
		Weekday:     2,
		TimeStart:   "08:00",
		TimeEnd:     "09:20",
		TeacherName: "Ivanov I.I.",
	})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestFindConflictsProbesByDate(t *testing.T) {
	stored := storedLesson("lesson-1", 2, "08:00", "09:20", "IS-21", "Ivanov I.I.", "305")
	store := &fakeLessonStore{lessons: []models.Lesson{stored}}
	svc := NewConflictService(store, nil, false)

	date := stored.Date
	conflicts, err := svc.FindConflicts(context.Background(), PlacementProbe{
		Date:      &date,
		TimeStart: "08:30",
		TimeEnd:   "09:50",
		Auditory:  "305",
	})
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.True(t, conflicts[0].HasDimension(models.DimensionAuditory))

	other := date.AddDate(0, 0, 1)
	conflicts, err = svc.FindConflicts(context.Background(), PlacementProbe{
		Date:      &other,
		TimeStart: "08:30",
		TimeEnd:   "09:50",
		Auditory:  "305",
	})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestFindConflictsParallelSubgroupPolicy(t *testing.T) {
	lesson := storedLesson("lesson-1", 2, "08:00", "09:20", "IS-21", "Ivanov I.I.", "305")
	lesson.Subgroup = 1
	store := &fakeLessonStore{lessons: []models.Lesson{lesson}}

	probe := PlacementProbe{
		Semester:   1,
		WeekNumber: 3,
		Weekday:    2,
		TimeStart:  "08:00",
		TimeEnd:    "09:20",
		GroupName:  "IS-21",
		Subject:    "Databases",
		Subgroup:   2,
	}

	strict := NewConflictService(store, nil, false)
	conflicts, err := strict.FindConflicts(context.Background(), probe)
	require.NoError(t, err)
	assert.Len(t, conflicts, 1)

	relaxed := NewConflictService(store, nil, true)
	conflicts, err = relaxed.FindConflicts(context.Background(), probe)
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	// Same subgroup number still collides even under the relaxed policy.
	probe.Subgroup = 1
	conflicts, err = relaxed.FindConflicts(context.Background(), probe)
	require.NoError(t, err)
	assert.Len(t, conflicts, 1)
}

func TestCheckAvailabilityMergesTagsPerSlot(t *testing.T) {
	store := &fakeLessonStore{lessons: []models.Lesson{
		storedLesson("lesson-1", 2, "08:00", "09:20", "IS-21", "Ivanov I.I.", "305"),
		storedLesson("lesson-2", 3, "09:30", "10:50", "SE-31", "Ivanov I.I.", "412"),
	}}
	svc := NewConflictService(store, nil, false)

	occupied, err := svc.CheckAvailability(context.Background(), AvailabilityRequest{
		Semester:    1,
		WeekNumber:  3,
		TeacherName: "Ivanov I.I.",
		Auditory:    "305",
	})
	require.NoError(t, err)
	require.Len(t, occupied, 2)

	var merged *models.OccupiedSlot
	for i := range occupied {
		if occupied[i].Weekday == 2 {
			merged = &occupied[i]
		}
	}
	require.NotNil(t, merged)
	assert.Len(t, merged.Tags, 2)
}

func TestWeekConflictsCountsByDimension(t *testing.T) {
	store := &fakeLessonStore{lessons: []models.Lesson{
		// Same teacher, same weekday, overlapping times.
		storedLesson("lesson-1", 1, "08:00", "09:20", "IS-21", "Ivanov I.I.", "305"),
		storedLesson("lesson-2", 1, "08:40", "10:00", "SE-31", "Ivanov I.I.", "412"),
		// Same room on another day.
		storedLesson("lesson-3", 4, "08:00", "09:20", "CS-11", "Petrov P.P.", "100"),
		storedLesson("lesson-4", 4, "08:00", "09:20", "CS-12", "Sidorov S.S.", "100"),
		// No collision: same times, different everything.
		storedLesson("lesson-5", 5, "08:00", "09:20", "MA-41", "Orlova O.O.", "201"),
	}}
	svc := NewConflictService(store, nil, false)

	report, err := svc.WeekConflicts(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalConflicts)
	assert.Equal(t, 1, report.CountsByType[models.DimensionTeacher])
	assert.Equal(t, 0, report.CountsByType[models.DimensionGroup])
	assert.Equal(t, 1, report.CountsByType[models.DimensionAuditory])
	require.Len(t, report.TeacherConflicts, 1)
	assert.Equal(t, "Ivanov I.I.", report.TeacherConflicts[0].Value)
}

func TestWeekConflictsReportOrderIsStable(t *testing.T) {
	store := &fakeLessonStore{lessons: []models.Lesson{
		storedLesson("lesson-1", 1, "08:00", "09:20", "IS-21", "", "412"),
		storedLesson("lesson-2", 1, "08:40", "10:00", "SE-31", "", "412"),
		storedLesson("lesson-3", 2, "08:00", "09:20", "CS-11", "", "100"),
		storedLesson("lesson-4", 2, "08:40", "10:00", "CS-12", "", "100"),
		storedLesson("lesson-5", 3, "08:00", "09:20", "MA-41", "", "305"),
		storedLesson("lesson-6", 3, "08:40", "10:00", "MA-42", "", "305"),
	}}
	svc := NewConflictService(store, nil, false)

	first, err := svc.WeekConflicts(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, first.AuditoryConflicts, 3)
	assert.Equal(t, "100", first.AuditoryConflicts[0].Value)
	assert.Equal(t, "305", first.AuditoryConflicts[1].Value)
	assert.Equal(t, "412", first.AuditoryConflicts[2].Value)

	// Rooms are grouped in a map; repeated audits must not reshuffle
	// the report.
	for i := 0; i < 5; i++ {
		again, err := svc.WeekConflicts(context.Background(), 1, 3)
		require.NoError(t, err)
		assert.Equal(t, first.AuditoryConflicts, again.AuditoryConflicts)
		assert.Equal(t, first.TotalConflicts, again.TotalConflicts)
	}
}
