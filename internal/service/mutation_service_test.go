package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akazantsev/timetable-api/internal/models"
	appErrors "github.com/akazantsev/timetable-api/pkg/errors"
)

// fakeScheduleStore extends the in-memory lesson filtering with the
// mutation operations, recording every applied placement batch.
type fakeScheduleStore struct {
	fakeLessonStore
	applied  [][]models.LessonPlacement
	applyErr error
}

func (f *fakeScheduleStore) FindByID(_ context.Context, id string) (*models.Lesson, error) {
	for _, lesson := range f.lessons {
		if lesson.ID == id {
			found := lesson
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeScheduleStore) ListByGroupSlot(_ context.Context, groupName string, semester, weekNumber, weekday int, timeStart string) ([]models.Lesson, error) {
	var out []models.Lesson
	for _, lesson := range f.lessons {
		if lesson.GroupName == groupName && lesson.Semester == semester && lesson.WeekNumber == weekNumber &&
			lesson.Weekday == weekday && lesson.TimeStart == timeStart {
			out = append(out, lesson)
		}
	}
	return out, nil
}

func (f *fakeScheduleStore) UpdatePlacements(_ context.Context, placements []models.LessonPlacement) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, placements)
	for _, p := range placements {
		for i := range f.lessons {
			if f.lessons[i].ID == p.ID {
				f.lessons[i].Date = p.Date
				f.lessons[i].Weekday = p.Weekday
				f.lessons[i].TimeStart = p.TimeStart
				f.lessons[i].TimeEnd = p.TimeEnd
				f.lessons[i].Auditory = p.Auditory
			}
		}
	}
	return nil
}

func newMutationFixture(lessons ...models.Lesson) (*fakeScheduleStore, *MutationService) {
	store := &fakeScheduleStore{fakeLessonStore: fakeLessonStore{lessons: lessons}}
	detector := NewConflictService(&store.fakeLessonStore, nil, false)
	return store, NewMutationService(store, detector, nil, nil)
}

func TestMoveGroupBatchShiftsDates(t *testing.T) {
	lecture := storedLesson("lesson-1", 2, "08:00", "09:20", "IS-21", "Ivanov I.I.", "305")
	lab := storedLesson("lesson-2", 2, "08:00", "09:20", "IS-21", "Petrov P.P.", "412")
	store, svc := newMutationFixture(lecture, lab)

	moved, err := svc.Move(context.Background(), MoveRequest{
		GroupName:       "IS-21",
		Semester:        1,
		WeekNumber:      3,
		SourceWeekday:   2,
		SourceTimeStart: "08:00",
		TargetWeekday:   4,
		TargetTimeStart: "09:30",
		TargetTimeEnd:   "10:50",
	})
	require.NoError(t, err)
	require.Len(t, moved, 2)
	require.Len(t, store.applied, 1)

	for _, lesson := range moved {
		assert.Equal(t, 4, lesson.Weekday)
		assert.Equal(t, "09:30", lesson.TimeStart)
		assert.Equal(t, "10:50", lesson.TimeEnd)
		// Tuesday Sep 17 plus two days.
		assert.Equal(t, time.Date(2024, time.September, 19, 0, 0, 0, 0, time.UTC), lesson.Date)
	}
	// Rooms are untouched by a move.
	assert.Equal(t, "305", moved[0].Auditory)
	assert.Equal(t, "412", moved[1].Auditory)
}

func TestMoveSingleLessonByID(t *testing.T) {
	lesson := storedLesson("lesson-1", 2, "08:00", "09:20", "IS-21", "Ivanov I.I.", "305")
	_, svc := newMutationFixture(lesson)

	moved, err := svc.Move(context.Background(), MoveRequest{
		LessonID:        "lesson-1",
		TargetWeekday:   3,
		TargetTimeStart: "11:00",
		TargetTimeEnd:   "12:20",
	})
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, 3, moved[0].Weekday)
	assert.Equal(t, time.Date(2024, time.September, 18, 0, 0, 0, 0, time.UTC), moved[0].Date)
}

func TestMoveRejectedOnConflictLeavesStoreUntouched(t *testing.T) {
	moving := storedLesson("lesson-1", 2, "08:00", "09:20", "IS-21", "Ivanov I.I.", "305")
	blocker := storedLesson("lesson-2", 4, "09:30", "10:50", "SE-31", "Ivanov I.I.", "412")
	store, svc := newMutationFixture(moving, blocker)

	_, err := svc.Move(context.Background(), MoveRequest{
		LessonID:        "lesson-1",
		TargetWeekday:   4,
		TargetTimeStart: "09:30",
		TargetTimeEnd:   "10:50",
	})
	require.Error(t, err)

	var conflictErr *models.ScheduleConflictError
	require.True(t, errors.As(err, &conflictErr))
	require.Len(t, conflictErr.Reports, 1)
	assert.Equal(t, "lesson-1", conflictErr.Reports[0].LessonID)
	assert.True(t, conflictErr.Reports[0].Conflicts[0].HasDimension(models.DimensionTeacher))

	assert.Empty(t, store.applied)
	current, _ := store.FindByID(context.Background(), "lesson-1")
	assert.Equal(t, 2, current.Weekday)
}

func TestMoveForceOverridesConflicts(t *testing.T) {
	moving := storedLesson("lesson-1", 2, "08:00", "09:20", "IS-21", "Ivanov I.I.", "305")
	blocker := storedLesson("lesson-2", 4, "09:30", "10:50", "SE-31", "Ivanov I.I.", "412")
	store, svc := newMutationFixture(moving, blocker)

	moved, err := svc.Move(context.Background(), MoveRequest{
		LessonID:        "lesson-1",
		TargetWeekday:   4,
		TargetTimeStart: "09:30",
		TargetTimeEnd:   "10:50",
		Force:           true,
	})
	require.NoError(t, err)
	require.Len(t, moved, 1)
	require.Len(t, store.applied, 1)
}

func TestMoveBatchMembersDoNotBlockEachOther(t *testing.T) {
	// Two subgroup sessions at the same slot moved together must not be
	// reported as conflicting with one another at the target.
	first := storedLesson("lesson-1", 2, "08:00", "09:20", "IS-21", "Ivanov I.I.", "305")
	second := storedLesson("lesson-2", 2, "08:00", "09:20", "IS-21", "Petrov P.P.", "412")
	_, svc := newMutationFixture(first, second)

	moved, err := svc.Move(context.Background(), MoveRequest{
		GroupName:       "IS-21",
		Semester:        1,
		WeekNumber:      3,
		SourceWeekday:   2,
		SourceTimeStart: "08:00",
		TargetWeekday:   2,
		TargetTimeStart: "09:30",
		TargetTimeEnd:   "10:50",
	})
	require.NoError(t, err)
	assert.Len(t, moved, 2)
}

func TestMoveSourceNotFound(t *testing.T) {
	_, svc := newMutationFixture()

	_, err := svc.Move(context.Background(), MoveRequest{
		GroupName:       "IS-21",
		Semester:        1,
		WeekNumber:      3,
		SourceWeekday:   2,
		SourceTimeStart: "08:00",
		TargetWeekday:   3,
		TargetTimeStart: "09:30",
		TargetTimeEnd:   "10:50",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestSwapExchangesPlacementsOnly(t *testing.T) {
	lesson1 := storedLesson("lesson-1", 2, "08:00", "09:20", "IS-21", "Ivanov I.I.", "305")
	lesson2 := storedLesson("lesson-2", 4, "11:00", "12:20", "SE-31", "Petrov P.P.", "412")
	store, svc := newMutationFixture(lesson1, lesson2)

	swapped1, swapped2, err := svc.Swap(context.Background(), SwapRequest{
		Lesson1ID: "lesson-1",
		Lesson2ID: "lesson-2",
	})
	require.NoError(t, err)
	require.Len(t, store.applied, 1)

	assert.Equal(t, lesson2.Date, swapped1.Date)
	assert.Equal(t, lesson2.Weekday, swapped1.Weekday)
	assert.Equal(t, lesson2.TimeStart, swapped1.TimeStart)
	assert.Equal(t, lesson2.TimeEnd, swapped1.TimeEnd)
	assert.Equal(t, lesson1.Date, swapped2.Date)
	assert.Equal(t, lesson1.Weekday, swapped2.Weekday)

	// Identity fields stay put.
	assert.Equal(t, "IS-21", swapped1.GroupName)
	assert.Equal(t, "Ivanov I.I.", swapped1.TeacherName)
	assert.Equal(t, "305", swapped1.Auditory)
	assert.Equal(t, "412", swapped2.Auditory)
}

func TestSwapLocationsExchangesRooms(t *testing.T) {
	lesson1 := storedLesson("lesson-1", 2, "08:00", "09:20", "IS-21", "Ivanov I.I.", "305")
	lesson2 := storedLesson("lesson-2", 4, "11:00", "12:20", "SE-31", "Petrov P.P.", "412")
	_, svc := newMutationFixture(lesson1, lesson2)

	swapped1, swapped2, err := svc.Swap(context.Background(), SwapRequest{
		Lesson1ID:     "lesson-1",
		Lesson2ID:     "lesson-2",
		SwapLocations: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "412", swapped1.Auditory)
	assert.Equal(t, "305", swapped2.Auditory)
}

func TestSwapRejectedOnConflict(t *testing.T) {
	lesson1 := storedLesson("lesson-1", 2, "08:00", "09:20", "IS-21", "Ivanov I.I.", "305")
	lesson2 := storedLesson("lesson-2", 4, "11:00", "12:20", "SE-31", "Petrov P.P.", "412")
	// Occupies lesson2's day and time with lesson1's teacher.
	blocker := storedLesson("lesson-3", 4, "11:00", "12:20", "CS-11", "Ivanov I.I.", "100")
	store, svc := newMutationFixture(lesson1, lesson2, blocker)

	_, _, err := svc.Swap(context.Background(), SwapRequest{
		Lesson1ID: "lesson-1",
		Lesson2ID: "lesson-2",
	})
	require.Error(t, err)

	var conflictErr *models.ScheduleConflictError
	require.True(t, errors.As(err, &conflictErr))
	require.Len(t, conflictErr.Reports, 1)
	assert.Equal(t, "lesson-1", conflictErr.Reports[0].LessonID)
	assert.Empty(t, store.applied)
}

func TestSwapWithItselfRejected(t *testing.T) {
	lesson := storedLesson("lesson-1", 2, "08:00", "09:20", "IS-21", "Ivanov I.I.", "305")
	_, svc := newMutationFixture(lesson)

	_, _, err := svc.Swap(context.Background(), SwapRequest{
		Lesson1ID: "lesson-1",
		Lesson2ID: "lesson-1",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestSwapMissingLesson(t *testing.T) {
	lesson := storedLesson("lesson-1", 2, "08:00", "09:20", "IS-21", "Ivanov I.I.", "305")
	_, svc := newMutationFixture(lesson)

	_, _, err := svc.Swap(context.Background(), SwapRequest{
		Lesson1ID: "lesson-1",
		Lesson2ID: "missing",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
