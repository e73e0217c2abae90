package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/akazantsev/timetable-api/internal/models"
	appErrors "github.com/akazantsev/timetable-api/pkg/errors"
)

type mutationLessonRepository interface {
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	ListByGroupSlot(ctx context.Context, groupName string, semester, weekNumber, weekday int, timeStart string) ([]models.Lesson, error)
	UpdatePlacements(ctx context.Context, placements []models.LessonPlacement) error
}

type conflictDetector interface {
	FindConflicts(ctx context.Context, probe PlacementProbe) ([]models.Conflict, error)
}

// MoveRequest relocates one lesson or a whole group slot to a new weekday
// and time. Set LessonID for a single move, or the group selector fields
// for a batch move.
type MoveRequest struct {
	LessonID string `json:"lesson_id"`

	GroupName       string `json:"group_name"`
	Semester        int    `json:"semester"`
	WeekNumber      int    `json:"week_number"`
	SourceWeekday   int    `json:"source_weekday"`
	SourceTimeStart string `json:"source_time_start"`

	TargetWeekday   int    `json:"target_weekday" validate:"required,min=1,max=6"`
	TargetTimeStart string `json:"target_time_start" validate:"required"`
	TargetTimeEnd   string `json:"target_time_end" validate:"required"`

	Force bool `json:"force"`
}

// SwapRequest exchanges the placements of two lessons.
type SwapRequest struct {
	Lesson1ID     string `json:"lesson1_id" validate:"required"`
	Lesson2ID     string `json:"lesson2_id" validate:"required"`
	SwapLocations bool   `json:"swap_locations"`
	Force         bool   `json:"force"`
}

// MutationService applies conflict-guarded placement changes to the
// schedule. Rejected mutations leave the store untouched.
type MutationService struct {
	lessonRepo mutationLessonRepository
	conflicts  conflictDetector
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewMutationService constructs a MutationService.
func NewMutationService(repo mutationLessonRepository, conflicts conflictDetector, validate *validator.Validate, logger *zap.Logger) *MutationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MutationService{lessonRepo: repo, conflicts: conflicts, validator: validate, logger: logger}
}

// Move relocates the selected lessons to the target slot. Unless forced,
// the move is rejected with a ScheduleConflictError when any lesson would
// collide at the target.
func (s *MutationService) Move(ctx context.Context, req MoveRequest) ([]models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload")
	}

	lessons, err := s.resolveMoveSource(ctx, req)
	if err != nil {
		return nil, err
	}

	excludes := make([]string, 0, len(lessons))
	for _, lesson := range lessons {
		excludes = append(excludes, lesson.ID)
	}

	if !req.Force {
		var reports []models.ConflictReport
		for _, lesson := range lessons {
			probe := PlacementProbe{
				LessonID:    lesson.ID,
				ExcludeIDs:  excludes,
				Semester:    lesson.Semester,
				WeekNumber:  lesson.WeekNumber,
				Weekday:     req.TargetWeekday,
				TimeStart:   req.TargetTimeStart,
				TimeEnd:     req.TargetTimeEnd,
				TeacherName: lesson.TeacherName,
				GroupName:   lesson.GroupName,
				Auditory:    lesson.Auditory,
				Subgroup:    lesson.Subgroup,
				Subject:     lesson.Subject,
			}
			found, err := s.conflicts.FindConflicts(ctx, probe)
			if err != nil {
				return nil, err
			}
			if len(found) > 0 {
				reports = append(reports, models.ConflictReport{
					LessonID:  lesson.ID,
					Subject:   lesson.Subject,
					Conflicts: found,
				})
			}
		}
		if len(reports) > 0 {
			return nil, &models.ScheduleConflictError{
				Message: "move rejected: target slot is occupied",
				Reports: reports,
			}
		}
	}

	placements := make([]models.LessonPlacement, 0, len(lessons))
	moved := make([]models.Lesson, 0, len(lessons))
	for _, lesson := range lessons {
		dayDiff := req.TargetWeekday - lesson.Weekday
		updated := lesson
		updated.Date = lesson.Date.AddDate(0, 0, dayDiff)
		updated.Weekday = req.TargetWeekday
		updated.TimeStart = req.TargetTimeStart
		updated.TimeEnd = req.TargetTimeEnd

		placements = append(placements, models.LessonPlacement{
			ID:        updated.ID,
			Date:      updated.Date,
			Weekday:   updated.Weekday,
			TimeStart: updated.TimeStart,
			TimeEnd:   updated.TimeEnd,
			Auditory:  updated.Auditory,
		})
		moved = append(moved, updated)
	}

	if err := s.lessonRepo.UpdatePlacements(ctx, placements); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply move")
	}

	s.logger.Info("lessons moved",
		zap.Int("count", len(moved)),
		zap.Int("target_weekday", req.TargetWeekday),
		zap.String("target_time_start", req.TargetTimeStart))

	return moved, nil
}

func (s *MutationService) resolveMoveSource(ctx context.Context, req MoveRequest) ([]models.Lesson, error) {
	if req.LessonID != "" {
		lesson, err := s.lessonRepo.FindByID(ctx, req.LessonID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
		}
		return []models.Lesson{*lesson}, nil
	}

	if req.GroupName == "" || req.Semester == 0 || req.WeekNumber == 0 || req.SourceWeekday == 0 || req.SourceTimeStart == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "either lesson_id or the full group slot selector is required")
	}

	lessons, err := s.lessonRepo.ListByGroupSlot(ctx, req.GroupName, req.Semester, req.WeekNumber, req.SourceWeekday, req.SourceTimeStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load source lessons")
	}
	if len(lessons) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no lessons found at the source slot")
	}
	return lessons, nil
}

// Swap exchanges the date, weekday and times of two lessons, and their
// rooms when SwapLocations is set. Unless forced, each lesson is probed at
// the other's placement first.
func (s *MutationService) Swap(ctx context.Context, req SwapRequest) (*models.Lesson, *models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid swap payload")
	}
	if req.Lesson1ID == req.Lesson2ID {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "cannot swap a lesson with itself")
	}

	lesson1, err := s.loadLesson(ctx, req.Lesson1ID)
	if err != nil {
		return nil, nil, err
	}
	lesson2, err := s.loadLesson(ctx, req.Lesson2ID)
	if err != nil {
		return nil, nil, err
	}

	if !req.Force {
		excludes := []string{lesson1.ID, lesson2.ID}
		var reports []models.ConflictReport
		for _, pair := range []struct {
			moving *models.Lesson
			target *models.Lesson
		}{
			{moving: lesson1, target: lesson2},
			{moving: lesson2, target: lesson1},
		} {
			date := pair.target.Date
			probe := PlacementProbe{
				LessonID:    pair.moving.ID,
				ExcludeIDs:  excludes,
				Date:        &date,
				TimeStart:   pair.target.TimeStart,
				TimeEnd:     pair.target.TimeEnd,
				TeacherName: pair.moving.TeacherName,
				GroupName:   pair.moving.GroupName,
				Auditory:    pair.moving.Auditory,
				Subgroup:    pair.moving.Subgroup,
				Subject:     pair.moving.Subject,
			}
			found, err := s.conflicts.FindConflicts(ctx, probe)
			if err != nil {
				return nil, nil, err
			}
			if len(found) > 0 {
				reports = append(reports, models.ConflictReport{
					LessonID:  pair.moving.ID,
					Subject:   pair.moving.Subject,
					Conflicts: found,
				})
			}
		}
		if len(reports) > 0 {
			return nil, nil, &models.ScheduleConflictError{
				Message: "swap rejected: conflicting placements",
				Reports: reports,
			}
		}
	}

	updated1 := *lesson1
	updated2 := *lesson2

	updated1.Date = lesson2.Date
	updated1.Weekday = lesson2.Weekday
	updated1.TimeStart = lesson2.TimeStart
	updated1.TimeEnd = lesson2.TimeEnd

	updated2.Date = lesson1.Date
	updated2.Weekday = lesson1.Weekday
	updated2.TimeStart = lesson1.TimeStart
	updated2.TimeEnd = lesson1.TimeEnd

	if req.SwapLocations {
		updated1.Auditory = lesson2.Auditory
		updated2.Auditory = lesson1.Auditory
	}

	placements := []models.LessonPlacement{
		{ID: updated1.ID, Date: updated1.Date, Weekday: updated1.Weekday, TimeStart: updated1.TimeStart, TimeEnd: updated1.TimeEnd, Auditory: updated1.Auditory},
		{ID: updated2.ID, Date: updated2.Date, Weekday: updated2.Weekday, TimeStart: updated2.TimeStart, TimeEnd: updated2.TimeEnd, Auditory: updated2.Auditory},
	}
	if err := s.lessonRepo.UpdatePlacements(ctx, placements); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply swap")
	}

	s.logger.Info("lessons swapped",
		zap.String("lesson1_id", updated1.ID),
		zap.String("lesson2_id", updated2.ID),
		zap.Bool("swap_locations", req.SwapLocations))

	return &updated1, &updated2, nil
}

func (s *MutationService) loadLesson(ctx context.Context, id string) (*models.Lesson, error) {
	lesson, err := s.lessonRepo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	return lesson, nil
}
