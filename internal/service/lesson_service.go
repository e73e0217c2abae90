package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/akazantsev/timetable-api/internal/models"
	appErrors "github.com/akazantsev/timetable-api/pkg/errors"
)

type lessonRepository interface {
	List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error)
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	ListWeekByResource(ctx context.Context, dimension models.ResourceDimension, value string, semester, weekNumber int) ([]models.Lesson, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id string) error
	DeleteByWeek(ctx context.Context, semester, weekNumber int) (int64, error)
	DistinctGroups(ctx context.Context, search string) ([]models.GroupInfo, error)
	DistinctTeachers(ctx context.Context, search string) ([]string, error)
	DistinctAuditories(ctx context.Context, search string) ([]string, error)
	UsageStats(ctx context.Context, semester, weekNumber int) (*models.UsageStats, error)
}

type scheduleCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CreateLessonRequest carries a new schedule entry.
type CreateLessonRequest struct {
	Semester    int    `json:"semester" validate:"required,min=1,max=2"`
	WeekNumber  int    `json:"week_number" validate:"required,min=1"`
	GroupName   string `json:"group_name" validate:"required"`
	Course      int    `json:"course" validate:"required,min=1"`
	Faculty     string `json:"faculty"`
	Subject     string `json:"subject" validate:"required"`
	LessonType  string `json:"lesson_type"`
	Subgroup    int    `json:"subgroup" validate:"min=0"`
	Date        string `json:"date" validate:"required"`
	Weekday     int    `json:"weekday" validate:"min=0,max=6"`
	TimeStart   string `json:"time_start" validate:"required"`
	TimeEnd     string `json:"time_end" validate:"required"`
	TeacherName string `json:"teacher_name"`
	Auditory    string `json:"auditory"`
}

// UpdateLessonRequest carries a partial update. Nil fields stay unchanged.
type UpdateLessonRequest struct {
	Semester    *int    `json:"semester" validate:"omitempty,min=1,max=2"`
	WeekNumber  *int    `json:"week_number" validate:"omitempty,min=1"`
	GroupName   *string `json:"group_name"`
	Course      *int    `json:"course" validate:"omitempty,min=1"`
	Faculty     *string `json:"faculty"`
	Subject     *string `json:"subject"`
	LessonType  *string `json:"lesson_type"`
	Subgroup    *int    `json:"subgroup" validate:"omitempty,min=0"`
	Date        *string `json:"date"`
	Weekday     *int    `json:"weekday" validate:"omitempty,min=1,max=6"`
	TimeStart   *string `json:"time_start"`
	TimeEnd     *string `json:"time_end"`
	TeacherName *string `json:"teacher_name"`
	Auditory    *string `json:"auditory"`
	Force       bool    `json:"force"`
}

// LessonService orchestrates schedule CRUD, week views and aggregates.
type LessonService struct {
	repo      lessonRepository
	conflicts conflictDetector
	cache     scheduleCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewLessonService constructs a LessonService. cache may be nil.
func NewLessonService(repo lessonRepository, conflicts conflictDetector, cache scheduleCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *LessonService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &LessonService{
		repo:      repo,
		conflicts: conflicts,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns lessons matching the filter plus pagination data.
func (s *LessonService) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, *models.Pagination, error) {
	lessons, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 100
	}
	return lessons, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a lesson by id.
func (s *LessonService) Get(ctx context.Context, id string) (*models.Lesson, error) {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	return lesson, nil
}

// WeekView returns the lessons of one resource for a week together with the
// calendar dates of that week.
func (s *LessonService) WeekView(ctx context.Context, dimension models.ResourceDimension, value string, semester, weekNumber int) (*models.WeekSchedule, error) {
	if semester < 1 || semester > 2 || weekNumber < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester and week number are required")
	}

	cacheKey := fmt.Sprintf("schedule:week:%s:%s:%d:%d", dimension, value, semester, weekNumber)
	if s.cache != nil {
		var cached models.WeekSchedule
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		} else if err != appErrors.ErrCacheMiss {
			s.logger.Warn("week view cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	lessons, err := s.repo.ListWeekByResource(ctx, dimension, value, semester, weekNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week schedule")
	}

	year := academicYear(s.now(), semester)
	dates := make(map[int]string, 6)
	for weekday, date := range datesForWeek(year, weekNumber) {
		dates[weekday] = date.Format("2006-01-02")
	}

	for _, lesson := range lessons {
		if expected, ok := dates[lesson.Weekday]; ok && lesson.Date.Format("2006-01-02") != expected {
			s.logger.Warn("lesson date disagrees with derived week date",
				zap.String("lesson_id", lesson.ID),
				zap.Int("weekday", lesson.Weekday),
				zap.String("stored_date", lesson.Date.Format("2006-01-02")),
				zap.String("derived_date", expected))
		}
	}

	view := &models.WeekSchedule{Lessons: lessons, Dates: dates}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, view, s.cacheTTL); err != nil {
			s.logger.Warn("week view cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return view, nil
}

// ListByDate returns the lessons of one calendar date.
func (s *LessonService) ListByDate(ctx context.Context, date string) ([]models.Lesson, error) {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, use YYYY-MM-DD")
	}
	lessons, err := s.repo.ListByDate(ctx, parsed)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lessons by date")
	}
	return lessons, nil
}

// Create stores a new lesson. The weekday is derived from the date when
// omitted.
func (s *LessonService) Create(ctx context.Context, req CreateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, use YYYY-MM-DD")
	}
	if _, err := parseClock(req.TimeStart); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid time_start, use HH:MM")
	}
	if _, err := parseClock(req.TimeEnd); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid time_end, use HH:MM")
	}

	weekday := req.Weekday
	if weekday == 0 {
		weekday = weekdayOf(date)
	} else if weekday != weekdayOf(date) {
		s.logger.Warn("lesson weekday disagrees with its date",
			zap.Int("weekday", weekday),
			zap.String("date", req.Date))
	}

	lesson := &models.Lesson{
		Semester:    req.Semester,
		WeekNumber:  req.WeekNumber,
		GroupName:   req.GroupName,
		Course:      req.Course,
		Faculty:     req.Faculty,
		Subject:     req.Subject,
		LessonType:  req.LessonType,
		Subgroup:    req.Subgroup,
		Date:        date,
		Weekday:     weekday,
		TimeStart:   req.TimeStart,
		TimeEnd:     req.TimeEnd,
		TeacherName: req.TeacherName,
		Auditory:    req.Auditory,
	}

	if err := s.repo.Create(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson")
	}

	s.invalidateWeekCache(ctx)
	return lesson, nil
}

// Update applies a partial update. Unless forced, placement changes are
// probed for conflicts first and rejected with a ScheduleConflictError.
func (s *LessonService) Update(ctx context.Context, id string, req UpdateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}

	lesson, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *lesson
	placementChanged := false

	if req.Semester != nil {
		updated.Semester = *req.Semester
	}
	if req.WeekNumber != nil {
		updated.WeekNumber = *req.WeekNumber
	}
	if req.GroupName != nil {
		updated.GroupName = *req.GroupName
		placementChanged = true
	}
	if req.Course != nil {
		updated.Course = *req.Course
	}
	if req.Faculty != nil {
		updated.Faculty = *req.Faculty
	}
	if req.Subject != nil {
		updated.Subject = *req.Subject
	}
	if req.LessonType != nil {
		updated.LessonType = *req.LessonType
	}
	if req.Subgroup != nil {
		updated.Subgroup = *req.Subgroup
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, use YYYY-MM-DD")
		}
		updated.Date = date
		placementChanged = true
	}
	if req.Weekday != nil {
		updated.Weekday = *req.Weekday
		placementChanged = true
	}
	if req.TimeStart != nil {
		if _, err := parseClock(*req.TimeStart); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid time_start, use HH:MM")
		}
		updated.TimeStart = *req.TimeStart
		placementChanged = true
	}
	if req.TimeEnd != nil {
		if _, err := parseClock(*req.TimeEnd); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid time_end, use HH:MM")
		}
		updated.TimeEnd = *req.TimeEnd
		placementChanged = true
	}
	if req.TeacherName != nil {
		updated.TeacherName = *req.TeacherName
		placementChanged = true
	}
	if req.Auditory != nil {
		updated.Auditory = *req.Auditory
		placementChanged = true
	}

	if placementChanged && !req.Force {
		date := updated.Date
		probe := PlacementProbe{
			LessonID:    updated.ID,
			Date:        &date,
			TimeStart:   updated.TimeStart,
			TimeEnd:     updated.TimeEnd,
			TeacherName: updated.TeacherName,
			GroupName:   updated.GroupName,
			Auditory:    updated.Auditory,
			Subgroup:    updated.Subgroup,
			Subject:     updated.Subject,
		}
		found, err := s.conflicts.FindConflicts(ctx, probe)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			return nil, &models.ScheduleConflictError{
				Message: "update rejected: conflicting placement",
				Reports: []models.ConflictReport{{
					LessonID:  updated.ID,
					Subject:   updated.Subject,
					Conflicts: found,
				}},
			}
		}
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lesson")
	}

	s.invalidateWeekCache(ctx)
	return &updated, nil
}

// Delete removes a lesson by id.
func (s *LessonService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson")
	}
	s.invalidateWeekCache(ctx)
	return nil
}

// DeleteWeek removes every lesson of a (semester, week) pair and reports
// the number of removed rows.
func (s *LessonService) DeleteWeek(ctx context.Context, semester, weekNumber int) (int64, error) {
	if semester < 1 || semester > 2 || weekNumber < 1 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "semester and week number are required")
	}
	deleted, err := s.repo.DeleteByWeek(ctx, semester, weekNumber)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete week")
	}
	s.invalidateWeekCache(ctx)
	s.logger.Info("week schedule deleted",
		zap.Int("semester", semester),
		zap.Int("week_number", weekNumber),
		zap.Int64("deleted", deleted))
	return deleted, nil
}

// Groups lists the distinct groups of the schedule.
func (s *LessonService) Groups(ctx context.Context, search string) ([]models.GroupInfo, error) {
	groups, err := s.repo.DistinctGroups(ctx, search)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
	}
	return groups, nil
}

// Teachers lists the distinct teachers of the schedule.
func (s *LessonService) Teachers(ctx context.Context, search string) ([]string, error) {
	teachers, err := s.repo.DistinctTeachers(ctx, search)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, nil
}

// Auditories lists the distinct rooms of the schedule.
func (s *LessonService) Auditories(ctx context.Context, search string) ([]string, error) {
	auditories, err := s.repo.DistinctAuditories(ctx, search)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list auditories")
	}
	return auditories, nil
}

// UsageStats aggregates weekly lesson counts per resource.
func (s *LessonService) UsageStats(ctx context.Context, semester, weekNumber int) (*models.UsageStats, error) {
	if semester < 1 || semester > 2 || weekNumber < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester and week number are required")
	}
	stats, err := s.repo.UsageStats(ctx, semester, weekNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate usage stats")
	}
	return stats, nil
}

// InvalidateWeekCache drops every cached week view. Exposed for callers
// that mutate the schedule outside this service.
func (s *LessonService) InvalidateWeekCache(ctx context.Context) {
	s.invalidateWeekCache(ctx)
}

func (s *LessonService) invalidateWeekCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "schedule:week:*"); err != nil {
		s.logger.Warn("week view cache invalidation failed", zap.Error(err))
	}
}
