package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/akazantsev/timetable-api/internal/models"
	appErrors "github.com/akazantsev/timetable-api/pkg/errors"
)

type conflictLessonRepository interface {
	ListByResource(ctx context.Context, q models.ResourceQuery) ([]models.Lesson, error)
	ListByScope(ctx context.Context, semester, weekNumber int) ([]models.Lesson, error)
}

// PlacementProbe describes a hypothetical placement of a lesson. The
// detector answers what would collide with it without touching the store.
type PlacementProbe struct {
	LessonID   string
	ExcludeIDs []string

	// Either Date or the (Semester, WeekNumber, Weekday) triple locates
	// the day being probed. Date wins when set.
	Date       *time.Time
	Semester   int
	WeekNumber int
	Weekday    int

	TimeStart string
	TimeEnd   string

	TeacherName string
	GroupName   string
	Auditory    string
	Subgroup    int
	Subject     string
}

// AvailabilityRequest asks which slots of a week are already taken by the
// given resources.
type AvailabilityRequest struct {
	Semester    int `validate:"required,min=1,max=2"`
	WeekNumber  int `validate:"required,min=1"`
	LessonID    string
	TeacherName string
	GroupName   string
	Auditory    string
}

// ConflictService detects schedule collisions across the teacher, group and
// room dimensions.
type ConflictService struct {
	lessonRepo             conflictLessonRepository
	logger                 *zap.Logger
	allowParallelSubgroups bool
}

// NewConflictService constructs a ConflictService.
func NewConflictService(repo conflictLessonRepository, logger *zap.Logger, allowParallelSubgroups bool) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{lessonRepo: repo, logger: logger, allowParallelSubgroups: allowParallelSubgroups}
}

// probeDimensions lists the checks a probe induces, in a fixed order so
// reports are deterministic.
func (p PlacementProbe) probeDimensions() []models.ConflictTag {
	var dims []models.ConflictTag
	if p.Auditory != "" {
		dims = append(dims, models.ConflictTag{Dimension: models.DimensionAuditory, Value: p.Auditory})
	}
	if p.TeacherName != "" {
		dims = append(dims, models.ConflictTag{Dimension: models.DimensionTeacher, Value: p.TeacherName})
	}
	if p.GroupName != "" {
		dims = append(dims, models.ConflictTag{Dimension: models.DimensionGroup, Value: p.GroupName})
	}
	return dims
}

// FindConflicts returns every lesson colliding with the probed placement.
// A lesson clashing on several dimensions appears once, carrying one tag
// per dimension.
func (s *ConflictService) FindConflicts(ctx context.Context, probe PlacementProbe) ([]models.Conflict, error) {
	var conflicts []models.Conflict
	index := make(map[string]int)

	excludes := probe.ExcludeIDs
	if probe.LessonID != "" {
		excludes = append([]string{probe.LessonID}, excludes...)
	}

	for _, dim := range probe.probeDimensions() {
		query := models.ResourceQuery{
			Date:       probe.Date,
			Semester:   probe.Semester,
			WeekNumber: probe.WeekNumber,
			Weekday:    probe.Weekday,
			Dimension:  dim.Dimension,
			Value:      dim.Value,
			ExcludeIDs: excludes,
		}

		lessons, err := s.lessonRepo.ListByResource(ctx, query)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate lessons")
		}

		for _, lesson := range lessons {
			hit, err := clockRangesOverlap(probe.TimeStart, probe.TimeEnd, lesson.TimeStart, lesson.TimeEnd)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson time")
			}
			if !hit {
				continue
			}
			if dim.Dimension == models.DimensionGroup && s.subgroupsMayCoexist(probe, lesson) {
				continue
			}

			if pos, ok := index[lesson.ID]; ok {
				conflicts[pos].Tags = append(conflicts[pos].Tags, dim)
				continue
			}
			index[lesson.ID] = len(conflicts)
			conflicts = append(conflicts, models.Conflict{
				LessonID:    lesson.ID,
				Subject:     lesson.Subject,
				GroupName:   lesson.GroupName,
				TeacherName: lesson.TeacherName,
				Auditory:    lesson.Auditory,
				Weekday:     lesson.Weekday,
				Date:        lesson.Date.Format("2006-01-02"),
				TimeStart:   lesson.TimeStart,
				TimeEnd:     lesson.TimeEnd,
				Tags:        []models.ConflictTag{dim},
			})
		}
	}

	return conflicts, nil
}

// subgroupsMayCoexist applies the parallel-subgroup policy: two sessions of
// the same subject split into different numbered subgroups may share a
// group's time slot.
func (s *ConflictService) subgroupsMayCoexist(probe PlacementProbe, lesson models.Lesson) bool {
	if !s.allowParallelSubgroups {
		return false
	}
	if probe.Subgroup == 0 || lesson.Subgroup == 0 {
		return false
	}
	return probe.Subgroup != lesson.Subgroup && probe.Subject == lesson.Subject
}

// CheckAvailability lists the occupied slots of a week for the requested
// resources. A slot taken by several of them is reported once with all tags.
func (s *ConflictService) CheckAvailability(ctx context.Context, req AvailabilityRequest) ([]models.OccupiedSlot, error) {
	dims := []models.ConflictTag{}
	if req.Auditory != "" {
		dims = append(dims, models.ConflictTag{Dimension: models.DimensionAuditory, Value: req.Auditory})
	}
	if req.TeacherName != "" {
		dims = append(dims, models.ConflictTag{Dimension: models.DimensionTeacher, Value: req.TeacherName})
	}
	if req.GroupName != "" {
		dims = append(dims, models.ConflictTag{Dimension: models.DimensionGroup, Value: req.GroupName})
	}

	occupied := []models.OccupiedSlot{}
	type slotKey struct {
		weekday   int
		timeStart string
	}
	index := make(map[slotKey]int)

	var excludes []string
	if req.LessonID != "" {
		excludes = []string{req.LessonID}
	}

	for _, dim := range dims {
		lessons, err := s.lessonRepo.ListByResource(ctx, models.ResourceQuery{
			Semester:   req.Semester,
			WeekNumber: req.WeekNumber,
			Dimension:  dim.Dimension,
			Value:      dim.Value,
			ExcludeIDs: excludes,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load occupied slots")
		}

		for _, lesson := range lessons {
			key := slotKey{weekday: lesson.Weekday, timeStart: lesson.TimeStart}
			if pos, ok := index[key]; ok {
				occupied[pos].Tags = append(occupied[pos].Tags, dim)
				continue
			}
			index[key] = len(occupied)
			occupied = append(occupied, models.OccupiedSlot{
				Weekday:     lesson.Weekday,
				Date:        lesson.Date.Format("2006-01-02"),
				TimeStart:   lesson.TimeStart,
				TimeEnd:     lesson.TimeEnd,
				Subject:     lesson.Subject,
				GroupName:   lesson.GroupName,
				TeacherName: lesson.TeacherName,
				Tags:        []models.ConflictTag{dim},
			})
		}
	}

	return occupied, nil
}

// WeekConflicts audits a whole week: every pair of stored lessons sharing a
// weekday, an overlapping time range and a resource is reported.
func (s *ConflictService) WeekConflicts(ctx context.Context, semester, weekNumber int) (*models.WeekConflictReport, error) {
	lessons, err := s.lessonRepo.ListByScope(ctx, semester, weekNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week lessons")
	}

	byTeacher := make(map[string][]models.Lesson)
	byGroup := make(map[string][]models.Lesson)
	byAuditory := make(map[string][]models.Lesson)
	for _, lesson := range lessons {
		if lesson.TeacherName != "" {
			byTeacher[lesson.TeacherName] = append(byTeacher[lesson.TeacherName], lesson)
		}
		byGroup[lesson.GroupName] = append(byGroup[lesson.GroupName], lesson)
		if lesson.Auditory != "" {
			byAuditory[lesson.Auditory] = append(byAuditory[lesson.Auditory], lesson)
		}
	}

	report := &models.WeekConflictReport{CountsByType: map[models.ResourceDimension]int{}}

	teacherPairs, err := s.pairwiseConflicts(models.DimensionTeacher, byTeacher)
	if err != nil {
		return nil, err
	}
	groupPairs, err := s.pairwiseConflicts(models.DimensionGroup, byGroup)
	if err != nil {
		return nil, err
	}
	auditoryPairs, err := s.pairwiseConflicts(models.DimensionAuditory, byAuditory)
	if err != nil {
		return nil, err
	}

	report.TeacherConflicts = teacherPairs
	report.GroupConflicts = groupPairs
	report.AuditoryConflicts = auditoryPairs
	report.CountsByType[models.DimensionTeacher] = len(teacherPairs)
	report.CountsByType[models.DimensionGroup] = len(groupPairs)
	report.CountsByType[models.DimensionAuditory] = len(auditoryPairs)
	report.TotalConflicts = len(teacherPairs) + len(groupPairs) + len(auditoryPairs)

	return report, nil
}

// pairwiseConflicts walks resource values in sorted order so the audit
// report is stable across calls.
func (s *ConflictService) pairwiseConflicts(dimension models.ResourceDimension, grouped map[string][]models.Lesson) ([]models.ConflictPair, error) {
	values := make([]string, 0, len(grouped))
	for value := range grouped {
		values = append(values, value)
	}
	sort.Strings(values)

	var pairs []models.ConflictPair
	for _, value := range values {
		lessons := grouped[value]
		for i := 0; i < len(lessons); i++ {
			for j := i + 1; j < len(lessons); j++ {
				if lessons[i].Weekday != lessons[j].Weekday {
					continue
				}
				hit, err := clockRangesOverlap(lessons[i].TimeStart, lessons[i].TimeEnd, lessons[j].TimeStart, lessons[j].TimeEnd)
				if err != nil {
					return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson time")
				}
				if !hit {
					continue
				}
				pairs = append(pairs, models.ConflictPair{
					Dimension: dimension,
					Value:     value,
					Weekday:   lessons[i].Weekday,
					Lesson1:   lessons[i],
					Lesson2:   lessons[j],
				})
			}
		}
	}
	return pairs, nil
}
