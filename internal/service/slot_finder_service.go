package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/akazantsev/timetable-api/internal/models"
	appErrors "github.com/akazantsev/timetable-api/pkg/errors"
)

type slotCatalog interface {
	ListActive(ctx context.Context) ([]models.TimeSlot, error)
}

type finderLessonRepository interface {
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
}

// OptimalSlotsRequest asks for the least conflicting placements of a lesson
// within a week.
type OptimalSlotsRequest struct {
	LessonID   string `json:"lesson_id" validate:"required"`
	Semester   int    `json:"semester" validate:"required,min=1,max=2"`
	WeekNumber int    `json:"week_number" validate:"required,min=1"`
}

// SlotOption is one candidate placement ranked by how much it collides with
// the existing schedule.
type SlotOption struct {
	Weekday        int                              `json:"weekday"`
	Date           string                           `json:"date"`
	TimeStart      string                           `json:"time_start"`
	TimeEnd        string                           `json:"time_end"`
	TimeSlotID     string                           `json:"time_slot_id"`
	Conflicts      []models.Conflict                `json:"conflicts"`
	ConflictCounts map[models.ResourceDimension]int `json:"conflict_counts"`
	TotalConflicts int                              `json:"total_conflicts"`
}

// CurrentPlacement echoes where the lesson sits today.
type CurrentPlacement struct {
	Weekday   int    `json:"weekday"`
	Date      string `json:"date"`
	TimeStart string `json:"time_start"`
	TimeEnd   string `json:"time_end"`
}

// OptimalSlotsResult carries the ranked options for one lesson.
type OptimalSlotsResult struct {
	Lesson  models.Lesson    `json:"lesson"`
	Current CurrentPlacement `json:"current"`
	Options []SlotOption     `json:"options"`
}

// SlotFinderService ranks every weekday and catalog slot combination of a
// week by conflict count for a given lesson.
type SlotFinderService struct {
	lessonRepo finderLessonRepository
	slots      slotCatalog
	conflicts  conflictDetector
	validator  *validator.Validate
	limit      int
	logger     *zap.Logger
	now        func() time.Time
}

// NewSlotFinderService constructs a SlotFinderService. limit caps how many
// ranked options are returned.
func NewSlotFinderService(lessonRepo finderLessonRepository, slots slotCatalog, conflicts conflictDetector, validate *validator.Validate, limit int, logger *zap.Logger) *SlotFinderService {
	if validate == nil {
		validate = validator.New()
	}
	if limit <= 0 {
		limit = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotFinderService{
		lessonRepo: lessonRepo,
		slots:      slots,
		conflicts:  conflicts,
		validator:  validate,
		limit:      limit,
		logger:     logger,
		now:        time.Now,
	}
}

// FindOptimalSlots probes the lesson at every weekday and active catalog
// slot of the requested week and returns the candidates with the fewest
// conflicts. Slots sharing a conflict count keep grid order, Monday first.
func (s *SlotFinderService) FindOptimalSlots(ctx context.Context, req OptimalSlotsRequest) (*OptimalSlotsResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot search payload")
	}

	lesson, err := s.lessonRepo.FindByID(ctx, req.LessonID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}

	slots, err := s.slots.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}

	year := academicYear(s.now(), req.Semester)
	dates := datesForWeek(year, req.WeekNumber)

	options := make([]SlotOption, 0, 6*len(slots))
	for weekday := 1; weekday <= 6; weekday++ {
		date, ok := dates[weekday]
		if !ok {
			continue
		}
		for _, slot := range slots {
			probe := PlacementProbe{
				LessonID:    lesson.ID,
				Semester:    req.Semester,
				WeekNumber:  req.WeekNumber,
				Weekday:     weekday,
				TimeStart:   slot.TimeStart,
				TimeEnd:     slot.TimeEnd,
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

			counts := map[models.ResourceDimension]int{}
			total := 0
			for _, c := range found {
				for _, tag := range c.Tags {
					counts[tag.Dimension]++
					total++
				}
			}

			options = append(options, SlotOption{
				Weekday:        weekday,
				Date:           date.Format("2006-01-02"),
				TimeStart:      slot.TimeStart,
				TimeEnd:        slot.TimeEnd,
				TimeSlotID:     slot.ID,
				Conflicts:      found,
				ConflictCounts: counts,
				TotalConflicts: total,
			})
		}
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].TotalConflicts < options[j].TotalConflicts
	})
	if len(options) > s.limit {
		options = options[:s.limit]
	}

	return &OptimalSlotsResult{
		Lesson: *lesson,
		Current: CurrentPlacement{
			Weekday:   lesson.Weekday,
			Date:      lesson.Date.Format("2006-01-02"),
			TimeStart: lesson.TimeStart,
			TimeEnd:   lesson.TimeEnd,
		},
		Options: options,
	}, nil
}
