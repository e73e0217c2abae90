package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/akazantsev/timetable-api/internal/models"
	appErrors "github.com/akazantsev/timetable-api/pkg/errors"
)

type timeSlotRepository interface {
	List(ctx context.Context) ([]models.TimeSlot, error)
	ListActive(ctx context.Context) ([]models.TimeSlot, error)
	FindByID(ctx context.Context, id string) (*models.TimeSlot, error)
	Create(ctx context.Context, slot *models.TimeSlot) error
	Update(ctx context.Context, slot *models.TimeSlot) error
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, orders []models.SlotOrder) error
	MaxSlotNumber(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

// defaultTimeSlots is the canonical eight-pair grid seeded by InitDefaults.
var defaultTimeSlots = [][2]string{
	{"08:00", "09:20"},
	{"09:30", "10:50"},
	{"11:00", "12:20"},
	{"12:40", "14:00"},
	{"14:10", "15:30"},
	{"15:40", "17:00"},
	{"17:10", "18:30"},
	{"18:40", "20:00"},
}

// CreateTimeSlotRequest carries a new catalog slot. SlotNumber 0 appends to
// the end of the grid.
type CreateTimeSlotRequest struct {
	SlotNumber int    `json:"slot_number" validate:"min=0"`
	TimeStart  string `json:"time_start" validate:"required"`
	TimeEnd    string `json:"time_end" validate:"required"`
	IsActive   *bool  `json:"is_active"`
}

// UpdateTimeSlotRequest carries a partial slot update.
type UpdateTimeSlotRequest struct {
	SlotNumber *int    `json:"slot_number" validate:"omitempty,min=1"`
	TimeStart  *string `json:"time_start"`
	TimeEnd    *string `json:"time_end"`
	IsActive   *bool   `json:"is_active"`
}

// TimeSlotService manages the canonical lesson grid.
type TimeSlotService struct {
	repo      timeSlotRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimeSlotService constructs a TimeSlotService.
func NewTimeSlotService(repo timeSlotRepository, validate *validator.Validate, logger *zap.Logger) *TimeSlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeSlotService{repo: repo, validator: validate, logger: logger}
}

// List returns the full catalog in grid order.
func (s *TimeSlotService) List(ctx context.Context) ([]models.TimeSlot, error) {
	slots, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time slots")
	}
	return slots, nil
}

// Create adds a catalog slot, appending it to the grid when no slot number
// is given.
func (s *TimeSlotService) Create(ctx context.Context, req CreateTimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}
	if err := s.validateTimes(req.TimeStart, req.TimeEnd); err != nil {
		return nil, err
	}

	slotNumber := req.SlotNumber
	if slotNumber == 0 {
		max, err := s.repo.MaxSlotNumber(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve slot number")
		}
		slotNumber = max + 1
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	slot := &models.TimeSlot{
		SlotNumber: slotNumber,
		TimeStart:  req.TimeStart,
		TimeEnd:    req.TimeEnd,
		IsActive:   active,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create time slot")
	}
	return slot, nil
}

// Update applies a partial slot update.
func (s *TimeSlotService) Update(ctx context.Context, id string, req UpdateTimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}

	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}

	if req.SlotNumber != nil {
		slot.SlotNumber = *req.SlotNumber
	}
	if req.TimeStart != nil {
		slot.TimeStart = *req.TimeStart
	}
	if req.TimeEnd != nil {
		slot.TimeEnd = *req.TimeEnd
	}
	if req.IsActive != nil {
		slot.IsActive = *req.IsActive
	}
	if err := s.validateTimes(slot.TimeStart, slot.TimeEnd); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update time slot")
	}
	return slot, nil
}

// Delete removes a catalog slot.
func (s *TimeSlotService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete time slot")
	}
	return nil
}

// Reorder applies new grid positions to the listed slots.
func (s *TimeSlotService) Reorder(ctx context.Context, orders []models.SlotOrder) error {
	if len(orders) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "slot order list is empty")
	}
	for _, order := range orders {
		if err := s.validator.Struct(order); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot order entry")
		}
	}
	if err := s.repo.Reorder(ctx, orders); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reorder time slots")
	}
	return nil
}

// InitDefaults seeds the canonical eight-slot grid. It refuses to run on a
// non-empty catalog.
func (s *TimeSlotService) InitDefaults(ctx context.Context) ([]models.TimeSlot, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count time slots")
	}
	if count > 0 {
		return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "time slots already initialized")
	}

	slots := make([]models.TimeSlot, 0, len(defaultTimeSlots))
	for i, pair := range defaultTimeSlots {
		slot := models.TimeSlot{
			SlotNumber: i + 1,
			TimeStart:  pair[0],
			TimeEnd:    pair[1],
			IsActive:   true,
		}
		if err := s.repo.Create(ctx, &slot); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed time slots")
		}
		slots = append(slots, slot)
	}

	s.logger.Info("default time slots initialized", zap.Int("count", len(slots)))
	return slots, nil
}

func (s *TimeSlotService) validateTimes(start, end string) error {
	startMin, err := parseClock(start)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid time_start, use HH:MM")
	}
	endMin, err := parseClock(end)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid time_end, use HH:MM")
	}
	if endMin <= startMin {
		return appErrors.Clone(appErrors.ErrValidation, "time_end must be after time_start")
	}
	return nil
}
