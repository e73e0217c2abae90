package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/akazantsev/timetable-api/internal/models"
	appErrors "github.com/akazantsev/timetable-api/pkg/errors"
)

type lessonTypeRepository interface {
	List(ctx context.Context) ([]models.LessonType, error)
	FindByID(ctx context.Context, id string) (*models.LessonType, error)
	Create(ctx context.Context, lessonType *models.LessonType) error
	Update(ctx context.Context, lessonType *models.LessonType) error
	Delete(ctx context.Context, id string) error
}

// CreateLessonTypeRequest carries a new dictionary entry.
type CreateLessonTypeRequest struct {
	TypeName        string   `json:"type_name" validate:"required"`
	DBValues        []string `json:"db_values" validate:"required,min=1"`
	FullName        string   `json:"full_name"`
	HoursMultiplier int      `json:"hours_multiplier" validate:"min=0"`
	Color           string   `json:"color"`
}

// UpdateLessonTypeRequest carries a partial dictionary update.
type UpdateLessonTypeRequest struct {
	TypeName        *string  `json:"type_name"`
	DBValues        []string `json:"db_values" validate:"omitempty,min=1"`
	FullName        *string  `json:"full_name"`
	HoursMultiplier *int     `json:"hours_multiplier" validate:"omitempty,min=0"`
	Color           *string  `json:"color"`
}

// LessonTypeService manages the lesson-type dictionary.
type LessonTypeService struct {
	repo      lessonTypeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLessonTypeService constructs a LessonTypeService.
func NewLessonTypeService(repo lessonTypeRepository, validate *validator.Validate, logger *zap.Logger) *LessonTypeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonTypeService{repo: repo, validator: validate, logger: logger}
}

// List returns all dictionary entries.
func (s *LessonTypeService) List(ctx context.Context) ([]models.LessonType, error) {
	lessonTypes, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lesson types")
	}
	return lessonTypes, nil
}

// Create adds a dictionary entry.
func (s *LessonTypeService) Create(ctx context.Context, req CreateLessonTypeRequest) (*models.LessonType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson type payload")
	}

	values, err := json.Marshal(req.DBValues)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode db values")
	}

	multiplier := req.HoursMultiplier
	if multiplier == 0 {
		multiplier = 2
	}
	color := req.Color
	if color == "" {
		color = "#E9F0FC"
	}

	lessonType := &models.LessonType{
		TypeName:        req.TypeName,
		DBValues:        values,
		FullName:        req.FullName,
		HoursMultiplier: multiplier,
		Color:           color,
	}
	if err := s.repo.Create(ctx, lessonType); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson type")
	}
	return lessonType, nil
}

// Update applies a partial dictionary update.
func (s *LessonTypeService) Update(ctx context.Context, id string, req UpdateLessonTypeRequest) (*models.LessonType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson type payload")
	}
	if req.TypeName != nil && *req.TypeName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "type_name cannot be empty")
	}

	lessonType, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson type")
	}

	if req.TypeName != nil {
		lessonType.TypeName = *req.TypeName
	}
	if req.DBValues != nil {
		values, err := json.Marshal(req.DBValues)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode db values")
		}
		lessonType.DBValues = values
	}
	if req.FullName != nil {
		lessonType.FullName = *req.FullName
	}
	if req.HoursMultiplier != nil {
		lessonType.HoursMultiplier = *req.HoursMultiplier
	}
	if req.Color != nil {
		lessonType.Color = *req.Color
	}

	if err := s.repo.Update(ctx, lessonType); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lesson type")
	}
	return lessonType, nil
}

// Delete removes a dictionary entry.
func (s *LessonTypeService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lesson type not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson type")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson type")
	}
	return nil
}
