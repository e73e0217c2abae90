package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/akazantsev/timetable-api/internal/models"
)

const lessonTypeColumns = "id, type_name, db_values, full_name, hours_multiplier, color, created_at, updated_at"

// LessonTypeRepository provides persistence for the lesson-type dictionary.
type LessonTypeRepository struct {
	db *sqlx.DB
}

// NewLessonTypeRepository creates a new lesson-type repository.
func NewLessonTypeRepository(db *sqlx.DB) *LessonTypeRepository {
	return &LessonTypeRepository{db: db}
}

// List returns all lesson types ordered by name.
func (r *LessonTypeRepository) List(ctx context.Context) ([]models.LessonType, error) {
	query := fmt.Sprintf("SELECT %s FROM lesson_types ORDER BY type_name ASC", lessonTypeColumns)
	var lessonTypes []models.LessonType
	if err := r.db.SelectContext(ctx, &lessonTypes, query); err != nil {
		return nil, fmt.Errorf("list lesson types: %w", err)
	}
	return lessonTypes, nil
}

// FindByID loads a lesson type by id.
func (r *LessonTypeRepository) FindByID(ctx context.Context, id string) (*models.LessonType, error) {
	query := fmt.Sprintf("SELECT %s FROM lesson_types WHERE id = $1", lessonTypeColumns)
	var lessonType models.LessonType
	if err := r.db.GetContext(ctx, &lessonType, query, id); err != nil {
		return nil, err
	}
	return &lessonType, nil
}

// FindByName loads a lesson type by its display name.
func (r *LessonTypeRepository) FindByName(ctx context.Context, typeName string) (*models.LessonType, error) {
	query := fmt.Sprintf("SELECT %s FROM lesson_types WHERE type_name = $1", lessonTypeColumns)
	var lessonType models.LessonType
	if err := r.db.GetContext(ctx, &lessonType, query, typeName); err != nil {
		return nil, err
	}
	return &lessonType, nil
}

// Create stores a new lesson type.
func (r *LessonTypeRepository) Create(ctx context.Context, lessonType *models.LessonType) error {
	if lessonType.ID == "" {
		lessonType.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lessonType.CreatedAt.IsZero() {
		lessonType.CreatedAt = now
	}
	lessonType.UpdatedAt = now

	const query = `INSERT INTO lesson_types (id, type_name, db_values, full_name, hours_multiplier, color, created_at, updated_at) VALUES (:id, :type_name, :db_values, :full_name, :hours_multiplier, :color, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lessonType); err != nil {
		return fmt.Errorf("create lesson type: %w", err)
	}
	return nil
}

// Update modifies a lesson type.
func (r *LessonTypeRepository) Update(ctx context.Context, lessonType *models.LessonType) error {
	lessonType.UpdatedAt = time.Now().UTC()
	const query = `UPDATE lesson_types SET type_name = :type_name, db_values = :db_values, full_name = :full_name, hours_multiplier = :hours_multiplier, color = :color, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, lessonType); err != nil {
		return fmt.Errorf("update lesson type: %w", err)
	}
	return nil
}

// Delete removes a lesson type.
func (r *LessonTypeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM lesson_types WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete lesson type: %w", err)
	}
	return nil
}
