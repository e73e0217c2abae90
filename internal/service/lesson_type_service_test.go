package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akazantsev/timetable-api/internal/models"
	appErrors "github.com/akazantsev/timetable-api/pkg/errors"
)

type fakeLessonTypeStore struct {
	lessonTypes []models.LessonType
}

func (f *fakeLessonTypeStore) List(_ context.Context) ([]models.LessonType, error) {
	return f.lessonTypes, nil
}

func (f *fakeLessonTypeStore) FindByID(_ context.Context, id string) (*models.LessonType, error) {
	for _, lt := range f.lessonTypes {
		if lt.ID == id {
			found := lt
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeLessonTypeStore) Create(_ context.Context, lessonType *models.LessonType) error {
	if lessonType.ID == "" {
		lessonType.ID = "generated-id"
	}
	f.lessonTypes = append(f.lessonTypes, *lessonType)
	return nil
}

func (f *fakeLessonTypeStore) Update(_ context.Context, lessonType *models.LessonType) error {
	for i := range f.lessonTypes {
		if f.lessonTypes[i].ID == lessonType.ID {
			f.lessonTypes[i] = *lessonType
		}
	}
	return nil
}

func (f *fakeLessonTypeStore) Delete(_ context.Context, id string) error {
	for i := range f.lessonTypes {
		if f.lessonTypes[i].ID == id {
			f.lessonTypes = append(f.lessonTypes[:i], f.lessonTypes[i+1:]...)
			break
		}
	}
	return nil
}

func TestCreateLessonTypeDefaults(t *testing.T) {
	store := &fakeLessonTypeStore{}
	svc := NewLessonTypeService(store, nil, nil)

	lessonType, err := svc.Create(context.Background(), CreateLessonTypeRequest{
		TypeName: "lecture",
		DBValues: []string{"lec", "lecture"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, lessonType.HoursMultiplier)
	assert.Equal(t, "#E9F0FC", lessonType.Color)
	assert.True(t, lessonType.Matches("LEC"))
	assert.False(t, lessonType.Matches("lab"))
}

func TestCreateLessonTypeRequiresValues(t *testing.T) {
	svc := NewLessonTypeService(&fakeLessonTypeStore{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateLessonTypeRequest{TypeName: "lecture"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUpdateLessonTypeRejectsEmptyName(t *testing.T) {
	store := &fakeLessonTypeStore{}
	svc := NewLessonTypeService(store, nil, nil)
	created, err := svc.Create(context.Background(), CreateLessonTypeRequest{
		TypeName: "lab",
		DBValues: []string{"lab"},
	})
	require.NoError(t, err)

	empty := ""
	_, err = svc.Update(context.Background(), created.ID, UpdateLessonTypeRequest{TypeName: &empty})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	name := "laboratory work"
	updated, err := svc.Update(context.Background(), created.ID, UpdateLessonTypeRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "laboratory work", updated.FullName)
}

func TestUpdateLessonTypeNotFound(t *testing.T) {
	svc := NewLessonTypeService(&fakeLessonTypeStore{}, nil, nil)

	name := "seminar"
	_, err := svc.Update(context.Background(), "missing", UpdateLessonTypeRequest{TypeName: &name})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
