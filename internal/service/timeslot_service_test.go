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

type fakeTimeSlotStore struct {
	slots []models.TimeSlot
}

func (f *fakeTimeSlotStore) List(_ context.Context) ([]models.TimeSlot, error) {
	return f.slots, nil
}

func (f *fakeTimeSlotStore) ListActive(_ context.Context) ([]models.TimeSlot, error) {
	var out []models.TimeSlot
	for _, slot := range f.slots {
		if slot.IsActive {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (f *fakeTimeSlotStore) FindByID(_ context.Context, id string) (*models.TimeSlot, error) {
	for _, slot := range f.slots {
		if slot.ID == id {
			found := slot
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTimeSlotStore) Create(_ context.Context, slot *models.TimeSlot) error {
	if slot.ID == "" {
		slot.ID = "generated-id"
	}
	f.slots = append(f.slots, *slot)
	return nil
}

func (f *fakeTimeSlotStore) Update(_ context.Context, slot *models.TimeSlot) error {
	for i := range f.slots {
		if f.slots[i].ID == slot.ID {
			f.slots[i] = *slot
		}
	}
	return nil
}

func (f *fakeTimeSlotStore) Delete(_ context.Context, id string) error {
	for i := range f.slots {
		if f.slots[i].ID == id {
			f.slots = append(f.slots[:i], f.slots[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeTimeSlotStore) Reorder(_ context.Context, orders []models.SlotOrder) error {
	for _, order := range orders {
		for i := range f.slots {
			if f.slots[i].ID == order.ID {
				f.slots[i].SlotNumber = order.SlotNumber
			}
		}
	}
	return nil
}

func (f *fakeTimeSlotStore) MaxSlotNumber(_ context.Context) (int, error) {
	max := 0
	for _, slot := range f.slots {
		if slot.SlotNumber > max {
			max = slot.SlotNumber
		}
	}
	return max, nil
}

func (f *fakeTimeSlotStore) Count(_ context.Context) (int, error) {
	return len(f.slots), nil
}

func TestInitDefaultsSeedsEightSlots(t *testing.T) {
	store := &fakeTimeSlotStore{}
	svc := NewTimeSlotService(store, nil, nil)

	slots, err := svc.InitDefaults(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 8)
	assert.Equal(t, "08:00", slots[0].TimeStart)
	assert.Equal(t, "09:20", slots[0].TimeEnd)
	assert.Equal(t, "18:40", slots[7].TimeStart)
	assert.Equal(t, "20:00", slots[7].TimeEnd)
	for i, slot := range slots {
		assert.Equal(t, i+1, slot.SlotNumber)
		assert.True(t, slot.IsActive)
	}
}

func TestInitDefaultsRefusesNonEmptyCatalog(t *testing.T) {
	store := &fakeTimeSlotStore{slots: []models.TimeSlot{{ID: "slot-1", SlotNumber: 1}}}
	svc := NewTimeSlotService(store, nil, nil)

	_, err := svc.InitDefaults(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyExists.Code, appErrors.FromError(err).Code)
}

func TestCreateTimeSlotAppendsToGrid(t *testing.T) {
	store := &fakeTimeSlotStore{slots: []models.TimeSlot{{ID: "slot-1", SlotNumber: 3}}}
	svc := NewTimeSlotService(store, nil, nil)

	slot, err := svc.Create(context.Background(), CreateTimeSlotRequest{TimeStart: "20:10", TimeEnd: "21:30"})
	require.NoError(t, err)
	assert.Equal(t, 4, slot.SlotNumber)
	assert.True(t, slot.IsActive)
}

func TestCreateTimeSlotRejectsInvertedTimes(t *testing.T) {
	svc := NewTimeSlotService(&fakeTimeSlotStore{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateTimeSlotRequest{TimeStart: "10:00", TimeEnd: "09:00"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUpdateTimeSlotPartial(t *testing.T) {
	store := &fakeTimeSlotStore{slots: []models.TimeSlot{{ID: "slot-1", SlotNumber: 1, TimeStart: "08:00", TimeEnd: "09:20", IsActive: true}}}
	svc := NewTimeSlotService(store, nil, nil)

	inactive := false
	slot, err := svc.Update(context.Background(), "slot-1", UpdateTimeSlotRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, slot.IsActive)
	assert.Equal(t, "08:00", slot.TimeStart)
}

func TestReorderValidation(t *testing.T) {
	svc := NewTimeSlotService(&fakeTimeSlotStore{}, nil, nil)

	err := svc.Reorder(context.Background(), nil)
	require.Error(t, err)

	err = svc.Reorder(context.Background(), []models.SlotOrder{{ID: "", SlotNumber: 1}})
	require.Error(t, err)
}

func TestReorderAppliesNumbers(t *testing.T) {
	store := &fakeTimeSlotStore{slots: []models.TimeSlot{
		{ID: "slot-1", SlotNumber: 1},
		{ID: "slot-2", SlotNumber: 2},
	}}
	svc := NewTimeSlotService(store, nil, nil)

	err := svc.Reorder(context.Background(), []models.SlotOrder{
		{ID: "slot-1", SlotNumber: 2},
		{ID: "slot-2", SlotNumber: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, store.slots[0].SlotNumber)
	assert.Equal(t, 1, store.slots[1].SlotNumber)
}
