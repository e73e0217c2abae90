package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/akazantsev/timetable-api/internal/models"
)

const timeSlotColumns = "id, slot_number, time_start, time_end, is_active, created_at, updated_at"

// TimeSlotRepository provides persistence for the time-slot catalog.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new time-slot repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// List returns all catalog slots ordered by slot number.
func (r *TimeSlotRepository) List(ctx context.Context) ([]models.TimeSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM time_slots ORDER BY slot_number ASC", timeSlotColumns)
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

// ListActive returns only the active slots ordered by slot number.
func (r *TimeSlotRepository) ListActive(ctx context.Context) ([]models.TimeSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM time_slots WHERE is_active = TRUE ORDER BY slot_number ASC", timeSlotColumns)
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list active time slots: %w", err)
	}
	return slots, nil
}

// FindByID loads a slot by id.
func (r *TimeSlotRepository) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM time_slots WHERE id = $1", timeSlotColumns)
	var slot models.TimeSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// Create stores a new catalog slot.
func (r *TimeSlotRepository) Create(ctx context.Context, slot *models.TimeSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now

	const query = `INSERT INTO time_slots (id, slot_number, time_start, time_end, is_active, created_at, updated_at) VALUES (:id, :slot_number, :time_start, :time_end, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}
	return nil
}

// Update modifies a catalog slot.
func (r *TimeSlotRepository) Update(ctx context.Context, slot *models.TimeSlot) error {
	slot.UpdatedAt = time.Now().UTC()
	const query = `UPDATE time_slots SET slot_number = :slot_number, time_start = :time_start, time_end = :time_end, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("update time slot: %w", err)
	}
	return nil
}

// Delete removes a catalog slot.
func (r *TimeSlotRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM time_slots WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete time slot: %w", err)
	}
	return nil
}

// Reorder applies new slot numbers to the listed slots within one
// transaction.
func (r *TimeSlotRepository) Reorder(ctx context.Context, orders []models.SlotOrder) error {
	if len(orders) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin slot reorder: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, order := range orders {
		if _, err = tx.ExecContext(ctx,
			`UPDATE time_slots SET slot_number = $1, updated_at = $2 WHERE id = $3`,
			order.SlotNumber, now, order.ID,
		); err != nil {
			return fmt.Errorf("reorder slot %s: %w", order.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit slot reorder: %w", err)
	}
	return nil
}

// MaxSlotNumber returns the highest slot number in the catalog, 0 when the
// catalog is empty.
func (r *TimeSlotRepository) MaxSlotNumber(ctx context.Context) (int, error) {
	var max int
	if err := r.db.GetContext(ctx, &max, `SELECT COALESCE(MAX(slot_number), 0) FROM time_slots`); err != nil {
		return 0, fmt.Errorf("max slot number: %w", err)
	}
	return max, nil
}

// Count returns the number of catalog slots.
func (r *TimeSlotRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM time_slots`); err != nil {
		return 0, fmt.Errorf("count time slots: %w", err)
	}
	return count, nil
}
