package models

import "time"

// TimeSlot is an admin-managed catalog entry defining the canonical lesson
// grid. Lessons are not required to use catalog times; the catalog drives the
// UI grid, exports and optimal-slot search.
type TimeSlot struct {
	ID         string    `db:"id" json:"id"`
	SlotNumber int       `db:"slot_number" json:"slot_number"`
	TimeStart  string    `db:"time_start" json:"time_start"`
	TimeEnd    string    `db:"time_end" json:"time_end"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// SlotOrder assigns a slot_number to a slot during reordering.
type SlotOrder struct {
	ID         string `json:"id" validate:"required"`
	SlotNumber int    `json:"slot_number" validate:"required,min=1"`
}
