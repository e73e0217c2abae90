package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// LessonType is a dictionary entry mapping the raw lesson-type markers found
// in imported data onto a display name, color and hour weight.
type LessonType struct {
	ID              string         `db:"id" json:"id"`
	TypeName        string         `db:"type_name" json:"type_name"`
	DBValues        types.JSONText `db:"db_values" json:"db_values"`
	FullName        string         `db:"full_name" json:"full_name"`
	HoursMultiplier int            `db:"hours_multiplier" json:"hours_multiplier"`
	Color           string         `db:"color" json:"color"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// Matches reports whether a raw schedule value belongs to this lesson type.
// Comparison is case-insensitive.
func (t LessonType) Matches(value string) bool {
	if value == "" {
		return false
	}
	var values []string
	if err := json.Unmarshal(t.DBValues, &values); err != nil {
		return false
	}
	for _, v := range values {
		if v != "" && strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}
