package models

import "time"

// Lesson represents one scheduled class occurrence for a group within a
// (semester, week) scope. TeacherName and Auditory may be empty, meaning the
// lesson has no teacher or room assigned yet.
type Lesson struct {
	ID         string    `db:"id" json:"id"`
	Semester   int       `db:"semester" json:"semester"`
	WeekNumber int       `db:"week_number" json:"week_number"`

	GroupName string `db:"group_name" json:"group_name"`
	Course    int    `db:"course" json:"course"`
	Faculty   string `db:"faculty" json:"faculty"`

	Subject    string `db:"subject" json:"subject"`
	LessonType string `db:"lesson_type" json:"lesson_type"`
	// Subgroup 0 means the lesson applies to the whole group.
	Subgroup int `db:"subgroup" json:"subgroup"`

	Date      time.Time `db:"date" json:"date"`
	Weekday   int       `db:"weekday" json:"weekday"`
	TimeStart string    `db:"time_start" json:"time_start"`
	TimeEnd   string    `db:"time_end" json:"time_end"`

	TeacherName string `db:"teacher_name" json:"teacher_name"`
	Auditory    string `db:"auditory" json:"auditory"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LessonFilter describes query params for listing lessons.
type LessonFilter struct {
	Semester    int
	WeekNumber  int
	GroupName   string
	TeacherName string
	Auditory    string
	Search      string
	Page        int
	PageSize    int
}

// ResourceDimension identifies a dimension of the schedule that cannot be
// double-booked.
type ResourceDimension string

const (
	DimensionTeacher  ResourceDimension = "teacher"
	DimensionGroup    ResourceDimension = "group"
	DimensionAuditory ResourceDimension = "auditory"
)

// ResourceQuery selects lessons sharing one resource value on one day within
// a scope, excluding the given ids. Either Date or the
// (Semester, WeekNumber, Weekday) triple narrows the day: Date wins when set.
type ResourceQuery struct {
	Semester   int
	WeekNumber int
	Weekday    int
	Date       *time.Time
	Dimension  ResourceDimension
	Value      string
	ExcludeIDs []string
}

// LessonPlacement carries the schedulable attributes applied by a move or a
// swap. All placements of one mutation commit in a single transaction.
type LessonPlacement struct {
	ID        string    `db:"id"`
	Date      time.Time `db:"date"`
	Weekday   int       `db:"weekday"`
	TimeStart string    `db:"time_start"`
	TimeEnd   string    `db:"time_end"`
	Auditory  string    `db:"auditory"`
}

// UsageStats aggregates lesson counts per resource for a (semester, week).
type UsageStats struct {
	TotalLessons  int          `json:"total_lessons"`
	TeacherStats  []UsageCount `json:"teacher_stats"`
	GroupStats    []UsageCount `json:"group_stats"`
	AuditoryStats []UsageCount `json:"auditory_stats"`
	WeekdayStats  []UsageCount `json:"weekday_stats"`
	TimeStats     []UsageCount `json:"time_stats"`
}

// UsageCount pairs a resource value with its lesson count.
type UsageCount struct {
	Value string `db:"value" json:"value"`
	Count int    `db:"count" json:"count"`
}

// GroupInfo is a distinct group extracted from the schedule.
type GroupInfo struct {
	GroupName string `db:"group_name" json:"group_name"`
	Course    int    `db:"course" json:"course"`
	Faculty   string `db:"faculty" json:"faculty"`
}

// WeekSchedule is a per-resource weekly view together with the concrete
// dates of the requested week keyed by weekday (1=Monday .. 6=Saturday).
type WeekSchedule struct {
	Lessons []Lesson       `json:"schedule"`
	Dates   map[int]string `json:"dates"`
}
