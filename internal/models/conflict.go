package models

// ConflictTag names one resource dimension shared by two colliding lessons
// together with the contested value.
type ConflictTag struct {
	Dimension ResourceDimension `json:"dimension"`
	Value     string            `json:"value"`
}

// Conflict describes an existing lesson that collides with a candidate
// placement. A lesson colliding on several dimensions (same teacher AND same
// group) is reported once with multiple tags, never as separate entries.
type Conflict struct {
	LessonID    string `json:"lesson_id"`
	Subject     string `json:"subject"`
	GroupName   string `json:"group_name"`
	TeacherName string `json:"teacher_name"`
	Auditory    string `json:"auditory"`
	Weekday     int    `json:"weekday"`
	Date        string `json:"date"`
	TimeStart   string `json:"time_start"`
	TimeEnd     string `json:"time_end"`

	Tags []ConflictTag `json:"tags"`
}

// HasDimension reports whether the conflict carries the given dimension tag.
func (c Conflict) HasDimension(d ResourceDimension) bool {
	for _, tag := range c.Tags {
		if tag.Dimension == d {
			return true
		}
	}
	return false
}

// ConflictReport groups the conflicts one mutated lesson would cause at its
// requested placement.
type ConflictReport struct {
	LessonID  string     `json:"lesson_id"`
	Subject   string     `json:"subject"`
	Conflicts []Conflict `json:"conflicts"`
}

// ScheduleConflictError is returned when a mutation is rejected because the
// requested placement double-books a resource and force was not set. The
// store is left untouched.
type ScheduleConflictError struct {
	Message string           `json:"message"`
	Reports []ConflictReport `json:"reports"`
}

// Error implements the error interface.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// TotalConflicts counts conflicts across all reports.
func (e *ScheduleConflictError) TotalConflicts() int {
	if e == nil {
		return 0
	}
	total := 0
	for _, report := range e.Reports {
		total += len(report.Conflicts)
	}
	return total
}

// ConflictPair is one colliding lesson pair found by the week-level audit.
type ConflictPair struct {
	Dimension ResourceDimension `json:"dimension"`
	Value     string            `json:"value"`
	Weekday   int               `json:"weekday"`
	Lesson1   Lesson            `json:"lesson1"`
	Lesson2   Lesson            `json:"lesson2"`
}

// WeekConflictReport summarises every collision within a (semester, week).
type WeekConflictReport struct {
	TotalConflicts    int                       `json:"total_conflicts"`
	TeacherConflicts  []ConflictPair            `json:"teacher_conflicts"`
	GroupConflicts    []ConflictPair            `json:"group_conflicts"`
	AuditoryConflicts []ConflictPair            `json:"auditory_conflicts"`
	CountsByType      map[ResourceDimension]int `json:"counts_by_type"`
}

// OccupiedSlot is an availability-probe hit: a lesson occupying a slot that
// clashes with at least one requested resource.
type OccupiedSlot struct {
	Weekday     int           `json:"weekday"`
	Date        string        `json:"date"`
	TimeStart   string        `json:"time_start"`
	TimeEnd     string        `json:"time_end"`
	Subject     string        `json:"subject"`
	GroupName   string        `json:"group_name"`
	TeacherName string        `json:"teacher_name"`
	Tags        []ConflictTag `json:"tags"`
}
