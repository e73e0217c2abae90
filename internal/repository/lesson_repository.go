package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/akazantsev/timetable-api/internal/models"
)

const lessonColumns = "id, semester, week_number, group_name, course, faculty, subject, lesson_type, subgroup, date, weekday, time_start, time_end, teacher_name, auditory, created_at, updated_at"

var resourceColumns = map[models.ResourceDimension]string{
	models.DimensionTeacher:  "teacher_name",
	models.DimensionGroup:    "group_name",
	models.DimensionAuditory: "auditory",
}

// LessonRepository provides persistence for schedule entries.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository creates a new lesson repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// List returns lessons with optional filtering and pagination, ordered by
// weekday and start time.
func (r *LessonRepository) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error) {
	base := "FROM lessons WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Semester > 0 {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.WeekNumber > 0 {
		conditions = append(conditions, fmt.Sprintf("week_number = $%d", len(args)+1))
		args = append(args, filter.WeekNumber)
	}
	if filter.GroupName != "" {
		conditions = append(conditions, fmt.Sprintf("group_name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.GroupName+"%")
	}
	if filter.TeacherName != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.TeacherName+"%")
	}
	if filter.Auditory != "" {
		conditions = append(conditions, fmt.Sprintf("auditory ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Auditory+"%")
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(subject ILIKE $%d OR group_name ILIKE $%d OR teacher_name ILIKE $%d OR auditory ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 100
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY weekday ASC, time_start ASC LIMIT %d OFFSET %d", lessonColumns, base, size, offset)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list lessons: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count lessons: %w", err)
	}

	return lessons, total, nil
}

// FindByID loads a lesson by id.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE id = $1", lessonColumns)
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListByResource returns all lessons that share the queried resource value
// on the queried date, weekday or whole week, excluding the given ids. Time
// overlap is decided by the caller.
func (r *LessonRepository) ListByResource(ctx context.Context, q models.ResourceQuery) ([]models.Lesson, error) {
	column, ok := resourceColumns[q.Dimension]
	if !ok {
		return nil, fmt.Errorf("unknown resource dimension %q", q.Dimension)
	}

	var conditions []string
	var args []interface{}

	if q.Date != nil {
		conditions = append(conditions, fmt.Sprintf("date = $%d", len(args)+1))
		args = append(args, *q.Date)
	} else {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, q.Semester)
		conditions = append(conditions, fmt.Sprintf("week_number = $%d", len(args)+1))
		args = append(args, q.WeekNumber)
		if q.Weekday > 0 {
			conditions = append(conditions, fmt.Sprintf("weekday = $%d", len(args)+1))
			args = append(args, q.Weekday)
		}
	}

	conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)+1))
	args = append(args, q.Value)

	for _, id := range q.ExcludeIDs {
		conditions = append(conditions, fmt.Sprintf("id <> $%d", len(args)+1))
		args = append(args, id)
	}

	query := fmt.Sprintf("SELECT %s FROM lessons WHERE %s ORDER BY time_start ASC", lessonColumns, strings.Join(conditions, " AND "))
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, fmt.Errorf("list lessons by %s: %w", column, err)
	}
	return lessons, nil
}

// ListByGroupSlot resolves the source selector of a batch move: every lesson
// of the group starting at the given weekday/time within the scope.
func (r *LessonRepository) ListByGroupSlot(ctx context.Context, groupName string, semester, weekNumber, weekday int, timeStart string) ([]models.Lesson, error) {
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE group_name = $1 AND semester = $2 AND week_number = $3 AND weekday = $4 AND time_start = $5", lessonColumns)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, groupName, semester, weekNumber, weekday, timeStart); err != nil {
		return nil, fmt.Errorf("list lessons by group slot: %w", err)
	}
	return lessons, nil
}

// ListByScope returns every lesson of a (semester, week) pair.
func (r *LessonRepository) ListByScope(ctx context.Context, semester, weekNumber int) ([]models.Lesson, error) {
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE semester = $1 AND week_number = $2 ORDER BY weekday ASC, time_start ASC", lessonColumns)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, semester, weekNumber); err != nil {
		return nil, fmt.Errorf("list lessons by scope: %w", err)
	}
	return lessons, nil
}

// ListWeekByResource returns the weekly view for one exact resource value.
func (r *LessonRepository) ListWeekByResource(ctx context.Context, dimension models.ResourceDimension, value string, semester, weekNumber int) ([]models.Lesson, error) {
	column, ok := resourceColumns[dimension]
	if !ok {
		return nil, fmt.Errorf("unknown resource dimension %q", dimension)
	}
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE %s = $1 AND semester = $2 AND week_number = $3 ORDER BY weekday ASC, time_start ASC", lessonColumns, column)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, value, semester, weekNumber); err != nil {
		return nil, fmt.Errorf("list week by %s: %w", column, err)
	}
	return lessons, nil
}

// ListByDate returns every lesson scheduled on the given calendar date.
func (r *LessonRepository) ListByDate(ctx context.Context, date time.Time) ([]models.Lesson, error) {
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE date = $1 ORDER BY time_start ASC", lessonColumns)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, date); err != nil {
		return nil, fmt.Errorf("list lessons by date: %w", err)
	}
	return lessons, nil
}

// Create stores a new lesson record.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = now
	}
	lesson.UpdatedAt = now

	const query = `INSERT INTO lessons (id, semester, week_number, group_name, course, faculty, subject, lesson_type, subgroup, date, weekday, time_start, time_end, teacher_name, auditory, created_at, updated_at) VALUES (:id, :semester, :week_number, :group_name, :course, :faculty, :subject, :lesson_type, :subgroup, :date, :weekday, :time_start, :time_end, :teacher_name, :auditory, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lesson); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// Update modifies a lesson record.
func (r *LessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	lesson.UpdatedAt = time.Now().UTC()
	const query = `UPDATE lessons SET semester = :semester, week_number = :week_number, group_name = :group_name, course = :course, faculty = :faculty, subject = :subject, lesson_type = :lesson_type, subgroup = :subgroup, date = :date, weekday = :weekday, time_start = :time_start, time_end = :time_end, teacher_name = :teacher_name, auditory = :auditory, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, lesson); err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	return nil
}

// UpdatePlacements applies the schedulable attributes of a move or swap to
// every listed lesson within one transaction. Either all placements commit
// or none do.
func (r *LessonRepository) UpdatePlacements(ctx context.Context, placements []models.LessonPlacement) error {
	if len(placements) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin placement update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for i := range placements {
		placement := placements[i]
		if _, err = tx.ExecContext(ctx,
			`UPDATE lessons SET date = $1, weekday = $2, time_start = $3, time_end = $4, auditory = $5, updated_at = $6 WHERE id = $7`,
			placement.Date, placement.Weekday, placement.TimeStart, placement.TimeEnd, placement.Auditory, now, placement.ID,
		); err != nil {
			return fmt.Errorf("apply placement for %s: %w", placement.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit placement update: %w", err)
	}
	return nil
}

// Delete removes a lesson by id.
func (r *LessonRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return nil
}

// DeleteByWeek removes every lesson of a (semester, week) pair and reports
// how many rows were deleted.
func (r *LessonRepository) DeleteByWeek(ctx context.Context, semester, weekNumber int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lessons WHERE semester = $1 AND week_number = $2`, semester, weekNumber)
	if err != nil {
		return 0, fmt.Errorf("delete lessons by week: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted lessons: %w", err)
	}
	return deleted, nil
}

// DistinctGroups lists the groups present in the schedule.
func (r *LessonRepository) DistinctGroups(ctx context.Context, search string) ([]models.GroupInfo, error) {
	query := "SELECT DISTINCT group_name, course, faculty FROM lessons"
	var args []interface{}
	if search != "" {
		query += " WHERE group_name ILIKE $1"
		args = append(args, "%"+search+"%")
	}
	query += " ORDER BY group_name ASC"

	var groups []models.GroupInfo
	if err := r.db.SelectContext(ctx, &groups, query, args...); err != nil {
		return nil, fmt.Errorf("list distinct groups: %w", err)
	}
	return groups, nil
}

// DistinctTeachers lists the teachers present in the schedule.
func (r *LessonRepository) DistinctTeachers(ctx context.Context, search string) ([]string, error) {
	return r.distinctValues(ctx, "teacher_name", search)
}

// DistinctAuditories lists the rooms present in the schedule.
func (r *LessonRepository) DistinctAuditories(ctx context.Context, search string) ([]string, error) {
	return r.distinctValues(ctx, "auditory", search)
}

func (r *LessonRepository) distinctValues(ctx context.Context, column, search string) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT %s FROM lessons WHERE %s <> ''", column, column)
	var args []interface{}
	if search != "" {
		query += fmt.Sprintf(" AND %s ILIKE $1", column)
		args = append(args, "%"+search+"%")
	}
	query += fmt.Sprintf(" ORDER BY %s ASC", column)

	var values []string
	if err := r.db.SelectContext(ctx, &values, query, args...); err != nil {
		return nil, fmt.Errorf("list distinct %s: %w", column, err)
	}
	return values, nil
}

// UsageStats aggregates lesson counts per teacher, group, room, weekday and
// start time for a (semester, week) pair.
func (r *LessonRepository) UsageStats(ctx context.Context, semester, weekNumber int) (*models.UsageStats, error) {
	stats := &models.UsageStats{}

	if err := r.db.GetContext(ctx, &stats.TotalLessons, `SELECT COUNT(*) FROM lessons WHERE semester = $1 AND week_number = $2`, semester, weekNumber); err != nil {
		return nil, fmt.Errorf("count lessons: %w", err)
	}

	grouped := []struct {
		column string
		filter string
		dest   *[]models.UsageCount
	}{
		{"teacher_name", " AND teacher_name <> ''", &stats.TeacherStats},
		{"group_name", "", &stats.GroupStats},
		{"auditory", " AND auditory <> ''", &stats.AuditoryStats},
		{"weekday::text", "", &stats.WeekdayStats},
		{"time_start", "", &stats.TimeStats},
	}

	for _, g := range grouped {
		query := fmt.Sprintf(`SELECT %s AS value, COUNT(*) AS count FROM lessons WHERE semester = $1 AND week_number = $2%s GROUP BY value ORDER BY value ASC`, g.column, g.filter)
		if err := r.db.SelectContext(ctx, g.dest, query, semester, weekNumber); err != nil {
			return nil, fmt.Errorf("aggregate %s usage: %w", g.column, err)
		}
	}

	return stats, nil
}
