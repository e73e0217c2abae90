package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/akazantsev/timetable-api/internal/models"
	appErrors "github.com/akazantsev/timetable-api/pkg/errors"
	"github.com/akazantsev/timetable-api/pkg/export"
)

type exportLessonRepository interface {
	ListWeekByResource(ctx context.Context, dimension models.ResourceDimension, value string, semester, weekNumber int) ([]models.Lesson, error)
}

var weekdayNames = [7]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// ExportRequest asks for a weekly schedule file of one resource.
type ExportRequest struct {
	Dimension  models.ResourceDimension `validate:"required,oneof=group teacher auditory"`
	Value      string                   `validate:"required"`
	Semester   int                      `validate:"required,min=1,max=2"`
	WeekNumber int                      `validate:"required,min=1"`
	Format     string                   `validate:"required,oneof=xlsx csv pdf"`
}

// ExportFile is a rendered schedule document.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders weekly schedule grids as xlsx, csv or pdf.
type ExportService struct {
	lessonRepo exportLessonRepository
	slots      slotCatalog
	xlsx       *export.XLSXExporter
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(lessonRepo exportLessonRepository, slots slotCatalog, xlsx *export.XLSXExporter, csv *export.CSVExporter, pdf *export.PDFExporter, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		lessonRepo: lessonRepo,
		slots:      slots,
		xlsx:       xlsx,
		csv:        csv,
		pdf:        pdf,
		validator:  validate,
		logger:     logger,
		now:        time.Now,
	}
}

// Export renders the weekly schedule of one resource in the requested
// format.
func (s *ExportService) Export(ctx context.Context, req ExportRequest) (*ExportFile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export request")
	}

	lessons, err := s.lessonRepo.ListWeekByResource(ctx, req.Dimension, req.Value, req.Semester, req.WeekNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week schedule")
	}

	slots, err := s.slots.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}

	dates := datesForWeek(academicYear(s.now(), req.Semester), req.WeekNumber)
	title := fmt.Sprintf("%s - semester %d, week %d", req.Value, req.Semester, req.WeekNumber)
	grid := s.buildGrid(title, req.Dimension, lessons, slots, dates)

	basename := fmt.Sprintf("%s_%s_schedule_%d_%d", req.Dimension, sanitizeFilename(req.Value), req.Semester, req.WeekNumber)

	switch req.Format {
	case "xlsx":
		data, err := s.xlsx.Render(grid)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render xlsx")
		}
		return &ExportFile{
			Filename:    basename + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	case "csv":
		data, err := s.csv.Render(gridToDataset(grid))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Filename: basename + ".csv", ContentType: "text/csv", Data: data}, nil
	case "pdf":
		data, err := s.pdf.Render(gridToDataset(grid), grid.Title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Filename: basename + ".pdf", ContentType: "application/pdf", Data: data}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
}

// buildGrid lays lessons out on the slot-by-weekday grid. Lessons whose
// start time is not in the catalog get extra rows below the grid.
func (s *ExportService) buildGrid(title string, dimension models.ResourceDimension, lessons []models.Lesson, slots []models.TimeSlot, dates map[int]time.Time) export.Grid {
	columns := make([]string, 0, 6)
	for weekday := 1; weekday <= 6; weekday++ {
		header := weekdayNames[weekday]
		if date, ok := dates[weekday]; ok {
			header = fmt.Sprintf("%s %s", header, date.Format("02.01"))
		}
		columns = append(columns, header)
	}

	rowIndex := make(map[string]int, len(slots))
	rows := make([]string, 0, len(slots))
	for _, slot := range slots {
		rowIndex[slot.TimeStart] = len(rows)
		rows = append(rows, fmt.Sprintf("%s-%s", slot.TimeStart, slot.TimeEnd))
	}

	cells := make([][]string, len(rows))
	for i := range cells {
		cells[i] = make([]string, 6)
	}

	var extras []models.Lesson
	for _, lesson := range lessons {
		if lesson.Weekday < 1 || lesson.Weekday > 6 {
			continue
		}
		row, ok := rowIndex[lesson.TimeStart]
		if !ok {
			extras = append(extras, lesson)
			continue
		}
		col := lesson.Weekday - 1
		text := describeLesson(dimension, lesson)
		if cells[row][col] != "" {
			cells[row][col] += "\n" + text
		} else {
			cells[row][col] = text
		}
	}

	// Off-grid times keep their lessons visible instead of dropping them.
	sort.SliceStable(extras, func(i, j int) bool { return extras[i].TimeStart < extras[j].TimeStart })
	for _, lesson := range extras {
		row := make([]string, 6)
		row[lesson.Weekday-1] = describeLesson(dimension, lesson)
		rows = append(rows, fmt.Sprintf("%s-%s", lesson.TimeStart, lesson.TimeEnd))
		cells = append(cells, row)
	}

	return export.Grid{
		Title:         title,
		ColumnHeaders: columns,
		RowHeaders:    rows,
		Cells:         cells,
	}
}

// describeLesson renders a cell line, leaving out the dimension the export
// is already grouped by.
func describeLesson(dimension models.ResourceDimension, lesson models.Lesson) string {
	parts := []string{lesson.Subject}
	if lesson.LessonType != "" {
		parts = append(parts, "("+lesson.LessonType+")")
	}
	if dimension != models.DimensionGroup {
		group := lesson.GroupName
		if lesson.Subgroup > 0 {
			group = fmt.Sprintf("%s/%d", group, lesson.Subgroup)
		}
		parts = append(parts, group)
	} else if lesson.Subgroup > 0 {
		parts = append(parts, fmt.Sprintf("subgroup %d", lesson.Subgroup))
	}
	if dimension != models.DimensionTeacher && lesson.TeacherName != "" {
		parts = append(parts, lesson.TeacherName)
	}
	if dimension != models.DimensionAuditory && lesson.Auditory != "" {
		parts = append(parts, "room "+lesson.Auditory)
	}
	return strings.Join(parts, " ")
}

func gridToDataset(grid export.Grid) export.Dataset {
	headers := append([]string{"Time"}, grid.ColumnHeaders...)
	rows := make([]map[string]string, 0, len(grid.RowHeaders))
	for i, rowHeader := range grid.RowHeaders {
		row := map[string]string{"Time": rowHeader}
		for j, column := range grid.ColumnHeaders {
			if i < len(grid.Cells) && j < len(grid.Cells[i]) {
				row[column] = strings.ReplaceAll(grid.Cells[i][j], "\n", "; ")
			}
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func sanitizeFilename(value string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-")
	return replacer.Replace(value)
}
