package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/akazantsev/timetable-api/internal/models"
	"github.com/akazantsev/timetable-api/internal/service"
	appErrors "github.com/akazantsev/timetable-api/pkg/errors"
	"github.com/akazantsev/timetable-api/pkg/response"
)

// LessonHandler manages schedule CRUD and week view endpoints.
type LessonHandler struct {
	service *service.LessonService
}

// NewLessonHandler constructs handler.
func NewLessonHandler(svc *service.LessonService) *LessonHandler {
	return &LessonHandler{service: svc}
}

// List godoc
// @Summary List lessons
// @Tags Lessons
// @Produce json
// @Param semester query int false "Filter by semester"
// @Param week query int false "Filter by week number"
// @Param group query string false "Filter by group"
// @Param teacher query string false "Filter by teacher"
// @Param auditory query string false "Filter by room"
// @Param search query string false "Subject search"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /lessons [get]
func (h *LessonHandler) List(c *gin.Context) {
	var filter models.LessonFilter
	if semester, err := strconv.Atoi(c.Query("semester")); err == nil {
		filter.Semester = semester
	}
	if week, err := strconv.Atoi(c.Query("week")); err == nil {
		filter.WeekNumber = week
	}
	filter.GroupName = c.Query("group")
	filter.TeacherName = c.Query("teacher")
	filter.Auditory = c.Query("auditory")
	filter.Search = c.Query("search")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "100")); err == nil {
		filter.PageSize = limit
	}

	lessons, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, pagination)
}

// Get godoc
// @Summary Get lesson by id
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lessons/{id} [get]
func (h *LessonHandler) Get(c *gin.Context) {
	lesson, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// Create godoc
// @Summary Create lesson
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body service.CreateLessonRequest true "Lesson payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /lessons [post]
func (h *LessonHandler) Create(c *gin.Context) {
	var req service.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lesson, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lesson)
}

// Update godoc
// @Summary Update lesson
// @Description Partial update. Placement changes are conflict-checked unless force is set.
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body service.UpdateLessonRequest true "Lesson payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /lessons/{id} [put]
func (h *LessonHandler) Update(c *gin.Context) {
	var req service.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lesson, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// Delete godoc
// @Summary Delete lesson
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lessons/{id} [delete]
func (h *LessonHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// WeekByGroup godoc
// @Summary Weekly schedule of a group
// @Tags Schedule
// @Produce json
// @Param value path string true "Group name"
// @Param semester query int true "Semester"
// @Param week query int true "Week number"
// @Success 200 {object} response.Envelope
// @Router /schedule/group/{value} [get]
func (h *LessonHandler) WeekByGroup(c *gin.Context) {
	h.weekView(c, models.DimensionGroup)
}

// WeekByTeacher godoc
// @Summary Weekly schedule of a teacher
// @Tags Schedule
// @Produce json
// @Param value path string true "Teacher name"
// @Param semester query int true "Semester"
// @Param week query int true "Week number"
// @Success 200 {object} response.Envelope
// @Router /schedule/teacher/{value} [get]
func (h *LessonHandler) WeekByTeacher(c *gin.Context) {
	h.weekView(c, models.DimensionTeacher)
}

// WeekByAuditory godoc
// @Summary Weekly schedule of a room
// @Tags Schedule
// @Produce json
// @Param value path string true "Auditory"
// @Param semester query int true "Semester"
// @Param week query int true "Week number"
// @Success 200 {object} response.Envelope
// @Router /schedule/auditory/{value} [get]
func (h *LessonHandler) WeekByAuditory(c *gin.Context) {
	h.weekView(c, models.DimensionAuditory)
}

func (h *LessonHandler) weekView(c *gin.Context, dimension models.ResourceDimension) {
	semester, week, err := semesterWeekQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.WeekView(c.Request.Context(), dimension, c.Param("value"), semester, week)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// ListByDate godoc
// @Summary Lessons of a calendar date
// @Tags Schedule
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /schedule/date/{date} [get]
func (h *LessonHandler) ListByDate(c *gin.Context) {
	lessons, err := h.service.ListByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

// DeleteWeek godoc
// @Summary Delete every lesson of a week
// @Tags Schedule
// @Produce json
// @Param semester query int true "Semester"
// @Param week query int true "Week number"
// @Success 200 {object} response.Envelope
// @Router /schedule/week [delete]
func (h *LessonHandler) DeleteWeek(c *gin.Context) {
	semester, week, err := semesterWeekQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	deleted, err := h.service.DeleteWeek(c.Request.Context(), semester, week)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted}, nil)
}

// UsageStats godoc
// @Summary Weekly lesson counts per resource
// @Tags Schedule
// @Produce json
// @Param semester query int true "Semester"
// @Param week query int true "Week number"
// @Success 200 {object} response.Envelope
// @Router /schedule/week/usage [get]
func (h *LessonHandler) UsageStats(c *gin.Context) {
	semester, week, err := semesterWeekQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	stats, err := h.service.UsageStats(c.Request.Context(), semester, week)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

func semesterWeekQuery(c *gin.Context) (int, int, error) {
	semester, err := strconv.Atoi(c.Query("semester"))
	if err != nil {
		return 0, 0, appErrors.Clone(appErrors.ErrValidation, "semester query parameter is required")
	}
	week, err := strconv.Atoi(c.Query("week"))
	if err != nil {
		return 0, 0, appErrors.Clone(appErrors.ErrValidation, "week query parameter is required")
	}
	return semester, week, nil
}
