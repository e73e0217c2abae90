package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akazantsev/timetable-api/internal/service"
	"github.com/akazantsev/timetable-api/pkg/response"
)

// ConflictHandler exposes availability probes, the week-level conflict audit
// and the optimal-slot search.
type ConflictHandler struct {
	conflicts *service.ConflictService
	finder    *service.SlotFinderService
}

// NewConflictHandler constructs handler.
func NewConflictHandler(conflicts *service.ConflictService, finder *service.SlotFinderService) *ConflictHandler {
	return &ConflictHandler{conflicts: conflicts, finder: finder}
}

// Availability godoc
// @Summary Occupied slots of a week for given resources
// @Description Scans the whole week and reports every slot already taken by the named teacher, group or room.
// @Tags Conflicts
// @Produce json
// @Param semester query int true "Semester"
// @Param week query int true "Week number"
// @Param teacher query string false "Teacher name"
// @Param group query string false "Group name"
// @Param auditory query string false "Auditory"
// @Param exclude query string false "Lesson ID to exclude"
// @Success 200 {object} response.Envelope
// @Router /schedule/availability [get]
func (h *ConflictHandler) Availability(c *gin.Context) {
	semester, week, err := semesterWeekQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	occupied, err := h.conflicts.CheckAvailability(c.Request.Context(), service.AvailabilityRequest{
		Semester:    semester,
		WeekNumber:  week,
		LessonID:    c.Query("exclude"),
		TeacherName: c.Query("teacher"),
		GroupName:   c.Query("group"),
		Auditory:    c.Query("auditory"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occupied, nil, map[string]interface{}{"occupied": len(occupied)})
}

// WeekConflicts godoc
// @Summary Audit a week for double-bookings
// @Description Reports every colliding lesson pair of a week grouped by teacher, group and room.
// @Tags Conflicts
// @Produce json
// @Param semester query int true "Semester"
// @Param week query int true "Week number"
// @Success 200 {object} response.Envelope
// @Router /schedule/week/conflicts [get]
func (h *ConflictHandler) WeekConflicts(c *gin.Context) {
	semester, week, err := semesterWeekQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.conflicts.WeekConflicts(c.Request.Context(), semester, week)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// OptimalSlots godoc
// @Summary Least conflicting placements for a lesson
// @Description Ranks every weekday and catalog slot of the week by conflict count, best first.
// @Tags Conflicts
// @Produce json
// @Param id path string true "Lesson ID"
// @Param semester query int true "Semester"
// @Param week query int true "Week number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lessons/{id}/optimal-slots [get]
func (h *ConflictHandler) OptimalSlots(c *gin.Context) {
	semester, week, err := semesterWeekQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.finder.FindOptimalSlots(c.Request.Context(), service.OptimalSlotsRequest{
		LessonID:   c.Param("id"),
		Semester:   semester,
		WeekNumber: week,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
