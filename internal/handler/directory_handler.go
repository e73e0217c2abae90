package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akazantsev/timetable-api/internal/service"
	"github.com/akazantsev/timetable-api/pkg/response"
)

// DirectoryHandler lists the distinct resources present in the schedule.
type DirectoryHandler struct {
	service *service.LessonService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(svc *service.LessonService) *DirectoryHandler {
	return &DirectoryHandler{service: svc}
}

// Groups godoc
// @Summary List distinct groups
// @Tags Directory
// @Produce json
// @Param search query string false "Name filter"
// @Success 200 {object} response.Envelope
// @Router /groups [get]
func (h *DirectoryHandler) Groups(c *gin.Context) {
	groups, err := h.service.Groups(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// Teachers godoc
// @Summary List distinct teachers
// @Tags Directory
// @Produce json
// @Param search query string false "Name filter"
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *DirectoryHandler) Teachers(c *gin.Context) {
	teachers, err := h.service.Teachers(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}

// Auditories godoc
// @Summary List distinct rooms
// @Tags Directory
// @Produce json
// @Param search query string false "Name filter"
// @Success 200 {object} response.Envelope
// @Router /auditories [get]
func (h *DirectoryHandler) Auditories(c *gin.Context) {
	auditories, err := h.service.Auditories(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, auditories, nil)
}
