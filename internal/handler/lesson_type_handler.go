package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akazantsev/timetable-api/internal/service"
	appErrors "github.com/akazantsev/timetable-api/pkg/errors"
	"github.com/akazantsev/timetable-api/pkg/response"
)

// LessonTypeHandler manages the lesson-type dictionary.
type LessonTypeHandler struct {
	service *service.LessonTypeService
}

// NewLessonTypeHandler constructs handler.
func NewLessonTypeHandler(svc *service.LessonTypeService) *LessonTypeHandler {
	return &LessonTypeHandler{service: svc}
}

// List godoc
// @Summary List lesson types
// @Tags LessonTypes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /lesson-types [get]
func (h *LessonTypeHandler) List(c *gin.Context) {
	lessonTypes, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessonTypes, nil)
}

// Create godoc
// @Summary Create lesson type
// @Tags LessonTypes
// @Accept json
// @Produce json
// @Param payload body service.CreateLessonTypeRequest true "Lesson type payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /lesson-types [post]
func (h *LessonTypeHandler) Create(c *gin.Context) {
	var req service.CreateLessonTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lessonType, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lessonType)
}

// Update godoc
// @Summary Update lesson type
// @Tags LessonTypes
// @Accept json
// @Produce json
// @Param id path string true "Lesson type ID"
// @Param payload body service.UpdateLessonTypeRequest true "Lesson type payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lesson-types/{id} [put]
func (h *LessonTypeHandler) Update(c *gin.Context) {
	var req service.UpdateLessonTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lessonType, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessonType, nil)
}

// Delete godoc
// @Summary Delete lesson type
// @Tags LessonTypes
// @Produce json
// @Param id path string true "Lesson type ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lesson-types/{id} [delete]
func (h *LessonTypeHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
