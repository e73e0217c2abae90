package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akazantsev/timetable-api/internal/service"
	appErrors "github.com/akazantsev/timetable-api/pkg/errors"
	"github.com/akazantsev/timetable-api/pkg/response"
)

// MutationHandler exposes the conflict-guarded move and swap endpoints.
type MutationHandler struct {
	service *service.MutationService
	lessons *service.LessonService
}

// NewMutationHandler constructs handler. lessons is used to drop cached
// week views after a successful mutation and may be nil.
func NewMutationHandler(svc *service.MutationService, lessons *service.LessonService) *MutationHandler {
	return &MutationHandler{service: svc, lessons: lessons}
}

func (h *MutationHandler) invalidateCache(c *gin.Context) {
	if h.lessons != nil {
		h.lessons.InvalidateWeekCache(c.Request.Context())
	}
}

// Move godoc
// @Summary Move lessons to another slot
// @Description Relocates one lesson or a whole group slot. Rejected with 409 and the conflict reports unless force is set.
// @Tags Mutations
// @Accept json
// @Produce json
// @Param payload body service.MoveRequest true "Move payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule/move [post]
func (h *MutationHandler) Move(c *gin.Context) {
	var req service.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid move payload"))
		return
	}
	moved, err := h.service.Move(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidateCache(c)
	response.JSON(c, http.StatusOK, moved, nil, map[string]interface{}{"moved": len(moved)})
}

// Swap godoc
// @Summary Swap the placements of two lessons
// @Description Exchanges date, weekday and times of two lessons. Rooms are exchanged too when swap_locations is set.
// @Tags Mutations
// @Accept json
// @Produce json
// @Param payload body service.SwapRequest true "Swap payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule/swap [post]
func (h *MutationHandler) Swap(c *gin.Context) {
	var req service.SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid swap payload"))
		return
	}
	lesson1, lesson2, err := h.service.Swap(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidateCache(c)
	response.JSON(c, http.StatusOK, gin.H{"lesson1": lesson1, "lesson2": lesson2}, nil)
}
