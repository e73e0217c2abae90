package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/akazantsev/timetable-api/internal/service"
)

func TestMutationHandlerMoveInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMutationHandler(service.NewMutationService(nil, nil, nil, nil), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/schedule/move", bytes.NewReader([]byte(`invalid`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Move(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMutationHandlerMoveMissingTarget(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMutationHandler(service.NewMutationService(nil, nil, nil, nil), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/schedule/move", bytes.NewReader([]byte(`{"lesson_id":"lesson-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Move(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMutationHandlerSwapRejectsSelfSwap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMutationHandler(service.NewMutationService(nil, nil, nil, nil), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/schedule/swap", bytes.NewReader([]byte(`{"lesson1_id":"a","lesson2_id":"a"}`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Swap(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
