package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(allowedOrigins))
	r.GET("/schedule/export/group/IS-21", func(c *gin.Context) {
		c.Header("Content-Disposition", `attachment; filename="IS-21.xlsx"`)
		c.Status(http.StatusOK)
	})
	return r
}

func TestAllowsConfiguredOrigin(t *testing.T) {
	r := newRouter([]string{"https://timetable.example.edu"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/schedule/export/group/IS-21", nil)
	req.Header.Set("Origin", "https://timetable.example.edu")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://timetable.example.edu", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRejectsUnknownOrigin(t *testing.T) {
	r := newRouter([]string{"https://timetable.example.edu"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/schedule/export/group/IS-21", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestExposesDownloadHeaders(t *testing.T) {
	r := newRouter(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/schedule/export/group/IS-21", nil)
	req.Header.Set("Origin", "https://timetable.example.edu")
	r.ServeHTTP(w, req)

	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestPreflightShortCircuits(t *testing.T) {
	r := newRouter(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/schedule/export/group/IS-21", nil)
	req.Header.Set("Origin", "https://timetable.example.edu")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
