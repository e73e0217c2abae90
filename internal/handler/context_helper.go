package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akazantsev/timetable-api/internal/middleware"
	"github.com/akazantsev/timetable-api/internal/models"
	appErrors "github.com/akazantsev/timetable-api/pkg/errors"
	"github.com/akazantsev/timetable-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// respondError maps rejected mutations to 409 with the full conflict
// reports, and everything else to the common error envelope.
func respondError(c *gin.Context, err error) {
	var conflictErr *models.ScheduleConflictError
	if errors.As(err, &conflictErr) {
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusConflict, response.Envelope{
			Error: appErrors.Clone(appErrors.ErrConflict, conflictErr.Message),
			Meta: map[string]interface{}{
				"reports":         conflictErr.Reports,
				"total_conflicts": conflictErr.TotalConflicts(),
			},
		})
		return
	}
	response.Error(c, err)
}
