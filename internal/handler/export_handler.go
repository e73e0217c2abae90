package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akazantsev/timetable-api/internal/models"
	"github.com/akazantsev/timetable-api/internal/service"
	"github.com/akazantsev/timetable-api/pkg/response"
)

// ExportHandler serves weekly schedule files.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Export godoc
// @Summary Download a weekly schedule file
// @Description Renders the week of one group, teacher or room as xlsx, csv or pdf.
// @Tags Export
// @Produce octet-stream
// @Param dimension path string true "Resource dimension (group, teacher, auditory)"
// @Param value path string true "Resource value"
// @Param semester query int true "Semester"
// @Param week query int true "Week number"
// @Param format query string false "File format (xlsx, csv, pdf)" default(xlsx)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /schedule/export/{dimension}/{value} [get]
func (h *ExportHandler) Export(c *gin.Context) {
	semester, week, err := semesterWeekQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.service.Export(c.Request.Context(), service.ExportRequest{
		Dimension:  models.ResourceDimension(c.Param("dimension")),
		Value:      c.Param("value"),
		Semester:   semester,
		WeekNumber: week,
		Format:     c.DefaultQuery("format", "xlsx"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
