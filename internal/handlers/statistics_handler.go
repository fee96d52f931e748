package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
)

const (
	xlsxContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultOverviewTop = 10
	maxOverviewTop     = 50
)

type StatisticsHandler struct {
	BaseHandler
	statisticsService services.StatisticsService
	analyticsService  services.AnalyticsService
}

func NewStatisticsHandler(statisticsService services.StatisticsService, analyticsService services.AnalyticsService, logger utils.Logger) *StatisticsHandler {
	return &StatisticsHandler{
		BaseHandler:       NewBaseHandler(logger),
		statisticsService: statisticsService,
		analyticsService:  analyticsService,
	}
}

// GetCourseStatistics returns the cached aggregates for a course
// @Summary Course statistics
// @Tags statistics
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} models.CourseStatistics
// @Failure 404 {object} ErrorResponse
// @Router /statistics/courses/{id} [get]
func (h *StatisticsHandler) GetCourseStatistics(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	stats, err := h.statisticsService.GetCourse(c.Request.Context(), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetStudentStatistics returns a student's aggregates
// @Summary Student statistics
// @Tags statistics
// @Produce json
// @Param student_id path string true "Student ID"
// @Success 200 {object} models.StudentStatistics
// @Failure 403 {object} ErrorResponse
// @Router /statistics/students/{student_id} [get]
func (h *StatisticsHandler) GetStudentStatistics(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	stats, err := h.statisticsService.GetStudent(c.Request.Context(), actor, c.Param("student_id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetInstructorStatistics returns an instructor's aggregates
// @Summary Instructor statistics
// @Tags statistics
// @Produce json
// @Param instructor_id path string true "Instructor ID"
// @Success 200 {object} models.InstructorStatistics
// @Failure 403 {object} ErrorResponse
// @Router /statistics/instructors/{instructor_id} [get]
func (h *StatisticsHandler) GetInstructorStatistics(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	stats, err := h.statisticsService.GetInstructor(c.Request.Context(), actor, c.Param("instructor_id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Overview returns platform totals and the top courses
// @Summary Analytics overview
// @Tags analytics
// @Produce json
// @Param top query int false "Number of top courses (default: 10, max: 50)"
// @Success 200 {object} services.AnalyticsOverview
// @Router /analytics/overview [get]
func (h *StatisticsHandler) Overview(c *gin.Context) {
	top := defaultOverviewTop
	if n, err := strconv.Atoi(c.Query("top")); err == nil && n > 0 && n <= maxOverviewTop {
		top = n
	}

	overview, err := h.analyticsService.Overview(c.Request.Context(), top)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// Export streams the analytics workbook
// @Summary Export analytics workbook
// @Tags analytics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /analytics/export [get]
func (h *StatisticsHandler) Export(c *gin.Context) {
	h.LogRequest(c, "Exporting analytics workbook")

	// Buffered so a failed export can still answer with a JSON error
	var buf bytes.Buffer
	if err := h.analyticsService.ExportWorkbook(c.Request.Context(), &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("course-analytics-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
