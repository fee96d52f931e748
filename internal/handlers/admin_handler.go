package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
)

// AdminHandler serves moderation, on-demand statistics and the audit trail
type AdminHandler struct {
	BaseHandler
	moderationService services.ModerationService
	statisticsService services.StatisticsService
	auditService      services.AuditService
}

func NewAdminHandler(
	moderationService services.ModerationService,
	statisticsService services.StatisticsService,
	auditService services.AuditService,
	logger utils.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:       NewBaseHandler(logger),
		moderationService: moderationService,
		statisticsService: statisticsService,
		auditService:      auditService,
	}
}

// RecomputeStatisticsRequest narrows a recompute; an empty body recomputes everything
type RecomputeStatisticsRequest struct {
	CourseID      uint     `json:"course_id"`
	StudentID     string   `json:"student_id"`
	InstructorIDs []string `json:"instructor_ids"`
}

func (r RecomputeStatisticsRequest) empty() bool {
	return r.CourseID == 0 && r.StudentID == "" && len(r.InstructorIDs) == 0
}

// DeleteReview clears a student's review text
// @Summary Delete review
// @Tags moderation
// @Accept json
// @Produce json
// @Param student_id path string true "Student ID"
// @Param course_id path int true "Course ID"
// @Param reason body services.ModerationReasonRequest false "Reason"
// @Success 200 {object} models.Enrollment
// @Failure 403 {object} ErrorResponse
// @Router /admin/moderation/reviews/{student_id}/{course_id} [delete]
func (h *AdminHandler) DeleteReview(c *gin.Context) {
	actor, studentID, courseID, ok := h.moderationParams(c)
	if !ok {
		return
	}

	var req services.ModerationReasonRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	enrollment, err := h.moderationService.DeleteReview(c.Request.Context(), actor, studentID, courseID, &req)
	h.respondEnrollment(c, enrollment, err)
}

// OverrideRating replaces a student's rating
// @Summary Override rating
// @Tags moderation
// @Accept json
// @Produce json
// @Param student_id path string true "Student ID"
// @Param course_id path int true "Course ID"
// @Param rating body services.OverrideRatingRequest true "Rating and reason"
// @Success 200 {object} models.Enrollment
// @Failure 400 {object} ErrorResponse
// @Router /admin/moderation/ratings/{student_id}/{course_id} [put]
func (h *AdminHandler) OverrideRating(c *gin.Context) {
	actor, studentID, courseID, ok := h.moderationParams(c)
	if !ok {
		return
	}

	var req services.OverrideRatingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	enrollment, err := h.moderationService.OverrideRating(c.Request.Context(), actor, studentID, courseID, &req)
	h.respondEnrollment(c, enrollment, err)
}

// ForceCompletion marks an enrollment completed without an assessment
// @Summary Force completion
// @Tags moderation
// @Accept json
// @Produce json
// @Param student_id path string true "Student ID"
// @Param course_id path int true "Course ID"
// @Param reason body services.ModerationReasonRequest false "Reason"
// @Success 200 {object} models.Enrollment
// @Router /admin/moderation/completion/{student_id}/{course_id} [put]
func (h *AdminHandler) ForceCompletion(c *gin.Context) {
	actor, studentID, courseID, ok := h.moderationParams(c)
	if !ok {
		return
	}

	var req services.ModerationReasonRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	enrollment, err := h.moderationService.ForceCompletion(c.Request.Context(), actor, studentID, courseID, &req)
	h.respondEnrollment(c, enrollment, err)
}

// RecomputeStatistics runs a recompute synchronously
// @Summary Recompute statistics
// @Tags admin
// @Accept json
// @Produce json
// @Param scope body RecomputeStatisticsRequest false "Course, student or instructors to refresh"
// @Success 200 {object} services.RecomputeSummary
// @Router /admin/statistics/recompute [post]
func (h *AdminHandler) RecomputeStatistics(c *gin.Context) {
	var req RecomputeStatisticsRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	if req.empty() {
		h.LogRequest(c, "Recomputing all statistics")
		summary, err := h.statisticsService.RecomputeAll(c.Request.Context())
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
		return
	}

	h.LogRequest(c, "Recomputing statistics", "course_id", req.CourseID, "student_id", req.StudentID)
	err := h.statisticsService.Recompute(c.Request.Context(), services.RecomputeRequest{
		CourseID:      req.CourseID,
		StudentID:     req.StudentID,
		InstructorIDs: req.InstructorIDs,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "statistics recomputed",
		Data:    req,
	})
}

// ListAudit lists recorded admin actions
// @Summary Admin audit trail
// @Tags admin
// @Produce json
// @Param admin_user_id query string false "Admin user ID"
// @Param date_from query string false "RFC3339 lower bound"
// @Param date_to query string false "RFC3339 upper bound"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} services.AuditListResponse
// @Failure 400 {object} ErrorResponse
// @Router /admin/audit [get]
func (h *AdminHandler) ListAudit(c *gin.Context) {
	var filters repositories.AuditFilters
	filters.Limit, filters.Offset = h.parsePagination(c)

	if adminID := strings.TrimSpace(c.Query("admin_user_id")); adminID != "" {
		filters.AdminUserID = &adminID
	}
	for param, dst := range map[string]**time.Time{
		"date_from": &filters.DateFrom,
		"date_to":   &filters.DateTo,
	} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid "+param, err)
			return
		}
		*dst = &t
	}

	list, err := h.auditService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ===== HELPER METHODS =====

func (h *AdminHandler) moderationParams(c *gin.Context) (*models.User, string, uint, bool) {
	actor, ok := h.currentUser(c)
	if !ok {
		return nil, "", 0, false
	}

	studentID := strings.TrimSpace(c.Param("student_id"))
	if studentID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid student_id",
		})
		return nil, "", 0, false
	}

	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return nil, "", 0, false
	}

	h.LogRequest(c, "Moderating enrollment", "student_id", studentID, "course_id", courseID, "route", c.FullPath())
	return actor, studentID, courseID, true
}

func (h *AdminHandler) respondEnrollment(c *gin.Context, enrollment *models.Enrollment, err error) {
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollment)
}
