package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
)

// EnrollmentHandler serves enrollments and everything that moves them:
// progress navigation, assessment grading, completion and rating
type EnrollmentHandler struct {
	BaseHandler
	enrollmentService services.EnrollmentService
	progressService   services.ProgressService
	assessmentService services.AssessmentService
}

func NewEnrollmentHandler(
	enrollmentService services.EnrollmentService,
	progressService services.ProgressService,
	assessmentService services.AssessmentService,
	logger utils.Logger,
) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		enrollmentService: enrollmentService,
		progressService:   progressService,
		assessmentService: assessmentService,
	}
}

// Enroll enrolls a student in an approved course
// @Summary Enroll in course
// @Tags enrollments
// @Accept json
// @Produce json
// @Param enrollment body services.EnrollRequest true "Student and course"
// @Success 201 {object} models.Enrollment
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.EnrollRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Enrolling student", "student_id", req.StudentID, "course_id", req.CourseID)

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

// GetEnrollment returns one enrollment
// @Summary Get enrollment
// @Tags enrollments
// @Produce json
// @Param student_id path string true "Student ID"
// @Param course_id path int true "Course ID"
// @Success 200 {object} models.Enrollment
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /enrollments/{student_id}/{course_id} [get]
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	actor, studentID, courseID, ok := h.enrollmentParams(c)
	if !ok {
		return
	}

	enrollment, err := h.enrollmentService.Get(c.Request.Context(), actor, studentID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// ListStudentEnrollments lists a student's enrollments
// @Summary List student enrollments
// @Tags enrollments
// @Produce json
// @Param student_id path string true "Student ID"
// @Param completion_status query string false "In Progress or Completed"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} services.EnrollmentListResponse
// @Failure 403 {object} ErrorResponse
// @Router /enrollments/student/{student_id} [get]
func (h *EnrollmentHandler) ListStudentEnrollments(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	studentID := strings.TrimSpace(c.Param("student_id"))

	h.LogRequest(c, "Listing student enrollments", "student_id", studentID)

	list, err := h.enrollmentService.ListByStudent(c.Request.Context(), actor, studentID, h.parseEnrollmentFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ListCourseEnrollments lists the enrollments of a course for its staff
// @Summary List course enrollments
// @Tags enrollments
// @Produce json
// @Param course_id path int true "Course ID"
// @Param completion_status query string false "In Progress or Completed"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} services.EnrollmentListResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /enrollments/course/{course_id} [get]
func (h *EnrollmentHandler) ListCourseEnrollments(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}

	list, err := h.enrollmentService.ListByCourse(c.Request.Context(), actor, courseID, h.parseEnrollmentFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// AdvanceProgress sets the student's current topic
// @Summary Advance progress
// @Description Sets the current topic to any topic mapped to the course, the final assessment included
// @Tags progress
// @Produce json
// @Param student_id path string true "Student ID"
// @Param course_id path int true "Course ID"
// @Param topic_id path int true "Topic ID"
// @Success 200 {object} services.ProgressResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /enrollments/progress/{student_id}/{course_id}/{topic_id} [put]
func (h *EnrollmentHandler) AdvanceProgress(c *gin.Context) {
	actor, studentID, courseID, ok := h.enrollmentParams(c)
	if !ok {
		return
	}
	topicID := h.parseIDParam(c, "topic_id")
	if topicID == 0 {
		return
	}

	h.LogRequest(c, "Advancing progress", "student_id", studentID, "course_id", courseID, "topic_id", topicID)

	resp, err := h.progressService.Advance(c.Request.Context(), actor, studentID, courseID, topicID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RollbackProgress moves the student back one regular topic
// @Summary Roll back progress
// @Description Moves to the regular topic before topic_id, or clears the pointer at the first topic
// @Tags progress
// @Produce json
// @Param student_id path string true "Student ID"
// @Param course_id path int true "Course ID"
// @Param topic_id path int true "Topic ID"
// @Success 200 {object} services.ProgressResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /enrollments/rollback/{student_id}/{course_id}/{topic_id} [put]
func (h *EnrollmentHandler) RollbackProgress(c *gin.Context) {
	actor, studentID, courseID, ok := h.enrollmentParams(c)
	if !ok {
		return
	}
	topicID := h.parseIDParam(c, "topic_id")
	if topicID == 0 {
		return
	}

	h.LogRequest(c, "Rolling back progress", "student_id", studentID, "course_id", courseID, "topic_id", topicID)

	resp, err := h.progressService.Rollback(c.Request.Context(), actor, studentID, courseID, topicID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ResetProgress moves the student to the first regular topic
// @Summary Reset progress
// @Tags progress
// @Produce json
// @Param student_id path string true "Student ID"
// @Param course_id path int true "Course ID"
// @Success 200 {object} services.ProgressResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /enrollments/reset/{student_id}/{course_id} [put]
func (h *EnrollmentHandler) ResetProgress(c *gin.Context) {
	actor, studentID, courseID, ok := h.enrollmentParams(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Resetting progress", "student_id", studentID, "course_id", courseID)

	resp, err := h.progressService.Reset(c.Request.Context(), actor, studentID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SubmitAssessment grades the final assessment
// @Summary Submit assessment
// @Description Accepts either a score (0-100) or the answers; answers are graded against the quiz or the course answer key
// @Tags assessment
// @Accept json
// @Produce json
// @Param student_id path string true "Student ID"
// @Param course_id path int true "Course ID"
// @Param submission body services.SubmitAssessmentRequest true "Score or answers"
// @Success 200 {object} services.AssessmentResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /enrollments/assessment/{student_id}/{course_id} [post]
func (h *EnrollmentHandler) SubmitAssessment(c *gin.Context) {
	actor, studentID, courseID, ok := h.enrollmentParams(c)
	if !ok {
		return
	}

	var req services.SubmitAssessmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting assessment", "student_id", studentID, "course_id", courseID)

	result, err := h.assessmentService.Submit(c.Request.Context(), actor, studentID, courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateCompletion sets the completion status directly
// @Summary Update completion status
// @Tags enrollments
// @Accept json
// @Produce json
// @Param student_id path string true "Student ID"
// @Param course_id path int true "Course ID"
// @Param completion body services.UpdateCompletionRequest true "Completion status"
// @Success 200 {object} models.Enrollment
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /enrollments/completion/{student_id}/{course_id} [put]
func (h *EnrollmentHandler) UpdateCompletion(c *gin.Context) {
	actor, studentID, courseID, ok := h.enrollmentParams(c)
	if !ok {
		return
	}

	var req services.UpdateCompletionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	enrollment, err := h.enrollmentService.UpdateCompletion(c.Request.Context(), actor, studentID, courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// RateCourse stores the student's rating and review
// @Summary Rate course
// @Tags enrollments
// @Accept json
// @Produce json
// @Param student_id path string true "Student ID"
// @Param course_id path int true "Course ID"
// @Param rating body services.RateCourseRequest true "Rating and review"
// @Success 200 {object} models.Enrollment
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /enrollments/rating/{student_id}/{course_id} [put]
func (h *EnrollmentHandler) RateCourse(c *gin.Context) {
	actor, studentID, courseID, ok := h.enrollmentParams(c)
	if !ok {
		return
	}

	var req services.RateCourseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	enrollment, err := h.enrollmentService.Rate(c.Request.Context(), actor, studentID, courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// ===== HELPER METHODS =====

// enrollmentParams reads the actor and the :student_id/:course_id pair
func (h *EnrollmentHandler) enrollmentParams(c *gin.Context) (*models.User, string, uint, bool) {
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

	return actor, studentID, courseID, true
}

func (h *EnrollmentHandler) parseEnrollmentFilters(c *gin.Context) repositories.EnrollmentFilters {
	limit, offset := h.parsePagination(c)
	filters := repositories.EnrollmentFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if status := c.Query("completion_status"); status != "" {
		s := models.CompletionStatus(status)
		filters.CompletionStatus = &s
	}
	return filters
}
