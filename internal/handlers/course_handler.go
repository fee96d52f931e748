package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
	}
}

// CreateCourse creates a course; instructor courses wait for admin approval
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Param course body services.CreateCourseRequest true "Course data"
// @Success 201 {object} services.CourseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CreateCourseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating course", "title", req.Title)

	course, err := h.courseService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// GetCourse retrieves a course by ID
// @Summary Get course
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} services.CourseResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// ListCourses lists courses with filtering
// @Summary List courses
// @Tags courses
// @Produce json
// @Param q query string false "Title or category search"
// @Param status query string false "pending, approved or rejected"
// @Param category query string false "Category"
// @Param university_id query int false "University ID"
// @Param created_by query string false "Creator ID"
// @Param sort_by query string false "created_at, title or start_date"
// @Param sort_order query string false "asc or desc"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} services.CourseListResponse
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	list, err := h.courseService.List(c.Request.Context(), actor, h.parseCourseFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// UpdateCourse updates course details
// @Summary Update course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param course body services.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} services.CourseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateCourseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// DeleteCourse soft-deletes a course
// @Summary Delete course
// @Tags courses
// @Param id path int true "Course ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting course", "course_id", id)

	if err := h.courseService.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetAnswerKey stores the letter answer key used for grading
// @Summary Set answer key
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param key body services.SetAnswerKeyRequest true "Answer key"
// @Success 200 {object} services.CourseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /courses/{id}/answer-key [put]
func (h *CourseHandler) SetAnswerKey(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SetAnswerKeyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	course, err := h.courseService.SetAnswerKey(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// ApproveCourse opens a pending course for enrollment
// @Summary Approve course
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param review body services.ReviewCourseRequest false "Review note"
// @Success 200 {object} services.CourseResponse
// @Router /admin/courses/{id}/approve [post]
func (h *CourseHandler) ApproveCourse(c *gin.Context) {
	h.reviewCourse(c, h.courseService.Approve)
}

// RejectCourse rejects a pending course
// @Summary Reject course
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param review body services.ReviewCourseRequest false "Review note"
// @Success 200 {object} services.CourseResponse
// @Router /admin/courses/{id}/reject [post]
func (h *CourseHandler) RejectCourse(c *gin.Context) {
	h.reviewCourse(c, h.courseService.Reject)
}

// CreateTopic creates a reusable topic
// @Summary Create topic
// @Tags topics
// @Accept json
// @Produce json
// @Param topic body services.CreateTopicRequest true "Topic"
// @Success 201 {object} models.Topic
// @Router /topics [post]
func (h *CourseHandler) CreateTopic(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CreateTopicRequest
	if !h.bindJSON(c, &req) {
		return
	}

	topic, err := h.courseService.CreateTopic(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, topic)
}

// ListTopics lists all topics
// @Summary List topics
// @Tags topics
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} services.TopicListResponse
// @Router /topics [get]
func (h *CourseHandler) ListTopics(c *gin.Context) {
	limit, offset := h.parsePagination(c)

	list, err := h.courseService.ListTopics(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// MapTopic adds a topic to the course's ordered walk
// @Summary Map topic to course
// @Tags topics
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param mapping body services.MapTopicRequest true "Topic and optional order"
// @Success 201 {object} models.CourseTopic
// @Failure 409 {object} ErrorResponse
// @Router /courses/{id}/topics [post]
func (h *CourseHandler) MapTopic(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	var req services.MapTopicRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Mapping topic", "course_id", courseID, "topic_id", req.TopicID)

	mapping, err := h.courseService.MapTopic(c.Request.Context(), actor, courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mapping)
}

// UnmapTopic removes a topic from the course
// @Summary Unmap topic
// @Tags topics
// @Param id path int true "Course ID"
// @Param topic_id path int true "Topic ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/topics/{topic_id} [delete]
func (h *CourseHandler) UnmapTopic(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	topicID := h.parseIDParam(c, "topic_id")
	if topicID == 0 {
		return
	}

	if err := h.courseService.UnmapTopic(c.Request.Context(), actor, courseID, topicID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetCourseTopics lists the course's topics in sequence order
// @Summary Course topics
// @Tags topics
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {array} models.CourseTopic
// @Router /courses/{id}/topics [get]
func (h *CourseHandler) GetCourseTopics(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	mappings, err := h.courseService.GetCourseTopics(c.Request.Context(), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"course_id": courseID,
		"topics":    mappings,
	})
}

// ===== HELPER METHODS =====

type reviewFunc func(ctx context.Context, actor *models.User, id uint, req *services.ReviewCourseRequest) (*services.CourseResponse, error)

func (h *CourseHandler) reviewCourse(c *gin.Context, review reviewFunc) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	// The note is optional, so an empty body is accepted
	var req services.ReviewCourseRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Reviewing course", "course_id", id, "route", c.FullPath())

	course, err := review(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) parseCourseFilters(c *gin.Context) repositories.CourseFilters {
	filters := repositories.CourseFilters{
		Query:     c.Query("q"),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	filters.Limit, filters.Offset = h.parsePagination(c)

	if status := c.Query("status"); status != "" {
		s := models.CourseStatus(status)
		filters.Status = &s
	}
	if category := c.Query("category"); category != "" {
		filters.Category = &category
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		filters.CreatedBy = &createdBy
	}
	if raw := c.Query("university_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			uid := uint(id)
			filters.UniversityID = &uid
		}
	}

	return filters
}
