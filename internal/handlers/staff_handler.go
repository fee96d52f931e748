package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
)

// StaffHandler serves teaching assignments and course content
type StaffHandler struct {
	BaseHandler
	teachingService services.TeachingService
	contentService  services.ContentService
}

func NewStaffHandler(teachingService services.TeachingService, contentService services.ContentService, logger utils.Logger) *StaffHandler {
	return &StaffHandler{
		BaseHandler:     NewBaseHandler(logger),
		teachingService: teachingService,
		contentService:  contentService,
	}
}

// AssignInstructor records that an instructor teaches a course
// @Summary Assign instructor
// @Tags teaching
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param assignment body services.AssignInstructorRequest true "Instructor"
// @Success 201 {object} models.Teaching
// @Failure 409 {object} ErrorResponse
// @Router /admin/courses/{id}/instructors [post]
func (h *StaffHandler) AssignInstructor(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	var req services.AssignInstructorRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Assigning instructor", "course_id", courseID, "instructor_id", req.InstructorID)

	teaching, err := h.teachingService.Assign(c.Request.Context(), actor, courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, teaching)
}

// RemoveInstructor ends a teaching assignment
// @Summary Remove instructor
// @Tags teaching
// @Param id path int true "Course ID"
// @Param instructor_id path string true "Instructor ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /admin/courses/{id}/instructors/{instructor_id} [delete]
func (h *StaffHandler) RemoveInstructor(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	if err := h.teachingService.Remove(c.Request.Context(), actor, courseID, c.Param("instructor_id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListInstructors lists who teaches a course
// @Summary Course instructors
// @Tags teaching
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {array} models.Teaching
// @Router /courses/{id}/instructors [get]
func (h *StaffHandler) ListInstructors(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	teachings, err := h.teachingService.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, teachings)
}

// CreateContent attaches a content item to a course
// @Summary Create content
// @Tags content
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param content body services.CreateContentRequest true "Content metadata"
// @Success 201 {object} models.ContentItem
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /courses/{id}/content [post]
func (h *StaffHandler) CreateContent(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	var req services.CreateContentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.contentService.Create(c.Request.Context(), actor, courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// ListContent lists a course's content items
// @Summary Course content
// @Tags content
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {array} models.ContentItem
// @Router /courses/{id}/content [get]
func (h *StaffHandler) ListContent(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	items, err := h.contentService.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// DeleteContent removes a content item
// @Summary Delete content
// @Tags content
// @Param content_id path int true "Content ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /content/{content_id} [delete]
func (h *StaffHandler) DeleteContent(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "content_id")
	if id == 0 {
		return
	}

	if err := h.contentService.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
