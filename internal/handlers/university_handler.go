package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
)

type UniversityHandler struct {
	BaseHandler
	universityService services.UniversityService
}

func NewUniversityHandler(universityService services.UniversityService, logger utils.Logger) *UniversityHandler {
	return &UniversityHandler{
		BaseHandler:       NewBaseHandler(logger),
		universityService: universityService,
	}
}

// CreateUniversity registers a university
// @Summary Create university
// @Tags universities
// @Accept json
// @Produce json
// @Param university body services.CreateUniversityRequest true "University"
// @Success 201 {object} models.University
// @Failure 409 {object} ErrorResponse
// @Router /admin/universities [post]
func (h *UniversityHandler) CreateUniversity(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CreateUniversityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	university, err := h.universityService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, university)
}

// GetUniversity retrieves a university by ID
// @Summary Get university
// @Tags universities
// @Produce json
// @Param id path int true "University ID"
// @Success 200 {object} models.University
// @Failure 404 {object} ErrorResponse
// @Router /universities/{id} [get]
func (h *UniversityHandler) GetUniversity(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	university, err := h.universityService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, university)
}

// ListUniversities lists universities
// @Summary List universities
// @Tags universities
// @Produce json
// @Param q query string false "Name search"
// @Param country query string false "Country"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} services.UniversityListResponse
// @Router /universities [get]
func (h *UniversityHandler) ListUniversities(c *gin.Context) {
	filters := repositories.UniversityFilters{Query: c.Query("q")}
	filters.Limit, filters.Offset = h.parsePagination(c)
	if country := c.Query("country"); country != "" {
		filters.Country = &country
	}

	list, err := h.universityService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// UpdateUniversity updates a university
// @Summary Update university
// @Tags universities
// @Accept json
// @Produce json
// @Param id path int true "University ID"
// @Param university body services.UpdateUniversityRequest true "Fields to change"
// @Success 200 {object} models.University
// @Router /admin/universities/{id} [put]
func (h *UniversityHandler) UpdateUniversity(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateUniversityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	university, err := h.universityService.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, university)
}

// DeleteUniversity removes a university
// @Summary Delete university
// @Tags universities
// @Param id path int true "University ID"
// @Success 204
// @Router /admin/universities/{id} [delete]
func (h *UniversityHandler) DeleteUniversity(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.universityService.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
