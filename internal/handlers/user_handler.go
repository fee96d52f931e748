package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/utils"
)

// UserHandler exposes the identity directory backing enrollment and teaching
type UserHandler struct {
	BaseHandler
	userRepo repositories.UserRepository
}

func NewUserHandler(userRepo repositories.UserRepository, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userRepo:    userRepo,
	}
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// Me returns the authenticated user as resolved from the token
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers lists directory users, narrowed by q when given
// @Summary List users
// @Tags users
// @Produce json
// @Param q query string false "Name or email search"
// @Param role query string false "student, instructor, admin or analyst"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} UserListResponse
// @Failure 401 {object} ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	if _, ok := h.currentUser(c); !ok {
		return
	}

	filters := repositories.UserFilters{Query: strings.TrimSpace(c.Query("q"))}
	filters.Limit, filters.Offset = h.parsePagination(c)
	if role := c.Query("role"); role != "" {
		r := models.UserRole(role)
		filters.Role = &r
	}

	var (
		users []*models.User
		total int64
		err   error
	)
	if filters.Query != "" {
		h.LogRequest(c, "Searching users", "query", filters.Query)
		users, total, err = h.userRepo.Search(c.Request.Context(), filters.Query, filters)
	} else {
		users, total, err = h.userRepo.List(c.Request.Context(), filters)
	}
	if err != nil {
		h.LogError(c, err, "Failed to list users")
		h.RespondWithError(c, http.StatusBadGateway, "Identity provider unavailable", err)
		return
	}

	c.JSON(http.StatusOK, UserListResponse{
		Users: users,
		Total: total,
		Page:  filters.Offset/filters.Limit + 1,
		Size:  filters.Limit,
	})
}

// GetUser retrieves a directory user by ID
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	if _, ok := h.currentUser(c); !ok {
		return
	}

	userID := strings.TrimSpace(c.Param("id"))
	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		utils.GetLogger(c, h.logger).Debug("User lookup failed", "lookup_id", userID, "error", err)
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "user not found",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}
