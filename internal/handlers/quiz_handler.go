package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
)

const maxQuizUploadBytes = 8 << 20

type QuizHandler struct {
	BaseHandler
	quizService services.QuizService
}

func NewQuizHandler(quizService services.QuizService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		quizService: quizService,
	}
}

// GetQuiz returns the course quiz; correct answers are hidden from students
// @Summary Get course quiz
// @Tags quizzes
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} models.Quiz
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/quiz [get]
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	quiz, err := h.quizService.Get(c.Request.Context(), actor, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// ReplaceQuiz swaps the course quiz for the posted questions
// @Summary Replace course quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param quiz body services.ReplaceQuizRequest true "Questions"
// @Success 200 {object} models.Quiz
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /courses/{id}/quiz [put]
func (h *QuizHandler) ReplaceQuiz(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	var req services.ReplaceQuizRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Replacing quiz", "course_id", courseID, "questions", len(req.Questions))

	quiz, err := h.quizService.Replace(c.Request.Context(), actor, courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// ImportQuiz replaces the course quiz from an uploaded xlsx workbook
// @Summary Import quiz workbook
// @Tags quizzes
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Course ID"
// @Param file formData file true "xlsx workbook: position, prompt, options, correct answer"
// @Param title formData string false "Quiz title"
// @Success 200 {object} models.Quiz
// @Failure 400 {object} ErrorResponse
// @Router /courses/{id}/quiz/import [post]
func (h *QuizHandler) ImportQuiz(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxQuizUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Quiz workbook is required", err)
		return
	}

	file, err := header.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Failed to read upload", err)
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing quiz workbook", "course_id", courseID, "filename", header.Filename, "size", header.Size)

	quiz, err := h.quizService.ImportSheet(c.Request.Context(), actor, courseID, c.PostForm("title"), file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}
