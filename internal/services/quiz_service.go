package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

type quizService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuizService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) QuizService {
	return &quizService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// Get returns the quiz with correct answers visible to course staff only
func (s *quizService) Get(ctx context.Context, actor *models.User, courseID uint) (*models.Quiz, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	course, err := loadCourse(ctx, s.repo, s.db, courseID)
	if err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetByCourseID(ctx, s.db, courseID)
	if err != nil {
		return nil, notFoundAs(err, ErrQuizNotFound, "get quiz")
	}

	staff, err := isCourseStaff(ctx, s.repo, s.db, actor, course)
	if err != nil {
		return nil, err
	}
	if !staff {
		quiz.HideAnswers()
	}
	return quiz, nil
}

// Replace swaps the whole question set of the course quiz
func (s *quizService) Replace(ctx context.Context, actor *models.User, courseID uint, req *ReplaceQuizRequest) (*models.Quiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.authorizeEdit(ctx, actor, courseID); err != nil {
		return nil, err
	}

	questions := make([]models.QuizQuestion, len(req.Questions))
	for i, q := range req.Questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return nil, fmt.Errorf("failed to encode options: %w", err)
		}
		questions[i] = models.QuizQuestion{
			Position:      i + 1,
			Prompt:        strings.TrimSpace(q.Prompt),
			Options:       datatypes.JSON(options),
			CorrectAnswer: strings.ToUpper(strings.TrimSpace(q.CorrectAnswer)),
		}
	}

	quiz := &models.Quiz{CourseID: courseID, Title: req.Title, CreatedBy: actor.ID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Quiz().ReplaceQuestions(ctx, tx, quiz, questions); err != nil {
			return fmt.Errorf("failed to replace quiz questions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quiz replaced", "course_id", courseID, "questions", len(questions), "actor_id", actor.ID)
	return s.repo.Quiz().GetByCourseID(ctx, s.db, courseID)
}

func (s *quizService) ImportSheet(ctx context.Context, actor *models.User, courseID uint, title string, r io.Reader) (*models.Quiz, error) {
	if err := s.authorizeEdit(ctx, actor, courseID); err != nil {
		return nil, err
	}

	questions, err := ParseQuizSheet(r)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quiz sheet parsed", "course_id", courseID, "questions", len(questions))
	return s.Replace(ctx, actor, courseID, &ReplaceQuizRequest{Title: title, Questions: questions})
}

func (s *quizService) authorizeEdit(ctx context.Context, actor *models.User, courseID uint) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	course, err := loadCourse(ctx, s.repo, s.db, courseID)
	if err != nil {
		return err
	}
	staff, err := isCourseStaff(ctx, s.repo, s.db, actor, course)
	if err != nil {
		return err
	}
	if !staff {
		return NewPermissionError(actor.ID, courseID, "quiz", "replace", "not course staff")
	}
	return nil
}

// ===== SHEET IMPORT =====

// quizOptionSeparator splits the options cell
const quizOptionSeparator = "|"

type sheetRow struct {
	position int
	question QuizQuestionInput
}

// ParseQuizSheet reads the first sheet of an xlsx workbook with the columns
// position, prompt, options and correct answer. A header row is skipped when
// its first cell is not a number. Rows are returned in position order.
func ParseQuizSheet(r io.Reader) ([]QuizQuestionInput, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuizSheet, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidQuizSheet)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuizSheet, err)
	}

	var parsed []sheetRow
	for i, row := range rows {
		if isBlankRow(row) {
			continue
		}
		position, err := strconv.Atoi(strings.TrimSpace(cell(row, 0)))
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("%w: row %d has no numeric position", ErrInvalidQuizSheet, i+1)
		}

		answer := strings.TrimSpace(cell(row, 3))
		if answer == "" {
			return nil, fmt.Errorf("%w: row %d has no correct answer", ErrInvalidQuizSheet, i+1)
		}

		parsed = append(parsed, sheetRow{
			position: position,
			question: QuizQuestionInput{
				Prompt:        strings.TrimSpace(cell(row, 1)),
				Options:       splitOptions(cell(row, 2)),
				CorrectAnswer: answer,
			},
		})
	}

	if len(parsed) == 0 {
		return nil, fmt.Errorf("%w: no questions found", ErrInvalidQuizSheet)
	}

	sort.SliceStable(parsed, func(i, j int) bool { return parsed[i].position < parsed[j].position })
	questions := make([]QuizQuestionInput, len(parsed))
	for i, p := range parsed {
		questions[i] = p.question
	}
	return questions, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func splitOptions(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, quizOptionSeparator)
	options := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			options = append(options, p)
		}
	}
	return options
}
