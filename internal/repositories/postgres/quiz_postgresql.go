package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

func (q *QuizPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

func (q *QuizPostgreSQL) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := q.getDB(tx).WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Where("course_id = ?", courseID).
		First(&quiz).Error
	if err != nil {
		return nil, translateError(err, "get quiz")
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) ReplaceQuestions(ctx context.Context, tx *gorm.DB, quiz *models.Quiz, questions []models.QuizQuestion) error {
	return q.getDB(tx).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if quiz.ID == 0 {
			var existing models.Quiz
			err := tx.Where("course_id = ?", quiz.CourseID).First(&existing).Error
			switch {
			case err == nil:
				quiz.ID = existing.ID
				quiz.CreatedAt = existing.CreatedAt
			case repositories.IsNotFoundError(err):
				if err := tx.Omit(clause.Associations).Create(quiz).Error; err != nil {
					return translateError(err, "create quiz")
				}
			default:
				return fmt.Errorf("failed to look up quiz: %w", err)
			}
		}

		if err := tx.Omit(clause.Associations).Save(quiz).Error; err != nil {
			return translateError(err, "update quiz")
		}

		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.QuizQuestion{}).Error; err != nil {
			return fmt.Errorf("failed to clear quiz questions: %w", err)
		}

		if len(questions) == 0 {
			quiz.Questions = nil
			return nil
		}

		for i := range questions {
			questions[i].ID = 0
			questions[i].QuizID = quiz.ID
		}
		if err := tx.Create(&questions).Error; err != nil {
			return translateError(err, "create quiz questions")
		}

		quiz.Questions = questions
		return nil
	})
}

func (q *QuizPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, courseID uint) error {
	return q.getDB(tx).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quiz models.Quiz
		if err := tx.Where("course_id = ?", courseID).First(&quiz).Error; err != nil {
			return translateError(err, "get quiz")
		}
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.QuizQuestion{}).Error; err != nil {
			return fmt.Errorf("failed to delete quiz questions: %w", err)
		}
		if err := tx.Delete(&quiz).Error; err != nil {
			return fmt.Errorf("failed to delete quiz: %w", err)
		}
		return nil
	})
}
