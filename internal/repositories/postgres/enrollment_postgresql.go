package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

type EnrollmentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (e *EnrollmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}

func (e *EnrollmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	err := e.getDB(tx).WithContext(ctx).Omit(clause.Associations).Create(enrollment).Error
	return translateError(err, "create enrollment")
}

func (e *EnrollmentPostgreSQL) Get(ctx context.Context, tx *gorm.DB, studentID string, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := e.getDB(tx).WithContext(ctx).
		Preload("CurrentTopic").
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, translateError(err, "get enrollment")
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) GetForUpdate(ctx context.Context, tx *gorm.DB, studentID string, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := e.getDB(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, translateError(err, "lock enrollment")
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	result := e.getDB(tx).WithContext(ctx).Omit(clause.Associations).Save(enrollment)
	return translateError(result.Error, "update enrollment")
}

func (e *EnrollmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, studentID string, courseID uint) error {
	result := e.getDB(tx).WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Delete(&models.Enrollment{})
	if result.Error != nil {
		return translateError(result.Error, "delete enrollment")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete enrollment: %w", repositories.ErrNotFound)
	}
	return nil
}

func (e *EnrollmentPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, studentID string, courseID uint) (bool, error) {
	var count int64
	err := e.getDB(tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment existence: %w", err)
	}
	return count > 0, nil
}

func (e *EnrollmentPostgreSQL) RepointCurrentTopic(ctx context.Context, tx *gorm.DB, courseID, fromTopicID uint, to *uint) (int64, error) {
	var value interface{}
	if to != nil {
		value = *to
	}
	result := e.getDB(tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id = ? AND current_topic_id = ?", courseID, fromTopicID).
		Update("current_topic_id", value)
	if result.Error != nil {
		return 0, translateError(result.Error, "repoint current topic")
	}
	return result.RowsAffected, nil
}

func (e *EnrollmentPostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.EnrollmentFilters) ([]*models.Enrollment, int64, error) {
	query := e.getDB(tx).WithContext(ctx).Model(&models.Enrollment{}).Where("student_id = ?", studentID)
	return e.list(query, filters, "Course", "CurrentTopic")
}

func (e *EnrollmentPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, filters repositories.EnrollmentFilters) ([]*models.Enrollment, int64, error) {
	query := e.getDB(tx).WithContext(ctx).Model(&models.Enrollment{}).Where("course_id = ?", courseID)
	return e.list(query, filters, "CurrentTopic")
}

func (e *EnrollmentPostgreSQL) list(query *gorm.DB, filters repositories.EnrollmentFilters, preloads ...string) ([]*models.Enrollment, int64, error) {
	if filters.CompletionStatus != nil {
		query = query.Where("completion_status = ?", *filters.CompletionStatus)
	}
	if filters.DateFrom != nil {
		query = query.Where("enrollment_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("enrollment_date <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count enrollments: %w", err)
	}

	var enrollments []*models.Enrollment
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	query = e.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&enrollments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list enrollments: %w", err)
	}

	return enrollments, total, nil
}

func (e *EnrollmentPostgreSQL) ListStudentIDs(ctx context.Context, tx *gorm.DB) ([]string, error) {
	var ids []string
	err := e.getDB(tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Distinct("student_id").
		Order("student_id").
		Pluck("student_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list student ids: %w", err)
	}
	return ids, nil
}
