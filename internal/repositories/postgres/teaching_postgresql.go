package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

type TeachingPostgreSQL struct {
	db *gorm.DB
}

func NewTeachingPostgreSQL(db *gorm.DB) repositories.TeachingRepository {
	return &TeachingPostgreSQL{db: db}
}

func (t *TeachingPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}

func (t *TeachingPostgreSQL) Assign(ctx context.Context, tx *gorm.DB, teaching *models.Teaching) error {
	return translateError(t.getDB(tx).WithContext(ctx).Create(teaching).Error, "assign instructor")
}

func (t *TeachingPostgreSQL) Remove(ctx context.Context, tx *gorm.DB, instructorID string, courseID uint) error {
	result := t.getDB(tx).WithContext(ctx).
		Where("instructor_id = ? AND course_id = ?", instructorID, courseID).
		Delete(&models.Teaching{})
	if result.Error != nil {
		return translateError(result.Error, "remove instructor")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("remove instructor %s from course %d: %w", instructorID, courseID, repositories.ErrNotFound)
	}
	return nil
}

func (t *TeachingPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, instructorID string, courseID uint) (bool, error) {
	var count int64
	err := t.getDB(tx).WithContext(ctx).
		Model(&models.Teaching{}).
		Where("instructor_id = ? AND course_id = ?", instructorID, courseID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check teaching assignment: %w", err)
	}
	return count > 0, nil
}

func (t *TeachingPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Teaching, error) {
	var teachings []*models.Teaching
	err := t.getDB(tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("assigned_at ASC").
		Find(&teachings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list course instructors: %w", err)
	}
	return teachings, nil
}

func (t *TeachingPostgreSQL) ListByInstructor(ctx context.Context, tx *gorm.DB, instructorID string) ([]*models.Teaching, error) {
	var teachings []*models.Teaching
	err := t.getDB(tx).WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("assigned_at ASC").
		Find(&teachings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list instructor courses: %w", err)
	}
	return teachings, nil
}

func (t *TeachingPostgreSQL) ListInstructorIDs(ctx context.Context, tx *gorm.DB) ([]string, error) {
	var ids []string
	err := t.getDB(tx).WithContext(ctx).
		Model(&models.Teaching{}).
		Distinct("instructor_id").
		Order("instructor_id").
		Pluck("instructor_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list instructor ids: %w", err)
	}
	return ids, nil
}
