package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

type ContentPostgreSQL struct {
	db *gorm.DB
}

func NewContentPostgreSQL(db *gorm.DB) repositories.ContentRepository {
	return &ContentPostgreSQL{db: db}
}

func (c *ContentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *ContentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, item *models.ContentItem) error {
	return translateError(c.getDB(tx).WithContext(ctx).Create(item).Error, "create content item")
}

func (c *ContentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := c.getDB(tx).WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, translateError(err, fmt.Sprintf("get content item %d", id))
	}
	return &item, nil
}

func (c *ContentPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.ContentItem, error) {
	var items []*models.ContentItem
	err := c.getDB(tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list content items: %w", err)
	}
	return items, nil
}

func (c *ContentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := c.getDB(tx).WithContext(ctx).Delete(&models.ContentItem{}, id)
	if result.Error != nil {
		return translateError(result.Error, "delete content item")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete content item %d: %w", id, repositories.ErrNotFound)
	}
	return nil
}
