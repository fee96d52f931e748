package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

// TopicPostgreSQL stores topics and their course mappings. Mappings are read
// straight from the database on every call so the walk order always reflects
// the current sequence_order values.
type TopicPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewTopicPostgreSQL(db *gorm.DB) repositories.TopicRepository {
	return &TopicPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (t *TopicPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}

func (t *TopicPostgreSQL) Create(ctx context.Context, tx *gorm.DB, topic *models.Topic) error {
	return translateError(t.getDB(tx).WithContext(ctx).Create(topic).Error, "create topic")
}

func (t *TopicPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Topic, error) {
	var topic models.Topic
	if err := t.getDB(tx).WithContext(ctx).First(&topic, id).Error; err != nil {
		return nil, translateError(err, fmt.Sprintf("get topic %d", id))
	}
	return &topic, nil
}

func (t *TopicPostgreSQL) GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.Topic, error) {
	var topic models.Topic
	if err := t.getDB(tx).WithContext(ctx).Where("name = ?", name).First(&topic).Error; err != nil {
		return nil, translateError(err, "get topic by name")
	}
	return &topic, nil
}

func (t *TopicPostgreSQL) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Topic, int64, error) {
	query := t.getDB(tx).WithContext(ctx).Model(&models.Topic{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count topics: %w", err)
	}

	var topics []*models.Topic
	if err := t.helpers.ApplyPaginationAndSort(query, "name", "asc", limit, offset).Find(&topics).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list topics: %w", err)
	}
	return topics, total, nil
}

func (t *TopicPostgreSQL) MapToCourse(ctx context.Context, tx *gorm.DB, mapping *models.CourseTopic) error {
	return translateError(t.getDB(tx).WithContext(ctx).Omit("Topic").Create(mapping).Error, "map topic to course")
}

func (t *TopicPostgreSQL) UnmapFromCourse(ctx context.Context, tx *gorm.DB, courseID, topicID uint) error {
	result := t.getDB(tx).WithContext(ctx).
		Where("course_id = ? AND topic_id = ?", courseID, topicID).
		Delete(&models.CourseTopic{})
	if result.Error != nil {
		return translateError(result.Error, "unmap topic")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("unmap topic %d from course %d: %w", topicID, courseID, repositories.ErrNotFound)
	}
	return nil
}

func (t *TopicPostgreSQL) GetMapping(ctx context.Context, tx *gorm.DB, courseID, topicID uint) (*models.CourseTopic, error) {
	var mapping models.CourseTopic
	err := t.getDB(tx).WithContext(ctx).
		Preload("Topic").
		Where("course_id = ? AND topic_id = ?", courseID, topicID).
		First(&mapping).Error
	if err != nil {
		return nil, translateError(err, "get course topic mapping")
	}
	return &mapping, nil
}

func (t *TopicPostgreSQL) GetCourseTopics(ctx context.Context, tx *gorm.DB, courseID uint) ([]models.CourseTopic, error) {
	var mappings []models.CourseTopic
	err := t.getDB(tx).WithContext(ctx).
		Preload("Topic").
		Where("course_id = ?", courseID).
		Order("sequence_order ASC, id ASC").
		Find(&mappings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get course topics: %w", err)
	}
	return mappings, nil
}

func (t *TopicPostgreSQL) MaxSequenceOrder(ctx context.Context, tx *gorm.DB, courseID uint) (int, error) {
	var maxOrder *int
	err := t.getDB(tx).WithContext(ctx).
		Model(&models.CourseTopic{}).
		Where("course_id = ?", courseID).
		Select("MAX(sequence_order)").
		Scan(&maxOrder).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get max sequence order: %w", err)
	}
	if maxOrder == nil {
		return 0, nil
	}
	return *maxOrder, nil
}

func (t *TopicPostgreSQL) SetSequenceOrder(ctx context.Context, tx *gorm.DB, mappingID uint, order int) error {
	result := t.getDB(tx).WithContext(ctx).
		Model(&models.CourseTopic{}).
		Where("id = ?", mappingID).
		Update("sequence_order", order)
	if result.Error != nil {
		return translateError(result.Error, "set sequence order")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("set sequence order of mapping %d: %w", mappingID, repositories.ErrNotFound)
	}
	return nil
}
