package models

import "time"

type ContentType string

const (
	ContentVideo    ContentType = "video"
	ContentDocument ContentType = "document"
	ContentLink     ContentType = "link"
	ContentOther    ContentType = "other"
)

// ContentItem is metadata for uploaded course material
type ContentItem struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	CourseID     uint        `json:"course_id" gorm:"not null;index"`
	TopicID      *uint       `json:"topic_id" gorm:"index"`
	InstructorID string      `json:"instructor_id" gorm:"not null;size:255;index"`
	Title        string      `json:"title" gorm:"not null;size:200"`
	ContentType  ContentType `json:"content_type" gorm:"size:20;not null"`
	URL          string      `json:"url" gorm:"size:500;not null"`
	Description  *string     `json:"description" gorm:"type:text"`
	CreatedAt    time.Time   `json:"created_at"`
}

func (ContentItem) TableName() string {
	return "content_items"
}
