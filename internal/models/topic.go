package models

import (
	"strings"
	"time"
)

// FinalAssessmentTopic names the sentinel topic pinned to the end of a course.
// It is skipped by topic navigation.
const FinalAssessmentTopic = "Final Assessment"

type Topic struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null;size:150;index"`
	Description *string `json:"description" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Topic) TableName() string {
	return "topics"
}

func (t Topic) IsFinalAssessment() bool {
	return strings.EqualFold(strings.TrimSpace(t.Name), FinalAssessmentTopic)
}

// CourseTopic maps a topic into a course at a position in its walk order
type CourseTopic struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	CourseID      uint      `json:"course_id" gorm:"not null;uniqueIndex:idx_course_topic"`
	TopicID       uint      `json:"topic_id" gorm:"not null;uniqueIndex:idx_course_topic"`
	SequenceOrder int       `json:"sequence_order" gorm:"not null;index"`
	CreatedAt     time.Time `json:"created_at"`

	Topic Topic `json:"topic" gorm:"foreignKey:TopicID"`
}

func (CourseTopic) TableName() string {
	return "course_topics"
}
