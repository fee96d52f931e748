package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CourseStatus string

const (
	CoursePending  CourseStatus = "pending"
	CourseApproved CourseStatus = "approved"
	CourseRejected CourseStatus = "rejected"
)

type Course struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Title       string          `json:"title" gorm:"not null;size:200;index"`
	Description *string         `json:"description" gorm:"type:text"`
	Category    string          `json:"category" gorm:"size:100;index"`
	Level       string          `json:"level" gorm:"size:50"`
	Language    string          `json:"language" gorm:"size:50"`
	StartDate   *datatypes.Date `json:"start_date"`
	Duration    int             `json:"duration"` // weeks

	// One letter per question, compared case-insensitively.
	// Cleared by HideAnswerKey before reaching students.
	QuizAnswerKey *string `json:"quiz_answer_key,omitempty" gorm:"size:15"`

	UniversityID *uint `json:"university_id" gorm:"index"`

	// Approval workflow
	Status     CourseStatus `json:"status" gorm:"size:20;not null;default:pending;index"`
	ReviewNote *string      `json:"review_note,omitempty" gorm:"type:text"`
	ReviewedBy *string      `json:"reviewed_by,omitempty" gorm:"size:255"`
	ReviewedAt *time.Time   `json:"reviewed_at,omitempty"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	University *University   `json:"university,omitempty" gorm:"foreignKey:UniversityID"`
	Topics     []CourseTopic `json:"topics,omitempty" gorm:"foreignKey:CourseID"`

	// Computed fields (not stored)
	HasAnswerKey bool `json:"has_answer_key" gorm:"-"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) IsApproved() bool {
	return c.Status == CourseApproved
}

// HideAnswerKey clears the answer key while keeping HasAnswerKey
func (c *Course) HideAnswerKey() {
	c.HasAnswerKey = c.QuizAnswerKey != nil && *c.QuizAnswerKey != ""
	c.QuizAnswerKey = nil
}

// AfterFind fills computed fields
func (c *Course) AfterFind(tx *gorm.DB) error {
	c.HasAnswerKey = c.QuizAnswerKey != nil && *c.QuizAnswerKey != ""
	return nil
}
