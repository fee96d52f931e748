package models

import (
	"time"

	"gorm.io/datatypes"
)

type EnrollmentStatus string

const (
	EnrollmentActive EnrollmentStatus = "Active"
)

type CompletionStatus string

const (
	CompletionInProgress CompletionStatus = "In Progress"
	CompletionCompleted  CompletionStatus = "Completed"
)

// Enrollment links one student to one course
type Enrollment struct {
	StudentID string `json:"student_id" gorm:"primaryKey;size:255"`
	CourseID  uint   `json:"course_id" gorm:"primaryKey;autoIncrement:false"`

	EnrollmentDate   datatypes.Date   `json:"enrollment_date" gorm:"not null"`
	Status           EnrollmentStatus `json:"status" gorm:"size:20;not null"`
	CompletionStatus CompletionStatus `json:"completion_status" gorm:"size:20;not null;index"`
	CompletionDate   *datatypes.Date  `json:"completion_date"`
	Grade            *string          `json:"grade" gorm:"size:5"`

	// Rating and review
	Rating         *int       `json:"rating"`
	ReviewText     *string    `json:"review_text" gorm:"type:text"`
	IsReviewPublic bool       `json:"is_review_public" gorm:"not null;default:false"`
	RatedAt        *time.Time `json:"rated_at"`

	// Progress pointer into the course's topic walk
	CurrentTopicID *uint `json:"current_topic_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Course       *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	CurrentTopic *Topic  `json:"current_topic,omitempty" gorm:"foreignKey:CurrentTopicID"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

func (e *Enrollment) IsCompleted() bool {
	return e.CompletionStatus == CompletionCompleted
}

// Today returns the current date with the time stripped
func Today() datatypes.Date {
	now := time.Now()
	return datatypes.Date(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()))
}
