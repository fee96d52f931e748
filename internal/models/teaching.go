package models

import "time"

// Teaching assigns an instructor to a course
type Teaching struct {
	InstructorID string    `json:"instructor_id" gorm:"primaryKey;size:255"`
	CourseID     uint      `json:"course_id" gorm:"primaryKey;autoIncrement:false;index"`
	AssignedBy   string    `json:"assigned_by" gorm:"size:255"`
	AssignedAt   time.Time `json:"assigned_at"`
}

func (Teaching) TableName() string {
	return "teachings"
}
