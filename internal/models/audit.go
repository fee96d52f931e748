package models

import (
	"time"

	"gorm.io/datatypes"
)

// AdminAuditLog records one request made through the admin surface
type AdminAuditLog struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	AdminUserID string         `json:"admin_user_id" gorm:"not null;size:255;index"`
	AdminLevel  AdminLevel     `json:"admin_level" gorm:"size:20"`
	Action      string         `json:"action" gorm:"not null;size:255"`
	Method      string         `json:"method" gorm:"size:10"`
	StatusCode  int            `json:"status_code"`
	Details     datatypes.JSON `json:"details" gorm:"type:jsonb"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`
}

func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}

// AllModels lists every persisted model in migration order
func AllModels() []interface{} {
	return []interface{}{
		&University{},
		&Course{},
		&Topic{},
		&CourseTopic{},
		&Enrollment{},
		&Quiz{},
		&QuizQuestion{},
		&Teaching{},
		&ContentItem{},
		&CourseStatistics{},
		&StudentStatistics{},
		&InstructorStatistics{},
		&AdminAuditLog{},
	}
}
