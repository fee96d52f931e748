package models

import (
	"time"

	"gorm.io/datatypes"
)

// Quiz is the structured answer source of a course. When it has questions it
// takes precedence over the course answer key.
type Quiz struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CourseID  uint      `json:"course_id" gorm:"not null;uniqueIndex"`
	Title     string    `json:"title" gorm:"size:200"`
	CreatedBy string    `json:"created_by" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Questions []QuizQuestion `json:"questions" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type QuizQuestion struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	QuizID        uint           `json:"quiz_id" gorm:"not null;index"`
	Position      int            `json:"position" gorm:"not null"`
	Prompt        string         `json:"prompt" gorm:"type:text"`
	Options       datatypes.JSON `json:"options" gorm:"type:jsonb"` // []string
	CorrectAnswer string         `json:"correct_answer,omitempty" gorm:"size:10;not null"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// HideAnswers blanks the correct answers for student-facing views
func (q *Quiz) HideAnswers() {
	for i := range q.Questions {
		q.Questions[i].CorrectAnswer = ""
	}
}
