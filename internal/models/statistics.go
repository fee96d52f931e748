package models

import "time"

type CourseStatistics struct {
	CourseID             uint      `json:"course_id" gorm:"primaryKey;autoIncrement:false"`
	TotalEnrollments     int64     `json:"total_enrollments"`
	ActiveEnrollments    int64     `json:"active_enrollments"`
	CompletedEnrollments int64     `json:"completed_enrollments"`
	CompletionRate       float64   `json:"completion_rate"` // percent, 2 decimals
	AverageRating        *float64  `json:"average_rating"`
	RatingsCount         int64     `json:"ratings_count"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (CourseStatistics) TableName() string {
	return "course_statistics"
}

type StudentStatistics struct {
	StudentID        string    `json:"student_id" gorm:"primaryKey;size:255"`
	TotalCourses     int64     `json:"total_courses"`
	CompletedCourses int64     `json:"completed_courses"`
	ActiveCourses    int64     `json:"active_courses"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (StudentStatistics) TableName() string {
	return "student_statistics"
}

type InstructorStatistics struct {
	InstructorID  string    `json:"instructor_id" gorm:"primaryKey;size:255"`
	CoursesTaught int64     `json:"courses_taught"`
	TotalStudents int64     `json:"total_students"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (InstructorStatistics) TableName() string {
	return "instructor_statistics"
}
