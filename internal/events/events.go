package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "course-service"
	EventVersion = "1.0"
)

// EventType names the kinds of domain events emitted by the service
type EventType string

const (
	EnrollmentCreated         EventType = "enrollment.created"
	EnrollmentProgressUpdated EventType = "enrollment.progress_updated"
	EnrollmentAssessed        EventType = "enrollment.assessed"
	EnrollmentCompleted       EventType = "enrollment.completed"
	EnrollmentRated           EventType = "enrollment.rated"
	EnrollmentReviewModerated EventType = "enrollment.review_moderated"
	CourseApproved            EventType = "course.approved"
	CourseRejected            EventType = "course.rejected"
)

// Event is the envelope published to the broker
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent stamps a payload with id, source and time
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// Topic is the broker topic an event is routed to
func (e *Event) Topic() string {
	switch e.Type {
	case CourseApproved, CourseRejected:
		return "course-events"
	default:
		return "enrollment-events"
	}
}

// EventPublisher sends domain events to the outside world
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// ===== PAYLOADS =====

type EnrollmentEvent struct {
	StudentID        string  `json:"student_id"`
	CourseID         uint    `json:"course_id"`
	CompletionStatus string  `json:"completion_status"`
	CurrentTopicID   *uint   `json:"current_topic_id,omitempty"`
	Grade            *string `json:"grade,omitempty"`
	Score            *int    `json:"score,omitempty"`
	Rating           *int    `json:"rating,omitempty"`
	ActorID          string  `json:"actor_id"`
}

type CourseReviewEvent struct {
	CourseID   uint    `json:"course_id"`
	Title      string  `json:"title"`
	CreatedBy  string  `json:"created_by"`
	ReviewedBy string  `json:"reviewed_by"`
	Note       *string `json:"note,omitempty"`
}
