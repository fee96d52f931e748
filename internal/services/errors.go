package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

// Not found
var (
	ErrNotFound           = errors.New("not found")
	ErrEnrollmentNotFound = fmt.Errorf("enrollment %w", ErrNotFound)
	ErrCourseNotFound     = fmt.Errorf("course %w", ErrNotFound)
	ErrTopicNotFound      = fmt.Errorf("topic %w", ErrNotFound)
	ErrTopicNotMapped     = fmt.Errorf("topic is not mapped to course: %w", ErrNotFound)
	ErrStudentNotFound    = fmt.Errorf("student %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrUniversityNotFound = fmt.Errorf("university %w", ErrNotFound)
	ErrQuizNotFound       = fmt.Errorf("quiz %w", ErrNotFound)
	ErrContentNotFound    = fmt.Errorf("content %w", ErrNotFound)
	ErrTeachingNotFound   = fmt.Errorf("teaching assignment %w", ErrNotFound)
	ErrStatisticsNotFound = fmt.Errorf("statistics %w", ErrNotFound)
)

// Invalid input
var (
	ErrInvalidInput              = errors.New("invalid input")
	ErrInvalidScore              = fmt.Errorf("%w: score must be between 0 and 100", ErrInvalidInput)
	ErrAnswerSourceAmbiguous     = fmt.Errorf("%w: provide exactly one of score or answers", ErrInvalidInput)
	ErrAnswerLengthMismatch      = fmt.Errorf("%w: answer count does not match question count", ErrInvalidInput)
	ErrAnswerKeyMissing          = fmt.Errorf("%w: course has no answer key", ErrInvalidInput)
	ErrNoRegularTopics           = fmt.Errorf("%w: course has no regular topics", ErrInvalidInput)
	ErrFinalAssessmentNavigation = fmt.Errorf("%w: the final assessment is not part of topic navigation", ErrInvalidInput)
	ErrInvalidRating             = fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	ErrInvalidCompletionStatus   = fmt.Errorf("%w: unknown completion status", ErrInvalidInput)
	ErrInvalidQuizSheet          = fmt.Errorf("%w: quiz sheet is malformed", ErrInvalidInput)
	ErrCourseNotApproved         = fmt.Errorf("%w: course is not open for enrollment", ErrInvalidInput)
	ErrNotAnInstructor           = fmt.Errorf("%w: user is not an instructor", ErrInvalidInput)
)

// Conflicts
var (
	ErrConflict                  = errors.New("conflict")
	ErrEnrollmentExists          = fmt.Errorf("student is already enrolled: %w", ErrConflict)
	ErrTopicAlreadyMapped        = fmt.Errorf("topic already mapped to course: %w", ErrConflict)
	ErrInstructorAlreadyAssigned = fmt.Errorf("instructor already assigned: %w", ErrConflict)
	ErrUniversityExists          = fmt.Errorf("university name taken: %w", ErrConflict)
)

// Authentication and authorization
var (
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("forbidden")
)

// PermissionError reports an actor lacking rights on a resource
type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func (e *PermissionError) Unwrap() error { return ErrForbidden }

// BusinessRuleError reports a request that is well formed but not allowed in the current state
type BusinessRuleError struct {
	Rule    string
	Message string
	Details map[string]interface{}
}

func NewBusinessRuleError(rule, message string, details map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message, Details: details}
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

func NewValidationError(field, message string, value interface{}) error {
	return validator.ValidationErrors{{Field: field, Message: message, Value: value, Rule: "business_logic"}}
}

// ===== CLASSIFIERS =====

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || repositories.IsNotFoundError(err)
}

func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsInvalidInput(err error) bool {
	var ve validator.ValidationErrors
	return errors.Is(err, ErrInvalidInput) || errors.As(err, &ve)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || repositories.IsDuplicateError(err)
}

// notFoundAs maps a repository miss onto the service sentinel and wraps anything else
func notFoundAs(err error, sentinel error, action string) error {
	if repositories.IsNotFoundError(err) {
		return sentinel
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
