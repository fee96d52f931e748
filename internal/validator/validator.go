package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/course-service/internal/models"
)

// ValidationError describes one rejected field
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}

	messages := make([]string, len(ve))
	for i, e := range ve {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(messages, "; ")
}

// Validator wraps go-playground/validator with the platform's custom tags
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report json names rather than Go field names
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	v := &Validator{validate: validate}
	v.registerRules()
	return v
}

// Validate returns nil or ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ToValidationErrors converts validator errors into ValidationErrors
func ToValidationErrors(err error) ValidationErrors {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return ValidationErrors{{Field: "request", Message: err.Error(), Rule: "invalid"}}
	}

	out := make(ValidationErrors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "url":
		return "must be a valid URL"
	case "answer_letter":
		return "must be a single letter"
	case "rating_range":
		return "must be between 1 and 5"
	case "answer_key":
		return "must be 1 to 15 letters"
	case "course_level":
		return "must be beginner, intermediate or advanced"
	case "sequence_order":
		return "must be between 1 and 10000"
	case "content_type":
		return "must be video, document, link or other"
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}

func (v *Validator) registerRules() {
	// One letter, either case
	_ = v.validate.RegisterValidation("answer_letter", func(fl validator.FieldLevel) bool {
		return isLetters(strings.TrimSpace(fl.Field().String()), 1)
	})

	_ = v.validate.RegisterValidation("rating_range", func(fl validator.FieldLevel) bool {
		rating := fl.Field().Int()
		return rating >= 1 && rating <= 5
	})

	// One letter per question, at most 15 questions
	_ = v.validate.RegisterValidation("answer_key", func(fl validator.FieldLevel) bool {
		key := strings.TrimSpace(fl.Field().String())
		return len(key) >= 1 && isLetters(key, 15)
	})

	_ = v.validate.RegisterValidation("course_level", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "beginner", "intermediate", "advanced":
			return true
		}
		return false
	})

	_ = v.validate.RegisterValidation("sequence_order", func(fl validator.FieldLevel) bool {
		order := fl.Field().Int()
		return order >= 1 && order <= 10000
	})

	_ = v.validate.RegisterValidation("content_type", func(fl validator.FieldLevel) bool {
		switch models.ContentType(fl.Field().String()) {
		case models.ContentVideo, models.ContentDocument, models.ContentLink, models.ContentOther:
			return true
		}
		return false
	})
}

func isLetters(s string, maxLen int) bool {
	if s == "" || len(s) > maxLen {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
