package services

import (
	"math"
	"strings"

	"github.com/SAP-F-2025/course-service/internal/models"
)

const FailingGrade = "F"

// gradeThresholds is checked top down; the first minimum reached wins
var gradeThresholds = []struct {
	min    int
	letter string
}{
	{90, "A"},
	{75, "B"},
	{60, "C"},
	{50, "D"},
}

// LetterGrade maps a percentage onto the 90/75/60/50 scale
func LetterGrade(percent int) string {
	for _, t := range gradeThresholds {
		if percent >= t.min {
			return t.letter
		}
	}
	return FailingGrade
}

func IsPassingGrade(grade string) bool {
	return grade != FailingGrade
}

// ExpectedAnswers picks the answer source: a quiz with questions wins over
// the course answer key. Questions must already be ordered by position.
func ExpectedAnswers(quiz *models.Quiz, answerKey *string) []string {
	if quiz != nil && len(quiz.Questions) > 0 {
		expected := make([]string, len(quiz.Questions))
		for i, q := range quiz.Questions {
			expected[i] = q.CorrectAnswer
		}
		return expected
	}

	if answerKey == nil {
		return nil
	}
	key := strings.TrimSpace(*answerKey)
	expected := make([]string, 0, len(key))
	for _, r := range key {
		expected = append(expected, string(r))
	}
	return expected
}

// ScoreAnswers returns round(correct/total*100). A nil answer is wrong.
func ScoreAnswers(expected []string, answers []*string) (int, error) {
	if len(expected) == 0 {
		return 0, ErrAnswerKeyMissing
	}
	if len(answers) != len(expected) {
		return 0, ErrAnswerLengthMismatch
	}

	correct := 0
	for i, want := range expected {
		if answers[i] == nil {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(*answers[i]), strings.TrimSpace(want)) {
			correct++
		}
	}

	return int(math.Round(float64(correct) / float64(len(expected)) * 100)), nil
}
