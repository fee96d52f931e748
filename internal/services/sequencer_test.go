package services

import (
	"errors"
	"testing"

	"github.com/SAP-F-2025/course-service/internal/models"
)

func mapping(id uint, name string, order int) models.CourseTopic {
	return models.CourseTopic{ID: id, TopicID: id, SequenceOrder: order, Topic: models.Topic{ID: id, Name: name}}
}

func TestRegularTopics(t *testing.T) {
	mappings := []models.CourseTopic{
		mapping(4, "Final Assessment", 4),
		mapping(3, "T3", 3),
		mapping(1, "T1", 1),
		mapping(2, "T2", 2),
		mapping(5, "  final assessment ", 0),
	}

	got := RegularTopics(mappings)
	want := []uint{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("RegularTopics() len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("RegularTopics()[%d] = %d, want %d", i, got[i].ID, id)
		}
	}

	if mappings[0].Topic.ID != 4 {
		t.Error("RegularTopics() must not reorder its input")
	}
}

func TestRegularTopics_TiesBreakOnMappingID(t *testing.T) {
	got := RegularTopics([]models.CourseTopic{mapping(9, "B", 1), mapping(2, "A", 1)})
	if got[0].ID != 2 || got[1].ID != 9 {
		t.Errorf("tie order = [%d %d], want [2 9]", got[0].ID, got[1].ID)
	}
}

func TestRollbackTarget(t *testing.T) {
	walk := RegularTopics([]models.CourseTopic{
		mapping(10, "T1", 1),
		mapping(20, "T2", 2),
		mapping(30, "T3", 3),
		mapping(40, "Final Assessment", 4),
	})

	tests := []struct {
		name    string
		topicID uint
		want    *uint
		wantOK  bool
	}{
		{name: "first topic clears pointer", topicID: 10, want: nil, wantOK: true},
		{name: "second goes to first", topicID: 20, want: uintPtr(10), wantOK: true},
		{name: "last goes to previous", topicID: 30, want: uintPtr(20), wantOK: true},
		{name: "sentinel is not in walk", topicID: 40, wantOK: false},
		{name: "unknown topic", topicID: 99, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RollbackTarget(walk, tt.topicID)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("target = %d, want nil", *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("target = %v, want %d", got, *tt.want)
			}
		})
	}
}

func TestResetTarget(t *testing.T) {
	walk := RegularTopics([]models.CourseTopic{mapping(7, "T2", 2), mapping(5, "T1", 1)})
	if got, err := ResetTarget(walk); err != nil || got != 5 {
		t.Errorf("ResetTarget() = %d, %v, want 5", got, err)
	}

	onlySentinel := RegularTopics([]models.CourseTopic{mapping(1, "Final Assessment", 1)})
	if _, err := ResetTarget(onlySentinel); !errors.Is(err, ErrNoRegularTopics) {
		t.Errorf("ResetTarget() error = %v, want ErrNoRegularTopics", err)
	}
	if !IsInvalidInput(ErrNoRegularTopics) {
		t.Error("ErrNoRegularTopics should classify as invalid input")
	}
}

func uintPtr(v uint) *uint { return &v }
