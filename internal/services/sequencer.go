package services

import (
	"sort"

	"github.com/SAP-F-2025/course-service/internal/models"
)

// RegularTopics returns the course walk: mappings ordered by sequence_order
// with the final assessment removed.
func RegularTopics(mappings []models.CourseTopic) []models.Topic {
	ordered := make([]models.CourseTopic, len(mappings))
	copy(ordered, mappings)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].SequenceOrder != ordered[j].SequenceOrder {
			return ordered[i].SequenceOrder < ordered[j].SequenceOrder
		}
		return ordered[i].ID < ordered[j].ID
	})

	topics := make([]models.Topic, 0, len(ordered))
	for _, m := range ordered {
		if m.Topic.IsFinalAssessment() {
			continue
		}
		topics = append(topics, m.Topic)
	}
	return topics
}

// RollbackTarget is the topic preceding topicID in the walk, or nil when
// topicID is first. ok is false when topicID is not in the walk.
func RollbackTarget(walk []models.Topic, topicID uint) (target *uint, ok bool) {
	for i, t := range walk {
		if t.ID != topicID {
			continue
		}
		if i == 0 {
			return nil, true
		}
		prev := walk[i-1].ID
		return &prev, true
	}
	return nil, false
}

// ResetTarget is the first topic of the walk
func ResetTarget(walk []models.Topic) (uint, error) {
	if len(walk) == 0 {
		return 0, ErrNoRegularTopics
	}
	return walk[0].ID, nil
}
