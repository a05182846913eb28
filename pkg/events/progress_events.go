package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeDecisionRecorded = "DECISION_RECORDED"
	TypeLevelUp          = "LEVEL_UP"
	TypeStreakMilestone  = "STREAK_MILESTONE"
	TypeScenarioCreated  = "SCENARIO_PUBLISHED"
)

// StreakMilestones are the streak lengths that produce a notification.
var StreakMilestones = map[int]bool{3: true, 7: true, 14: true, 30: true, 100: true}

func NewDecisionRecorded(userID, scenarioID uuid.UUID, title string, xp int, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeDecisionRecorded,
		Data: map[string]interface{}{
			"user_id":     userID.String(),
			"entity_type": "scenario",
			"entity_id":   scenarioID.String(),
			"title":       title,
			"xp":          xp,
		},
		OccurredAt: at,
	}
}

func NewLevelUp(userID uuid.UUID, level int, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeLevelUp,
		Data: map[string]interface{}{
			"user_id": userID.String(),
			"level":   level,
		},
		OccurredAt: at,
	}
}

func NewStreakMilestone(userID uuid.UUID, streak int, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeStreakMilestone,
		Data: map[string]interface{}{
			"user_id": userID.String(),
			"streak":  streak,
		},
		OccurredAt: at,
	}
}

func NewScenarioPublished(scenarioID uuid.UUID, title string, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeScenarioCreated,
		Data: map[string]interface{}{
			"entity_type": "scenario",
			"entity_id":   scenarioID.String(),
			"title":       title,
		},
		OccurredAt: at,
	}
}
