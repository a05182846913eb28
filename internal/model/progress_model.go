package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserProgress is the single progress row per user. Version is bumped on
// every write.
type UserProgress struct {
	Id                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserId            uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	Xp                int        `gorm:"not null;default:0"`
	Level             int        `gorm:"not null;default:1"`
	Streak            int        `gorm:"not null;default:0"`
	RationalityScore  int        `gorm:"not null;default:0"`
	DecisivenessScore int        `gorm:"not null;default:0"`
	EmpathyScore      int        `gorm:"not null;default:0"`
	ClarityScore      int        `gorm:"not null;default:0"`
	LastActivityAt    *time.Time `gorm:"index"`
	Version           int64      `gorm:"not null;default:0"`
	CreatedAt         time.Time  `gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

type DecisionSamples struct {
	Rationality  *int `json:"rationality,omitempty"`
	Decisiveness *int `json:"decisiveness,omitempty"`
	Empathy      *int `json:"empathy,omitempty"`
	Clarity      *int `json:"clarity,omitempty"`
}

// DecisionRecord is immutable once inserted. The (user_id, scenario_id)
// unique index rejects a second completion of the same scenario.
type DecisionRecord struct {
	Id           uuid.UUID                           `gorm:"type:uuid;primaryKey"`
	UserId       uuid.UUID                           `gorm:"type:uuid;not null;uniqueIndex:idx_decision_user_scenario,priority:1"`
	ScenarioId   uuid.UUID                           `gorm:"type:uuid;not null;uniqueIndex:idx_decision_user_scenario,priority:2;index"`
	Profile      string                              `gorm:"type:varchar(20);not null"`
	OptionChosen string                              `gorm:"type:text;not null"`
	IsCorrect    bool                                `gorm:"not null;default:false"`
	XpAwarded    int                                 `gorm:"not null;default:0"`
	Reflection   *string                             `gorm:"type:text"`
	Samples      datatypes.JSONType[DecisionSamples] `gorm:"type:jsonb"`
	CompletedAt  time.Time                           `gorm:"not null;index"`
}

func (DecisionRecord) TableName() string {
	return "decision_records"
}
