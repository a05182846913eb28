package entity

import (
	"time"

	"decidely-be/pkg/progress"

	"github.com/google/uuid"
)

// UserProgress wraps the engine state with its persistence identity.
type UserProgress struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	State     progress.State
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type DecisionRecord struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	ScenarioId   uuid.UUID
	Profile      string
	OptionChosen string
	IsCorrect    bool
	XpAwarded    int
	Reflection   string
	Samples      progress.Samples
	CompletedAt  time.Time
}

// ToProgressRecord converts to the engine's representation.
func (d *DecisionRecord) ToProgressRecord() progress.DecisionRecord {
	return progress.DecisionRecord{
		ScenarioID:   d.ScenarioId.String(),
		OptionChosen: d.OptionChosen,
		IsCorrect:    d.IsCorrect,
		CompletedAt:  d.CompletedAt,
		Reflection:   d.Reflection,
		Samples:      d.Samples,
	}
}

// Standing is a user's public profile joined with their progress counters.
// Users without a progress row read as level 1 with zero counters.
type Standing struct {
	UserId             uuid.UUID
	FullName           string
	AvatarURL          *string
	MbtiType           string
	DecisionStyle      string
	PrimaryBias        string
	Xp                 int
	Level              int
	Streak             int
	RationalityScore   int
	DecisivenessScore  int
	CompletedScenarios int
}
