package dto

import (
	"time"

	"decidely-be/pkg/progress"

	"github.com/google/uuid"
)

type SubmitScenarioResponseRequest struct {
	ScenarioId   uuid.UUID `json:"scenarioId" validate:"required"`
	OptionChosen string    `json:"optionChosen" validate:"required"`
}

// CompleteChallengeRequest without an option counts as a plain completion.
type CompleteChallengeRequest struct {
	ChallengeId  uuid.UUID `json:"challengeId" validate:"required"`
	OptionChosen string    `json:"optionChosen" validate:"max=1000"`
}

// ScoreSamples are optional self-assessed skill readings, 0-100.
type ScoreSamples struct {
	Rationality  *int `json:"rationality" validate:"omitempty,min=0,max=100"`
	Decisiveness *int `json:"decisiveness" validate:"omitempty,min=0,max=100"`
	Empathy      *int `json:"empathy" validate:"omitempty,min=0,max=100"`
	Clarity      *int `json:"clarity" validate:"omitempty,min=0,max=100"`
}

type CompleteScenarioRequest struct {
	ScenarioId  uuid.UUID     `json:"scenarioId" validate:"required"`
	OptionIndex *int          `json:"optionIndex" validate:"required,min=0"`
	Reflection  string        `json:"reflection" validate:"max=5000"`
	Scores      *ScoreSamples `json:"scores"`
}

type DecisionResponse struct {
	ScenarioId   string    `json:"scenarioId"`
	OptionChosen string    `json:"optionChosen"`
	IsCorrect    bool      `json:"isCorrect"`
	Reflection   string    `json:"reflection,omitempty"`
	CompletedAt  time.Time `json:"completedAt"`
}

type ProgressResponse struct {
	Xp                 int                   `json:"xp"`
	Level              int                   `json:"level"`
	Streak             int                   `json:"streak"`
	RationalityScore   int                   `json:"rationalityScore"`
	DecisivenessScore  int                   `json:"decisivenessScore"`
	EmpathyScore       int                   `json:"empathyScore"`
	ClarityScore       int                   `json:"clarityScore"`
	LastActivityDate   *time.Time            `json:"lastActivityDate"`
	CompletedScenarios int                   `json:"completedScenarios"`
	CorrectDecisions   int                   `json:"correctDecisions"`
	OverallScore       int                   `json:"overallScore"`
	Chart              []progress.ChartPoint `json:"chart"`
	RecentDecisions    []DecisionResponse    `json:"recentDecisions"`
}

// DecisionResultResponse is returned by every completion endpoint. Status is
// "recorded" or "already_completed"; the latter carries the unchanged progress.
type DecisionResultResponse struct {
	Status    string           `json:"status"`
	IsCorrect bool             `json:"isCorrect"`
	Feedback  string           `json:"feedback,omitempty"`
	XpAwarded int              `json:"xpAwarded"`
	LeveledUp bool             `json:"leveledUp"`
	Progress  ProgressResponse `json:"progress"`
}
