package dto

import (
	"time"

	"github.com/google/uuid"
)

type ScenarioOptionRequest struct {
	Text      string `json:"text" validate:"required,max=1000"`
	IsCorrect bool   `json:"isCorrect"`
	Feedback  string `json:"feedback" validate:"max=2000"`
}

type CreateScenarioRequest struct {
	Title       string                  `json:"title" validate:"required,max=200"`
	Description string                  `json:"description" validate:"required"`
	Content     string                  `json:"content"`
	Category    string                  `json:"category" validate:"required,max=50"`
	XpReward    int                     `json:"xpReward" validate:"required,min=1"`
	Difficulty  int                     `json:"difficulty" validate:"required,min=1,max=5"`
	Type        string                  `json:"type" validate:"omitempty,oneof=scenario daily_challenge"`
	ActiveDate  string                  `json:"activeDate" validate:"omitempty,datetime=2006-01-02"`
	Options     []ScenarioOptionRequest `json:"options" validate:"required,min=2,dive"`
}

type ListScenariosQuery struct {
	Category   string `query:"category"`
	Difficulty int    `query:"difficulty" validate:"omitempty,min=1,max=5"`
	Type       string `query:"type" validate:"omitempty,oneof=scenario daily_challenge"`
	Page       int    `query:"page" validate:"omitempty,min=1"`
	Limit      int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// ScenarioOptionResponse omits correctness so the catalog does not leak answers.
type ScenarioOptionResponse struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type ScenarioResponse struct {
	Id          uuid.UUID                `json:"id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Content     string                   `json:"content,omitempty"`
	Category    string                   `json:"category"`
	XpReward    int                      `json:"xpReward"`
	Difficulty  int                      `json:"difficulty"`
	Type        string                   `json:"type"`
	ActiveDate  string                   `json:"activeDate,omitempty"`
	Options     []ScenarioOptionResponse `json:"options"`
	Attempts    int                      `json:"attempts"`
	SuccessRate int                      `json:"successRate"`
	CreatedAt   time.Time                `json:"createdAt"`
}

type ScenarioListResponse struct {
	Items []ScenarioResponse `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type ShareScenarioResponse struct {
	Id          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Difficulty  int       `json:"difficulty"`
	XpReward    int       `json:"xpReward"`
	Type        string    `json:"type"`
	ShareURL    string    `json:"shareUrl"`
}

type DailyChallengeResponse struct {
	ScenarioResponse
	Completed bool `json:"completed"`
}

// ScenarioAttemptMessage is queued after a recorded decision to update the
// catalog attempt counters.
type ScenarioAttemptMessage struct {
	ScenarioId uuid.UUID `json:"scenario_id"`
	Successful bool      `json:"successful"`
}
