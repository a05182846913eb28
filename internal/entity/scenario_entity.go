package entity

import (
	"time"

	"github.com/google/uuid"
)

type ScenarioType string

const (
	ScenarioTypeScenario       ScenarioType = "scenario"
	ScenarioTypeDailyChallenge ScenarioType = "daily_challenge"
)

// ActiveDateLayout is the storage format of Scenario.ActiveDate.
const ActiveDateLayout = "2006-01-02"

type ScenarioOption struct {
	Text      string
	IsCorrect bool
	Feedback  string
}

type Scenario struct {
	Id                 uuid.UUID
	Title              string
	Description        string
	Content            string
	Category           string
	CreatorId          *uuid.UUID
	XpReward           int
	Difficulty         int
	Type               ScenarioType
	ActiveDate         string
	Options            []ScenarioOption
	Attempts           int
	SuccessfulAttempts int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Option returns the option at index or false when out of range.
func (s *Scenario) Option(index int) (ScenarioOption, bool) {
	if index < 0 || index >= len(s.Options) {
		return ScenarioOption{}, false
	}
	return s.Options[index], true
}

// OptionByText finds an option by its exact text.
func (s *Scenario) OptionByText(text string) (int, ScenarioOption, bool) {
	for i, o := range s.Options {
		if o.Text == text {
			return i, o, true
		}
	}
	return -1, ScenarioOption{}, false
}
