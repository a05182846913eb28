package dto

import "github.com/google/uuid"

type ScenarioQuestionsRequest struct {
	ScenarioId uuid.UUID `json:"scenarioId" validate:"required"`
}

type ScenarioQuestionsResponse struct {
	ScenarioId uuid.UUID `json:"scenarioId"`
	Questions  []string  `json:"questions"`
}

type QuestionAnswer struct {
	Question string `json:"question" validate:"required,max=1000"`
	Answer   string `json:"answer" validate:"required,max=5000"`
}

type ScenarioAnalysisRequest struct {
	ScenarioId  uuid.UUID        `json:"scenarioId" validate:"required"`
	UserAnswers []QuestionAnswer `json:"userAnswers" validate:"required,min=1,max=20,dive"`
}

// ScenarioAnalysisResponse carries the analysis as markdown.
type ScenarioAnalysisResponse struct {
	ScenarioId uuid.UUID `json:"scenarioId"`
	Analysis   string    `json:"analysis"`
}
