package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"decidely-be/internal/dto"
	"decidely-be/internal/entity"
	"decidely-be/internal/pkg/logger"
	"decidely-be/internal/pkg/serverutils"
	"decidely-be/internal/repository/memory"
	"decidely-be/internal/repository/unitofwork"
	"decidely-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	reflectionQuestionCount = 5

	questionsSystemPrompt = "You are an expert in ethical decision-making and critical thinking. " +
		"Generate thoughtful questions that help people explore complex decisions from multiple perspectives."
	analysisSystemPrompt = "You are an expert in ethical decision-making and critical thinking. " +
		"Analyze the user's answers with care and point out the values and trade-offs behind them."
)

var errInvalidAIFormat = errors.New("no question list in model output")

// IInsightService turns a catalog scenario into reflection questions and
// reviews the user's answers. Both calls count against the coach quota.
type IInsightService interface {
	Questions(ctx context.Context, userId uuid.UUID, req *dto.ScenarioQuestionsRequest) (*dto.ScenarioQuestionsResponse, error)
	Analyze(ctx context.Context, userId uuid.UUID, req *dto.ScenarioAnalysisRequest) (*dto.ScenarioAnalysisResponse, error)
}

type insightService struct {
	uowFactory  unitofwork.RepositoryFactory
	cache       *memory.ScenarioCache
	llmProvider llm.LLMProvider
	quota       *memory.CoachQuota
	logger      logger.ILogger
}

func NewInsightService(
	uowFactory unitofwork.RepositoryFactory,
	cache *memory.ScenarioCache,
	llmProvider llm.LLMProvider,
	quota *memory.CoachQuota,
	log logger.ILogger,
) IInsightService {
	return &insightService{
		uowFactory:  uowFactory,
		cache:       cache,
		llmProvider: llmProvider,
		quota:       quota,
		logger:      log,
	}
}

func (s *insightService) Questions(ctx context.Context, userId uuid.UUID, req *dto.ScenarioQuestionsRequest) (*dto.ScenarioQuestionsResponse, error) {
	scenario, err := s.prepare(ctx, userId, req.ScenarioId)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`Generate %d thought-provoking questions about this decision scenario:

Title: %s
Description: %s
Content: %s

The questions should:
1. Help the user explore different ethical perspectives
2. Consider potential consequences for everyone involved
3. Examine underlying values and principles
4. Challenge assumptions
5. Be open-ended and encourage reflection

Respond with JSON only, in the form {"questions": ["...", "..."]}.`,
		reflectionQuestionCount, scenario.Title, scenario.Description, scenario.Content)

	raw, err := s.ask(ctx, userId, questionsSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	questions, err := parseQuestions(raw)
	if err != nil {
		s.logger.Warn("InsightService", "Unparseable question list", map[string]interface{}{
			"scenario_id": scenario.Id.String(),
			"error":       err.Error(),
		})
		return nil, serverutils.NewAppError(fiber.StatusBadGateway, "AI returned an invalid response format", err)
	}

	return &dto.ScenarioQuestionsResponse{
		ScenarioId: scenario.Id,
		Questions:  questions,
	}, nil
}

func (s *insightService) Analyze(ctx context.Context, userId uuid.UUID, req *dto.ScenarioAnalysisRequest) (*dto.ScenarioAnalysisResponse, error) {
	scenario, err := s.prepare(ctx, userId, req.ScenarioId)
	if err != nil {
		return nil, err
	}

	var answers strings.Builder
	for i, qa := range req.UserAnswers {
		fmt.Fprintf(&answers, "Question %d: %s\nAnswer: %s\n\n", i+1, qa.Question, qa.Answer)
	}

	prompt := fmt.Sprintf(`Analyze the user's responses to this decision scenario:

Title: %s
Description: %s

%s
Write the analysis in markdown with these sections:
## Key Values Identified
## Impact Assessment
## Alternative Perspectives
## Recommendations`, scenario.Title, scenario.Description, answers.String())

	raw, err := s.ask(ctx, userId, analysisSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	analysis := stripCodeFence(raw)
	if analysis == "" {
		return nil, serverutils.NewAppError(fiber.StatusBadGateway, "AI returned an empty analysis", nil)
	}

	return &dto.ScenarioAnalysisResponse{
		ScenarioId: scenario.Id,
		Analysis:   analysis,
	}, nil
}

// prepare loads the scenario and spends one quota unit. An unknown scenario
// does not cost quota.
func (s *insightService) prepare(ctx context.Context, userId, scenarioId uuid.UUID) (*entity.Scenario, error) {
	if s.llmProvider == nil {
		return nil, serverutils.Unavailable("AI insights are not configured", nil)
	}

	scenario, err := findScenario(ctx, s.uowFactory.NewUnitOfWork(ctx), s.cache, scenarioId)
	if err != nil {
		return nil, err
	}

	if s.quota != nil && !s.quota.Allow(userId, time.Now()) {
		return nil, serverutils.NewAppError(fiber.StatusTooManyRequests, "Coach message limit reached, try again later", nil)
	}
	return scenario, nil
}

func (s *insightService) ask(ctx context.Context, userId uuid.UUID, system, prompt string) (string, error) {
	reply, err := s.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}, llm.WithMaxTokens(2000))
	if err != nil {
		s.logger.Error("InsightService", "LLM request failed", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
		return "", serverutils.Unavailable("AI insights are temporarily unavailable", err)
	}
	return reply, nil
}

// stripCodeFence removes a markdown fence wrapping the whole reply.
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}
	text = strings.TrimSuffix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	return strings.TrimSpace(text)
}

// parseQuestions reads {"questions": [...]}. Models sometimes pick another
// key, so the first non-empty string array in the object is accepted too,
// as is a bare array.
func parseQuestions(raw string) ([]string, error) {
	text := stripCodeFence(raw)
	if start, end := strings.IndexAny(text, "{["), strings.LastIndexAny(text, "}]"); start >= 0 && end > start {
		text = text[start : end+1]
	}

	var list []string
	if err := json.Unmarshal([]byte(text), &list); err == nil {
		return cleanQuestions(list)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, err
	}

	if v, ok := obj["questions"]; ok {
		if err := json.Unmarshal(v, &list); err == nil {
			return cleanQuestions(list)
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var candidate []string
		if err := json.Unmarshal(obj[k], &candidate); err == nil && len(candidate) > 0 {
			return cleanQuestions(candidate)
		}
	}
	return nil, errInvalidAIFormat
}

func cleanQuestions(list []string) ([]string, error) {
	out := make([]string, 0, len(list))
	for _, q := range list {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, errInvalidAIFormat
	}
	if len(out) > reflectionQuestionCount {
		out = out[:reflectionQuestionCount]
	}
	return out, nil
}
