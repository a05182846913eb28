package service

import (
	"context"
	"strings"
	"time"

	"decidely-be/internal/dto"
	"decidely-be/internal/pkg/logger"
	"decidely-be/internal/pkg/serverutils"
	"decidely-be/internal/repository/memory"
	"decidely-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var coachPrompts = map[string]string{
	dto.CoachRoleLifeCoach: "You are a life coach helping the user think through a personal decision. " +
		"Ask open questions, never decide for them.",
	dto.CoachRoleMentalHealth: "You are a supportive guide helping the user weigh a decision with their wellbeing in mind. " +
		"Do not give medical advice and point to professional help for serious concerns.",
	dto.CoachRoleCareerAdvisor: "You are a career advisor helping the user reason about a professional decision. " +
		"Do not promise outcomes, focus on the process.",
}

type ICoachService interface {
	Ask(ctx context.Context, userId uuid.UUID, req *dto.CoachRequest) (*dto.CoachResponse, error)
}

type coachService struct {
	llmProvider llm.LLMProvider
	quota       *memory.CoachQuota
	logger      logger.ILogger
}

func NewCoachService(llmProvider llm.LLMProvider, quota *memory.CoachQuota, log logger.ILogger) ICoachService {
	return &coachService{
		llmProvider: llmProvider,
		quota:       quota,
		logger:      log,
	}
}

func (s *coachService) Ask(ctx context.Context, userId uuid.UUID, req *dto.CoachRequest) (*dto.CoachResponse, error) {
	if s.llmProvider == nil {
		return nil, serverutils.Unavailable("Coach is not configured", nil)
	}
	if s.quota != nil && !s.quota.Allow(userId, time.Now()) {
		return nil, serverutils.NewAppError(fiber.StatusTooManyRequests, "Coach message limit reached, try again later", nil)
	}

	role := req.CoachRole
	if role == "" {
		role = dto.CoachRoleLifeCoach
	}

	history := make([]llm.Message, 0, len(req.History)+2)
	history = append(history, llm.Message{Role: "system", Content: coachPrompts[role]})
	for _, m := range req.History {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}
	history = append(history, llm.Message{Role: "user", Content: req.Prompt})

	reply, err := s.llmProvider.Chat(ctx, history, llm.WithMaxTokens(1500))
	if err != nil {
		s.logger.Error("CoachService", "LLM request failed", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
		return nil, serverutils.Unavailable("Coach is temporarily unavailable", err)
	}

	return &dto.CoachResponse{
		Reply:     strings.TrimSpace(reply),
		CoachRole: role,
	}, nil
}
