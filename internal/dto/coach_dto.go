package dto

const (
	CoachRoleLifeCoach     = "life-coach"
	CoachRoleMentalHealth  = "mental-health"
	CoachRoleCareerAdvisor = "career-advisor"
)

type CoachMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=4000"`
}

type CoachRequest struct {
	Prompt    string         `json:"prompt" validate:"required,max=4000"`
	CoachRole string         `json:"coachRole" validate:"omitempty,oneof=life-coach mental-health career-advisor"`
	History   []CoachMessage `json:"history" validate:"omitempty,max=20,dive"`
}

type CoachResponse struct {
	Reply     string `json:"reply"`
	CoachRole string `json:"coachRole"`
}
