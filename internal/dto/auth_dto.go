package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required,min=2,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	Id                  uuid.UUID `json:"id"`
	Email               string    `json:"email"`
	FullName            string    `json:"fullName"`
	Role                string    `json:"role"`
	AvatarURL           string    `json:"avatarUrl,omitempty"`
	MbtiType            string    `json:"mbtiType,omitempty"`
	DecisionStyle       string    `json:"decisionStyle,omitempty"`
	PrimaryBias         string    `json:"primaryBias,omitempty"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
	CreatedAt           time.Time `json:"createdAt"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}
