package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	Id           uuid.UUID
	Email        string
	PasswordHash *string
	FullName     string
	Role         UserRole
	AvatarURL    *string

	MbtiType            string
	DecisionStyle       string
	PrimaryBias         string
	OnboardingCompleted bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
