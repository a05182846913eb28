package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserProfileResponse struct {
	User     UserResponse     `json:"user"`
	Progress ProgressResponse `json:"progress"`
}

// UpdateProfileRequest leaves a profile field unchanged when it is omitted.
type UpdateProfileRequest struct {
	FullName      string  `json:"fullName" validate:"required,min=2,max=255"`
	AvatarURL     *string `json:"avatarUrl" validate:"omitempty,url,max=2048"`
	MbtiType      *string `json:"mbtiType" validate:"omitempty,len=4,alpha"`
	DecisionStyle *string `json:"decisionStyle" validate:"omitempty,max=50"`
	PrimaryBias   *string `json:"primaryBias" validate:"omitempty,max=50"`
}

type OnboardingRequest struct {
	MbtiType      string `json:"mbtiType" validate:"required,len=4,alpha"`
	DecisionStyle string `json:"decisionStyle" validate:"required,max=50"`
	PrimaryBias   string `json:"primaryBias" validate:"required,max=50"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,nefield=CurrentPassword"`
}

type ListUsersQuery struct {
	Search string `query:"q" validate:"max=100"`
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// DirectoryUserResponse is what other users may see of an account.
type DirectoryUserResponse struct {
	Id        uuid.UUID `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
}

type UserListResponse struct {
	Items []DirectoryUserResponse `json:"items"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

type CommunityQuery struct {
	Page  int `query:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

type CommunityProfileResponse struct {
	Rank               int       `json:"rank"`
	UserId             uuid.UUID `json:"userId"`
	FullName           string    `json:"fullName"`
	AvatarURL          string    `json:"avatarUrl,omitempty"`
	Level              int       `json:"level"`
	Xp                 int       `json:"xp"`
	Streak             int       `json:"streak"`
	CompletedScenarios int       `json:"completedScenarios"`
	RationalityScore   int       `json:"rationalityScore"`
	DecisivenessScore  int       `json:"decisivenessScore"`
	MbtiType           string    `json:"mbtiType,omitempty"`
	DecisionStyle      string    `json:"decisionStyle,omitempty"`
	PrimaryBias        string    `json:"primaryBias,omitempty"`
}

type CommunityProfilesResponse struct {
	Items []CommunityProfileResponse `json:"items"`
	Total int64                      `json:"total"`
	Page  int                        `json:"page"`
	Limit int                        `json:"limit"`
}

const (
	ActivityScenarioCreated = "scenario_created"
	ActivityLevelReached    = "level_reached"
)

type CommunityActivityResponse struct {
	Type       string     `json:"type"`
	UserId     *uuid.UUID `json:"userId,omitempty"`
	UserName   string     `json:"userName"`
	Details    string     `json:"details"`
	ScenarioId *uuid.UUID `json:"scenarioId,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}
