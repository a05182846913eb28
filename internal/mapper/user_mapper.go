package mapper

import (
	"decidely-be/internal/entity"
	"decidely-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:           u.Id,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		Role:         entity.UserRole(u.Role),
		AvatarURL:    u.AvatarURL,

		MbtiType:            u.MbtiType,
		DecisionStyle:       u.DecisionStyle,
		PrimaryBias:         u.PrimaryBias,
		OnboardingCompleted: u.OnboardingCompleted,

		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:           u.Id,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		Role:         string(u.Role),
		AvatarURL:    u.AvatarURL,

		MbtiType:            u.MbtiType,
		DecisionStyle:       u.DecisionStyle,
		PrimaryBias:         u.PrimaryBias,
		OnboardingCompleted: u.OnboardingCompleted,

		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (m *UserMapper) ToEntities(users []*model.User) []*entity.User {
	entities := make([]*entity.User, len(users))
	for i, u := range users {
		entities[i] = m.ToEntity(u)
	}
	return entities
}
