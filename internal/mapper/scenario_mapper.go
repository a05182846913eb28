package mapper

import (
	"decidely-be/internal/entity"
	"decidely-be/internal/model"

	"gorm.io/datatypes"
)

type ScenarioMapper struct{}

func NewScenarioMapper() *ScenarioMapper {
	return &ScenarioMapper{}
}

func (m *ScenarioMapper) ToEntity(s *model.Scenario) *entity.Scenario {
	if s == nil {
		return nil
	}
	options := make([]entity.ScenarioOption, len(s.Options))
	for i, o := range s.Options {
		options[i] = entity.ScenarioOption{Text: o.Text, IsCorrect: o.IsCorrect, Feedback: o.Feedback}
	}
	out := &entity.Scenario{
		Id:                 s.Id,
		Title:              s.Title,
		Description:        s.Description,
		Content:            s.Content,
		Category:           s.Category,
		CreatorId:          s.CreatorId,
		XpReward:           s.XpReward,
		Difficulty:         s.Difficulty,
		Type:               entity.ScenarioType(s.Type),
		Options:            options,
		Attempts:           s.Attempts,
		SuccessfulAttempts: s.SuccessfulAttempts,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
	if s.ActiveDate != nil {
		out.ActiveDate = *s.ActiveDate
	}
	return out
}

func (m *ScenarioMapper) ToModel(s *entity.Scenario) *model.Scenario {
	if s == nil {
		return nil
	}
	options := make([]model.ScenarioOption, len(s.Options))
	for i, o := range s.Options {
		options[i] = model.ScenarioOption{Text: o.Text, IsCorrect: o.IsCorrect, Feedback: o.Feedback}
	}
	out := &model.Scenario{
		Id:                 s.Id,
		Title:              s.Title,
		Description:        s.Description,
		Content:            s.Content,
		Category:           s.Category,
		CreatorId:          s.CreatorId,
		XpReward:           s.XpReward,
		Difficulty:         s.Difficulty,
		Type:               string(s.Type),
		Options:            datatypes.NewJSONSlice(options),
		Attempts:           s.Attempts,
		SuccessfulAttempts: s.SuccessfulAttempts,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
	if s.ActiveDate != "" {
		date := s.ActiveDate
		out.ActiveDate = &date
	}
	return out
}

func (m *ScenarioMapper) ToEntities(scenarios []*model.Scenario) []*entity.Scenario {
	out := make([]*entity.Scenario, len(scenarios))
	for i, s := range scenarios {
		out[i] = m.ToEntity(s)
	}
	return out
}
