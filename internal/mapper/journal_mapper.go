package mapper

import (
	"decidely-be/internal/entity"
	"decidely-be/internal/model"

	"gorm.io/datatypes"
)

type JournalMapper struct{}

func NewJournalMapper() *JournalMapper {
	return &JournalMapper{}
}

func (m *JournalMapper) ToEntity(j *model.JournalEntry) *entity.JournalEntry {
	if j == nil {
		return nil
	}
	return &entity.JournalEntry{
		Id:         j.Id,
		UserId:     j.UserId,
		Title:      j.Title,
		Context:    j.Context,
		Options:    []string(j.Options),
		Decision:   j.Decision,
		Reflection: j.Reflection,
		CreatedAt:  j.CreatedAt,
		UpdatedAt:  j.UpdatedAt,
	}
}

func (m *JournalMapper) ToModel(j *entity.JournalEntry) *model.JournalEntry {
	if j == nil {
		return nil
	}
	return &model.JournalEntry{
		Id:         j.Id,
		UserId:     j.UserId,
		Title:      j.Title,
		Context:    j.Context,
		Options:    datatypes.NewJSONSlice(j.Options),
		Decision:   j.Decision,
		Reflection: j.Reflection,
		CreatedAt:  j.CreatedAt,
		UpdatedAt:  j.UpdatedAt,
	}
}

func (m *JournalMapper) ToEntities(entries []*model.JournalEntry) []*entity.JournalEntry {
	out := make([]*entity.JournalEntry, len(entries))
	for i, e := range entries {
		out[i] = m.ToEntity(e)
	}
	return out
}
