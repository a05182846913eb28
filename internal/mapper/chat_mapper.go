package mapper

import (
	"decidely-be/internal/entity"
	"decidely-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ThreadToEntity(t *model.ChatThread) *entity.ChatThread {
	if t == nil {
		return nil
	}
	unread := make(map[uuid.UUID]int)
	for k, v := range t.UnreadCounts.Data() {
		if id, err := uuid.Parse(k); err == nil {
			unread[id] = v
		}
	}
	out := &entity.ChatThread{
		Id:           t.Id,
		Participants: [2]uuid.UUID{t.ParticipantLow, t.ParticipantHigh},
		UnreadCounts: unread,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if t.LastMessageAt != nil && t.LastMessageSenderId != nil {
		last := &entity.LastMessage{SenderId: *t.LastMessageSenderId, SentAt: *t.LastMessageAt}
		if t.LastMessageContent != nil {
			last.Content = *t.LastMessageContent
		}
		out.LastMessage = last
	}
	return out
}

func (m *ChatMapper) ThreadToModel(t *entity.ChatThread) *model.ChatThread {
	if t == nil {
		return nil
	}
	unread := make(map[string]int, len(t.UnreadCounts))
	for k, v := range t.UnreadCounts {
		unread[k.String()] = v
	}
	low, high := entity.CanonicalPair(t.Participants[0], t.Participants[1])
	out := &model.ChatThread{
		Id:              t.Id,
		ParticipantLow:  low,
		ParticipantHigh: high,
		UnreadCounts:    datatypes.NewJSONType(unread),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	if t.LastMessage != nil {
		content := t.LastMessage.Content
		sender := t.LastMessage.SenderId
		sentAt := t.LastMessage.SentAt
		out.LastMessageContent = &content
		out.LastMessageSenderId = &sender
		out.LastMessageAt = &sentAt
	}
	return out
}

func (m *ChatMapper) ThreadsToEntities(threads []*model.ChatThread) []*entity.ChatThread {
	out := make([]*entity.ChatThread, len(threads))
	for i, t := range threads {
		out[i] = m.ThreadToEntity(t)
	}
	return out
}

func (m *ChatMapper) MessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}
	readBy := make([]uuid.UUID, 0, len(msg.ReadBy))
	for _, s := range msg.ReadBy {
		if id, err := uuid.Parse(s); err == nil {
			readBy = append(readBy, id)
		}
	}
	out := &entity.ChatMessage{
		Id:        msg.Id,
		ThreadId:  msg.ThreadId,
		SenderId:  msg.SenderId,
		Content:   msg.Content,
		Type:      entity.MessageType(msg.MessageType),
		ReadBy:    readBy,
		CreatedAt: msg.CreatedAt,
	}
	if msg.FileUrl != nil {
		out.Attachment = &entity.Attachment{FileUrl: *msg.FileUrl}
		if msg.FileName != nil {
			out.Attachment.FileName = *msg.FileName
		}
		if msg.FileType != nil {
			out.Attachment.FileType = *msg.FileType
		}
	}
	if msg.SharedScenarioId != nil {
		summary := msg.SharedScenario.Data()
		out.SharedScenario = &entity.SharedScenario{
			ScenarioId:  *msg.SharedScenarioId,
			Title:       summary.Title,
			Description: summary.Description,
			Category:    summary.Category,
			Difficulty:  summary.Difficulty,
			XpReward:    summary.XpReward,
		}
	}
	return out
}

func (m *ChatMapper) MessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}
	readBy := make([]string, len(msg.ReadBy))
	for i, id := range msg.ReadBy {
		readBy[i] = id.String()
	}
	out := &model.ChatMessage{
		Id:          msg.Id,
		ThreadId:    msg.ThreadId,
		SenderId:    msg.SenderId,
		Content:     msg.Content,
		MessageType: string(msg.Type),
		ReadBy:      datatypes.NewJSONSlice(readBy),
		CreatedAt:   msg.CreatedAt,
	}
	if msg.Attachment != nil {
		out.FileUrl = &msg.Attachment.FileUrl
		out.FileName = &msg.Attachment.FileName
		out.FileType = &msg.Attachment.FileType
	}
	if msg.SharedScenario != nil {
		id := msg.SharedScenario.ScenarioId
		out.SharedScenarioId = &id
		out.SharedScenario = datatypes.NewJSONType(model.SharedScenarioSummary{
			Title:       msg.SharedScenario.Title,
			Description: msg.SharedScenario.Description,
			Category:    msg.SharedScenario.Category,
			Difficulty:  msg.SharedScenario.Difficulty,
			XpReward:    msg.SharedScenario.XpReward,
		})
	}
	return out
}

func (m *ChatMapper) MessagesToEntities(msgs []*model.ChatMessage) []*entity.ChatMessage {
	out := make([]*entity.ChatMessage, len(msgs))
	for i, msg := range msgs {
		out[i] = m.MessageToEntity(msg)
	}
	return out
}
