package service

import (
	"context"
	"strings"
	"time"

	"decidely-be/internal/dto"
	"decidely-be/internal/entity"
	"decidely-be/internal/pkg/logger"
	"decidely-be/internal/pkg/serverutils"
	"decidely-be/internal/repository/memory"
	"decidely-be/internal/repository/scope"
	"decidely-be/internal/repository/specification"
	"decidely-be/internal/repository/unitofwork"
	"decidely-be/pkg/relay"

	"github.com/google/uuid"
)

// MessageNotifier pushes a relay frame to every live connection of a user.
type MessageNotifier interface {
	NotifyUser(userID uuid.UUID, frame []byte)
}

type IChatService interface {
	ListThreads(ctx context.Context, userId uuid.UUID) (*dto.ChatListResponse, error)
	GetThread(ctx context.Context, userId uuid.UUID, threadId uuid.UUID) (*dto.ChatThreadDetailResponse, error)
	SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	MarkRead(ctx context.Context, userId uuid.UUID, threadId uuid.UUID) (*dto.MarkReadResponse, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.ScenarioCache
	notifier   MessageNotifier
	clock      func() time.Time
	logger     logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	cache *memory.ScenarioCache,
	notifier MessageNotifier,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		cache:      cache,
		notifier:   notifier,
		clock:      time.Now,
		logger:     log,
	}
}

func (s *chatService) ListThreads(ctx context.Context, userId uuid.UUID) (*dto.ChatListResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	threads, err := uow.ChatThreadRepository().FindAll(ctx,
		specification.ThreadParticipant{UserID: userId},
		specification.Scoped(scope.RecentActivityFirst),
	)
	if err != nil {
		return nil, err
	}

	others, err := s.loadUsers(ctx, uow, threads, userId)
	if err != nil {
		return nil, err
	}

	result := &dto.ChatListResponse{Threads: make([]dto.ChatThreadResponse, 0, len(threads))}
	for _, t := range threads {
		res := toThreadResponse(t, userId, others[t.Other(userId)])
		result.TotalUnread += res.UnreadCount
		result.Threads = append(result.Threads, res)
	}
	return result, nil
}

func (s *chatService) GetThread(ctx context.Context, userId uuid.UUID, threadId uuid.UUID) (*dto.ChatThreadDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	thread, err := uow.ChatThreadRepository().FindOne(ctx, specification.ByID{ID: threadId})
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, serverutils.NotFound("Thread not found")
	}
	if !thread.HasParticipant(userId) {
		return nil, serverutils.Forbidden("You are not a participant of this thread")
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByThreadID{ThreadID: threadId},
		specification.Scoped(scope.OrderByCreatedAsc),
	)
	if err != nil {
		return nil, err
	}

	others, err := s.loadUsers(ctx, uow, []*entity.ChatThread{thread}, userId)
	if err != nil {
		return nil, err
	}

	res := &dto.ChatThreadDetailResponse{
		ChatThreadResponse: toThreadResponse(thread, userId, others[thread.Other(userId)]),
		Messages:           make([]dto.ChatMessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		res.Messages = append(res.Messages, toMessageResponse(m))
	}
	return res, nil
}

// SendMessage appends to the thread of the (sender, recipient) pair, creating
// it on first contact, and then pushes the message to the recipient's live
// connections.
func (s *chatService) SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	if req.RecipientId == userId {
		return nil, serverutils.BadRequest("You cannot message yourself")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" && req.Attachment == nil && req.ScenarioId == nil {
		return nil, serverutils.BadRequest("A message needs content, an attachment or a shared scenario")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	recipient, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: req.RecipientId})
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, serverutils.NotFound("Recipient not found")
	}

	message := &entity.ChatMessage{
		Id:        uuid.New(),
		SenderId:  userId,
		Content:   content,
		Type:      entity.MessageTypeText,
		ReadBy:    []uuid.UUID{userId},
		CreatedAt: s.clock(),
	}
	switch {
	case req.ScenarioId != nil:
		scenario, err := findScenario(ctx, uow, s.cache, *req.ScenarioId)
		if err != nil {
			return nil, err
		}
		message.Type = entity.MessageTypeScenario
		if scenario.Type == entity.ScenarioTypeDailyChallenge {
			message.Type = entity.MessageTypeChallenge
		}
		message.SharedScenario = &entity.SharedScenario{
			ScenarioId:  scenario.Id,
			Title:       scenario.Title,
			Description: scenario.Description,
			Category:    scenario.Category,
			Difficulty:  scenario.Difficulty,
			XpReward:    scenario.XpReward,
		}
	case req.Attachment != nil:
		message.Type = entity.MessageTypeFile
		message.Attachment = &entity.Attachment{
			FileUrl:  req.Attachment.FileUrl,
			FileName: req.Attachment.FileName,
			FileType: req.Attachment.FileType,
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	threads := uow.ChatThreadRepository()
	pair, err := threads.FindOrCreateByPair(ctx, userId, req.RecipientId)
	if err != nil {
		return nil, err
	}
	thread, err := threads.FindByIDForUpdate(ctx, pair.Id)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, serverutils.NotFound("Thread not found")
	}

	message.ThreadId = thread.Id
	if err := uow.ChatMessageRepository().Create(ctx, message); err != nil {
		return nil, err
	}

	if thread.UnreadCounts == nil {
		thread.UnreadCounts = make(map[uuid.UUID]int, 2)
	}
	thread.UnreadCounts[req.RecipientId]++
	thread.LastMessage = &entity.LastMessage{
		Content:  previewOf(message),
		SenderId: userId,
		SentAt:   message.CreatedAt,
	}
	if err := threads.UpdateSummary(ctx, thread); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	res := toMessageResponse(message)
	s.notify(req.RecipientId, thread.Id, res)

	return &dto.SendMessageResponse{
		ThreadId: thread.Id,
		Message:  res,
	}, nil
}

func (s *chatService) MarkRead(ctx context.Context, userId uuid.UUID, threadId uuid.UUID) (*dto.MarkReadResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	thread, err := uow.ChatThreadRepository().FindByIDForUpdate(ctx, threadId)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, serverutils.NotFound("Thread not found")
	}
	if !thread.HasParticipant(userId) {
		return nil, serverutils.Forbidden("You are not a participant of this thread")
	}

	updated, err := uow.ChatMessageRepository().MarkThreadRead(ctx, threadId, userId)
	if err != nil {
		return nil, err
	}

	if thread.UnreadCounts[userId] != 0 {
		thread.UnreadCounts[userId] = 0
		if err := uow.ChatThreadRepository().UpdateSummary(ctx, thread); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.MarkReadResponse{ThreadId: threadId, Updated: updated}, nil
}

func (s *chatService) notify(recipientId, threadId uuid.UUID, message dto.ChatMessageResponse) {
	if s.notifier == nil {
		return
	}
	frame, err := relay.Encode(relay.TypeReceiveMessage, threadId.String(), message)
	if err != nil {
		s.logger.Error("ChatService", "Failed to encode message frame", map[string]interface{}{
			"thread_id": threadId,
			"error":     err.Error(),
		})
		return
	}
	s.notifier.NotifyUser(recipientId, frame)
}

func (s *chatService) loadUsers(ctx context.Context, uow unitofwork.UnitOfWork, threads []*entity.ChatThread, userId uuid.UUID) (map[uuid.UUID]*entity.User, error) {
	out := make(map[uuid.UUID]*entity.User, len(threads))
	if len(threads) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, 0, len(threads))
	for _, t := range threads {
		ids = append(ids, t.Other(userId))
	}
	users, err := uow.UserRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.Id] = u
	}
	return out, nil
}

// ThreadAccess answers relay join checks against the thread table.
type ThreadAccess struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewThreadAccess(uowFactory unitofwork.RepositoryFactory) *ThreadAccess {
	return &ThreadAccess{uowFactory: uowFactory}
}

func (a *ThreadAccess) IsParticipant(ctx context.Context, threadID, userID uuid.UUID) (bool, error) {
	uow := a.uowFactory.NewUnitOfWork(ctx)
	thread, err := uow.ChatThreadRepository().FindOne(ctx, specification.ByID{ID: threadID})
	if err != nil {
		return false, err
	}
	return thread != nil && thread.HasParticipant(userID), nil
}

func previewOf(m *entity.ChatMessage) string {
	switch {
	case m.Content != "":
		return m.Content
	case m.SharedScenario != nil:
		return "Shared: " + m.SharedScenario.Title
	case m.Attachment != nil:
		return "Attachment: " + m.Attachment.FileName
	default:
		return ""
	}
}

func toThreadResponse(t *entity.ChatThread, viewer uuid.UUID, other *entity.User) dto.ChatThreadResponse {
	res := dto.ChatThreadResponse{
		Id:            t.Id,
		Participants:  []uuid.UUID{t.Participants[0], t.Participants[1]},
		UnreadCount:   t.UnreadCounts[viewer],
		LastUpdatedAt: t.UpdatedAt,
	}
	if t.LastMessage != nil {
		res.LastMessage = &dto.LastMessageResponse{
			Content:  t.LastMessage.Content,
			SenderId: t.LastMessage.SenderId,
			SentAt:   t.LastMessage.SentAt,
		}
		res.LastUpdatedAt = t.LastMessage.SentAt
	}
	if other != nil {
		u := toUserResponse(other)
		res.OtherUser = &u
	}
	return res
}

func toMessageResponse(m *entity.ChatMessage) dto.ChatMessageResponse {
	res := dto.ChatMessageResponse{
		Id:        m.Id,
		ThreadId:  m.ThreadId,
		SenderId:  m.SenderId,
		Content:   m.Content,
		Type:      string(m.Type),
		ReadBy:    m.ReadBy,
		CreatedAt: m.CreatedAt,
	}
	if res.ReadBy == nil {
		res.ReadBy = []uuid.UUID{}
	}
	if m.Attachment != nil {
		res.Attachment = &dto.AttachmentResponse{
			FileUrl:  m.Attachment.FileUrl,
			FileName: m.Attachment.FileName,
			FileType: m.Attachment.FileType,
		}
	}
	if m.SharedScenario != nil {
		res.SharedScenario = &dto.SharedScenarioResponse{
			ScenarioId:  m.SharedScenario.ScenarioId,
			Title:       m.SharedScenario.Title,
			Description: m.SharedScenario.Description,
			Category:    m.SharedScenario.Category,
			Difficulty:  m.SharedScenario.Difficulty,
			XpReward:    m.SharedScenario.XpReward,
		}
	}
	return res
}
