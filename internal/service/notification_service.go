package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"decidely-be/internal/model"
	"decidely-be/internal/pkg/logger"
	"decidely-be/internal/pkg/serverutils"
	"decidely-be/internal/repository"
	"decidely-be/internal/repository/implementation"
	"decidely-be/pkg/events"
	pktNats "decidely-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TargetSelf      = "SELF"
	TargetBroadcast = "BROADCAST"
)

// NotificationDelivery defines how to push real-time updates.
// Implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
	Broadcast(notification model.Notification)
}

type INotificationService interface {
	Start(ctx context.Context)
	HandleEvent(ctx context.Context, event events.Event) error
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
}

type NotificationService struct {
	repo       repository.NotificationRepository
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(repo repository.NotificationRepository, sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) INotificationService {
	return &NotificationService{
		repo:       repo,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus. Without a subscriber it is a no-op.
func (s *NotificationService) Start(ctx context.Context) {
	if s.subscriber == nil {
		s.logger.Warn("NotificationService", "No NATS subscriber configured, notifications disabled", nil)
		return
	}
	err := s.subscriber.Subscribe(ctx, pktNats.SubjectPrefix+">", "notif-service-worker", s.HandleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("NotificationService", "Notification service started", map[string]interface{}{"subject": pktNats.SubjectPrefix + ">"})
}

func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	typeCode := strings.TrimPrefix(event.EventType(), pktNats.SubjectPrefix)
	if typeCode == events.TypeUserDeleted {
		return s.purge(ctx, event)
	}

	config, err := s.repo.GetNotificationTypeByCode(ctx, typeCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Debug("NotificationService", "No notification type for event", map[string]interface{}{"code": typeCode})
			return nil
		}
		return err
	}
	if !config.IsActive {
		return nil
	}

	// Broadcasts are push only; they are not stored per user.
	if config.TargetType == TargetBroadcast {
		if s.delivery != nil {
			s.delivery.Broadcast(s.buildNotification(uuid.Nil, config, event))
		}
		return nil
	}

	recipient, ok := recipientOf(event)
	if !ok {
		s.logger.Warn("NotificationService", fmt.Sprintf("TargetType SELF but no user_id in payload for event %s", typeCode), nil)
		return nil
	}

	notif := s.buildNotification(recipient, config, event)
	if err := s.repo.CreateNotification(ctx, &notif); err != nil {
		s.logger.Error("NotificationService", "Error saving notification", map[string]interface{}{
			"user_id": recipient.String(),
			"error":   err.Error(),
		})
		return err
	}

	if s.delivery != nil {
		s.delivery.Send(recipient, notif)
	}
	return nil
}

// purge drops the inbox of a deleted account.
func (s *NotificationService) purge(ctx context.Context, event events.Event) error {
	userID, ok := recipientOf(event)
	if !ok {
		return nil
	}
	if err := s.repo.DeleteByUserID(ctx, userID); err != nil {
		s.logger.Error("NotificationService", "Error purging notifications", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return err
	}
	return nil
}

func recipientOf(event events.Event) (uuid.UUID, bool) {
	raw, ok := event.Payload()["user_id"].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (s *NotificationService) buildNotification(userID uuid.UUID, config *model.NotificationType, event events.Event) model.Notification {
	msg := config.Template
	payload := event.Payload()

	for k, v := range payload {
		msg = strings.ReplaceAll(msg, "{"+k+"}", fmt.Sprintf("%v", v))
	}

	entityType := ""
	var entityID *uuid.UUID
	if et, ok := payload["entity_type"].(string); ok {
		entityType = et
	}
	if raw, ok := payload["entity_id"].(string); ok {
		if eid, err := uuid.Parse(raw); err == nil {
			entityID = &eid
		}
	}

	metaMap := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		metaMap[k] = v
	}
	if entityType != "" && entityID != nil {
		metaMap["action_url"] = fmt.Sprintf("/%ss/%s", entityType, entityID.String())
	}
	metaJSON, _ := json.Marshal(metaMap)

	createdAt := event.Timestamp()
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return model.Notification{
		ID:         uuid.New(),
		UserID:     userID,
		TypeCode:   config.Code,
		Title:      config.DisplayName,
		Message:    msg,
		Metadata:   datatypes.JSON(metaJSON),
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  createdAt,
	}
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	return s.repo.GetNotificationsByUserID(ctx, userID, limit, offset)
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	err := s.repo.MarkAsRead(ctx, userID, id)
	if errors.Is(err, implementation.ErrNotificationNotFound) {
		return serverutils.NotFound("notification not found")
	}
	return err
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
