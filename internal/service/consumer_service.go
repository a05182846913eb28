package service

import (
	"context"
	"encoding/json"

	"decidely-be/internal/dto"
	"decidely-be/internal/pkg/logger"
	"decidely-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService applies queued scenario attempts to the catalog counters.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ScenarioAttemptMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal attempt message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // invalid payloads would never succeed
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ScenarioRepository().RecordAttempt(ctx, payload.ScenarioId, payload.Successful); err != nil {
		cs.logger.Warn("Consumer", "Failed to record scenario attempt", map[string]interface{}{
			"scenario_id": payload.ScenarioId,
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	cs.logger.Debug("Consumer", "Scenario attempt recorded", map[string]interface{}{
		"scenario_id": payload.ScenarioId,
		"successful":  payload.Successful,
	})
	msg.Ack()
}
