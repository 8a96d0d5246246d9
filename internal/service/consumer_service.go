package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"grant-insight-be/internal/dto"
	"grant-insight-be/internal/pkg/logger"
	"grant-insight-be/pkg/learning"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService feeds answered chat turns into the learning store off the
// request path, so a slow learning write never delays the user's answer.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	learning  *learning.Store
	log       logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	learningStore *learning.Store,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		learning:  learningStore,
		log:       log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
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
	var payload dto.TurnRecordedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("consumer", "failed to unmarshal turn message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed payloads never become valid, do not retry
		return
	}

	if payload.Query == "" {
		msg.Ack()
		return
	}

	if err := cs.learning.RecordInteraction(ctx, payload.Query, payload.Response, payload.Intent); err != nil {
		cs.log.Error("consumer", "failed to record learning interaction", map[string]interface{}{
			"error":  err.Error(),
			"intent": payload.Intent,
		})
		msg.Nack()
		return
	}

	msg.Ack()
}
