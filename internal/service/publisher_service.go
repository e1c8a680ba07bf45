package service

import (
	"context"
	"fmt"

	"ai-chatbot/internal/pkg/logger"
	"ai-chatbot/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IPublisherService interface {
	Publish(ctx context.Context, event events.Event) error
}

// EventSink receives a copy of every event outside the process (NATS JetStream).
type EventSink interface {
	Publish(ctx context.Context, event events.Event) error
}

type publisherService struct {
	topicName string
	pubSub    message.Publisher
	sink      EventSink
	logger    logger.ILogger
}

// NewPublisherService publishes on the in-process bus and, when sink is not
// nil, forwards to it. Sink failures are logged and never returned.
func NewPublisherService(topicName string, pubSub message.Publisher, sink EventSink, log logger.ILogger) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
		sink:      sink,
		logger:    log,
	}
}

func (s *publisherService) Publish(ctx context.Context, event events.Event) error {
	payload, err := events.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.pubSub.Publish(s.topicName, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.EventType(), err)
	}

	if s.sink != nil {
		if err := s.sink.Publish(ctx, event); err != nil {
			s.logger.Warn("Publisher", "Failed to forward event", map[string]interface{}{
				"event": event.EventType(),
				"error": err.Error(),
			})
		}
	}

	return nil
}
