package service

import (
	"context"

	"ai-chatbot/internal/constant"
	"ai-chatbot/internal/dto"
	"ai-chatbot/internal/pkg/logger"
	"ai-chatbot/internal/repository/contract"
	"ai-chatbot/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IUsageService interface {
	Consume(ctx context.Context) error
	Stats(ctx context.Context) (*dto.UsageStatsResponse, error)
}

type usageService struct {
	subscriber message.Subscriber
	topicName  string
	repo       contract.UsageRepository
	logger     logger.ILogger
}

func NewUsageService(
	subscriber message.Subscriber,
	topicName string,
	repo contract.UsageRepository,
	log logger.ILogger,
) IUsageService {
	return &usageService{
		subscriber: subscriber,
		topicName:  topicName,
		repo:       repo,
		logger:     log,
	}
}

// Consume subscribes before returning, then counts events in the background
// until ctx is done.
func (s *usageService) Consume(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *usageService) processMessage(ctx context.Context, msg *message.Message) {
	// Counters are best effort; acking failures avoids redelivery loops.
	defer msg.Ack()

	event, err := events.Unmarshal(msg.Payload)
	if err != nil {
		s.logger.Warn("UsageService", "Dropping undecodable event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	var counters []string
	switch event.EventType() {
	case constant.EventTypeChatRelay:
		counters = append(counters, contract.CounterRelayed)
		if events.Bool(event, "has_attachment") {
			counters = append(counters, contract.CounterAttachments)
		}
	case constant.EventTypeChatFailed:
		counters = append(counters, contract.CounterFailed)
	default:
		return
	}

	for _, counter := range counters {
		if err := s.repo.Increment(ctx, counter, 1); err != nil {
			s.logger.Warn("UsageService", "Failed to increment counter", map[string]interface{}{
				"counter": counter,
				"error":   err.Error(),
			})
		}
	}
}

func (s *usageService) Stats(ctx context.Context) (*dto.UsageStatsResponse, error) {
	relayed, err := s.repo.Get(ctx, contract.CounterRelayed)
	if err != nil {
		return nil, err
	}
	failed, err := s.repo.Get(ctx, contract.CounterFailed)
	if err != nil {
		return nil, err
	}
	attachments, err := s.repo.Get(ctx, contract.CounterAttachments)
	if err != nil {
		return nil, err
	}

	return &dto.UsageStatsResponse{
		Relayed:     relayed,
		Failed:      failed,
		Attachments: attachments,
	}, nil
}
